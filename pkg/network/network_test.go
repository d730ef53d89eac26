package network

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/pool"
	"github.com/evroam/wwcp/pkg/station"
	"github.com/evroam/wwcp/pkg/types"
)

func buildNetwork(t *testing.T) (*RoamingNetwork, *evse.EVSE) {
	t.Helper()

	n := New(types.NetworkID("test"))
	op, err := n.CreateOperator(types.OperatorID("OP1"), "Test Operator")
	assert.NoError(t, err)

	pl, err := op.CreatePool(types.PoolID("P1"), func(p *pool.ChargingPool) {
		p.SetName("Test Pool")
	})
	assert.NoError(t, err)

	st, err := pl.CreateStation(types.StationID("ST1"), func(s *station.ChargingStation) {
		s.SetAdminStatus(types.StationAdminOperational)
	})
	assert.NoError(t, err)

	e, err := st.CreateEVSE(types.EVSEID("E1"), func(e *evse.EVSE) {
		e.SetAdminStatus(types.EVSEAdminOperational)
	}, nil, nil)
	assert.NoError(t, err)
	e.SetStatus(types.EVSEStatusAvailable)

	return n, e
}

// TestHierarchyLookups tests id resolution across the hierarchy
func TestHierarchyLookups(t *testing.T) {
	n, e := buildNetwork(t)

	assert.Equal(t, types.NetworkID("test"), n.ID())
	assert.Len(t, n.Operators(), 1)
	assert.NotNil(t, n.GetOperatorByID(types.OperatorID("OP1")))
	assert.Nil(t, n.GetOperatorByID(types.OperatorID("nope")))

	assert.Same(t, e, n.GetEVSEByID(types.EVSEID("E1")))
	assert.Nil(t, n.GetEVSEByID(types.EVSEID("nope")))

	st := n.StationForEVSE(types.EVSEID("E1"))
	assert.NotNil(t, st)
	assert.Equal(t, types.StationID("ST1"), st.ID())
}

// TestDuplicateOperator tests the duplicate-id guard
func TestDuplicateOperator(t *testing.T) {
	n := New(types.NetworkID("test"))
	_, err := n.CreateOperator(types.OperatorID("OP1"), "first")
	assert.NoError(t, err)

	_, err = n.CreateOperator(types.OperatorID("OP1"), "second")
	assert.Error(t, err)
}

// TestRoutedOperations tests routing of the charging operations to the
// station owning the target EVSE
func TestRoutedOperations(t *testing.T) {
	ctx := context.Background()
	n, _ := buildNetwork(t)

	res := n.Reserve(ctx, types.EVSEID("E1"), evse.ReserveParams{})
	assert.Equal(t, types.ReservationSuccess, res.Type)

	cancel := n.CancelReservation(ctx, res.Reservation.ID, types.CancelReasonUser)
	assert.Equal(t, types.CancelReservationSuccess, cancel.Type)

	start := n.RemoteStart(ctx, types.EVSEID("E1"), evse.StartParams{})
	assert.Equal(t, types.RemoteStartSuccess, start.Type)

	stop := n.RemoteStop(ctx, start.Session.ID)
	assert.Equal(t, types.RemoteStopSuccess, stop.Type)
}

// TestRoutedOperationsUnknownTargets tests the unroutable outcomes
func TestRoutedOperationsUnknownTargets(t *testing.T) {
	ctx := context.Background()
	n, _ := buildNetwork(t)

	res := n.Reserve(ctx, types.EVSEID("nope"), evse.ReserveParams{})
	assert.Equal(t, types.ReservationUnknownEVSE, res.Type)

	cancel := n.CancelReservation(ctx, types.ReservationID("nope"), types.CancelReasonUser)
	assert.Equal(t, types.CancelReservationUnknownID, cancel.Type)

	start := n.RemoteStart(ctx, types.EVSEID("nope"), evse.StartParams{})
	assert.Equal(t, types.RemoteStartUnknownEVSE, start.Type)

	stop := n.RemoteStop(ctx, types.SessionID("nope"))
	assert.Equal(t, types.RemoteStopInvalidSessionID, stop.Type)
}

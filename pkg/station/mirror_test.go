package station

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/status"
	"github.com/evroam/wwcp/pkg/types"
)

// twinEVSE is a schedule-backed RemoteEVSE
type twinEVSE struct {
	status *status.Schedule[types.EVSEStatus]
	admin  *status.Schedule[types.EVSEAdminStatus]
}

func newTwinEVSE() *twinEVSE {
	return &twinEVSE{
		status: status.NewSchedule[types.EVSEStatus](0),
		admin:  status.NewSchedule[types.EVSEAdminStatus](0),
	}
}

func (t *twinEVSE) SetStatusAt(v types.EVSEStatus, ts time.Time) {
	t.status.InsertAt(v, ts)
}

func (t *twinEVSE) SetAdminStatusAt(v types.EVSEAdminStatus, ts time.Time) {
	t.admin.InsertAt(v, ts)
}

func (t *twinEVSE) OnStatusChanged(fn status.ChangeListener[types.EVSEStatus]) {
	t.status.OnStatusChanged(fn)
}

func (t *twinEVSE) OnAdminStatusChanged(fn status.ChangeListener[types.EVSEAdminStatus]) {
	t.admin.OnStatusChanged(fn)
}

// twinStation is a RemoteStation that twins every created EVSE
type twinStation struct {
	mu    sync.Mutex
	twins map[types.EVSEID]*twinEVSE
}

func newTwinStation() *twinStation {
	return &twinStation{twins: make(map[types.EVSEID]*twinEVSE)}
}

func (r *twinStation) twin(id types.EVSEID) *twinEVSE {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.twins[id]
}

func (r *twinStation) CreateRemoteEVSE(id types.EVSEID) (RemoteEVSE, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tw := newTwinEVSE()
	r.twins[id] = tw
	return tw, nil
}

func (r *twinStation) Reserve(ctx context.Context, evseID types.EVSEID, p evse.ReserveParams) types.ReservationResult {
	return types.ReservationResult{Type: types.ReservationUnknownEVSE}
}

func (r *twinStation) CancelReservation(ctx context.Context, id types.ReservationID, reason types.ReservationCancelReason) types.CancelReservationResult {
	return types.CancelReservationResult{Type: types.CancelReservationUnknownID, ReservationID: id}
}

func (r *twinStation) RemoteStart(ctx context.Context, evseID types.EVSEID, p evse.StartParams) types.RemoteStartResult {
	return types.RemoteStartResult{Type: types.RemoteStartUnknownEVSE}
}

func (r *twinStation) RemoteStop(ctx context.Context, sessionID types.SessionID) types.RemoteStopResult {
	return types.RemoteStopResult{Type: types.RemoteStopUnknownEVSE}
}

// TestRemoteTwinMirroring tests that a created EVSE is twinned on the
// remote station, that status changes propagate in both directions, and
// that the echo between the two sides terminates after one transition
func TestRemoteTwinMirroring(t *testing.T) {
	remote := newTwinStation()
	s := newTestStation(t, nil)
	s.SetRemoteStation(remote)

	e, err := s.CreateEVSE(types.EVSEID("E1"), func(e *evse.EVSE) {
		e.SetAdminStatus(types.EVSEAdminOperational)
	}, nil, nil)
	assert.NoError(t, err)

	tw := remote.twin(types.EVSEID("E1"))
	assert.NotNil(t, tw)

	var localFired, twinFired int
	e.OnStatusChanged(func(ts time.Time, old, new types.Timestamped[types.EVSEStatus]) {
		localFired++
	})
	tw.status.OnStatusChanged(func(ts time.Time, old, new types.Timestamped[types.EVSEStatus]) {
		twinFired++
	})

	done := make(chan struct{})
	go func() {
		e.SetStatus(types.EVSEStatusAvailable)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("status change did not return after twin wiring")
	}

	assert.Equal(t, types.EVSEStatusAvailable, tw.status.CurrentValue())
	assert.Equal(t, 1, localFired)
	assert.Equal(t, 1, twinFired)

	// Reverse direction: a change on the twin lands on the local EVSE.
	tw.status.Insert(types.EVSEStatusOccupied)
	assert.Equal(t, types.EVSEStatusOccupied, e.Status().Value)

	// Admin status mirrors through the second listener pair.
	e.SetAdminStatus(types.EVSEAdminOutOfService)
	assert.Equal(t, types.EVSEAdminOutOfService, tw.admin.CurrentValue())
}

package station

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/types"
)

// fakePool is a minimal PoolRef for inheritance tests
type fakePool struct {
	id            types.PoolID
	operatorID    types.OperatorID
	name          string
	description   string
	address       *types.Address
	geoLocation   types.GeoCoordinate
	entrance      *types.Address
	exit          *types.Address
	openingTimes  types.OpeningTimes
	authModes     []types.AuthMode
	payments      []types.PaymentOption
	accessibility types.Accessibility
	hotlinePhone  string
}

func (p *fakePool) ID() types.PoolID                      { return p.id }
func (p *fakePool) OperatorID() types.OperatorID          { return p.operatorID }
func (p *fakePool) Name() string                          { return p.name }
func (p *fakePool) Description() string                   { return p.description }
func (p *fakePool) Address() *types.Address               { return p.address }
func (p *fakePool) GeoLocation() types.GeoCoordinate      { return p.geoLocation }
func (p *fakePool) EntranceAddress() *types.Address       { return p.entrance }
func (p *fakePool) ExitAddress() *types.Address           { return p.exit }
func (p *fakePool) OpeningTimes() types.OpeningTimes      { return p.openingTimes }
func (p *fakePool) AuthModes() []types.AuthMode           { return p.authModes }
func (p *fakePool) PaymentOptions() []types.PaymentOption { return p.payments }
func (p *fakePool) Accessibility() types.Accessibility    { return p.accessibility }
func (p *fakePool) HotlinePhone() string                  { return p.hotlinePhone }

func newTestStation(t *testing.T, pool PoolRef) *ChargingStation {
	t.Helper()
	s := New(Config{ID: types.StationID("ST1"), Pool: pool})
	s.SetAdminStatus(types.StationAdminOperational)
	return s
}

func addOperationalEVSE(t *testing.T, s *ChargingStation, id types.EVSEID) *evse.EVSE {
	t.Helper()
	e, err := s.CreateEVSE(id, func(e *evse.EVSE) {
		e.SetAdminStatus(types.EVSEAdminOperational)
	}, nil, nil)
	assert.NoError(t, err)
	e.SetStatus(types.EVSEStatusAvailable)
	return e
}

// TestAttributeInheritance tests the pool fallback and override lifecycle
// of station attributes
func TestAttributeInheritance(t *testing.T) {
	pool := &fakePool{
		id:           types.PoolID("P1"),
		name:         "Rathaus Nord",
		hotlinePhone: "+49 800 1234567",
	}
	s := newTestStation(t, pool)

	// Unset attributes read through to the pool.
	assert.Equal(t, "Rathaus Nord", s.Name())
	assert.Equal(t, "+49 800 1234567", s.HotlinePhone())

	// A local override shadows the pool.
	s.SetName("Rathaus Nord / Säule 3")
	assert.Equal(t, "Rathaus Nord / Säule 3", s.Name())

	// The pool changing underneath does not leak through an override.
	pool.name = "Rathaus Nord (umbenannt)"
	assert.Equal(t, "Rathaus Nord / Säule 3", s.Name())

	// Writing the empty value deletes the override.
	s.SetName("")
	assert.Equal(t, "Rathaus Nord (umbenannt)", s.Name())

	// Writing the pool's current value also deletes the override: the
	// station keeps following the pool afterwards.
	s.SetName("Säule 3")
	s.SetName(pool.name)
	pool.name = "Rathaus Süd"
	assert.Equal(t, "Rathaus Süd", s.Name())
}

// TestAttributeInheritanceAddress tests fallback for pointer attributes
func TestAttributeInheritanceAddress(t *testing.T) {
	poolAddr := &types.Address{Street: "Marktplatz", City: "Jena", Country: "DE"}
	pool := &fakePool{id: types.PoolID("P1"), address: poolAddr}
	s := newTestStation(t, pool)

	assert.Equal(t, poolAddr, s.Address())

	local := &types.Address{Street: "Nebenstraße", City: "Jena", Country: "DE"}
	s.SetAddress(local)
	assert.Equal(t, local, s.Address())

	s.SetAddress(nil)
	assert.Equal(t, poolAddr, s.Address())
}

// TestAdminStatusMasking tests that a masking admin status replaces the
// operational status and its visible history with out-of-service
func TestAdminStatusMasking(t *testing.T) {
	s := New(Config{ID: types.StationID("ST1")})
	s.SetAdminStatusAt(types.StationAdminOperational, time.Now().Add(-10*time.Minute))

	t1 := time.Now().Add(-4 * time.Minute)
	t3 := time.Now().Add(-2 * time.Minute)
	s.SetStatusAt(types.StationStatusAvailable, t1)
	s.SetStatusAt(types.StationStatusOccupied, t3)

	assert.Equal(t, types.StationStatusOccupied, s.Status().Value)
	assert.Len(t, s.StatusScheduleEntries(), 2)

	t5 := time.Now().Add(-time.Minute)
	s.SetAdminStatusAt(types.StationAdminOutOfService, t5)

	masked := s.Status()
	assert.Equal(t, types.StationStatusOutOfService, masked.Value)
	assert.True(t, masked.Timestamp.Equal(t5))

	entries := s.StatusScheduleEntries()
	assert.Len(t, entries, 1)
	assert.Equal(t, types.StationStatusOutOfService, entries[0].Value)
	assert.True(t, entries[0].Timestamp.Equal(t5))

	// Restoring an exposing admin status reveals the untouched history.
	s.SetAdminStatus(types.StationAdminOperational)
	assert.Equal(t, types.StationStatusOccupied, s.Status().Value)
	assert.Len(t, s.StatusScheduleEntries(), 2)
}

// TestStatusAggregation tests that child EVSE transitions drive the
// station status through the aggregation delegate
func TestStatusAggregation(t *testing.T) {
	s := newTestStation(t, nil)
	s.SetStatusAggregationDelegate(func(report EVSEStatusReport) types.StationStatus {
		available := report.Count(types.EVSEStatusAvailable)
		switch {
		case available == len(report):
			return types.StationStatusAvailable
		case available > 0:
			return types.StationStatusPartial
		default:
			return types.StationStatusOccupied
		}
	})

	e1 := addOperationalEVSE(t, s, types.EVSEID("E1"))
	e2 := addOperationalEVSE(t, s, types.EVSEID("E2"))

	assert.Equal(t, types.StationStatusAvailable, s.Status().Value)

	e1.SetStatus(types.EVSEStatusOccupied)
	assert.Equal(t, types.StationStatusPartial, s.Status().Value)

	e2.SetStatus(types.EVSEStatusOccupied)
	assert.Equal(t, types.StationStatusOccupied, s.Status().Value)

	report := s.StatusReport()
	assert.Equal(t, 2, report.Count(types.EVSEStatusOccupied))
	assert.Equal(t, 0, report.Count(types.EVSEStatusAvailable))
}

// TestCreateEVSE tests membership management including the veto
func TestCreateEVSE(t *testing.T) {
	t.Run("duplicate id", func(t *testing.T) {
		s := newTestStation(t, nil)
		addOperationalEVSE(t, s, types.EVSEID("E1"))

		var failedID types.EVSEID
		_, err := s.CreateEVSE(types.EVSEID("E1"), nil, nil,
			func(_ *ChargingStation, id types.EVSEID, _ error) { failedID = id })
		assert.ErrorIs(t, err, types.ErrEVSEAlreadyExists)
		assert.Equal(t, types.EVSEID("E1"), failedID)
	})

	t.Run("veto leaves the station unchanged", func(t *testing.T) {
		s := newTestStation(t, nil)
		s.OnEVSEAdditionVoting(func(EVSEAdditionEvent) bool { return false })

		notified := false
		s.OnEVSEAddition(func(EVSEAdditionEvent) { notified = true })

		_, err := s.CreateEVSE(types.EVSEID("E1"), nil, nil, nil)
		assert.ErrorIs(t, err, types.ErrAdditionVetoed)
		assert.False(t, s.ContainsEVSE(types.EVSEID("E1")))
		assert.False(t, notified)
	})

	t.Run("success notifies and indexes", func(t *testing.T) {
		s := newTestStation(t, nil)

		var added *evse.EVSE
		s.OnEVSEAddition(func(ev EVSEAdditionEvent) { added = ev.EVSE })

		e, err := s.CreateEVSE(types.EVSEID("E1"), nil, nil, nil)
		assert.NoError(t, err)
		assert.Same(t, e, added)
		assert.True(t, s.ContainsEVSE(types.EVSEID("E1")))
		assert.True(t, s.EVSEIDs().Contains(types.EVSEID("E1")))
	})
}

// TestRemoveEVSE tests the votable removal
func TestRemoveEVSE(t *testing.T) {
	s := newTestStation(t, nil)
	addOperationalEVSE(t, s, types.EVSEID("E1"))

	t.Run("veto keeps the evse", func(t *testing.T) {
		veto := true
		s.OnEVSERemovalVoting(func(EVSERemovalEvent) bool { return !veto })

		_, err := s.RemoveEVSE(types.EVSEID("E1"))
		assert.ErrorIs(t, err, types.ErrRemovalVetoed)
		assert.True(t, s.ContainsEVSE(types.EVSEID("E1")))

		veto = false
		removed, err := s.RemoveEVSE(types.EVSEID("E1"))
		assert.NoError(t, err)
		assert.Equal(t, types.EVSEID("E1"), removed.ID())
		assert.False(t, s.ContainsEVSE(types.EVSEID("E1")))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.RemoveEVSE(types.EVSEID("nope"))
		assert.Error(t, err)
	})
}

// fakeRemote is a scripted RemoteStation
type fakeRemote struct {
	reserveResult types.ReservationResult
	startResult   types.RemoteStartResult
	stopResult    types.RemoteStopResult
	cancelResult  types.CancelReservationResult
	reserveCalls  int
	startCalls    int
	stopCalls     int
	cancelCalls   int
}

func (r *fakeRemote) Reserve(ctx context.Context, evseID types.EVSEID, p evse.ReserveParams) types.ReservationResult {
	r.reserveCalls++
	return r.reserveResult
}

func (r *fakeRemote) CancelReservation(ctx context.Context, id types.ReservationID, reason types.ReservationCancelReason) types.CancelReservationResult {
	r.cancelCalls++
	return r.cancelResult
}

func (r *fakeRemote) RemoteStart(ctx context.Context, evseID types.EVSEID, p evse.StartParams) types.RemoteStartResult {
	r.startCalls++
	return r.startResult
}

func (r *fakeRemote) RemoteStop(ctx context.Context, sessionID types.SessionID) types.RemoteStopResult {
	r.stopCalls++
	return r.stopResult
}

// TestReserveDispatch tests remote-first dispatch with local fallback
func TestReserveDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("remote success wins", func(t *testing.T) {
		s := newTestStation(t, nil)
		addOperationalEVSE(t, s, types.EVSEID("E1"))

		remote := &fakeRemote{reserveResult: types.ReservationResult{
			Type:        types.ReservationSuccess,
			Reservation: &types.Reservation{ID: types.ReservationID("remote-r1")},
		}}
		s.SetRemoteStation(remote)

		result := s.Reserve(ctx, types.EVSEID("E1"), evse.ReserveParams{})
		assert.Equal(t, types.ReservationSuccess, result.Type)
		assert.Equal(t, types.ReservationID("remote-r1"), result.Reservation.ID)
		assert.Equal(t, 1, remote.reserveCalls)
		// Local EVSE untouched.
		assert.Nil(t, s.GetEVSEByID(types.EVSEID("E1")).Reservation())
	})

	t.Run("remote unknown evse falls back to local", func(t *testing.T) {
		s := newTestStation(t, nil)
		addOperationalEVSE(t, s, types.EVSEID("E1"))

		remote := &fakeRemote{reserveResult: types.ReservationResult{Type: types.ReservationUnknownEVSE}}
		s.SetRemoteStation(remote)

		result := s.Reserve(ctx, types.EVSEID("E1"), evse.ReserveParams{})
		assert.Equal(t, types.ReservationSuccess, result.Type)
		assert.Equal(t, 1, remote.reserveCalls)
		assert.NotNil(t, s.GetEVSEByID(types.EVSEID("E1")).Reservation())
	})

	t.Run("remote business failure is final", func(t *testing.T) {
		s := newTestStation(t, nil)
		addOperationalEVSE(t, s, types.EVSEID("E1"))

		remote := &fakeRemote{reserveResult: types.ReservationResult{Type: types.ReservationAlreadyReserved}}
		s.SetRemoteStation(remote)

		result := s.Reserve(ctx, types.EVSEID("E1"), evse.ReserveParams{})
		assert.Equal(t, types.ReservationAlreadyReserved, result.Type)
		assert.Nil(t, s.GetEVSEByID(types.EVSEID("E1")).Reservation())
	})

	t.Run("station-wide picks first available", func(t *testing.T) {
		s := newTestStation(t, nil)
		e1 := addOperationalEVSE(t, s, types.EVSEID("E1"))
		e2 := addOperationalEVSE(t, s, types.EVSEID("E2"))
		e1.SetStatus(types.EVSEStatusOccupied)

		result := s.Reserve(ctx, "", evse.ReserveParams{})
		assert.Equal(t, types.ReservationSuccess, result.Type)
		assert.Equal(t, types.EVSEID("E2"), result.Reservation.EVSEID)
		assert.NotNil(t, e2.Reservation())
	})

	t.Run("no available evses", func(t *testing.T) {
		s := newTestStation(t, nil)
		e := addOperationalEVSE(t, s, types.EVSEID("E1"))
		e.SetStatus(types.EVSEStatusOccupied)

		result := s.Reserve(ctx, "", evse.ReserveParams{})
		assert.Equal(t, types.ReservationNoEVSEsAvailable, result.Type)
	})

	t.Run("out of service station", func(t *testing.T) {
		s := New(Config{ID: types.StationID("ST1")})
		s.SetAdminStatus(types.StationAdminOutOfService)

		result := s.Reserve(ctx, types.EVSEID("E1"), evse.ReserveParams{})
		assert.Equal(t, types.ReservationOutOfService, result.Type)
	})
}

// TestReserveHooks tests the pre/post events and panic isolation
func TestReserveHooks(t *testing.T) {
	ctx := context.Background()
	s := newTestStation(t, nil)
	addOperationalEVSE(t, s, types.EVSEID("E1"))

	var request ReserveRequestEvent
	var response ReserveResponseEvent
	s.OnReserve(func(ev ReserveRequestEvent) {
		request = ev
		panic("hook exploded") // must not abort the reservation
	})
	s.OnReserved(func(ev ReserveResponseEvent) { response = ev })

	result := s.Reserve(ctx, types.EVSEID("E1"), evse.ReserveParams{})
	assert.Equal(t, types.ReservationSuccess, result.Type)
	assert.Equal(t, types.EVSEID("E1"), request.EVSEID)
	assert.Equal(t, types.ReservationSuccess, response.Result.Type)
	assert.GreaterOrEqual(t, response.Runtime, time.Duration(0))
}

// TestRemoteStartDispatch tests start/stop routing through the station
func TestRemoteStartDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("local start and stop", func(t *testing.T) {
		s := newTestStation(t, nil)
		addOperationalEVSE(t, s, types.EVSEID("E1"))

		start := s.RemoteStart(ctx, types.EVSEID("E1"), evse.StartParams{})
		assert.Equal(t, types.RemoteStartSuccess, start.Type)
		assert.Equal(t, types.StationID("ST1"), start.Session.StationID)

		stop := s.RemoteStop(ctx, start.Session.ID)
		assert.Equal(t, types.RemoteStopSuccess, stop.Type)
		assert.Equal(t, types.StationID("ST1"), stop.Record.StationID)
	})

	t.Run("unknown evse", func(t *testing.T) {
		s := newTestStation(t, nil)

		result := s.RemoteStart(ctx, types.EVSEID("nope"), evse.StartParams{})
		assert.Equal(t, types.RemoteStartUnknownEVSE, result.Type)
	})

	t.Run("unknown session", func(t *testing.T) {
		s := newTestStation(t, nil)
		addOperationalEVSE(t, s, types.EVSEID("E1"))

		result := s.RemoteStop(ctx, types.SessionID("nope"))
		assert.Equal(t, types.RemoteStopInvalidSessionID, result.Type)
	})

	t.Run("remote error falls back to local stop", func(t *testing.T) {
		s := newTestStation(t, nil)
		addOperationalEVSE(t, s, types.EVSEID("E1"))

		start := s.RemoteStart(ctx, types.EVSEID("E1"), evse.StartParams{})
		assert.Equal(t, types.RemoteStartSuccess, start.Type)

		remote := &fakeRemote{stopResult: types.RemoteStopResult{Type: types.RemoteStopError}}
		s.SetRemoteStation(remote)

		stop := s.RemoteStop(ctx, start.Session.ID)
		assert.Equal(t, types.RemoteStopSuccess, stop.Type)
		assert.Equal(t, 1, remote.stopCalls)
	})
}

// TestCancelReservationDispatch tests that a local reservation is found
// even when a remote mirror is attached
func TestCancelReservationDispatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStation(t, nil)
	addOperationalEVSE(t, s, types.EVSEID("E1"))

	res := s.Reserve(ctx, types.EVSEID("E1"), evse.ReserveParams{})
	assert.Equal(t, types.ReservationSuccess, res.Type)

	remote := &fakeRemote{cancelResult: types.CancelReservationResult{Type: types.CancelReservationUnknownID}}
	s.SetRemoteStation(remote)

	result := s.CancelReservation(ctx, res.Reservation.ID, types.CancelReasonUser)
	assert.Equal(t, types.CancelReservationSuccess, result.Type)
	assert.Equal(t, 1, remote.cancelCalls)
	assert.Nil(t, s.GetEVSEByID(types.EVSEID("E1")).Reservation())

	// With no local holder the remote verdict stands.
	other := s.CancelReservation(ctx, types.ReservationID("nope"), types.CancelReasonUser)
	assert.Equal(t, types.CancelReservationUnknownID, other.Type)
}

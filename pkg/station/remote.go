package station

import (
	"context"
	"time"

	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/metrics"
	"github.com/evroam/wwcp/pkg/status"
	"github.com/evroam/wwcp/pkg/types"
)

// RemoteStation is the capability set of an out-of-process mirror of a
// charging station. The station prefers the remote when attached and
// falls back to its local EVSEs on unknown-evse or error outcomes.
type RemoteStation interface {
	Reserve(ctx context.Context, evseID types.EVSEID, p evse.ReserveParams) types.ReservationResult
	CancelReservation(ctx context.Context, id types.ReservationID, reason types.ReservationCancelReason) types.CancelReservationResult
	RemoteStart(ctx context.Context, evseID types.EVSEID, p evse.StartParams) types.RemoteStartResult
	RemoteStop(ctx context.Context, sessionID types.SessionID) types.RemoteStopResult
}

// RemoteEVSE is the twin of a local EVSE on the remote station
type RemoteEVSE interface {
	SetStatusAt(v types.EVSEStatus, ts time.Time)
	SetAdminStatusAt(v types.EVSEAdminStatus, ts time.Time)
	OnStatusChanged(fn status.ChangeListener[types.EVSEStatus])
	OnAdminStatusChanged(fn status.ChangeListener[types.EVSEAdminStatus])
}

// RemoteEVSEFactory is the optional capability of a RemoteStation to
// create twin EVSEs for bidirectional mirroring
type RemoteEVSEFactory interface {
	CreateRemoteEVSE(id types.EVSEID) (RemoteEVSE, error)
}

// ReserveRequestEvent announces an incoming reserve call. EVSEID is empty
// for station-wide reservations.
type ReserveRequestEvent struct {
	Timestamp time.Time
	StationID types.StationID
	EVSEID    types.EVSEID
	Params    evse.ReserveParams
}

// ReserveResponseEvent reports the outcome of a reserve call
type ReserveResponseEvent struct {
	ReserveRequestEvent
	Result  types.ReservationResult
	Runtime time.Duration
}

// RemoteStartRequestEvent announces an incoming remote start
type RemoteStartRequestEvent struct {
	Timestamp time.Time
	StationID types.StationID
	EVSEID    types.EVSEID
	Params    evse.StartParams
}

// RemoteStartResponseEvent reports the outcome of a remote start
type RemoteStartResponseEvent struct {
	RemoteStartRequestEvent
	Result  types.RemoteStartResult
	Runtime time.Duration
}

// RemoteStopRequestEvent announces an incoming remote stop
type RemoteStopRequestEvent struct {
	Timestamp time.Time
	StationID types.StationID
	SessionID types.SessionID
}

// RemoteStopResponseEvent reports the outcome of a remote stop
type RemoteStopResponseEvent struct {
	RemoteStopRequestEvent
	Result  types.RemoteStopResult
	Runtime time.Duration
}

// OnReserve registers an observer for incoming reserve calls
func (s *ChargingStation) OnReserve(fn func(ReserveRequestEvent)) {
	s.reserveHooks.OnNotification(fn)
}

// OnReserved registers an observer for completed reserve calls
func (s *ChargingStation) OnReserved(fn func(ReserveResponseEvent)) {
	s.reservedHooks.OnNotification(fn)
}

// OnRemoteStart registers an observer for incoming remote starts
func (s *ChargingStation) OnRemoteStart(fn func(RemoteStartRequestEvent)) {
	s.startHooks.OnNotification(fn)
}

// OnRemoteStarted registers an observer for completed remote starts
func (s *ChargingStation) OnRemoteStarted(fn func(RemoteStartResponseEvent)) {
	s.startedHooks.OnNotification(fn)
}

// OnRemoteStop registers an observer for incoming remote stops
func (s *ChargingStation) OnRemoteStop(fn func(RemoteStopRequestEvent)) {
	s.stopHooks.OnNotification(fn)
}

// OnRemoteStopped registers an observer for completed remote stops
func (s *ChargingStation) OnRemoteStopped(fn func(RemoteStopResponseEvent)) {
	s.stoppedHooks.OnNotification(fn)
}

// remoteRetriable reports whether a remote outcome allows local fallback
func remoteRetriableReservation(t types.ReservationResultType) bool {
	return t == types.ReservationUnknownEVSE || t == types.ReservationError
}

func remoteRetriableStart(t types.RemoteStartResultType) bool {
	return t == types.RemoteStartUnknownEVSE || t == types.RemoteStartError
}

func remoteRetriableStop(t types.RemoteStopResultType) bool {
	return t == types.RemoteStopUnknownEVSE || t == types.RemoteStopError
}

// Reserve places a reservation on a specific EVSE (p.EVSEID set) or on any
// available EVSE of this station. The remote mirror is preferred when
// attached; unknown-evse and error outcomes fall back to local dispatch.
func (s *ChargingStation) Reserve(ctx context.Context, evseID types.EVSEID, p evse.ReserveParams) types.ReservationResult {
	started := time.Now()
	request := ReserveRequestEvent{
		Timestamp: started,
		StationID: s.id,
		EVSEID:    evseID,
		Params:    p,
	}
	s.notifySafely("reserve", func() { s.reserveHooks.SendNotification(request) })

	result := s.reserveGated(ctx, evseID, p)
	result.Runtime = time.Since(started)
	metrics.ReservationsTotal.WithLabelValues(string(result.Type)).Inc()

	s.notifySafely("reserved", func() {
		s.reservedHooks.SendNotification(ReserveResponseEvent{
			ReserveRequestEvent: request,
			Result:              result,
			Runtime:             result.Runtime,
		})
	})
	return result
}

func (s *ChargingStation) reserveGated(ctx context.Context, evseID types.EVSEID, p evse.ReserveParams) types.ReservationResult {
	if err := ctx.Err(); err != nil {
		return types.ReservationResult{Type: types.ReservationTimeout, Message: err.Error()}
	}
	if admin := s.adminSchedule.Current().Value; !admin.ExposesOperationalStatus() {
		if admin == types.StationAdminOutOfService {
			return types.ReservationResult{Type: types.ReservationOutOfService}
		}
		return types.ReservationResult{Type: types.ReservationNoEVSEsAvailable}
	}

	s.mu.RLock()
	remote := s.remote
	s.mu.RUnlock()

	if remote != nil {
		result := remote.Reserve(ctx, evseID, p)
		if !remoteRetriableReservation(result.Type) {
			return result
		}
		s.logger.Debug().
			Str("outcome", string(result.Type)).
			Msg("remote reserve failed, falling back to local dispatch")
	}

	if evseID != "" {
		e, ok := s.TryGetEVSEByID(evseID)
		if !ok {
			return types.ReservationResult{Type: types.ReservationUnknownEVSE}
		}
		return e.Reserve(ctx, p)
	}

	// Station-wide: take the first EVSE that accepts the hold
	for _, e := range s.EVSEs() {
		if e.Status().Value != types.EVSEStatusAvailable {
			continue
		}
		result := e.Reserve(ctx, p)
		if result.Type == types.ReservationSuccess {
			return result
		}
	}
	return types.ReservationResult{Type: types.ReservationNoEVSEsAvailable}
}

// CancelReservation cancels a reservation by id. The remote mirror is
// informed first when attached; the local EVSE holding the reservation is
// cancelled as well.
func (s *ChargingStation) CancelReservation(ctx context.Context, id types.ReservationID, reason types.ReservationCancelReason) types.CancelReservationResult {
	if admin := s.adminSchedule.Current().Value; !admin.ExposesOperationalStatus() {
		if admin == types.StationAdminOutOfService {
			return types.CancelReservationResult{Type: types.CancelReservationOutOfService}
		}
		return types.CancelReservationResult{Type: types.CancelReservationNoEVSEsAvailable}
	}

	s.mu.RLock()
	remote := s.remote
	s.mu.RUnlock()

	var remoteResult *types.CancelReservationResult
	if remote != nil {
		r := remote.CancelReservation(ctx, id, reason)
		remoteResult = &r
	}

	for _, e := range s.EVSEs() {
		if r := e.Reservation(); r != nil && r.ID == id {
			return e.CancelReservation(ctx, id, reason)
		}
	}

	if remoteResult != nil {
		return *remoteResult
	}
	return types.CancelReservationResult{Type: types.CancelReservationUnknownID, ReservationID: id}
}

// RemoteStart starts a charging session on the given EVSE, preferring the
// remote mirror. On success the station sets itself as the session's
// station when the result carries none.
func (s *ChargingStation) RemoteStart(ctx context.Context, evseID types.EVSEID, p evse.StartParams) types.RemoteStartResult {
	started := time.Now()
	request := RemoteStartRequestEvent{
		Timestamp: started,
		StationID: s.id,
		EVSEID:    evseID,
		Params:    p,
	}
	s.notifySafely("remote-start", func() { s.startHooks.SendNotification(request) })

	result := s.remoteStartGated(ctx, evseID, p)
	result.Runtime = time.Since(started)
	metrics.RemoteStartsTotal.WithLabelValues(string(result.Type)).Inc()

	if result.Type == types.RemoteStartSuccess && result.Session != nil && result.Session.StationID == "" {
		result.Session.StationID = s.id
	}

	s.notifySafely("remote-started", func() {
		s.startedHooks.SendNotification(RemoteStartResponseEvent{
			RemoteStartRequestEvent: request,
			Result:                  result,
			Runtime:                 result.Runtime,
		})
	})
	return result
}

func (s *ChargingStation) remoteStartGated(ctx context.Context, evseID types.EVSEID, p evse.StartParams) types.RemoteStartResult {
	if err := ctx.Err(); err != nil {
		return types.RemoteStartResult{Type: types.RemoteStartTimeout, Message: err.Error()}
	}
	if !s.adminSchedule.Current().Value.ExposesOperationalStatus() {
		return types.RemoteStartResult{Type: types.RemoteStartOutOfService}
	}

	s.mu.RLock()
	remote := s.remote
	s.mu.RUnlock()

	if remote != nil {
		result := remote.RemoteStart(ctx, evseID, p)
		if !remoteRetriableStart(result.Type) {
			return result
		}
		s.logger.Debug().
			Str("outcome", string(result.Type)).
			Msg("remote start failed, falling back to local dispatch")
	}

	e, ok := s.TryGetEVSEByID(evseID)
	if !ok {
		return types.RemoteStartResult{Type: types.RemoteStartUnknownEVSE}
	}
	return e.RemoteStart(ctx, p)
}

// RemoteStop stops the charging session with the given id, preferring the
// remote mirror. On success the station completes the charge detail
// record's station back-reference when absent.
func (s *ChargingStation) RemoteStop(ctx context.Context, sessionID types.SessionID) types.RemoteStopResult {
	started := time.Now()
	request := RemoteStopRequestEvent{
		Timestamp: started,
		StationID: s.id,
		SessionID: sessionID,
	}
	s.notifySafely("remote-stop", func() { s.stopHooks.SendNotification(request) })

	result := s.remoteStopGated(ctx, sessionID)
	result.Runtime = time.Since(started)
	metrics.RemoteStopsTotal.WithLabelValues(string(result.Type)).Inc()

	if result.Type == types.RemoteStopSuccess && result.Record != nil && result.Record.StationID == "" {
		result.Record.StationID = s.id
	}

	s.notifySafely("remote-stopped", func() {
		s.stoppedHooks.SendNotification(RemoteStopResponseEvent{
			RemoteStopRequestEvent: request,
			Result:                 result,
			Runtime:                result.Runtime,
		})
	})
	return result
}

func (s *ChargingStation) remoteStopGated(ctx context.Context, sessionID types.SessionID) types.RemoteStopResult {
	if err := ctx.Err(); err != nil {
		return types.RemoteStopResult{Type: types.RemoteStopTimeout, Message: err.Error()}
	}
	if !s.adminSchedule.Current().Value.ExposesOperationalStatus() {
		return types.RemoteStopResult{Type: types.RemoteStopOutOfService}
	}

	s.mu.RLock()
	remote := s.remote
	s.mu.RUnlock()

	if remote != nil {
		result := remote.RemoteStop(ctx, sessionID)
		if !remoteRetriableStop(result.Type) {
			return result
		}
		s.logger.Debug().
			Str("outcome", string(result.Type)).
			Msg("remote stop failed, falling back to local dispatch")
	}

	for _, e := range s.EVSEs() {
		if session := e.Session(); session != nil && session.ID == sessionID {
			return e.RemoteStop(ctx, sessionID)
		}
	}
	return types.RemoteStopResult{Type: types.RemoteStopInvalidSessionID}
}

package evse

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evroam/wwcp/pkg/events"
	"github.com/evroam/wwcp/pkg/log"
	"github.com/evroam/wwcp/pkg/metrics"
	"github.com/evroam/wwcp/pkg/status"
	"github.com/evroam/wwcp/pkg/types"
	"github.com/evroam/wwcp/pkg/votes"
)

// DefaultReservationDuration is used when a reserve call gives no duration
const DefaultReservationDuration = 15 * time.Minute

// Config holds the immutable identity of an EVSE and its place in the
// hierarchy
type Config struct {
	ID         types.EVSEID
	StationID  types.StationID
	PoolID     types.PoolID
	OperatorID types.OperatorID
	Broker     *events.Broker
}

// ReserveParams carries the arguments of a reserve call. Zero fields are
// filled with defaults (generated reservation id, default duration).
type ReserveParams struct {
	ReservationID types.ReservationID
	ProviderID    types.ProviderID
	EMAID         types.EMAID
	ProductID     string
	StartTime     time.Time
	Duration      time.Duration
	AuthTokens    []types.AuthToken
	EMAIDs        []types.EMAID
	PINs          []string
}

// StartParams carries the arguments of a remote start call
type StartParams struct {
	SessionID     types.SessionID
	ReservationID types.ReservationID
	ProviderID    types.ProviderID
	EMAID         types.EMAID
	ProductID     string
}

// CancellationEvent is the payload of the votable reservation cancel
type CancellationEvent struct {
	Timestamp     time.Time
	EVSEID        types.EVSEID
	ReservationID types.ReservationID
	Reason        types.ReservationCancelReason
}

// EVSE is the leaf unit of the hierarchy, capable of charging one vehicle.
// It owns its status schedules and at most one reservation and one session.
type EVSE struct {
	id         types.EVSEID
	stationID  types.StationID
	poolID     types.PoolID
	operatorID types.OperatorID

	mu          sync.Mutex
	description string
	maxPowerKW  float64
	reservation *types.Reservation
	session     *types.ChargingSession

	adminSchedule  *status.Schedule[types.EVSEAdminStatus]
	statusSchedule *status.Schedule[types.EVSEStatus]

	cancellations *votes.Notificator[CancellationEvent]

	broker *events.Broker
	logger zerolog.Logger
}

// New creates an EVSE and wires its schedules to the network bus
func New(cfg Config) *EVSE {
	e := &EVSE{
		id:             cfg.ID,
		stationID:      cfg.StationID,
		poolID:         cfg.PoolID,
		operatorID:     cfg.OperatorID,
		adminSchedule:  status.NewSchedule[types.EVSEAdminStatus](status.DefaultMaxSize),
		statusSchedule: status.NewSchedule[types.EVSEStatus](status.DefaultMaxSize),
		cancellations:  votes.New[CancellationEvent](),
		broker:         cfg.Broker,
		logger:         log.WithEVSEID(string(cfg.ID)),
	}

	e.statusSchedule.OnStatusChanged(func(ts time.Time, old, new types.Timestamped[types.EVSEStatus]) {
		metrics.StatusTransitionsTotal.WithLabelValues("evse").Inc()
		e.publish(&events.Message{
			Kind:      events.KindStatusChanged,
			Timestamp: ts,
			Operator:  e.operatorID,
			Pool:      e.poolID,
			Station:   e.stationID,
			EVSE:      e.id,
			Old:       old,
			New:       new,
		})
	})
	e.adminSchedule.OnStatusChanged(func(ts time.Time, old, new types.Timestamped[types.EVSEAdminStatus]) {
		e.publish(&events.Message{
			Kind:      events.KindAdminStatusChanged,
			Timestamp: ts,
			Operator:  e.operatorID,
			Pool:      e.poolID,
			Station:   e.stationID,
			EVSE:      e.id,
			Old:       old,
			New:       new,
		})
	})

	return e
}

// ID returns the EVSE identifier
func (e *EVSE) ID() types.EVSEID {
	return e.id
}

// StationID returns the owning station's identifier
func (e *EVSE) StationID() types.StationID {
	return e.stationID
}

// OperatorID returns the owning operator's identifier
func (e *EVSE) OperatorID() types.OperatorID {
	return e.operatorID
}

// Description returns the descriptive text of the EVSE
func (e *EVSE) Description() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.description
}

// SetDescription updates the descriptive text and publishes a data change
func (e *EVSE) SetDescription(desc string) {
	e.mu.Lock()
	if e.description == desc {
		e.mu.Unlock()
		return
	}
	old := e.description
	e.description = desc
	e.mu.Unlock()

	e.publishDataChanged("description", old, desc)
}

// MaxPowerKW returns the maximum charging power in kW
func (e *EVSE) MaxPowerKW() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxPowerKW
}

// SetMaxPowerKW updates the maximum charging power and publishes a data
// change
func (e *EVSE) SetMaxPowerKW(kw float64) {
	e.mu.Lock()
	if e.maxPowerKW == kw {
		e.mu.Unlock()
		return
	}
	old := e.maxPowerKW
	e.maxPowerKW = kw
	e.mu.Unlock()

	e.publishDataChanged("max_power_kw", old, kw)
}

// Status returns the current operational status entry
func (e *EVSE) Status() types.Timestamped[types.EVSEStatus] {
	return e.statusSchedule.Current()
}

// StatusSchedule returns the operational status history
func (e *EVSE) StatusSchedule() *status.Schedule[types.EVSEStatus] {
	return e.statusSchedule
}

// AdminStatus returns the current admin status entry
func (e *EVSE) AdminStatus() types.Timestamped[types.EVSEAdminStatus] {
	return e.adminSchedule.Current()
}

// AdminSchedule returns the admin status history
func (e *EVSE) AdminSchedule() *status.Schedule[types.EVSEAdminStatus] {
	return e.adminSchedule
}

// SetStatus records a new operational status at the current instant
func (e *EVSE) SetStatus(s types.EVSEStatus) {
	e.statusSchedule.Insert(s)
}

// SetStatusAt records a new operational status at the given instant
func (e *EVSE) SetStatusAt(s types.EVSEStatus, ts time.Time) {
	e.statusSchedule.InsertAt(s, ts)
}

// SetAdminStatus records a new admin status at the current instant
func (e *EVSE) SetAdminStatus(s types.EVSEAdminStatus) {
	e.adminSchedule.Insert(s)
}

// SetAdminStatusAt records a new admin status at the given instant
func (e *EVSE) SetAdminStatusAt(s types.EVSEAdminStatus, ts time.Time) {
	e.adminSchedule.InsertAt(s, ts)
}

// OnStatusChanged registers a listener for operational status transitions
func (e *EVSE) OnStatusChanged(fn status.ChangeListener[types.EVSEStatus]) {
	e.statusSchedule.OnStatusChanged(fn)
}

// OnAdminStatusChanged registers a listener for admin status transitions
func (e *EVSE) OnAdminStatusChanged(fn status.ChangeListener[types.EVSEAdminStatus]) {
	e.adminSchedule.OnStatusChanged(fn)
}

// OnCancellationVoting registers a veto voter for reservation cancels
func (e *EVSE) OnCancellationVoting(fn func(CancellationEvent) bool) {
	e.cancellations.OnVoting(fn)
}

// OnCancellationNotification registers an observer for reservation cancels
func (e *EVSE) OnCancellationNotification(fn func(CancellationEvent)) {
	e.cancellations.OnNotification(fn)
}

// Reservation returns the active reservation, if any
func (e *EVSE) Reservation() *types.Reservation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reservation
}

// Session returns the active charging session, if any
func (e *EVSE) Session() *types.ChargingSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Reserve places a hold on this EVSE. At most one reservation can be
// active; durations above types.MaxReservationDuration are rejected.
func (e *EVSE) Reserve(ctx context.Context, p ReserveParams) types.ReservationResult {
	if err := ctx.Err(); err != nil {
		return types.ReservationResult{Type: types.ReservationTimeout, Message: err.Error()}
	}
	if !e.AdminStatus().Value.ExposesOperationalStatus() {
		return types.ReservationResult{Type: types.ReservationOutOfService}
	}

	if p.Duration == 0 {
		p.Duration = DefaultReservationDuration
	}
	if p.Duration < 0 || p.Duration > types.MaxReservationDuration {
		return types.ReservationResult{
			Type:    types.ReservationInvalidDuration,
			Message: "duration exceeds maximum reservation duration",
		}
	}

	now := time.Now()
	if p.StartTime.IsZero() {
		p.StartTime = now
	}
	if p.ReservationID == "" {
		p.ReservationID = types.NewReservationID()
	}

	e.mu.Lock()
	if e.session != nil {
		e.mu.Unlock()
		return types.ReservationResult{Type: types.ReservationAlreadyInUse}
	}
	if e.reservation != nil && !e.reservation.IsExpired(now) {
		e.mu.Unlock()
		return types.ReservationResult{Type: types.ReservationAlreadyReserved}
	}

	reservation := &types.Reservation{
		ID:         p.ReservationID,
		EVSEID:     e.id,
		StationID:  e.stationID,
		ProviderID: p.ProviderID,
		EMAID:      p.EMAID,
		ProductID:  p.ProductID,
		StartTime:  p.StartTime,
		Duration:   p.Duration,
		AuthTokens: p.AuthTokens,
		EMAIDs:     p.EMAIDs,
		PINs:       p.PINs,
		CreatedAt:  now,
	}
	e.reservation = reservation
	e.mu.Unlock()

	e.SetStatus(types.EVSEStatusReserved)
	e.publish(&events.Message{
		Kind:      events.KindReservationMade,
		Timestamp: now,
		Operator:  e.operatorID,
		Pool:      e.poolID,
		Station:   e.stationID,
		EVSE:      e.id,
		New:       reservation,
	})

	return types.ReservationResult{Type: types.ReservationSuccess, Reservation: reservation}
}

// CancelReservation releases the reservation with the given id. The cancel
// is votable; any voting subscriber can veto it.
func (e *EVSE) CancelReservation(ctx context.Context, id types.ReservationID, reason types.ReservationCancelReason) types.CancelReservationResult {
	if !e.AdminStatus().Value.ExposesOperationalStatus() {
		return types.CancelReservationResult{Type: types.CancelReservationOutOfService}
	}

	now := time.Now()
	event := CancellationEvent{
		Timestamp:     now,
		EVSEID:        e.id,
		ReservationID: id,
		Reason:        reason,
	}

	e.mu.Lock()
	if e.reservation == nil || e.reservation.ID != id {
		e.mu.Unlock()
		return types.CancelReservationResult{Type: types.CancelReservationUnknownID, ReservationID: id}
	}

	if !e.cancellations.SendVoting(event) {
		e.mu.Unlock()
		return types.CancelReservationResult{
			Type:          types.CancelReservationError,
			ReservationID: id,
			Message:       "cancellation vetoed by subscriber",
		}
	}

	e.reservation = nil
	e.mu.Unlock()

	if e.Status().Value == types.EVSEStatusReserved {
		e.SetStatus(types.EVSEStatusAvailable)
	}

	e.publish(&events.Message{
		Kind:      events.KindReservationCancelled,
		Timestamp: now,
		Operator:  e.operatorID,
		Pool:      e.poolID,
		Station:   e.stationID,
		EVSE:      e.id,
		Old:       id,
		New:       reason,
	})
	e.cancellations.SendNotification(event)

	return types.CancelReservationResult{Type: types.CancelReservationSuccess, ReservationID: id}
}

// RemoteStart begins a charging session on this EVSE. A reservation held
// by someone else blocks the start.
func (e *EVSE) RemoteStart(ctx context.Context, p StartParams) types.RemoteStartResult {
	if err := ctx.Err(); err != nil {
		return types.RemoteStartResult{Type: types.RemoteStartTimeout, Message: err.Error()}
	}
	if !e.AdminStatus().Value.ExposesOperationalStatus() {
		return types.RemoteStartResult{Type: types.RemoteStartOutOfService}
	}

	now := time.Now()
	if p.SessionID == "" {
		p.SessionID = types.NewSessionID()
	}

	e.mu.Lock()
	if e.session != nil {
		e.mu.Unlock()
		return types.RemoteStartResult{Type: types.RemoteStartAlreadyInUse}
	}
	if r := e.reservation; r != nil && !r.IsExpired(now) {
		matches := (p.ReservationID != "" && p.ReservationID == r.ID) ||
			(p.EMAID != "" && p.EMAID == r.EMAID)
		if !matches {
			e.mu.Unlock()
			return types.RemoteStartResult{Type: types.RemoteStartReserved}
		}
	}

	session := &types.ChargingSession{
		ID:         p.SessionID,
		EVSEID:     e.id,
		StationID:  e.stationID,
		ProviderID: p.ProviderID,
		EMAID:      p.EMAID,
		ProductID:  p.ProductID,
		StartedAt:  now,
	}
	if e.reservation != nil {
		session.ReservationID = e.reservation.ID
		e.reservation = nil
	}
	e.session = session
	e.mu.Unlock()

	e.SetStatus(types.EVSEStatusOccupied)
	e.publish(&events.Message{
		Kind:      events.KindSessionStarted,
		Timestamp: now,
		Operator:  e.operatorID,
		Pool:      e.poolID,
		Station:   e.stationID,
		EVSE:      e.id,
		New:       session,
	})

	return types.RemoteStartResult{Type: types.RemoteStartSuccess, Session: session}
}

// RemoteStop ends the charging session with the given id and produces the
// charge detail record.
func (e *EVSE) RemoteStop(ctx context.Context, sessionID types.SessionID) types.RemoteStopResult {
	if err := ctx.Err(); err != nil {
		return types.RemoteStopResult{Type: types.RemoteStopTimeout, Message: err.Error()}
	}
	if !e.AdminStatus().Value.ExposesOperationalStatus() {
		return types.RemoteStopResult{Type: types.RemoteStopOutOfService}
	}

	now := time.Now()

	e.mu.Lock()
	if e.session == nil || e.session.ID != sessionID {
		e.mu.Unlock()
		return types.RemoteStopResult{Type: types.RemoteStopInvalidSessionID}
	}

	session := e.session
	e.session = nil
	e.mu.Unlock()

	record := &types.ChargeDetailRecord{
		SessionID:    session.ID,
		EVSEID:       e.id,
		StationID:    session.StationID,
		ProviderID:   session.ProviderID,
		EMAID:        session.EMAID,
		SessionStart: session.StartedAt,
		SessionEnd:   now,
		MeterStart:   session.MeterStart,
	}

	e.SetStatus(types.EVSEStatusAvailable)
	e.publish(&events.Message{
		Kind:      events.KindSessionStopped,
		Timestamp: now,
		Operator:  e.operatorID,
		Pool:      e.poolID,
		Station:   e.stationID,
		EVSE:      e.id,
		Old:       session,
	})
	e.publish(&events.Message{
		Kind:      events.KindCDRCreated,
		Timestamp: now,
		Operator:  e.operatorID,
		Pool:      e.poolID,
		Station:   e.stationID,
		EVSE:      e.id,
		New:       record,
	})

	return types.RemoteStopResult{Type: types.RemoteStopSuccess, Record: record}
}

func (e *EVSE) publishDataChanged(property string, old, new any) {
	e.publish(&events.Message{
		Kind:      events.KindDataChanged,
		Timestamp: time.Now(),
		Operator:  e.operatorID,
		Pool:      e.poolID,
		Station:   e.stationID,
		EVSE:      e.id,
		Property:  property,
		Old:       old,
		New:       new,
	})
}

func (e *EVSE) publish(msg *events.Message) {
	if e.broker == nil {
		return
	}
	e.broker.Publish(msg)
}

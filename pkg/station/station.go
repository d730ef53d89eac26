package station

import (
	"fmt"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"

	"github.com/evroam/wwcp/pkg/events"
	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/log"
	"github.com/evroam/wwcp/pkg/metrics"
	"github.com/evroam/wwcp/pkg/status"
	"github.com/evroam/wwcp/pkg/types"
	"github.com/evroam/wwcp/pkg/votes"
)

// StatusScheduleMaxSize bounds the station's operational history
const StatusScheduleMaxSize = 15

// PoolRef is the non-owning back-reference to the charging pool a station
// belongs to. It exposes the pool attributes the station inherits.
type PoolRef interface {
	ID() types.PoolID
	OperatorID() types.OperatorID
	Name() string
	Description() string
	Address() *types.Address
	GeoLocation() types.GeoCoordinate
	EntranceAddress() *types.Address
	ExitAddress() *types.Address
	OpeningTimes() types.OpeningTimes
	AuthModes() []types.AuthMode
	PaymentOptions() []types.PaymentOption
	Accessibility() types.Accessibility
	HotlinePhone() string
}

// EVSEStatusReport is a snapshot of the statuses of all child EVSEs,
// handed to the status aggregation delegate
type EVSEStatusReport map[types.EVSEID]types.EVSEStatus

// Count returns how many EVSEs currently report the given status
func (r EVSEStatusReport) Count(s types.EVSEStatus) int {
	n := 0
	for _, v := range r {
		if v == s {
			n++
		}
	}
	return n
}

// StatusAggregationDelegate derives the station's operational status from
// a snapshot of its child EVSE statuses
type StatusAggregationDelegate func(EVSEStatusReport) types.StationStatus

// EVSEAdditionEvent is the payload of the votable EVSE addition
type EVSEAdditionEvent struct {
	Timestamp time.Time
	StationID types.StationID
	EVSE      *evse.EVSE
}

// EVSERemovalEvent is the payload of the votable EVSE removal
type EVSERemovalEvent struct {
	Timestamp time.Time
	StationID types.StationID
	EVSE      *evse.EVSE
}

// Config holds the identity and collaborators of a charging station
type Config struct {
	ID     types.StationID
	Pool   PoolRef
	Broker *events.Broker
}

// ChargingStation aggregates co-located EVSEs sharing descriptive
// metadata. It owns its EVSEs, inherits unset attributes from its pool,
// derives its status from its children and orchestrates reservations and
// remote start/stop with an optional remote mirror.
type ChargingStation struct {
	id     types.StationID
	pool   PoolRef
	broker *events.Broker
	logger zerolog.Logger

	mu    sync.RWMutex
	evses map[types.EVSEID]*evse.EVSE

	// local attribute overrides; empty values fall back to the pool
	name           string
	description    string
	address        *types.Address
	entrance       *types.Address
	exit           *types.Address
	geoLocation    types.GeoCoordinate
	openingTimes   types.OpeningTimes
	authModes      []types.AuthMode
	paymentOptions []types.PaymentOption
	accessibility  types.Accessibility
	hotlinePhone   string

	adminSchedule  *status.Schedule[types.StationAdminStatus]
	statusSchedule *status.Schedule[types.StationStatus]
	aggregate      StatusAggregationDelegate

	remote RemoteStation

	additions *votes.Notificator[EVSEAdditionEvent]
	removals  *votes.Notificator[EVSERemovalEvent]

	reserveHooks  *votes.Notificator[ReserveRequestEvent]
	reservedHooks *votes.Notificator[ReserveResponseEvent]
	startHooks    *votes.Notificator[RemoteStartRequestEvent]
	startedHooks  *votes.Notificator[RemoteStartResponseEvent]
	stopHooks     *votes.Notificator[RemoteStopRequestEvent]
	stoppedHooks  *votes.Notificator[RemoteStopResponseEvent]
}

// New creates a charging station inside the given pool
func New(cfg Config) *ChargingStation {
	s := &ChargingStation{
		id:             cfg.ID,
		pool:           cfg.Pool,
		broker:         cfg.Broker,
		evses:          make(map[types.EVSEID]*evse.EVSE),
		adminSchedule:  status.NewSchedule[types.StationAdminStatus](status.DefaultMaxSize),
		statusSchedule: status.NewSchedule[types.StationStatus](StatusScheduleMaxSize),
		additions:      votes.New[EVSEAdditionEvent](),
		removals:       votes.New[EVSERemovalEvent](),
		reserveHooks:   votes.New[ReserveRequestEvent](),
		reservedHooks:  votes.New[ReserveResponseEvent](),
		startHooks:     votes.New[RemoteStartRequestEvent](),
		startedHooks:   votes.New[RemoteStartResponseEvent](),
		stopHooks:      votes.New[RemoteStopRequestEvent](),
		stoppedHooks:   votes.New[RemoteStopResponseEvent](),
		logger:         log.WithStationID(string(cfg.ID)),
	}

	s.statusSchedule.OnStatusChanged(func(ts time.Time, old, new types.Timestamped[types.StationStatus]) {
		metrics.StatusTransitionsTotal.WithLabelValues("station").Inc()
		s.publish(&events.Message{
			Kind:      events.KindStatusChanged,
			Timestamp: ts,
			Operator:  s.operatorID(),
			Pool:      s.poolID(),
			Station:   s.id,
			Old:       old,
			New:       new,
		})
	})
	s.adminSchedule.OnStatusChanged(func(ts time.Time, old, new types.Timestamped[types.StationAdminStatus]) {
		s.publish(&events.Message{
			Kind:      events.KindAdminStatusChanged,
			Timestamp: ts,
			Operator:  s.operatorID(),
			Pool:      s.poolID(),
			Station:   s.id,
			Old:       old,
			New:       new,
		})
	})

	return s
}

// ID returns the station identifier
func (s *ChargingStation) ID() types.StationID {
	return s.id
}

// Pool returns the non-owning pool back-reference
func (s *ChargingStation) Pool() PoolRef {
	return s.pool
}

func (s *ChargingStation) poolID() types.PoolID {
	if s.pool == nil {
		return ""
	}
	return s.pool.ID()
}

func (s *ChargingStation) operatorID() types.OperatorID {
	if s.pool == nil {
		return ""
	}
	return s.pool.OperatorID()
}

// SetStatusAggregationDelegate installs the delegate deriving the station
// status from its child EVSE statuses
func (s *ChargingStation) SetStatusAggregationDelegate(fn StatusAggregationDelegate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregate = fn
}

// SetRemoteStation attaches the out-of-process mirror of this station
func (s *ChargingStation) SetRemoteStation(remote RemoteStation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remote = remote
}

// OnEVSEAdditionVoting registers a veto voter for EVSE additions
func (s *ChargingStation) OnEVSEAdditionVoting(fn func(EVSEAdditionEvent) bool) {
	s.additions.OnVoting(fn)
}

// OnEVSEAddition registers an observer for successful EVSE additions
func (s *ChargingStation) OnEVSEAddition(fn func(EVSEAdditionEvent)) {
	s.additions.OnNotification(fn)
}

// OnEVSERemovalVoting registers a veto voter for EVSE removals
func (s *ChargingStation) OnEVSERemovalVoting(fn func(EVSERemovalEvent) bool) {
	s.removals.OnVoting(fn)
}

// OnEVSERemoval registers an observer for successful EVSE removals
func (s *ChargingStation) OnEVSERemoval(fn func(EVSERemovalEvent)) {
	s.removals.OnNotification(fn)
}

// CreateEVSE creates a new EVSE inside this station. The addition is
// votable: any voting subscriber may veto, in which case no EVSE is added.
// configure runs on the new EVSE before the vote; onSuccess/onError are
// optional outcome sinks.
func (s *ChargingStation) CreateEVSE(
	id types.EVSEID,
	configure func(*evse.EVSE),
	onSuccess func(*ChargingStation, *evse.EVSE),
	onError func(*ChargingStation, types.EVSEID, error),
) (*evse.EVSE, error) {
	fail := func(err error) (*evse.EVSE, error) {
		if onError != nil {
			onError(s, id, err)
		}
		return nil, err
	}

	s.mu.Lock()
	if _, exists := s.evses[id]; exists {
		s.mu.Unlock()
		return fail(fmt.Errorf("create evse %s: %w", id, types.ErrEVSEAlreadyExists))
	}
	s.mu.Unlock()

	e := evse.New(evse.Config{
		ID:         id,
		StationID:  s.id,
		PoolID:     s.poolID(),
		OperatorID: s.operatorID(),
		Broker:     s.broker,
	})
	if configure != nil {
		configure(e)
	}

	now := time.Now()
	event := EVSEAdditionEvent{Timestamp: now, StationID: s.id, EVSE: e}
	if !s.additions.SendVoting(event) {
		return fail(fmt.Errorf("create evse %s: %w", id, types.ErrAdditionVetoed))
	}

	s.mu.Lock()
	if _, exists := s.evses[id]; exists {
		s.mu.Unlock()
		return fail(fmt.Errorf("create evse %s: %w", id, types.ErrEVSEAlreadyExists))
	}
	s.evses[id] = e
	remote := s.remote
	s.mu.Unlock()

	// Wire the child's status into the station's aggregation
	e.OnStatusChanged(func(ts time.Time, old, new types.Timestamped[types.EVSEStatus]) {
		s.handleEVSEStatusChange(id, ts, new.Value)
	})

	// Twin the EVSE on the remote station when it supports it
	if factory, ok := remote.(RemoteEVSEFactory); ok && factory != nil {
		s.mirrorEVSE(e, factory)
	}

	metrics.EVSEsTotal.WithLabelValues(string(s.operatorID())).Inc()
	s.publish(&events.Message{
		Kind:      events.KindEVSEAdded,
		Timestamp: now,
		Operator:  s.operatorID(),
		Pool:      s.poolID(),
		Station:   s.id,
		EVSE:      id,
	})
	s.additions.SendNotification(event)

	if onSuccess != nil {
		onSuccess(s, e)
	}
	return e, nil
}

// mirrorEVSE establishes bidirectional status mirroring between a local
// EVSE and its freshly created remote twin. The schedules' value-equality
// no-op breaks the reflection loop.
func (s *ChargingStation) mirrorEVSE(local *evse.EVSE, factory RemoteEVSEFactory) {
	remote, err := factory.CreateRemoteEVSE(local.ID())
	if err != nil {
		s.logger.Error().Err(err).
			Str("evse_id", string(local.ID())).
			Msg("failed to create remote EVSE twin")
		return
	}

	local.OnStatusChanged(func(ts time.Time, old, new types.Timestamped[types.EVSEStatus]) {
		remote.SetStatusAt(new.Value, new.Timestamp)
	})
	local.OnAdminStatusChanged(func(ts time.Time, old, new types.Timestamped[types.EVSEAdminStatus]) {
		remote.SetAdminStatusAt(new.Value, new.Timestamp)
	})
	remote.OnStatusChanged(func(ts time.Time, old, new types.Timestamped[types.EVSEStatus]) {
		local.SetStatusAt(new.Value, new.Timestamp)
	})
	remote.OnAdminStatusChanged(func(ts time.Time, old, new types.Timestamped[types.EVSEAdminStatus]) {
		local.SetAdminStatusAt(new.Value, new.Timestamp)
	})
}

// ContainsEVSE reports whether an EVSE with the given id belongs to this
// station
func (s *ChargingStation) ContainsEVSE(id types.EVSEID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.evses[id]
	return ok
}

// GetEVSEByID returns the EVSE with the given id, or nil
func (s *ChargingStation) GetEVSEByID(id types.EVSEID) *evse.EVSE {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evses[id]
}

// TryGetEVSEByID returns the EVSE with the given id and whether it exists
func (s *ChargingStation) TryGetEVSEByID(id types.EVSEID) (*evse.EVSE, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.evses[id]
	return e, ok
}

// EVSEs returns a snapshot of all EVSEs of this station
func (s *ChargingStation) EVSEs() []*evse.EVSE {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*evse.EVSE, 0, len(s.evses))
	for _, e := range s.evses {
		out = append(out, e)
	}
	return out
}

// EVSEIDs returns the set of EVSE ids of this station
func (s *ChargingStation) EVSEIDs() mapset.Set[types.EVSEID] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := mapset.NewSet[types.EVSEID]()
	for id := range s.evses {
		ids.Add(id)
	}
	return ids
}

// RemoveEVSE removes the EVSE with the given id. The removal is votable.
func (s *ChargingStation) RemoveEVSE(id types.EVSEID) (*evse.EVSE, error) {
	s.mu.Lock()
	e, ok := s.evses[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("remove evse %s: not found", id)
	}

	now := time.Now()
	event := EVSERemovalEvent{Timestamp: now, StationID: s.id, EVSE: e}
	if !s.removals.SendVoting(event) {
		return nil, fmt.Errorf("remove evse %s: %w", id, types.ErrRemovalVetoed)
	}

	s.mu.Lock()
	delete(s.evses, id)
	s.mu.Unlock()

	metrics.EVSEsTotal.WithLabelValues(string(s.operatorID())).Dec()
	s.publish(&events.Message{
		Kind:      events.KindEVSERemoved,
		Timestamp: now,
		Operator:  s.operatorID(),
		Pool:      s.poolID(),
		Station:   s.id,
		EVSE:      id,
	})
	s.removals.SendNotification(event)

	return e, nil
}

// AdminStatus returns the current admin status entry
func (s *ChargingStation) AdminStatus() types.Timestamped[types.StationAdminStatus] {
	return s.adminSchedule.Current()
}

// AdminSchedule returns the admin status history
func (s *ChargingStation) AdminSchedule() *status.Schedule[types.StationAdminStatus] {
	return s.adminSchedule
}

// SetAdminStatus records a new admin status at the current instant
func (s *ChargingStation) SetAdminStatus(v types.StationAdminStatus) {
	s.adminSchedule.Insert(v)
}

// SetAdminStatusAt records a new admin status at the given instant
func (s *ChargingStation) SetAdminStatusAt(v types.StationAdminStatus, ts time.Time) {
	s.adminSchedule.InsertAt(v, ts)
}

// Status returns the station's current operational status. When the admin
// status does not expose the operational status, the result is a single
// synthetic out-of-service entry stamped with the admin change instant.
func (s *ChargingStation) Status() types.Timestamped[types.StationStatus] {
	admin := s.adminSchedule.Current()
	if admin.Value.ExposesOperationalStatus() {
		return s.statusSchedule.Current()
	}
	return types.NewTimestamped(admin.Timestamp, types.StationStatusOutOfService)
}

// StatusScheduleEntries returns the visible operational history,
// newest-first. Under a masking admin status this is exactly one
// out-of-service entry.
func (s *ChargingStation) StatusScheduleEntries() []types.Timestamped[types.StationStatus] {
	admin := s.adminSchedule.Current()
	if admin.Value.ExposesOperationalStatus() {
		return s.statusSchedule.Entries()
	}
	return []types.Timestamped[types.StationStatus]{
		types.NewTimestamped(admin.Timestamp, types.StationStatusOutOfService),
	}
}

// StatusSchedule returns the underlying (unmasked) operational schedule
func (s *ChargingStation) StatusSchedule() *status.Schedule[types.StationStatus] {
	return s.statusSchedule
}

// SetStatus records a station operational status at the current instant
func (s *ChargingStation) SetStatus(v types.StationStatus) {
	s.statusSchedule.Insert(v)
}

// SetStatusAt records a station operational status at the given instant
func (s *ChargingStation) SetStatusAt(v types.StationStatus, ts time.Time) {
	s.statusSchedule.InsertAt(v, ts)
}

// OnStatusChanged registers a listener for station status transitions
func (s *ChargingStation) OnStatusChanged(fn status.ChangeListener[types.StationStatus]) {
	s.statusSchedule.OnStatusChanged(fn)
}

// OnAdminStatusChanged registers a listener for admin status transitions
func (s *ChargingStation) OnAdminStatusChanged(fn status.ChangeListener[types.StationAdminStatus]) {
	s.adminSchedule.OnStatusChanged(fn)
}

// StatusReport snapshots the statuses of all child EVSEs
func (s *ChargingStation) StatusReport() EVSEStatusReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := make(EVSEStatusReport, len(s.evses))
	for id, e := range s.evses {
		report[id] = e.Status().Value
	}
	return report
}

// handleEVSEStatusChange re-derives the station status after a child
// transition. The changed EVSE's value comes from the event so the report
// reflects the transition that triggered it, even when later inserts have
// already moved the schedule on.
func (s *ChargingStation) handleEVSEStatusChange(changed types.EVSEID, ts time.Time, value types.EVSEStatus) {
	s.mu.RLock()
	aggregate := s.aggregate
	report := make(EVSEStatusReport, len(s.evses))
	for id, e := range s.evses {
		if id == changed {
			report[id] = value
			continue
		}
		report[id] = e.Status().Value
	}
	s.mu.RUnlock()

	if aggregate == nil {
		return
	}
	s.statusSchedule.InsertAt(aggregate(report), ts)
}

// notifySafely runs a pre/post event broadcast, swallowing and logging
// panics so that hook failures never abort the operation
func (s *ChargingStation) notifySafely(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("operation", operation).
				Interface("panic", r).
				Msg("event subscriber failed")
		}
	}()
	fn()
}

func (s *ChargingStation) publish(msg *events.Message) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(msg)
}

package pool

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evroam/wwcp/pkg/events"
	"github.com/evroam/wwcp/pkg/log"
	"github.com/evroam/wwcp/pkg/station"
	"github.com/evroam/wwcp/pkg/status"
	"github.com/evroam/wwcp/pkg/types"
	"github.com/evroam/wwcp/pkg/votes"
)

// StationAdditionEvent is the payload of the votable station addition
type StationAdditionEvent struct {
	Timestamp time.Time
	PoolID    types.PoolID
	Station   *station.ChargingStation
}

// Config holds the identity and collaborators of a charging pool
type Config struct {
	ID         types.PoolID
	OperatorID types.OperatorID
	Broker     *events.Broker
}

// ChargingPool is a site containing one or more charging stations. It is
// the source of the descriptive attributes its stations inherit.
type ChargingPool struct {
	id         types.PoolID
	operatorID types.OperatorID
	broker     *events.Broker
	logger     zerolog.Logger

	mu       sync.RWMutex
	stations map[types.StationID]*station.ChargingStation

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

	adminSchedule *status.Schedule[types.PoolAdminStatus]
	additions     *votes.Notificator[StationAdditionEvent]
}

// New creates a charging pool
func New(cfg Config) *ChargingPool {
	return &ChargingPool{
		id:            cfg.ID,
		operatorID:    cfg.OperatorID,
		broker:        cfg.Broker,
		stations:      make(map[types.StationID]*station.ChargingStation),
		adminSchedule: status.NewSchedule[types.PoolAdminStatus](status.DefaultMaxSize),
		additions:     votes.New[StationAdditionEvent](),
		logger:        log.WithComponent("pool"),
	}
}

// ID returns the pool identifier
func (p *ChargingPool) ID() types.PoolID {
	return p.id
}

// OperatorID returns the owning operator's identifier
func (p *ChargingPool) OperatorID() types.OperatorID {
	return p.operatorID
}

// AdminSchedule returns the pool's admin status history
func (p *ChargingPool) AdminSchedule() *status.Schedule[types.PoolAdminStatus] {
	return p.adminSchedule
}

// SetAdminStatus records a new pool admin status at the current instant
func (p *ChargingPool) SetAdminStatus(v types.PoolAdminStatus) {
	p.adminSchedule.Insert(v)
}

// OnStationAdditionVoting registers a veto voter for station additions
func (p *ChargingPool) OnStationAdditionVoting(fn func(StationAdditionEvent) bool) {
	p.additions.OnVoting(fn)
}

// OnStationAddition registers an observer for station additions
func (p *ChargingPool) OnStationAddition(fn func(StationAdditionEvent)) {
	p.additions.OnNotification(fn)
}

// CreateStation creates a new charging station inside this pool. The
// addition is votable.
func (p *ChargingPool) CreateStation(id types.StationID, configure func(*station.ChargingStation)) (*station.ChargingStation, error) {
	p.mu.Lock()
	if _, exists := p.stations[id]; exists {
		p.mu.Unlock()
		return nil, fmt.Errorf("create station %s: %w", id, types.ErrStationAlreadyExists)
	}
	p.mu.Unlock()

	s := station.New(station.Config{
		ID:     id,
		Pool:   p,
		Broker: p.broker,
	})
	if configure != nil {
		configure(s)
	}

	event := StationAdditionEvent{Timestamp: time.Now(), PoolID: p.id, Station: s}
	if !p.additions.SendVoting(event) {
		return nil, fmt.Errorf("create station %s: %w", id, types.ErrAdditionVetoed)
	}

	p.mu.Lock()
	p.stations[id] = s
	p.mu.Unlock()

	p.additions.SendNotification(event)
	return s, nil
}

// GetStationByID returns the station with the given id, or nil
func (p *ChargingPool) GetStationByID(id types.StationID) *station.ChargingStation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stations[id]
}

// ContainsStation reports whether the pool holds a station with the id
func (p *ChargingPool) ContainsStation(id types.StationID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.stations[id]
	return ok
}

// Stations returns a snapshot of all stations of this pool
func (p *ChargingPool) Stations() []*station.ChargingStation {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*station.ChargingStation, 0, len(p.stations))
	for _, s := range p.stations {
		out = append(out, s)
	}
	return out
}

// RemoveStation removes the station with the given id
func (p *ChargingPool) RemoveStation(id types.StationID) (*station.ChargingStation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stations[id]
	if !ok {
		return nil, fmt.Errorf("remove station %s: not found", id)
	}
	delete(p.stations, id)
	return s, nil
}

// Name returns the pool name
func (p *ChargingPool) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// SetName updates the pool name
func (p *ChargingPool) SetName(v string) {
	p.setAttr("name", &p.name, v)
}

// Description returns the pool description
func (p *ChargingPool) Description() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.description
}

// SetDescription updates the pool description
func (p *ChargingPool) SetDescription(v string) {
	p.setAttr("description", &p.description, v)
}

// HotlinePhone returns the pool hotline number
func (p *ChargingPool) HotlinePhone() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hotlinePhone
}

// SetHotlinePhone updates the pool hotline number
func (p *ChargingPool) SetHotlinePhone(v string) {
	p.setAttr("hotline_phone", &p.hotlinePhone, v)
}

func (p *ChargingPool) setAttr(property string, field *string, v string) {
	p.mu.Lock()
	old := *field
	if old == v {
		p.mu.Unlock()
		return
	}
	*field = v
	p.mu.Unlock()

	p.publishDataChanged(property, old, v)
}

// Address returns the pool postal address
func (p *ChargingPool) Address() *types.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.address
}

// SetAddress updates the pool postal address
func (p *ChargingPool) SetAddress(v *types.Address) {
	p.mu.Lock()
	old := p.address
	p.address = v
	p.mu.Unlock()
	p.publishDataChanged("address", old, v)
}

// EntranceAddress returns the pool entrance address
func (p *ChargingPool) EntranceAddress() *types.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entrance
}

// SetEntranceAddress updates the pool entrance address
func (p *ChargingPool) SetEntranceAddress(v *types.Address) {
	p.mu.Lock()
	old := p.entrance
	p.entrance = v
	p.mu.Unlock()
	p.publishDataChanged("entrance_address", old, v)
}

// ExitAddress returns the pool exit address
func (p *ChargingPool) ExitAddress() *types.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exit
}

// SetExitAddress updates the pool exit address
func (p *ChargingPool) SetExitAddress(v *types.Address) {
	p.mu.Lock()
	old := p.exit
	p.exit = v
	p.mu.Unlock()
	p.publishDataChanged("exit_address", old, v)
}

// GeoLocation returns the pool geo coordinate
func (p *ChargingPool) GeoLocation() types.GeoCoordinate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.geoLocation
}

// SetGeoLocation updates the pool geo coordinate
func (p *ChargingPool) SetGeoLocation(v types.GeoCoordinate) {
	p.mu.Lock()
	old := p.geoLocation
	p.geoLocation = v
	p.mu.Unlock()
	p.publishDataChanged("geo_location", old, v)
}

// OpeningTimes returns the pool opening times
func (p *ChargingPool) OpeningTimes() types.OpeningTimes {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.openingTimes
}

// SetOpeningTimes updates the pool opening times
func (p *ChargingPool) SetOpeningTimes(v types.OpeningTimes) {
	p.mu.Lock()
	old := p.openingTimes
	p.openingTimes = v
	p.mu.Unlock()
	p.publishDataChanged("opening_times", old, v)
}

// AuthModes returns the pool authentication modes
func (p *ChargingPool) AuthModes() []types.AuthMode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.authModes
}

// SetAuthModes updates the pool authentication modes
func (p *ChargingPool) SetAuthModes(v []types.AuthMode) {
	p.mu.Lock()
	old := p.authModes
	p.authModes = v
	p.mu.Unlock()
	p.publishDataChanged("auth_modes", old, v)
}

// PaymentOptions returns the pool payment options
func (p *ChargingPool) PaymentOptions() []types.PaymentOption {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paymentOptions
}

// SetPaymentOptions updates the pool payment options
func (p *ChargingPool) SetPaymentOptions(v []types.PaymentOption) {
	p.mu.Lock()
	old := p.paymentOptions
	p.paymentOptions = v
	p.mu.Unlock()
	p.publishDataChanged("payment_options", old, v)
}

// Accessibility returns the pool accessibility class
func (p *ChargingPool) Accessibility() types.Accessibility {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.accessibility
}

// SetAccessibility updates the pool accessibility class
func (p *ChargingPool) SetAccessibility(v types.Accessibility) {
	p.mu.Lock()
	old := p.accessibility
	p.accessibility = v
	p.mu.Unlock()
	p.publishDataChanged("accessibility", old, v)
}

func (p *ChargingPool) publishDataChanged(property string, old, new any) {
	if p.broker == nil {
		return
	}
	p.broker.Publish(&events.Message{
		Kind:      events.KindDataChanged,
		Timestamp: time.Now(),
		Operator:  p.operatorID,
		Pool:      p.id,
		Property:  property,
		Old:       old,
		New:       new,
	})
}

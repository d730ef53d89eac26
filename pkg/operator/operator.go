package operator

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/evroam/wwcp/pkg/events"
	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/log"
	"github.com/evroam/wwcp/pkg/pool"
	"github.com/evroam/wwcp/pkg/station"
	"github.com/evroam/wwcp/pkg/types"
)

// Config holds the identity and collaborators of an operator
type Config struct {
	ID     types.OperatorID
	Name   string
	Broker *events.Broker
}

// Operator is the legal owner of a set of charging pools. It is the
// factory for pools and the routing index used by roaming providers to
// reach stations and EVSEs.
type Operator struct {
	id     types.OperatorID
	name   string
	broker *events.Broker
	logger zerolog.Logger

	mu    sync.RWMutex
	pools map[types.PoolID]*pool.ChargingPool
}

// New creates an operator
func New(cfg Config) *Operator {
	return &Operator{
		id:     cfg.ID,
		name:   cfg.Name,
		broker: cfg.Broker,
		pools:  make(map[types.PoolID]*pool.ChargingPool),
		logger: log.WithComponent("operator"),
	}
}

// ID returns the operator identifier
func (o *Operator) ID() types.OperatorID {
	return o.id
}

// Name returns the operator name
func (o *Operator) Name() string {
	return o.name
}

// CreatePool creates a new charging pool owned by this operator
func (o *Operator) CreatePool(id types.PoolID, configure func(*pool.ChargingPool)) (*pool.ChargingPool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.pools[id]; exists {
		return nil, fmt.Errorf("create pool %s: %w", id, types.ErrPoolAlreadyExists)
	}

	p := pool.New(pool.Config{
		ID:         id,
		OperatorID: o.id,
		Broker:     o.broker,
	})
	if configure != nil {
		configure(p)
	}
	o.pools[id] = p
	return p, nil
}

// GetPoolByID returns the pool with the given id, or nil
func (o *Operator) GetPoolByID(id types.PoolID) *pool.ChargingPool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pools[id]
}

// Pools returns a snapshot of all pools of this operator
func (o *Operator) Pools() []*pool.ChargingPool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]*pool.ChargingPool, 0, len(o.pools))
	for _, p := range o.pools {
		out = append(out, p)
	}
	return out
}

// Stations returns a snapshot of all stations across all pools
func (o *Operator) Stations() []*station.ChargingStation {
	var out []*station.ChargingStation
	for _, p := range o.Pools() {
		out = append(out, p.Stations()...)
	}
	return out
}

// EVSEs returns a snapshot of all EVSEs across all pools
func (o *Operator) EVSEs() []*evse.EVSE {
	var out []*evse.EVSE
	for _, s := range o.Stations() {
		out = append(out, s.EVSEs()...)
	}
	return out
}

// GetStationByID searches all pools for the station with the given id
func (o *Operator) GetStationByID(id types.StationID) *station.ChargingStation {
	for _, p := range o.Pools() {
		if s := p.GetStationByID(id); s != nil {
			return s
		}
	}
	return nil
}

// StationForEVSE returns the station owning the EVSE with the given id
func (o *Operator) StationForEVSE(id types.EVSEID) *station.ChargingStation {
	for _, s := range o.Stations() {
		if s.ContainsEVSE(id) {
			return s
		}
	}
	return nil
}

// GetEVSEByID searches all pools for the EVSE with the given id
func (o *Operator) GetEVSEByID(id types.EVSEID) *evse.EVSE {
	if s := o.StationForEVSE(id); s != nil {
		return s.GetEVSEByID(id)
	}
	return nil
}

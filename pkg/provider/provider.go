package provider

import (
	"context"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"

	"github.com/evroam/wwcp/pkg/events"
	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/log"
	"github.com/evroam/wwcp/pkg/metrics"
	"github.com/evroam/wwcp/pkg/network"
	"github.com/evroam/wwcp/pkg/station"
	"github.com/evroam/wwcp/pkg/types"
	"github.com/evroam/wwcp/pkg/upstream"
)

// DefaultServiceCheckEvery is the default delay between an enqueue and the
// flush that uploads it
const DefaultServiceCheckEvery = 5 * time.Second

// StatusChange is one queued EVSE status delta
type StatusChange struct {
	EVSEID types.EVSEID
	Old    types.Timestamped[types.EVSEStatus]
	New    types.Timestamped[types.EVSEStatus]
}

// Config holds the identity and collaborators of a roaming provider
type Config struct {
	ID                 types.ProviderID
	Network            *network.RoamingNetwork
	Service            upstream.Service
	ServiceCheckEvery  time.Duration
	DisableAutoUploads bool
	IncludeEVSE        func(*evse.EVSE) bool
}

// Provider bridges the local roaming network and one external roaming
// partner. It subscribes to the network bus, collects change events in
// four bounded queues and periodically pushes the accumulated deltas to
// the upstream service.
type Provider struct {
	id                 types.ProviderID
	network            *network.RoamingNetwork
	service            upstream.Service
	serviceCheckEvery  time.Duration
	disableAutoUploads bool
	includeEVSE        func(*evse.EVSE) bool
	logger             zerolog.Logger

	mu            sync.Mutex
	toAdd         mapset.Set[types.EVSEID]
	dataUpdates   mapset.Set[types.EVSEID]
	toRemove      mapset.Set[types.EVSEID]
	statusChanges []StatusChange
	evseIndex     map[types.EVSEID]*evse.EVSE
	runID         uint64
	timer         *time.Timer
	timerArmed    bool

	// flushMu serializes flush cycles; a held lock skips the tick
	flushMu sync.Mutex

	sub    events.Subscriber
	stopCh chan struct{}
}

// New creates a roaming provider. The flush timer starts disarmed; the
// first enqueue arms it.
func New(cfg Config) *Provider {
	if cfg.ServiceCheckEvery <= 0 {
		cfg.ServiceCheckEvery = DefaultServiceCheckEvery
	}

	p := &Provider{
		id:                 cfg.ID,
		network:            cfg.Network,
		service:            cfg.Service,
		serviceCheckEvery:  cfg.ServiceCheckEvery,
		disableAutoUploads: cfg.DisableAutoUploads,
		includeEVSE:        cfg.IncludeEVSE,
		toAdd:              mapset.NewSet[types.EVSEID](),
		dataUpdates:        mapset.NewSet[types.EVSEID](),
		toRemove:           mapset.NewSet[types.EVSEID](),
		evseIndex:          make(map[types.EVSEID]*evse.EVSE),
		stopCh:             make(chan struct{}),
		logger:             log.WithProviderID(string(cfg.ID)),
	}

	// Sentinel disarmed state: the timer exists but never fires until an
	// enqueue resets it.
	p.timer = time.AfterFunc(time.Duration(1<<62), func() {
		p.Flush(context.Background())
	})
	p.timer.Stop()

	return p
}

// ID returns the provider identifier
func (p *Provider) ID() types.ProviderID {
	return p.id
}

// RunID returns the number of completed flush cycles
func (p *Provider) RunID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runID
}

// Start subscribes the provider to the roaming network's message bus
func (p *Provider) Start() {
	p.sub = p.network.Broker().Subscribe()
	go p.run()
}

// Stop detaches the provider from the bus and disarms the timer
func (p *Provider) Stop() {
	close(p.stopCh)
	p.network.Broker().Unsubscribe(p.sub)
	p.timer.Stop()
}

// run consumes bus messages until stopped
func (p *Provider) run() {
	for {
		select {
		case msg, ok := <-p.sub:
			if !ok {
				return
			}
			p.handleMessage(msg)
		case <-p.stopCh:
			return
		}
	}
}

// handleMessage translates a bus message into the matching enqueue
func (p *Provider) handleMessage(msg *events.Message) {
	switch msg.Kind {
	case events.KindEVSEAdded:
		if e := p.network.GetEVSEByID(msg.EVSE); e != nil {
			p.EnqueueEVSEAddition(e)
		}

	case events.KindEVSERemoved:
		p.EnqueueEVSERemoval(msg.EVSE)

	case events.KindDataChanged:
		if msg.EVSE != "" {
			if e := p.network.GetEVSEByID(msg.EVSE); e != nil {
				p.EnqueueDataUpdate(e)
			}
			return
		}
		// Station- or pool-level data changes touch all EVSEs below,
		// since stations inherit unset attributes from their pool
		if msg.Station != "" {
			if s := p.stationByID(msg.Station); s != nil {
				for _, e := range s.EVSEs() {
					p.EnqueueDataUpdate(e)
				}
			}
			return
		}
		if msg.Pool != "" {
			for _, s := range p.stationsOfPool(msg.Pool) {
				for _, e := range s.EVSEs() {
					p.EnqueueDataUpdate(e)
				}
			}
		}

	case events.KindStatusChanged:
		if msg.EVSE == "" {
			return
		}
		newStatus, ok := msg.New.(types.Timestamped[types.EVSEStatus])
		if !ok {
			return
		}
		oldStatus, _ := msg.Old.(types.Timestamped[types.EVSEStatus])
		if e := p.network.GetEVSEByID(msg.EVSE); e != nil {
			p.EnqueueStatusUpdate(e, oldStatus, newStatus)
		}
	}
}

func (p *Provider) stationByID(id types.StationID) *station.ChargingStation {
	for _, o := range p.network.Operators() {
		if s := o.GetStationByID(id); s != nil {
			return s
		}
	}
	return nil
}

func (p *Provider) stationsOfPool(id types.PoolID) []*station.ChargingStation {
	for _, o := range p.network.Operators() {
		if pl := o.GetPoolByID(id); pl != nil {
			return pl.Stations()
		}
	}
	return nil
}

// include applies the optional EVSE filter predicate
func (p *Provider) include(e *evse.EVSE) bool {
	if p.includeEVSE == nil {
		return true
	}
	return p.includeEVSE(e)
}

// EnqueueEVSEAddition queues a new EVSE for the next data upload
func (p *Provider) EnqueueEVSEAddition(e *evse.EVSE) {
	if !p.include(e) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.toAdd.Add(e.ID())
	p.toRemove.Remove(e.ID())
	p.evseIndex[e.ID()] = e
	p.armLocked()
	p.updateQueueMetricsLocked()
}

// EnqueueEVSERemoval queues an EVSE for the next delete upload
func (p *Provider) EnqueueEVSERemoval(id types.EVSEID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.toRemove.Add(id)
	p.toAdd.Remove(id)
	p.dataUpdates.Remove(id)
	p.armLocked()
	p.updateQueueMetricsLocked()
}

// EnqueueDataUpdate queues an EVSE whose static data changed
func (p *Provider) EnqueueDataUpdate(e *evse.EVSE) {
	if !p.include(e) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.dataUpdates.Add(e.ID())
	p.evseIndex[e.ID()] = e
	p.armLocked()
	p.updateQueueMetricsLocked()
}

// EnqueueStatusUpdate queues one EVSE status delta
func (p *Provider) EnqueueStatusUpdate(e *evse.EVSE, old, new types.Timestamped[types.EVSEStatus]) {
	if !p.include(e) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.statusChanges = append(p.statusChanges, StatusChange{EVSEID: e.ID(), Old: old, New: new})
	p.evseIndex[e.ID()] = e
	p.armLocked()
	p.updateQueueMetricsLocked()
}

// armLocked sets the flush timer to fire in serviceCheckEvery unless it
// is already armed or auto uploads are disabled
func (p *Provider) armLocked() {
	if p.timerArmed || p.disableAutoUploads {
		return
	}
	p.timer.Reset(p.serviceCheckEvery)
	p.timerArmed = true
}

func (p *Provider) disarmLocked() {
	p.timer.Stop()
	p.timerArmed = false
}

func (p *Provider) updateQueueMetricsLocked() {
	id := string(p.id)
	metrics.ProviderQueueLength.WithLabelValues(id, "to_add").Set(float64(p.toAdd.Cardinality()))
	metrics.ProviderQueueLength.WithLabelValues(id, "data_updates").Set(float64(p.dataUpdates.Cardinality()))
	metrics.ProviderQueueLength.WithLabelValues(id, "status_changes").Set(float64(len(p.statusChanges)))
	metrics.ProviderQueueLength.WithLabelValues(id, "to_remove").Set(float64(p.toRemove.Cardinality()))
}

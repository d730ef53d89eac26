package network

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/evroam/wwcp/pkg/events"
	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/log"
	"github.com/evroam/wwcp/pkg/operator"
	"github.com/evroam/wwcp/pkg/station"
	"github.com/evroam/wwcp/pkg/types"
)

// RoamingNetwork is the top-level container binding operators and roaming
// providers. It owns the message bus and routes provider-originated calls
// to the station owning the target EVSE.
type RoamingNetwork struct {
	id     types.NetworkID
	broker *events.Broker
	logger zerolog.Logger

	mu        sync.RWMutex
	operators map[types.OperatorID]*operator.Operator
}

// New creates a roaming network with its own message broker
func New(id types.NetworkID) *RoamingNetwork {
	return &RoamingNetwork{
		id:        id,
		broker:    events.NewBroker(),
		operators: make(map[types.OperatorID]*operator.Operator),
		logger:    log.WithComponent("roaming-network"),
	}
}

// ID returns the network identifier
func (n *RoamingNetwork) ID() types.NetworkID {
	return n.id
}

// Broker returns the network's message bus
func (n *RoamingNetwork) Broker() *events.Broker {
	return n.broker
}

// Start starts the message bus
func (n *RoamingNetwork) Start() {
	n.broker.Start()
}

// Stop stops the message bus
func (n *RoamingNetwork) Stop() {
	n.broker.Stop()
}

// CreateOperator creates a new operator inside this network
func (n *RoamingNetwork) CreateOperator(id types.OperatorID, name string) (*operator.Operator, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.operators[id]; exists {
		return nil, fmt.Errorf("create operator %s: already exists", id)
	}

	o := operator.New(operator.Config{ID: id, Name: name, Broker: n.broker})
	n.operators[id] = o
	return o, nil
}

// GetOperatorByID returns the operator with the given id, or nil
func (n *RoamingNetwork) GetOperatorByID(id types.OperatorID) *operator.Operator {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.operators[id]
}

// Operators returns a snapshot of all operators
func (n *RoamingNetwork) Operators() []*operator.Operator {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]*operator.Operator, 0, len(n.operators))
	for _, o := range n.operators {
		out = append(out, o)
	}
	return out
}

// StationForEVSE returns the station owning the EVSE with the given id
func (n *RoamingNetwork) StationForEVSE(id types.EVSEID) *station.ChargingStation {
	for _, o := range n.Operators() {
		if s := o.StationForEVSE(id); s != nil {
			return s
		}
	}
	return nil
}

// GetEVSEByID searches the whole network for the EVSE with the given id
func (n *RoamingNetwork) GetEVSEByID(id types.EVSEID) *evse.EVSE {
	for _, o := range n.Operators() {
		if e := o.GetEVSEByID(id); e != nil {
			return e
		}
	}
	return nil
}

// Reserve routes a provider-originated reserve call to the owning station
func (n *RoamingNetwork) Reserve(ctx context.Context, evseID types.EVSEID, p evse.ReserveParams) types.ReservationResult {
	s := n.StationForEVSE(evseID)
	if s == nil {
		return types.ReservationResult{Type: types.ReservationUnknownEVSE}
	}
	return s.Reserve(ctx, evseID, p)
}

// CancelReservation routes a cancellation to every station until one
// knows the reservation
func (n *RoamingNetwork) CancelReservation(ctx context.Context, id types.ReservationID, reason types.ReservationCancelReason) types.CancelReservationResult {
	for _, o := range n.Operators() {
		for _, s := range o.Stations() {
			result := s.CancelReservation(ctx, id, reason)
			if result.Type == types.CancelReservationSuccess {
				return result
			}
		}
	}
	return types.CancelReservationResult{Type: types.CancelReservationUnknownID, ReservationID: id}
}

// RemoteStart routes a provider-originated start to the owning station
func (n *RoamingNetwork) RemoteStart(ctx context.Context, evseID types.EVSEID, p evse.StartParams) types.RemoteStartResult {
	s := n.StationForEVSE(evseID)
	if s == nil {
		return types.RemoteStartResult{Type: types.RemoteStartUnknownEVSE}
	}
	return s.RemoteStart(ctx, evseID, p)
}

// RemoteStop routes a provider-originated stop to the station holding the
// session
func (n *RoamingNetwork) RemoteStop(ctx context.Context, sessionID types.SessionID) types.RemoteStopResult {
	for _, o := range n.Operators() {
		for _, s := range o.Stations() {
			for _, e := range s.EVSEs() {
				if session := e.Session(); session != nil && session.ID == sessionID {
					return s.RemoteStop(ctx, sessionID)
				}
			}
		}
	}
	return types.RemoteStopResult{Type: types.RemoteStopInvalidSessionID}
}

package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evroam/wwcp/pkg/metrics"
	"github.com/evroam/wwcp/pkg/types"
)

// Kind represents the type of a domain message
type Kind string

const (
	KindDataChanged          Kind = "data.changed"
	KindStatusChanged        Kind = "status.changed"
	KindAdminStatusChanged   Kind = "admin-status.changed"
	KindEVSEAdded            Kind = "evse.added"
	KindEVSERemoved          Kind = "evse.removed"
	KindReservationMade      Kind = "reservation.made"
	KindReservationCancelled Kind = "reservation.cancelled"
	KindSessionStarted       Kind = "session.started"
	KindSessionStopped       Kind = "session.stopped"
	KindCDRCreated           Kind = "cdr.created"
)

// Message is one domain event on the roaming-network bus. Mutators publish
// a single message instead of forwarding through nested per-level handlers;
// subscribers filter by kind and entity ids.
type Message struct {
	ID        string
	Kind      Kind
	Timestamp time.Time

	Operator types.OperatorID
	Pool     types.PoolID
	Station  types.StationID
	EVSE     types.EVSEID

	// Property carries the attribute name for data.changed messages
	Property string
	Old      any
	New      any
}

// Subscriber is a channel that receives messages
type Subscriber chan *Message

// Broker manages event subscriptions and distribution for one roaming
// network
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	messageCh   chan *Message
	stopCh      chan struct{}
}

// NewBroker creates a new message broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		messageCh:   make(chan *Message, 100), // Buffer up to 100 messages
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50) // Buffer per subscriber
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes a message to all subscribers
func (b *Broker) Publish(msg *Message) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	metrics.MessagesPublishedTotal.WithLabelValues(string(msg.Kind)).Inc()

	select {
	case b.messageCh <- msg:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case msg := <-b.messageCh:
			b.broadcast(msg)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(msg *Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- msg:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/evroam/wwcp/pkg/types"
)

func receive(t *testing.T, sub Subscriber) *Message {
	t.Helper()
	select {
	case msg := <-sub:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

// TestBrokerDelivery tests that a published message reaches every
// subscriber with id and timestamp filled in
func TestBrokerDelivery(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(&Message{
		Kind:    KindStatusChanged,
		Station: types.StationID("ST1"),
		EVSE:    types.EVSEID("E1"),
	})

	for _, sub := range []Subscriber{sub1, sub2} {
		msg := receive(t, sub)
		assert.Equal(t, KindStatusChanged, msg.Kind)
		assert.Equal(t, types.EVSEID("E1"), msg.EVSE)
		assert.NotEmpty(t, msg.ID)
		assert.False(t, msg.Timestamp.IsZero())
	}
}

// TestBrokerUnsubscribe tests that an unsubscribed channel is closed and
// no longer counted
func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount())

	_, open := <-sub
	assert.False(t, open)
}

// TestBrokerSlowSubscriber tests that a full subscriber buffer drops the
// message instead of blocking the broker
func TestBrokerSlowSubscriber(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	slow := b.Subscribe()
	live := b.Subscribe()

	// Overflow the slow subscriber's buffer.
	for i := 0; i < cap(slow)+10; i++ {
		b.Publish(&Message{Kind: KindDataChanged})
	}

	// The live subscriber still receives messages.
	msg := receive(t, live)
	assert.Equal(t, KindDataChanged, msg.Kind)
}

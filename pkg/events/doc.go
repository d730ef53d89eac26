/*
Package events provides the in-memory message bus of a roaming network.

Every roaming network owns one Broker. Entity mutators publish a single
typed Message per change instead of forwarding events through nested
per-level handlers; subscribers (roaming providers, metrics, the daemon's
event log) filter by message kind and entity ids. This replaces O(depth)
manual wiring through pool, operator and network with one hop.

# Architecture

	┌─────────────────── MESSAGE BUS ────────────────────┐
	│                                                     │
	│  EVSE / Station / Pool mutators                     │
	│        │ Publish(msg)                               │
	│        ▼                                            │
	│  Message Channel (buffer: 100)                      │
	│        │ broadcast loop                             │
	│        ▼                                            │
	│  Subscriber Channels (buffer: 50 each)              │
	│        │                                            │
	│        ├── Roaming provider (enqueue for upload)    │
	│        ├── Metrics (count transitions)              │
	│        └── Daemon event log                         │
	└─────────────────────────────────────────────────────┘

# Message Kinds

  - data.changed: an inheritable attribute changed (Property, Old, New)
  - status.changed / admin-status.changed: schedule transitions
  - evse.added / evse.removed: membership changes
  - reservation.made / reservation.cancelled
  - session.started / session.stopped, cdr.created

# Delivery Semantics

Publish is non-blocking; a subscriber whose buffer is full skips the
message. The bus is telemetry-class fan-out, not a durable queue: the
provider's own queues are the unit of reliability for uploads.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for msg := range sub {
			switch msg.Kind {
			case events.KindStatusChanged:
				handleStatusChange(msg)
			}
		}
	}()
*/
package events

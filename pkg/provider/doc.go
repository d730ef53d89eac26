/*
Package provider implements the bridge between a local roaming network
and one external roaming partner.

# Architecture

A Provider subscribes to the network's message bus and sorts incoming
change events into four bounded queues:

	┌──────────────────────────────────────────────────────┐
	│                      Provider                        │
	│                                                      │
	│  bus ──► handleMessage ──┬──► toAdd          (set)   │
	│                          ├──► dataUpdates    (set)   │
	│                          ├──► statusChanges  (list)  │
	│                          └──► toRemove       (set)   │
	│                                                      │
	│  first enqueue arms timer ──► Flush ──► upstream     │
	└──────────────────────────────────────────────────────┘

The id sets deduplicate: enqueueing an EVSE twice queues one upload.
Enqueues also reconcile across queues, so an EVSE that is added and then
removed before the next flush produces only the removal, and vice versa.

# Flushing

The flush timer is one-shot. It starts disarmed, the first enqueue after
a flush arms it, and Flush disarms it again after draining the queues.
A quiet network therefore costs no timer wakeups. Flush snapshots and
clears all queues under the provider lock, then pushes outside the lock
in a fixed order: additions, data updates, status changes, removals.
The very first flush of a provider's lifetime pushes with the fullLoad
action so the partner starts from a complete picture; later flushes use
insert/update/delete. Concurrent flush attempts are skipped, not queued.

Push failures are logged and dropped. The partner is expected to recover
missed deltas from the next full load; re-enqueueing on error would grow
the queues without bound when the partner is down.

# Filtering

An optional IncludeEVSE predicate restricts which EVSEs the provider
mirrors upstream. Excluded EVSEs never enter the queues.

# Integration Points

  - pkg/events: the bus subscription feeding the queues
  - pkg/network: EVSE lookups and downstream call routing
  - pkg/upstream: the Service interface flushes push through
  - pkg/metrics: queue gauges and flush counters
*/
package provider

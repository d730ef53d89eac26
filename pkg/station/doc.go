/*
Package station implements the charging station, the representative
aggregate of the roaming hierarchy.

A ChargingStation owns a set of EVSEs (unique by id), inherits unset
descriptive attributes from its pool, derives its operational status from
its children and orchestrates reservations and remote start/stop with an
optional out-of-process mirror.

# Architecture

	┌────────────────── CHARGING STATION ──────────────────┐
	│                                                       │
	│  Attribute reads ──► local override, else pool value  │
	│                                                       │
	│  EVSE membership                                      │
	│    CreateEVSE ──► voting ──► wire ──► notification    │
	│    child status ──► aggregation delegate ──► station  │
	│                     status schedule (15 entries)      │
	│                                                       │
	│  Admin gating                                         │
	│    admin ∈ {operational, internal-use}: operational   │
	│    schedule visible; otherwise status and schedule    │
	│    masked to one out-of-service entry                 │
	│                                                       │
	│  Reservation / remote start / stop                    │
	│    pre-event ──► admin gate ──► remote mirror first,  │
	│    local fallback on unknown-evse/error ──► post-event│
	└───────────────────────────────────────────────────────┘

# Attribute Inheritance

Each inheritable attribute (name, description, addresses, geo location,
opening times, auth modes, payment options, accessibility, hotline) reads
through to the pool while no local override is present. Writing the pool's
current value or an empty value deletes the override; every effective
change publishes a data-changed message on the network bus.

# Status Derivation

With a StatusAggregationDelegate installed, every child EVSE status
transition rebuilds an EVSEStatusReport snapshot and inserts the
delegate's result into the station schedule at the child's change instant.
The changed EVSE's value is taken from the event itself since its schedule
lock is still held while listeners run.

# Dual Dispatch

When a RemoteStation mirror is attached, reserve, cancel, start and stop
go to the mirror first. Unknown-evse and error outcomes fall back to the
local EVSE set; all other outcomes are final. Pre- and post-events fire
around every call, with subscriber panics swallowed and logged so hook
failures never abort an operation.

# Integration Points

This package integrates with:

  - pkg/evse: owned children and their schedules
  - pkg/pool: PoolRef attribute fallback and factory
  - pkg/events: one published message per mutation
  - pkg/provider: consumes membership and status messages
*/
package station

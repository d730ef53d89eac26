/*
Package status implements the bounded, timestamped status history used by
every entity in the roaming hierarchy.

A Schedule[T] keeps at most MaxSize (instant, value) entries, newest-first,
and derives two views from them:

  - Current: the newest entry whose instant is not in the future, or a
    synthetic (now, zero value) entry while the schedule is empty
  - Next: the soonest entry with an instant in the future, if any

Whenever a mutation changes the *value* of Current, the schedule notifies
its change listeners exactly once with the old and new current entries.
Keeping the zero value as the empty baseline means the first real insert
always fires a transition, which seeds downstream state such as the
provider's status queue.

# Invariants

  - No two entries share the same instant; a duplicate instant replaces
    the previous entry
  - Inserting a value equal to the newest entry is a no-op
  - The history never exceeds MaxSize; the newest entries win
  - Transitions are detected by value equality, not by insertion order

# Concurrency

All operations take the internal schedule lock. Listeners run
synchronously on the mutating goroutine after the lock is released, so a
listener may read or mutate the schedule it is attached to. Two schedules
wired to echo each other's transitions settle on the value-equality
no-op.

# Usage

	sched := status.NewSchedule[types.EVSEStatus](100)
	sched.OnStatusChanged(func(ts time.Time, old, new types.Timestamped[types.EVSEStatus]) {
		log.Debug().Str("old", string(old.Value)).Str("new", string(new.Value)).Msg("transition")
	})
	sched.Insert(types.EVSEStatusAvailable)
	sched.InsertAt(types.EVSEStatusOccupied, time.Now().Add(10*time.Minute))

# Integration Points

This package integrates with:

  - pkg/evse, pkg/station, pkg/pool: admin and operational histories
  - pkg/provider: status-change enqueue via schedule listeners
*/
package status

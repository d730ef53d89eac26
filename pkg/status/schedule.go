package status

import (
	"sort"
	"sync"
	"time"

	"github.com/evroam/wwcp/pkg/types"
)

// DefaultMaxSize is the default history bound of a schedule
const DefaultMaxSize = 100

// BulkMode controls how InsertBulk merges entries into the schedule
type BulkMode string

const (
	// BulkInsert merges the given entries into the existing history
	BulkInsert BulkMode = "insert"
	// BulkReplace discards the existing history first
	BulkReplace BulkMode = "replace"
)

// ChangeListener is invoked on every current-value transition.
// Listeners run synchronously after the mutation, outside the schedule
// lock, so they may call back into the schedule. Two schedules that echo
// each other's transitions terminate on the value-equality no-op.
type ChangeListener[T comparable] func(ts time.Time, old, new types.Timestamped[T])

// Schedule is a bounded, timestamp-ordered history of values with
// current/next derivation and change notification. Entries are kept
// newest-first and no two entries share the same instant.
type Schedule[T comparable] struct {
	mu        sync.Mutex
	maxSize   int
	entries   []types.Timestamped[T] // newest-first
	current   types.Timestamped[T]   // last computed current, zero value baseline
	listeners []ChangeListener[T]
}

// NewSchedule creates a schedule bounded to maxSize entries.
// A maxSize of zero or less selects DefaultMaxSize.
func NewSchedule[T comparable](maxSize int) *Schedule[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Schedule[T]{maxSize: maxSize}
}

// OnStatusChanged registers a listener for current-value transitions
func (s *Schedule[T]) OnStatusChanged(fn ChangeListener[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Insert records a value stamped with the current wall clock
func (s *Schedule[T]) Insert(value T) {
	s.InsertAt(value, time.Now())
}

// InsertAt records a value at the given instant. Inserting a value equal
// to the newest entry is a no-op; inserting at an instant that already has
// an entry replaces that entry.
func (s *Schedule[T]) InsertAt(value T, ts time.Time) {
	s.mu.Lock()
	if len(s.entries) > 0 && s.entries[0].Value == value {
		s.mu.Unlock()
		return
	}

	s.replaceInstantLocked(ts)
	s.entries = append(s.entries, types.NewTimestamped(ts, value))
	s.sortAndTruncateLocked()

	now := time.Now()
	old, cur, fns := s.transitionLocked(now)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(now, old, cur)
	}
}

// InsertBulk merges a list of entries in one step. Duplicate instants are
// de-duplicated with the latest list entry winning; the transition check
// runs exactly once against the pre-existing current value.
func (s *Schedule[T]) InsertBulk(entries []types.Timestamped[T], mode BulkMode) {
	s.mu.Lock()

	if mode == BulkReplace {
		s.entries = nil
	}

	byInstant := make(map[int64]types.Timestamped[T], len(s.entries)+len(entries))
	for _, e := range s.entries {
		byInstant[e.Timestamp.UnixNano()] = e
	}
	for _, e := range entries {
		byInstant[e.Timestamp.UnixNano()] = e
	}

	s.entries = s.entries[:0]
	for _, e := range byInstant {
		s.entries = append(s.entries, e)
	}
	s.sortAndTruncateLocked()

	now := time.Now()
	old, cur, fns := s.transitionLocked(now)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(now, old, cur)
	}
}

// Current returns the newest entry whose instant is not in the future, or
// a synthetic (now, zero value) entry when there is none
func (s *Schedule[T]) Current() types.Timestamped[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(time.Now())
}

// CurrentValue returns the value of Current
func (s *Schedule[T]) CurrentValue() T {
	return s.Current().Value
}

// Next returns the soonest entry with an instant in the future, if any
func (s *Schedule[T]) Next() (types.Timestamped[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var next types.Timestamped[T]
	found := false
	// Entries are newest-first, so the last future entry is the soonest.
	for _, e := range s.entries {
		if !e.Timestamp.After(now) {
			break
		}
		next = e
		found = true
	}
	return next, found
}

// Entries returns a copy of the history, newest-first
func (s *Schedule[T]) Entries() []types.Timestamped[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Timestamped[T], len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries in the history
func (s *Schedule[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// replaceInstantLocked drops an existing entry at the same instant
func (s *Schedule[T]) replaceInstantLocked(ts time.Time) {
	for i, e := range s.entries {
		if e.Timestamp.Equal(ts) {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *Schedule[T]) sortAndTruncateLocked() {
	sort.Slice(s.entries, func(i, j int) bool {
		return s.entries[i].Timestamp.After(s.entries[j].Timestamp)
	})
	if len(s.entries) > s.maxSize {
		s.entries = s.entries[:s.maxSize]
	}
}

func (s *Schedule[T]) currentLocked(now time.Time) types.Timestamped[T] {
	for _, e := range s.entries {
		if !e.Timestamp.After(now) {
			return e
		}
	}
	var zero T
	return types.NewTimestamped(now, zero)
}

// transitionLocked recomputes the current entry and, when its value
// changed, hands the transition plus the listener snapshot back to the
// caller. The caller fires the listeners after releasing the lock so they
// may re-enter the schedule.
func (s *Schedule[T]) transitionLocked(now time.Time) (old, cur types.Timestamped[T], fns []ChangeListener[T]) {
	cur = s.currentLocked(now)
	old = s.current
	s.current = cur
	if cur.Value == old.Value {
		return old, cur, nil
	}
	return old, cur, s.listeners
}

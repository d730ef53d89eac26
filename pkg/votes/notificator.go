package votes

import "sync"

// Notificator is a two-phase "voting then notification" broadcast.
// Voting subscribers may veto an operation before it takes effect;
// notification subscribers observe it unconditionally afterwards.
type Notificator[T any] struct {
	mu        sync.RWMutex
	voters    []func(T) bool
	observers []func(T)
}

// New creates an empty notificator
func New[T any]() *Notificator[T] {
	return &Notificator[T]{}
}

// OnVoting registers a voting subscriber. Returning false vetoes the
// operation.
func (n *Notificator[T]) OnVoting(fn func(T) bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.voters = append(n.voters, fn)
}

// OnNotification registers a notification subscriber
func (n *Notificator[T]) OnNotification(fn func(T)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, fn)
}

// SendVoting asks all voting subscribers. It returns false as soon as any
// subscriber vetoes; with no voters registered the vote passes.
func (n *Notificator[T]) SendVoting(event T) bool {
	n.mu.RLock()
	voters := n.voters
	n.mu.RUnlock()

	for _, vote := range voters {
		if !vote(event) {
			return false
		}
	}
	return true
}

// SendNotification informs all notification subscribers
func (n *Notificator[T]) SendNotification(event T) {
	n.mu.RLock()
	observers := n.observers
	n.mu.RUnlock()

	for _, notify := range observers {
		notify(event)
	}
}

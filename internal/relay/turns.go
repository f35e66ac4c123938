// ABOUTME: Per-conversation turn tracking for the relay
// ABOUTME: Enforces at most one in-flight turn per conversation via a mutex-guarded map

package relay

import (
	"context"
	"errors"
	"sync"
)

// ErrTurnInProgress is returned when a turn is already running for the
// conversation. Clients may retry once the active turn completes.
var ErrTurnInProgress = errors.New("turn already in progress")

// ErrNoActiveTurn is returned by Cancel when the conversation has no turn in
// flight.
var ErrNoActiveTurn = errors.New("no active turn")

// turnTracker holds the set of conversations with a turn in flight.
// The check-and-set in begin is the single synchronization point that keeps
// two turns from interleaving writes to the same assistant placeholder.
type turnTracker struct {
	mu     sync.Mutex
	active map[string]context.CancelFunc
}

func newTurnTracker() *turnTracker {
	return &turnTracker{active: make(map[string]context.CancelFunc)}
}

// begin marks a turn in flight for the conversation, retaining cancel as the
// explicit stop signal. Returns ErrTurnInProgress if one is already active.
func (t *turnTracker) begin(conversationID string, cancel context.CancelFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[conversationID]; ok {
		return ErrTurnInProgress
	}
	t.active[conversationID] = cancel
	return nil
}

// finish clears the in-flight flag. Called exactly once per begun turn,
// after the placeholder is sealed.
func (t *turnTracker) finish(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, conversationID)
}

// cancel fires the stop signal for the conversation's active turn.
func (t *turnTracker) cancel(conversationID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cancelFn, ok := t.active[conversationID]
	if !ok {
		return ErrNoActiveTurn
	}
	cancelFn()
	return nil
}

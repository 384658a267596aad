package interview

import (
	"context"
	"sync"
)

// inflight tracks the cancel functions of AI calls running on behalf of
// each session so that cancelling or deleting the session stops them.
type inflight struct {
	mu    sync.Mutex
	next  uint64
	calls map[string]map[uint64]context.CancelFunc
}

func newInflight() *inflight {
	return &inflight{calls: make(map[string]map[uint64]context.CancelFunc)}
}

// register derives a cancellable context for sessionID. The returned
// release func must be called when the call finishes.
func (r *inflight) register(ctx context.Context, sessionID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.next++
	id := r.next
	if r.calls[sessionID] == nil {
		r.calls[sessionID] = make(map[uint64]context.CancelFunc)
	}
	r.calls[sessionID][id] = cancel
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		delete(r.calls[sessionID], id)
		if len(r.calls[sessionID]) == 0 {
			delete(r.calls, sessionID)
		}
		r.mu.Unlock()
		cancel()
	}
}

// cancel stops every registered call for sessionID and returns how many
// were stopped.
func (r *inflight) cancel(sessionID string) int {
	r.mu.Lock()
	calls := r.calls[sessionID]
	delete(r.calls, sessionID)
	r.mu.Unlock()

	for _, c := range calls {
		c()
	}
	return len(calls)
}

func (r *inflight) count(sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls[sessionID])
}

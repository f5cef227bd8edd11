package inflight

import (
	"context"
	"sync"
)

// Ticket identifies one request against a Guard.
type Ticket uint64

type Guard struct {
	mutex  sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Begin cancels the pending request, if any, and returns a context and
// ticket for the new one.
func (g *Guard) Begin(parent context.Context) (context.Context, Ticket) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.cancel != nil {
		g.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	g.seq++
	g.cancel = cancel
	return ctx, Ticket(g.seq)
}

// Current reports whether t is the latest ticket issued.
func (g *Guard) Current(t Ticket) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return uint64(t) == g.seq
}

// Finish releases the context of t once its result has been handled.
// It is a no-op for superseded tickets.
func (g *Guard) Finish(t Ticket) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if uint64(t) != g.seq || g.cancel == nil {
		return
	}
	g.cancel()
	g.cancel = nil
}

// Cancel aborts the pending request and invalidates every ticket issued so
// far.
func (g *Guard) Cancel() {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.seq++
}

// Pending reports whether a request holding the latest ticket is in flight.
func (g *Guard) Pending() bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.cancel != nil
}

// Package gateway implements the high-level Client and the Pool of
// transport.Connections it dispatches through, per §2.C/D and §4.C/D.
package gateway

import (
	"context"
	"sync"

	"github.com/sammck-go/rgate/logging"
	"github.com/sammck-go/rgate/transport"
)

// DefaultMaxConnections is the default bound on concurrently open
// connections in a Pool, per §4.C.
const DefaultMaxConnections = 4

// TokenProvider returns the current auth token to use for new connections.
// It is consulted on every dial, so a hot-reloaded token (see
// cmd/rgate's fsnotify-backed token file watch) takes effect on the very
// next connection the pool opens.
type TokenProvider func() string

// Pool is a bounded set of transport.Connections to one gateway address,
// with a FIFO waiter queue, per §4.C. It never retries a failed dial or
// auth handshake — the error propagates straight to the caller.
type Pool struct {
	logger        logging.Logger
	addr          string
	maxConns      int
	tokenProvider TokenProvider

	mu   sync.Mutex
	idle []*transport.Connection
	// numOpen counts every live connection the pool currently owns, whether
	// checked out or idle; it is what maxConns actually bounds, per §4.C's
	// "active + idle <= maxConnections" invariant.
	numOpen int
	// numActive counts only checked-out connections (numOpen - len(idle)),
	// tracked separately so Snapshot can report it without recomputing.
	numActive int
	waiters   []chan waiterResult
	closed    bool
}

type waiterResult struct {
	conn *transport.Connection
	err  error
}

// NewPool creates a Pool bound to addr with maxConns concurrently open
// connections (DefaultMaxConnections if maxConns <= 0).
func NewPool(logger logging.Logger, addr string, maxConns int, tokenProvider TokenProvider) *Pool {
	if maxConns <= 0 {
		maxConns = DefaultMaxConnections
	}
	return &Pool{
		logger:        logger.Fork("pool(%s)", addr),
		addr:          addr,
		maxConns:      maxConns,
		tokenProvider: tokenProvider,
	}
}

// Acquire hands out an idle live connection if one exists; otherwise, if
// fewer than maxConns connections are open (checked out or idle), dials and
// authenticates a new one; otherwise blocks until a connection is released
// to this caller.
func (p *Pool) Acquire(ctx context.Context) (*transport.Connection, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, p.logger.Errorf("pool is closed")
	}

	for len(p.idle) > 0 {
		conn := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if conn.IsLive() {
			p.numActive++
			p.mu.Unlock()
			return conn, nil
		}
		// Dead connection found idle; discard and keep looking.
		p.numOpen--
	}

	if p.numOpen < p.maxConns {
		p.numOpen++
		p.numActive++
		p.mu.Unlock()
		conn, err := p.dial(ctx)
		if err != nil {
			p.mu.Lock()
			p.numOpen--
			p.numActive--
			p.mu.Unlock()
			return nil, err
		}
		return conn, nil
	}

	wait := make(chan waiterResult, 1)
	p.waiters = append(p.waiters, wait)
	p.mu.Unlock()

	select {
	case r := <-wait:
		return r.conn, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pool) dial(ctx context.Context) (*transport.Connection, error) {
	var token string
	if p.tokenProvider != nil {
		token = p.tokenProvider()
	}
	return transport.Dial(ctx, p.logger, p.addr, token)
}

// Release returns conn to the pool. If a waiter is parked, conn is handed
// directly to the oldest one (bypassing the idle set), per §4.C — it stays
// checked out, so numActive is untouched. Otherwise a live conn rejoins the
// idle set (no longer active), a dead one is discarded entirely, and a live
// one released after CloseAll is closed.
func (p *Pool) Release(conn *transport.Connection) {
	p.mu.Lock()
	if len(p.waiters) > 0 {
		wait := p.waiters[0]
		p.waiters = p.waiters[1:]
		p.mu.Unlock()
		wait <- waiterResult{conn: conn}
		return
	}

	p.numActive--
	closeConn := false
	if conn.IsLive() && !p.closed {
		p.idle = append(p.idle, conn)
	} else {
		p.numOpen--
		closeConn = conn.IsLive()
	}
	p.mu.Unlock()
	if closeConn {
		conn.Close()
	}
}

// WithConnection acquires a connection, invokes f, and releases the
// connection on both the success and failure path. It is a package-level
// generic function, since Go methods cannot carry their own type
// parameters.
func WithConnection[T any](ctx context.Context, p *Pool, f func(*transport.Connection) (T, error)) (T, error) {
	var zero T
	conn, err := p.Acquire(ctx)
	if err != nil {
		return zero, err
	}
	defer p.Release(conn)
	return f(conn)
}

// CloseAll closes every idle connection. Active connections are not
// forcibly severed; they close themselves when their in-flight request
// completes and they are released.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.numOpen -= len(idle)
	p.mu.Unlock()

	for _, conn := range idle {
		conn.Close()
	}
}

// Stats is a point-in-time snapshot of pool occupancy, exposed for
// diagnostics.Server's /stats endpoint.
type Stats struct {
	Active  int
	Idle    int
	Waiters int
	Max     int
}

// Snapshot returns the current Stats.
func (p *Pool) Snapshot() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Active:  p.numActive,
		Idle:    len(p.idle),
		Waiters: len(p.waiters),
		Max:     p.maxConns,
	}
}

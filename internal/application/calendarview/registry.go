// Package calendarview keeps one calendar board per browser session so that
// popover state survives between requests.
package calendarview

import (
	"log/slog"
	"sync"
	"time"

	"opsboard/internal/domain/calendar"
)

// DefaultIdleTTL matches the session lifetime.
const DefaultIdleTTL = 24 * time.Hour

type entry struct {
	mu       sync.Mutex // serializes every access to board
	board    *calendar.Board
	rendered bool
	closed   bool
	lastUsed time.Time // guarded by Registry.mu
}

// Registry maps session tokens to boards. The registry mutex guards only the
// map; each board has its own mutex, so dispatches for one board are
// serialized while different sessions proceed in parallel.
type Registry struct {
	mu     sync.Mutex
	boards map[string]*entry
	ttl    time.Duration
	now    func() time.Time
	mount  func() string
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithMountSource overrides the mount token generator given to new boards.
func WithMountSource(fn func() string) Option {
	return func(r *Registry) { r.mount = fn }
}

// NewRegistry creates an empty registry. ttl <= 0 uses DefaultIdleTTL.
func NewRegistry(ttl time.Duration, opts ...Option) *Registry {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	r := &Registry{boards: make(map[string]*entry), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// With runs fn against the session's board, creating and rendering it first if needed.
// PRE: key is a non-empty session token
// POST: the board's day controls are rendered, so identities from the last page resolve
func (r *Registry) With(key string, fn func(b *calendar.Board)) {
	// A board torn down between lookup and lock is replaced on the next pass.
	for !r.tryWith(key, fn) {
	}
}

func (r *Registry) tryWith(key string, fn func(b *calendar.Board)) bool {
	e := r.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	if !e.rendered {
		RenderAll(e.board)
		e.rendered = true
	}
	fn(e.board)
	return true
}

func (r *Registry) entry(key string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.boards[key]
	if !ok {
		e = &entry{board: calendar.NewBoard(r.mount)}
		r.boards[key] = e
	}
	e.lastUsed = r.now()
	return e
}

// Forget tears down and drops the session's board.
func (r *Registry) Forget(key string) {
	r.mu.Lock()
	e, ok := r.boards[key]
	delete(r.boards, key)
	r.mu.Unlock()
	if ok {
		e.teardown()
	}
}

// Sweep tears down boards idle for longer than the TTL and returns how many were dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.ttl)
	var expired []*entry
	for key, e := range r.boards {
		if e.lastUsed.Before(cutoff) {
			expired = append(expired, e)
			delete(r.boards, key)
		}
	}
	remaining := len(r.boards)
	r.mu.Unlock()

	for _, e := range expired {
		e.teardown()
	}
	if len(expired) > 0 {
		slog.Debug("calendar_boards_swept", "dropped", len(expired), "remaining", remaining)
	}
	return len(expired)
}

// teardown closes the board once any in-flight access finishes.
func (e *entry) teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.board.Close()
		e.closed = true
	}
}

// Len returns the number of live boards.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

// RenderAll runs a render pass over every month of b.
func RenderAll(b *calendar.Board) {
	for _, v := range b.Months() {
		for range v.Render() {
		}
	}
}

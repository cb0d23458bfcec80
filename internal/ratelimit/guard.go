// Package ratelimit holds the per-process fixed-window limiter and the
// consecutive-failure lockout used in front of auth and booking creation.
// Counters live in memory only; each process instance counts on its own.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultMaxFailures = 10
	DefaultLockout     = 15 * time.Minute
	// cleanupEvery is how many Check calls pass between sweeps of expired entries.
	cleanupEvery = 100
)

type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

type failure struct {
	count       int
	lockedUntil time.Time
}

type Guard struct {
	mu       sync.Mutex
	now      func() time.Time
	windows  map[string]*window
	failures map[string]*failure
	calls    int

	maxFailures int
	lockout     time.Duration
}

type Option func(*Guard)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

func WithLockout(maxFailures int, d time.Duration) Option {
	return func(g *Guard) {
		g.maxFailures = maxFailures
		g.lockout = d
	}
}

func NewGuard(opts ...Option) *Guard {
	g := &Guard{
		now:         time.Now,
		windows:     make(map[string]*window),
		failures:    make(map[string]*failure),
		maxFailures: DefaultMaxFailures,
		lockout:     DefaultLockout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check counts one request for key in a fixed window of length win. A key
// with no window, or whose window has ended, starts a fresh one with count 1.
func (g *Guard) Check(key string, win time.Duration, limit int) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.calls++
	if g.calls%cleanupEvery == 0 {
		g.sweep(now)
	}

	w, ok := g.windows[key]
	if !ok || w.resetAt.Before(now) {
		g.windows[key] = &window{count: 1, resetAt: now.Add(win)}
		return Result{Allowed: true, Remaining: limit - 1, ResetIn: win}
	}

	if w.count >= limit {
		return Result{Allowed: false, Remaining: 0, ResetIn: w.resetAt.Sub(now)}
	}

	w.count++
	return Result{Allowed: true, Remaining: limit - w.count, ResetIn: w.resetAt.Sub(now)}
}

// CheckPreset is Check with a named preset; the key is prefixed with the
// preset name so presets never share counters.
func (g *Guard) CheckPreset(p Preset, id string) Result {
	return g.Check(p.Key(id), p.Window, p.Max)
}

// RecordFailure counts a failed attempt and locks the key once the
// threshold is reached.
func (g *Guard) RecordFailure(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	f, ok := g.failures[key]
	if !ok {
		f = &failure{}
		g.failures[key] = f
	}
	f.count++
	if f.count >= g.maxFailures {
		f.lockedUntil = g.now().Add(g.lockout)
	}
}

// IsLockedOut returns the remaining lockout, or zero. An expired lockout is
// forgotten together with its failure count.
func (g *Guard) IsLockedOut(key string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	f, ok := g.failures[key]
	if !ok || f.lockedUntil.IsZero() {
		return 0
	}
	now := g.now()
	if f.lockedUntil.After(now) {
		return f.lockedUntil.Sub(now)
	}
	delete(g.failures, key)
	return 0
}

// ClearFailures forgets all failures for key, typically after a successful login.
func (g *Guard) ClearFailures(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failures, key)
}

func (g *Guard) sweep(now time.Time) {
	for k, w := range g.windows {
		if w.resetAt.Before(now) {
			delete(g.windows, k)
		}
	}
	for k, f := range g.failures {
		if !f.lockedUntil.IsZero() && f.lockedUntil.Before(now) {
			delete(g.failures, k)
		}
	}
}

// size reports tracked entries; used by tests.
func (g *Guard) size() (windows, failures int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.windows), len(g.failures)
}

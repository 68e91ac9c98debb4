package youtube

import (
	"errors"
	"sync"
	"time"
)

// ErrBackendDown is returned while a backend's circuit is cooling down.
var ErrBackendDown = errors.New("youtube: backend cooling down")

// Backends guarded by the breaker.
const (
	backendAPI  = "api"
	backendFeed = "feed"
)

const (
	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = 30 * time.Second
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type circuit struct {
	state    breakerState
	failures int
	openedAt time.Time
	probing  bool
}

// Breaker fails calls to a backend fast once it has produced a streak
// of transient failures, instead of burning the run's remaining time
// against a dead API. Permanent errors (not-found, bad input) never
// trip it. A nil *Breaker allows everything.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	transient func(error) bool
	circuits  map[string]*circuit
}

// newBreaker builds a breaker. transient decides which errors count
// against the streak; nil counts all of them.
func newBreaker(threshold int, cooldown time.Duration, transient func(error) bool) *Breaker {
	if threshold <= 0 {
		threshold = defaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		transient: transient,
		circuits:  make(map[string]*circuit),
	}
}

// Allow reports whether a call to backend may proceed. During cooldown
// it returns ErrBackendDown; after cooldown a single probe call is let
// through to test the backend.
func (b *Breaker) Allow(backend string) error {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(backend)
	switch c.state {
	case breakerClosed:
		return nil
	case breakerOpen:
		if time.Since(c.openedAt) < b.cooldown {
			return ErrBackendDown
		}
		c.state = breakerHalfOpen
		c.probing = true
		return nil
	case breakerHalfOpen:
		if c.probing {
			return ErrBackendDown
		}
		c.probing = true
		return nil
	}
	return nil
}

// Success records a completed call, closing a half-open circuit and
// clearing the failure streak.
func (b *Breaker) Success(backend string) {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(backend)
	c.state = breakerClosed
	c.failures = 0
	c.probing = false
}

// Failure records a failed call. Transient failures extend the streak
// and open the circuit at the threshold; a failed half-open probe
// reopens it immediately.
func (b *Breaker) Failure(backend string, err error) {
	if b == nil {
		return
	}
	if b.transient != nil && !b.transient(err) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(backend)
	c.failures++
	c.probing = false

	switch c.state {
	case breakerClosed:
		if c.failures >= b.threshold {
			c.state = breakerOpen
			c.openedAt = time.Now()
		}
	case breakerHalfOpen:
		c.state = breakerOpen
		c.openedAt = time.Now()
	}
}

// State returns the backend's current state name for diagnostics.
func (b *Breaker) State(backend string) string {
	if b == nil {
		return breakerClosed.String()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(backend)
	if c.state == breakerOpen && time.Since(c.openedAt) >= b.cooldown {
		return breakerHalfOpen.String()
	}
	return c.state.String()
}

// circuit returns the state record for backend. Caller holds mu.
func (b *Breaker) circuit(backend string) *circuit {
	c, ok := b.circuits[backend]
	if !ok {
		c = &circuit{state: breakerClosed}
		b.circuits[backend] = c
	}
	return c
}

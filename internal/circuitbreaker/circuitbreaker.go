package circuitbreaker

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker stops calls to a failing upstream after threshold consecutive
// failures and lets a single trial call through once resetTimeout has passed.
type CircuitBreaker struct {
	mu            sync.Mutex
	state         State
	failures      int
	lastFailureAt time.Time
	halfOpenTrial bool

	threshold    int
	resetTimeout time.Duration

	now func() time.Time
	log *zap.Logger
}

func New(threshold int, resetTimeout time.Duration, log *zap.Logger) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}

	return &CircuitBreaker{
		state:        Closed,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		now:          time.Now,
		log:          log,
	}
}

func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.lastFailureAt) < b.resetTimeout {
			return false
		}

		b.transition(HalfOpen)
		b.halfOpenTrial = true

		return true
	case HalfOpen:
		if b.halfOpenTrial {
			return false
		}

		b.halfOpenTrial = true

		return true
	default:
		return true
	}
}

func (b *CircuitBreaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailureAt = b.now()

	switch b.state {
	case HalfOpen:
		b.failures = b.threshold
		b.transition(Open)
	case Closed:
		b.failures++

		if b.failures >= b.threshold {
			b.transition(Open)
		}
	case Open:
	}
}

func (b *CircuitBreaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0

	if b.state == HalfOpen {
		b.transition(Closed)
	}
}

func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// transition must be called with mu held.
func (b *CircuitBreaker) transition(to State) {
	if b.state == to {
		return
	}

	b.log.Warn("circuit breaker state changed",
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
		zap.Int("failures", b.failures),
	)

	b.state = to
	b.halfOpenTrial = false
}

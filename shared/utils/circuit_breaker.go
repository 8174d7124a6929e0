package utils

import (
	"errors"
	"sync"
	"time"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	// StateClosed allows requests to pass through
	StateClosed CircuitState = "closed"
	// StateOpen blocks requests
	StateOpen CircuitState = "open"
	// StateHalfOpen allows a probe request to test if the service recovered
	StateHalfOpen CircuitState = "half-open"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker is open
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests is returned when the half-open probe slot is taken
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// CircuitBreaker guards calls to external dependencies (Cognito) so a
// provider outage fails fast instead of piling up blocked requests.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int

	mutex       sync.Mutex
	state       CircuitState
	failures    int
	lastFailure time.Time
	halfOpenReq int
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  1,
		state:        StateClosed,
	}
}

// Call executes fn under circuit breaker protection
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mutex.Lock()

	if cb.state == StateOpen {
		if time.Since(cb.lastFailure) > cb.resetTimeout {
			cb.state = StateHalfOpen
			cb.halfOpenReq = 0
		} else {
			cb.mutex.Unlock()
			return ErrCircuitOpen
		}
	}

	if cb.state == StateHalfOpen {
		if cb.halfOpenReq >= cb.halfOpenMax {
			cb.mutex.Unlock()
			return ErrTooManyRequests
		}
		cb.halfOpenReq++
	}

	cb.mutex.Unlock()

	err := fn()

	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if err != nil {
		cb.onFailure()
		return err
	}

	cb.onSuccess()
	return nil
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	cb.lastFailure = time.Now()

	if cb.state == StateHalfOpen {
		// A failed probe reopens the circuit
		cb.state = StateOpen
		cb.failures = cb.maxFailures
	} else if cb.failures >= cb.maxFailures {
		cb.state = StateOpen
	}
}

func (cb *CircuitBreaker) onSuccess() {
	if cb.state == StateHalfOpen {
		cb.state = StateClosed
		cb.failures = 0
		cb.halfOpenReq = 0
	} else if cb.state == StateClosed {
		cb.failures = 0
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// Reset forces the circuit breaker back to the closed state
func (cb *CircuitBreaker) Reset() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenReq = 0
}

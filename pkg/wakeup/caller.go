package wakeup

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Policy bounds the retries of a Caller.
type Policy struct {
	Grace       time.Duration // wait after a wake-up probe before the first attempt
	BackoffStep time.Duration // attempt n (1-based) that fails waits n × BackoffStep
	MaxRetries  int
}

// DefaultPolicy allows three attempts in total.
func DefaultPolicy() Policy {
	return Policy{
		Grace:       2 * time.Second,
		BackoffStep: 3 * time.Second,
		MaxRetries:  2,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying, e.g. a 4xx answer.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Status is a snapshot for health displays.
type Status struct {
	LastEvent *Event    `json:"last_event,omitempty"`
	LastWake  time.Time `json:"last_wake,omitempty"`
	Probing   bool      `json:"probing"`
}

// Caller runs backend operations behind a wake-up probe with bounded,
// linearly backed-off retries.
type Caller struct {
	waker  *Waker
	policy Policy
	clock  Clock

	mu        sync.RWMutex
	observers []Observer
	last      *Event
}

// NewCaller creates a Caller. A nil waker disables probing and the grace wait.
func NewCaller(waker *Waker, policy Policy, clock Clock) *Caller {
	if clock == nil {
		clock = SystemClock()
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &Caller{waker: waker, policy: policy, clock: clock}
}

// Observe registers o for every subsequent event.
func (c *Caller) Observe(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// Do runs fn until it succeeds, returns a Permanent error, or the retries run
// out. The error of the last attempt is returned unchanged.
func (c *Caller) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	maxAttempts := c.policy.MaxRetries + 1

	if c.waker != nil {
		c.Warm(ctx)
		if err := c.clock.Sleep(ctx, c.policy.Grace); err != nil {
			return err
		}
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c.emit(Event{Kind: EventAttempt, Operation: op, Attempt: attempt, MaxAttempts: maxAttempts})

		err = fn(ctx)
		if err == nil {
			c.emit(Event{Kind: EventSucceeded, Operation: op, Attempt: attempt, MaxAttempts: maxAttempts})
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			c.emit(Event{Kind: EventRejected, Operation: op, Attempt: attempt, MaxAttempts: maxAttempts, Error: perm.err.Error()})
			return perm.err
		}

		if attempt == maxAttempts {
			break
		}

		wait := c.policy.BackoffStep * time.Duration(attempt)
		c.emit(Event{
			Kind:        EventRetrying,
			Operation:   op,
			Attempt:     attempt,
			MaxAttempts: maxAttempts,
			WaitMS:      wait.Milliseconds(),
			Error:       err.Error(),
		})
		if serr := c.clock.Sleep(ctx, wait); serr != nil {
			return err
		}
	}

	c.emit(Event{Kind: EventExhausted, Operation: op, Attempt: maxAttempts, MaxAttempts: maxAttempts, Error: err.Error()})
	return err
}

// Call is Do for operations that return a value.
func Call[T any](ctx context.Context, c *Caller, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := c.Do(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Warm sends a wake-up probe if one is due and reports what happened.
// Without a waker it reports WakeCooldown.
func (c *Caller) Warm(ctx context.Context) WakeResult {
	if c.waker == nil {
		return WakeCooldown
	}
	res, err := c.waker.WakeNotify(ctx, func() {
		c.emit(Event{Kind: EventProbeStarted})
	})

	switch res {
	case WakeHealthy:
		c.emit(Event{Kind: EventProbeHealthy})
	case WakeUnhealthy:
		c.emit(Event{Kind: EventProbeUnhealthy, Error: errString(err)})
	case WakeFailed:
		c.emit(Event{Kind: EventProbeFailed, Error: errString(err)})
	}
	return res
}

// Check runs an immediate health check.
func (c *Caller) Check(ctx context.Context) error {
	if c.waker == nil {
		return nil
	}
	return c.waker.Check(ctx)
}

// Status returns the latest event and probe state.
func (c *Caller) Status() Status {
	c.mu.RLock()
	var last *Event
	if c.last != nil {
		e := *c.last
		last = &e
	}
	c.mu.RUnlock()

	s := Status{LastEvent: last}
	if c.waker != nil {
		s.LastWake = c.waker.LastWake()
		s.Probing = c.waker.Probing()
	}
	return s
}

func (c *Caller) emit(e Event) {
	e.At = c.clock.Now()
	e.Message = describe(e)

	c.mu.Lock()
	c.last = &e
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		o.OnEvent(e)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

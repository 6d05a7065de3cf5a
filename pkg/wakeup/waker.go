package wakeup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrUnhealthy means the health endpoint answered, but not with 200.
var ErrUnhealthy = errors.New("wakeup: backend answered unhealthy")

// Prober sends one liveness probe.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Probe(ctx context.Context) error {
	return f(ctx)
}

// HTTPProber probes a health URL with GET.
type HTTPProber struct {
	Client *http.Client
	URL    string
}

func (p *HTTPProber) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return err
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// WakeResult is the outcome of Waker.Wake.
type WakeResult int

const (
	// WakeCooldown: a probe reached the backend within the cooldown window.
	WakeCooldown WakeResult = iota
	// WakeInFlight: another caller is probing right now.
	WakeInFlight
	WakeHealthy
	WakeUnhealthy
	WakeFailed
)

func (r WakeResult) String() string {
	switch r {
	case WakeCooldown:
		return "cooldown"
	case WakeInFlight:
		return "in_flight"
	case WakeHealthy:
		return "healthy"
	case WakeUnhealthy:
		return "unhealthy"
	case WakeFailed:
		return "failed"
	}
	return "unknown"
}

// Probed reports whether a probe was actually sent.
func (r WakeResult) Probed() bool {
	return r == WakeHealthy || r == WakeUnhealthy || r == WakeFailed
}

// WakerConfig holds the probe limits.
type WakerConfig struct {
	Cooldown     time.Duration
	ProbeTimeout time.Duration
	CheckTimeout time.Duration
}

// DefaultWakerConfig matches a backend that sleeps after about a minute idle.
func DefaultWakerConfig() WakerConfig {
	return WakerConfig{
		Cooldown:     55 * time.Second,
		ProbeTimeout: 10 * time.Second,
		CheckTimeout: 5 * time.Second,
	}
}

// Waker sends wake-up probes to a cold-starting backend. Process-wide there
// is at most one probe in flight and at most one probe per cooldown window.
type Waker struct {
	prober Prober
	clock  Clock
	cfg    WakerConfig

	mu       sync.Mutex
	waking   bool
	lastWake time.Time
}

// NewWaker creates a Waker. A nil clock means the wall clock.
func NewWaker(prober Prober, clock Clock, cfg WakerConfig) *Waker {
	if clock == nil {
		clock = SystemClock()
	}
	return &Waker{prober: prober, clock: clock, cfg: cfg}
}

// Wake probes the backend unless a probe is running or one reached it within
// the cooldown. A probe that fails in transport still starts the cooldown; a
// non-200 answer does not.
func (w *Waker) Wake(ctx context.Context) (WakeResult, error) {
	return w.WakeNotify(ctx, nil)
}

// WakeNotify is Wake with a callback invoked just before the probe is sent.
func (w *Waker) WakeNotify(ctx context.Context, onStart func()) (WakeResult, error) {
	w.mu.Lock()
	if w.waking {
		w.mu.Unlock()
		return WakeInFlight, nil
	}
	if !w.lastWake.IsZero() && w.clock.Now().Sub(w.lastWake) < w.cfg.Cooldown {
		w.mu.Unlock()
		return WakeCooldown, nil
	}
	w.waking = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.waking = false
		w.mu.Unlock()
	}()

	if onStart != nil {
		onStart()
	}

	pctx, cancel := context.WithTimeout(ctx, w.cfg.ProbeTimeout)
	defer cancel()

	err := w.prober.Probe(pctx)
	switch {
	case err == nil:
		w.stamp()
		return WakeHealthy, nil
	case errors.Is(err, ErrUnhealthy):
		return WakeUnhealthy, err
	default:
		w.stamp()
		return WakeFailed, err
	}
}

// Check probes immediately with the shorter check timeout, ignoring the cooldown.
func (w *Waker) Check(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, w.cfg.CheckTimeout)
	defer cancel()
	return w.prober.Probe(cctx)
}

// LastWake is when a probe last reached the backend.
func (w *Waker) LastWake() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastWake
}

// Probing reports whether a probe is in flight.
func (w *Waker) Probing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.waking
}

func (w *Waker) stamp() {
	w.mu.Lock()
	w.lastWake = w.clock.Now()
	w.mu.Unlock()
}

package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("upset.lib.ratelimit")
var deniedCounter, _ = meter.Int64Counter("ratelimit_denied")

type Result struct {
	Allowed   bool
	Remaining int
	// only set on denial, how long the caller should wait before
	// trying again, rounded up to whole seconds
	RetryAfterSeconds int
}

type DeniedError struct {
	Identifier        string
	RetryAfterSeconds int
}

func (e DeniedError) Error() string {
	return fmt.Sprintf(
		"rate limited '%s': retry after %d seconds",
		e.Identifier, e.RetryAfterSeconds,
	)
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter is a fixed-window request counter keyed by caller identity.
// It exists for abuse protection, not fairness, callers wanting evenly
// paced requests must add their own delays.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type Options struct {
	// how often expired windows get swept out of memory,
	// defaults to one minute
	SweepInterval time.Duration
	// overridable clock for tests
	Now func() time.Time
}

// New creates a Limiter whose sweep goroutine lives until ctx is
// cancelled.
func New(ctx context.Context, opts Options) *Limiter {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	l := &Limiter{
		windows: map[string]*window{},
		now:     opts.Now,
	}
	go l.run(ctx, opts.SweepInterval)
	return l
}

func (l *Limiter) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Sweep drops every lapsed window. The background goroutine calls it
// periodically, identifiers seen once would otherwise pin their window
// in memory forever.
func (l *Limiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, id)
		}
	}
}

// Check counts one request against the identifier's current window,
// opening a fresh window when the previous one has lapsed. The
// check-and-increment is atomic so concurrent callers can never
// collectively exceed maxRequests inside one window.
func (l *Limiter) Check(ctx context.Context, identifier string, maxRequests int, windowSize time.Duration) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[identifier]
	if !ok || now.After(w.resetAt) {
		l.windows[identifier] = &window{
			count:   1,
			resetAt: now.Add(windowSize),
		}
		return Result{Allowed: true, Remaining: maxRequests - 1}
	}

	if w.count < maxRequests {
		w.count++
		return Result{Allowed: true, Remaining: maxRequests - w.count}
	}

	deniedCounter.Add(ctx, 1)
	return Result{
		Allowed:           false,
		RetryAfterSeconds: int(math.Ceil(w.resetAt.Sub(now).Seconds())),
	}
}

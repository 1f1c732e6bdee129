// Package throttle provides the shared scheduler that every remote CRM
// call goes through. It enforces a minimum spacing between call starts and
// a cap on simultaneous in-flight calls, process-wide. The invoker adds
// latency and ordering only: results and failures of wrapped calls pass
// through unchanged, with no retries.
package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crmforge/pipedex/internal/metrics"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultMinInterval   = 250 * time.Millisecond
	DefaultMaxConcurrent = 2
	DefaultCallTimeout   = 30 * time.Second
)

// Config holds scheduling parameters.
type Config struct {
	// MinInterval is the minimum time between the starts of consecutive
	// dispatched calls.
	MinInterval time.Duration
	// MaxConcurrent caps simultaneously in-flight calls.
	MaxConcurrent int
	// CallTimeout bounds each dispatched call so a hung remote call cannot
	// pin a concurrency slot forever. Negative disables the deadline.
	CallTimeout time.Duration
}

// Invoker schedules remote calls. Construct one in main and inject it into
// every component that dispatches remote operations; scheduling state is
// shared for the lifetime of the process and never reset per request.
type Invoker struct {
	minInterval time.Duration
	callTimeout time.Duration
	slots       chan struct{}

	mu        sync.Mutex
	nextStart time.Time

	logger *zap.Logger
}

// New creates an Invoker with the given configuration.
func New(cfg Config, logger *zap.Logger) *Invoker {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Invoker{
		minInterval: cfg.MinInterval,
		callTimeout: cfg.CallTimeout,
		slots:       make(chan struct{}, cfg.MaxConcurrent),
		logger:      logger,
	}
}

// Do dispatches fn under the shared scheduling constraints. The call is
// admitted once a concurrency slot is free and the spacing since the
// previous dispatch start has elapsed; queued calls are admitted in
// arrival order and none is dropped. fn's error is returned unchanged.
//
// The slot is held for the full duration of fn, so with MaxConcurrent=1
// calls are fully serialized.
func (i *Invoker) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	queued := time.Now()

	select {
	case i.slots <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
	defer func() { <-i.slots }()

	// Reserve a start time under the scheduler lock. Each caller gets a
	// distinct slot at least minInterval after the previous one, which
	// makes the spacing guarantee hold even when several callers wake at
	// once.
	i.mu.Lock()
	start := i.nextStart
	if now := time.Now(); start.Before(now) {
		start = now
	}
	i.nextStart = start.Add(i.minInterval)
	i.mu.Unlock()

	if wait := time.Until(start); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
	}

	metrics.ThrottleQueueWait.Observe(time.Since(queued).Seconds())
	metrics.ThrottleInFlight.Inc()
	defer metrics.ThrottleInFlight.Dec()

	callCtx := ctx
	if i.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, i.callTimeout)
		defer cancel()
	}

	if err := fn(callCtx); err != nil {
		// Pass-through: the invoker never swallows or rewrites failures.
		i.logger.Debug("remote call failed",
			zap.String("operation", op),
			zap.Error(err),
		)
		return err
	}
	return nil
}

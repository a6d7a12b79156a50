// Package tickloop runs the single goroutine every encounter mutation happens
// on. Off-loop callers hand work to it through Do.
package tickloop

import (
	"context"
	"log/slog"
	"time"

	"github.com/KirkDiggler/endguard/internal/errors"
)

// DefaultTicksPerSecond matches the host game's tick rate
const DefaultTicksPerSecond = 20

// StepFunc advances the simulation by one tick
type StepFunc func(ctx context.Context) error

// Config configures a Loop
type Config struct {
	TicksPerSecond int
	Step           StepFunc
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Step == nil {
		vb.RequiredField("Step")
	}
	if c.TicksPerSecond < 0 {
		vb.Field("TicksPerSecond", "must not be negative")
	}
	return vb.Build()
}

type request struct {
	fn     func(ctx context.Context) error
	result chan error
}

// Loop calls Step at a fixed rate and runs queued work between ticks
type Loop struct {
	interval time.Duration
	step     StepFunc
	requests chan request
	done     chan struct{}
	ticks    uint64
}

// New creates a loop. It does nothing until Run.
func New(cfg *Config) (*Loop, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid tick loop config")
	}

	tps := cfg.TicksPerSecond
	if tps == 0 {
		tps = DefaultTicksPerSecond
	}

	return &Loop{
		interval: time.Second / time.Duration(tps),
		step:     cfg.Step,
		requests: make(chan request),
		done:     make(chan struct{}),
	}, nil
}

// Run ticks until ctx is done. A failing step is logged and the loop keeps
// going. Run must be called at most once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	slog.Info("tick loop started", "interval", l.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick loop stopped", "ticks", l.ticks)
			return nil

		case <-ticker.C:
			l.ticks++
			if err := l.step(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("tick failed", "tick", l.ticks, "error", err)
			}

		case req := <-l.requests:
			req.result <- req.fn(ctx)
		}
	}
}

// Do runs fn on the loop goroutine and returns its error. It fails with
// Unavailable once the loop has stopped.
func (l *Loop) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return errors.InvalidArgument("fn is required")
	}

	req := request{fn: fn, result: make(chan error, 1)}
	select {
	case l.requests <- req:
	case <-l.done:
		return errors.Unavailable("tick loop is not running")
	case <-ctx.Done():
		return errors.WrapWithCode(ctx.Err(), errors.CodeDeadlineExceeded, "tick loop busy")
	}

	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return errors.WrapWithCode(ctx.Err(), errors.CodeDeadlineExceeded, "tick loop did not answer")
	}
}

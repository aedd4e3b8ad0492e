package demo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/unidir/internal/effect"
)

// Environment carries the demo's dependencies.
type Environment struct {
	// Scheduler drives delayed increments and timer ticks.
	Scheduler effect.Scheduler

	// Registry holds cancellation handles. Tests use an isolated registry.
	Registry *effect.Registry

	// Delay is how long IncrementLater waits.
	Delay time.Duration

	// Interval is the time between timer ticks.
	Interval time.Duration

	// Facts looks up a fact about a number.
	Facts func(ctx context.Context, n int) string

	Logger *slog.Logger
}

// LiveEnvironment returns an environment wired to real time and the default
// cancellation registry.
func LiveEnvironment(logger *slog.Logger) Environment {
	if logger == nil {
		logger = slog.Default()
	}
	return Environment{
		Scheduler: effect.RealScheduler{},
		Registry:  effect.DefaultRegistry(),
		Delay:     time.Second,
		Interval:  time.Second,
		Facts:     ParityFact,
		Logger:    logger,
	}
}

// ParityFact is the built-in fact source.
func ParityFact(_ context.Context, n int) string {
	if n%2 == 0 {
		return fmt.Sprintf("%d is even", n)
	}
	return fmt.Sprintf("%d is odd", n)
}

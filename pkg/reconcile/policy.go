package reconcile

import (
	"context"
	"time"
)

const (
	defaultSettleDelay = 2 * time.Second
	defaultInterval    = time.Second
	defaultMaxAttempts = 3
)

// PollPolicy controls how the coordinator waits for the external updater's
// write to land: one settle delay after the invocation, then up to
// MaxAttempts re-fetches with Interval between them.
type PollPolicy struct {
	SettleDelay time.Duration
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollPolicy returns the compatibility defaults: 2s settle, 1s
// interval, 3 attempts.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		SettleDelay: defaultSettleDelay,
		Interval:    defaultInterval,
		MaxAttempts: defaultMaxAttempts,
	}
}

func (p PollPolicy) normalized() PollPolicy {
	if p.SettleDelay <= 0 {
		p.SettleDelay = defaultSettleDelay
	}
	if p.Interval <= 0 {
		p.Interval = defaultInterval
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	return p
}

// Sleeper abstracts the waits between polls so tests can run on a virtual
// clock instead of real delays.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

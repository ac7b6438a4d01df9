package reconcile

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/syncx"
)

const (
	msgPriceChanged   = "Data refreshed, price updated."
	msgPriceUnchanged = "Data refreshed, price unchanged."
	msgPollExhausted  = "Crawler finished but no new data was observed; existing prices were re-stamped."
	msgCrawlerFailed  = "Crawler unavailable; existing prices were re-stamped."
)

// Coordinator drives the refresh reconciliation for single items: invoke the
// external updater, poll the store for an advanced updated_at, and fall back
// to a forced timestamp plus a synthetic history row when the update cannot
// be confirmed.
//
// Concurrent refreshes of the same item are collapsed through a single-flight
// group keyed by item id, so a racing caller observes the in-flight outcome
// instead of double-touching the row.
type Coordinator struct {
	store   ItemStore
	invoker Invoker
	policy  PollPolicy
	sleeper Sleeper
	nowFn   func() time.Time
	flight  syncx.SingleFlight
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithPollPolicy overrides the default settle/poll timings.
func WithPollPolicy(p PollPolicy) Option {
	return func(c *Coordinator) { c.policy = p.normalized() }
}

// WithSleeper injects the wait implementation, used by tests to avoid real delays.
func WithSleeper(s Sleeper) Option {
	return func(c *Coordinator) { c.sleeper = s }
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.nowFn = now }
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(store ItemStore, invoker Invoker, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		invoker: invoker,
		policy:  DefaultPollPolicy(),
		sleeper: realSleeper{},
		nowFn:   time.Now,
		flight:  syncx.NewSingleFlight(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh resolves the target item, runs the updater, and returns a fully
// populated Outcome. It fails only with ErrInvalidTarget, ErrItemNotFound,
// ErrItemVanished, or a hard store error; updater failures degrade into the
// fallback path.
func (c *Coordinator) Refresh(ctx context.Context, target Target) (*Outcome, error) {
	before, err := c.resolve(ctx, target)
	if err != nil {
		return nil, err
	}

	val, err := c.flight.Do(strconv.FormatInt(before.ID, 10), func() (any, error) {
		return c.reconcile(ctx, before)
	})
	if err != nil {
		return nil, err
	}
	return val.(*Outcome), nil
}

func (c *Coordinator) resolve(ctx context.Context, target Target) (*Item, error) {
	var (
		item *Item
		err  error
	)
	switch {
	case target.ID > 0:
		item, err = c.store.FindByID(ctx, target.ID)
	case strings.TrimSpace(target.Name) != "":
		item, err = c.store.FindByName(ctx, strings.TrimSpace(target.Name))
	default:
		return nil, ErrInvalidTarget
	}
	if err != nil {
		return nil, fmt.Errorf("reconcile: resolve target: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (c *Coordinator) reconcile(ctx context.Context, before *Item) (*Outcome, error) {
	updaterErr := c.invoker.Invoke(ctx, before.Name)
	updaterOK := updaterErr == nil
	if updaterErr != nil {
		logx.Errorf("reconcile: crawler failed for item %d (%s): %v", before.ID, before.Name, updaterErr)
	}

	var after *Item
	if updaterOK {
		polled, err := c.pollForUpdate(ctx, before)
		if err != nil {
			return nil, err
		}
		after = polled
	}

	forced := false
	if after == nil {
		forcedItem, err := c.forceFallback(ctx, before)
		if err != nil {
			return nil, err
		}
		after = forcedItem
		forced = true
	}

	return c.buildOutcome(before, after, updaterOK, forced), nil
}

// pollForUpdate waits the settle delay once, then re-fetches the item up to
// MaxAttempts times. It returns nil without error when the timestamp never
// advanced, leaving the fallback decision to the caller.
func (c *Coordinator) pollForUpdate(ctx context.Context, before *Item) (*Item, error) {
	if err := c.sleeper.Sleep(ctx, c.policy.SettleDelay); err != nil {
		return nil, err
	}
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		item, err := c.store.FindByID(ctx, before.ID)
		if err != nil {
			return nil, fmt.Errorf("reconcile: poll attempt %d: %w", attempt, err)
		}
		if item != nil && item.UpdatedAt.After(before.UpdatedAt) {
			return item, nil
		}
		if attempt < c.policy.MaxAttempts {
			if err := c.sleeper.Sleep(ctx, c.policy.Interval); err != nil {
				return nil, err
			}
		}
	}
	logx.Infof("reconcile: item %d not updated after %d polls", before.ID, c.policy.MaxAttempts)
	return nil, nil
}

// forceFallback stamps updated_at and writes a synthetic history row carrying
// the pre-refresh snapshot: no fresher snapshot exists when the updater could
// not be confirmed. History failures are logged and swallowed.
func (c *Coordinator) forceFallback(ctx context.Context, before *Item) (*Item, error) {
	now := c.nowFn()

	affected, err := c.store.ForceTouch(ctx, before.ID, now)
	if err != nil {
		return nil, fmt.Errorf("reconcile: force touch item %d: %w", before.ID, err)
	}
	if affected == 0 {
		// MySQL reports changed rows, so an equal-timestamp re-touch also
		// lands here; the refetch below distinguishes a vanished row.
		logx.Infof("reconcile: force touch of item %d affected no rows", before.ID)
	}

	if err := c.store.AppendHistory(ctx, before.ID, before.Snapshot(), now); err != nil {
		logx.Errorf("reconcile: history append for item %d failed: %v", before.ID, err)
	}

	after, err := c.store.FindByID(ctx, before.ID)
	if err != nil {
		return nil, fmt.Errorf("reconcile: refetch item %d: %w", before.ID, err)
	}
	if after == nil {
		return nil, ErrItemVanished
	}
	return after, nil
}

func (c *Coordinator) buildOutcome(before, after *Item, updaterOK, forced bool) *Outcome {
	out := &Outcome{
		ItemBefore:       before,
		ItemAfter:        after,
		UpdaterSucceeded: updaterOK,
		Forced:           forced,
		DataUpdated:      after.UpdatedAt.After(before.UpdatedAt),
		RefreshTime:      c.nowFn(),
	}

	out.PriceChanged = !PriceEqual(before.SellReferencePrice, after.SellReferencePrice)
	if out.PriceChanged {
		b := ParsePrice(before.SellReferencePrice)
		a := ParsePrice(after.SellReferencePrice)
		out.PriceChange = &PriceChange{
			Before: b,
			After:  a,
			Diff:   roundPrice(a - b),
		}
	}

	switch {
	case !updaterOK:
		out.Message = msgCrawlerFailed
	case forced:
		out.Message = msgPollExhausted
	case out.PriceChanged:
		out.Message = msgPriceChanged
	default:
		out.Message = msgPriceUnchanged
	}
	return out
}

// ParsePrice converts a DECIMAL column value to a float. Blank or
// unparseable values count as zero, matching how the legacy dashboard
// treated NULL prices.
func ParsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// PriceEqual compares two DECIMAL column values numerically, so that
// "10.50" and "10.5" are the same price.
func PriceEqual(a, b string) bool {
	return math.Abs(ParsePrice(a)-ParsePrice(b)) < 1e-9
}

func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

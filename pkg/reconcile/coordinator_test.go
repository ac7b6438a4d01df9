package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t1 = t0.Add(3 * time.Second)
	t2 = t0.Add(time.Minute)
)

type appendedRow struct {
	itemID int64
	snap   PriceSnapshot
	ts     time.Time
}

type fakeStore struct {
	mu         sync.Mutex
	items      map[int64]*Item
	history    []appendedRow
	historyErr error
	// vanish deletes the row on touch, simulating a concurrent delete.
	vanish bool
	finds      int
	// onFind runs under the lock before each FindByID lookup, letting tests
	// simulate the crawler's out-of-process write landing mid-poll.
	onFind func(s *fakeStore, call int)
}

func newFakeStore(items ...*Item) *fakeStore {
	s := &fakeStore{items: make(map[int64]*Item)}
	for _, it := range items {
		cp := *it
		s.items[it.ID] = &cp
	}
	return s
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	if s.onFind != nil {
		s.onFind(s, s.finds)
	}
	it, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (s *fakeStore) FindByName(_ context.Context, name string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.Name == name || it.MarketHashName == name {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ForceTouch(_ context.Context, id int64, ts time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vanish {
		delete(s.items, id)
		return 0, nil
	}
	it, ok := s.items[id]
	if !ok {
		return 0, nil
	}
	it.UpdatedAt = ts
	return 1, nil
}

func (s *fakeStore) AppendHistory(_ context.Context, id int64, snap PriceSnapshot, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyErr != nil {
		return s.historyErr
	}
	s.history = append(s.history, appendedRow{itemID: id, snap: snap, ts: ts})
	return nil
}

type recordingSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleeps = append(r.sleeps, d)
	return nil
}

func baseItem() *Item {
	return &Item{
		ID:                 42,
		Name:               "AK-47 | Redline",
		MarketHashName:     "AK-47 | Redline (Field-Tested)",
		SellReferencePrice: "100.00",
		SellMinPrice:       "98.50",
		BuyMaxPrice:        "95.00",
		SellNum:            120,
		BuyNum:             60,
		TransactedNum:      30,
		UpdatedAt:          t0,
	}
}

func newTestCoordinator(store ItemStore, invoker Invoker) (*Coordinator, *recordingSleeper) {
	sleeper := &recordingSleeper{}
	coord := NewCoordinator(store, invoker,
		WithSleeper(sleeper),
		WithClock(func() time.Time { return t2 }),
	)
	return coord, sleeper
}

func noopInvoker() Invoker {
	return InvokerFunc(func(context.Context, string) error { return nil })
}

func TestRefreshInvalidTarget(t *testing.T) {
	coord, _ := newTestCoordinator(newFakeStore(), noopInvoker())

	_, err := coord.Refresh(context.Background(), Target{})
	require.ErrorIs(t, err, ErrInvalidTarget)
}

func TestRefreshItemNotFound(t *testing.T) {
	coord, _ := newTestCoordinator(newFakeStore(), noopInvoker())

	_, err := coord.Refresh(context.Background(), Target{ID: 99})
	require.ErrorIs(t, err, ErrItemNotFound)

	_, err = coord.Refresh(context.Background(), Target{Name: "no such item"})
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestRefreshCrawlerUpdatesPrice(t *testing.T) {
	store := newFakeStore(baseItem())

	var invokedName string
	invoker := InvokerFunc(func(_ context.Context, name string) error {
		invokedName = name
		// Simulate the out-of-process crawler writing a fresh row.
		store.mu.Lock()
		store.items[42].SellReferencePrice = "105.00"
		store.items[42].UpdatedAt = t1
		store.mu.Unlock()
		return nil
	})

	coord, sleeper := newTestCoordinator(store, invoker)
	out, err := coord.Refresh(context.Background(), Target{ID: 42})
	require.NoError(t, err)

	// Even though the caller passed an id, the crawler is searched by name.
	require.Equal(t, "AK-47 | Redline", invokedName)

	require.True(t, out.UpdaterSucceeded)
	require.False(t, out.Forced)
	require.True(t, out.DataUpdated)
	require.True(t, out.PriceChanged)
	require.NotNil(t, out.PriceChange)
	require.Equal(t, 100.00, out.PriceChange.Before)
	require.Equal(t, 105.00, out.PriceChange.After)
	require.Equal(t, 5.00, out.PriceChange.Diff)
	require.Equal(t, msgPriceChanged, out.Message)
	require.Equal(t, t2, out.RefreshTime)

	// No fallback, no synthetic history, only the settle delay slept.
	require.Empty(t, store.history)
	require.Equal(t, []time.Duration{2 * time.Second}, sleeper.sleeps)
}

func TestRefreshCrawlerFailsFallsBack(t *testing.T) {
	item := baseItem()
	item.ID = 7
	item.Name = "Widget"
	store := newFakeStore(item)

	invoker := InvokerFunc(func(context.Context, string) error {
		return errors.New("exit code 1")
	})

	coord, sleeper := newTestCoordinator(store, invoker)
	out, err := coord.Refresh(context.Background(), Target{Name: "Widget"})
	require.NoError(t, err, "updater failure must not fail the refresh")

	require.False(t, out.UpdaterSucceeded)
	require.True(t, out.Forced)
	require.True(t, out.DataUpdated, "forced touch must advance the timestamp")
	require.False(t, out.PriceChanged)
	require.Nil(t, out.PriceChange)
	require.Equal(t, msgCrawlerFailed, out.Message)

	// Exactly one synthetic history row carrying the pre-refresh snapshot.
	require.Len(t, store.history, 1)
	require.Equal(t, int64(7), store.history[0].itemID)
	require.Equal(t, "100.00", store.history[0].snap.SellReferencePrice)
	require.Equal(t, t2, store.history[0].ts)

	// No settle delay or polling on the failure path.
	require.Empty(t, sleeper.sleeps)
}

func TestRefreshPollExhaustedFallsBack(t *testing.T) {
	store := newFakeStore(baseItem())

	coord, sleeper := newTestCoordinator(store, noopInvoker())
	out, err := coord.Refresh(context.Background(), Target{ID: 42})
	require.NoError(t, err)

	require.True(t, out.UpdaterSucceeded)
	require.True(t, out.Forced)
	require.True(t, out.DataUpdated)
	require.False(t, out.PriceChanged)
	require.Equal(t, msgPollExhausted, out.Message)
	require.Len(t, store.history, 1)

	// Settle once, then an interval between each of the three attempts.
	require.Equal(t, []time.Duration{
		2 * time.Second, time.Second, time.Second,
	}, sleeper.sleeps)
}

func TestRefreshUpdateLandsMidPoll(t *testing.T) {
	store := newFakeStore(baseItem())
	store.onFind = func(s *fakeStore, call int) {
		// First FindByID resolves the target; the crawler write lands just
		// before the third lookup (second poll attempt).
		if call == 3 {
			s.items[42].UpdatedAt = t1
		}
	}

	coord, sleeper := newTestCoordinator(store, noopInvoker())
	out, err := coord.Refresh(context.Background(), Target{ID: 42})
	require.NoError(t, err)

	require.False(t, out.Forced)
	require.True(t, out.DataUpdated)
	require.False(t, out.PriceChanged)
	require.Equal(t, msgPriceUnchanged, out.Message)
	require.Empty(t, store.history)
	require.Equal(t, []time.Duration{2 * time.Second, time.Second}, sleeper.sleeps)
}

func TestRefreshHistoryAppendFailureIsSwallowed(t *testing.T) {
	store := newFakeStore(baseItem())
	store.historyErr = errors.New("history table gone")

	invoker := InvokerFunc(func(context.Context, string) error {
		return errors.New("exit code 2")
	})

	coord, _ := newTestCoordinator(store, invoker)
	out, err := coord.Refresh(context.Background(), Target{ID: 42})
	require.NoError(t, err)
	require.True(t, out.Forced)
	require.True(t, out.DataUpdated)
}

func TestRefreshItemVanished(t *testing.T) {
	store := newFakeStore(baseItem())
	store.vanish = true

	invoker := InvokerFunc(func(context.Context, string) error {
		return errors.New("exit code 1")
	})

	coord, _ := newTestCoordinator(store, invoker)
	_, err := coord.Refresh(context.Background(), Target{ID: 42})
	require.ErrorIs(t, err, ErrItemVanished)
}

func TestRefreshCollapsesConcurrentCalls(t *testing.T) {
	store := newFakeStore(baseItem())

	gate := make(chan struct{})
	var mu sync.Mutex
	invocations := 0
	invoker := InvokerFunc(func(context.Context, string) error {
		mu.Lock()
		invocations++
		mu.Unlock()
		<-gate
		store.mu.Lock()
		store.items[42].UpdatedAt = t1
		store.mu.Unlock()
		return nil
	})

	coord, _ := newTestCoordinator(store, invoker)

	var wg sync.WaitGroup
	outcomes := make([]*Outcome, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := coord.Refresh(context.Background(), Target{ID: 42})
			require.NoError(t, err)
			outcomes[i] = out
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, invocations, "concurrent refreshes must share one crawler run")
	require.Same(t, outcomes[0], outcomes[1])
}

func TestPriceEqual(t *testing.T) {
	cases := []struct {
		a, b  string
		equal bool
	}{
		{"10.50", "10.5", true},
		{"100.00", "100", true},
		{"", "0", true},
		{"10.50", "10.51", false},
		{"0.000001", "0", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.equal, PriceEqual(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}

func TestBuildOutcomePriceDiffRounded(t *testing.T) {
	before := baseItem()
	after := baseItem()
	after.SellReferencePrice = "103.333333"
	after.UpdatedAt = t1

	coord, _ := newTestCoordinator(newFakeStore(), noopInvoker())
	out := coord.buildOutcome(before, after, true, false)

	require.True(t, out.PriceChanged)
	require.Equal(t, 3.33, out.PriceChange.Diff)
}

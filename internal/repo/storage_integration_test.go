//go:build integration
// +build integration

package repo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cacheutil "buffotte-api/internal/cache"
	"buffotte-api/internal/config"
	"buffotte-api/internal/model"
	"buffotte-api/internal/repo"
	"buffotte-api/pkg/reconcile"
)

// Requires a reachable MySQL with the items table loaded; run with
//
//	BUFFOTTE_TEST_DSN=... go test -tags integration ./internal/repo/...
func integrationSet(t *testing.T) *repo.Set {
	t.Helper()
	dsn := os.Getenv("BUFFOTTE_TEST_DSN")
	if dsn == "" {
		t.Skip("BUFFOTTE_TEST_DSN not set")
	}

	conn := sqlx.NewMysql(dsn)
	set, err := repo.New(repo.Dependencies{
		DBConn:       conn,
		TTL:          cacheutil.NewTTLSet(config.CacheTTL{}),
		ItemsModel:   model.NewItemsModel(conn),
		HistoryModel: model.NewItemsPriceHistoryModel(conn),
	})
	require.NoError(t, err)
	return set
}

func TestHistoryTableRoundTrip(t *testing.T) {
	set := integrationSet(t)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	require.NoError(t, set.History.EnsureTable(ctx))
	// Creating an existing table must be a no-op.
	require.NoError(t, set.History.EnsureTable(ctx))

	now := time.Now().UTC().Truncate(time.Second)
	snap := reconcile.PriceSnapshot{
		SellReferencePrice: "12.340000",
		SellMinPrice:       "11.990000",
		SellNum:            10,
	}
	require.NoError(t, set.Items.AppendHistory(ctx, 1, snap, now))

	points, err := set.History.ListByItem(ctx, 1, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, points)

	last := points[len(points)-1]
	require.True(t, reconcile.PriceEqual("12.34", last.SellReferencePrice))
}

func TestForceTouchIdempotent(t *testing.T) {
	set := integrationSet(t)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	item, err := set.Items.FindByIdentifier(ctx, "1")
	require.NoError(t, err)
	if item == nil {
		t.Skip("no item with id 1 in the test database")
	}

	ts := time.Now().UTC().Truncate(time.Second)
	_, err = set.Items.ForceTouch(ctx, item.ID, ts)
	require.NoError(t, err)
	_, err = set.Items.ForceTouch(ctx, item.ID, ts)
	require.NoError(t, err)

	after, err := set.Items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, after)
	require.True(t, after.UpdatedAt.Equal(ts), "repeated touches must not accumulate")
}

func TestSearchOrdersByReferencePrice(t *testing.T) {
	set := integrationSet(t)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	rows, err := set.Items.Search(ctx, "AK", 20)
	require.NoError(t, err)
	for i := 1; i < len(rows); i++ {
		prev := reconcile.ParsePrice(rows[i-1].SellReferencePrice)
		cur := reconcile.ParsePrice(rows[i].SellReferencePrice)
		require.GreaterOrEqual(t, prev, cur)
	}
}

package repo

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cacheutil "buffotte-api/internal/cache"
)

// Overview aggregates the priced part of the catalogue.
type Overview struct {
	TotalItems      int64   `json:"totalItems" msgpack:"ti"`
	AvgPrice        float64 `json:"avgPrice" msgpack:"ap"`
	MinPrice        float64 `json:"minPrice" msgpack:"np"`
	MaxPrice        float64 `json:"maxPrice" msgpack:"xp"`
	TotalSellOrders int64   `json:"totalSellOrders" msgpack:"so"`
	TotalBuyOrders  int64   `json:"totalBuyOrders" msgpack:"bo"`
}

// PriceBucket is one pie-chart slice of the price distribution.
type PriceBucket struct {
	Name  string `json:"name" msgpack:"n"`
	Value int64  `json:"value" msgpack:"v"`
}

// StatsRepo serves the dashboard aggregates, cached in Redis as msgpack
// payloads because the underlying scans touch the whole items table.
type StatsRepo interface {
	Overview(ctx context.Context) (*Overview, error)
	PriceDistribution(ctx context.Context) ([]PriceBucket, error)
}

type statsRepo struct {
	conn  sqlx.SqlConn
	redis *redis.Redis
	ttl   cacheutil.TTLSet
}

func newStatsRepo(deps Dependencies) StatsRepo {
	return &statsRepo{
		conn:  deps.DBConn,
		redis: deps.Redis,
		ttl:   deps.TTL,
	}
}

type overviewRow struct {
	TotalItems      int64           `db:"total_items"`
	AvgPrice        sql.NullFloat64 `db:"avg_price"`
	MinPrice        sql.NullFloat64 `db:"min_price"`
	MaxPrice        sql.NullFloat64 `db:"max_price"`
	TotalSellOrders sql.NullInt64   `db:"total_sell_orders"`
	TotalBuyOrders  sql.NullInt64   `db:"total_buy_orders"`
}

func (r *statsRepo) Overview(ctx context.Context) (*Overview, error) {
	key := cacheutil.StatsOverviewKey()
	var cached Overview
	if r.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	query := `
SELECT
    COUNT(*) AS total_items,
    AVG(sell_reference_price) AS avg_price,
    MIN(sell_reference_price) AS min_price,
    MAX(sell_reference_price) AS max_price,
    SUM(sell_num) AS total_sell_orders,
    SUM(buy_num) AS total_buy_orders
FROM items
WHERE sell_reference_price > 0`

	var row overviewRow
	if err := r.conn.QueryRowCtx(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("statsRepo.Overview: %w", err)
	}

	overview := overviewFromRow(row)
	r.writeCache(ctx, key, overview, cacheutil.StatsOverviewTTL(r.ttl))
	return overview, nil
}

func (r *statsRepo) PriceDistribution(ctx context.Context) ([]PriceBucket, error) {
	key := cacheutil.PriceDistributionKey()
	var cached []PriceBucket
	if r.readCache(ctx, key, &cached) {
		return cached, nil
	}

	query := `
SELECT
    price_range,
    COUNT(*) AS count
FROM (
    SELECT
        CASE
            WHEN sell_reference_price < 10 THEN '0-10'
            WHEN sell_reference_price < 50 THEN '10-50'
            WHEN sell_reference_price < 100 THEN '50-100'
            WHEN sell_reference_price < 500 THEN '100-500'
            WHEN sell_reference_price < 1000 THEN '500-1000'
            ELSE '1000+'
        END AS price_range,
        CASE
            WHEN sell_reference_price < 10 THEN 1
            WHEN sell_reference_price < 50 THEN 2
            WHEN sell_reference_price < 100 THEN 3
            WHEN sell_reference_price < 500 THEN 4
            WHEN sell_reference_price < 1000 THEN 5
            ELSE 6
        END AS sort_order
    FROM items
    WHERE sell_reference_price > 0
) AS price_ranges
GROUP BY price_range, sort_order
ORDER BY sort_order`

	var rows []struct {
		PriceRange string `db:"price_range"`
		Count      int64  `db:"count"`
	}
	if err := r.conn.QueryRowsCtx(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("statsRepo.PriceDistribution: %w", err)
	}

	buckets := make([]PriceBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, PriceBucket{
			Name:  "¥" + row.PriceRange,
			Value: row.Count,
		})
	}

	r.writeCache(ctx, key, buckets, cacheutil.PriceDistributionTTL(r.ttl))
	return buckets, nil
}

func overviewFromRow(row overviewRow) *Overview {
	return &Overview{
		TotalItems:      row.TotalItems,
		AvgPrice:        roundCents(row.AvgPrice.Float64),
		MinPrice:        row.MinPrice.Float64,
		MaxPrice:        row.MaxPrice.Float64,
		TotalSellOrders: row.TotalSellOrders.Int64,
		TotalBuyOrders:  row.TotalBuyOrders.Int64,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func (r *statsRepo) readCache(ctx context.Context, key string, out any) bool {
	if r.redis == nil {
		return false
	}
	payload, err := r.redis.GetCtx(ctx, key)
	if err != nil || payload == "" {
		return false
	}
	if err := cacheutil.Decode(payload, out); err != nil {
		logx.Errorf("statsRepo: stale cache payload at %s: %v", key, err)
		return false
	}
	return true
}

func (r *statsRepo) writeCache(ctx context.Context, key string, v any, ttl time.Duration) {
	if r.redis == nil || ttl <= 0 {
		return
	}
	payload, err := cacheutil.Encode(v)
	if err != nil {
		logx.Errorf("statsRepo: cache encode for %s: %v", key, err)
		return
	}
	if err := r.redis.SetexCtx(ctx, key, payload, int(ttl/time.Second)); err != nil {
		logx.Errorf("statsRepo: cache write for %s: %v", key, err)
	}
}

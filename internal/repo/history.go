package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"

	cacheutil "buffotte-api/internal/cache"
	"buffotte-api/internal/model"
)

// PricePoint is one history sample, JSON-ready for the chart widgets.
type PricePoint struct {
	SellReferencePrice string `json:"sell_reference_price" msgpack:"srp"`
	SellMinPrice       string `json:"sell_min_price" msgpack:"smp"`
	BuyMaxPrice        string `json:"buy_max_price" msgpack:"bmp"`
	SellNum            int64  `json:"sell_num" msgpack:"sn"`
	BuyNum             int64  `json:"buy_num" msgpack:"bn"`
	TransactedNum      int64  `json:"transacted_num" msgpack:"tn"`
	RecordedAt         string `json:"recorded_at" msgpack:"at"`
}

// HistoryRepo reads the append-only price history.
type HistoryRepo interface {
	// ListByItem returns up to limit samples ordered by recorded_at
	// ascending; an absent history table yields an empty slice.
	ListByItem(ctx context.Context, itemID int64, limit int) ([]PricePoint, error)
	// EnsureTable lazily creates the history table.
	EnsureTable(ctx context.Context) error
}

type historyRepo struct {
	history model.ItemsPriceHistoryModel
	redis   *redis.Redis
	ttl     cacheutil.TTLSet
}

func newHistoryRepo(deps Dependencies) HistoryRepo {
	return &historyRepo{
		history: deps.HistoryModel,
		redis:   deps.Redis,
		ttl:     deps.TTL,
	}
}

func (r *historyRepo) ListByItem(ctx context.Context, itemID int64, limit int) ([]PricePoint, error) {
	key := cacheutil.ItemHistoryKey(itemID, limit)
	var cached []PricePoint
	if r.readCache(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := r.history.ListByItem(ctx, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("historyRepo.ListByItem: %w", err)
	}

	points := make([]PricePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, PricePoint{
			SellReferencePrice: row.SellReferencePrice.String,
			SellMinPrice:       row.SellMinPrice.String,
			BuyMaxPrice:        row.BuyMaxPrice.String,
			SellNum:            row.SellNum.Int64,
			BuyNum:             row.BuyNum.Int64,
			TransactedNum:      row.TransactedNum.Int64,
			RecordedAt:         row.RecordedAt.UTC().Format(time.RFC3339),
		})
	}

	r.writeCache(ctx, key, points, cacheutil.ItemHistoryTTL(r.ttl))
	return points, nil
}

func (r *historyRepo) EnsureTable(ctx context.Context) error {
	return r.history.EnsureTable(ctx)
}

func (r *historyRepo) readCache(ctx context.Context, key string, out any) bool {
	if r.redis == nil {
		return false
	}
	payload, err := r.redis.GetCtx(ctx, key)
	if err != nil || payload == "" {
		return false
	}
	if err := cacheutil.Decode(payload, out); err != nil {
		logx.Errorf("historyRepo: stale cache payload at %s: %v", key, err)
		return false
	}
	return true
}

func (r *historyRepo) writeCache(ctx context.Context, key string, v any, ttl time.Duration) {
	if r.redis == nil || ttl <= 0 {
		return
	}
	payload, err := cacheutil.Encode(v)
	if err != nil {
		logx.Errorf("historyRepo: cache encode for %s: %v", key, err)
		return
	}
	if err := r.redis.SetexCtx(ctx, key, payload, int(ttl/time.Second)); err != nil {
		logx.Errorf("historyRepo: cache write for %s: %v", key, err)
	}
}

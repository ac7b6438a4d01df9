package repo

import (
	"errors"

	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cacheutil "buffotte-api/internal/cache"
	"buffotte-api/internal/model"
)

// Dependencies bundles the table models and shared infrastructure required
// by repository implementations.
type Dependencies struct {
	DBConn sqlx.SqlConn
	// Redis is optional; repositories degrade to uncached reads without it.
	Redis *redis.Redis
	TTL   cacheutil.TTLSet

	ItemsModel   model.ItemsModel
	HistoryModel model.ItemsPriceHistoryModel
}

// Set exposes strongly typed repositories to application logic.
type Set struct {
	Items   ItemsRepo
	History HistoryRepo
	Stats   StatsRepo
}

// New constructs the repository set, validating required dependencies.
func New(deps Dependencies) (*Set, error) {
	if deps.DBConn == nil {
		return nil, errors.New("repo: missing DBConn dependency")
	}
	if deps.ItemsModel == nil || deps.HistoryModel == nil {
		return nil, errors.New("repo: missing table model dependency")
	}

	return &Set{
		Items:   newItemsRepo(deps),
		History: newHistoryRepo(deps),
		Stats:   newStatsRepo(deps),
	}, nil
}

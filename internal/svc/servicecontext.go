package svc

import (
	"context"
	"log"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cacheutil "buffotte-api/internal/cache"
	"buffotte-api/internal/config"
	"buffotte-api/internal/model"
	"buffotte-api/internal/repo"
	crawlerpkg "buffotte-api/pkg/crawler"
	"buffotte-api/pkg/journal"
	"buffotte-api/pkg/reconcile"
)

type ServiceContext struct {
	Config *config.Config

	DBConn sqlx.SqlConn
	Redis  *redis.Redis
	Repos  *repo.Set

	Invoker     crawlerpkg.Invoker
	Coordinator *reconcile.Coordinator

	// Journal is nil when no journal directory is configured.
	Journal *journal.Writer
}

func NewServiceContext(c *config.Config) *ServiceContext {
	conn := sqlx.NewMysql(c.Mysql.DSN)

	var rds *redis.Redis
	if c.Redis.Host != "" {
		rds = redis.MustNewRedis(c.Redis)
	}

	repos, err := repo.New(repo.Dependencies{
		DBConn:       conn,
		Redis:        rds,
		TTL:          cacheutil.NewTTLSet(c.TTL),
		ItemsModel:   model.NewItemsModel(conn),
		HistoryModel: model.NewItemsPriceHistoryModel(conn),
	})
	if err != nil {
		log.Fatalf("failed to build repositories: %v", err)
	}

	crawlerCfg := c.CrawlerConfig()
	invoker := crawlerpkg.NewInvoker(crawlerCfg)

	coordinator := reconcile.NewCoordinator(
		repos.Items,
		reconcile.InvokerFunc(func(ctx context.Context, itemName string) error {
			return invoker.Invoke(ctx, crawlerpkg.Target{Name: itemName})
		}),
		reconcile.WithPollPolicy(reconcile.PollPolicy{
			SettleDelay: crawlerCfg.SettleDelay,
			Interval:    crawlerCfg.PollInterval,
			MaxAttempts: crawlerCfg.MaxPollAttempts,
		}),
	)

	var jw *journal.Writer
	if c.JournalDir != "" {
		jw = journal.NewWriter(c.JournalDir)
	}

	ensureHistoryTable(repos)

	return &ServiceContext{
		Config:      c,
		DBConn:      conn,
		Redis:       rds,
		Repos:       repos,
		Invoker:     invoker,
		Coordinator: coordinator,
		Journal:     jw,
	}
}

// ensureHistoryTable creates the price history table when it is missing.
// Failure is logged, not fatal: history reads tolerate the absent table.
func ensureHistoryTable(repos *repo.Set) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repos.History.EnsureTable(ctx); err != nil {
		logx.Errorf("could not ensure items_price_history table: %v", err)
	}
}

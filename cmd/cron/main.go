package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"buffotte-api/internal/cli"
	"buffotte-api/internal/config"
	"buffotte-api/internal/svc"
	"buffotte-api/pkg/reconcile"
)

const (
	refreshInterval = 10 * time.Minute // How often a batch of stale items is refreshed
	refreshTimeout  = 2 * time.Minute  // Budget for a single item refresh
	batchSize       = 5                // Items refreshed per cycle, oldest first
	shutdownTimeout = 10 * time.Second // Grace period for shutdown
)

var configFile = flag.String("f", "etc/buffotte.yaml", "the config file")

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting refresh cron...")

	appCfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] Failed to load app config: %v", err)
	}

	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(appCfg) {
		log.Printf("  - %s", line)
	}
	log.Printf("  - Refresh interval: %s, batch size: %d", refreshInterval, batchSize)

	svcCtx := svc.NewServiceContext(appCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runRefresher(ctx, svcCtx)
	}()

	log.Println("[main] Refresh cron started. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping tasks...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[main] All tasks stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}

	log.Println("[main] Refresh cron stopped")
}

// runRefresher refreshes the stalest items on a schedule.
func runRefresher(ctx context.Context, svcCtx *svc.ServiceContext) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	// Run once immediately on startup
	refreshBatch(ctx, svcCtx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[refresh] Stopping refresher")
			return
		case <-ticker.C:
			refreshBatch(ctx, svcCtx)
		}
	}
}

// refreshBatch refreshes up to batchSize items, oldest data first. Items are
// processed sequentially so a single slow crawler run cannot fan out.
func refreshBatch(parentCtx context.Context, svcCtx *svc.ServiceContext) {
	if parentCtx.Err() != nil {
		return
	}

	listCtx, cancel := context.WithTimeout(parentCtx, 10*time.Second)
	items, err := svcCtx.Repos.Items.Stalest(listCtx, batchSize)
	cancel()
	if err != nil {
		log.Printf("[refresh.list] [ERROR] %v", err)
		return
	}
	if len(items) == 0 {
		log.Printf("[refresh.list] [OK] no items to refresh")
		return
	}

	for _, item := range items {
		if parentCtx.Err() != nil {
			return
		}

		ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
		start := time.Now()
		outcome, err := svcCtx.Coordinator.Refresh(ctx, reconcile.Target{ID: item.ID})
		elapsed := time.Since(start)
		cancel()

		switch {
		case errors.Is(err, reconcile.ErrItemVanished):
			log.Printf("[refresh.%d] [WARN] item vanished mid-refresh, took %dms", item.ID, elapsed.Milliseconds())
		case err != nil:
			log.Printf("[refresh.%d] [ERROR] %v, took %dms", item.ID, err, elapsed.Milliseconds())
		default:
			log.Printf("[refresh.%d] [OK] %s crawler=%t updated=%t priceChanged=%t, took %dms",
				item.ID, item.Name, outcome.UpdaterSucceeded, outcome.DataUpdated,
				outcome.PriceChanged, elapsed.Milliseconds())
		}
	}
}

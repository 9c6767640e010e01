package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"MarketViewer/internal/model"
)

// RefreshTimeout bounds a single symbol refresh
const RefreshTimeout = 30 * time.Second

type MarketFetcher interface {
	FetchMarketData(ctx context.Context, symbol string) (model.DashboardState, error)
}

// PollerStats counts refresh outcomes
type PollerStats struct {
	Refreshed int
	Failed    int
}

// RefreshPoller refreshes market data for a set of symbols on a fixed
// interval and on demand for symbols sent to its refresh channel
type RefreshPoller struct {
	fetcher     MarketFetcher
	symbols     []string
	interval    time.Duration
	refreshChan chan string
	done        chan struct{}
	stats       PollerStats
	mu          sync.RWMutex
	logger      *slog.Logger
}

// NewRefreshPoller creates a new refresh poller. An interval of zero
// disables periodic refresh; on-demand refresh still works.
func NewRefreshPoller(fetcher MarketFetcher, symbols []string, interval time.Duration, logger *slog.Logger) *RefreshPoller {
	if logger == nil {
		logger = slog.Default()
	}

	return &RefreshPoller{
		fetcher:     fetcher,
		symbols:     append([]string(nil), symbols...),
		interval:    interval,
		refreshChan: make(chan string, 100), // Buffered so callers don't block on a slow fetch
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Start refreshes every symbol once, then keeps refreshing until ctx is
// cancelled
func (rp *RefreshPoller) Start(ctx context.Context) {
	rp.logger.Info("starting refresh poller", "symbols", rp.symbols, "interval", rp.interval)

	go func() {
		defer close(rp.done)
		defer rp.logger.Info("refresh poller stopped")

		var tick <-chan time.Time
		if rp.interval > 0 {
			ticker := time.NewTicker(rp.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		rp.refreshAll(ctx)

		for {
			select {
			case symbol := <-rp.refreshChan:
				rp.refresh(ctx, symbol)

			case <-tick:
				rp.refreshAll(ctx)

			case <-ctx.Done():
				rp.logger.Info("received shutdown signal, stopping")
				return
			}
		}
	}()
}

func (rp *RefreshPoller) refreshAll(ctx context.Context) {
	for _, symbol := range rp.symbols {
		if ctx.Err() != nil {
			return
		}
		rp.refresh(ctx, symbol)
	}
}

func (rp *RefreshPoller) refresh(ctx context.Context, symbol string) {
	// Create context with timeout for the fetch
	fetchCtx, cancel := context.WithTimeout(ctx, RefreshTimeout)
	defer cancel()

	_, err := rp.fetcher.FetchMarketData(fetchCtx, symbol)

	rp.mu.Lock()
	if err != nil {
		rp.stats.Failed++
	} else {
		rp.stats.Refreshed++
	}
	rp.mu.Unlock()

	if err != nil {
		// Continue polling despite the failure, the last good data stays in place
		rp.logger.Warn("failed to refresh market data",
			"symbol", symbol,
			"error", err)
		return
	}

	rp.logger.Debug("refreshed market data", "symbol", symbol)
}

// Stats returns the refresh counts so far
func (rp *RefreshPoller) Stats() PollerStats {
	rp.mu.RLock()
	defer rp.mu.RUnlock()
	return rp.stats
}

// Done is closed once the poller has stopped
func (rp *RefreshPoller) Done() <-chan struct{} {
	return rp.done
}

// GetRefreshChannel returns the channel for requesting an immediate refresh
// of a symbol
func (rp *RefreshPoller) GetRefreshChannel() chan<- string {
	return rp.refreshChan
}

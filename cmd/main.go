package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"MarketViewer/api"
	"MarketViewer/internal/config"
	"MarketViewer/internal/core"
	"MarketViewer/internal/data"
	"MarketViewer/internal/exchange"
	"MarketViewer/internal/logging"
	"MarketViewer/internal/mock"
	"MarketViewer/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	demo := flag.Bool("demo", false, "serve market data from a local simulated exchange")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal, stopping services")
		cancel()
	}()

	baseURL := cfg.Exchange.BaseURL
	if *demo {
		baseURL, err = startSimulatedExchange(ctx, logger)
		if err != nil {
			log.Fatalf("failed to start simulated exchange: %v", err)
		}
	}

	// 1. Exchange client
	clientConfig := exchange.DefaultClientConfig()
	clientConfig.BaseURL = baseURL
	clientConfig.Timeout = cfg.Exchange.Timeout
	clientConfig.RecentTradesLimit = cfg.Exchange.RecentTradesLimit
	client := exchange.NewClientWithConfig(clientConfig, logger)

	// 2. Per-symbol dashboard state
	storage := data.NewInMemoryStateStorageWithConfig(data.StorageConfig{
		MaxTradesPerSymbol: cfg.Market.MaxTradesStored,
	})

	// 3. Market service (fetches into storage, derives table and chart views)
	serviceConfig := service.DefaultServiceConfig()
	serviceConfig.QuoteAsset = cfg.Market.QuoteAsset
	marketService := service.NewMarketServiceWithConfig(client, storage, serviceConfig, logger)

	// 4. Background refresh: periodic for configured symbols, SIGHUP refreshes
	// every symbol held in state
	poller := core.NewRefreshPoller(marketService, cfg.Refresh.Symbols, cfg.Refresh.Interval, logger)
	poller.Start(ctx)

	hupChan := make(chan os.Signal, 1)
	signal.Notify(hupChan, syscall.SIGHUP)
	go forwardRefreshRequests(ctx, hupChan, storage, poller.GetRefreshChannel(), logger)

	apiHandler := api.NewAPIHandler(marketService, logger)
	server := apiHandler.NewServer(cfg.Addr())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down server", "error", err)
		}
	}()

	fmt.Printf("Market viewer starting on %s (exchange %s)\n", cfg.Addr(), baseURL)
	fmt.Printf("Endpoints:\n")
	fmt.Printf("  GET    /api/v1/pairs\n")
	fmt.Printf("  GET    /api/v1/market?symbol=BTCUSDT\n")
	fmt.Printf("  GET    /api/v1/historical?symbol=BTCUSDT&range=24h\n")
	fmt.Printf("  GET    /api/v1/trades?symbol=BTCUSDT&sort=price&direction=desc&page=1&pageSize=20\n")
	fmt.Printf("  GET    /api/v1/chart?symbol=BTCUSDT&type=price&min=auto&max=auto\n")
	fmt.Printf("  GET    /api/v1/state?symbol=BTCUSDT\n")
	fmt.Printf("  DELETE /api/v1/state?symbol=BTCUSDT\n")
	fmt.Printf("  GET    /health\n")
	fmt.Printf("Press Ctrl+C to gracefully shutdown\n")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}

	<-poller.Done()
	stats := poller.Stats()
	logger.Info("shutdown complete", "refreshed", stats.Refreshed, "failed", stats.Failed)
}

// forwardRefreshRequests queues a refresh of every stored symbol each time a
// signal arrives on signals
func forwardRefreshRequests(ctx context.Context, signals <-chan os.Signal, storage *data.InMemoryStateStorage, refresh chan<- string, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			symbols := storage.Symbols()
			logger.Info("refresh requested", "symbols", symbols)
			for _, symbol := range symbols {
				select {
				case refresh <- symbol:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// startSimulatedExchange serves the simulated exchange on a loopback port
// and returns its base URL
func startSimulatedExchange(ctx context.Context, logger *slog.Logger) (string, error) {
	generator := mock.NewTradeDataGenerator()
	generator.Start(ctx)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	server := &http.Server{Handler: mock.NewExchangeServer(generator).Handler()}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("simulated exchange stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	baseURL := "http://" + listener.Addr().String()
	logger.Info("simulated exchange started", "url", baseURL, "symbols", generator.Symbols())
	return baseURL, nil
}

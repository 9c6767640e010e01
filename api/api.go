package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"MarketViewer/internal/chart"
	"MarketViewer/internal/model"
	"MarketViewer/internal/service"
	"MarketViewer/internal/sorting"

	"github.com/gin-gonic/gin"
)

// The api package is split by concern:
// - api.go: handler dependencies and routing (this file)
// - handler.go: HTTP request handlers
// - middleware.go: middleware functions
// - validator.go: request validation

// Constants
const (
	DefaultTimeout      = 30 * time.Second
	DefaultTimeRange    = string(model.TimeRange24h)
	ServiceVersion      = "1.0.0"
	ServiceName         = "market-viewer"
	APIPrefix           = "/api/v1"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// MarketService is the dashboard state the handlers read and refresh
type MarketService interface {
	FetchMarketData(ctx context.Context, symbol string) (model.DashboardState, error)
	FetchHistoricalTrades(ctx context.Context, symbol string, config model.TradeDataConfig) (model.DashboardState, error)
	AvailablePairs(ctx context.Context) ([]string, error)
	State(ctx context.Context, symbol string) (model.DashboardState, error)
	Clear(symbol string)
	TradesTable(ctx context.Context, symbol string, sortState sorting.State, page, pageSize int) (service.TradesView, error)
	Chart(ctx context.Context, symbol string, chartType chart.Type, override [2]chart.Bound) (service.ChartView, error)
}

// APIHandler handles HTTP requests using Gin framework
type APIHandler struct {
	marketService MarketService
	validator     *Validator
	logger        *slog.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(marketService MarketService, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		marketService: marketService,
		validator:     GetValidator(),
		logger:        logger,
	}
}

// NewServer returns an HTTP server serving the API on addr
func (h *APIHandler) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes() *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(h.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", h.HealthCheck)

	// API routes
	v1 := router.Group(APIPrefix)
	v1.GET("/pairs", h.GetPairs)
	v1.GET("/market", h.RefreshMarket)
	v1.GET("/state", h.GetState)
	v1.DELETE("/state", h.ClearState)
	v1.GET("/historical", h.GetHistorical)
	v1.GET("/trades", h.GetTrades)
	v1.GET("/chart", h.GetChart)

	return router
}

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"MarketViewer/internal/exchange"
	"MarketViewer/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPairs handles GET /api/v1/pairs requests
func (h *APIHandler) GetPairs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	pairs, err := h.marketService.AvailablePairs(ctx)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pairs": pairs,
		"count": len(pairs),
	})
}

// RefreshMarket handles GET /api/v1/market requests. It fetches the snapshot
// and 24h trades for the symbol and returns the resulting state.
func (h *APIHandler) RefreshMarket(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	symbol, err := h.validator.ValidateSymbol(c.Query("symbol"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	state, err := h.marketService.FetchMarketData(ctx, symbol)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetState handles GET /api/v1/state requests
func (h *APIHandler) GetState(c *gin.Context) {
	symbol, err := h.validator.ValidateSymbol(c.Query("symbol"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	state, err := h.marketService.State(c.Request.Context(), symbol)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// ClearState handles DELETE /api/v1/state requests
func (h *APIHandler) ClearState(c *gin.Context) {
	symbol, err := h.validator.ValidateSymbol(c.Query("symbol"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	h.marketService.Clear(symbol)
	c.Status(http.StatusNoContent)
}

// GetHistorical handles GET /api/v1/historical requests
func (h *APIHandler) GetHistorical(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	symbol, config, err := h.validator.ValidateHistoricalRequest(
		c.Query("symbol"),
		c.DefaultQuery("range", DefaultTimeRange),
		c.Query("start"),
		c.Query("end"),
		c.Query("limit"),
	)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	state, err := h.marketService.FetchHistoricalTrades(ctx, symbol, config)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetTrades handles GET /api/v1/trades requests
func (h *APIHandler) GetTrades(c *gin.Context) {
	symbol, sortState, page, pageSize, err := h.validator.ValidateTradesRequest(
		c.Query("symbol"),
		c.Query("sort"),
		c.Query("direction"),
		c.Query("toggle"),
		c.Query("page"),
		c.Query("pageSize"),
	)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	view, err := h.marketService.TradesTable(c.Request.Context(), symbol, sortState, page, pageSize)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetChart handles GET /api/v1/chart requests
func (h *APIHandler) GetChart(c *gin.Context) {
	symbol, chartType, override, err := h.validator.ValidateChartRequest(
		c.Query("symbol"),
		c.Query("type"),
		c.Query("min"),
		c.Query("max"),
	)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	view, err := h.marketService.Chart(c.Request.Context(), symbol, chartType, override)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// HealthCheck handles GET /health requests
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// handleError logs the error and sends appropriate HTTP response
func (h *APIHandler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID, exists := c.Get(RequestIDContextKey)
	requestIDStr := "unknown"
	if exists {
		if id, ok := requestID.(string); ok {
			requestIDStr = id
		}
	}

	h.logger.Error("API error",
		slog.String("request_id", requestIDStr),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
		slog.Int("status_code", statusCode),
	)

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestIDStr,
	})
}

// handleValidationError handles validation errors specifically
func (h *APIHandler) handleValidationError(c *gin.Context, err error) {
	h.handleError(c, err, http.StatusBadRequest, err.Error())
}

// handleServiceError maps a missing state to 404 and any fetch failure to
// 502 carrying the normalized exchange message
func (h *APIHandler) handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoData) {
		h.handleError(c, err, http.StatusNotFound, "no market data for symbol, refresh it first")
		return
	}
	h.handleError(c, err, http.StatusBadGateway, exchange.Message(err))
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"MarketViewer/internal/chart"
	"MarketViewer/internal/exchange"
	"MarketViewer/internal/model"
	"MarketViewer/internal/pagination"
	"MarketViewer/internal/service"
	"MarketViewer/internal/sorting"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMarketService implements MarketService interface for testing
type MockMarketService struct {
	mock.Mock
}

func (m *MockMarketService) FetchMarketData(ctx context.Context, symbol string) (model.DashboardState, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(model.DashboardState), args.Error(1)
}

func (m *MockMarketService) FetchHistoricalTrades(ctx context.Context, symbol string, config model.TradeDataConfig) (model.DashboardState, error) {
	args := m.Called(ctx, symbol, config)
	return args.Get(0).(model.DashboardState), args.Error(1)
}

func (m *MockMarketService) AvailablePairs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMarketService) State(ctx context.Context, symbol string) (model.DashboardState, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(model.DashboardState), args.Error(1)
}

func (m *MockMarketService) Clear(symbol string) {
	m.Called(symbol)
}

func (m *MockMarketService) TradesTable(ctx context.Context, symbol string, sortState sorting.State, page, pageSize int) (service.TradesView, error) {
	args := m.Called(ctx, symbol, sortState, page, pageSize)
	return args.Get(0).(service.TradesView), args.Error(1)
}

func (m *MockMarketService) Chart(ctx context.Context, symbol string, chartType chart.Type, override [2]chart.Bound) (service.ChartView, error) {
	args := m.Called(ctx, symbol, chartType, override)
	return args.Get(0).(service.ChartView), args.Error(1)
}

// Test helper functions
func createTestTrades(count int) []model.Trade {
	trades := make([]model.Trade, count)
	baseTime := time.Now().UnixMilli()

	for i := 0; i < count; i++ {
		trades[i] = model.Trade{
			ID:            fmt.Sprintf("%d", i+1),
			Price:         fmt.Sprintf("%d.00", 50000+i*100),
			Quantity:      "0.1",
			QuoteQuantity: fmt.Sprintf("%d.00", 5000+i*10),
			Timestamp:     baseTime - int64(i*1000),
		}
	}
	return trades
}

func createTestState(symbol string) model.DashboardState {
	trades := createTestTrades(3)
	return model.DashboardState{
		Symbol: symbol,
		Snapshot: &model.MarketSnapshot{
			Symbol:       symbol,
			Ticker:       model.TickerPrice{Symbol: symbol, Price: "50000.00"},
			RecentTrades: trades,
		},
		Historical: &model.HistoricalTradesResult{
			Trades: trades,
			Total:  len(trades),
			Source: model.TradeSourceAggTrades,
		},
		LastUpdated: time.Now(),
	}
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError + 4, // Suppress logs during testing
	}))
}

func setupGinTestMode() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, url, nil)
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// Test NewAPIHandler
func TestNewAPIHandler(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name          string
		marketService MarketService
		logger        *slog.Logger
		expectDefault bool
	}{
		{
			name:          "with valid service and logger",
			marketService: &MockMarketService{},
			logger:        setupTestLogger(),
		},
		{
			name:          "with nil logger",
			marketService: &MockMarketService{},
			logger:        nil,
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAPIHandler(tt.marketService, tt.logger)

			assert.NotNil(t, handler)
			assert.Equal(t, tt.marketService, handler.marketService)

			if tt.expectDefault {
				assert.NotNil(t, handler.logger)
			} else {
				assert.Equal(t, tt.logger, handler.logger)
			}

			assert.NotNil(t, handler.validator)
		})
	}
}

func TestNewServer(t *testing.T) {
	setupGinTestMode()

	handler := NewAPIHandler(&MockMarketService{}, setupTestLogger())
	server := handler.NewServer(":8080")

	assert.Equal(t, ":8080", server.Addr)
	assert.NotNil(t, server.Handler)
}

// Test SetupRoutes
func TestSetupRoutes(t *testing.T) {
	setupGinTestMode()

	handler := NewAPIHandler(&MockMarketService{}, setupTestLogger())
	router := handler.SetupRoutes()

	registered := make(map[string]bool)
	for _, route := range router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, expected := range []string{
		"GET /health",
		"GET /api/v1/pairs",
		"GET /api/v1/market",
		"GET /api/v1/state",
		"DELETE /api/v1/state",
		"GET /api/v1/historical",
		"GET /api/v1/trades",
		"GET /api/v1/chart",
	} {
		assert.True(t, registered[expected], "%s should be registered", expected)
	}
}

// Test API Constants
func TestAPIConstants(t *testing.T) {
	assert.Equal(t, 30*time.Second, DefaultTimeout)
	assert.Equal(t, "24h", DefaultTimeRange)
	assert.Equal(t, "1.0.0", ServiceVersion)
	assert.Equal(t, "market-viewer", ServiceName)
	assert.Equal(t, "/api/v1", APIPrefix)
	assert.Equal(t, "request_id", RequestIDContextKey)
	assert.Equal(t, "X-Request-ID", RequestIDHeaderKey)
}

// Test Health Check Endpoint
func TestHealthCheck(t *testing.T) {
	setupGinTestMode()

	handler := NewAPIHandler(&MockMarketService{}, setupTestLogger())
	w := serve(handler.SetupRoutes(), "GET", "/health")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "OK", response["status"])
	assert.Equal(t, ServiceName, response["service"])
}

// Test Pairs Endpoint
func TestGetPairsEndpoint(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name           string
		pairs          []string
		mockError      error
		expectedStatus int
	}{
		{
			name:           "successful request",
			pairs:          []string{"BTCUSDT", "ETHUSDT"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "exchange failure",
			pairs:          []string{},
			mockError:      &exchange.Error{Kind: exchange.KindNetwork, Message: "network error - please check your connection"},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockMarketService{}
			mockService.On("AvailablePairs", mock.Anything).Return(tt.pairs, tt.mockError)

			handler := NewAPIHandler(mockService, setupTestLogger())
			w := serve(handler.SetupRoutes(), "GET", "/api/v1/pairs")

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.mockError == nil {
				var response struct {
					Pairs []string `json:"pairs"`
					Count int      `json:"count"`
				}
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, tt.pairs, response.Pairs)
				assert.Equal(t, len(tt.pairs), response.Count)
			} else {
				assert.Equal(t, "network error - please check your connection", decodeError(t, w)["error"])
			}

			mockService.AssertExpectations(t)
		})
	}
}

// Test Market Refresh Endpoint
func TestRefreshMarketEndpoint(t *testing.T) {
	setupGinTestMode()

	apiErr := &exchange.Error{Kind: exchange.KindAPI, Code: -1121, Message: "exchange API error: Invalid symbol. (code: -1121)"}

	tests := []struct {
		name           string
		query          string
		expectedSymbol string
		mockError      error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "successful request normalizes symbol",
			query:          "?symbol=btcusdt",
			expectedSymbol: "BTCUSDT",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing symbol",
			query:          "",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "symbol parameter is required",
		},
		{
			name:           "invalid symbol format",
			query:          "?symbol=BTC-USD",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "exchange error",
			query:          "?symbol=NOPEUSDT",
			expectedSymbol: "NOPEUSDT",
			mockError:      fmt.Errorf("failed to fetch market data for NOPEUSDT: %w", apiErr),
			expectedStatus: http.StatusBadGateway,
			expectedError:  apiErr.Message,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockMarketService{}
			if tt.expectedSymbol != "" {
				mockService.On("FetchMarketData", mock.Anything, tt.expectedSymbol).
					Return(createTestState(tt.expectedSymbol), tt.mockError)
			}

			handler := NewAPIHandler(mockService, setupTestLogger())
			w := serve(handler.SetupRoutes(), "GET", "/api/v1/market"+tt.query)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var state model.DashboardState
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
				assert.Equal(t, tt.expectedSymbol, state.Symbol)
				assert.Equal(t, "50000.00", state.Snapshot.Ticker.Price)
			} else {
				body := decodeError(t, w)
				assert.NotEmpty(t, body["request_id"])
				if tt.expectedError != "" {
					assert.Equal(t, tt.expectedError, body["error"])
				}
			}

			mockService.AssertExpectations(t)
		})
	}
}

// Test State Endpoints
func TestGetStateEndpoint(t *testing.T) {
	setupGinTestMode()

	mockService := &MockMarketService{}
	mockService.On("State", mock.Anything, "BTCUSDT").Return(createTestState("BTCUSDT"), nil)
	mockService.On("State", mock.Anything, "ETHUSDT").Return(model.DashboardState{}, service.ErrNoData)

	handler := NewAPIHandler(mockService, setupTestLogger())
	router := handler.SetupRoutes()

	w := serve(router, "GET", "/api/v1/state?symbol=BTCUSDT")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, "GET", "/api/v1/state?symbol=ETHUSDT")
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockService.AssertExpectations(t)
}

func TestClearStateEndpoint(t *testing.T) {
	setupGinTestMode()

	mockService := &MockMarketService{}
	mockService.On("Clear", "BTCUSDT").Return()

	handler := NewAPIHandler(mockService, setupTestLogger())
	w := serve(handler.SetupRoutes(), "DELETE", "/api/v1/state?symbol=btcusdt")

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}

// Test Historical Endpoint
func TestGetHistoricalEndpoint(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name           string
		query          string
		expectedConfig *model.TradeDataConfig
		expectedStatus int
	}{
		{
			name:           "default range",
			query:          "?symbol=BTCUSDT",
			expectedConfig: &model.TradeDataConfig{TimeRange: model.TimeRange24h},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "custom window with limit",
			query: "?symbol=BTCUSDT&range=custom&start=1000&end=2000&limit=250",
			expectedConfig: &model.TradeDataConfig{
				TimeRange: model.TimeRangeCustom,
				StartTime: 1000,
				EndTime:   2000,
				Limit:     250,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid range",
			query:          "?symbol=BTCUSDT&range=7d",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "start after end",
			query:          "?symbol=BTCUSDT&range=custom&start=2000&end=1000",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "limit too large",
			query:          "?symbol=BTCUSDT&limit=5000",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockMarketService{}
			if tt.expectedConfig != nil {
				mockService.On("FetchHistoricalTrades", mock.Anything, "BTCUSDT", *tt.expectedConfig).
					Return(createTestState("BTCUSDT"), nil)
			}

			handler := NewAPIHandler(mockService, setupTestLogger())
			w := serve(handler.SetupRoutes(), "GET", "/api/v1/historical"+tt.query)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// Test Trades Endpoint
func TestGetTradesEndpoint(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name             string
		query            string
		expectedSort     sorting.State
		expectedPage     int
		expectedPageSize int
		mockError        error
		expectedStatus   int
	}{
		{
			name:             "defaults",
			query:            "?symbol=BTCUSDT",
			expectedSort:     sorting.DefaultState(),
			expectedPage:     1,
			expectedPageSize: pagination.DefaultPageSize,
			expectedStatus:   http.StatusOK,
		},
		{
			name:             "explicit sort and page",
			query:            "?symbol=BTCUSDT&sort=price&direction=asc&page=3&pageSize=50",
			expectedSort:     sorting.State{Field: sorting.FieldPrice, Direction: sorting.Asc},
			expectedPage:     3,
			expectedPageSize: 50,
			expectedStatus:   http.StatusOK,
		},
		{
			name:             "toggle active column",
			query:            "?symbol=BTCUSDT&sort=price&direction=asc&toggle=price",
			expectedSort:     sorting.State{Field: sorting.FieldPrice, Direction: sorting.Desc},
			expectedPage:     1,
			expectedPageSize: pagination.DefaultPageSize,
			expectedStatus:   http.StatusOK,
		},
		{
			name:             "toggle new column",
			query:            "?symbol=BTCUSDT&toggle=quantity",
			expectedSort:     sorting.State{Field: sorting.FieldQuantity, Direction: sorting.Asc},
			expectedPage:     1,
			expectedPageSize: pagination.DefaultPageSize,
			expectedStatus:   http.StatusOK,
		},
		{
			name:             "no data yet",
			query:            "?symbol=BTCUSDT",
			expectedSort:     sorting.DefaultState(),
			expectedPage:     1,
			expectedPageSize: pagination.DefaultPageSize,
			mockError:        service.ErrNoData,
			expectedStatus:   http.StatusNotFound,
		},
		{
			name:           "invalid sort field",
			query:          "?symbol=BTCUSDT&sort=volume",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unsupported page size",
			query:          "?symbol=BTCUSDT&pageSize=25",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non-numeric page",
			query:          "?symbol=BTCUSDT&page=two",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockMarketService{}
			if tt.expectedPage != 0 {
				view := service.TradesView{
					Symbol:     "BTCUSDT",
					Sort:       tt.expectedSort,
					Pagination: pagination.NewState(3, tt.expectedPageSize, tt.expectedPage),
					Trades:     createTestTrades(3),
				}
				mockService.On("TradesTable", mock.Anything, "BTCUSDT", tt.expectedSort, tt.expectedPage, tt.expectedPageSize).
					Return(view, tt.mockError)
			}

			handler := NewAPIHandler(mockService, setupTestLogger())
			w := serve(handler.SetupRoutes(), "GET", "/api/v1/trades"+tt.query)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var view service.TradesView
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
				assert.Len(t, view.Trades, 3)
				assert.Equal(t, tt.expectedSort, view.Sort)
			}

			mockService.AssertExpectations(t)
		})
	}
}

// Test Chart Endpoint
func TestGetChartEndpoint(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name             string
		query            string
		expectedType     chart.Type
		expectedOverride [2]chart.Bound
		expectCall       bool
		expectedStatus   int
	}{
		{
			name:             "auto domain",
			query:            "?symbol=BTCUSDT",
			expectedType:     chart.TypePrice,
			expectedOverride: [2]chart.Bound{chart.AutoBound(), chart.AutoBound()},
			expectCall:       true,
			expectedStatus:   http.StatusOK,
		},
		{
			name:             "volume with fixed min",
			query:            "?symbol=BTCUSDT&type=volume&min=0&max=auto",
			expectedType:     chart.TypeVolume,
			expectedOverride: [2]chart.Bound{chart.Fixed(0), chart.AutoBound()},
			expectCall:       true,
			expectedStatus:   http.StatusOK,
		},
		{
			name:           "invalid type",
			query:          "?symbol=BTCUSDT&type=candles",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid bound",
			query:          "?symbol=BTCUSDT&min=low",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "min above max",
			query:          "?symbol=BTCUSDT&min=10&max=5",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockMarketService{}
			if tt.expectCall {
				view := service.ChartView{
					Symbol: "BTCUSDT",
					Type:   tt.expectedType,
					Points: []model.ChartDataPoint{{Time: "12:00:00", Price: 50000}},
					Domain: &service.ChartDomain{Min: 49000, Max: 51000},
				}
				mockService.On("Chart", mock.Anything, "BTCUSDT", tt.expectedType, tt.expectedOverride).Return(view, nil)
			}

			handler := NewAPIHandler(mockService, setupTestLogger())
			w := serve(handler.SetupRoutes(), "GET", "/api/v1/chart"+tt.query)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectCall {
				var view service.ChartView
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
				assert.Len(t, view.Points, 1)
				require.NotNil(t, view.Domain)
				assert.Equal(t, 49000.0, view.Domain.Min)
			}

			mockService.AssertExpectations(t)
		})
	}
}

// Test Request ID Middleware
func TestRequestIDMiddleware(t *testing.T) {
	setupGinTestMode()

	handler := NewAPIHandler(&MockMarketService{}, setupTestLogger())
	router := handler.SetupRoutes()

	tests := []struct {
		name       string
		providedID string
	}{
		{name: "with provided request ID", providedID: "test-request-123"},
		{name: "without request ID", providedID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/health", nil)

			if tt.providedID != "" {
				req.Header.Set(RequestIDHeaderKey, tt.providedID)
			}

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			responseID := w.Header().Get(RequestIDHeaderKey)
			if tt.providedID != "" {
				assert.Equal(t, tt.providedID, responseID)
			} else {
				assert.Len(t, responseID, 36)
			}
		})
	}
}

// Test error bodies carry the request id
func TestErrorResponseIncludesRequestID(t *testing.T) {
	setupGinTestMode()

	mockService := &MockMarketService{}
	mockService.On("AvailablePairs", mock.Anything).Return([]string{}, errors.New("boom"))

	handler := NewAPIHandler(mockService, setupTestLogger())
	router := handler.SetupRoutes()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/pairs", nil)
	req.Header.Set(RequestIDHeaderKey, "req-42")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "req-42", body["request_id"])
	assert.Equal(t, "boom", body["error"])
}

// Test CORS middleware
func TestCORSMiddleware(t *testing.T) {
	setupGinTestMode()

	handler := NewAPIHandler(&MockMarketService{}, setupTestLogger())
	router := handler.SetupRoutes()

	w := serve(router, "GET", "/health")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, "OPTIONS", "/api/v1/trades")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

// Test Content Type and Response Format
func TestContentTypeAndFormat(t *testing.T) {
	setupGinTestMode()

	mockService := &MockMarketService{}
	mockService.On("State", mock.Anything, "BTCUSDT").Return(createTestState("BTCUSDT"), nil)

	handler := NewAPIHandler(mockService, setupTestLogger())
	w := serve(handler.SetupRoutes(), "GET", "/api/v1/state?symbol=BTCUSDT")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	historical := response["historical"].(map[string]interface{})
	trades := historical["trades"].([]interface{})
	require.Len(t, trades, 3)

	// Decimal fields stay strings on the wire
	trade := trades[0].(map[string]interface{})
	assert.Equal(t, "50000.00", trade["price"])
	assert.Equal(t, "aggTrades", historical["source"])
}

// Test Route Not Found
func TestRouteNotFound(t *testing.T) {
	setupGinTestMode()

	handler := NewAPIHandler(&MockMarketService{}, setupTestLogger())
	w := serve(handler.SetupRoutes(), "GET", "/nonexistent")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Test HTTP Methods
func TestHTTPMethods(t *testing.T) {
	setupGinTestMode()

	handler := NewAPIHandler(&MockMarketService{}, setupTestLogger())
	router := handler.SetupRoutes()

	tests := []struct {
		method         string
		endpoint       string
		expectedStatus int
	}{
		{"POST", "/api/v1/trades", http.StatusNotFound},
		{"PUT", "/api/v1/state", http.StatusNotFound},
		{"DELETE", "/api/v1/trades", http.StatusNotFound},
		{"POST", "/api/v1/chart", http.StatusNotFound},
		{"GET", "/health", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.endpoint), func(t *testing.T) {
			w := serve(router, tt.method, tt.endpoint)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

// Benchmark tests
func BenchmarkGetTrades(b *testing.B) {
	setupGinTestMode()

	view := service.TradesView{Symbol: "BTCUSDT", Trades: createTestTrades(50)}
	mockService := &MockMarketService{}
	mockService.On("TradesTable", mock.Anything, "BTCUSDT", sorting.DefaultState(), 1, 50).Return(view, nil)

	handler := NewAPIHandler(mockService, setupTestLogger())
	router := handler.SetupRoutes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		serve(router, "GET", "/api/v1/trades?symbol=BTCUSDT&pageSize=50")
	}
}

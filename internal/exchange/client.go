// Package exchange is the single point of contact with the exchange's public
// market data REST API. Every failure is reported as *Error.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MarketViewer/internal/model"

	"golang.org/x/sync/errgroup"
)

// Configuration constants
const (
	DefaultBaseURL           = "https://api.binance.com/api/v3"
	DefaultTimeout           = 10 * time.Second
	DefaultRecentTradesLimit = 100
	MaxTradesLimit           = 1000
	TwentyFourHours          = 24 * time.Hour
)

// ClientConfig holds configuration for the market data client
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RecentTradesLimit int
	HTTPClient        *http.Client
	Clock             func() time.Time
}

// DefaultClientConfig returns the public exchange endpoint with a 10s timeout
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           DefaultBaseURL,
		Timeout:           DefaultTimeout,
		RecentTradesLimit: DefaultRecentTradesLimit,
	}
}

// Client reads market data from the exchange. It keeps no state between calls.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	recentLimit int
	now         func() time.Time
	logger      *slog.Logger
}

// NewClient creates a client for the public exchange endpoint
func NewClient(logger *slog.Logger) *Client {
	return NewClientWithConfig(DefaultClientConfig(), logger)
}

// NewClientWithConfig creates a client with custom config
func NewClientWithConfig(config ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RecentTradesLimit <= 0 {
		config.RecentTradesLimit = DefaultRecentTradesLimit
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		httpClient:  config.HTTPClient,
		timeout:     config.Timeout,
		recentLimit: config.RecentTradesLimit,
		now:         config.Clock,
		logger:      logger,
	}
}

// GetExchangeInfo fetches the metadata of every tradable symbol
func (c *Client) GetExchangeInfo(ctx context.Context) (model.ExchangeInfo, error) {
	c.logger.Info("fetching exchange info")

	var info model.ExchangeInfo
	if err := c.get(ctx, "/exchangeInfo", nil, &info); err != nil {
		c.logger.Error("failed to fetch exchange info", "error", err)
		return model.ExchangeInfo{}, err
	}

	c.logger.Info("fetched exchange info", "symbols", len(info.Symbols))
	return info, nil
}

// GetAllTickerPrices fetches the latest price of every symbol
func (c *Client) GetAllTickerPrices(ctx context.Context) ([]model.TickerPrice, error) {
	c.logger.Info("fetching all ticker prices")

	var prices []model.TickerPrice
	if err := c.get(ctx, "/ticker/price", nil, &prices); err != nil {
		c.logger.Error("failed to fetch all ticker prices", "error", err)
		return nil, err
	}

	c.logger.Info("fetched all ticker prices", "count", len(prices))
	return prices, nil
}

// GetTickerPrice fetches the latest price of one symbol
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (model.TickerPrice, error) {
	symbol = normalizeSymbol(symbol)
	c.logger.Debug("fetching ticker price", "symbol", symbol)

	var price model.TickerPrice
	if err := c.get(ctx, "/ticker/price", url.Values{"symbol": {symbol}}, &price); err != nil {
		c.logger.Error("failed to fetch ticker price", "symbol", symbol, "error", err)
		return model.TickerPrice{}, err
	}
	return price, nil
}

// Get24hrTicker fetches the rolling 24 hour statistics of one symbol
func (c *Client) Get24hrTicker(ctx context.Context, symbol string) (model.Ticker24h, error) {
	symbol = normalizeSymbol(symbol)
	c.logger.Debug("fetching 24hr ticker", "symbol", symbol)

	var ticker model.Ticker24h
	if err := c.get(ctx, "/ticker/24hr", url.Values{"symbol": {symbol}}, &ticker); err != nil {
		c.logger.Error("failed to fetch 24hr ticker", "symbol", symbol, "error", err)
		return model.Ticker24h{}, err
	}
	return ticker, nil
}

// GetRecentTrades fetches the most recent trades of one symbol. A
// non-positive limit selects the configured default; the limit never exceeds
// MaxTradesLimit.
func (c *Client) GetRecentTrades(ctx context.Context, symbol string, limit int) ([]model.Trade, error) {
	symbol = normalizeSymbol(symbol)
	limit = clampLimit(limit, c.recentLimit)
	c.logger.Debug("fetching recent trades", "symbol", symbol, "limit", limit)

	params := url.Values{
		"symbol": {symbol},
		"limit":  {strconv.Itoa(limit)},
	}

	var raw []wireTrade
	if err := c.get(ctx, "/trades", params, &raw); err != nil {
		c.logger.Error("failed to fetch recent trades", "symbol", symbol, "error", err)
		return nil, err
	}

	trades := make([]model.Trade, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, t.toModel())
	}
	return trades, nil
}

// GetMarketData fetches ticker, 24h statistics and recent trades concurrently.
// If any of the three fails the whole call fails and no snapshot is returned.
func (c *Client) GetMarketData(ctx context.Context, symbol string) (model.MarketSnapshot, error) {
	symbol = normalizeSymbol(symbol)

	var (
		ticker    model.TickerPrice
		ticker24h model.Ticker24h
		trades    []model.Trade
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ticker, err = c.GetTickerPrice(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		ticker24h, err = c.Get24hrTicker(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		trades, err = c.GetRecentTrades(gctx, symbol, c.recentLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		c.logger.Error("failed to fetch market data", "symbol", symbol, "error", err)
		return model.MarketSnapshot{}, normalizeError(err)
	}

	return model.MarketSnapshot{
		Symbol:       symbol,
		Ticker:       ticker,
		Ticker24h:    ticker24h,
		RecentTrades: trades,
	}, nil
}

// get issues a GET request and decodes the JSON response into out
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return normalizeError(fmt.Errorf("failed to build request for %s: %w", path, err))
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return normalizeError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return normalizeError(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return normalizeError(fmt.Errorf("failed to decode %s response: %w", path, err))
	}
	return nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// clampLimit replaces a non-positive limit with fallback and caps it at the
// exchange's hard maximum
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if limit > MaxTradesLimit {
		limit = MaxTradesLimit
	}
	return limit
}

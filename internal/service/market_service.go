package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"MarketViewer/internal/chart"
	"MarketViewer/internal/data"
	"MarketViewer/internal/exchange"
	"MarketViewer/internal/model"
	"MarketViewer/internal/pagination"
	"MarketViewer/internal/sorting"

	"golang.org/x/sync/errgroup"
)

// Configuration constants
const (
	DefaultQuoteAsset   = "USDT"
	TradingStatus       = "TRADING"
	DefaultHistoryLimit = 500
	DefaultPageSize     = pagination.DefaultPageSize
)

// ErrNoData is returned when a symbol has no fetched market data yet
var ErrNoData = errors.New("no market data for symbol")

// MarketClient is the exchange client used by the service
type MarketClient interface {
	GetExchangeInfo(ctx context.Context) (model.ExchangeInfo, error)
	GetAllTickerPrices(ctx context.Context) ([]model.TickerPrice, error)
	GetMarketData(ctx context.Context, symbol string) (model.MarketSnapshot, error)
	GetHistoricalTrades(ctx context.Context, symbol string, config model.TradeDataConfig) (model.HistoricalTradesResult, error)
	GetComprehensive24hTrades(ctx context.Context, symbol string) (model.HistoricalTradesResult, error)
}

// StateStorage holds the dashboard state per symbol
type StateStorage interface {
	Begin() data.Ticket
	Commit(ticket data.Ticket, symbol string, update func(state *model.DashboardState)) bool
	GetState(ctx context.Context, symbol string) (model.DashboardState, bool)
	DeleteState(symbol string)
}

// ServiceConfig holds configuration for the market service
type ServiceConfig struct {
	QuoteAsset string
	Clock      func() time.Time
	Location   *time.Location // zone for chart time labels
}

// DefaultServiceConfig returns sensible default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		QuoteAsset: DefaultQuoteAsset,
		Clock:      time.Now,
		Location:   time.Local,
	}
}

// TradesView is one page of the trades table
type TradesView struct {
	Symbol      string            `json:"symbol"`
	Source      model.TradeSource `json:"source,omitempty"`
	Sort        sorting.State     `json:"sort"`
	Pagination  pagination.State  `json:"pagination"`
	PageNumbers []int             `json:"pageNumbers"`
	Trades      []model.Trade     `json:"trades"`
}

// ChartDomain is the y-axis range of a chart
type ChartDomain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ChartView is the chart series for a symbol
type ChartView struct {
	Symbol string                 `json:"symbol"`
	Type   chart.Type             `json:"type"`
	Points []model.ChartDataPoint `json:"points"`
	Domain *ChartDomain           `json:"domain,omitempty"`
}

// MarketService fetches market data into per-symbol dashboard state and
// derives the table and chart views from it
type MarketService struct {
	client  MarketClient
	storage StateStorage
	config  ServiceConfig
	logger  *slog.Logger
}

// NewMarketService creates a new market service with default config
func NewMarketService(client MarketClient, storage StateStorage, logger *slog.Logger) *MarketService {
	return NewMarketServiceWithConfig(client, storage, DefaultServiceConfig(), logger)
}

// NewMarketServiceWithConfig creates a new market service with custom config
func NewMarketServiceWithConfig(client MarketClient, storage StateStorage, config ServiceConfig, logger *slog.Logger) *MarketService {
	if logger == nil {
		logger = slog.Default()
	}
	if config.QuoteAsset == "" {
		config.QuoteAsset = DefaultQuoteAsset
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	return &MarketService{
		client:  client,
		storage: storage,
		config:  config,
		logger:  logger,
	}
}

// FetchMarketData refreshes the snapshot and the last 24 hours of trades for
// a symbol. Both are fetched concurrently and applied together; if either
// fails nothing is replaced and the error message is recorded on the state.
func (s *MarketService) FetchMarketData(ctx context.Context, symbol string) (model.DashboardState, error) {
	symbol = normalizeSymbol(symbol)
	ticket := s.storage.Begin()

	var (
		snapshot   model.MarketSnapshot
		historical model.HistoricalTradesResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = s.client.GetMarketData(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		historical, err = s.client.GetComprehensive24hTrades(gctx, symbol)
		return err
	})

	if err := g.Wait(); err != nil {
		s.recordError(ticket, symbol, err)
		state, _ := s.storage.GetState(ctx, symbol)
		return state, fmt.Errorf("failed to fetch market data for %s: %w", symbol, err)
	}

	now := s.config.Clock()
	applied := s.storage.Commit(ticket, symbol, func(state *model.DashboardState) {
		*state = model.DashboardState{
			Symbol:      symbol,
			Snapshot:    &snapshot,
			Historical:  &historical,
			LastUpdated: now,
		}
	})
	if !applied {
		s.logger.Debug("Discarded stale market data", "symbol", symbol, "ticket", ticket)
	} else {
		s.logger.Info("Market data updated",
			"symbol", symbol,
			"price", snapshot.Ticker.Price,
			"trades", len(historical.Trades),
			"source", historical.Source,
		)
	}

	state, _ := s.storage.GetState(ctx, symbol)
	return state, nil
}

// FetchHistoricalTrades replaces only the historical trades of a symbol
func (s *MarketService) FetchHistoricalTrades(ctx context.Context, symbol string, config model.TradeDataConfig) (model.DashboardState, error) {
	symbol = normalizeSymbol(symbol)
	ticket := s.storage.Begin()

	if config.Limit <= 0 {
		config.Limit = DefaultHistoryLimit
	}

	result, err := s.client.GetHistoricalTrades(ctx, symbol, config)
	if err != nil {
		s.recordError(ticket, symbol, err)
		state, _ := s.storage.GetState(ctx, symbol)
		return state, fmt.Errorf("failed to fetch historical trades for %s: %w", symbol, err)
	}

	now := s.config.Clock()
	if !s.storage.Commit(ticket, symbol, func(state *model.DashboardState) {
		state.Historical = &result
		state.Error = ""
		state.LastUpdated = now
	}) {
		s.logger.Debug("Discarded stale historical trades", "symbol", symbol, "ticket", ticket)
	}

	state, _ := s.storage.GetState(ctx, symbol)
	return state, nil
}

func (s *MarketService) recordError(ticket data.Ticket, symbol string, err error) {
	message := exchange.Message(err)
	s.logger.Error("Market data fetch failed", "symbol", symbol, "error", err)

	// Previous data stays visible but is no longer reported as fresh
	s.storage.Commit(ticket, symbol, func(state *model.DashboardState) {
		state.Error = message
		state.LastUpdated = time.Time{}
	})
}

// AvailablePairs returns the symbols that are trading on the spot market
// against the configured quote asset and have a live price, sorted
func (s *MarketService) AvailablePairs(ctx context.Context) ([]string, error) {
	var (
		info    model.ExchangeInfo
		tickers []model.TickerPrice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = s.client.GetExchangeInfo(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tickers, err = s.client.GetAllTickerPrices(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load trading pairs: %w", err)
	}

	priced := make(map[string]struct{}, len(tickers))
	for _, ticker := range tickers {
		priced[ticker.Symbol] = struct{}{}
	}

	pairs := make([]string, 0)
	for _, symbol := range info.Symbols {
		if symbol.Status != TradingStatus || !symbol.IsSpotTradingAllowed || symbol.QuoteAsset != s.config.QuoteAsset {
			continue
		}
		if _, ok := priced[symbol.Symbol]; !ok {
			continue
		}
		pairs = append(pairs, symbol.Symbol)
	}

	sort.Strings(pairs)
	return pairs, nil
}

// State returns the last known state of a symbol without fetching
func (s *MarketService) State(ctx context.Context, symbol string) (model.DashboardState, error) {
	state, ok := s.storage.GetState(ctx, normalizeSymbol(symbol))
	if !ok {
		return model.DashboardState{}, ErrNoData
	}
	return state, nil
}

// Clear drops the state of a symbol
func (s *MarketService) Clear(symbol string) {
	s.storage.DeleteState(normalizeSymbol(symbol))
}

// TradesTable sorts the symbol's trades and returns the requested page.
// Out-of-range pages are clamped.
func (s *MarketService) TradesTable(ctx context.Context, symbol string, sortState sorting.State, page, pageSize int) (TradesView, error) {
	state, err := s.stateWithData(ctx, symbol)
	if err != nil {
		return TradesView{}, err
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	trades := sorting.Sort(state.Trades(), sortState.Field, sortState.Direction)
	pages := pagination.NewState(len(trades), pageSize, page)
	window := pages.Window()

	view := TradesView{
		Symbol:      state.Symbol,
		Sort:        sortState,
		Pagination:  pages,
		PageNumbers: pages.PageNumbers(),
		Trades:      trades[window.StartIndex:window.EndIndex],
	}
	if state.Historical != nil {
		view.Source = state.Historical.Source
	}
	return view, nil
}

// Chart projects the symbol's trades, in the order they were fetched, into
// the series for chartType and its y-axis domain
func (s *MarketService) Chart(ctx context.Context, symbol string, chartType chart.Type, override [2]chart.Bound) (ChartView, error) {
	state, err := s.stateWithData(ctx, symbol)
	if err != nil {
		return ChartView{}, err
	}

	points := chart.PointsIn(state.Trades(), s.config.Location)
	view := ChartView{
		Symbol: state.Symbol,
		Type:   chartType,
		Points: points,
	}

	if lo, hi, ok := chart.Domain(chart.Series(points, chartType), override); ok {
		view.Domain = &ChartDomain{Min: lo, Max: hi}
	}
	return view, nil
}

func (s *MarketService) stateWithData(ctx context.Context, symbol string) (model.DashboardState, error) {
	state, err := s.State(ctx, symbol)
	if err != nil {
		return model.DashboardState{}, err
	}
	if !state.HasData() {
		return model.DashboardState{}, ErrNoData
	}
	return state, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

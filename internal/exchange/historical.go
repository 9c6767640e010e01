package exchange

import (
	"context"
	"net/url"
	"sort"
	"strconv"

	"MarketViewer/internal/model"
)

// tradeStrategy is one way of obtaining a set of trades. Strategies are tried
// in order and the first success wins.
type tradeStrategy struct {
	name  string
	fetch func(ctx context.Context) (model.HistoricalTradesResult, error)

	// reportsError makes this strategy's error the one returned when every
	// strategy fails. By default the first strategy's error is returned.
	reportsError bool
}

// GetHistoricalTrades queries aggregated trades over the configured window.
// If that fails, recent trades are returned instead with HasMore=false. When
// both fail the aggregated-trades error is returned.
func (c *Client) GetHistoricalTrades(ctx context.Context, symbol string, config model.TradeDataConfig) (model.HistoricalTradesResult, error) {
	symbol = normalizeSymbol(symbol)
	limit := clampLimit(config.Limit, MaxTradesLimit)
	startTime, endTime := c.window(config)

	strategies := []tradeStrategy{
		{
			name: string(model.TradeSourceAggTrades),
			fetch: func(ctx context.Context) (model.HistoricalTradesResult, error) {
				return c.fetchAggTrades(ctx, symbol, startTime, endTime, limit)
			},
		},
		{
			name: string(model.TradeSourceRecentTrades),
			fetch: func(ctx context.Context) (model.HistoricalTradesResult, error) {
				trades, err := c.GetRecentTrades(ctx, symbol, config.Limit)
				if err != nil {
					return model.HistoricalTradesResult{}, err
				}
				return model.HistoricalTradesResult{
					Trades:  trades,
					Total:   len(trades),
					HasMore: false,
					Source:  model.TradeSourceRecentTrades,
				}, nil
			},
		},
	}

	return c.firstSuccessful(ctx, symbol, strategies)
}

// GetComprehensive24hTrades queries the last 24 hours at the maximum page
// size, falling back to GetHistoricalTrades with the same window. When both
// fail the error from GetHistoricalTrades is returned.
func (c *Client) GetComprehensive24hTrades(ctx context.Context, symbol string) (model.HistoricalTradesResult, error) {
	symbol = normalizeSymbol(symbol)
	config := model.TradeDataConfig{TimeRange: model.TimeRange24h, Limit: MaxTradesLimit}

	strategies := []tradeStrategy{
		{
			name: "aggTrades24h",
			fetch: func(ctx context.Context) (model.HistoricalTradesResult, error) {
				startTime, endTime := c.window(config)
				return c.fetchAggTrades(ctx, symbol, startTime, endTime, MaxTradesLimit)
			},
		},
		{
			name: "historical",
			fetch: func(ctx context.Context) (model.HistoricalTradesResult, error) {
				return c.GetHistoricalTrades(ctx, symbol, config)
			},
			reportsError: true,
		},
	}

	return c.firstSuccessful(ctx, symbol, strategies)
}

// firstSuccessful runs strategies in order. When all of them fail it returns
// the error of the strategy marked reportsError, or else of the first one.
func (c *Client) firstSuccessful(ctx context.Context, symbol string, strategies []tradeStrategy) (model.HistoricalTradesResult, error) {
	var firstErr, reportedErr error
	for i, strategy := range strategies {
		result, err := strategy.fetch(ctx)
		if err == nil {
			if i > 0 {
				c.logger.Warn("served trades from fallback",
					"symbol", symbol,
					"strategy", strategy.name,
					"cause", firstErr)
			}
			return result, nil
		}

		c.logger.Debug("trade strategy failed",
			"symbol", symbol,
			"strategy", strategy.name,
			"error", err)
		if firstErr == nil {
			firstErr = err
		}
		if strategy.reportsError {
			reportedErr = err
		}
	}

	if reportedErr == nil {
		reportedErr = firstErr
	}
	c.logger.Error("failed to fetch historical trades", "symbol", symbol, "error", reportedErr)
	return model.HistoricalTradesResult{}, normalizeError(reportedErr)
}

// window returns the query bounds in unix milliseconds; zero means unbounded
func (c *Client) window(config model.TradeDataConfig) (int64, int64) {
	switch config.TimeRange {
	case model.TimeRange24h:
		now := c.now()
		return now.Add(-TwentyFourHours).UnixMilli(), now.UnixMilli()
	case model.TimeRangeCustom:
		if config.StartTime > 0 && config.EndTime > 0 {
			return config.StartTime, config.EndTime
		}
	}
	return 0, 0
}

// fetchAggTrades reads /aggTrades and maps it to trades, newest first
func (c *Client) fetchAggTrades(ctx context.Context, symbol string, startTime, endTime int64, limit int) (model.HistoricalTradesResult, error) {
	params := url.Values{
		"symbol": {symbol},
		"limit":  {strconv.Itoa(limit)},
	}
	if startTime > 0 && endTime > 0 {
		params.Set("startTime", strconv.FormatInt(startTime, 10))
		params.Set("endTime", strconv.FormatInt(endTime, 10))
	}

	var raw []wireAggTrade
	if err := c.get(ctx, "/aggTrades", params, &raw); err != nil {
		return model.HistoricalTradesResult{}, err
	}

	trades := make([]model.Trade, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, t.toModel())
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp > trades[j].Timestamp
	})

	return model.HistoricalTradesResult{
		Trades:  trades,
		Total:   len(trades),
		HasMore: len(trades) == limit,
		Source:  model.TradeSourceAggTrades,
	}, nil
}

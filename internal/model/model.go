// Package model defines the market data types shared by the exchange client,
// the derived-view engines and the dashboard.
//
// Prices and quantities are kept in the exchange's decimal-string form so that
// nothing is lost between the wire and the view. Numeric interpretation happens
// at the edges through ParseDecimal.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSource identifies the endpoint that produced a set of trades
type TradeSource string

const (
	TradeSourceAggTrades    TradeSource = "aggTrades"
	TradeSourceRecentTrades TradeSource = "trades"
)

// TimeRange selects the window for a historical trade query
type TimeRange string

const (
	TimeRange24h    TimeRange = "24h"
	TimeRangeCustom TimeRange = "custom"
)

// Trade represents a single executed trade. Trades are never modified after
// they are fetched; a new fetch replaces the whole collection.
type Trade struct {
	ID            string `json:"id"`
	Price         string `json:"price"`
	Quantity      string `json:"quantity"`
	QuoteQuantity string `json:"quoteQuantity"`
	Timestamp     int64  `json:"timestamp"`
	IsBuyerMaker  bool   `json:"isBuyerMaker"`
	IsBestMatch   bool   `json:"isBestMatch"`
}

// IsBuy reports whether the taker was the buyer
func (t Trade) IsBuy() bool {
	return !t.IsBuyerMaker
}

// PriceValue returns the price as a float64
func (t Trade) PriceValue() float64 {
	return ParseDecimal(t.Price)
}

// QuantityValue returns the quantity as a float64
func (t Trade) QuantityValue() float64 {
	return ParseDecimal(t.Quantity)
}

// QuoteQuantityValue returns the quote quantity as a float64
func (t Trade) QuoteQuantityValue() float64 {
	return ParseDecimal(t.QuoteQuantity)
}

// ParseDecimal converts an exchange decimal string into a float64.
// Malformed input yields 0.
func ParseDecimal(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// TickerPrice is the latest price quote for a symbol
type TickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Ticker24h holds rolling statistics over the trailing 24 hours
type Ticker24h struct {
	Symbol             string `json:"symbol"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	WeightedAvgPrice   string `json:"weightedAvgPrice"`
	PrevClosePrice     string `json:"prevClosePrice"`
	LastPrice          string `json:"lastPrice"`
	LastQty            string `json:"lastQty"`
	BidPrice           string `json:"bidPrice"`
	BidQty             string `json:"bidQty"`
	AskPrice           string `json:"askPrice"`
	AskQty             string `json:"askQty"`
	OpenPrice          string `json:"openPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
	OpenTime           int64  `json:"openTime"`
	CloseTime          int64  `json:"closeTime"`
	FirstID            int64  `json:"firstId"`
	LastID             int64  `json:"lastId"`
	Count              int64  `json:"count"`
}

// RateLimit describes one of the exchange's request limits
type RateLimit struct {
	RateLimitType string `json:"rateLimitType"`
	Interval      string `json:"interval"`
	IntervalNum   int    `json:"intervalNum"`
	Limit         int    `json:"limit"`
}

// SymbolFilter is a trading rule attached to a symbol. Only the commonly used
// fields are decoded.
type SymbolFilter struct {
	FilterType  string `json:"filterType"`
	MinPrice    string `json:"minPrice,omitempty"`
	MaxPrice    string `json:"maxPrice,omitempty"`
	TickSize    string `json:"tickSize,omitempty"`
	MinQty      string `json:"minQty,omitempty"`
	MaxQty      string `json:"maxQty,omitempty"`
	StepSize    string `json:"stepSize,omitempty"`
	MinNotional string `json:"minNotional,omitempty"`
}

// SymbolInfo is the metadata of a tradable pair
type SymbolInfo struct {
	Symbol                 string         `json:"symbol"`
	Status                 string         `json:"status"`
	BaseAsset              string         `json:"baseAsset"`
	BaseAssetPrecision     int            `json:"baseAssetPrecision"`
	QuoteAsset             string         `json:"quoteAsset"`
	QuotePrecision         int            `json:"quotePrecision"`
	OrderTypes             []string       `json:"orderTypes"`
	IsSpotTradingAllowed   bool           `json:"isSpotTradingAllowed"`
	IsMarginTradingAllowed bool           `json:"isMarginTradingAllowed"`
	Filters                []SymbolFilter `json:"filters"`
	Permissions            []string       `json:"permissions"`
}

// ExchangeInfo is the exchange's symbol catalogue
type ExchangeInfo struct {
	Timezone   string       `json:"timezone"`
	ServerTime int64        `json:"serverTime"`
	RateLimits []RateLimit  `json:"rateLimits"`
	Symbols    []SymbolInfo `json:"symbols"`
}

// MarketSnapshot is one point-in-time read of a symbol
type MarketSnapshot struct {
	Symbol       string      `json:"symbol"`
	Ticker       TickerPrice `json:"ticker"`
	Ticker24h    Ticker24h   `json:"ticker24h"`
	RecentTrades []Trade     `json:"recentTrades"`
}

// HistoricalTradesResult is the outcome of a historical trade query.
// HasMore is a heuristic: the page came back full.
type HistoricalTradesResult struct {
	Trades  []Trade     `json:"trades"`
	Total   int         `json:"total"`
	HasMore bool        `json:"hasMore"`
	Source  TradeSource `json:"source"`
}

// TradeDataConfig parameterises a historical trade query. StartTime and
// EndTime are unix milliseconds and only used with TimeRangeCustom; zero
// means unset.
type TradeDataConfig struct {
	TimeRange TimeRange `json:"timeRange"`
	StartTime int64     `json:"startTime,omitempty"`
	EndTime   int64     `json:"endTime,omitempty"`
	Limit     int       `json:"limit"`
}

// ChartDataPoint is a single trade projected for charting
type ChartDataPoint struct {
	Time      string  `json:"time"`
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	Volume    float64 `json:"volume"`
	IsBuy     bool    `json:"isBuy"`
}

// DashboardState is everything the dashboard knows about a symbol: the last
// good data plus the outcome of the most recent fetch. LastUpdated is zero
// while the most recent fetch has failed.
type DashboardState struct {
	Symbol      string                  `json:"symbol"`
	Snapshot    *MarketSnapshot         `json:"snapshot,omitempty"`
	Historical  *HistoricalTradesResult `json:"historical,omitempty"`
	Error       string                  `json:"error,omitempty"`
	LastUpdated time.Time               `json:"lastUpdated"`
}

// Trades returns the trade collection the views are derived from: the
// historical trades when present, otherwise the snapshot's recent trades.
func (s DashboardState) Trades() []Trade {
	if s.Historical != nil {
		return s.Historical.Trades
	}
	if s.Snapshot != nil {
		return s.Snapshot.RecentTrades
	}
	return nil
}

// HasData reports whether any market data has been fetched
func (s DashboardState) HasData() bool {
	return s.Snapshot != nil || s.Historical != nil
}

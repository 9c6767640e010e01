package mock

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"MarketViewer/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Fault makes an endpoint misbehave. A zero Status only applies Delay.
// An empty Message sends the status without the structured error body.
type Fault struct {
	Status  int
	Code    int
	Message string
	Delay   time.Duration
}

// ExchangeServer serves generated trades through the exchange's public REST
// endpoints and wire format
type ExchangeServer struct {
	generator *TradeDataGenerator
	clock     func() time.Time
	faults    map[string]Fault
	requests  map[string]int
	mu        sync.Mutex
}

// NewExchangeServer creates a simulated exchange backed by generator
func NewExchangeServer(generator *TradeDataGenerator) *ExchangeServer {
	return &ExchangeServer{
		generator: generator,
		clock:     time.Now,
		faults:    make(map[string]Fault),
		requests:  make(map[string]int),
	}
}

// SetClock overrides the server time used by /ticker/24hr and /exchangeInfo
func (s *ExchangeServer) SetClock(clock func() time.Time) {
	s.clock = clock
}

// SetFault installs a fault on path, e.g. "/aggTrades"
func (s *ExchangeServer) SetFault(path string, fault Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[path] = fault
}

// ClearFaults removes every installed fault
func (s *ExchangeServer) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]Fault)
}

// Requests returns how many requests path has received
func (s *ExchangeServer) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// Handler returns the HTTP handler of the simulated exchange
func (s *ExchangeServer) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.faultMiddleware())

	router.GET("/exchangeInfo", s.exchangeInfo)
	router.GET("/ticker/price", s.tickerPrice)
	router.GET("/ticker/24hr", s.ticker24hr)
	router.GET("/trades", s.recentTrades)
	router.GET("/aggTrades", s.aggTrades)

	return router
}

func (s *ExchangeServer) faultMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		s.mu.Lock()
		s.requests[path]++
		fault, ok := s.faults[path]
		s.mu.Unlock()

		if !ok {
			c.Next()
			return
		}

		if fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}

		if fault.Status != 0 {
			if fault.Message == "" {
				c.AbortWithStatus(fault.Status)
				return
			}
			c.AbortWithStatusJSON(fault.Status, gin.H{"code": fault.Code, "msg": fault.Message})
			return
		}

		c.Next()
	}
}

func invalidSymbol(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"code": -1121, "msg": "Invalid symbol."})
}

// symbolParam returns the requested symbol, or false after writing an error
func (s *ExchangeServer) symbolParam(c *gin.Context) (string, bool) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": -1102, "msg": "Mandatory parameter 'symbol' was not sent."})
		return "", false
	}
	if !s.generator.HasSymbol(symbol) {
		invalidSymbol(c)
		return "", false
	}
	return symbol, true
}

func limitParam(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"code": -1100, "msg": "Illegal characters found in parameter 'limit'."})
		return 0, false
	}
	return limit, true
}

func (s *ExchangeServer) exchangeInfo(c *gin.Context) {
	symbols := make([]model.SymbolInfo, 0)
	for _, symbol := range s.generator.Symbols() {
		base, quote := splitSymbol(symbol)
		symbols = append(symbols, model.SymbolInfo{
			Symbol:               symbol,
			Status:               "TRADING",
			BaseAsset:            base,
			BaseAssetPrecision:   8,
			QuoteAsset:           quote,
			QuotePrecision:       8,
			OrderTypes:           []string{"LIMIT", "MARKET"},
			IsSpotTradingAllowed: true,
			Permissions:          []string{"SPOT"},
		})
	}

	c.JSON(http.StatusOK, model.ExchangeInfo{
		Timezone:   "UTC",
		ServerTime: s.clock().UnixMilli(),
		RateLimits: []model.RateLimit{{RateLimitType: "REQUEST_WEIGHT", Interval: "MINUTE", IntervalNum: 1, Limit: 6000}},
		Symbols:    symbols,
	})
}

func (s *ExchangeServer) tickerPrice(c *gin.Context) {
	if c.Query("symbol") == "" {
		prices := make([]model.TickerPrice, 0)
		for _, symbol := range s.generator.Symbols() {
			prices = append(prices, s.latestPrice(symbol))
		}
		c.JSON(http.StatusOK, prices)
		return
	}

	symbol, ok := s.symbolParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.latestPrice(symbol))
}

func (s *ExchangeServer) latestPrice(symbol string) model.TickerPrice {
	trades := s.generator.Trades(symbol)
	price := "0"
	if len(trades) > 0 {
		price = trades[len(trades)-1].Price
	}
	return model.TickerPrice{Symbol: symbol, Price: price}
}

func (s *ExchangeServer) ticker24hr(c *gin.Context) {
	symbol, ok := s.symbolParam(c)
	if !ok {
		return
	}

	now := s.clock()
	openTime := now.Add(-24 * time.Hour).UnixMilli()
	stats := model.Ticker24h{
		Symbol:    symbol,
		OpenTime:  openTime,
		CloseTime: now.UnixMilli(),
	}

	var (
		high, low, open, last decimal.Decimal
		volume, quoteVolume   decimal.Decimal
		count                 int64
	)
	for _, trade := range s.generator.Trades(symbol) {
		if trade.Timestamp < openTime {
			continue
		}
		price, _ := decimal.NewFromString(trade.Price)
		qty, _ := decimal.NewFromString(trade.Quantity)
		quote, _ := decimal.NewFromString(trade.QuoteQuantity)

		if count == 0 {
			open, high, low = price, price, price
			stats.FirstID, _ = strconv.ParseInt(trade.ID, 10, 64)
		}
		if price.GreaterThan(high) {
			high = price
		}
		if price.LessThan(low) {
			low = price
		}
		last = price
		stats.LastQty = trade.Quantity
		stats.LastID, _ = strconv.ParseInt(trade.ID, 10, 64)
		volume = volume.Add(qty)
		quoteVolume = quoteVolume.Add(quote)
		count++
	}

	change := last.Sub(open)
	changePercent := decimal.Zero
	if !open.IsZero() {
		changePercent = change.Div(open).Mul(decimal.NewFromInt(100)).Round(3)
	}
	weighted := decimal.Zero
	if !volume.IsZero() {
		weighted = quoteVolume.Div(volume).Round(8)
	}

	stats.PriceChange = change.String()
	stats.PriceChangePercent = changePercent.String()
	stats.WeightedAvgPrice = weighted.String()
	stats.PrevClosePrice = open.String()
	stats.LastPrice = last.String()
	stats.BidPrice = last.String()
	stats.AskPrice = last.String()
	stats.BidQty = "0"
	stats.AskQty = "0"
	stats.OpenPrice = open.String()
	stats.HighPrice = high.String()
	stats.LowPrice = low.String()
	stats.Volume = volume.String()
	stats.QuoteVolume = quoteVolume.String()
	stats.Count = count

	c.JSON(http.StatusOK, stats)
}

type wireTrade struct {
	ID           int64  `json:"id"`
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	QuoteQty     string `json:"quoteQty"`
	Time         int64  `json:"time"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
	IsBestMatch  bool   `json:"isBestMatch"`
}

func (s *ExchangeServer) recentTrades(c *gin.Context) {
	symbol, ok := s.symbolParam(c)
	if !ok {
		return
	}
	limit, ok := limitParam(c, 500)
	if !ok {
		return
	}

	trades := s.generator.Trades(symbol)
	if len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}

	out := make([]wireTrade, 0, len(trades))
	for _, t := range trades {
		id, _ := strconv.ParseInt(t.ID, 10, 64)
		out = append(out, wireTrade{
			ID:           id,
			Price:        t.Price,
			Qty:          t.Quantity,
			QuoteQty:     t.QuoteQuantity,
			Time:         t.Timestamp,
			IsBuyerMaker: t.IsBuyerMaker,
			IsBestMatch:  t.IsBestMatch,
		})
	}
	c.JSON(http.StatusOK, out)
}

type wireAggTrade struct {
	ID        int64  `json:"a"`
	Price     string `json:"p"`
	Qty       string `json:"q"`
	FirstID   int64  `json:"f"`
	LastID    int64  `json:"l"`
	Time      int64  `json:"T"`
	Maker     bool   `json:"m"`
	BestMatch bool   `json:"M"`
}

// aggTrades returns the earliest trades of the window, or the latest trades
// when no window is given, oldest first
func (s *ExchangeServer) aggTrades(c *gin.Context) {
	symbol, ok := s.symbolParam(c)
	if !ok {
		return
	}
	limit, ok := limitParam(c, 500)
	if !ok {
		return
	}

	startTime, _ := strconv.ParseInt(c.Query("startTime"), 10, 64)
	endTime, _ := strconv.ParseInt(c.Query("endTime"), 10, 64)
	windowed := startTime > 0 && endTime > 0

	trades := s.generator.Trades(symbol)
	if windowed {
		inWindow := make([]model.Trade, 0, len(trades))
		for _, t := range trades {
			if t.Timestamp >= startTime && t.Timestamp <= endTime {
				inWindow = append(inWindow, t)
			}
		}
		trades = inWindow
		if len(trades) > limit {
			trades = trades[:limit]
		}
	} else if len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}

	out := make([]wireAggTrade, 0, len(trades))
	for _, t := range trades {
		id, _ := strconv.ParseInt(t.ID, 10, 64)
		out = append(out, wireAggTrade{
			ID:        id,
			Price:     t.Price,
			Qty:       t.Quantity,
			FirstID:   id,
			LastID:    id,
			Time:      t.Timestamp,
			Maker:     !t.IsBuyerMaker,
			BestMatch: true,
		})
	}
	c.JSON(http.StatusOK, out)
}

var knownQuotes = []string{"USDT", "BUSD", "USDC", "BTC", "ETH", "BNB"}

// splitSymbol splits a concatenated pair into base and quote assets
func splitSymbol(symbol string) (string, string) {
	for _, quote := range knownQuotes {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return strings.TrimSuffix(symbol, quote), quote
		}
	}
	return symbol, ""
}

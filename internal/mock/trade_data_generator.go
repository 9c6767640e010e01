package mock

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"MarketViewer/internal/model"

	"github.com/shopspring/decimal"
)

// GeneratorConfig holds configuration for the trade data generator
type GeneratorConfig struct {
	Symbols      []string
	BasePrices   map[string]float64
	Interval     time.Duration
	Volatility   float64
	HistoryHours int
	MaxPerMinute int
	Seed         int64
}

// DefaultGeneratorConfig returns a sensible default configuration
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbols: []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "ETHBTC"},
		BasePrices: map[string]float64{
			"BTCUSDT": 50000.0,
			"ETHUSDT": 3000.0,
			"SOLUSDT": 100.0,
			"ETHBTC":  0.06,
		},
		Interval:     2 * time.Second,
		Volatility:   0.001,
		HistoryHours: 1,
		MaxPerMinute: 10,
	}
}

// TradeDataGenerator produces random-walk trades per symbol and keeps them in
// timestamp order so they can be served like an exchange's trade history.
type TradeDataGenerator struct {
	config    GeneratorConfig
	basePrice map[string]float64
	trades    map[string][]model.Trade
	tradeID   int64
	rng       *rand.Rand
	mu        sync.RWMutex
}

// NewTradeDataGenerator creates a new trade data generator with default config
func NewTradeDataGenerator() *TradeDataGenerator {
	return NewTradeDataGeneratorWithConfig(DefaultGeneratorConfig())
}

// NewTradeDataGeneratorWithConfig creates a new trade data generator with custom config
func NewTradeDataGeneratorWithConfig(config GeneratorConfig) *TradeDataGenerator {
	basePrice := make(map[string]float64, len(config.BasePrices))
	for k, v := range config.BasePrices {
		basePrice[k] = v
	}
	if config.MaxPerMinute <= 0 {
		config.MaxPerMinute = 1
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	trades := make(map[string][]model.Trade, len(config.Symbols))
	for _, symbol := range config.Symbols {
		trades[symbol] = []model.Trade{}
	}

	return &TradeDataGenerator{
		config:    config,
		basePrice: basePrice,
		trades:    trades,
		tradeID:   1,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Start backfills history ending at now and then keeps adding trades every
// configured interval until ctx is cancelled
func (g *TradeDataGenerator) Start(ctx context.Context) {
	g.GenerateHistory(time.Now())
	go g.generateRealTimeData(ctx)
}

// GenerateHistory creates HistoryHours worth of trades ending at now
func (g *TradeDataGenerator) GenerateHistory(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	minutesToGenerate := g.config.HistoryHours * 60
	nowMs := now.UnixMilli()

	for _, symbol := range g.config.Symbols {
		price := g.basePrice[symbol]

		for i := 0; i < minutesToGenerate; i++ {
			minuteTimestamp := nowMs - int64(minutesToGenerate-i)*60*1000

			numTrades := 1 + g.rng.Intn(g.config.MaxPerMinute)
			tradeSeconds := make([]int, numTrades)
			for k := range tradeSeconds {
				tradeSeconds[k] = g.rng.Intn(60)
			}
			sort.Ints(tradeSeconds)

			for _, second := range tradeSeconds {
				trade := g.generateRandomTrade(price, minuteTimestamp+int64(second*1000))
				g.trades[symbol] = append(g.trades[symbol], trade)
				price = trade.PriceValue()
			}
		}

		g.basePrice[symbol] = price
	}
}

// Tick adds one trade per symbol at the given time
func (g *TradeDataGenerator) Tick(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, symbol := range g.config.Symbols {
		trade := g.generateRandomTrade(g.basePrice[symbol], now.UnixMilli())
		g.trades[symbol] = append(g.trades[symbol], trade)
		g.basePrice[symbol] = trade.PriceValue()
	}
}

func (g *TradeDataGenerator) generateRealTimeData(ctx context.Context) {
	ticker := time.NewTicker(g.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			g.Tick(now)
		case <-ctx.Done():
			return
		}
	}
}

// generateRandomTrade must be called with g.mu held
func (g *TradeDataGenerator) generateRandomTrade(price float64, timestamp int64) model.Trade {
	tradePrice := price + g.rng.NormFloat64()*g.config.Volatility*price
	if tradePrice <= 0 {
		tradePrice = price * 0.99
	}

	p := decimal.NewFromFloat(tradePrice).Round(8)
	q := decimal.NewFromFloat(0.001 + g.rng.Float64()*0.5).Round(5)

	trade := model.Trade{
		ID:            strconv.FormatInt(g.tradeID, 10),
		Price:         p.String(),
		Quantity:      q.String(),
		QuoteQuantity: p.Mul(q).String(),
		Timestamp:     timestamp,
		IsBuyerMaker:  g.rng.Intn(2) == 0,
		IsBestMatch:   true,
	}
	g.tradeID++
	return trade
}

// Symbols returns the configured symbols
func (g *TradeDataGenerator) Symbols() []string {
	out := make([]string, len(g.config.Symbols))
	copy(out, g.config.Symbols)
	return out
}

// HasSymbol reports whether trades are generated for symbol
func (g *TradeDataGenerator) HasSymbol(symbol string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.trades[symbol]
	return ok
}

// Trades returns a copy of all trades of symbol, oldest first
func (g *TradeDataGenerator) Trades(symbol string) []model.Trade {
	g.mu.RLock()
	defer g.mu.RUnlock()

	trades := g.trades[symbol]
	result := make([]model.Trade, len(trades))
	copy(result, trades)
	return result
}

package data

import (
	"context"
	"sort"
	"sync"

	"MarketViewer/internal/model"
)

// StorageConfig holds configuration for the state storage
type StorageConfig struct {
	MaxTradesPerSymbol int
}

// DefaultStorageConfig returns sensible default configuration
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		MaxTradesPerSymbol: 1000 * 10, // Keep at most 10k trades per collection
	}
}

// Ticket orders fetches. Tickets are issued in increasing order across all
// symbols.
type Ticket uint64

// InMemoryStateStorage keeps the dashboard state of every symbol in memory.
//
// A fetch takes a ticket before it starts and commits its result with that
// ticket when it completes. A commit is discarded when a fetch with a later
// ticket has already been committed for the same symbol, so a slow fetch can
// never overwrite the result of a newer one.
type InMemoryStateStorage struct {
	states    map[string]model.DashboardState // symbol -> state
	committed map[string]Ticket               // symbol -> last applied ticket
	seq       Ticket
	config    StorageConfig
	mu        sync.RWMutex
}

// NewInMemoryStateStorage creates a new in-memory state storage with default config
func NewInMemoryStateStorage() *InMemoryStateStorage {
	return NewInMemoryStateStorageWithConfig(DefaultStorageConfig())
}

// NewInMemoryStateStorageWithConfig creates a new in-memory state storage with custom config
func NewInMemoryStateStorageWithConfig(config StorageConfig) *InMemoryStateStorage {
	return &InMemoryStateStorage{
		states:    make(map[string]model.DashboardState),
		committed: make(map[string]Ticket),
		config:    config,
	}
}

// Begin issues the ticket for a fetch that is about to start
func (s *InMemoryStateStorage) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	return s.seq
}

// Commit applies update to the symbol's state if no later ticket has been
// committed. It reports whether the update was applied.
func (s *InMemoryStateStorage) Commit(ticket Ticket, symbol string, update func(state *model.DashboardState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket <= s.committed[symbol] {
		return false
	}

	state, exists := s.states[symbol]
	if !exists {
		state = model.DashboardState{Symbol: symbol}
	}

	update(&state)
	s.trim(&state)

	s.states[symbol] = state
	s.committed[symbol] = ticket
	return true
}

// trim keeps the newest MaxTradesPerSymbol trades of each collection by
// timestamp. Aggregated trades arrive newest first and recent trades oldest
// first, so the kept trades stay in their fetched order.
func (s *InMemoryStateStorage) trim(state *model.DashboardState) {
	limit := s.config.MaxTradesPerSymbol
	if limit <= 0 {
		return
	}

	if state.Historical != nil && len(state.Historical.Trades) > limit {
		trimmed := *state.Historical
		trimmed.Trades = keepNewest(trimmed.Trades, limit)
		state.Historical = &trimmed
	}
	if state.Snapshot != nil && len(state.Snapshot.RecentTrades) > limit {
		trimmed := *state.Snapshot
		trimmed.RecentTrades = keepNewest(trimmed.RecentTrades, limit)
		state.Snapshot = &trimmed
	}
}

func keepNewest(trades []model.Trade, limit int) []model.Trade {
	order := make([]int, len(trades))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return trades[order[a]].Timestamp > trades[order[b]].Timestamp
	})

	keep := make([]bool, len(trades))
	for _, i := range order[:limit] {
		keep[i] = true
	}

	result := make([]model.Trade, 0, limit)
	for i, trade := range trades {
		if keep[i] {
			result = append(result, trade)
		}
	}
	return result
}

// GetState returns a copy of the symbol's state
func (s *InMemoryStateStorage) GetState(ctx context.Context, symbol string) (model.DashboardState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.states[symbol]
	if !exists {
		return model.DashboardState{}, false
	}

	// Return a copy to prevent external modification
	return cloneState(state), true
}

// DeleteState removes the symbol's state. Fetches already in flight for the
// symbol are discarded when they complete.
func (s *InMemoryStateStorage) DeleteState(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, symbol)
	s.committed[symbol] = s.seq
}

// Symbols returns the symbols that have state, sorted
func (s *InMemoryStateStorage) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.states))
	for symbol := range s.states {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func cloneState(state model.DashboardState) model.DashboardState {
	if state.Snapshot != nil {
		snapshot := *state.Snapshot
		snapshot.RecentTrades = cloneTrades(snapshot.RecentTrades)
		state.Snapshot = &snapshot
	}
	if state.Historical != nil {
		historical := *state.Historical
		historical.Trades = cloneTrades(historical.Trades)
		state.Historical = &historical
	}
	return state
}

func cloneTrades(trades []model.Trade) []model.Trade {
	if trades == nil {
		return nil
	}
	result := make([]model.Trade, len(trades))
	copy(result, trades)
	return result
}

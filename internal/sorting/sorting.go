// Package sorting orders trade collections for the trades table.
package sorting

import (
	"fmt"
	"sort"
	"strings"

	"MarketViewer/internal/model"
)

// Field is a sortable trade column
type Field string

const (
	FieldTime     Field = "time"
	FieldPrice    Field = "price"
	FieldQuantity Field = "quantity"
)

// Direction is the sort order
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// State is the active sort column and order
type State struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultState sorts newest trades first
func DefaultState() State {
	return State{Field: FieldTime, Direction: Desc}
}

// Toggle selects field. Selecting the active field flips the direction,
// selecting another field starts ascending.
func (s State) Toggle(field Field) State {
	if s.Field == field {
		if s.Direction == Asc {
			return State{Field: field, Direction: Desc}
		}
		return State{Field: field, Direction: Asc}
	}
	return State{Field: field, Direction: Asc}
}

// ParseField accepts time, price and quantity (qty as an alias)
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time", "timestamp":
		return FieldTime, nil
	case "price":
		return FieldPrice, nil
	case "quantity", "qty":
		return FieldQuantity, nil
	default:
		return "", fmt.Errorf("invalid sort field '%s'. Supported values: time, price, quantity", s)
	}
}

// ParseDirection accepts asc and desc
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction '%s'. Supported values: asc, desc", s)
	}
}

// Sort returns a new slice ordered by field. The input is not modified and
// equal keys keep their input order.
func Sort(trades []model.Trade, field Field, direction Direction) []model.Trade {
	sorted := make([]model.Trade, len(trades))
	copy(sorted, trades)
	if len(sorted) < 2 {
		return sorted
	}

	keys := make([]float64, len(sorted))
	for i, t := range sorted {
		keys[i] = sortKey(t, field)
	}

	sort.Stable(&byKey{trades: sorted, keys: keys, desc: direction == Desc})
	return sorted
}

func sortKey(t model.Trade, field Field) float64 {
	switch field {
	case FieldPrice:
		return t.PriceValue()
	case FieldQuantity:
		return t.QuantityValue()
	default:
		return float64(t.Timestamp)
	}
}

// byKey sorts trades by precomputed keys so decimal strings are parsed once
type byKey struct {
	trades []model.Trade
	keys   []float64
	desc   bool
}

func (b *byKey) Len() int { return len(b.trades) }

func (b *byKey) Less(i, j int) bool {
	if b.desc {
		return b.keys[i] > b.keys[j]
	}
	return b.keys[i] < b.keys[j]
}

func (b *byKey) Swap(i, j int) {
	b.trades[i], b.trades[j] = b.trades[j], b.trades[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

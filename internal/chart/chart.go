// Package chart projects trades into chart points and computes the visible
// y-axis domain.
package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"MarketViewer/internal/model"
)

// MarginPercent is the padding added above and below an auto domain
const MarginPercent = 0.05

// TimeFormat is the label format for chart points
const TimeFormat = "15:04:05"

// Type selects the series plotted on the chart
type Type string

const (
	TypePrice    Type = "price"
	TypeVolume   Type = "volume"
	TypeQuantity Type = "quantity"
)

// ParseType accepts price, volume and quantity. Empty input means price.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "price":
		return TypePrice, nil
	case "volume":
		return TypeVolume, nil
	case "quantity", "qty":
		return TypeQuantity, nil
	default:
		return "", fmt.Errorf("invalid chart type '%s'. Supported values: price, volume, quantity", s)
	}
}

// Bound is one end of a domain override: either auto or a fixed value
type Bound struct {
	Auto  bool
	Value float64
}

func AutoBound() Bound { return Bound{Auto: true} }

func Fixed(v float64) Bound { return Bound{Value: v} }

// ParseBound accepts "auto", an empty string (auto) or a number
func ParseBound(s string) (Bound, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return AutoBound(), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Bound{}, fmt.Errorf("invalid domain bound '%s'. Use 'auto' or a number", s)
	}
	return Fixed(v), nil
}

func (b Bound) String() string {
	if b.Auto {
		return "auto"
	}
	return strconv.FormatFloat(b.Value, 'f', -1, 64)
}

// Domain returns the [min, max] range to plot series against.
//
// When both bounds are auto the series extremes are padded by MarginPercent
// of their spread, or by 1 when the spread is zero. A single auto bound is
// replaced by the raw series extreme without padding. ok is false when a
// bound is auto but the series is empty.
func Domain(series []float64, override [2]Bound) (lo, hi float64, ok bool) {
	lower, upper := override[0], override[1]

	if !lower.Auto && !upper.Auto {
		return lower.Value, upper.Value, true
	}
	if len(series) == 0 {
		return 0, 0, false
	}

	dataMin, dataMax := series[0], series[0]
	for _, v := range series[1:] {
		dataMin = math.Min(dataMin, v)
		dataMax = math.Max(dataMax, v)
	}

	if lower.Auto && upper.Auto {
		margin := (dataMax - dataMin) * MarginPercent
		if margin == 0 {
			margin = 1
		}
		return dataMin - margin, dataMax + margin, true
	}

	lo, hi = lower.Value, upper.Value
	if lower.Auto {
		lo = dataMin
	}
	if upper.Auto {
		hi = dataMax
	}
	return lo, hi, true
}

// Points projects trades into chart points in their given order, labelling
// times in the local zone
func Points(trades []model.Trade) []model.ChartDataPoint {
	return PointsIn(trades, time.Local)
}

// PointsIn is Points with an explicit zone for the time labels
func PointsIn(trades []model.Trade, loc *time.Location) []model.ChartDataPoint {
	points := make([]model.ChartDataPoint, len(trades))
	for i, t := range trades {
		points[i] = model.ChartDataPoint{
			Time:      time.UnixMilli(t.Timestamp).In(loc).Format(TimeFormat),
			Timestamp: t.Timestamp,
			Price:     t.PriceValue(),
			Quantity:  t.QuantityValue(),
			Volume:    t.QuoteQuantityValue(),
			IsBuy:     t.IsBuy(),
		}
	}
	return points
}

// Series extracts the values plotted for chartType
func Series(points []model.ChartDataPoint, chartType Type) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		switch chartType {
		case TypeVolume:
			values[i] = p.Volume
		case TypeQuantity:
			values[i] = p.Quantity
		default:
			values[i] = p.Price
		}
	}
	return values
}

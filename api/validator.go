package api

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"MarketViewer/internal/chart"
	"MarketViewer/internal/exchange"
	"MarketViewer/internal/model"
	"MarketViewer/internal/pagination"
	"MarketViewer/internal/sorting"
)

// Validator handles validation logic separate from HTTP concerns
type Validator struct {
	supportedRanges map[string]model.TimeRange
	symbolRegex     *regexp.Regexp
}

var (
	validatorInstance *Validator
	validatorOnce     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		validatorInstance = &Validator{
			supportedRanges: map[string]model.TimeRange{
				"24h":    model.TimeRange24h,
				"custom": model.TimeRangeCustom,
			},
			// Exchange symbols are concatenated base and quote assets, e.g. BTCUSDT
			symbolRegex: regexp.MustCompile(`^[A-Z0-9]{5,20}$`),
		}
	})
	return validatorInstance
}

// ValidateSymbol validates and normalizes a trading symbol
func (v *Validator) ValidateSymbol(symbol string) (string, error) {
	cleanSymbol := strings.ToUpper(v.sanitizeInput(symbol))
	if err := v.validateSymbol(cleanSymbol); err != nil {
		return "", err
	}
	return cleanSymbol, nil
}

// ValidateHistoricalRequest validates the symbol, range, window and limit of
// a historical trade query. Start and end are epoch milliseconds.
func (v *Validator) ValidateHistoricalRequest(symbol, rangeStr, startStr, endStr, limitStr string) (string, model.TradeDataConfig, error) {
	cleanSymbol, err := v.ValidateSymbol(symbol)
	if err != nil {
		return "", model.TradeDataConfig{}, err
	}

	cleanRange := strings.ToLower(v.sanitizeInput(rangeStr))
	if cleanRange == "" {
		cleanRange = DefaultTimeRange
	}
	timeRange, ok := v.supportedRanges[cleanRange]
	if !ok {
		return "", model.TradeDataConfig{}, fmt.Errorf("invalid range '%s'. Supported values: 24h, custom", cleanRange)
	}

	config := model.TradeDataConfig{TimeRange: timeRange}

	if timeRange == model.TimeRangeCustom {
		if config.StartTime, err = v.validateTimestamp("start", startStr); err != nil {
			return "", model.TradeDataConfig{}, err
		}
		if config.EndTime, err = v.validateTimestamp("end", endStr); err != nil {
			return "", model.TradeDataConfig{}, err
		}
		if config.StartTime > 0 && config.EndTime > 0 && config.StartTime >= config.EndTime {
			return "", model.TradeDataConfig{}, errors.New("start must be before end")
		}
	}

	limit, err := v.validateLimit(limitStr)
	if err != nil {
		return "", model.TradeDataConfig{}, err
	}
	config.Limit = limit

	return cleanSymbol, config, nil
}

// ValidateTradesRequest validates the symbol, sort and page parameters of a
// trades table request. toggle, when set, is applied to the sort state the
// same way a column header click is.
func (v *Validator) ValidateTradesRequest(symbol, sortStr, directionStr, toggleStr, pageStr, pageSizeStr string) (string, sorting.State, int, int, error) {
	cleanSymbol, err := v.ValidateSymbol(symbol)
	if err != nil {
		return "", sorting.State{}, 0, 0, err
	}

	sortState := sorting.DefaultState()
	if s := v.sanitizeInput(sortStr); s != "" {
		if sortState.Field, err = sorting.ParseField(s); err != nil {
			return "", sorting.State{}, 0, 0, err
		}
	}
	if d := v.sanitizeInput(directionStr); d != "" {
		if sortState.Direction, err = sorting.ParseDirection(d); err != nil {
			return "", sorting.State{}, 0, 0, err
		}
	}
	if t := v.sanitizeInput(toggleStr); t != "" {
		field, err := sorting.ParseField(t)
		if err != nil {
			return "", sorting.State{}, 0, 0, err
		}
		sortState = sortState.Toggle(field)
	}

	// Out-of-range pages are clamped by the table, only the format is checked
	page, err := v.validateInt("page", pageStr, 1)
	if err != nil {
		return "", sorting.State{}, 0, 0, err
	}

	pageSize, err := v.validatePositiveInt("pageSize", pageSizeStr, pagination.DefaultPageSize)
	if err != nil {
		return "", sorting.State{}, 0, 0, err
	}
	if !pagination.IsValidPageSize(pageSize) {
		return "", sorting.State{}, 0, 0, fmt.Errorf("invalid pageSize %d. Supported values: 10, 20, 50, 100", pageSize)
	}

	return cleanSymbol, sortState, page, pageSize, nil
}

// ValidateChartRequest validates the symbol, chart type and domain override
func (v *Validator) ValidateChartRequest(symbol, typeStr, minStr, maxStr string) (string, chart.Type, [2]chart.Bound, error) {
	var override [2]chart.Bound

	cleanSymbol, err := v.ValidateSymbol(symbol)
	if err != nil {
		return "", "", override, err
	}

	chartType, err := chart.ParseType(v.sanitizeInput(typeStr))
	if err != nil {
		return "", "", override, err
	}

	if override[0], err = chart.ParseBound(v.sanitizeInput(minStr)); err != nil {
		return "", "", override, err
	}
	if override[1], err = chart.ParseBound(v.sanitizeInput(maxStr)); err != nil {
		return "", "", override, err
	}
	if !override[0].Auto && !override[1].Auto && override[0].Value >= override[1].Value {
		return "", "", override, errors.New("min must be less than max")
	}

	return cleanSymbol, chartType, override, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func (v *Validator) sanitizeInput(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.Map(func(r rune) rune {
		if r < 32 {
			return -1
		}
		return r
	}, input)

	// Limit length to prevent DoS
	if len(input) > 100 {
		input = input[:100]
	}

	return input
}

// validateSymbol validates a trading symbol
func (v *Validator) validateSymbol(symbol string) error {
	if symbol == "" {
		return errors.New("symbol parameter is required")
	}

	if !v.symbolRegex.MatchString(symbol) {
		return errors.New("symbol must be 5-20 characters and contain only letters and numbers")
	}

	return nil
}

// validateTimestamp parses an optional epoch-millisecond parameter
func (v *Validator) validateTimestamp(name, value string) (int64, error) {
	value = v.sanitizeInput(value)
	if value == "" {
		return 0, nil
	}

	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil || ts < 0 {
		return 0, fmt.Errorf("%s must be a non-negative epoch timestamp in milliseconds", name)
	}
	return ts, nil
}

// validateLimit validates the limit parameter for historical requests
func (v *Validator) validateLimit(limitStr string) (int, error) {
	// If limit is not provided, return 0 (service default)
	limitStr = v.sanitizeInput(limitStr)
	if limitStr == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, errors.New("limit must be a valid number")
	}

	if limit < 0 || limit > exchange.MaxTradesLimit {
		return 0, fmt.Errorf("limit must be between 0 and %d (0 means default)", exchange.MaxTradesLimit)
	}

	return limit, nil
}

func (v *Validator) validateInt(name, value string, fallback int) (int, error) {
	value = v.sanitizeInput(value)
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func (v *Validator) validatePositiveInt(name, value string, fallback int) (int, error) {
	value = v.sanitizeInput(value)
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

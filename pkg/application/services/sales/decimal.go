package sales

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedNumeric is returned when a value cannot be read as a decimal
var ErrMalformedNumeric = errors.New("malformed numeric value")

// ParseDecimal converts strings, integers, floats, json.Number and decimals
// into a decimal. Floats go through their shortest text form so 12.335 stays
// exactly 12.335.
func ParseDecimal(v any) (decimal.Decimal, error) {
	switch value := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("%w: nil", ErrMalformedNumeric)
	case decimal.Decimal:
		return value, nil
	case *decimal.Decimal:
		if value == nil {
			return decimal.Zero, fmt.Errorf("%w: nil", ErrMalformedNumeric)
		}
		return *value, nil
	case decimal.NullDecimal:
		if !value.Valid {
			return decimal.Zero, fmt.Errorf("%w: null", ErrMalformedNumeric)
		}
		return value.Decimal, nil
	case string:
		return parseString(value)
	case json.Number:
		return parseString(value.String())
	case int:
		return decimal.NewFromInt(int64(value)), nil
	case int8:
		return decimal.NewFromInt(int64(value)), nil
	case int16:
		return decimal.NewFromInt(int64(value)), nil
	case int32:
		return decimal.NewFromInt(int64(value)), nil
	case int64:
		return decimal.NewFromInt(value), nil
	case uint:
		return decimal.NewFromUint64(uint64(value)), nil
	case uint8:
		return decimal.NewFromUint64(uint64(value)), nil
	case uint16:
		return decimal.NewFromUint64(uint64(value)), nil
	case uint32:
		return decimal.NewFromUint64(uint64(value)), nil
	case uint64:
		return decimal.NewFromUint64(value), nil
	case float32:
		return parseFloat(float64(value), 32)
	case float64:
		return parseFloat(value, 64)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrMalformedNumeric, v)
	}
}

func parseString(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty string", ErrMalformedNumeric)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedNumeric, s)
	}
	return d, nil
}

func parseFloat(f float64, bitSize int) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedNumeric, f)
	}
	return decimal.NewFromString(strconv.FormatFloat(f, 'f', -1, bitSize))
}

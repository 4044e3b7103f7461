package entities

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBOMLine_Validation(t *testing.T) {
	validLine, err := NewBOMLine("P1", "RM-B", decimal.NewFromInt(2), SquareMeter, "outer box")
	if err != nil {
		t.Fatalf("Expected valid BOM line creation to succeed: %v", err)
	}
	if !validLine.Quantity.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected quantity 2, got %s", validLine.Quantity)
	}
	if validLine.Key() != (BOMKey{ProductCode: "P1", MaterialCode: "RM-B"}) {
		t.Errorf("Unexpected key %v", validLine.Key())
	}

	testCases := []struct {
		name         string
		productCode  ProductCode
		materialCode MaterialCode
		quantity     decimal.Decimal
		expectErr    error
	}{
		{"empty product", "", "RM-B", decimal.NewFromInt(1), ErrEmptyCode},
		{"blank product", "  ", "RM-B", decimal.NewFromInt(1), ErrEmptyCode},
		{"empty material", "P1", "", decimal.NewFromInt(1), ErrEmptyCode},
		{"zero quantity", "P1", "RM-B", decimal.Zero, ErrNonPositiveQuantity},
		{"negative quantity", "P1", "RM-B", decimal.NewFromInt(-3), ErrNonPositiveQuantity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBOMLine(tc.productCode, tc.materialCode, tc.quantity, Count, "")
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if !errors.Is(err, tc.expectErr) {
				t.Errorf("Expected error wrapping '%v', got '%v'", tc.expectErr, err)
			}
		})
	}
}

func TestParseUnit(t *testing.T) {
	testCases := map[string]Unit{
		"Count":       Count,
		"ea":          Count,
		"":            Count,
		"kg":          Kg,
		"M":           Meter,
		"m2":          SquareMeter,
		"SquareMeter": SquareMeter,
		"m3":          CubicMeter,
		"liter":       Liter,
	}

	for input, expected := range testCases {
		unit, err := ParseUnit(input)
		if err != nil {
			t.Errorf("ParseUnit(%q) failed: %v", input, err)
			continue
		}
		if unit != expected {
			t.Errorf("ParseUnit(%q) = %s, expected %s", input, unit, expected)
		}
	}

	if _, err := ParseUnit("bushel"); err == nil {
		t.Error("Expected error for unknown unit")
	}
}

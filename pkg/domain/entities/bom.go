package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductCode represents a sellable product identifier
type ProductCode string

// Unit is the unit of measure of a BOM consumption quantity
type Unit int

const (
	Count Unit = iota
	Kg
	Meter
	SquareMeter
	CubicMeter
	Liter
)

// String method for Unit enum
func (u Unit) String() string {
	switch u {
	case Count:
		return "Count"
	case Kg:
		return "Kg"
	case Meter:
		return "Meter"
	case SquareMeter:
		return "SquareMeter"
	case CubicMeter:
		return "CubicMeter"
	case Liter:
		return "Liter"
	default:
		return "Unknown"
	}
}

// ParseUnit converts a unit label into a Unit
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "count", "ea", "pcs", "unit", "":
		return Count, nil
	case "kg":
		return Kg, nil
	case "meter", "m":
		return Meter, nil
	case "squaremeter", "m2", "sqm":
		return SquareMeter, nil
	case "cubicmeter", "m3":
		return CubicMeter, nil
	case "liter", "l":
		return Liter, nil
	default:
		return Count, fmt.Errorf("invalid unit: %s (expected: Count, Kg, Meter, SquareMeter, CubicMeter, or Liter)", s)
	}
}

// BOMKey is the composite key of a BOM line
type BOMKey struct {
	ProductCode  ProductCode
	MaterialCode MaterialCode
}

// String returns the key as "product/material"
func (k BOMKey) String() string {
	return fmt.Sprintf("%s/%s", k.ProductCode, k.MaterialCode)
}

// BOMLine represents the consumption of one raw material by one unit of a product
type BOMLine struct {
	ProductCode  ProductCode
	MaterialCode MaterialCode
	Quantity     decimal.Decimal
	Unit         Unit
	Note         string
}

// NewBOMLine creates a validated BOMLine
func NewBOMLine(productCode ProductCode, materialCode MaterialCode, quantity decimal.Decimal, unit Unit, note string) (*BOMLine, error) {
	if strings.TrimSpace(string(productCode)) == "" {
		return nil, fmt.Errorf("product code: %w", ErrEmptyCode)
	}
	if strings.TrimSpace(string(materialCode)) == "" {
		return nil, fmt.Errorf("material code: %w", ErrEmptyCode)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w, got %s", ErrNonPositiveQuantity, quantity)
	}

	return &BOMLine{
		ProductCode:  productCode,
		MaterialCode: materialCode,
		Quantity:     quantity,
		Unit:         unit,
		Note:         note,
	}, nil
}

// Key returns the composite key of the line
func (l BOMLine) Key() BOMKey {
	return BOMKey{ProductCode: l.ProductCode, MaterialCode: l.MaterialCode}
}

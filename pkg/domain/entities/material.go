package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaterialCode represents a unique raw material identifier
type MaterialCode string

// Category represents the raw material category
type Category int

const (
	CorrugatedBoard Category = iota
	Wood
	Metal
	Bracket
	Foam
	Paper
	Plastic
	Film
	OtherCategory
)

// String method for Category enum
func (c Category) String() string {
	switch c {
	case CorrugatedBoard:
		return "CorrugatedBoard"
	case Wood:
		return "Wood"
	case Metal:
		return "Metal"
	case Bracket:
		return "Bracket"
	case Foam:
		return "Foam"
	case Paper:
		return "Paper"
	case Plastic:
		return "Plastic"
	case Film:
		return "Film"
	default:
		return "Other"
	}
}

// CountsTowardWeight reports whether materials of this category add to the
// shippable product weight. Only corrugated board does.
func (c Category) CountsTowardWeight() bool {
	return c == CorrugatedBoard
}

// CountsTowardCost reports whether materials of this category add to the
// product cost. Every category does.
func (c Category) CountsTowardCost() bool {
	return true
}

// ParseCategory converts a catalog category label into a Category
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)) {
	case "corrugatedboard", "corrugated", "board":
		return CorrugatedBoard, nil
	case "wood":
		return Wood, nil
	case "metal":
		return Metal, nil
	case "bracket":
		return Bracket, nil
	case "foam":
		return Foam, nil
	case "paper":
		return Paper, nil
	case "plastic":
		return Plastic, nil
	case "film":
		return Film, nil
	case "other":
		return OtherCategory, nil
	default:
		return OtherCategory, fmt.Errorf("invalid category: %s", s)
	}
}

// WallType is the corrugated board construction of a material
type WallType int

const (
	UnknownWall WallType = iota
	SingleWall
	DoubleWall
	TripleWall
)

// String method for WallType enum
func (w WallType) String() string {
	switch w {
	case SingleWall:
		return "SingleWall"
	case DoubleWall:
		return "DoubleWall"
	case TripleWall:
		return "TripleWall"
	default:
		return "Unknown"
	}
}

// boardGrades maps board grade codes to their wall construction
var boardGrades = map[string]WallType{
	"SW":  SingleWall,
	"A":   SingleWall,
	"B":   SingleWall,
	"C":   SingleWall,
	"E":   SingleWall,
	"F":   SingleWall,
	"DW":  DoubleWall,
	"BC":  DoubleWall,
	"EB":  DoubleWall,
	"AB":  DoubleWall,
	"BE":  DoubleWall,
	"TW":  TripleWall,
	"AAA": TripleWall,
	"BAC": TripleWall,
	"EBC": TripleWall,
}

// WallTypeForGrade looks up the wall construction for a board grade code
func WallTypeForGrade(grade string) WallType {
	if wall, ok := boardGrades[strings.ToUpper(strings.TrimSpace(grade))]; ok {
		return wall
	}
	return UnknownWall
}

// RawMaterial represents a catalog entry for a purchasable raw material
type RawMaterial struct {
	Code           MaterialCode
	Name           string
	Category       Category
	Grade          string
	PerAreaMass    decimal.NullDecimal // g/m², only meaningful for CorrugatedBoard
	UnitCost       decimal.NullDecimal
	Currency       string
	EffectiveMonth Month
}

// NewRawMaterial creates a validated RawMaterial
func NewRawMaterial(
	code MaterialCode,
	name string,
	category Category,
	perAreaMass, unitCost decimal.NullDecimal,
	currency string,
) (*RawMaterial, error) {
	if strings.TrimSpace(string(code)) == "" {
		return nil, fmt.Errorf("material code: %w", ErrEmptyCode)
	}
	if perAreaMass.Valid && perAreaMass.Decimal.IsNegative() {
		return nil, fmt.Errorf("per area mass cannot be negative, got %s", perAreaMass.Decimal)
	}
	if unitCost.Valid && unitCost.Decimal.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost.Decimal)
	}

	return &RawMaterial{
		Code:        code,
		Name:        name,
		Category:    category,
		PerAreaMass: perAreaMass,
		UnitCost:    unitCost,
		Currency:    strings.ToUpper(currency),
	}, nil
}

// WallType returns the board construction of a corrugated material
func (m *RawMaterial) WallType() WallType {
	if m.Category != CorrugatedBoard {
		return UnknownWall
	}
	return WallTypeForGrade(m.Grade)
}

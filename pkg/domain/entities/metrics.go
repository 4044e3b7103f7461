package entities

import "github.com/shopspring/decimal"

// BoardUsage is the corrugated board content of one BOM line
type BoardUsage struct {
	MaterialCode MaterialCode
	WallType     WallType
	AreaM2       decimal.Decimal
	WeightKg     decimal.Decimal
}

// ProductMetrics holds the derived weight and cost of one unit of a product
type ProductMetrics struct {
	ProductCode ProductCode
	WeightKg    decimal.Decimal
	Cost        decimal.Decimal
	Currency    string
	Boards      []BoardUsage
	Generation  uint64 // cache generation the metrics were computed under
}

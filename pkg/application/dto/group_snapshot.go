package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// GroupLabel names a customer group
type GroupLabel string

const (
	// GroupA holds buyers that order through at least one sub-account
	GroupA GroupLabel = "GroupA"
	// GroupOther holds every remaining buyer
	GroupOther GroupLabel = "Other"
)

// GroupSnapshot contains the aggregated sales and material figures of one customer group
type GroupSnapshot struct {
	Label            GroupLabel
	AccountCount     int
	RecordCount      int
	TotalSales       decimal.Decimal
	TotalCost        decimal.Decimal
	TotalWeightKg    decimal.Decimal
	TotalAreaM2      decimal.Decimal
	Currency         string
	FallbackProducts []entities.ProductCode
	WallBreakdown    map[entities.WallType]WallUsage
}

// WallUsage sums board area and weight for one wall construction
type WallUsage struct {
	AreaM2   decimal.Decimal
	WeightKg decimal.Decimal
}

// NewGroupSnapshot creates an empty snapshot with zero totals
func NewGroupSnapshot(label GroupLabel, currency string) *GroupSnapshot {
	return &GroupSnapshot{
		Label:         label,
		TotalSales:    decimal.Zero,
		TotalCost:     decimal.Zero,
		TotalWeightKg: decimal.Zero,
		TotalAreaM2:   decimal.Zero,
		Currency:      currency,
	}
}

// Margin returns 1 - cost/sales, or zero when there are no sales
func (s *GroupSnapshot) Margin() decimal.Decimal {
	if !s.TotalSales.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Sub(s.TotalCost.Div(s.TotalSales))
}

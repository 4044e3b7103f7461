package costing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/log"
)

var gramsPerKg = decimal.NewFromInt(1000)

// Aggregator rolls a product snapshot up into per-unit weight and cost
type Aggregator struct {
	logger log.Logger
}

// NewAggregator creates an aggregator; a nil logger uses the global logger
func NewAggregator(logger log.Logger) *Aggregator {
	return &Aggregator{logger: log.OrDefault(logger)}
}

// Aggregate computes the metrics of one unit of the snapshot's product.
// Only corrugated board adds weight; every material adds cost. Lines with
// unknown materials or missing numeric fields contribute nothing.
func (a *Aggregator) Aggregate(snapshot *Snapshot) entities.ProductMetrics {
	metrics := entities.ProductMetrics{
		ProductCode: snapshot.ProductCode,
		WeightKg:    decimal.Zero,
		Cost:        decimal.Zero,
	}

	for _, line := range snapshot.Lines {
		logger := a.logger.WithFields(log.Fields{
			"product_code":  line.ProductCode,
			"material_code": line.MaterialCode,
		})

		material, ok := snapshot.Material(line.MaterialCode)
		if !ok {
			logger.Warn("BOM line references unknown material, skipping")
			continue
		}

		quantity := line.Quantity
		if quantity.IsNegative() {
			logger.WithField("quantity", quantity.String()).Warn("negative BOM quantity clamped to zero")
			quantity = decimal.Zero
		}

		if material.Category.CountsTowardWeight() {
			weight := a.lineWeight(logger, material, quantity)
			metrics.WeightKg = metrics.WeightKg.Add(weight)
			metrics.Boards = append(metrics.Boards, entities.BoardUsage{
				MaterialCode: material.Code,
				WallType:     material.WallType(),
				AreaM2:       quantity,
				WeightKg:     weight,
			})
		}

		if material.Category.CountsTowardCost() {
			metrics.Cost = metrics.Cost.Add(a.lineCost(logger, material, quantity))
			metrics.Currency = a.mergeCurrency(logger, metrics.Currency, material.Currency)
		}
	}

	return metrics
}

func (a *Aggregator) lineWeight(logger log.Logger, material entities.RawMaterial, quantity decimal.Decimal) decimal.Decimal {
	if !material.PerAreaMass.Valid {
		logger.Warn("corrugated material has no per area mass, weight contribution is zero")
		return decimal.Zero
	}
	mass := material.PerAreaMass.Decimal
	if mass.IsNegative() {
		logger.WithField("per_area_mass", mass.String()).Warn("negative per area mass clamped to zero")
		return decimal.Zero
	}
	return mass.Mul(quantity).Div(gramsPerKg)
}

func (a *Aggregator) lineCost(logger log.Logger, material entities.RawMaterial, quantity decimal.Decimal) decimal.Decimal {
	if !material.UnitCost.Valid {
		logger.Warn("material has no unit cost, cost contribution is zero")
		return decimal.Zero
	}
	cost := material.UnitCost.Decimal
	if cost.IsNegative() {
		logger.WithField("unit_cost", cost.String()).Warn("negative unit cost clamped to zero")
		return decimal.Zero
	}
	return cost.Mul(quantity)
}

func (a *Aggregator) mergeCurrency(logger log.Logger, current, next string) string {
	switch {
	case next == "":
		return current
	case current == "":
		return next
	case current != next:
		logger.WithFields(log.Fields{"currency": current, "material_currency": next}).
			Warn("BOM mixes currencies, keeping the first one")
	}
	return current
}

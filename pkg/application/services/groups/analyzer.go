package groups

//go:generate mockgen -source=analyzer.go -destination=mocks/mock_costable.go -package=mocks

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/application/services/sales"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/log"
)

// DefaultFallbackCostRatio is the share of in-group sales used as cost when a
// product has no BOM cost
var DefaultFallbackCostRatio = decimal.RequireFromString("0.65")

// Costable provides per-unit weight and cost of a product
type Costable interface {
	WeightOf(productCode entities.ProductCode) (decimal.Decimal, error)
	CostOf(productCode entities.ProductCode) (decimal.Decimal, error)
}

// BoardProfiler provides the corrugated board content of one unit of a product
type BoardProfiler interface {
	BoardUsageOf(productCode entities.ProductCode) ([]entities.BoardUsage, error)
}

// Options controls optional parts of the group analysis
type Options struct {
	BoardBreakdown bool
}

// Analyzer segments buyers into customer groups and aggregates their sales,
// material cost and weight
type Analyzer struct {
	costs         Costable
	boards        BoardProfiler
	calculator    *sales.Calculator
	fallbackRatio decimal.Decimal
	logger        log.Logger
}

// NewAnalyzer creates a group analyzer. boards may be nil, in which case no
// area figures are reported.
func NewAnalyzer(costs Costable, boards BoardProfiler, calculator *sales.Calculator, fallbackRatio decimal.Decimal, logger log.Logger) *Analyzer {
	if calculator == nil {
		calculator = sales.NewCalculator(sales.WithLogger(logger))
	}
	if fallbackRatio.IsNegative() {
		fallbackRatio = DefaultFallbackCostRatio
	}
	return &Analyzer{
		costs:         costs,
		boards:        boards,
		calculator:    calculator,
		fallbackRatio: fallbackRatio,
		logger:        log.OrDefault(logger),
	}
}

type productTotals struct {
	quantity decimal.Decimal
	sales    decimal.Decimal
}

// Analyze returns a snapshot for both customer groups, even when a group has
// no records
func (a *Analyzer) Analyze(records []entities.SaleRecord, opts Options) map[dto.GroupLabel]*dto.GroupSnapshot {
	partition := PartitionAccounts(records)

	byGroup := map[dto.GroupLabel][]entities.SaleRecord{
		dto.GroupA:     nil,
		dto.GroupOther: nil,
	}
	for _, record := range records {
		label := partition.LabelOf(record.Buyer)
		byGroup[label] = append(byGroup[label], record)
	}

	result := make(map[dto.GroupLabel]*dto.GroupSnapshot, len(byGroup))
	for label, groupRecords := range byGroup {
		snapshot := a.analyzeGroup(label, groupRecords, opts)
		snapshot.AccountCount = partition.Count(label)
		result[label] = snapshot
	}
	return result
}

func (a *Analyzer) analyzeGroup(label dto.GroupLabel, records []entities.SaleRecord, opts Options) *dto.GroupSnapshot {
	snapshot := dto.NewGroupSnapshot(label, a.currencyOf(label, records))
	snapshot.RecordCount = len(records)
	if opts.BoardBreakdown {
		snapshot.WallBreakdown = make(map[entities.WallType]dto.WallUsage)
	}

	products := make(map[entities.ProductCode]*productTotals)
	for _, record := range records {
		amount := a.calculator.RecordAmount(record)
		snapshot.TotalSales = snapshot.TotalSales.Add(amount)

		totals, ok := products[record.ProductCode]
		if !ok {
			totals = &productTotals{quantity: decimal.Zero, sales: decimal.Zero}
			products[record.ProductCode] = totals
		}
		totals.quantity = totals.quantity.Add(record.Quantity)
		totals.sales = totals.sales.Add(amount)
	}

	codes := make([]entities.ProductCode, 0, len(products))
	for code := range products {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	for _, code := range codes {
		totals := products[code]
		logger := a.logger.WithFields(log.Fields{"group": label, "product_code": code})

		weight, err := a.costs.WeightOf(code)
		if err != nil {
			logger.WithError(err).Warn("product weight unavailable, counting zero")
			weight = decimal.Zero
		}
		snapshot.TotalWeightKg = snapshot.TotalWeightKg.Add(weight.Mul(totals.quantity))

		cost, err := a.costs.CostOf(code)
		switch {
		case err != nil:
			logger.WithError(err).Warn("product cost unavailable, using fallback ratio")
			fallthrough
		case !cost.IsPositive():
			snapshot.TotalCost = snapshot.TotalCost.Add(a.fallbackRatio.Mul(totals.sales))
			snapshot.FallbackProducts = append(snapshot.FallbackProducts, code)
		default:
			snapshot.TotalCost = snapshot.TotalCost.Add(cost.Mul(totals.quantity))
		}

		a.addBoards(logger, snapshot, code, totals.quantity)
	}

	snapshot.TotalCost = a.calculator.Round(snapshot.TotalCost)
	return snapshot
}

func (a *Analyzer) addBoards(logger log.Logger, snapshot *dto.GroupSnapshot, code entities.ProductCode, quantity decimal.Decimal) {
	if a.boards == nil {
		return
	}
	usages, err := a.boards.BoardUsageOf(code)
	if err != nil {
		logger.WithError(err).Warn("board usage unavailable, counting zero area")
		return
	}
	for _, usage := range usages {
		area := usage.AreaM2.Mul(quantity)
		snapshot.TotalAreaM2 = snapshot.TotalAreaM2.Add(area)

		if snapshot.WallBreakdown != nil {
			wall := snapshot.WallBreakdown[usage.WallType]
			wall.AreaM2 = wall.AreaM2.Add(area)
			wall.WeightKg = wall.WeightKg.Add(usage.WeightKg.Mul(quantity))
			snapshot.WallBreakdown[usage.WallType] = wall
		}
	}
}

// currencyOf returns the first currency seen in records
func (a *Analyzer) currencyOf(label dto.GroupLabel, records []entities.SaleRecord) string {
	currency := ""
	for _, record := range records {
		switch {
		case record.Currency == "":
		case currency == "":
			currency = record.Currency
		case record.Currency != currency:
			a.logger.WithFields(log.Fields{
				"group":    label,
				"currency": currency,
				"other":    record.Currency,
			}).Warn("mixed currencies in group, keeping the first")
			return currency
		}
	}
	return currency
}

package cohort

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/application/services/sales"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/log"
)

// RetentionPlaces is the precision of retention ratios
const RetentionPlaces int32 = 4

// Engine buckets buyers by first purchase month and tracks their activity
// over the following months
type Engine struct {
	calculator *sales.Calculator
	logger     log.Logger
}

// NewEngine creates a cohort engine
func NewEngine(calculator *sales.Calculator, logger log.Logger) *Engine {
	if calculator == nil {
		calculator = sales.NewCalculator(sales.WithLogger(logger))
	}
	return &Engine{calculator: calculator, logger: log.OrDefault(logger)}
}

type datedSale struct {
	buyer  entities.AccountID
	month  entities.Month
	amount decimal.Decimal
}

type bucketKey struct {
	cohort entities.Month
	offset int
}

type bucket struct {
	accounts map[entities.AccountID]struct{}
	orders   int
	total    decimal.Decimal
}

// Analyze runs a cohort analysis over records whose month lies within
// [start, end]. Either bound may be nil. Records with an empty buyer or an
// unparsable period are excluded.
func (e *Engine) Analyze(records []entities.SaleRecord, start, end *time.Time) *dto.CohortResult {
	result := dto.NewCohortResult()

	dated := e.filter(result, records, start, end)
	if len(dated) == 0 {
		result.Empty = true
		result.Message = dto.NoDataMessage
		return result
	}

	cohorts := make(map[entities.AccountID]entities.Month)
	for _, sale := range dated {
		if first, ok := cohorts[sale.buyer]; !ok || sale.month.Before(first) {
			cohorts[sale.buyer] = sale.month
		}
	}
	for buyer, cohort := range cohorts {
		result.AssignCohort(buyer, cohort)
	}

	buckets := make(map[bucketKey]*bucket)
	for _, sale := range dated {
		cohort := cohorts[sale.buyer]
		key := bucketKey{cohort: cohort, offset: sale.month.MonthsSince(cohort)}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{accounts: make(map[entities.AccountID]struct{}), total: decimal.Zero}
			buckets[key] = b
		}
		b.accounts[sale.buyer] = struct{}{}
		b.orders++
		b.total = b.total.Add(sale.amount)
	}

	e.pivot(result, buckets)
	return result
}

func (e *Engine) filter(result *dto.CohortResult, records []entities.SaleRecord, start, end *time.Time) []datedSale {
	var from, to entities.Month
	if start != nil {
		from = entities.MonthOf(*start)
	}
	if end != nil {
		to = entities.MonthOf(*end)
	}

	dated := make([]datedSale, 0, len(records))
	for _, record := range records {
		buyer := entities.AccountID(strings.TrimSpace(string(record.Buyer)))
		if buyer == "" {
			e.logger.WithField("period", record.Period).Warn("sale record without buyer excluded from cohorts")
			result.Excluded++
			continue
		}

		month, err := entities.ParseMonth(record.Period)
		if err != nil {
			e.logger.WithError(err).WithFields(log.Fields{
				"buyer":  buyer,
				"period": record.Period,
			}).Warn("sale record with unparsable period excluded from cohorts")
			result.Excluded++
			continue
		}

		if start != nil && month.Before(from) {
			continue
		}
		if end != nil && month.After(to) {
			continue
		}

		dated = append(dated, datedSale{
			buyer:  buyer,
			month:  month,
			amount: e.calculator.RecordAmount(record),
		})
	}
	return dated
}

func (e *Engine) pivot(result *dto.CohortResult, buckets map[bucketKey]*bucket) {
	keys := make([]bucketKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cohort != keys[j].cohort {
			return keys[i].cohort.Before(keys[j].cohort)
		}
		return keys[i].offset < keys[j].offset
	})

	var cohorts []entities.Month
	maxOffset := 0
	for _, key := range keys {
		b := buckets[key]
		if key.offset == 0 {
			cohorts = append(cohorts, key.cohort)
		}
		maxOffset = max(maxOffset, key.offset)

		aov := e.calculator.Round(b.total.Div(decimal.NewFromInt(int64(b.orders))))
		result.Buckets = append(result.Buckets, entities.CohortBucket{
			CohortMonth:       key.cohort,
			MonthOffset:       key.offset,
			CustomerCount:     len(b.accounts),
			OrderCount:        b.orders,
			TotalSales:        b.total,
			AverageOrderValue: aov,
		})

		result.Accounts.Set(key.cohort, key.offset, decimal.NewFromInt(int64(len(b.accounts))))
		result.Sales.Set(key.cohort, key.offset, b.total)
		result.AOV.Set(key.cohort, key.offset, aov)

		base := buckets[bucketKey{cohort: key.cohort, offset: 0}]
		if key.offset == 0 {
			result.Retention.Set(key.cohort, 0, decimal.NewFromInt(1))
			continue
		}
		retention := decimal.NewFromInt(int64(len(b.accounts))).
			DivRound(decimal.NewFromInt(int64(len(base.accounts))), RetentionPlaces)
		result.Retention.Set(key.cohort, key.offset, retention)
	}

	for _, table := range []*dto.CohortTable{&result.Accounts, &result.Sales, &result.AOV, &result.Retention} {
		table.SetAxes(cohorts, maxOffset)
	}
}

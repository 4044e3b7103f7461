package sales

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/config"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/log"
)

// RoundingMode selects how amounts are rounded to the configured places
type RoundingMode int

const (
	// HalfUp rounds ties away from zero. It is the default, so that
	// 3 × 12.335 rounds to 37.01; set half_even for banker's rounding.
	HalfUp RoundingMode = iota
	// HalfEven rounds ties to the nearest even digit
	HalfEven
)

// String method for RoundingMode enum
func (m RoundingMode) String() string {
	switch m {
	case HalfEven:
		return config.RoundingHalfEven
	default:
		return config.RoundingHalfUp
	}
}

// ParseRoundingMode converts a configuration value into a RoundingMode
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case config.RoundingHalfUp, "":
		return HalfUp, nil
	case config.RoundingHalfEven:
		return HalfEven, nil
	default:
		return HalfUp, fmt.Errorf("invalid rounding mode: %s (expected: %s, %s)", s, config.RoundingHalfUp, config.RoundingHalfEven)
	}
}

// Calculator performs fixed-point sales arithmetic
type Calculator struct {
	places          int32
	mode            RoundingMode
	tolerance       decimal.Decimal
	defaultCurrency string
	chunkSize       int
	workers         int
	logger          log.Logger
}

// Option configures a Calculator
type Option func(*Calculator)

// WithPlaces sets the number of decimal places amounts are rounded to
func WithPlaces(places int32) Option {
	return func(c *Calculator) { c.places = places }
}

// WithRoundingMode sets the rounding mode
func WithRoundingMode(mode RoundingMode) Option {
	return func(c *Calculator) { c.mode = mode }
}

// WithTolerance sets how far a stored amount may drift from quantity × unit price
func WithTolerance(tolerance decimal.Decimal) Option {
	return func(c *Calculator) { c.tolerance = tolerance.Abs() }
}

// WithDefaultCurrency sets the currency assigned to records without one
func WithDefaultCurrency(currency string) Option {
	return func(c *Calculator) { c.defaultCurrency = strings.ToUpper(strings.TrimSpace(currency)) }
}

// WithBatching sets the chunk size and worker count of batched normalization
func WithBatching(chunkSize, workers int) Option {
	return func(c *Calculator) {
		c.chunkSize = chunkSize
		c.workers = workers
	}
}

// WithLogger sets the logger used for recovered input errors
func WithLogger(logger log.Logger) Option {
	return func(c *Calculator) { c.logger = log.OrDefault(logger) }
}

// NewCalculator creates a calculator rounding to 2 places half-up with a 0.01 tolerance
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		places:          2,
		mode:            HalfUp,
		tolerance:       decimal.New(1, -2),
		defaultCurrency: "USD",
		chunkSize:       500,
		workers:         4,
		logger:          log.L,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewCalculatorFromConfig creates a calculator from the sales configuration
func NewCalculatorFromConfig(cfg config.Sales, logger log.Logger) (*Calculator, error) {
	mode, err := ParseRoundingMode(cfg.RoundingMode)
	if err != nil {
		return nil, err
	}
	return NewCalculator(
		WithPlaces(cfg.AmountPlaces),
		WithRoundingMode(mode),
		WithTolerance(cfg.AmountTolerance),
		WithDefaultCurrency(cfg.DefaultCurrency),
		WithBatching(cfg.ChunkSize, cfg.Workers),
		WithLogger(logger),
	), nil
}

// Round rounds d to the configured places with the configured mode
func (c *Calculator) Round(d decimal.Decimal) decimal.Decimal {
	if c.mode == HalfEven {
		return d.RoundBank(c.places)
	}
	return d.Round(c.places)
}

// LineAmount returns quantity × unit price, rounded. Malformed input yields
// zero and a warning.
func (c *Calculator) LineAmount(quantity, unitPrice any) decimal.Decimal {
	q, err := ParseDecimal(quantity)
	if err != nil {
		c.logger.WithError(err).WithField("quantity", quantity).Warn("invalid quantity, line amount is zero")
		return decimal.Zero
	}
	p, err := ParseDecimal(unitPrice)
	if err != nil {
		c.logger.WithError(err).WithField("unit_price", unitPrice).Warn("invalid unit price, line amount is zero")
		return decimal.Zero
	}
	return c.Round(q.Mul(p))
}

// ProfitMargin returns 1 - cost/sale, or zero when sale is not positive
func (c *Calculator) ProfitMargin(cost, sale decimal.Decimal) decimal.Decimal {
	if !sale.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Sub(cost.Div(sale))
}

// CostRatio returns cost/sale, or zero when sale is not positive
func (c *Calculator) CostRatio(cost, sale decimal.Decimal) decimal.Decimal {
	if !sale.IsPositive() {
		return decimal.Zero
	}
	return cost.Div(sale)
}

// RecordAmount returns the sale amount of a record. A stored amount is used
// when it matches quantity × unit price within tolerance; otherwise the
// derived amount wins.
func (c *Calculator) RecordAmount(record entities.SaleRecord) decimal.Decimal {
	derived := c.Round(record.DerivedAmount())
	if !record.Amount.Valid {
		return derived
	}

	stored := c.Round(record.Amount.Decimal)
	if stored.Sub(derived).Abs().GreaterThan(c.tolerance) {
		c.logger.WithFields(log.Fields{
			"buyer":        record.Buyer,
			"period":       record.Period,
			"product_code": record.ProductCode,
			"stored":       stored.String(),
			"derived":      derived.String(),
		}).Warn("stored sale amount disagrees with quantity x unit price, using derived amount")
		return derived
	}
	return stored
}

// Total sums the amounts of records
func (c *Calculator) Total(records []entities.SaleRecord) decimal.Decimal {
	total := decimal.Zero
	for _, record := range records {
		total = total.Add(c.RecordAmount(record))
	}
	return total
}

// Places returns the number of decimal places amounts are rounded to
func (c *Calculator) Places() int32 {
	return c.places
}

// Logger returns the calculator's logger
func (c *Calculator) Logger() log.Logger {
	return c.logger
}

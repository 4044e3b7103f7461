package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountID identifies a primary customer account
type AccountID string

// SaleRecord represents one imported sales line
type SaleRecord struct {
	Buyer       AccountID
	SubAccount  string
	Rep         string
	Period      string // month-year as imported
	ProductCode ProductCode
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Currency    string
	Amount      decimal.NullDecimal // stored sale amount, derived when absent
}

// HasSubAccount reports whether the record names a sub-account
func (r SaleRecord) HasSubAccount() bool {
	return strings.TrimSpace(r.SubAccount) != ""
}

// DerivedAmount returns quantity × unit price, unrounded
func (r SaleRecord) DerivedAmount() decimal.Decimal {
	return r.Quantity.Mul(r.UnitPrice)
}

// CohortBucket holds the metrics of one (cohort month, month offset) cell
type CohortBucket struct {
	CohortMonth       Month
	MonthOffset       int
	CustomerCount     int
	OrderCount        int
	TotalSales        decimal.Decimal
	AverageOrderValue decimal.Decimal
}

package dto

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// NoDataMessage is reported when a cohort analysis has nothing to work with
const NoDataMessage = "no data"

// CohortTable is a cohort × month-offset pivot. Cells without data are invalid.
type CohortTable struct {
	Cohorts []entities.Month
	Offsets []int
	Cells   map[entities.Month]map[int]decimal.NullDecimal
}

// NewCohortTable creates an empty table
func NewCohortTable() CohortTable {
	return CohortTable{Cells: make(map[entities.Month]map[int]decimal.NullDecimal)}
}

// Set stores a cell value
func (t *CohortTable) Set(cohort entities.Month, offset int, value decimal.Decimal) {
	row, ok := t.Cells[cohort]
	if !ok {
		row = make(map[int]decimal.NullDecimal)
		t.Cells[cohort] = row
	}
	row[offset] = decimal.NewNullDecimal(value)
}

// Value returns the cell for (cohort, offset); invalid when the cell has no data
func (t CohortTable) Value(cohort entities.Month, offset int) decimal.NullDecimal {
	return t.Cells[cohort][offset]
}

// Rows returns the number of cohorts in the table
func (t CohortTable) Rows() int {
	return len(t.Cohorts)
}

// SetAxes records sorted cohort and offset axes
func (t *CohortTable) SetAxes(cohorts []entities.Month, maxOffset int) {
	t.Cohorts = append([]entities.Month(nil), cohorts...)
	sort.Slice(t.Cohorts, func(i, j int) bool { return t.Cohorts[i].Before(t.Cohorts[j]) })
	t.Offsets = make([]int, 0, maxOffset+1)
	for offset := 0; offset <= maxOffset; offset++ {
		t.Offsets = append(t.Offsets, offset)
	}
}

// CohortResult contains the output of a cohort analysis run
type CohortResult struct {
	Empty     bool
	Message   string
	Buckets   []entities.CohortBucket
	Accounts  CohortTable
	Sales     CohortTable
	AOV       CohortTable
	Retention CohortTable
	Excluded  int

	cohorts map[entities.AccountID]entities.Month
}

// NewCohortResult creates a result with empty tables
func NewCohortResult() *CohortResult {
	return &CohortResult{
		Accounts:  NewCohortTable(),
		Sales:     NewCohortTable(),
		AOV:       NewCohortTable(),
		Retention: NewCohortTable(),
		cohorts:   make(map[entities.AccountID]entities.Month),
	}
}

// AssignCohort records the cohort month of an account
func (r *CohortResult) AssignCohort(account entities.AccountID, cohort entities.Month) {
	r.cohorts[account] = cohort
}

// CohortOf returns the cohort month of an account
func (r *CohortResult) CohortOf(account entities.AccountID) (entities.Month, bool) {
	cohort, ok := r.cohorts[account]
	return cohort, ok
}

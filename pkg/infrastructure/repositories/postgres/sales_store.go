package postgres

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
)

// SalesStore persists the sales history in PostgreSQL
type SalesStore struct {
	db DB
}

// NewSalesStore creates a sales store
func NewSalesStore(db DB) *SalesStore {
	return &SalesStore{db: db}
}

// Verify interface compliance
var _ repositories.SalesRepository = (*SalesStore)(nil)

func (s *SalesStore) GetSales() ([]entities.SaleRecord, error) {
	query, args, err := selectSalesQuery().ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build sales query")
	}

	rows, err := s.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sales")
	}
	defer rows.Close()

	var records []entities.SaleRecord
	for rows.Next() {
		var (
			buyer, product      string
			quantity, unitPrice decimal.Decimal
			record              entities.SaleRecord
		)
		err := rows.Scan(&buyer, &record.SubAccount, &record.Rep, &record.Period, &product,
			&quantity, &unitPrice, &record.Currency, &record.Amount)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan sale record")
		}
		record.Buyer = entities.AccountID(buyer)
		record.ProductCode = entities.ProductCode(product)
		record.Quantity = quantity
		record.UnitPrice = unitPrice
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate sales")
	}
	return records, nil
}

func (s *SalesStore) LoadSales(records []entities.SaleRecord) error {
	for start := 0; start < len(records); start += insertBatch {
		end := min(start+insertBatch, len(records))
		query, args, err := insertSalesQuery(records[start:end]).ToSql()
		if err != nil {
			return errors.Wrap(err, "failed to build sales insert")
		}
		if _, err := s.db.ExecContext(context.Background(), query, args...); err != nil {
			return errors.Wrapf(err, "failed to insert sales rows %d-%d", start, end)
		}
	}
	return nil
}

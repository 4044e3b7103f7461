package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
	"github.com/vsinha/bomcost/pkg/log"
)

// BOMStore persists BOM lines in PostgreSQL
type BOMStore struct {
	db          DB
	invalidator repositories.Invalidator
	logger      log.Logger
}

// NewBOMStore creates a BOM store that notifies invalidator after every write
func NewBOMStore(db DB, invalidator repositories.Invalidator, logger log.Logger) *BOMStore {
	if invalidator == nil {
		invalidator = repositories.NoopInvalidator{}
	}
	return &BOMStore{db: db, invalidator: invalidator, logger: log.OrDefault(logger)}
}

// Verify interface compliance
var _ repositories.BOMRepository = (*BOMStore)(nil)

func (s *BOMStore) GetBOMLines(productCode entities.ProductCode) ([]*entities.BOMLine, error) {
	return s.query(&productCode)
}

func (s *BOMStore) GetAllBOMLines() ([]*entities.BOMLine, error) {
	return s.query(nil)
}

func (s *BOMStore) LoadBOMLines(lines []*entities.BOMLine) error {
	if len(lines) == 0 {
		return nil
	}
	return s.upsert(upsertBOMLineBatches(lines))
}

func (s *BOMStore) SaveBOMLine(line *entities.BOMLine) error {
	if err := validate(line); err != nil {
		return err
	}
	return s.upsert([]squirrel.InsertBuilder{upsertBOMLinesQuery([]*entities.BOMLine{line})})
}

// UpdateBOMLine replaces the line under previous inside one transaction
func (s *BOMStore) UpdateBOMLine(previous entities.BOMKey, line *entities.BOMLine) error {
	if err := validate(line); err != nil {
		return err
	}

	deleteSQL, deleteArgs, err := deleteBOMLineQuery(previous).ToSql()
	if err != nil {
		return errors.Wrap(err, "failed to build delete query")
	}
	upsertSQL, upsertArgs, err := upsertBOMLinesQuery([]*entities.BOMLine{line}).ToSql()
	if err != nil {
		return errors.Wrap(err, "failed to build upsert query")
	}

	ctx := context.Background()
	err = RunInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, deleteSQL, deleteArgs...)
		if err != nil {
			return errors.Wrapf(err, "failed to delete BOM line %s", previous)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return fmt.Errorf("%w: %s", entities.ErrBOMLineNotFound, previous)
		}
		if _, err := tx.ExecContext(ctx, upsertSQL, upsertArgs...); err != nil {
			return errors.Wrapf(err, "failed to save BOM line %s", line.Key())
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidator.InvalidateAll()
	return nil
}

func (s *BOMStore) DeleteBOMLine(key entities.BOMKey) error {
	query, args, err := deleteBOMLineQuery(key).ToSql()
	if err != nil {
		return errors.Wrap(err, "failed to build delete query")
	}
	result, err := s.db.ExecContext(context.Background(), query, args...)
	if err != nil {
		return errors.Wrapf(err, "failed to delete BOM line %s", key)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", entities.ErrBOMLineNotFound, key)
	}
	s.invalidator.InvalidateAll()
	return nil
}

func (s *BOMStore) upsert(queries []squirrel.InsertBuilder) error {
	ctx := context.Background()
	err := RunInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for _, q := range queries {
			query, args, err := q.ToSql()
			if err != nil {
				return errors.Wrap(err, "failed to build BOM upsert")
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return errors.Wrap(err, "failed to upsert BOM lines")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidator.InvalidateAll()
	return nil
}

func (s *BOMStore) query(productCode *entities.ProductCode) ([]*entities.BOMLine, error) {
	query, args, err := selectBOMLinesQuery(productCode).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build BOM query")
	}

	rows, err := s.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query BOM lines")
	}
	defer rows.Close()

	lines := []*entities.BOMLine{}
	for rows.Next() {
		var (
			product, material, unit, note string
			quantity                      decimal.Decimal
		)
		if err := rows.Scan(&product, &material, &quantity, &unit, &note); err != nil {
			return nil, errors.Wrap(err, "failed to scan BOM line")
		}
		parsedUnit, err := entities.ParseUnit(unit)
		if err != nil {
			s.logger.WithError(err).WithField("product_code", product).Warn("unknown stored unit, using Count")
		}
		lines = append(lines, &entities.BOMLine{
			ProductCode:  entities.ProductCode(product),
			MaterialCode: entities.MaterialCode(material),
			Quantity:     quantity,
			Unit:         parsedUnit,
			Note:         note,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate BOM lines")
	}
	return lines, nil
}

func validate(line *entities.BOMLine) error {
	if line == nil {
		return fmt.Errorf("bom line cannot be nil")
	}
	_, err := entities.NewBOMLine(line.ProductCode, line.MaterialCode, line.Quantity, line.Unit, line.Note)
	return err
}

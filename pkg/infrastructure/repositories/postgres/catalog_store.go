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

// CatalogStore persists raw materials in PostgreSQL
type CatalogStore struct {
	db          DB
	invalidator repositories.Invalidator
	logger      log.Logger
}

// NewCatalogStore creates a catalog store that notifies invalidator after every write
func NewCatalogStore(db DB, invalidator repositories.Invalidator, logger log.Logger) *CatalogStore {
	if invalidator == nil {
		invalidator = repositories.NoopInvalidator{}
	}
	return &CatalogStore{db: db, invalidator: invalidator, logger: log.OrDefault(logger)}
}

// Verify interface compliance
var _ repositories.CatalogRepository = (*CatalogStore)(nil)

func (s *CatalogStore) GetMaterial(code entities.MaterialCode) (*entities.RawMaterial, error) {
	query, args, err := selectMaterialQuery(code).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build material query")
	}

	material, err := s.scanMaterial(s.db.QueryRowContext(context.Background(), query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, code)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get material %s", code)
	}
	return material, nil
}

func (s *CatalogStore) GetAllMaterials() ([]*entities.RawMaterial, error) {
	query, args, err := selectMaterialsQuery().ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build materials query")
	}

	rows, err := s.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query materials")
	}
	defer rows.Close()

	var materials []*entities.RawMaterial
	for rows.Next() {
		material, err := s.scanMaterial(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan material")
		}
		materials = append(materials, material)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate materials")
	}
	return materials, nil
}

func (s *CatalogStore) LoadMaterials(materials []*entities.RawMaterial) error {
	if len(materials) == 0 {
		return nil
	}
	return s.upsert(upsertMaterialBatches(materials))
}

func (s *CatalogStore) SaveMaterial(material *entities.RawMaterial) error {
	if material == nil || material.Code == "" {
		return fmt.Errorf("material code: %w", entities.ErrEmptyCode)
	}
	return s.upsert([]squirrel.InsertBuilder{upsertMaterialsQuery([]*entities.RawMaterial{material})})
}

func (s *CatalogStore) DeleteMaterial(code entities.MaterialCode) error {
	query, args, err := deleteMaterialQuery(code).ToSql()
	if err != nil {
		return errors.Wrap(err, "failed to build delete query")
	}
	result, err := s.db.ExecContext(context.Background(), query, args...)
	if err != nil {
		return errors.Wrapf(err, "failed to delete material %s", code)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", entities.ErrMaterialNotFound, code)
	}
	s.invalidator.InvalidateAll()
	return nil
}

func (s *CatalogStore) upsert(queries []squirrel.InsertBuilder) error {
	ctx := context.Background()
	err := RunInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for _, q := range queries {
			query, args, err := q.ToSql()
			if err != nil {
				return errors.Wrap(err, "failed to build materials upsert")
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return errors.Wrap(err, "failed to upsert materials")
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

type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *CatalogStore) scanMaterial(row scanner) (*entities.RawMaterial, error) {
	var (
		code, category string
		effective      sql.NullString
		mass, cost     decimal.NullDecimal
		material       entities.RawMaterial
	)
	if err := row.Scan(&code, &material.Name, &category, &material.Grade, &mass, &cost, &material.Currency, &effective); err != nil {
		return nil, err
	}

	material.Code = entities.MaterialCode(code)
	material.PerAreaMass = mass
	material.UnitCost = cost

	logger := s.logger.WithField("material_code", code)
	parsed, err := entities.ParseCategory(category)
	if err != nil {
		logger.WithError(err).Warn("unknown stored category, using Other")
	}
	material.Category = parsed

	if effective.Valid && effective.String != "" {
		month, err := entities.ParseMonth(effective.String)
		if err != nil {
			logger.WithError(err).Warn("invalid stored effective month ignored")
		}
		material.EffectiveMonth = month
	}
	return &material, nil
}

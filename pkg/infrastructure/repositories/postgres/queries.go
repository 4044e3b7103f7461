package postgres

import (
	"github.com/Masterminds/squirrel"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// insertBatch bounds the number of rows per INSERT to stay under the
// PostgreSQL bind parameter limit
const insertBatch = 1000

var (
	materialColumns = []string{"code", "name", "category", "grade", "per_area_mass", "unit_cost", "currency", "effective_month"}
	bomColumns      = []string{"product_code", "material_code", "quantity", "unit", "note"}
	saleColumns     = []string{"buyer", "sub_account", "rep", "period", "product_code", "quantity", "unit_price", "currency", "sale_amount"}
)

func selectMaterialsQuery() squirrel.SelectBuilder {
	return psql.Select(materialColumns...).From(materialsTable).OrderBy("code ASC")
}

func selectMaterialQuery(code entities.MaterialCode) squirrel.SelectBuilder {
	return psql.Select(materialColumns...).From(materialsTable).Where(squirrel.Eq{"code": string(code)})
}

func upsertMaterialsQuery(materials []*entities.RawMaterial) squirrel.InsertBuilder {
	query := psql.Insert(materialsTable).Columns(materialColumns...)
	for _, m := range materials {
		var effective interface{}
		if !m.EffectiveMonth.IsZero() {
			effective = m.EffectiveMonth.String()
		}
		query = query.Values(
			string(m.Code),
			m.Name,
			m.Category.String(),
			m.Grade,
			m.PerAreaMass,
			m.UnitCost,
			m.Currency,
			effective,
		)
	}
	return query.Suffix(`ON CONFLICT (code) DO UPDATE SET
		name = EXCLUDED.name,
		category = EXCLUDED.category,
		grade = EXCLUDED.grade,
		per_area_mass = EXCLUDED.per_area_mass,
		unit_cost = EXCLUDED.unit_cost,
		currency = EXCLUDED.currency,
		effective_month = EXCLUDED.effective_month,
		updated_at = CURRENT_TIMESTAMP`)
}

// upsertMaterialBatches builds one upsert per batch. A code repeated in
// materials keeps its last row, since an upsert may touch a key only once.
func upsertMaterialBatches(materials []*entities.RawMaterial) []squirrel.InsertBuilder {
	seen := make(map[entities.MaterialCode]int, len(materials))
	unique := make([]*entities.RawMaterial, 0, len(materials))
	for _, m := range materials {
		if i, ok := seen[m.Code]; ok {
			unique[i] = m
			continue
		}
		seen[m.Code] = len(unique)
		unique = append(unique, m)
	}

	var queries []squirrel.InsertBuilder
	for _, batch := range batches(unique, insertBatch) {
		queries = append(queries, upsertMaterialsQuery(batch))
	}
	return queries
}

func deleteMaterialQuery(code entities.MaterialCode) squirrel.DeleteBuilder {
	return psql.Delete(materialsTable).Where(squirrel.Eq{"code": string(code)})
}

func selectBOMLinesQuery(productCode *entities.ProductCode) squirrel.SelectBuilder {
	query := psql.Select(bomColumns...).From(bomTable)
	if productCode != nil {
		query = query.Where(squirrel.Eq{"product_code": string(*productCode)})
	}
	return query.OrderBy("product_code ASC", "position ASC")
}

func upsertBOMLinesQuery(lines []*entities.BOMLine) squirrel.InsertBuilder {
	query := psql.Insert(bomTable).Columns(bomColumns...)
	for _, line := range lines {
		query = query.Values(
			string(line.ProductCode),
			string(line.MaterialCode),
			line.Quantity,
			line.Unit.String(),
			line.Note,
		)
	}
	return query.Suffix(`ON CONFLICT (product_code, material_code) DO UPDATE SET
		quantity = EXCLUDED.quantity,
		unit = EXCLUDED.unit,
		note = EXCLUDED.note,
		updated_at = CURRENT_TIMESTAMP`)
}

// upsertBOMLineBatches builds one upsert per batch. Later lines replace
// earlier lines with the same product and material.
func upsertBOMLineBatches(lines []*entities.BOMLine) []squirrel.InsertBuilder {
	seen := make(map[entities.BOMKey]int, len(lines))
	unique := make([]*entities.BOMLine, 0, len(lines))
	for _, line := range lines {
		if i, ok := seen[line.Key()]; ok {
			unique[i] = line
			continue
		}
		seen[line.Key()] = len(unique)
		unique = append(unique, line)
	}

	var queries []squirrel.InsertBuilder
	for _, batch := range batches(unique, insertBatch) {
		queries = append(queries, upsertBOMLinesQuery(batch))
	}
	return queries
}

func deleteBOMLineQuery(key entities.BOMKey) squirrel.DeleteBuilder {
	return psql.Delete(bomTable).Where(squirrel.Eq{
		"product_code":  string(key.ProductCode),
		"material_code": string(key.MaterialCode),
	})
}

func selectSalesQuery() squirrel.SelectBuilder {
	return psql.Select(saleColumns...).From(salesTable).OrderBy("id ASC")
}

func insertSalesQuery(records []entities.SaleRecord) squirrel.InsertBuilder {
	query := psql.Insert(salesTable).Columns(saleColumns...)
	for _, r := range records {
		query = query.Values(
			string(r.Buyer),
			r.SubAccount,
			r.Rep,
			r.Period,
			string(r.ProductCode),
			r.Quantity,
			r.UnitPrice,
			r.Currency,
			r.Amount,
		)
	}
	return query
}

func batches[T any](rows []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(rows); start += size {
		out = append(out, rows[start:min(start+size, len(rows))])
	}
	return out
}

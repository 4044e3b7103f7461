package postgres

const (
	materialsTable = "raw_materials"
	bomTable       = "bom_lines"
	salesTable     = "sale_records"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS raw_materials (
		code            TEXT PRIMARY KEY,
		name            TEXT NOT NULL DEFAULT '',
		category        TEXT NOT NULL,
		grade           TEXT NOT NULL DEFAULT '',
		per_area_mass   NUMERIC,
		unit_cost       NUMERIC,
		currency        TEXT NOT NULL DEFAULT '',
		effective_month TEXT,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS bom_lines (
		product_code  TEXT NOT NULL,
		material_code TEXT NOT NULL,
		quantity      NUMERIC NOT NULL CHECK (quantity > 0),
		unit          TEXT NOT NULL,
		note          TEXT NOT NULL DEFAULT '',
		position      BIGSERIAL,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (product_code, material_code)
	)`,
	`CREATE TABLE IF NOT EXISTS sale_records (
		id           BIGSERIAL PRIMARY KEY,
		buyer        TEXT NOT NULL,
		sub_account  TEXT NOT NULL DEFAULT '',
		rep          TEXT NOT NULL DEFAULT '',
		period       TEXT NOT NULL,
		product_code TEXT NOT NULL,
		quantity     NUMERIC NOT NULL,
		unit_price   NUMERIC NOT NULL,
		currency     TEXT NOT NULL DEFAULT '',
		sale_amount  NUMERIC
	)`,
}

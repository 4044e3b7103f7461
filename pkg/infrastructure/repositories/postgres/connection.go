package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/vsinha/bomcost/pkg/config"
)

// DB is the subset of *sql.DB the stores use
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type Connection struct {
	*sql.DB
}

var _ DB = (*Connection)(nil)

func NewConnection(ctx context.Context, cfg config.Database) (*Connection, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres connection")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping postgres")
	}

	return &Connection{DB: db}, nil
}

// Migrate creates the catalog, BOM and sales tables when they do not exist
func (c *Connection) Migrate(ctx context.Context) error {
	for _, statement := range schema {
		if _, err := c.ExecContext(ctx, statement); err != nil {
			return errors.Wrap(err, "failed to apply schema")
		}
	}
	return nil
}

// RunInTransaction runs fn inside a transaction, rolling back on error or panic
func RunInTransaction(ctx context.Context, db DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rollback failed: %v", rbErr)
		}
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

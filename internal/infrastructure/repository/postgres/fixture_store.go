package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	qb "github.com/powerdata-io/ingest/internal/platform/querybuilder"
	"github.com/powerdata-io/ingest/internal/usecase"
)

// FixtureStore opens the per-fixture transactions the loader writes through.
type FixtureStore struct {
	db *sqlx.DB
}

func NewFixtureStore(db *sqlx.DB) *FixtureStore {
	return &FixtureStore{db: db}
}

func (s *FixtureStore) Begin(ctx context.Context) (usecase.FixtureTx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &fixtureTx{tx: tx}, nil
}

type fixtureTx struct {
	tx *sqlx.Tx
}

// Insert writes one row under a savepoint. Postgres aborts the whole
// transaction after any failed statement, so without the savepoint a single
// duplicate-key row would poison every later insert with SQLSTATE 25P02 and
// force the fixture to roll back instead of skipping the row.
func (t *fixtureTx) Insert(ctx context.Context, table string, model any) error {
	query, args, err := qb.InsertModel(table, model, "")
	if err != nil {
		return fmt.Errorf("build insert for %s: %w", table, err)
	}

	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT record_insert"); err != nil {
		return fmt.Errorf("savepoint before insert into %s: %w", table, err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT record_insert"); rbErr != nil {
			return fmt.Errorf("rollback to savepoint after insert into %s failed with %v: %w", table, err, rbErr)
		}
		return markConstraint(fmt.Errorf("insert into %s: %w", table, err))
	}
	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT record_insert"); err != nil {
		return fmt.Errorf("release savepoint after insert into %s: %w", table, err)
	}
	return nil
}

func (t *fixtureTx) Commit() error {
	return t.tx.Commit()
}

func (t *fixtureTx) Rollback() error {
	return t.tx.Rollback()
}

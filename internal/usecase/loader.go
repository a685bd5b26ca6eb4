package usecase

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/powerdata-io/ingest/internal/domain/record"
	"github.com/powerdata-io/ingest/internal/platform/logging"
)

// FixtureStore opens one transaction per fixture batch.
type FixtureStore interface {
	Begin(ctx context.Context) (FixtureTx, error)
}

// FixtureTx is the write surface of one fixture transaction. Insert failures
// caused by constraint violations are marked ErrConstraintViolation by the
// implementation; the loader treats those as skippable duplicates.
type FixtureTx interface {
	Insert(ctx context.Context, table string, model any) error
	Commit() error
	Rollback() error
}

type LoadState string

const (
	// LoadSkipped means the batch had no fixture rows and no transaction
	// was opened.
	LoadSkipped    LoadState = "skipped"
	LoadCommitted  LoadState = "committed"
	LoadRolledBack LoadState = "rolled_back"
)

// LoadResult summarises one fixture load.
type LoadResult struct {
	State    LoadState
	Inserted int
	Skipped  int
}

// TransactionalLoader writes one assembled batch inside a single
// transaction. Either the whole fixture commits or none of it does; rows
// that collide with existing data are skipped without poisoning the
// transaction's outcome.
type TransactionalLoader struct {
	store  FixtureStore
	logger *logging.Logger
}

func NewTransactionalLoader(store FixtureStore, logger *logging.Logger) *TransactionalLoader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TransactionalLoader{store: store, logger: logger}
}

// Load writes the batch in dependency order: squads, sport info, players,
// fixtures, match stats, periods, score flow. The sport info insert is
// load-bearing for every later row and its failure aborts the fixture.
func (l *TransactionalLoader) Load(ctx context.Context, batch *record.Batch) (LoadResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransactionalLoader.Load")
	defer span.End()

	if len(batch.Fixtures) == 0 {
		l.logger.InfoContext(ctx, "no playable matches, skipping load",
			"fixture_id", batch.FixtureID)
		return LoadResult{State: LoadSkipped}, nil
	}

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return LoadResult{State: LoadRolledBack}, fmt.Errorf("begin fixture transaction: %w", err)
	}

	res := LoadResult{}
	tables := batch.Tables()

	if err := l.run(ctx, tx, batch, tables, &res); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.logger.ErrorContext(ctx, "rollback failed",
				"fixture_id", batch.FixtureID, "error", rbErr)
		}
		res.State = LoadRolledBack
		return res, err
	}

	if err := tx.Commit(); err != nil {
		res.State = LoadRolledBack
		return res, fmt.Errorf("commit fixture %s: %w", batch.FixtureID, err)
	}
	res.State = LoadCommitted

	l.logger.InfoContext(ctx, "fixture committed",
		"fixture_id", batch.FixtureID,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (l *TransactionalLoader) run(ctx context.Context, tx FixtureTx, batch *record.Batch, tables record.Tables, res *LoadResult) error {
	if err := insertRows(ctx, l, tx, tables.Squad, batch.Squads, res,
		func(r record.SquadInfo) string { return r.UniqueSquadID }); err != nil {
		return err
	}

	// Every later row references the sport row; failing to write it means
	// the fixture cannot be represented at all.
	if err := tx.Insert(ctx, tables.Sport, batch.Sport); err != nil {
		return fmt.Errorf("insert sport info %s: %w", batch.Sport.UniqueSportID, err)
	}
	res.Inserted++

	if err := insertRows(ctx, l, tx, tables.Player, batch.Players, res,
		func(r record.PlayerInfo) string { return r.UniquePlayerID }); err != nil {
		return err
	}
	if err := insertRows(ctx, l, tx, tables.Fixture, batch.Fixtures, res,
		func(r record.FixtureRow) string { return r.UniqueFixtureID }); err != nil {
		return err
	}
	if err := insertRows(ctx, l, tx, tables.Match, batch.MatchStats, res,
		func(r record.PlayerMatchStat) string { return r.PlayerMatchKey }); err != nil {
		return err
	}
	if err := insertRows(ctx, l, tx, tables.Period, batch.Periods, res,
		func(r record.PeriodStat) string { return r.UniquePeriodID }); err != nil {
		return err
	}
	if err := insertRows(ctx, l, tx, tables.ScoreFlow, batch.ScoreFlow, res,
		func(r record.ScoreFlowEvent) string { return r.ScoreFlowID }); err != nil {
		return err
	}
	return nil
}

func insertRows[T any](ctx context.Context, l *TransactionalLoader, tx FixtureTx, table string, rows []T, res *LoadResult, key func(T) string) error {
	for _, row := range rows {
		err := tx.Insert(ctx, table, row)
		if err == nil {
			res.Inserted++
			continue
		}
		if errors.Is(err, ErrConstraintViolation) {
			res.Skipped++
			l.logger.WarnContext(ctx, "skipping row that violates a constraint",
				"table", table,
				"key", key(row),
				"error", err,
			)
			continue
		}
		return fmt.Errorf("insert into %s (key %s): %w", table, key(row), err)
	}
	return nil
}

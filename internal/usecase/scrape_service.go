package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/powerdata-io/ingest/internal/domain/league"
	"github.com/powerdata-io/ingest/internal/platform/ledger"
	"github.com/powerdata-io/ingest/internal/platform/logging"
)

type fixtureStatus string

const (
	fixtureStatusCommitted fixtureStatus = "committed"
	fixtureStatusSkipped   fixtureStatus = "skipped"
	fixtureStatusBroken    fixtureStatus = "broken"
)

// FixtureReport is the outcome of one fixture within a run.
type FixtureReport struct {
	FixtureID  string
	LeagueID   int
	Title      string
	Status     string
	Inserted   int
	Skipped    int
	Error      string
	DurationMs int64
}

// RunReport summarises one full ingestion run. A run always completes: a
// broken fixture is recorded and the run moves on.
type RunReport struct {
	Fixtures  []FixtureReport
	Committed int
	Skipped   int
	Broken    int
	Inserted  int
}

// ScrapeService drives one ingestion run end to end: populate the league
// catalog, then assemble and load every listed fixture. Fixture failures
// are terminal for that fixture only; they land in the broken-fixtures
// ledger and the run continues.
type ScrapeService struct {
	catalog   *LeagueCatalog
	assembler *Assembler
	loader    *TransactionalLoader
	broken    *ledger.BrokenFixtures
	workers   int
	logger    *logging.Logger
}

func NewScrapeService(catalog *LeagueCatalog, assembler *Assembler, loader *TransactionalLoader, broken *ledger.BrokenFixtures, workers int, logger *logging.Logger) *ScrapeService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &ScrapeService{
		catalog:   catalog,
		assembler: assembler,
		loader:    loader,
		broken:    broken,
		workers:   workers,
		logger:    logger,
	}
}

// Run executes one full ingestion pass. Only catalog population failure is
// fatal; there is nothing to iterate without the league list.
func (s *ScrapeService) Run(ctx context.Context) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrapeService.Run")
	defer span.End()

	if err := s.catalog.Populate(ctx); err != nil {
		return RunReport{}, fmt.Errorf("populate league catalog: %w", err)
	}

	leagues := s.catalog.Leagues()
	s.logger.InfoContext(ctx, "starting ingestion run",
		"leagues", len(leagues), "workers", s.workers)

	var report RunReport
	if s.workers == 1 {
		for _, lg := range leagues {
			report.Fixtures = append(report.Fixtures, s.processFixture(ctx, lg))
		}
	} else {
		rows, err := s.processParallel(ctx, leagues)
		if err != nil {
			return RunReport{}, err
		}
		report.Fixtures = rows
	}

	for _, row := range report.Fixtures {
		switch fixtureStatus(row.Status) {
		case fixtureStatusCommitted:
			report.Committed++
		case fixtureStatusSkipped:
			report.Skipped++
		default:
			report.Broken++
		}
		report.Inserted += row.Inserted
	}

	s.logger.InfoContext(ctx, "ingestion run finished",
		"committed", report.Committed,
		"skipped", report.Skipped,
		"broken", report.Broken,
		"rows_inserted", report.Inserted,
	)
	return report, nil
}

func (s *ScrapeService) processParallel(ctx context.Context, leagues []league.League) ([]FixtureReport, error) {
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan FixtureReport, len(leagues))
	var wg sync.WaitGroup
	for _, lg := range leagues {
		lg := lg
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results <- s.processFixture(ctx, lg)
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit fixture to worker pool: %w", err)
		}
	}
	wg.Wait()
	close(results)

	rows := make([]FixtureReport, 0, len(leagues))
	for row := range results {
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].LeagueID < rows[j].LeagueID })
	return rows, nil
}

func (s *ScrapeService) processFixture(ctx context.Context, lg league.League) FixtureReport {
	start := time.Now()
	row := FixtureReport{
		FixtureID: fmt.Sprintf("%d", lg.ID),
		LeagueID:  lg.ID,
		Title:     lg.TitleWithSeason,
	}

	batch, err := s.assembler.Assemble(ctx, lg)
	if err != nil {
		s.markBroken(ctx, &row, fmt.Errorf("assemble: %w", err))
		row.DurationMs = time.Since(start).Milliseconds()
		return row
	}

	res, err := s.loader.Load(ctx, batch)
	row.Inserted = res.Inserted
	row.Skipped = res.Skipped
	if err != nil {
		s.markBroken(ctx, &row, fmt.Errorf("load: %w", err))
		row.DurationMs = time.Since(start).Milliseconds()
		return row
	}

	switch res.State {
	case LoadSkipped:
		row.Status = string(fixtureStatusSkipped)
	default:
		row.Status = string(fixtureStatusCommitted)
	}
	row.DurationMs = time.Since(start).Milliseconds()
	return row
}

func (s *ScrapeService) markBroken(ctx context.Context, row *FixtureReport, cause error) {
	row.Status = string(fixtureStatusBroken)
	row.Error = cause.Error()

	s.logger.ErrorContext(ctx, "fixture failed, recording in broken ledger",
		"fixture_id", row.FixtureID,
		"error", cause,
	)
	if err := s.broken.Add(row.FixtureID); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist broken fixture",
			"fixture_id", row.FixtureID,
			"error", err,
		)
	}
}

package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/powerdata-io/ingest/internal/domain/league"
	"github.com/powerdata-io/ingest/internal/domain/sport"
	"github.com/powerdata-io/ingest/internal/platform/cache"
	"github.com/powerdata-io/ingest/internal/platform/ledger"
	"github.com/powerdata-io/ingest/internal/platform/logging"
)

func newTestService(t *testing.T, feed *stubFeed, store *fakeStore, workers int) (*ScrapeService, *ledger.BrokenFixtures) {
	t.Helper()

	broken := ledger.New(filepath.Join(t.TempDir(), "BrokenFixtures.json"))
	if err := broken.Load(); err != nil {
		t.Fatalf("load ledger: %v", err)
	}

	catalog := NewLeagueCatalog(feed)
	resolver := NewIdentityResolver(&stubPlayerRefs{}, cache.NewStore(0), PolicyReject, logging.NewNop())
	assembler := NewAssembler(feed, resolver, sport.NewClassifier(sport.DefaultRules()), logging.NewNop())
	loader := NewTransactionalLoader(store, logging.NewNop())

	return NewScrapeService(catalog, assembler, loader, broken, workers, logging.NewNop()), broken
}

func TestRunCommitsHealthyFixture(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{
		leagues: []league.League{anzLeague()},
		matches: map[int][]RawMatch{10083: {playedMatch()}},
		stats: map[string][]RawPlayerStat{
			"116640401": {
				{RawPlayerIdentity: identity("80826", "Grace", "Nweke", "9015", "Mystics"), MinutesPlayed: 60},
			},
		},
	}
	store := &fakeStore{tx: &fakeTx{}}
	svc, broken := newTestService(t, feed, store, 1)

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Committed != 1 || report.Broken != 0 {
		t.Fatalf("committed=%d broken=%d", report.Committed, report.Broken)
	}
	if broken.Len() != 0 {
		t.Fatalf("ledger should be empty, has %d", broken.Len())
	}
}

func TestRunRecordsBrokenFixtureAndContinues(t *testing.T) {
	t.Parallel()

	bad := anzLeague()
	good := league.League{
		ID:                11000,
		Name:              "Suncorp Super Netball",
		Season:            "2023",
		TitleWithSeason:   "Suncorp Super Netball (2023)",
		RegulationPeriods: 4,
	}
	goodMatch := playedMatch()
	goodMatch.MatchID = "217000001"
	goodMatch.HomeSquadID = "8010"
	goodMatch.AwaySquadID = "8020"

	feed := &stubFeed{
		leagues: []league.League{bad, good},
		matches: map[int][]RawMatch{
			11000: {goodMatch},
		},
		// League 10083 has no entry; make its fixture fetch fail outright.
		fixtureErrFor: map[int]error{10083: fmt.Errorf("fixture document: %w", ErrFeedUnavailable)},
	}
	store := &fakeStore{tx: &fakeTx{}}
	svc, broken := newTestService(t, feed, store, 1)

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Broken != 1 || report.Committed != 1 {
		t.Fatalf("broken=%d committed=%d", report.Broken, report.Committed)
	}
	if !broken.Contains("10083") {
		t.Fatalf("ledger missing fixture 10083, has %v", broken.IDs())
	}
	if broken.Contains("11000") {
		t.Fatal("healthy fixture must not be in the ledger")
	}
}

func TestRunSkipsFixtureWithNoPlayableMatches(t *testing.T) {
	t.Parallel()

	scheduled := playedMatch()
	scheduled.MatchStatus = "scheduled"
	feed := &stubFeed{
		leagues: []league.League{anzLeague()},
		matches: map[int][]RawMatch{10083: {scheduled}},
	}
	store := &fakeStore{tx: &fakeTx{}}
	svc, broken := newTestService(t, feed, store, 1)

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Skipped != 1 || report.Broken != 0 {
		t.Fatalf("skipped=%d broken=%d", report.Skipped, report.Broken)
	}
	if store.begins != 0 {
		t.Fatalf("no transaction should open, got %d", store.begins)
	}
	if broken.Len() != 0 {
		t.Fatal("skipped fixture is not broken")
	}
}

func TestRunSportInfoFailureRollsBackAndRecordsFixture(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{
		leagues: []league.League{anzLeague()},
		matches: map[int][]RawMatch{10083: {playedMatch()}},
	}
	tx := &fakeTx{failOn: map[string]error{"sport_info": fmt.Errorf("duplicate key: %w", ErrConstraintViolation)}}
	store := &fakeStore{tx: tx}
	svc, broken := newTestService(t, feed, store, 1)

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Broken != 1 || report.Committed != 0 {
		t.Fatalf("broken=%d committed=%d", report.Broken, report.Committed)
	}
	if !tx.rolledBack || tx.committed {
		t.Fatalf("rolledBack=%t committed=%t", tx.rolledBack, tx.committed)
	}
	if ids := broken.IDs(); len(ids) != 1 || ids[0] != "10083" {
		t.Fatalf("ledger = %v, want exactly [10083]", ids)
	}
}

func TestRunCatalogFailureIsFatal(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{leaguesErr: fmt.Errorf("competitions document: %w", ErrFeedUnavailable)}
	svc, _ := newTestService(t, feed, &fakeStore{tx: &fakeTx{}}, 1)

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("catalog population failure must abort the run")
	}
}

func TestRunParallelWorkersProduceStableReport(t *testing.T) {
	t.Parallel()

	var leagues []league.League
	matches := map[int][]RawMatch{}
	for i := 0; i < 4; i++ {
		id := 10083 + i
		leagues = append(leagues, league.League{
			ID:                id,
			Name:              "ANZ Premiership",
			Season:            "2023",
			TitleWithSeason:   "ANZ Premiership (2023)",
			RegulationPeriods: 4,
		})
		m := playedMatch()
		m.MatchID = fmt.Sprintf("11664040%d", i)
		matches[id] = []RawMatch{m}
	}

	feed := &stubFeed{leagues: leagues, matches: matches}
	store := &fakeStore{tx: &fakeTx{}}
	svc, _ := newTestService(t, feed, store, 3)

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Fixtures) != 4 {
		t.Fatalf("fixtures = %d, want 4", len(report.Fixtures))
	}
	for i := 1; i < len(report.Fixtures); i++ {
		if report.Fixtures[i-1].LeagueID > report.Fixtures[i].LeagueID {
			t.Fatalf("report not sorted by league id: %v", report.Fixtures)
		}
	}
}

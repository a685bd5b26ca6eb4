package app

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/powerdata-io/ingest/external/championdata"
	"github.com/powerdata-io/ingest/internal/config"
	"github.com/powerdata-io/ingest/internal/domain/sport"
	"github.com/powerdata-io/ingest/internal/infrastructure/repository/postgres"
	"github.com/powerdata-io/ingest/internal/platform/cache"
	"github.com/powerdata-io/ingest/internal/platform/ledger"
	"github.com/powerdata-io/ingest/internal/platform/logging"
	"github.com/powerdata-io/ingest/internal/platform/resilience"
	"github.com/powerdata-io/ingest/internal/usecase"
)

// App wires the full ingestion pipeline: feed client, identity resolver,
// assembler, transactional loader, and the broken-fixtures ledger.
type App struct {
	Config  config.Config
	Logger  *logging.Logger
	DB      *sqlx.DB
	Service *usecase.ScrapeService
	Ledger  *ledger.BrokenFixtures
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	feed := championdata.NewClient(championdata.ClientConfig{
		BaseURL:     cfg.FeedBaseURL,
		Timeout:     cfg.FeedTimeout,
		MaxRetries:  cfg.FeedMaxRetries,
		MatchDocTTL: cfg.FeedMatchDocTTL,
		Logger:      logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FeedCircuitEnabled,
			FailureThreshold: cfg.FeedCircuitFailureCount,
			OpenTimeout:      cfg.FeedCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenMaxReq,
		},
	})

	broken := ledger.New(cfg.LedgerPath)
	if err := broken.Load(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load broken fixtures ledger: %w", err)
	}

	catalog := usecase.NewLeagueCatalog(feed)
	resolver := usecase.NewIdentityResolver(
		postgres.NewPlayerRefRepository(db),
		cache.NewStore(0),
		cfg.ResolverPolicy,
		logger,
	)
	assembler := usecase.NewAssembler(feed, resolver, sport.NewClassifier(sport.DefaultRules()), logger)
	loader := usecase.NewTransactionalLoader(postgres.NewFixtureStore(db), logger)
	service := usecase.NewScrapeService(catalog, assembler, loader, broken, cfg.WorkerCount, logger)

	return &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Service: service,
		Ledger:  broken,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Connect("postgres", cfg.DBURL,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/powerdata-io/ingest/internal/domain/record"
	"github.com/powerdata-io/ingest/internal/usecase"
)

// pgScript emulates the server-side transaction state machine: any failed
// statement aborts the transaction, and while aborted every statement except
// a rollback to the savepoint fails with SQLSTATE 25P02. This is the
// behavior a real Postgres exhibits and the reason Insert runs under a
// savepoint.
type pgScript struct {
	mu          sync.Mutex
	executed    []string
	failOnMatch string
	failAfter   int          // fail the Nth statement containing failOnMatch, 1-based
	failCode    pq.ErrorCode // defaults to unique violation
	seen        int
	aborted     bool
}

func (s *pgScript) exec(query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(query)
	if s.aborted {
		if strings.HasPrefix(trimmed, "ROLLBACK TO SAVEPOINT") {
			s.aborted = false
			s.executed = append(s.executed, trimmed)
			return nil
		}
		return &pq.Error{Code: "25P02"}
	}

	if s.failOnMatch != "" && strings.Contains(trimmed, s.failOnMatch) {
		s.seen++
		if s.seen == s.failAfter {
			s.aborted = true
			code := s.failCode
			if code == "" {
				code = "23505"
			}
			return &pq.Error{Code: code}
		}
	}

	s.executed = append(s.executed, trimmed)
	return nil
}

func (s *pgScript) commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aborted {
		return &pq.Error{Code: "25P02"}
	}
	s.executed = append(s.executed, "COMMIT")
	return nil
}

func (s *pgScript) statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.executed...)
}

type scriptConnector struct{ script *pgScript }

func (c scriptConnector) Connect(context.Context) (driver.Conn, error) {
	return &scriptConn{script: c.script}, nil
}

func (c scriptConnector) Driver() driver.Driver { return scriptDriver{} }

type scriptDriver struct{}

func (scriptDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open by dsn is not supported")
}

type scriptConn struct{ script *pgScript }

func (c *scriptConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare is not supported")
}

func (c *scriptConn) Close() error { return nil }

func (c *scriptConn) Begin() (driver.Tx, error) {
	return &scriptTx{script: c.script}, nil
}

func (c *scriptConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return &scriptTx{script: c.script}, nil
}

func (c *scriptConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	if err := c.script.exec(query); err != nil {
		return nil, err
	}
	return driver.RowsAffected(1), nil
}

type scriptTx struct{ script *pgScript }

func (t *scriptTx) Commit() error   { return t.script.commit() }
func (t *scriptTx) Rollback() error { return nil }

func newScriptDB(script *pgScript) *sqlx.DB {
	return sqlx.NewDb(sql.OpenDB(scriptConnector{script: script}), "postgres")
}

func TestFixtureTxSkipsDuplicateWithoutPoisoningTransaction(t *testing.T) {
	t.Parallel()

	script := &pgScript{failOnMatch: "INSERT INTO squad_info", failAfter: 2}
	store := NewFixtureStore(newScriptDB(script))

	tx, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	squad := record.SquadInfo{SquadID: "9015", SquadName: "Mystics", UniqueSquadID: "9015-Mystics"}
	if err := tx.Insert(context.Background(), "squad_info", squad); err != nil {
		t.Fatalf("first squad insert: %v", err)
	}

	err = tx.Insert(context.Background(), "squad_info", squad)
	if !errors.Is(err, usecase.ErrConstraintViolation) {
		t.Fatalf("duplicate squad insert = %v, want constraint violation mark", err)
	}

	// The next insert on the same transaction must succeed; without the
	// savepoint rollback it would fail with 25P02.
	player := record.PlayerInfo{
		PlayerID: "80826", Firstname: "Grace", Surname: "Nweke",
		SquadID: "9015", UniqueSquadID: "9015-Mystics", UniquePlayerID: "80826-9015",
	}
	if err := tx.Insert(context.Background(), "player_info", player); err != nil {
		t.Fatalf("insert after skipped duplicate: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit after skipped duplicate: %v", err)
	}

	var savepoints, rollbacks, releases int
	for _, stmt := range script.statements() {
		switch {
		case stmt == "SAVEPOINT record_insert":
			savepoints++
		case stmt == "ROLLBACK TO SAVEPOINT record_insert":
			rollbacks++
		case stmt == "RELEASE SAVEPOINT record_insert":
			releases++
		}
	}
	if savepoints != 3 || rollbacks != 1 || releases != 2 {
		t.Fatalf("savepoints=%d rollbacks=%d releases=%d, want 3/1/2", savepoints, rollbacks, releases)
	}
}

func TestFixtureTxNonConstraintFailureStaysFatal(t *testing.T) {
	t.Parallel()

	script := &pgScript{failOnMatch: "INSERT INTO squad_info", failAfter: 1, failCode: "08006"}
	store := NewFixtureStore(newScriptDB(script))

	tx, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	squad := record.SquadInfo{SquadID: "9015", SquadName: "Mystics", UniqueSquadID: "9015-Mystics"}
	err = tx.Insert(context.Background(), "squad_info", squad)
	if err == nil {
		t.Fatal("connection failure must surface")
	}
	if errors.Is(err, usecase.ErrConstraintViolation) {
		t.Fatalf("connection failure must not be marked skippable: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
}

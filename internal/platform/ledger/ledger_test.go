package ledger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBrokenFixtures_LoadMissingFile(t *testing.T) {
	t.Parallel()

	l := New(filepath.Join(t.TempDir(), "broken_fixtures.json"))
	if err := l.Load(); err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d entries", l.Len())
	}
}

func TestBrokenFixtures_LoadCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken_fixtures.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	l := New(path)
	if err := l.Load(); err != nil {
		t.Fatalf("load corrupt file: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger after corrupt load, got %d", l.Len())
	}
}

func TestBrokenFixtures_AddPersistsImmediately(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken_fixtures.json")
	l := New(path)
	if err := l.Add("11108"); err != nil {
		t.Fatalf("add: %v", err)
	}

	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Contains("11108") {
		t.Fatalf("expected persisted entry after Add")
	}
}

func TestBrokenFixtures_AddIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken_fixtures.json")
	l := New(path)
	for i := 0; i < 3; i++ {
		if err := l.Add("11108"); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if got := l.IDs(); len(got) != 1 || got[0] != "11108" {
		t.Fatalf("expected single entry, got %v", got)
	}
}

func TestBrokenFixtures_FlushAndReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken_fixtures.json")
	l := New(path)
	for _, id := range []string{"3", "1", "2"} {
		if err := l.Add(id); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	if err := l.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	// Insertion order is preserved on disk.
	if got := reloaded.IDs(); len(got) != 3 || got[0] != "3" || got[1] != "1" || got[2] != "2" {
		t.Fatalf("unexpected reloaded ids: %v", got)
	}
	if got := reloaded.SortedIDs(); got[0] != "1" || got[2] != "3" {
		t.Fatalf("unexpected sorted ids: %v", got)
	}
}

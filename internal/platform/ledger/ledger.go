package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	sonic "github.com/bytedance/sonic"
)

// BrokenFixtures is the durable record of fixture ids whose load was rolled
// back. The backing file is a flat JSON array rewritten in full on every Add,
// so a crash between two fixtures loses at most the in-progress fixture.
type BrokenFixtures struct {
	mu      sync.Mutex
	path    string
	ids     []string
	present map[string]struct{}
}

func New(path string) *BrokenFixtures {
	return &BrokenFixtures{
		path:    path,
		present: make(map[string]struct{}),
	}
}

// Load reads the durable set. A missing or corrupt file yields an empty set;
// previous runs' bookkeeping is never a reason to refuse to start.
func (l *BrokenFixtures) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read broken fixtures file %s: %w", l.path, err)
	}

	var ids []string
	if err := sonic.Unmarshal(raw, &ids); err != nil {
		// Corrupt ledger resets to empty rather than blocking the run.
		l.ids = nil
		l.present = make(map[string]struct{})
		return nil
	}

	l.ids = l.ids[:0]
	l.present = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := l.present[id]; ok {
			continue
		}
		l.present[id] = struct{}{}
		l.ids = append(l.ids, id)
	}
	return nil
}

// Add records a fixture id and persists immediately. Adding an id that is
// already present is a no-op.
func (l *BrokenFixtures) Add(fixtureID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.present[fixtureID]; ok {
		return nil
	}
	l.present[fixtureID] = struct{}{}
	l.ids = append(l.ids, fixtureID)

	return l.persistLocked()
}

func (l *BrokenFixtures) Contains(fixtureID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.present[fixtureID]
	return ok
}

func (l *BrokenFixtures) IDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

func (l *BrokenFixtures) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.ids)
}

// Flush rewrites the file at process end.
func (l *BrokenFixtures) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.persistLocked()
}

func (l *BrokenFixtures) persistLocked() error {
	raw, err := sonic.Marshal(l.ids)
	if err != nil {
		return fmt.Errorf("encode broken fixtures: %w", err)
	}

	dir := filepath.Dir(l.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir %s: %w", dir, err)
		}
	}

	// Write-then-rename so a crash mid-write cannot corrupt the ledger.
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write broken fixtures file: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace broken fixtures file: %w", err)
	}
	return nil
}

// SortedIDs is a convenience for stable reporting.
func (l *BrokenFixtures) SortedIDs() []string {
	out := l.IDs()
	sort.Strings(out)
	return out
}

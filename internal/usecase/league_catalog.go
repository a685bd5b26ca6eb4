package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/powerdata-io/ingest/internal/domain/league"
)

const unknownLeagueTitle = "Unknown League"

// LeagueCatalog holds the league-id to title/season mapping for a run. It is
// an explicit, injected service with a Populate/IsPopulated contract; callers
// never trigger an implicit fetch by asking for a title.
type LeagueCatalog struct {
	provider FeedProvider

	mu        sync.RWMutex
	populated bool
	leagues   []league.League
	byID      map[int]league.League
}

func NewLeagueCatalog(provider FeedProvider) *LeagueCatalog {
	return &LeagueCatalog{
		provider: provider,
		byID:     make(map[int]league.League),
	}
}

// Populate fetches the league list and replaces the catalog contents.
// Calling it again refreshes the mapping.
func (c *LeagueCatalog) Populate(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueCatalog.Populate")
	defer span.End()

	leagues, err := c.provider.FetchLeagues(ctx)
	if err != nil {
		return fmt.Errorf("fetch leagues: %w", err)
	}

	byID := make(map[int]league.League, len(leagues))
	for _, lg := range leagues {
		byID[lg.ID] = lg
	}

	c.mu.Lock()
	c.leagues = leagues
	c.byID = byID
	c.populated = true
	c.mu.Unlock()

	return nil
}

func (c *LeagueCatalog) IsPopulated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

// Leagues returns the catalog contents in upstream listing order, which is
// the order fixtures are processed in.
func (c *LeagueCatalog) Leagues() []league.League {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]league.League, len(c.leagues))
	copy(out, c.leagues)
	return out
}

// TitleWithSeason resolves the display title for a league id, falling back
// to the unknown-league placeholder for ids the catalog has never seen.
func (c *LeagueCatalog) TitleWithSeason(leagueID int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if lg, ok := c.byID[leagueID]; ok {
		return lg.TitleWithSeason
	}
	return unknownLeagueTitle
}

package usecase

import (
	"context"

	"github.com/powerdata-io/ingest/internal/domain/league"
)

// FeedProvider fetches raw records from the upstream statistics feed. Any
// structural failure (non-200, malformed payload, missing expected subtree)
// is reported as an error wrapping ErrFeedUnavailable; an empty slice with a
// nil error means the feed answered and simply had nothing.
type FeedProvider interface {
	FetchLeagues(ctx context.Context) ([]league.League, error)
	FetchFixture(ctx context.Context, leagueID int) ([]RawMatch, error)
	FetchMatch(ctx context.Context, leagueID int, matchID string) ([]RawPlayerStat, error)
	FetchPeriods(ctx context.Context, leagueID int, matchID string) ([]RawPeriodStat, error)
	FetchScoreFlow(ctx context.Context, leagueID int, matchID string) ([]RawScoreFlow, error)
}

// RawMatch is one match row from the fixture document.
type RawMatch struct {
	MatchID        string
	MatchName      string
	MatchStatus    string
	MatchType      string
	RoundNumber    int
	HomeSquadID    string
	HomeSquadName  string
	AwaySquadID    string
	AwaySquadName  string
	LocalStartTime string
	Venue          string
}

// RawPlayerIdentity is the identity portion shared by every per-player row.
// PlayerID is the raw feed value and may be "0" or otherwise invalid.
type RawPlayerIdentity struct {
	PlayerID         string
	Firstname        string
	Surname          string
	DisplayName      string
	ShortDisplayName string
	SquadID          string
	SquadName        string
}

// RawStatLine is the per-period statistic columns the feed reports.
type RawStatLine struct {
	Goals              int
	GoalAttempts       int
	GoalAssists        int
	CentrePassReceives int
	Feeds              int
	Intercepts         int
	Deflections        int
	Rebounds           int
	Turnovers          int
	Penalties          int
}

// RawPlayerStat is one player's full-match statistics row.
type RawPlayerStat struct {
	RawPlayerIdentity
	RawStatLine
	MinutesPlayed int
}

// RawPeriodStat is one player's statistics for a single period.
type RawPeriodStat struct {
	RawPlayerIdentity
	RawStatLine
	Period int
}

// RawScoreFlow is one scoring event, in feed order.
type RawScoreFlow struct {
	RawPlayerIdentity
	Period        int
	PeriodSeconds int
	Position      string
	ScoreName     string
	ScorePoints   int
}

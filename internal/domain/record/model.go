// Package record defines the typed rows handed to the transactional loader.
// Each struct mirrors one destination table with a static column list; the
// db tags drive insert generation and the validate tags are checked at
// assembly time, replacing the source feed's per-row field allowlisting.
package record

import "github.com/powerdata-io/ingest/internal/domain/sport"

// SquadInfo is one row of the shared squad_info table, deduplicated per
// fixture by UniqueSquadID.
type SquadInfo struct {
	SquadID       string  `db:"squadId" validate:"required"`
	SquadName     string  `db:"squadName" validate:"required"`
	UniqueSquadID string  `db:"uniqueSquadId" validate:"required"`
	FixtureTitle  string  `db:"fixtureTitle"`
	FixtureYear   *string `db:"fixtureYear"`
}

// SportInfo is the single per-fixture row every other table references via
// UniqueSportID. SportID is nil when the category has no code mapping.
type SportInfo struct {
	SportID       *int    `db:"sportId"`
	SportName     string  `db:"sportName" validate:"required"`
	FixtureID     string  `db:"fixtureId" validate:"required"`
	FixtureTitle  string  `db:"fixtureTitle"`
	FixtureYear   *string `db:"fixtureYear"`
	UniqueSportID string  `db:"uniqueSportId" validate:"required"`
}

// PlayerInfo is one row of the shared player_info table.
type PlayerInfo struct {
	PlayerID         string `db:"playerId" validate:"required"`
	Firstname        string `db:"firstname" validate:"required"`
	Surname          string `db:"surname" validate:"required"`
	DisplayName      string `db:"displayName"`
	ShortDisplayName string `db:"shortDisplayName"`
	SquadName        string `db:"squadName"`
	SquadID          string `db:"squadId" validate:"required"`
	SportID          *int   `db:"sportId"`
	UniqueSquadID    string `db:"uniqueSquadId" validate:"required"`
	UniquePlayerID   string `db:"uniquePlayerId" validate:"required"`
}

// FixtureRow is one match row of the per-category fixture table.
type FixtureRow struct {
	FixtureID       string `db:"fixtureId" validate:"required"`
	MatchID         string `db:"matchId" validate:"required"`
	SportID         *int   `db:"sportId"`
	MatchName       string `db:"matchName"`
	MatchStatus     string `db:"matchStatus" validate:"required"`
	MatchType       string `db:"matchType"`
	RoundNumber     int    `db:"roundNumber"`
	HomeSquadID     string `db:"homeSquadId"`
	HomeSquadName   string `db:"homeSquadName"`
	AwaySquadID     string `db:"awaySquadId"`
	AwaySquadName   string `db:"awaySquadName"`
	LocalStartTime  string `db:"localStartTime"`
	Venue           string `db:"venueName"`
	UniqueFixtureID string `db:"uniqueFixtureId" validate:"required"`
	FixtureMatchKey string `db:"uniqueMatchId" validate:"required"`
	UniqueSportID   string `db:"uniqueSportId" validate:"required"`
}

// PlayerMatchStat is one player's full-match statistics row in the
// per-category match table. PlayerMatchKey is the matchId-playerId composite
// the period and score-flow rows must reference.
type PlayerMatchStat struct {
	MatchID          string `db:"matchId" validate:"required"`
	PlayerID         string `db:"playerId" validate:"required"`
	SquadID          string `db:"squadId"`
	SquadName        string `db:"squadName"`
	Firstname        string `db:"firstname"`
	Surname          string `db:"surname"`
	DisplayName      string `db:"displayName"`
	ShortDisplayName string `db:"shortDisplayName"`
	Opponent         string `db:"opponent"`
	RoundNumber      int    `db:"roundNumber"`
	FixtureID        string `db:"fixtureId"`
	FixtureYear      *string `db:"fixtureYear"`
	SportID          *int   `db:"sportId"`

	Goals              int `db:"goals"`
	GoalAttempts       int `db:"goalAttempts"`
	GoalAssists        int `db:"goalAssists"`
	CentrePassReceives int `db:"centrePassReceives"`
	Feeds              int `db:"feeds"`
	Intercepts         int `db:"intercepts"`
	Deflections        int `db:"deflections"`
	Rebounds           int `db:"rebounds"`
	Turnovers          int `db:"turnovers"`
	Penalties          int `db:"penalties"`
	MinutesPlayed      int `db:"minutesPlayed"`

	UniquePlayerID  string `db:"uniquePlayerId" validate:"required"`
	PlayerMatchKey  string `db:"uniqueMatchId" validate:"required"`
	UniqueSquadID   string `db:"uniqueSquadId" validate:"required"`
	UniqueSportID   string `db:"uniqueSportId" validate:"required"`
	UniqueFixtureID string `db:"uniqueFixtureId" validate:"required"`
}

// PeriodStat is one player's statistics for one scoring period.
type PeriodStat struct {
	MatchID  string `db:"matchId" validate:"required"`
	PlayerID string `db:"playerId" validate:"required"`
	SquadID  string `db:"squadId"`
	Period   int    `db:"period"`

	Goals              int `db:"goals"`
	GoalAttempts       int `db:"goalAttempts"`
	GoalAssists        int `db:"goalAssists"`
	CentrePassReceives int `db:"centrePassReceives"`
	Feeds              int `db:"feeds"`
	Intercepts         int `db:"intercepts"`
	Deflections        int `db:"deflections"`
	Rebounds           int `db:"rebounds"`
	Turnovers          int `db:"turnovers"`
	Penalties          int `db:"penalties"`

	PeriodID        string `db:"periodId" validate:"required"`
	UniquePeriodID  string `db:"uniquePeriodId" validate:"required"`
	UniquePlayerID  string `db:"uniquePlayerId" validate:"required"`
	PlayerMatchKey  string `db:"uniqueMatchId" validate:"required"`
	UniqueSquadID   string `db:"uniqueSquadId" validate:"required"`
	UniqueSportID   string `db:"uniqueSportId" validate:"required"`
	UniqueFixtureID string `db:"uniqueFixtureId" validate:"required"`
}

// ScoreFlowEvent is one discrete scoring action. ScoreFlowID carries the
// per-match 1-based sequence in source-record order.
type ScoreFlowEvent struct {
	MatchID       string `db:"matchId" validate:"required"`
	PlayerID      string `db:"playerId" validate:"required"`
	SquadID       string `db:"squadId"`
	Period        int    `db:"period"`
	PeriodSeconds int    `db:"periodSeconds"`
	Position      string `db:"positionCode"`
	ScoreName     string `db:"scoreName"`
	ScorePoints   int    `db:"scorepoints"`

	ScoreFlowID     string `db:"scoreFlowId" validate:"required"`
	UniquePlayerID  string `db:"uniquePlayerId" validate:"required"`
	PlayerMatchKey  string `db:"uniqueMatchId" validate:"required"`
	UniqueSquadID   string `db:"uniqueSquadId" validate:"required"`
	UniqueSportID   string `db:"uniqueSportId" validate:"required"`
	UniqueFixtureID string `db:"uniqueFixtureId" validate:"required"`
}

// Batch is everything the assembler produces for one fixture, in the order
// the loader inserts it.
type Batch struct {
	FixtureID string
	LeagueID  int
	Category  sport.Category

	Squads     []SquadInfo
	Sport      SportInfo
	Players    []PlayerInfo
	Fixtures   []FixtureRow
	MatchStats []PlayerMatchStat
	Periods    []PeriodStat
	ScoreFlow  []ScoreFlowEvent
}

// Tables resolves the destination table names for the batch's category.
// squad_info, sport_info, and player_info are shared across categories.
type Tables struct {
	Squad     string
	Sport     string
	Player    string
	Fixture   string
	Match     string
	Period    string
	ScoreFlow string
}

func (b Batch) Tables() Tables {
	return Tables{
		Squad:     "squad_info",
		Sport:     "sport_info",
		Player:    "player_info",
		Fixture:   sport.Table(b.Category, "fixture"),
		Match:     sport.Table(b.Category, "match"),
		Period:    sport.Table(b.Category, "period"),
		ScoreFlow: sport.Table(b.Category, "score_flow"),
	}
}

// Size is the total row count across all collections plus the sport row.
func (b Batch) Size() int {
	return len(b.Squads) + 1 + len(b.Players) + len(b.Fixtures) +
		len(b.MatchStats) + len(b.Periods) + len(b.ScoreFlow)
}

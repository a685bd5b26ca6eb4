package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/powerdata-io/ingest/internal/domain/keys"
	"github.com/powerdata-io/ingest/internal/domain/league"
	"github.com/powerdata-io/ingest/internal/domain/record"
	"github.com/powerdata-io/ingest/internal/domain/sport"
	"github.com/powerdata-io/ingest/internal/platform/logging"
)

// Assembler turns the raw feed documents for one league into a typed Batch
// ready for transactional load. All identity resolution, key derivation,
// cross-reference filtering, and record validation happens here; the loader
// only moves rows.
type Assembler struct {
	provider   FeedProvider
	resolver   *IdentityResolver
	classifier *sport.Classifier
	validate   *validator.Validate
	logger     *logging.Logger
}

func NewAssembler(provider FeedProvider, resolver *IdentityResolver, classifier *sport.Classifier, logger *logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assembler{
		provider:   provider,
		resolver:   resolver,
		classifier: classifier,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Assemble builds the full batch for one league listing. A returned error is
// fatal for the fixture; per-row problems are logged and the row dropped. A
// batch with no fixture rows means there was nothing playable to load.
func (a *Assembler) Assemble(ctx context.Context, lg league.League) (*record.Batch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Assembler.Assemble")
	defer span.End()

	fixtureID := strconv.Itoa(lg.ID)
	title := lg.TitleWithSeason
	year := league.SeasonYear(title)

	rawMatches, err := a.provider.FetchFixture(ctx, lg.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch fixture %s: %w", fixtureID, err)
	}

	matches := make([]RawMatch, 0, len(rawMatches))
	for _, m := range rawMatches {
		if skippableStatus(m.MatchStatus) {
			a.logger.InfoContext(ctx, "skipping unplayed match",
				"match_id", m.MatchID,
				"match_status", m.MatchStatus,
				"fixture_id", fixtureID,
			)
			continue
		}
		matches = append(matches, m)
	}

	category := a.classifier.Classify(lg.RegulationPeriods, squadIDUnion(matches), title, lg.ID)

	batch := &record.Batch{
		FixtureID: fixtureID,
		LeagueID:  lg.ID,
		Category:  category,
	}
	batch.Sport = a.sportInfo(category, fixtureID, title, year)

	if len(matches) == 0 {
		return batch, nil
	}

	a.collectSquads(ctx, batch, matches, title, year)
	a.collectFixtureRows(ctx, batch, matches)

	seenPlayers := map[string]struct{}{}
	playerMatchKeys := map[string]struct{}{}

	for _, m := range matches {
		scope := NewMatchScope(m.MatchID)
		if err := a.collectMatchStats(ctx, batch, m, scope, year, seenPlayers, playerMatchKeys); err != nil {
			return nil, err
		}
		if err := a.collectPeriods(ctx, batch, m, scope, playerMatchKeys); err != nil {
			return nil, err
		}
		if err := a.collectScoreFlow(ctx, batch, m, scope, playerMatchKeys); err != nil {
			return nil, err
		}
	}

	return batch, nil
}

func (a *Assembler) sportInfo(category sport.Category, fixtureID, title string, year *string) record.SportInfo {
	info := record.SportInfo{
		SportName:    string(category),
		FixtureID:    fixtureID,
		FixtureTitle: title,
		FixtureYear:  year,
	}
	if code, ok := sport.CodeFor(string(category)); ok {
		info.SportID = &code
		info.UniqueSportID = keys.SportKey(strconv.Itoa(code), fixtureID)
	} else {
		info.UniqueSportID = keys.SportKey("", fixtureID)
	}
	return info
}

func (a *Assembler) collectSquads(ctx context.Context, batch *record.Batch, matches []RawMatch, title string, year *string) {
	seen := map[string]struct{}{}
	add := func(squadID, squadName string) {
		squadName = squadNameOrUnknown(squadName)
		key := keys.SquadKey(squadID, squadName)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		row := record.SquadInfo{
			SquadID:       squadID,
			SquadName:     squadName,
			UniqueSquadID: key,
			FixtureTitle:  title,
			FixtureYear:   year,
		}
		if !a.validRecord(ctx, "squad_info", row, "unique_squad_id", key) {
			return
		}
		batch.Squads = append(batch.Squads, row)
	}

	for _, m := range matches {
		add(m.HomeSquadID, m.HomeSquadName)
		add(m.AwaySquadID, m.AwaySquadName)
	}
}

func (a *Assembler) collectFixtureRows(ctx context.Context, batch *record.Batch, matches []RawMatch) {
	for _, m := range matches {
		row := record.FixtureRow{
			FixtureID:       batch.FixtureID,
			MatchID:         m.MatchID,
			SportID:         batch.Sport.SportID,
			MatchName:       m.MatchName,
			MatchStatus:     m.MatchStatus,
			MatchType:       m.MatchType,
			RoundNumber:     m.RoundNumber,
			HomeSquadID:     m.HomeSquadID,
			HomeSquadName:   m.HomeSquadName,
			AwaySquadID:     m.AwaySquadID,
			AwaySquadName:   m.AwaySquadName,
			LocalStartTime:  m.LocalStartTime,
			Venue:           m.Venue,
			UniqueFixtureID: keys.FixtureKey(batch.FixtureID, m.MatchID),
			FixtureMatchKey: keys.FixtureMatchKey(m.MatchID, batch.FixtureID),
			UniqueSportID:   batch.Sport.UniqueSportID,
		}
		if !a.validRecord(ctx, "fixture", row, "match_id", m.MatchID) {
			continue
		}
		batch.Fixtures = append(batch.Fixtures, row)
	}
}

func (a *Assembler) collectMatchStats(ctx context.Context, batch *record.Batch, m RawMatch, scope *MatchScope, year *string, seenPlayers, playerMatchKeys map[string]struct{}) error {
	stats, err := a.fetchStats(ctx, batch.LeagueID, m.MatchID)
	if err != nil {
		return err
	}

	for _, raw := range stats {
		playerID, ok, err := a.resolver.Resolve(ctx, scope, candidateOf(raw.RawPlayerIdentity))
		if err != nil {
			return fmt.Errorf("resolve player in match %s: %w", m.MatchID, err)
		}
		if !ok {
			continue
		}

		squadName := squadNameOrUnknown(raw.SquadName)
		playerMatchKey := keys.PlayerMatchKey(m.MatchID, playerID)
		uniquePlayerID := keys.PlayerKey(playerID, raw.SquadID)
		uniqueSquadID := keys.SquadKey(raw.SquadID, squadName)

		stat := record.PlayerMatchStat{
			MatchID:          m.MatchID,
			PlayerID:         playerID,
			SquadID:          raw.SquadID,
			SquadName:        squadName,
			Firstname:        raw.Firstname,
			Surname:          raw.Surname,
			DisplayName:      raw.DisplayName,
			ShortDisplayName: raw.ShortDisplayName,
			Opponent:         opponentOf(m, raw.SquadID),
			RoundNumber:      m.RoundNumber,
			FixtureID:        batch.FixtureID,
			FixtureYear:      year,
			SportID:          batch.Sport.SportID,

			Goals:              raw.Goals,
			GoalAttempts:       raw.GoalAttempts,
			GoalAssists:        raw.GoalAssists,
			CentrePassReceives: raw.CentrePassReceives,
			Feeds:              raw.Feeds,
			Intercepts:         raw.Intercepts,
			Deflections:        raw.Deflections,
			Rebounds:           raw.Rebounds,
			Turnovers:          raw.Turnovers,
			Penalties:          raw.Penalties,
			MinutesPlayed:      raw.MinutesPlayed,

			UniquePlayerID:  uniquePlayerID,
			PlayerMatchKey:  playerMatchKey,
			UniqueSquadID:   uniqueSquadID,
			UniqueSportID:   batch.Sport.UniqueSportID,
			UniqueFixtureID: keys.FixtureKey(batch.FixtureID, m.MatchID),
		}
		if !a.validRecord(ctx, "match", stat, "unique_match_id", playerMatchKey) {
			continue
		}

		batch.MatchStats = append(batch.MatchStats, stat)
		playerMatchKeys[playerMatchKey] = struct{}{}

		if _, dup := seenPlayers[uniquePlayerID]; !dup {
			player := record.PlayerInfo{
				PlayerID:         playerID,
				Firstname:        raw.Firstname,
				Surname:          raw.Surname,
				DisplayName:      raw.DisplayName,
				ShortDisplayName: raw.ShortDisplayName,
				SquadName:        squadName,
				SquadID:          raw.SquadID,
				SportID:          batch.Sport.SportID,
				UniqueSquadID:    uniqueSquadID,
				UniquePlayerID:   uniquePlayerID,
			}
			if a.validRecord(ctx, "player_info", player, "unique_player_id", uniquePlayerID) {
				seenPlayers[uniquePlayerID] = struct{}{}
				batch.Players = append(batch.Players, player)
			}
		}
	}
	return nil
}

func (a *Assembler) collectPeriods(ctx context.Context, batch *record.Batch, m RawMatch, scope *MatchScope, playerMatchKeys map[string]struct{}) error {
	periods, err := a.fetchPeriods(ctx, batch.LeagueID, m.MatchID)
	if err != nil {
		return err
	}

	for _, raw := range periods {
		playerID, ok, err := a.resolver.Resolve(ctx, scope, candidateOf(raw.RawPlayerIdentity))
		if err != nil {
			return fmt.Errorf("resolve player in period data for match %s: %w", m.MatchID, err)
		}
		if !ok {
			continue
		}

		playerMatchKey := keys.PlayerMatchKey(m.MatchID, playerID)
		if _, present := playerMatchKeys[playerMatchKey]; !present {
			a.logger.WarnContext(ctx, "period row references a player with no match row",
				"unique_match_id", playerMatchKey,
				"match_id", m.MatchID,
			)
			continue
		}

		periodID := keys.PeriodKey(m.MatchID, strconv.Itoa(raw.Period))
		row := record.PeriodStat{
			MatchID:  m.MatchID,
			PlayerID: playerID,
			SquadID:  raw.SquadID,
			Period:   raw.Period,

			Goals:              raw.Goals,
			GoalAttempts:       raw.GoalAttempts,
			GoalAssists:        raw.GoalAssists,
			CentrePassReceives: raw.CentrePassReceives,
			Feeds:              raw.Feeds,
			Intercepts:         raw.Intercepts,
			Deflections:        raw.Deflections,
			Rebounds:           raw.Rebounds,
			Turnovers:          raw.Turnovers,
			Penalties:          raw.Penalties,

			PeriodID:        periodID,
			UniquePeriodID:  periodID,
			UniquePlayerID:  keys.PlayerKey(playerID, raw.SquadID),
			PlayerMatchKey:  playerMatchKey,
			UniqueSquadID:   keys.SquadKey(raw.SquadID, squadNameOrUnknown(raw.SquadName)),
			UniqueSportID:   batch.Sport.UniqueSportID,
			UniqueFixtureID: keys.FixtureKey(batch.FixtureID, m.MatchID),
		}
		if !a.validRecord(ctx, "period", row, "unique_period_id", periodID) {
			continue
		}
		batch.Periods = append(batch.Periods, row)
	}
	return nil
}

func (a *Assembler) collectScoreFlow(ctx context.Context, batch *record.Batch, m RawMatch, scope *MatchScope, playerMatchKeys map[string]struct{}) error {
	flows, err := a.fetchScoreFlow(ctx, batch.LeagueID, m.MatchID)
	if err != nil {
		return err
	}

	for i, raw := range flows {
		// The sequence is positional in the source document; rows dropped
		// below still consume their slot.
		scoreFlowID := keys.ScoreFlowKey(m.MatchID, i+1)

		playerID, ok, err := a.resolver.Resolve(ctx, scope, candidateOf(raw.RawPlayerIdentity))
		if err != nil {
			return fmt.Errorf("resolve player in score flow for match %s: %w", m.MatchID, err)
		}
		if !ok {
			continue
		}

		playerMatchKey := keys.PlayerMatchKey(m.MatchID, playerID)
		if _, present := playerMatchKeys[playerMatchKey]; !present {
			a.logger.WarnContext(ctx, "score flow row references a player with no match row",
				"unique_match_id", playerMatchKey,
				"match_id", m.MatchID,
			)
			continue
		}

		row := record.ScoreFlowEvent{
			MatchID:       m.MatchID,
			PlayerID:      playerID,
			SquadID:       raw.SquadID,
			Period:        raw.Period,
			PeriodSeconds: raw.PeriodSeconds,
			Position:      raw.Position,
			ScoreName:     raw.ScoreName,
			ScorePoints:   raw.ScorePoints,

			ScoreFlowID:     scoreFlowID,
			UniquePlayerID:  keys.PlayerKey(playerID, raw.SquadID),
			PlayerMatchKey:  playerMatchKey,
			UniqueSquadID:   keys.SquadKey(raw.SquadID, squadNameOrUnknown(raw.SquadName)),
			UniqueSportID:   batch.Sport.UniqueSportID,
			UniqueFixtureID: keys.FixtureKey(batch.FixtureID, m.MatchID),
		}
		if !a.validRecord(ctx, "score_flow", row, "score_flow_id", scoreFlowID) {
			continue
		}
		batch.ScoreFlow = append(batch.ScoreFlow, row)
	}
	return nil
}

func (a *Assembler) fetchStats(ctx context.Context, leagueID int, matchID string) ([]RawPlayerStat, error) {
	stats, err := a.provider.FetchMatch(ctx, leagueID, matchID)
	if err != nil {
		if errors.Is(err, ErrFeedUnavailable) {
			a.logger.ErrorContext(ctx, "match data unavailable, skipping dataset",
				"match_id", matchID, "error", err)
			return nil, nil
		}
		return nil, err
	}
	return stats, nil
}

func (a *Assembler) fetchPeriods(ctx context.Context, leagueID int, matchID string) ([]RawPeriodStat, error) {
	periods, err := a.provider.FetchPeriods(ctx, leagueID, matchID)
	if err != nil {
		if errors.Is(err, ErrFeedUnavailable) {
			a.logger.ErrorContext(ctx, "period data unavailable, skipping dataset",
				"match_id", matchID, "error", err)
			return nil, nil
		}
		return nil, err
	}
	return periods, nil
}

func (a *Assembler) fetchScoreFlow(ctx context.Context, leagueID int, matchID string) ([]RawScoreFlow, error) {
	flows, err := a.provider.FetchScoreFlow(ctx, leagueID, matchID)
	if err != nil {
		if errors.Is(err, ErrFeedUnavailable) {
			a.logger.ErrorContext(ctx, "score flow data unavailable, skipping dataset",
				"match_id", matchID, "error", err)
			return nil, nil
		}
		return nil, err
	}
	return flows, nil
}

func (a *Assembler) validRecord(ctx context.Context, table string, model any, keyName, keyValue string) bool {
	if err := a.validate.Struct(model); err != nil {
		a.logger.WarnContext(ctx, "dropping record that failed validation",
			"table", table,
			keyName, keyValue,
			"error", err,
		)
		return false
	}
	return true
}

func candidateOf(identity RawPlayerIdentity) PlayerCandidate {
	return PlayerCandidate{
		PlayerID:  identity.PlayerID,
		Firstname: identity.Firstname,
		Surname:   identity.Surname,
		SquadName: identity.SquadName,
	}
}

func opponentOf(m RawMatch, squadID string) string {
	if squadID == m.HomeSquadID {
		return m.AwaySquadName
	}
	if squadID == m.AwaySquadID {
		return m.HomeSquadName
	}
	return ""
}

// squadNameOrUnknown substitutes the sentinel squad name whenever the feed
// leaves the name blank, so every pass derives the same uniqueSquadId.
func squadNameOrUnknown(name string) string {
	if strings.TrimSpace(name) == "" {
		return keys.UnknownSquadName
	}
	return name
}

func skippableStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "scheduled", "incomplete":
		return true
	}
	return false
}

func squadIDUnion(matches []RawMatch) []int {
	seen := map[int]struct{}{}
	var ids []int
	for _, m := range matches {
		for _, raw := range []string{m.HomeSquadID, m.AwaySquadID} {
			id, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

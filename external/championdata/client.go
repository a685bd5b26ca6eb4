package championdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/powerdata-io/ingest/internal/domain/keys"
	"github.com/powerdata-io/ingest/internal/domain/league"
	"github.com/powerdata-io/ingest/internal/platform/cache"
	"github.com/powerdata-io/ingest/internal/platform/logging"
	"github.com/powerdata-io/ingest/internal/platform/resilience"
	"github.com/powerdata-io/ingest/internal/usecase"
)

const (
	defaultBaseURL     = "https://mc.championdata.com/data"
	defaultMatchDocTTL = 10 * time.Minute
	maxResponseBytes   = 16 << 20
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	MatchDocTTL    time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the public Champion Data match centre feed. The match
// document carries three of the datasets the pipeline consumes, so it is
// fetched once per match and cached for the period and score-flow passes.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	matchDocs      *cache.Store
}

var _ usecase.FeedProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	ttl := cfg.MatchDocTTL
	if ttl <= 0 {
		ttl = defaultMatchDocTTL
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     retries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		matchDocs:      cache.NewStore(ttl),
	}
}

func (c *Client) FetchLeagues(ctx context.Context) ([]league.League, error) {
	var envelope competitionsEnvelope
	if err := c.doJSON(ctx, "/competitions.json", &envelope); err != nil {
		return nil, fmt.Errorf("fetch competitions: %w", err)
	}

	competitions := envelope.CompetitionDetails.Competition.Items
	if len(competitions) == 0 {
		return nil, fmt.Errorf("%w: competitions document has no competition entries", usecase.ErrFeedUnavailable)
	}

	leagues := make([]league.League, 0, len(competitions))
	for _, comp := range competitions {
		name := strings.TrimSpace(comp.Name)
		season := comp.Season.String()
		leagues = append(leagues, league.League{
			ID:                comp.ID.Int(),
			Name:              name,
			Season:            season,
			TitleWithSeason:   league.DisplayTitle(name, season),
			RegulationPeriods: comp.RegulationPeriods.Int(),
		})
	}
	return leagues, nil
}

func (c *Client) FetchFixture(ctx context.Context, leagueID int) ([]usecase.RawMatch, error) {
	var envelope fixtureEnvelope
	path := fmt.Sprintf("/%d/fixture.json", leagueID)
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch fixture for league %d: %w", leagueID, err)
	}

	wire := envelope.Fixture.Match.Items
	matches := make([]usecase.RawMatch, 0, len(wire))
	for _, m := range wire {
		matches = append(matches, usecase.RawMatch{
			MatchID:        m.MatchID.String(),
			MatchName:      m.MatchName,
			MatchStatus:    m.MatchStatus,
			MatchType:      m.MatchType,
			RoundNumber:    m.RoundNumber.Int(),
			HomeSquadID:    m.HomeSquadID.String(),
			HomeSquadName:  m.HomeSquadName,
			AwaySquadID:    m.AwaySquadID.String(),
			AwaySquadName:  m.AwaySquadName,
			LocalStartTime: m.LocalStartTime,
			Venue:          m.VenueName,
		})
	}
	return matches, nil
}

func (c *Client) FetchMatch(ctx context.Context, leagueID int, matchID string) ([]usecase.RawPlayerStat, error) {
	doc, err := c.matchDocument(ctx, leagueID, matchID)
	if err != nil {
		return nil, err
	}

	rows := doc.PlayerStats.Player.Items
	if len(rows) == 0 {
		return nil, nil
	}

	players := playerInfoIndex(doc)
	squads := squadNameIndex(doc)

	out := make([]usecase.RawPlayerStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.RawPlayerStat{
			RawPlayerIdentity: identityFor(row.PlayerID, row.SquadID, players, squads),
			RawStatLine:       statLineOf(row),
			MinutesPlayed:     row.MinutesPlayed.Int(),
		})
	}
	return out, nil
}

func (c *Client) FetchPeriods(ctx context.Context, leagueID int, matchID string) ([]usecase.RawPeriodStat, error) {
	doc, err := c.matchDocument(ctx, leagueID, matchID)
	if err != nil {
		return nil, err
	}

	rows := doc.PlayerPeriodStats.Player.Items
	if len(rows) == 0 {
		return nil, nil
	}

	players := playerInfoIndex(doc)
	squads := squadNameIndex(doc)

	out := make([]usecase.RawPeriodStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.RawPeriodStat{
			RawPlayerIdentity: identityFor(row.PlayerID, row.SquadID, players, squads),
			RawStatLine:       statLineOf(row),
			Period:            row.Period.Int(),
		})
	}
	return out, nil
}

func (c *Client) FetchScoreFlow(ctx context.Context, leagueID int, matchID string) ([]usecase.RawScoreFlow, error) {
	doc, err := c.matchDocument(ctx, leagueID, matchID)
	if err != nil {
		return nil, err
	}

	scores := doc.ScoreFlow.Score.Items
	if len(scores) == 0 {
		return nil, nil
	}

	players := playerInfoIndex(doc)
	squads := squadNameIndex(doc)

	out := make([]usecase.RawScoreFlow, 0, len(scores))
	for _, score := range scores {
		out = append(out, usecase.RawScoreFlow{
			RawPlayerIdentity: identityFor(score.PlayerID, score.SquadID, players, squads),
			Period:            score.Period.Int(),
			PeriodSeconds:     score.PeriodSeconds.Int(),
			Position:          score.PositionCode,
			ScoreName:         score.ScoreName,
			ScorePoints:       score.ScorePoints.Int(),
		})
	}
	return out, nil
}

func (c *Client) matchDocument(ctx context.Context, leagueID int, matchID string) (*wireMatchStats, error) {
	path := fmt.Sprintf("/%d/%s.json", leagueID, matchID)
	value, err := c.matchDocs.GetOrLoad(ctx, path, func(ctx context.Context) (any, error) {
		var envelope matchEnvelope
		if err := c.doJSON(ctx, path, &envelope); err != nil {
			return nil, fmt.Errorf("fetch match %s in league %d: %w", matchID, leagueID, err)
		}
		return &envelope.MatchStats, nil
	})
	if err != nil {
		return nil, err
	}
	doc, ok := value.(*wireMatchStats)
	if !ok {
		return nil, fmt.Errorf("unexpected match document cache payload type %T", value)
	}
	return doc, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "feed circuit breaker rejected request",
				"state", c.breaker.State(), "path", path)
			return fmt.Errorf("%w: feed temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, c.baseURL+path)
		if c.circuitEnabled {
			if reqErr != nil {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode feed payload: %v", usecase.ErrFeedUnavailable, err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", usecase.ErrFeedUnavailable, err)
		} else {
			buf := bytebufferpool.Get()
			_, readErr := io.Copy(buf, io.LimitReader(resp.Body, maxResponseBytes))
			raw := append([]byte(nil), buf.B...)
			bytebufferpool.Put(buf)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", usecase.ErrFeedUnavailable, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			default:
				lastErr = fmt.Errorf("%w: feed status=%d", usecase.ErrFeedUnavailable, resp.StatusCode)
				if !isRetryableStatus(resp.StatusCode) {
					return nil, lastErr
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func playerInfoIndex(doc *wireMatchStats) map[string]wirePlayerInfo {
	index := make(map[string]wirePlayerInfo, len(doc.PlayerInfo.Player.Items))
	for _, info := range doc.PlayerInfo.Player.Items {
		index[info.PlayerID.String()] = info
	}
	return index
}

func squadNameIndex(doc *wireMatchStats) map[string]string {
	index := make(map[string]string, len(doc.TeamInfo.Team.Items))
	for _, team := range doc.TeamInfo.Team.Items {
		index[team.SquadID.String()] = team.SquadName
	}
	return index
}

func identityFor(playerID, squadID flexString, players map[string]wirePlayerInfo, squads map[string]string) usecase.RawPlayerIdentity {
	identity := usecase.RawPlayerIdentity{
		PlayerID: playerID.String(),
		SquadID:  squadID.String(),
	}
	if info, ok := players[playerID.String()]; ok {
		identity.Firstname = info.Firstname
		identity.Surname = info.Surname
		identity.DisplayName = info.DisplayName
		identity.ShortDisplayName = info.ShortDisplayName
	}
	if name, ok := squads[squadID.String()]; ok && strings.TrimSpace(name) != "" {
		identity.SquadName = name
	} else {
		identity.SquadName = keys.UnknownSquadName
	}
	return identity
}

func statLineOf(row wireStatRow) usecase.RawStatLine {
	return usecase.RawStatLine{
		Goals:              row.Goals.Int(),
		GoalAttempts:       row.GoalAttempts.Int(),
		GoalAssists:        row.GoalAssists.Int(),
		CentrePassReceives: row.CentrePassReceives.Int(),
		Feeds:              row.Feeds.Int(),
		Intercepts:         row.Intercepts.Int(),
		Deflections:        row.Deflections.Int(),
		Rebounds:           row.Rebounds.Int(),
		Turnovers:          row.Turnovers.Int(),
		Penalties:          row.Penalties.Int(),
	}
}

package championdata

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// The feed is inconsistent about scalar types (ids arrive as numbers or
// strings depending on the document) and collapses single-element lists to
// a bare object. flexString, flexInt, and listOf absorb both shapes.

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := sonic.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	*s = flexString(string(data))
	return nil
}

func (s flexString) String() string { return string(s) }

type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var v string
		if err := sonic.Unmarshal(data, &v); err != nil {
			return err
		}
		raw = strings.TrimSpace(v)
		if raw == "" {
			*n = 0
			return nil
		}
	}
	// Some numeric fields arrive as floats.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*n = flexInt(int(f))
	return nil
}

func (n flexInt) Int() int { return int(n) }

type listOf[T any] struct {
	Items []T
}

func (l *listOf[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		l.Items = nil
		return nil
	}
	if data[0] == '[' {
		return sonic.Unmarshal(data, &l.Items)
	}
	var single T
	if err := sonic.Unmarshal(data, &single); err != nil {
		return err
	}
	l.Items = []T{single}
	return nil
}

// competitions.json

type competitionsEnvelope struct {
	CompetitionDetails struct {
		Competition listOf[wireCompetition] `json:"competition"`
	} `json:"competitionDetails"`
}

type wireCompetition struct {
	ID                flexInt    `json:"id"`
	Name              string     `json:"name"`
	Season            flexString `json:"season"`
	RegulationPeriods flexInt    `json:"regulationPeriods"`
}

// {league}/fixture.json

type fixtureEnvelope struct {
	Fixture struct {
		Match listOf[wireMatch] `json:"match"`
	} `json:"fixture"`
}

type wireMatch struct {
	MatchID        flexString `json:"matchId"`
	MatchName      string     `json:"matchName"`
	MatchStatus    string     `json:"matchStatus"`
	MatchType      string     `json:"matchType"`
	RoundNumber    flexInt    `json:"roundNumber"`
	HomeSquadID    flexString `json:"homeSquadId"`
	HomeSquadName  string     `json:"homeSquadName"`
	AwaySquadID    flexString `json:"awaySquadId"`
	AwaySquadName  string     `json:"awaySquadName"`
	LocalStartTime string     `json:"localStartTime"`
	VenueName      string     `json:"venueName"`
}

// {league}/{match}.json

type matchEnvelope struct {
	MatchStats wireMatchStats `json:"matchStats"`
}

type wireMatchStats struct {
	MatchInfo struct {
		HomeSquadID flexString `json:"homeSquadId"`
		AwaySquadID flexString `json:"awaySquadId"`
	} `json:"matchInfo"`
	TeamInfo struct {
		Team listOf[wireTeam] `json:"team"`
	} `json:"teamInfo"`
	PlayerInfo struct {
		Player listOf[wirePlayerInfo] `json:"player"`
	} `json:"playerInfo"`
	PlayerStats struct {
		Player listOf[wireStatRow] `json:"player"`
	} `json:"playerStats"`
	PlayerPeriodStats struct {
		Player listOf[wireStatRow] `json:"player"`
	} `json:"playerPeriodStats"`
	ScoreFlow struct {
		Score listOf[wireScore] `json:"score"`
	} `json:"scoreFlow"`
}

type wireTeam struct {
	SquadID   flexString `json:"squadId"`
	SquadName string     `json:"squadName"`
}

type wirePlayerInfo struct {
	PlayerID         flexString `json:"playerId"`
	Firstname        string     `json:"firstname"`
	Surname          string     `json:"surname"`
	DisplayName      string     `json:"displayName"`
	ShortDisplayName string     `json:"shortDisplayName"`
}

type wireStatRow struct {
	PlayerID flexString `json:"playerId"`
	SquadID  flexString `json:"squadId"`
	Period   flexInt    `json:"period"`

	Goals              flexInt `json:"goals"`
	GoalAttempts       flexInt `json:"goalAttempts"`
	GoalAssists        flexInt `json:"goalAssists"`
	CentrePassReceives flexInt `json:"centrePassReceives"`
	Feeds              flexInt `json:"feeds"`
	Intercepts         flexInt `json:"intercepts"`
	Deflections        flexInt `json:"deflections"`
	Rebounds           flexInt `json:"rebounds"`
	Turnovers          flexInt `json:"turnovers"`
	Penalties          flexInt `json:"penalties"`
	MinutesPlayed      flexInt `json:"minutesPlayed"`
}

type wireScore struct {
	PlayerID      flexString `json:"playerId"`
	SquadID       flexString `json:"squadId"`
	Period        flexInt    `json:"period"`
	PeriodSeconds flexInt    `json:"periodSeconds"`
	PositionCode  string     `json:"positionCode"`
	ScoreName     string     `json:"scoreName"`
	ScorePoints   flexInt    `json:"scorepoints"`
}

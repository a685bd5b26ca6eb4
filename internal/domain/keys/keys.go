// Package keys derives the composite string identifiers that stitch the
// feed's tables together. The feed does not key most entities consistently,
// so every cross-table reference is a key built here.
package keys

import (
	"strconv"
	"strings"
)

// Unknown is the whole-key sentinel: if any operand of a composite key is
// missing, the entire key renders as Unknown rather than a partial key. This
// funnels all unidentifiable records into a single collision bucket that
// duplicate detection can reason about.
const Unknown = "Unknown"

// UnknownSquadName is the placeholder squad name. Unlike Unknown it is a
// legitimate key operand: "71-Unknown Squad" is a valid squad key.
const UnknownSquadName = "Unknown Squad"

// FixtureKey identifies one match row within a fixture: fixtureId-matchId.
func FixtureKey(fixtureID, matchID string) string {
	return join("-", fixtureID, matchID)
}

// FixtureMatchKey identifies a match at fixture level: matchId-fixtureId.
// Distinct from PlayerMatchKey; the source feed reused one name for both.
func FixtureMatchKey(matchID, fixtureID string) string {
	return join("-", matchID, fixtureID)
}

// PlayerMatchKey identifies one player's appearance in a match:
// matchId-playerId. Used by the per-player statistics tables and by the
// cross-reference check that guards period and score-flow rows.
func PlayerMatchKey(matchID, playerID string) string {
	return join("-", matchID, playerID)
}

// SquadKey is squadId-squadName.
func SquadKey(squadID, squadName string) string {
	return join("-", squadID, squadName)
}

// PlayerKey is playerId-squadId.
func PlayerKey(playerID, squadID string) string {
	return join("-", playerID, squadID)
}

// SportKey is sportId-fixtureId; Unknown when the category is unmapped.
func SportKey(sportID, fixtureID string) string {
	return join("-", sportID, fixtureID)
}

// PeriodKey is matchId_periodNumber. The period number is part of the id,
// not a separate dimension key.
func PeriodKey(matchID, periodNumber string) string {
	return join("_", matchID, periodNumber)
}

// ScoreFlowKey is matchId_flow_{n}, n 1-based in source-record order.
func ScoreFlowKey(matchID string, sequence int) string {
	if missing(matchID) || sequence < 1 {
		return Unknown
	}
	return matchID + "_flow_" + strconv.Itoa(sequence)
}

func join(sep string, parts ...string) string {
	for _, part := range parts {
		if missing(part) {
			return Unknown
		}
	}
	return strings.Join(parts, sep)
}

func missing(v string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == Unknown
}

// Package playerref exposes the static player reference table used to
// repair rows whose feed player id is missing or invalid.
package playerref

import "context"

// Player is one row of the reference table.
type Player struct {
	PlayerID  int64
	Firstname string
	Surname   string
	SquadName string
}

// Repository looks up reference player ids. Matching is case-insensitive on
// both names; squadName narrows the match when non-empty. Implementations
// return ids in a deterministic order so ambiguous matches resolve stably.
type Repository interface {
	FindPlayerIDs(ctx context.Context, firstname, surname, squadName string) ([]int64, error)
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	qb "github.com/powerdata-io/ingest/internal/platform/querybuilder"
)

// PlayerRefRepository answers name-based lookups against the static player
// reference table.
type PlayerRefRepository struct {
	db *sqlx.DB
}

func NewPlayerRefRepository(db *sqlx.DB) *PlayerRefRepository {
	return &PlayerRefRepository{db: db}
}

// FindPlayerIDs matches case-insensitively on first and last name; a
// non-empty squad name narrows the match further. Results come back ordered
// by player id so callers picking the first row are deterministic.
func (r *PlayerRefRepository) FindPlayerIDs(ctx context.Context, firstname, surname, squadName string) ([]int64, error) {
	conds := []qb.Condition{
		qb.EqFold("firstname", firstname),
		qb.EqFold("surname", surname),
	}
	if strings.TrimSpace(squadName) != "" {
		conds = append(conds, qb.EqFold("squadName", squadName))
	}

	query, args, err := qb.Select(`"playerId"`).
		From("static_player_info").
		Where(conds...).
		OrderBy(`"playerId"`).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build player reference query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select player reference ids: %w", err)
	}
	return ids, nil
}

package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/powerdata-io/ingest/internal/domain/keys"
	"github.com/powerdata-io/ingest/internal/domain/playerref"
	"github.com/powerdata-io/ingest/internal/platform/cache"
	"github.com/powerdata-io/ingest/internal/platform/logging"
)

// ResolutionPolicy selects what happens when a player identity cannot be
// recovered from the reference table. The policies are mutually exclusive;
// one is chosen at configuration time for the whole run.
type ResolutionPolicy string

const (
	// PolicyReject drops the unresolvable row.
	PolicyReject ResolutionPolicy = "reject"
	// PolicySynthesize allocates unknownPlayer{n} ids, n strictly
	// increasing per match.
	PolicySynthesize ResolutionPolicy = "synthesize"
)

func ParseResolutionPolicy(raw string) (ResolutionPolicy, error) {
	switch ResolutionPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case PolicyReject, "":
		return PolicyReject, nil
	case PolicySynthesize:
		return PolicySynthesize, nil
	default:
		return "", fmt.Errorf("%w: unknown resolution policy %q", ErrInvalidInput, raw)
	}
}

// PlayerCandidate is the identity portion of a raw feed row as seen by the
// resolver.
type PlayerCandidate struct {
	PlayerID  string
	Firstname string
	Surname   string
	SquadName string
}

// MatchScope carries the per-match synthetic id counter. One scope is
// created per match and shared by the match, period, and score-flow passes,
// so the same unresolvable identity keeps one synthetic id across passes.
type MatchScope struct {
	MatchID   string
	nextAlloc int
	assigned  map[string]string
}

func NewMatchScope(matchID string) *MatchScope {
	return &MatchScope{MatchID: matchID, assigned: make(map[string]string)}
}

func (s *MatchScope) allocate(identity string) string {
	if identity != "" {
		if id, ok := s.assigned[identity]; ok {
			return id
		}
	}
	s.nextAlloc++
	id := "unknownPlayer" + strconv.Itoa(s.nextAlloc)
	if identity != "" {
		s.assigned[identity] = id
	}
	return id
}

// IdentityResolver produces a definitive player id for a candidate row.
// Reference lookups are memoized per run: the same missing identity shows
// up again in the period and score-flow passes of the same match.
type IdentityResolver struct {
	refs   playerref.Repository
	lookup *cache.Store
	policy ResolutionPolicy
	logger *logging.Logger
}

func NewIdentityResolver(refs playerref.Repository, lookup *cache.Store, policy ResolutionPolicy, logger *logging.Logger) *IdentityResolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	if lookup == nil {
		lookup = cache.NewStore(0)
	}
	if policy == "" {
		policy = PolicyReject
	}
	return &IdentityResolver{
		refs:   refs,
		lookup: lookup,
		policy: policy,
		logger: logger,
	}
}

func (r *IdentityResolver) Policy() ResolutionPolicy {
	return r.policy
}

// Resolve returns the definitive player id for the candidate. ok is false
// when the row must be dropped (reject policy only). A non-nil error means
// the reference lookup itself failed and the fixture cannot proceed.
func (r *IdentityResolver) Resolve(ctx context.Context, scope *MatchScope, candidate PlayerCandidate) (string, bool, error) {
	if ValidPlayerID(candidate.PlayerID) {
		return candidate.PlayerID, true, nil
	}

	firstname := strings.TrimSpace(candidate.Firstname)
	surname := strings.TrimSpace(candidate.Surname)

	identity := strings.ToLower(firstname + "|" + surname + "|" + strings.TrimSpace(candidate.SquadName))

	if firstname == "" || surname == "" {
		r.logger.WarnContext(ctx, "player row has invalid id and no usable name",
			"player_id", candidate.PlayerID,
			"match_id", scope.MatchID,
		)
		return r.fallback(ctx, scope, "")
	}

	ids, err := r.findReferenceIDs(ctx, firstname, surname, candidate.SquadName)
	if err != nil {
		return "", false, fmt.Errorf("reference lookup for %s %s: %w", firstname, surname, err)
	}

	switch len(ids) {
	case 0:
		r.logger.WarnContext(ctx, "no reference player id found",
			"firstname", firstname,
			"surname", surname,
			"squad_name", candidate.SquadName,
			"match_id", scope.MatchID,
		)
		return r.fallback(ctx, scope, identity)
	case 1:
		return strconv.FormatInt(ids[0], 10), true, nil
	default:
		r.logger.WarnContext(ctx, "ambiguous reference match, using first row",
			"firstname", firstname,
			"surname", surname,
			"squad_name", candidate.SquadName,
			"candidates", len(ids),
		)
		return strconv.FormatInt(ids[0], 10), true, nil
	}
}

func (r *IdentityResolver) fallback(ctx context.Context, scope *MatchScope, identity string) (string, bool, error) {
	if r.policy == PolicySynthesize {
		id := scope.allocate(identity)
		r.logger.InfoContext(ctx, "allocated synthetic player id",
			"player_id", id,
			"match_id", scope.MatchID,
		)
		return id, true, nil
	}
	return "", false, nil
}

func (r *IdentityResolver) findReferenceIDs(ctx context.Context, firstname, surname, squadName string) ([]int64, error) {
	// The squad name only narrows the lookup when it carries information.
	narrowed := strings.TrimSpace(squadName)
	if strings.EqualFold(narrowed, keys.UnknownSquadName) {
		narrowed = ""
	}

	key := strings.ToLower("ref:" + firstname + "|" + surname + "|" + narrowed)
	value, err := r.lookup.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.refs.FindPlayerIDs(ctx, firstname, surname, narrowed)
	})
	if err != nil {
		return nil, err
	}

	ids, ok := value.([]int64)
	if !ok {
		return nil, fmt.Errorf("unexpected lookup cache payload type %T", value)
	}
	return ids, nil
}

// ValidPlayerID reports whether a raw feed player id can be used as-is: a
// positive integer string that is not the literal "0".
func ValidPlayerID(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "0" {
		return false
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	return err == nil && n > 0
}

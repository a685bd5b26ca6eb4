package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/powerdata-io/ingest/internal/platform/cache"
	"github.com/powerdata-io/ingest/internal/platform/logging"
)

type stubPlayerRefs struct {
	ids   map[string][]int64
	err   error
	calls []string
}

func (s *stubPlayerRefs) FindPlayerIDs(_ context.Context, firstname, surname, squadName string) ([]int64, error) {
	key := firstname + "|" + surname + "|" + squadName
	s.calls = append(s.calls, key)
	if s.err != nil {
		return nil, s.err
	}
	return s.ids[key], nil
}

func newTestResolver(refs *stubPlayerRefs, policy ResolutionPolicy) *IdentityResolver {
	return NewIdentityResolver(refs, cache.NewStore(0), policy, logging.NewNop())
}

func TestValidPlayerID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want bool
	}{
		{"80826", true},
		{"1", true},
		{" 42 ", true},
		{"0", false},
		{"", false},
		{"-5", false},
		{"abc", false},
		{"12.5", false},
	}
	for _, tc := range cases {
		if got := ValidPlayerID(tc.raw); got != tc.want {
			t.Errorf("ValidPlayerID(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestResolveValidIDPassesThrough(t *testing.T) {
	t.Parallel()

	refs := &stubPlayerRefs{}
	r := newTestResolver(refs, PolicyReject)
	scope := NewMatchScope("111")

	id, ok, err := r.Resolve(context.Background(), scope, PlayerCandidate{PlayerID: "80826"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || id != "80826" {
		t.Fatalf("got (%q, %v), want (80826, true)", id, ok)
	}
	if len(refs.calls) != 0 {
		t.Fatalf("valid id must not hit the reference table, got %d calls", len(refs.calls))
	}
}

func TestResolveSingleReferenceMatch(t *testing.T) {
	t.Parallel()

	refs := &stubPlayerRefs{ids: map[string][]int64{
		"Laura|Langman|Mystics": {1004},
	}}
	r := newTestResolver(refs, PolicyReject)

	id, ok, err := r.Resolve(context.Background(), NewMatchScope("111"), PlayerCandidate{
		PlayerID:  "0",
		Firstname: "Laura",
		Surname:   "Langman",
		SquadName: "Mystics",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || id != "1004" {
		t.Fatalf("got (%q, %v), want (1004, true)", id, ok)
	}
}

func TestResolveAmbiguousUsesFirst(t *testing.T) {
	t.Parallel()

	refs := &stubPlayerRefs{ids: map[string][]int64{
		"Jo|Harten|Giants": {2001, 2002, 2003},
	}}
	r := newTestResolver(refs, PolicyReject)

	id, ok, err := r.Resolve(context.Background(), NewMatchScope("111"), PlayerCandidate{
		Firstname: "Jo",
		Surname:   "Harten",
		SquadName: "Giants",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || id != "2001" {
		t.Fatalf("got (%q, %v), want (2001, true)", id, ok)
	}
}

func TestResolveUnknownSquadDoesNotNarrow(t *testing.T) {
	t.Parallel()

	refs := &stubPlayerRefs{ids: map[string][]int64{
		"Maria|Folau|": {3001},
	}}
	r := newTestResolver(refs, PolicyReject)

	id, ok, err := r.Resolve(context.Background(), NewMatchScope("111"), PlayerCandidate{
		Firstname: "Maria",
		Surname:   "Folau",
		SquadName: "Unknown Squad",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || id != "3001" {
		t.Fatalf("got (%q, %v), want (3001, true)", id, ok)
	}
}

func TestResolveRejectPolicyDropsMiss(t *testing.T) {
	t.Parallel()

	refs := &stubPlayerRefs{ids: map[string][]int64{}}
	r := newTestResolver(refs, PolicyReject)

	id, ok, err := r.Resolve(context.Background(), NewMatchScope("111"), PlayerCandidate{
		Firstname: "No",
		Surname:   "Body",
		SquadName: "Swifts",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok || id != "" {
		t.Fatalf("miss under reject policy must drop, got (%q, %v)", id, ok)
	}
}

func TestResolveSynthesizeAllocatesPerMatchCounter(t *testing.T) {
	t.Parallel()

	refs := &stubPlayerRefs{ids: map[string][]int64{}}
	r := newTestResolver(refs, PolicySynthesize)
	scope := NewMatchScope("111")

	for i, want := range []string{"unknownPlayer1", "unknownPlayer2"} {
		id, ok, err := r.Resolve(context.Background(), scope, PlayerCandidate{
			Firstname: "Ghost",
			Surname:   "Player" + want,
			SquadName: "Swifts",
		})
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
		if !ok || id != want {
			t.Fatalf("Resolve #%d = (%q, %v), want (%q, true)", i, id, ok, want)
		}
	}

	// A fresh match scope restarts the counter.
	other := NewMatchScope("222")
	id, ok, err := r.Resolve(context.Background(), other, PlayerCandidate{
		Firstname: "Ghost",
		Surname:   "Elsewhere",
		SquadName: "Swifts",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || id != "unknownPlayer1" {
		t.Fatalf("new scope should restart counter, got (%q, %v)", id, ok)
	}
}

func TestResolveSynthesizeStableAcrossPasses(t *testing.T) {
	t.Parallel()

	refs := &stubPlayerRefs{ids: map[string][]int64{}}
	r := newTestResolver(refs, PolicySynthesize)
	scope := NewMatchScope("111")

	candidate := PlayerCandidate{Firstname: "Ghost", Surname: "Player", SquadName: "Swifts"}
	first, _, err := r.Resolve(context.Background(), scope, candidate)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, _, err := r.Resolve(context.Background(), scope, candidate)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first != second {
		t.Fatalf("same identity in same match got %q then %q", first, second)
	}
}

func TestResolveLookupErrorIsFatal(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("connection reset")
	refs := &stubPlayerRefs{err: wantErr}
	r := newTestResolver(refs, PolicySynthesize)

	_, _, err := r.Resolve(context.Background(), NewMatchScope("111"), PlayerCandidate{
		Firstname: "Laura",
		Surname:   "Langman",
		SquadName: "Mystics",
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("lookup failure must propagate, got %v", err)
	}
}

func TestResolveMemoizesLookups(t *testing.T) {
	t.Parallel()

	refs := &stubPlayerRefs{ids: map[string][]int64{
		"Laura|Langman|Mystics": {1004},
	}}
	r := newTestResolver(refs, PolicyReject)
	scope := NewMatchScope("111")

	candidate := PlayerCandidate{Firstname: "Laura", Surname: "Langman", SquadName: "Mystics"}
	for i := 0; i < 3; i++ {
		if _, _, err := r.Resolve(context.Background(), scope, candidate); err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
	}
	if len(refs.calls) != 1 {
		t.Fatalf("expected 1 reference call after memoization, got %d", len(refs.calls))
	}
}

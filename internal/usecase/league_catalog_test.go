package usecase

import (
	"context"
	"testing"

	"github.com/powerdata-io/ingest/internal/domain/league"
)

func TestLeagueCatalogPopulate(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{leagues: []league.League{anzLeague()}}
	catalog := NewLeagueCatalog(feed)

	if catalog.IsPopulated() {
		t.Fatal("catalog must start unpopulated")
	}
	if got := catalog.TitleWithSeason(10083); got != "Unknown League" {
		t.Fatalf("unpopulated lookup = %q, want Unknown League", got)
	}

	if err := catalog.Populate(context.Background()); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if !catalog.IsPopulated() {
		t.Fatal("catalog must report populated")
	}
	if got := catalog.TitleWithSeason(10083); got != "ANZ Premiership (2023)" {
		t.Fatalf("TitleWithSeason = %q", got)
	}
	if got := catalog.TitleWithSeason(999); got != "Unknown League" {
		t.Fatalf("unknown id = %q, want Unknown League", got)
	}
	if got := catalog.Leagues(); len(got) != 1 {
		t.Fatalf("leagues = %d, want 1", len(got))
	}
}

package sport

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"  AFL   Mens ", "afl mens"},
		{"Netball\tWomens  NZ", "netball womens nz"},
		{"netball womens australia", "netball womens australia"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCodeFor(t *testing.T) {
	t.Parallel()

	code, ok := CodeFor("  Netball   Womens Australia ")
	if !ok || code != 9 {
		t.Fatalf("expected code 9, got %d ok=%v", code, ok)
	}

	if _, ok := CodeFor("underwater hockey"); ok {
		t.Fatalf("expected unmapped category to miss")
	}
}

func TestTable(t *testing.T) {
	t.Parallel()

	if got := Table(CategoryNetballWomensNZ, "score_flow"); got != "netball_womens_nz_score_flow" {
		t.Fatalf("unexpected table name: %q", got)
	}
}

func TestClassifier_TitleFamilies(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultRules())

	cases := []struct {
		title   string
		periods int
		want    Category
	}{
		{"AFL Womens (2023)", 4, CategoryAFLWomens},
		{"AFL Premiership (2023)", 4, CategoryAFLMens},
		{"NRL Womens Premiership (2023)", 4, CategoryNRLWomens},
		{"NRL Telstra Premiership Mens (2023)", 4, CategoryNRLMens},
		{"NRL State Cup (2023)", 4, CategoryNRLUnknown},
		{"FAST5 Netball World Series Womens (2022)", 2, CategoryFast5Womens},
		{"Netball Mens Championship (2023)", 4, CategoryNetballMens},
		{"ANZ Premiership NZ Womens (2023)", 4, CategoryNetballWomensNZ},
		{"ANZ Premiership (2023)", 4, CategoryNetballWomensNZ},
		{"Suncorp Super Netball Womens (2023)", 4, CategoryNetballWomensAU},
		{"Quad Series Womens (2023)", 4, CategoryNetballWomensIntl},
		{"Regional Netball Cup (2023)", 4, CategoryNetballUnknown},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.periods, nil, tc.title, 11108); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestClassifier_SquadRangeFallback(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultRules())

	if got := c.Classify(4, []int{9001, 9002}, "Premiership Womens (2023)", 1); got != CategoryNetballWomensNZ {
		t.Fatalf("expected nz by squad range, got %q", got)
	}
	if got := c.Classify(4, []int{8010, 8020}, "League Womens (2023)", 1); got != CategoryNetballWomensAU {
		t.Fatalf("expected australia by squad range, got %q", got)
	}
	// Mixed ranges cannot pick a region.
	if got := c.Classify(4, []int{8010, 9001}, "League Womens (2023)", 1); got != CategoryNetballUnknown {
		t.Fatalf("expected netball unknown for mixed ranges, got %q", got)
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultRules())
	first := c.Classify(2, []int{41, 42}, "Series (2020)", 7)
	for i := 0; i < 5; i++ {
		if got := c.Classify(2, []int{41, 42}, "Series (2020)", 7); got != first {
			t.Fatalf("classification not deterministic: %q vs %q", got, first)
		}
	}
}

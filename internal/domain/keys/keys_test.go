package keys

import "testing"

func TestCompositeKeys(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"fixture", FixtureKey("11108", "80121405"), "11108-80121405"},
		{"fixture match", FixtureMatchKey("80121405", "11108"), "80121405-11108"},
		{"player match", PlayerMatchKey("80121405", "1001"), "80121405-1001"},
		{"squad", SquadKey("71", "Vixens"), "71-Vixens"},
		{"squad unknown name sentinel is a valid operand", SquadKey("71", UnknownSquadName), "71-Unknown Squad"},
		{"player", PlayerKey("1001", "71"), "1001-71"},
		{"sport", SportKey("9", "11108"), "9-11108"},
		{"period", PeriodKey("80121405", "3"), "80121405_3"},
		{"score flow", ScoreFlowKey("80121405", 7), "80121405_flow_7"},
	}

	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestCompositeKeys_MissingOperandRendersWholeKeyUnknown(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		got  string
	}{
		{"fixture missing match", FixtureKey("11108", "")},
		{"fixture blank match", FixtureKey("11108", "  ")},
		{"fixture unknown match", FixtureKey("11108", Unknown)},
		{"player match missing player", PlayerMatchKey("80121405", "")},
		{"squad missing id", SquadKey("", "Vixens")},
		{"player missing squad", PlayerKey("123", "")},
		{"sport missing id", SportKey("", "11108")},
		{"period missing number", PeriodKey("80121405", "")},
		{"score flow missing match", ScoreFlowKey("", 1)},
		{"score flow zero sequence", ScoreFlowKey("80121405", 0)},
	}

	for _, tc := range cases {
		if tc.got != Unknown {
			t.Fatalf("%s: got %q, want %q", tc.name, tc.got, Unknown)
		}
	}
}

func TestCompositeKeys_NeverEmitPartialKey(t *testing.T) {
	t.Parallel()

	if got := SquadKey("", "123"); got == "-123" {
		t.Fatalf("partial key leaked: %q", got)
	}
	if got := PlayerKey("1", ""); got == "1-" {
		t.Fatalf("partial key leaked: %q", got)
	}
}

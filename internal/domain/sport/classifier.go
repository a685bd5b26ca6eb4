package sport

import "strings"

// IDRange is an inclusive squad-id interval used by classification rules.
type IDRange struct {
	Min int
	Max int
}

func (r IDRange) contains(id int) bool {
	return id >= r.Min && id <= r.Max
}

// RuleSet carries the tunable thresholds of the classifier. The squad-id
// ranges discriminate between netball competitions whose titles do not name
// a region.
type RuleSet struct {
	NZSquadRanges   []IDRange
	AUSquadRanges   []IDRange
	IntlSquadRanges []IDRange
}

// DefaultRules reflects the id blocks the feed assigns per competition
// family. They are configuration, not invariants.
func DefaultRules() RuleSet {
	return RuleSet{
		NZSquadRanges:   []IDRange{{Min: 9000, Max: 9499}},
		AUSquadRanges:   []IDRange{{Min: 8000, Max: 8999}},
		IntlSquadRanges: []IDRange{{Min: 9500, Max: 9999}},
	}
}

// Classifier maps a fixture's shape to a sport category. Classification is a
// pure function of regulation-period count, the participating squad-id set,
// the competition title, and the league id; it is total over the closed
// category set and never fails.
type Classifier struct {
	rules RuleSet
}

func NewClassifier(rules RuleSet) *Classifier {
	return &Classifier{rules: rules}
}

func (c *Classifier) Classify(regulationPeriods int, squadIDs []int, title string, leagueID int) Category {
	_ = leagueID // part of the contract; current rules do not discriminate on it

	lowered := Normalize(title)
	womens := strings.Contains(lowered, "women")
	mens := !womens && strings.Contains(lowered, "men")

	switch family(regulationPeriods, lowered) {
	case "afl":
		if womens {
			return CategoryAFLWomens
		}
		return CategoryAFLMens
	case "nrl":
		if womens {
			return CategoryNRLWomens
		}
		if mens {
			return CategoryNRLMens
		}
		return CategoryNRLUnknown
	case "fast5":
		if womens {
			return CategoryFast5Womens
		}
		return CategoryFast5Mens
	}

	// Netball family. Competitions are womens unless the title says mens;
	// most real titles ("ANZ Premiership") carry no gender keyword at all.
	if mens {
		return CategoryNetballMens
	}

	switch {
	case strings.Contains(lowered, "nz") || strings.Contains(lowered, "new zealand"):
		return CategoryNetballWomensNZ
	case strings.Contains(lowered, "australia") || strings.Contains(lowered, "suncorp"):
		return CategoryNetballWomensAU
	case strings.Contains(lowered, "international") || strings.Contains(lowered, "quad series"):
		return CategoryNetballWomensIntl
	}

	switch {
	case allWithin(squadIDs, c.rules.NZSquadRanges):
		return CategoryNetballWomensNZ
	case allWithin(squadIDs, c.rules.AUSquadRanges):
		return CategoryNetballWomensAU
	case allWithin(squadIDs, c.rules.IntlSquadRanges):
		return CategoryNetballWomensIntl
	}

	return CategoryNetballUnknown
}

// family resolves the competition family. Titles win over period counts;
// a two-period fixture without a named family is FAST5.
func family(regulationPeriods int, lowered string) string {
	switch {
	case strings.Contains(lowered, "afl"):
		return "afl"
	case strings.Contains(lowered, "nrl") || strings.Contains(lowered, "rugby league"):
		return "nrl"
	case strings.Contains(lowered, "fast5") || strings.Contains(lowered, "fast 5"):
		return "fast5"
	case regulationPeriods == 2:
		return "fast5"
	default:
		return "netball"
	}
}

func allWithin(squadIDs []int, ranges []IDRange) bool {
	if len(squadIDs) == 0 || len(ranges) == 0 {
		return false
	}
	for _, id := range squadIDs {
		matched := false
		for _, r := range ranges {
			if r.contains(id) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

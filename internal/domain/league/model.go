package league

import (
	"regexp"
	"strings"
)

// League is one competition instance as listed by the feed. Its id doubles
// as the fixture id: one league listing is one unit of transactional load.
type League struct {
	ID                int
	Name              string
	Season            string
	TitleWithSeason   string
	RegulationPeriods int
}

var (
	yearRegex       = regexp.MustCompile(`\b(20\d{2})\b`)
	nonWordRegex    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nzRegex         = regexp.MustCompile(`\bNz\b`)
)

// SeasonYear extracts the first four-digit season year from a title, nil
// when the title carries none.
func SeasonYear(title string) *string {
	match := yearRegex.FindString(title)
	if match == "" {
		return nil
	}
	return &match
}

// SanitizeTitle strips punctuation, collapses whitespace, and restores the
// NZ capitalization the word-boundary cleanup tends to mangle.
func SanitizeTitle(raw string) string {
	cleaned := nonWordRegex.ReplaceAllString(raw, "")
	cleaned = whitespaceRegex.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	return nzRegex.ReplaceAllString(cleaned, "NZ")
}

// DisplayTitle builds the canonical "<name> (<season>)" form, with the year
// removed from the name so it appears exactly once.
func DisplayTitle(name, season string) string {
	base := SanitizeTitle(yearRegex.ReplaceAllString(name, ""))
	if strings.TrimSpace(season) == "" {
		return base
	}
	return base + " (" + strings.TrimSpace(season) + ")"
}

package sport

import (
	"regexp"
	"strings"
)

// Category is one label out of the closed classification set. Values are
// stored in their canonical normalized form.
type Category string

const (
	CategoryAFLMens              Category = "afl mens"
	CategoryAFLWomens            Category = "afl womens"
	CategoryNRLMens              Category = "nrl mens"
	CategoryNRLWomens            Category = "nrl womens"
	CategoryFast5Mens            Category = "fast5 mens"
	CategoryFast5Womens          Category = "fast5 womens"
	CategoryNetballMens          Category = "netball mens"
	CategoryNetballWomensNZ      Category = "netball womens nz"
	CategoryNetballWomensAU      Category = "netball womens australia"
	CategoryNetballWomensIntl    Category = "netball womens international"
	CategoryNetballUnknown       Category = "netball unknown"
	CategoryNRLUnknown           Category = "nrl unknown"
)

// codeByCategory maps normalized category labels to numeric sport codes.
// A category absent from this table loads with a null sport id.
var codeByCategory = map[Category]int{
	CategoryAFLMens:           1,
	CategoryAFLWomens:         2,
	CategoryNRLMens:           3,
	CategoryNRLWomens:         4,
	CategoryFast5Mens:         5,
	CategoryFast5Womens:       6,
	CategoryNetballMens:       7,
	CategoryNetballWomensNZ:   8,
	CategoryNetballWomensAU:   9,
	CategoryNetballWomensIntl: 10,
	CategoryNetballUnknown:    11,
	CategoryNRLUnknown:        12,
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize canonicalizes a category label before it is used as a lookup
// key: trimmed, internal whitespace collapsed, lowercased.
func Normalize(raw string) string {
	return strings.ToLower(whitespaceRegex.ReplaceAllString(strings.TrimSpace(raw), " "))
}

// CodeFor resolves the numeric sport code for a category label. The label is
// normalized before lookup. ok is false for unmapped categories.
func CodeFor(raw string) (int, bool) {
	code, ok := codeByCategory[Category(Normalize(raw))]
	return code, ok
}

// Table returns the table-name prefix for a category: the normalized label
// with spaces flattened to underscores ("afl mens" -> "afl_mens").
func Table(category Category, suffix string) string {
	prefix := strings.ReplaceAll(string(category), " ", "_")
	return prefix + "_" + suffix
}

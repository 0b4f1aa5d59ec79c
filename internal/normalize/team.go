// Package normalize implements the pure, deterministic transformations the
// rest of the system relies on: team-name normalization, category extraction,
// tennis-player canonicalization, and timestamp parsing. Grounded on
// original_source/PythonScraper/core/matching.py's MatchMatcher.normalize_team_name
// and the teacher's internal/calculator/calculator/matcher.go normalizeTeam.
package normalize

import (
	"regexp"
	"strings"
)

// teamSuffixPatterns strips common club tokens (FC/FK/SK/BC/...) at either end
// of the name, a trailing year, "(W)"/"(E)" markers, and "esports"/"gaming".
// Reserve-team markers ("II", "B team") are removed with the category markers.
var teamSuffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(fc|fk|sk|bc|hc|kk|rk|ok|sc|ac|as|ss|us|cd|cf|sd|ud|rc|afc|sfc)\s+`),
	regexp.MustCompile(`(?i)\s+(fc|fk|sk|bc|hc|kk|rk|ok|sc|ac|as|ss|us|cd|cf|sd|ud|rc|afc|sfc)$`),
	regexp.MustCompile(`\s+\d{4}$`),
	regexp.MustCompile(`(?i)\s+\(w\)$`),
	regexp.MustCompile(`(?i)\s+\(e\)$`),
	regexp.MustCompile(`(?i)\s+esports?$`),
	regexp.MustCompile(`(?i)\s+gaming$`),
}

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
var whitespaceRe = regexp.MustCompile(`\s+`)

// Team normalizes a team name for comparison: transliterates Cyrillic to Latin,
// lowercases, strips category markers and club suffixes, removes punctuation,
// and collapses whitespace. Idempotent: Team(Team(x)) == Team(x).
func Team(name string) string {
	if name == "" {
		return ""
	}

	s := transliterate(name)
	s = strings.ToLower(s)

	// Category markers are extracted separately (see Categories) and removed here
	// so they never influence name similarity.
	for _, pat := range categoryPatterns {
		s = pat.regex.ReplaceAllString(s, "")
	}

	for _, suffix := range teamSuffixPatterns {
		s = suffix.ReplaceAllString(s, "")
	}

	s = nonWordRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

package normalize

import "regexp"

// Category is a category marker extracted from a team name (age bracket, gender,
// reserve/youth/amateur status). Categories are a hard filter in the matcher:
// two games whose category sets differ never match, regardless of name similarity.
type Category string

const (
	CategoryU15       Category = "u15"
	CategoryU16       Category = "u16"
	CategoryU17       Category = "u17"
	CategoryU18       Category = "u18"
	CategoryU19       Category = "u19"
	CategoryU20       Category = "u20"
	CategoryU21       Category = "u21"
	CategoryU23       Category = "u23"
	CategoryWomen     Category = "women"
	CategoryReserves  Category = "reserves"
	CategoryYouth     Category = "youth"
	CategoryAmateur   Category = "amateur"
)

type categoryPattern struct {
	category Category
	regex    *regexp.Regexp
}

// categoryPatterns is grounded on matching.py's CATEGORY_PATTERNS table.
var categoryPatterns = []categoryPattern{
	{CategoryU15, regexp.MustCompile(`(?i)\b(u-?15|under.?15|jun(?:ior)?s?\s*15)\b`)},
	{CategoryU16, regexp.MustCompile(`(?i)\b(u-?16|under.?16|jun(?:ior)?s?\s*16)\b`)},
	{CategoryU17, regexp.MustCompile(`(?i)\b(u-?17|under.?17|jun(?:ior)?s?\s*17)\b`)},
	{CategoryU18, regexp.MustCompile(`(?i)\b(u-?18|under.?18|jun(?:ior)?s?\s*18)\b`)},
	{CategoryU19, regexp.MustCompile(`(?i)\b(u-?19|under.?19|jun(?:ior)?s?\s*19)\b`)},
	{CategoryU20, regexp.MustCompile(`(?i)\b(u-?20|under.?20|jun(?:ior)?s?\s*20)\b`)},
	{CategoryU21, regexp.MustCompile(`(?i)\b(u-?21|under.?21|jun(?:ior)?s?\s*21)\b`)},
	{CategoryU23, regexp.MustCompile(`(?i)\b(u-?23|under.?23)\b`)},
	{CategoryWomen, regexp.MustCompile(`(?i)(\b(wom[ae]n|ladies|female)\b|\(w\))`)},
	{CategoryReserves, regexp.MustCompile(`(?i)\b(reserves?|res\.|ii|b\s*team)\b`)},
	{CategoryYouth, regexp.MustCompile(`(?i)\byouth\b`)},
	{CategoryAmateur, regexp.MustCompile(`(?i)\bamat(?:eu)?r\b`)},
}

// Categories extracts the set of category tags present in either team name.
// Used as a hard filter during matching: Categories(a1,a2) != Categories(b1,b2)
// means the two games can never be fused, no matter how similar their names are.
func Categories(team1, team2 string) map[Category]bool {
	combined := team1 + " " + team2
	out := make(map[Category]bool, len(categoryPatterns))
	for _, cp := range categoryPatterns {
		if cp.regex.MatchString(combined) {
			out[cp.category] = true
		}
	}
	return out
}

// SameCategories reports whether two category sets are identical.
func SameCategories(a, b map[Category]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

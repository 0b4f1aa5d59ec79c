// Package match decides whether two scraped games, possibly from different
// bookmakers with different name spellings and slightly different kickoff
// times, refer to the same sporting event. Grounded on
// original_source/PythonScraper/core/matching.py's MatchMatcher and the
// teacher's internal/calculator/calculator/matcher.go.
package match

import (
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
)

// Candidate is the minimal shape the matcher needs from a game, whether it's
// freshly scraped or already resolved in the store.
type Candidate struct {
	Team1     string
	Team2     string
	Sport     catalog.Sport
	StartTime time.Time
	League    string
	Odds      []float64 // optional: parallel odds vector for the odds bonus
}

// Score is the full breakdown of a pairwise comparison, mirroring
// matching.py's MatchScore dataclass.
type Score struct {
	IsMatch    bool
	Confidence float64 // weighted score, 0..100
	TeamScore  float64
	TimeScore  float64
	LeagueScore float64
	OddsBonus  float64
	Swapped    bool
}

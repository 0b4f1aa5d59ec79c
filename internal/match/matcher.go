package match

import (
	"math"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/normalize"
)

// Config tunes the matcher's decision thresholds. Kept as runtime config
// rather than compile-time constants per spec §9 "fuzzy matching thresholds".
type Config struct {
	SimilarityThreshold float64 // default 75
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{SimilarityThreshold: 75}
}

// Matcher scores pairs of candidates and finds the best match in a list.
type Matcher struct {
	cfg Config
}

// New builds a Matcher with the given config.
func New(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// TeamSimilarity returns the team-name similarity score (0..100) between two
// candidates and whether the higher score came from the swapped pairing.
// Mismatched category sets (spec §4.1's hard filter) force a score of 0.
func TeamSimilarity(a, b Candidate) (score float64, swapped bool) {
	var n1a, n2a, n1b, n2b string
	if a.Sport == catalog.Tennis {
		n1a, n2a = normalize.TennisPlayer(a.Team1), normalize.TennisPlayer(a.Team2)
		n1b, n2b = normalize.TennisPlayer(b.Team1), normalize.TennisPlayer(b.Team2)
	} else {
		n1a, n2a = normalize.Team(a.Team1), normalize.Team(a.Team2)
		n1b, n2b = normalize.Team(b.Team1), normalize.Team(b.Team2)
	}

	catsA := normalize.Categories(a.Team1, a.Team2)
	catsB := normalize.Categories(b.Team1, b.Team2)
	if !normalize.SameCategories(catsA, catsB) {
		return 0, false
	}

	normalScore := (ratio(n1a, n1b) + ratio(n2a, n2b)) / 2
	swappedScore := (ratio(n1a, n2b) + ratio(n2a, n1b)) / 2

	if swappedScore > normalScore {
		return swappedScore, true
	}
	return normalScore, false
}

// TimeScore returns a 0..100 proximity score for two kickoff times, declining
// from 100 as |Δt| grows, using the sport's cross-book window. Spec §4.2.
func TimeScore(a, b time.Time, sport catalog.Sport) float64 {
	window := sport.TimeWindow()
	windowMinutes := window.Minutes()

	diffMinutes := math.Abs(a.Sub(b).Minutes())

	if diffMinutes > windowMinutes*4 {
		return 0
	}
	if diffMinutes <= 5 {
		return 100
	}
	if diffMinutes <= windowMinutes {
		return 100 - (diffMinutes/windowMinutes)*20
	}
	score := 80 - (diffMinutes-windowMinutes)*(80/(3*windowMinutes))
	if score < 0 {
		return 0
	}
	return score
}

// LeagueBonus returns the +10/+5/0 bonus for league-name similarity. Spec §4.2.
func LeagueBonus(leagueA, leagueB string) float64 {
	if leagueA == "" || leagueB == "" {
		return 0
	}
	sim := ratio(normalize.Team(leagueA), normalize.Team(leagueB))
	switch {
	case sim >= 80:
		return 10
	case sim >= 60:
		return 5
	default:
		return 0
	}
}

// OddsBonus returns +5 if every pairwise odd in two equal-length vectors is
// within ±20% of each other, else 0. Spec §4.2.
func OddsBonus(oddsA, oddsB []float64) float64 {
	if len(oddsA) == 0 || len(oddsB) == 0 || len(oddsA) != len(oddsB) {
		return 0
	}
	const tolerance = 0.20
	for i := range oddsA {
		oa, ob := oddsA[i], oddsB[i]
		if oa <= 0 || ob <= 0 {
			continue
		}
		lo, hi := oa, ob
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo/hi < (1 - tolerance) {
			return 0
		}
	}
	return 5
}

// Compare scores two candidates across all signals and applies the combined
// decision rule from spec §4.2.
func (m *Matcher) Compare(a, b Candidate) Score {
	teamScore, swapped := TeamSimilarity(a, b)
	timeScore := TimeScore(a.StartTime, b.StartTime, a.Sport)
	leagueScore := LeagueBonus(a.League, b.League)
	oddsBonus := OddsBonus(a.Odds, b.Odds)

	weighted := teamScore*0.70 + timeScore*0.20 + leagueScore*0.05 + oddsBonus*0.05

	isMatch := teamScore >= 92 ||
		(teamScore >= 80 && timeScore >= 60) ||
		(teamScore >= 70 && timeScore >= 90) ||
		weighted >= m.cfg.SimilarityThreshold

	return Score{
		IsMatch:     isMatch,
		Confidence:  weighted,
		TeamScore:   teamScore,
		TimeScore:   timeScore,
		LeagueScore: leagueScore,
		OddsBonus:   oddsBonus,
		Swapped:     swapped,
	}
}

// FindBestMatch scores candidate against every entry in candidates (expected
// to already be filtered by sport and a broad ±2×window) and returns the
// best-scoring one, or (nil, nil) if none qualifies as a match. Spec §4.2.
func (m *Matcher) FindBestMatch(candidate Candidate, candidates []Candidate) (*Candidate, *Score) {
	var best *Candidate
	var bestScore *Score

	for i := range candidates {
		score := m.Compare(candidate, candidates[i])
		if !score.IsMatch {
			continue
		}
		if bestScore == nil || score.Confidence > bestScore.Confidence {
			c := candidates[i]
			best = &c
			s := score
			bestScore = &s
		}
	}
	return best, bestScore
}

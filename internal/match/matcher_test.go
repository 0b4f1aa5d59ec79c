package match

import (
	"testing"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
)

func TestCompare_CrossBookFusion(t *testing.T) {
	m := New(DefaultConfig())
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	a := Candidate{Team1: "FC Bayern München", Team2: "Borussia Dortmund", Sport: catalog.Football, StartTime: start}
	b := Candidate{Team1: "Bayern Munich", Team2: "Dortmund", Sport: catalog.Football, StartTime: start}
	c := Candidate{Team1: "Bajern Minhen", Team2: "Borusija Dortmund", Sport: catalog.Football, StartTime: start.Add(15 * time.Minute)}

	for _, pair := range [][2]Candidate{{a, b}, {a, c}, {b, c}} {
		score := m.Compare(pair[0], pair[1])
		if !score.IsMatch {
			t.Errorf("expected match between %q/%q and %q/%q, got score %+v", pair[0].Team1, pair[0].Team2, pair[1].Team1, pair[1].Team2, score)
		}
	}
}

func TestCompare_CategoryGuardBlocksFusion(t *testing.T) {
	m := New(DefaultConfig())
	start := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	senior := Candidate{Team1: "USA", Team2: "Brazil", Sport: catalog.Football, StartTime: start}
	youth := Candidate{Team1: "USA U19", Team2: "Brazil U19", Sport: catalog.Football, StartTime: start}

	score := m.Compare(senior, youth)
	if score.IsMatch {
		t.Errorf("expected category guard to block fusion of senior and U19 matches, got score %+v", score)
	}
	if score.TeamScore != 0 {
		t.Errorf("expected team score 0 under category mismatch, got %v", score.TeamScore)
	}
}

func TestTennisPlayerNames_Match(t *testing.T) {
	m := New(DefaultConfig())
	start := time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC)

	a := Candidate{Team1: "Novak Djokovic", Team2: "Carlos Alcaraz", Sport: catalog.Tennis, StartTime: start}
	b := Candidate{Team1: "N. Djokovic", Team2: "C. Alcaraz", Sport: catalog.Tennis, StartTime: start}

	score := m.Compare(a, b)
	if !score.IsMatch {
		t.Errorf("expected tennis initial-form names to match, got %+v", score)
	}
}

func TestTimeScore_Boundaries(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if s := TimeScore(base, base.Add(3*time.Minute), catalog.Football); s != 100 {
		t.Errorf("expected 100 within 5 minutes, got %v", s)
	}
	if s := TimeScore(base, base.Add(200*time.Minute), catalog.Football); s != 0 {
		// football window is 30m, 4x = 120m; 200m is well beyond.
		t.Errorf("expected 0 beyond 4x window, got %v", s)
	}
}

func TestFindBestMatch_NoneQualifies(t *testing.T) {
	m := New(DefaultConfig())
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	candidate := Candidate{Team1: "Ajax", Team2: "Feyenoord", Sport: catalog.Football, StartTime: start}

	pool := []Candidate{
		{Team1: "PSV", Team2: "Utrecht", Sport: catalog.Football, StartTime: start},
	}

	best, score := m.FindBestMatch(candidate, pool)
	if best != nil || score != nil {
		t.Errorf("expected no match in unrelated pool, got %+v / %+v", best, score)
	}
}

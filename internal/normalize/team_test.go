package normalize

import "testing"

func TestTeam_Idempotent(t *testing.T) {
	inputs := []string{"Real Madrid FC", "Бајерн Минхен", "Arsenal (W)", "Team 2024", "  Dinamo   Zagreb  "}
	for _, in := range inputs {
		once := Team(in)
		twice := Team(once)
		if once != twice {
			t.Errorf("Team not idempotent for %q: Team(x)=%q Team(Team(x))=%q", in, once, twice)
		}
	}
}

func TestTeam_StripsSuffixesAndTransliterates(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"FC Barcelona", "barcelona"},
		{"Real Madrid", "real madrid"},
		{"Бајерн Минхен", "bajern minhen"},
		{"Arsenal (W)", "arsenal"},
		{"  Dinamo   Zagreb  ", "dinamo zagreb"},
		{"Partizan II", "partizan"},
	}
	for _, tt := range tests {
		got := Team(tt.in)
		if got != tt.want {
			t.Errorf("Team(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategories_CrossLanguageSameCategory(t *testing.T) {
	// Spec §8: Cyrillic/Latin spelling and "(W)" vs nothing must score 0 on
	// different-category, high otherwise -- here we only check the category
	// extraction half of that claim.
	a := Categories("Bajern Minhen (W)", "Borusija Dortmund (W)")
	b := Categories("Bayern Munich", "Dortmund")
	if SameCategories(a, b) {
		t.Errorf("expected different category sets: a=%v b=%v", a, b)
	}
}

func TestCategories_USAU19Guard(t *testing.T) {
	senior := Categories("USA", "Brazil")
	youth := Categories("USA U19", "Brazil U19")
	if SameCategories(senior, youth) {
		t.Errorf("senior and U19 category sets must differ")
	}
}

func TestTennisPlayer_AllThreeShapesMatch(t *testing.T) {
	forms := []string{"Novak Djokovic", "N. Djokovic", "Djokovic, Novak"}
	want := TennisPlayer(forms[0])
	for _, f := range forms {
		got := TennisPlayer(f)
		if got != want {
			t.Errorf("TennisPlayer(%q) = %q, want %q", f, got, want)
		}
	}
}

func TestTimestamp_AcceptsMultipleShapes(t *testing.T) {
	ref, ok := Timestamp(int64(1740000000))
	if !ok || ref.IsZero() {
		t.Fatalf("expected unix seconds to parse")
	}
	ms, ok := Timestamp(int64(1740000000000))
	if !ok || !ms.Equal(ref) {
		t.Errorf("unix ms should parse to the same instant as unix seconds: %v vs %v", ms, ref)
	}
	iso, ok := Timestamp("2025-02-19T21:20:00Z")
	if !ok || iso.IsZero() {
		t.Fatalf("expected ISO timestamp to parse")
	}
	if _, ok := Timestamp("not-a-timestamp"); ok {
		t.Errorf("expected unrecognized string to fail softly")
	}
}

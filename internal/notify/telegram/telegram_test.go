package telegram

import "testing"

func TestFormatLabel_TitleCasesUnderscoreSeparated(t *testing.T) {
	cases := map[string]string{
		"two_way":          "Two Way",
		"total_over_under": "Total Over Under",
		"btts":             "Btts",
		"":                 "",
	}
	for in, want := range cases {
		if got := formatLabel(in); got != want {
			t.Errorf("formatLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeMarkdown_EscapesReservedCharacters(t *testing.T) {
	in := "Team_A (2-1) *win* [link] #1"
	got := escapeMarkdown(in)
	for _, ch := range []string{"_", "*", "(", ")", "[", "]", "#", "-"} {
		if !containsEscaped(got, ch) {
			t.Errorf("expected %q to be escaped in %q", ch, got)
		}
	}
}

func containsEscaped(s, ch string) bool {
	return indexOf(s, "\\"+ch) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestEscapeMarkdown_LeavesPlainTextAlone(t *testing.T) {
	in := "Real Madrid vs Barcelona"
	if got := escapeMarkdown(in); got != in {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

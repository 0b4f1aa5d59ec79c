package normalize

import "strings"

// TennisPlayer reduces a tennis player's name to "surname initial" form so that
// "Novak Djokovic", "Djokovic, Novak", and "N. Djokovic" all normalize the same way.
// Grounded on matching.py's normalize_tennis_player.
func TennisPlayer(name string) string {
	// "Last, First" -> "First Last" before the generic team-name normalization,
	// so the surname ends up last like the other two input shapes.
	if idx := strings.Index(name, ","); idx >= 0 {
		last := strings.TrimSpace(name[:idx])
		first := strings.TrimSpace(name[idx+1:])
		if last != "" && first != "" {
			name = first + " " + last
		}
	}

	normalized := Team(name)
	parts := strings.Fields(normalized)
	if len(parts) < 2 {
		return normalized
	}

	first, surname := parts[0], parts[len(parts)-1]
	initial := first
	if len(first) > 0 {
		initial = string([]rune(first)[0])
	}
	// Strip a trailing "." some sources leave on the initial, e.g. "n." -> "n".
	initial = strings.TrimSuffix(initial, ".")
	return surname + " " + initial
}

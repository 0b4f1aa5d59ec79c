package normalize

import (
	"strconv"
	"strings"
	"time"
)

// isoLayouts are tried in order against string timestamps that aren't bare
// integers. Covers the handful of shapes bookmaker APIs actually emit.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z",
	"02.01.2006 15:04",
	"02.01.2006 15:04:05",
}

// Timestamp parses a Unix-seconds int, Unix-ms int, or one of the recognized
// ISO string shapes into a UTC instant. It fails soft: if the shape isn't
// recognized, it returns the zero time and ok=false rather than an error,
// matching spec §4.1's "fails softly to unknown" behavior.
func Timestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case int64:
		return fromUnixNumber(t), true
	case int:
		return fromUnixNumber(int64(t)), true
	case float64:
		return fromUnixNumber(int64(t)), true
	case string:
		return fromString(t)
	default:
		return time.Time{}, false
	}
}

func fromUnixNumber(n int64) time.Time {
	// Anything past ~year 2286 in seconds would be absurd; ms timestamps are
	// ~1000x larger than the equivalent seconds value, so a magnitude check
	// disambiguates without needing a digit count.
	const secondsUpperBound = 10_000_000_000 // ~2286-11-20 in seconds
	if n > secondsUpperBound {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

func fromString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromUnixNumber(n), true
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

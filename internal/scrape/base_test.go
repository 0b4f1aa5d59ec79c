package scrape

import (
	"testing"
	"time"
)

func TestRetryAfter_ParsesSeconds(t *testing.T) {
	if got := retryAfter("5"); got != 5*time.Second {
		t.Errorf("retryAfter(5) = %v, want 5s", got)
	}
}

func TestRetryAfter_DefaultsWhenMissingOrInvalid(t *testing.T) {
	if got := retryAfter(""); got != 2*time.Second {
		t.Errorf("retryAfter empty = %v, want 2s default", got)
	}
	if got := retryAfter("not-a-number"); got != 2*time.Second {
		t.Errorf("retryAfter garbage = %v, want 2s default", got)
	}
}

package game

import (
	"testing"
	"time"
)

func TestCooldownRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name     string
		last     time.Time
		interval time.Duration
		want     time.Duration
	}{
		{name: "never used", last: time.Time{}, interval: day, want: 0},
		{name: "just used", last: now, interval: day, want: day},
		{name: "halfway", last: now.Add(-12 * time.Hour), interval: day, want: 12 * time.Hour},
		{name: "exactly elapsed", last: now.Add(-day), interval: day, want: 0},
		{name: "long past", last: now.Add(-48 * time.Hour), interval: day, want: 0},
		{name: "clock skew future", last: now.Add(time.Hour), interval: day, want: 25 * time.Hour},
	}
	for _, tc := range tests {
		got := CooldownRemaining(tc.last, now, tc.interval)
		if got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestCooldownRemainingZeroInterval(t *testing.T) {
	now := time.Now()
	if got := CooldownRemaining(now, now, 0); got != 0 {
		t.Fatalf("zero interval should never gate, got %s", got)
	}
}

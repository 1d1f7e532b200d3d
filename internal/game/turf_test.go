package game

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAccruedIncome(t *testing.T) {
	hour := time.Hour

	tests := []struct {
		name    string
		base    int64
		mult    float64
		elapsed time.Duration
		want    int64
	}{
		{name: "two full periods", base: 1000, mult: 1.5, elapsed: 2 * hour, want: 3000},
		{name: "single period", base: 800, mult: 1.0, elapsed: hour, want: 800},
		{name: "partial period floors", base: 1000, mult: 1.0, elapsed: 90 * time.Minute, want: 1500},
		{name: "immediately after collect", base: 1000, mult: 1.0, elapsed: 0, want: 0},
		{name: "negative elapsed", base: 1000, mult: 1.0, elapsed: -hour, want: 0},
		{name: "zero base", base: 0, mult: 2.0, elapsed: hour, want: 0},
		{name: "fractional floors down", base: 100, mult: 1.0, elapsed: 59*time.Minute + 59*time.Second, want: 99},
	}
	for _, tc := range tests {
		got := accruedIncome(tc.base, tc.mult, tc.elapsed, hour)
		if got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.name, got, tc.want)
		}
	}
}

func TestCaptureCheck(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cooldown := 24 * time.Hour
	us := uuid.New()
	them := uuid.New()
	recent := now.Add(-time.Hour)
	stale := now.Add(-48 * time.Hour)

	if err := captureCheck(nil, nil, us, now, cooldown); err != nil {
		t.Fatalf("unclaimed turf should be capturable: %v", err)
	}

	if err := captureCheck(&us, &recent, us, now, cooldown); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("capturing own turf: got %v want ErrAlreadyOwned", err)
	}

	err := captureCheck(&them, &recent, us, now, cooldown)
	ce, ok := IsCooldown(err)
	if !ok {
		t.Fatalf("recently captured turf should be protected, got %v", err)
	}
	if ce.RetryAfter != 23*time.Hour {
		t.Fatalf("retry-after got %s want 23h", ce.RetryAfter)
	}

	if err := captureCheck(&them, &stale, us, now, cooldown); err != nil {
		t.Fatalf("protection expired, capture should proceed: %v", err)
	}

	// Legacy rows may carry an owner with no capture timestamp.
	if err := captureCheck(&them, nil, us, now, cooldown); err != nil {
		t.Fatalf("owned turf without capture time should be capturable: %v", err)
	}
}

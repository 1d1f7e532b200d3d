package game

import (
	"errors"
	"testing"
	"time"
)

func TestValidateFamilyName(t *testing.T) {
	valid := []string{"Corleone", "The Five Points", "Red-Hand Crew", "Gambino 2"}
	for _, n := range valid {
		if err := ValidateFamilyName(n); err != nil {
			t.Fatalf("expected name %q to be valid: %v", n, err)
		}
	}

	invalid := []string{"x", "", "Corleone!!", "admin crew", "mod squad"}
	for _, n := range invalid {
		if err := ValidateFamilyName(n); err == nil {
			t.Fatalf("expected name %q to fail", n)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		amount int64
		limit  int64
		ok     bool
	}{
		{amount: 100, limit: 0, ok: true},
		{amount: 1, limit: 1, ok: true},
		{amount: 0, limit: 0, ok: false},
		{amount: -50, limit: 0, ok: false},
		{amount: 1_000_001, limit: 1_000_000, ok: false},
	}
	for _, tc := range tests {
		err := ValidateAmount(tc.amount, tc.limit)
		if tc.ok && err != nil {
			t.Fatalf("amount=%d limit=%d unexpected error: %v", tc.amount, tc.limit, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("amount=%d limit=%d expected error", tc.amount, tc.limit)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "$0"},
		{in: 999, want: "$999"},
		{in: 1000, want: "$1,000"},
		{in: 1_234_567, want: "$1,234,567"},
		{in: -2500, want: "-$2,500"},
	}
	for _, tc := range tests {
		if got := FormatMoney(tc.in); got != tc.want {
			t.Fatalf("FormatMoney(%d)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsCooldown(t *testing.T) {
	base := &CooldownError{Action: ActionDaily, RetryAfter: 3 * time.Hour}
	ce, ok := IsCooldown(base)
	if !ok || ce.Action != ActionDaily {
		t.Fatalf("expected cooldown error, got %v ok=%v", ce, ok)
	}

	wrapped := errors.Join(errors.New("context"), base)
	if _, ok := IsCooldown(wrapped); !ok {
		t.Fatalf("expected wrapped cooldown error to match")
	}

	if _, ok := IsCooldown(ErrInsufficientFunds); ok {
		t.Fatalf("plain sentinel should not match cooldown")
	}
}

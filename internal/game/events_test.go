package game

import (
	"errors"
	mathrand "math/rand"
	"testing"
)

func TestResolveEventParticipantBounds(t *testing.T) {
	cfg := DefaultEventConfigs()["bank"]
	rng := mathrand.New(mathrand.NewSource(1))

	for _, n := range []int{0, 1, 5, -3} {
		if _, err := resolveEvent(cfg, n, 0, rng); !errors.Is(err, ErrInvalidParticipantCount) {
			t.Fatalf("participants=%d: got %v want ErrInvalidParticipantCount", n, err)
		}
	}
	for n := cfg.MinParticipants; n <= cfg.MaxParticipants; n++ {
		if _, err := resolveEvent(cfg, n, 0, rng); err != nil {
			t.Fatalf("participants=%d: unexpected error %v", n, err)
		}
	}
}

func TestResolveEventOutcomeRanges(t *testing.T) {
	cfg := DefaultEventConfigs()["jewelry"]
	rng := mathrand.New(mathrand.NewSource(42))

	for i := 0; i < 1000; i++ {
		out, err := resolveEvent(cfg, 2, 0, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Success {
			if out.Reward < cfg.RewardMin || out.Reward > cfg.RewardMax {
				t.Fatalf("reward %d outside [%d, %d]", out.Reward, cfg.RewardMin, cfg.RewardMax)
			}
			if out.Penalty != 0 || out.JailTime != 0 {
				t.Fatalf("success outcome carries penalty: %+v", out)
			}
			if out.ReputationDelta != cfg.ReputationGain {
				t.Fatalf("reputation delta %d want %d", out.ReputationDelta, cfg.ReputationGain)
			}
		} else {
			if out.Penalty < cfg.PenaltyMin || out.Penalty > cfg.PenaltyMax {
				t.Fatalf("penalty %d outside [%d, %d]", out.Penalty, cfg.PenaltyMin, cfg.PenaltyMax)
			}
			if out.JailTime != cfg.JailTime {
				t.Fatalf("jail time %s want %s", out.JailTime, cfg.JailTime)
			}
			if out.Reward != 0 {
				t.Fatalf("failure outcome carries reward: %+v", out)
			}
		}
	}
}

func TestResolveEventSuccessRate(t *testing.T) {
	cfg := DefaultEventConfigs()["drug_run"]
	rng := mathrand.New(mathrand.NewSource(7))

	const trials = 10000
	successes := 0
	for i := 0; i < trials; i++ {
		out, err := resolveEvent(cfg, 1, 0, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Success {
			successes++
		}
	}
	rate := float64(successes) / trials
	if rate < cfg.SuccessChance-0.03 || rate > cfg.SuccessChance+0.03 {
		t.Fatalf("observed success rate %.3f far from configured %.2f", rate, cfg.SuccessChance)
	}
}

func TestResolveEventBonusCapsAtCertainty(t *testing.T) {
	cfg := DefaultEventConfigs()["drug_run"]
	rng := mathrand.New(mathrand.NewSource(3))

	for i := 0; i < 200; i++ {
		out, err := resolveEvent(cfg, 1, 1.0, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.Success {
			t.Fatalf("chance clamped to 1.0 should always succeed")
		}
	}
}

func TestReputationBonus(t *testing.T) {
	tests := []struct {
		reputation int64
		want       float64
	}{
		{reputation: 0, want: 0},
		{reputation: 5, want: 0.05},
		{reputation: 20, want: 0.20},
		{reputation: 500, want: 0.20},
		{reputation: -10, want: 0},
	}
	for _, tc := range tests {
		if got := reputationBonus(tc.reputation); got != tc.want {
			t.Fatalf("reputation=%d got %.2f want %.2f", tc.reputation, got, tc.want)
		}
	}
}

func TestUniformBetween(t *testing.T) {
	rng := mathrand.New(mathrand.NewSource(9))
	for i := 0; i < 1000; i++ {
		v := uniformBetween(rng, 100, 1000)
		if v < 100 || v > 1000 {
			t.Fatalf("value %d outside [100, 1000]", v)
		}
	}
	if v := uniformBetween(rng, 500, 500); v != 500 {
		t.Fatalf("degenerate range should return min, got %d", v)
	}
}

func TestDefaultEventConfigs(t *testing.T) {
	cfgs := DefaultEventConfigs()
	for _, name := range []string{"bank", "jewelry", "drug_run", "hit"} {
		cfg, ok := cfgs[name]
		if !ok {
			t.Fatalf("missing event config %q", name)
		}
		if cfg.SuccessChance <= 0 || cfg.SuccessChance > 1 {
			t.Fatalf("%s: success chance %.2f out of range", name, cfg.SuccessChance)
		}
		if cfg.RewardMin > cfg.RewardMax {
			t.Fatalf("%s: reward range inverted", name)
		}
		if cfg.MinParticipants < 1 || cfg.MinParticipants > cfg.MaxParticipants {
			t.Fatalf("%s: participant range invalid", name)
		}
		if cfg.JailTime <= 0 {
			t.Fatalf("%s: jail time must be positive, got %s", name, cfg.JailTime)
		}
	}
}

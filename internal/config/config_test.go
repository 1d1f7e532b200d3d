package config

import (
	"testing"
	"time"
)

func TestLoadRulesDefaults(t *testing.T) {
	rules := loadRules()
	if rules.DailyAmount != 1_000 {
		t.Fatalf("daily amount default got %d", rules.DailyAmount)
	}
	if rules.DailyCooldown != 24*time.Hour {
		t.Fatalf("daily cooldown default got %s", rules.DailyCooldown)
	}
	if rules.HeistCooldown != 12*time.Hour {
		t.Fatalf("heist cooldown default got %s", rules.HeistCooldown)
	}
	if rules.IncomePeriod != time.Hour {
		t.Fatalf("income period default got %s", rules.IncomePeriod)
	}
	if rules.MaxTransfer != 1_000_000 {
		t.Fatalf("max transfer default got %d", rules.MaxTransfer)
	}
}

func TestLoadRulesOverrides(t *testing.T) {
	t.Setenv("OMERTA_DAILY_AMOUNT", "2500")
	t.Setenv("OMERTA_ROB_COOLDOWN", "30m")
	t.Setenv("OMERTA_MAX_TRANSFER", "not-a-number")

	rules := loadRules()
	if rules.DailyAmount != 2500 {
		t.Fatalf("override ignored, got %d", rules.DailyAmount)
	}
	if rules.RobCooldown != 30*time.Minute {
		t.Fatalf("duration override ignored, got %s", rules.RobCooldown)
	}
	if rules.MaxTransfer != 1_000_000 {
		t.Fatalf("bad value should fall back, got %d", rules.MaxTransfer)
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type BotConfig struct {
	DiscordToken     string
	Prefix           string
	DatabaseURL      string
	StartupSeedTurfs bool
	Rules            Rules
}

type APIConfig struct {
	Addr             string
	DatabaseURL      string
	StartupSeedTurfs bool
	SweepEvery       time.Duration
	Rules            Rules
}

type CLIConfig struct {
	APIBaseURL string
}

// Rules are the per-deployment gameplay tunables. The core treats them as
// read-only inputs.
type Rules struct {
	DailyAmount     int64
	DailyCooldown   time.Duration
	HeistCooldown   time.Duration
	RobCooldown     time.Duration
	CaptureCooldown time.Duration
	IncomePeriod    time.Duration
	MaxTransfer     int64
}

func LoadBotFromEnv() (BotConfig, error) {
	_ = godotenv.Load()

	cfg := BotConfig{
		DiscordToken:     strings.TrimSpace(os.Getenv("DISCORD_TOKEN")),
		Prefix:           envDefault("OMERTA_PREFIX", "!"),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StartupSeedTurfs: envBoolDefault("OMERTA_STARTUP_SEED_TURFS", true),
		Rules:            loadRules(),
	}
	if cfg.DiscordToken == "" {
		return cfg, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadAPIFromEnv() (APIConfig, error) {
	_ = godotenv.Load()

	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("OMERTA_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:             addr,
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StartupSeedTurfs: envBoolDefault("OMERTA_STARTUP_SEED_TURFS", true),
		SweepEvery:       envDurationDefault("OMERTA_SWEEP_EVERY", 0),
		Rules:            loadRules(),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	_ = godotenv.Load()
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("OMERTA_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func loadRules() Rules {
	return Rules{
		DailyAmount:     envInt64Default("OMERTA_DAILY_AMOUNT", 1_000),
		DailyCooldown:   envDurationDefault("OMERTA_DAILY_COOLDOWN", 24*time.Hour),
		HeistCooldown:   envDurationDefault("OMERTA_HEIST_COOLDOWN", 12*time.Hour),
		RobCooldown:     envDurationDefault("OMERTA_ROB_COOLDOWN", time.Hour),
		CaptureCooldown: envDurationDefault("OMERTA_CAPTURE_COOLDOWN", 24*time.Hour),
		IncomePeriod:    envDurationDefault("OMERTA_INCOME_PERIOD", time.Hour),
		MaxTransfer:     envInt64Default("OMERTA_MAX_TRANSFER", 1_000_000),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

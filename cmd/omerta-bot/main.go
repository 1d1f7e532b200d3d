package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"omerta/internal/bot"
	"omerta/internal/config"
	"omerta/internal/db"
	"omerta/internal/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadBotFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	gameSvc := game.NewService(pool, cfg.Rules, logger)
	if cfg.StartupSeedTurfs {
		if err := gameSvc.SeedTurfs(ctx, time.Now()); err != nil {
			logger.Error("seed turfs failed", "err", err)
			os.Exit(1)
		}
	}

	b, err := bot.New(cfg.DiscordToken, cfg.Prefix, gameSvc, logger)
	if err != nil {
		logger.Error("bot init failed", "err", err)
		os.Exit(1)
	}
	if err := b.Run(ctx); err != nil {
		logger.Error("bot stopped", "err", err)
		os.Exit(1)
	}
}

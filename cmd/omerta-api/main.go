package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"omerta/internal/api"
	"omerta/internal/config"
	"omerta/internal/db"
	"omerta/internal/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
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

	if cfg.SweepEvery > 0 {
		go runIncomeSweeper(ctx, gameSvc, cfg.SweepEvery, logger)
	}

	server := api.New(cfg, logger, gameSvc)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("omerta api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

// runIncomeSweeper settles turf income on a fixed cadence so family banks
// grow even when nobody runs the collect command.
func runIncomeSweeper(ctx context.Context, svc *game.Service, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("income sweeper started", "every", every.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("income sweeper shutdown")
			return
		case <-ticker.C:
			report, err := svc.SweepTurfIncome(ctx, time.Now())
			if err != nil {
				logger.Error("income sweep failed", "err", err)
				continue
			}
			if report.TurfsCollected > 0 {
				logger.Info("income sweep",
					"families", report.FamiliesPaid,
					"turfs", report.TurfsCollected,
					"total", report.Total)
			}
		}
	}
}

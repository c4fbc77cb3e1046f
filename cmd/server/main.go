package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/riskwatch/internal/clients/yahoo"
	"github.com/aristath/riskwatch/internal/config"
	"github.com/aristath/riskwatch/internal/database"
	"github.com/aristath/riskwatch/internal/history"
	"github.com/aristath/riskwatch/internal/marketdata"
	"github.com/aristath/riskwatch/internal/monitor"
	"github.com/aristath/riskwatch/internal/risk"
	"github.com/aristath/riskwatch/internal/scheduler"
	"github.com/aristath/riskwatch/internal/server"
	"github.com/aristath/riskwatch/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting riskwatch")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	store := history.New(db.Conn(), log)
	if err := store.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history store")
	}

	provider := yahoo.NewClient(log)
	cache := marketdata.New(provider, store, cfg.CacheTTL, log)

	analyzer := risk.New(cache, risk.Config{
		Weights:                 cfg.Weights,
		VolatilityLookbackDays:  cfg.VolatilityLookbackDays,
		TrendLookbackDays:       cfg.TrendLookbackDays,
		VolumeLookbackDays:      cfg.VolumeLookbackDays,
		CorrelationLookbackDays: cfg.CorrelationLookbackDays,
		StressLookbackDays:      cfg.StressLookbackDays,
		VolatilityAlertScore:    cfg.VolatilityAlertScore,
		MaxConcurrentFetches:    cfg.MaxConcurrentFetches,
	}, log)

	sched := scheduler.New(log)
	job := monitor.NewJob(analyzer, cfg.Assets, cfg.RiskAlertScore, cfg.MonitorInterval/2, log)
	if err := sched.AddJob(fmt.Sprintf("@every %s", cfg.MonitorInterval), job); err != nil {
		log.Fatal().Err(err).Msg("Failed to register monitoring job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:          cfg.Port,
		Log:           log,
		Scorer:        analyzer,
		DefaultAssets: cfg.Assets,
		DevMode:       cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// TradeDeck server entry point: wires the in-memory stores, background jobs
// and the HTTP API together.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tradedeck/tradedeck/internal/config"
	"github.com/tradedeck/tradedeck/internal/jobs"
	"github.com/tradedeck/tradedeck/internal/modules/comparison"
	"github.com/tradedeck/tradedeck/internal/modules/market"
	"github.com/tradedeck/tradedeck/internal/modules/portfolio"
	"github.com/tradedeck/tradedeck/internal/modules/risk"
	"github.com/tradedeck/tradedeck/internal/modules/signals"
	"github.com/tradedeck/tradedeck/internal/scheduler"
	"github.com/tradedeck/tradedeck/internal/server"
	"github.com/tradedeck/tradedeck/internal/snapshot"
	"github.com/tradedeck/tradedeck/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Bool("dev_mode", cfg.DevMode).
		Msg("TradeDeck starting")

	// Stores and services
	ledger := portfolio.NewLedger(log)
	portfolioService := portfolio.NewService(ledger, cfg.StartingBalance, nil, log)
	riskCalculator := risk.NewCalculator(nil, log)
	riskRegistry := risk.NewRegistry(log)
	marketService := market.NewService(nil, log)
	signalService := signals.NewService(nil, log)
	comparisonService := comparison.NewService(nil, log)

	// Restore the previous snapshot, or seed demo data on first start
	snapshotStore := snapshot.NewStore(cfg.DataDir, log)
	restored := false
	if cfg.SnapshotEnabled {
		state, err := snapshotStore.Load()
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load snapshot, starting fresh")
		} else if state != nil {
			ledger.Restore(state.Positions)
			riskRegistry.Restore(state.Alerts, state.Limits)
			restored = true
		}
	}
	if !restored && cfg.SeedSampleData {
		if err := portfolio.SeedSamplePositions(ledger); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed sample positions")
		}
		risk.SeedSampleAlerts(riskRegistry, nil)
		log.Info().Msg("Sample data seeded")
	}
	signalService.SeedSampleSignals()

	// Background jobs
	sched := scheduler.New(log)
	priceRefresh := jobs.NewPriceRefreshJob(marketService, ledger, signalService, log)
	if err := sched.AddJob(cfg.PriceRefreshSpec, priceRefresh); err != nil {
		log.Fatal().Err(err).Msg("Failed to register price refresh job")
	}
	sched.Start()

	// HTTP server
	srv := server.New(server.Config{
		Log:               log,
		Config:            cfg,
		Port:              cfg.Port,
		DevMode:           cfg.DevMode,
		Ledger:            ledger,
		PortfolioService:  portfolioService,
		RiskCalculator:    riskCalculator,
		RiskRegistry:      riskRegistry,
		MarketService:     marketService,
		SignalService:     signalService,
		ComparisonService: comparisonService,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	sched.Stop()

	if cfg.SnapshotEnabled {
		state := snapshot.State{
			SavedAt:   time.Now().UTC(),
			Positions: ledger.Snapshot(),
			Alerts:    riskRegistry.SnapshotAlerts(),
			Limits:    riskRegistry.Limits(),
		}
		if err := snapshotStore.Save(state); err != nil {
			log.Error().Err(err).Msg("Failed to save snapshot")
		}
	}

	log.Info().Msg("TradeDeck stopped")
}

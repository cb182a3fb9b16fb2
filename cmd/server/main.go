package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/3jesters/opentcg-server-go/internal/catalog"
	"github.com/3jesters/opentcg-server-go/internal/config"
	"github.com/3jesters/opentcg-server-go/internal/game"
	"github.com/3jesters/opentcg-server-go/internal/repository"
	"github.com/3jesters/opentcg-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting match server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var (
		matchRepo game.MatchRepository
		deckRepo  game.DeckSource
		cardRepo  catalog.CardCatalog
	)
	if cfg.Database.URL != "" {
		db, dbErr := repository.NewDB(ctx, cfg.Database, logger)
		if dbErr != nil {
			logger.Fatal("failed to connect to database", zap.Error(dbErr))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)

		matchRepo = repository.NewPostgresMatchRepository(db, logger)
		deckRepo = repository.NewPostgresDeckRepository(db)
		cardRepo = repository.NewPostgresCardCatalog(db)
	} else {
		logger.Warn("no database configured; using in-memory stores")
		matchRepo = repository.NewMemoryMatchRepository()
		deckRepo = repository.NewMemoryDeckRepository()
		cardRepo = catalog.NewMemoryCatalog()
	}

	rules := game.Rules{
		DeckSize:   cfg.Game.DeckSize,
		PrizeCount: cfg.Game.PrizeCount,
		HandSize:   cfg.Game.HandSize,
	}
	orchestrator := game.NewOrchestrator(matchRepo, deckRepo, cardRepo, rules, logger)
	logger.Info("match orchestrator initialized",
		zap.Int("deck_size", rules.DeckSize),
		zap.Int("prize_count", rules.PrizeCount),
	)

	if cfg.Game.ReplayEnabled {
		recorder := game.NewReplayRecorder(logger, cfg.Game.ReplayDir)
		orchestrator.SetReplayRecorder(recorder)
		logger.Info("replay recording enabled", zap.String("dir", cfg.Game.ReplayDir))
	}

	hub := server.NewHub(cfg.Server.WebSocket, logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTP.Address,
		Handler:      server.NewServer(orchestrator, hub, logger).Handler(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.HTTP.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("match server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightdeck-service/internal/domain/repository"
	"flightdeck-service/internal/infrastructure/config"
	"flightdeck-service/internal/infrastructure/oauth"
	"flightdeck-service/internal/infrastructure/persistence"
	"flightdeck-service/internal/interface/api"
	storeRepo "flightdeck-service/internal/interface/repository"
	"flightdeck-service/internal/usecase"
	"flightdeck-service/pkg/feed"
	"flightdeck-service/pkg/logger"
	"flightdeck-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	// Create logger
	log := logger.NewLogger(cfg.Development)
	log.Info("Starting Flightdeck Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up the record store backend
	var store repository.FlightStore
	var disconnect func()
	switch cfg.StoreBackend {
	case "mongo":
		log.Info("Connecting to MongoDB")
		db, mongoClient, err := persistence.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword, cfg.MongoDB, cfg.MongoConnectTimeout)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		store = storeRepo.NewMongoFlightStore(db)
		disconnect = func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Error("MongoDB disconnect error", "error", err)
			}
		}
	case "postgres":
		log.Info("Connecting to PostgreSQL")
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		store = storeRepo.NewGormFlightStore(gormDB)
	default:
		memStore := storeRepo.NewMemoryFlightStore()
		if cfg.SeedPath != "" {
			flights, err := storeRepo.ReadSeed(cfg.SeedPath)
			if err != nil {
				log.Fatal("Failed to load seed file", "path", cfg.SeedPath, "error", err)
			}
			memStore.Load(flights)
			log.Info("Seed loaded", "path", cfg.SeedPath, "records", len(flights))
		}
		store = memStore
	}

	// Set up the durable run history
	var history repository.RunHistory
	if cfg.RunHistoryPath != "" {
		runDB, err := persistence.OpenSQLite(cfg.RunHistoryPath)
		if err != nil {
			log.Fatal("Failed to open run history database", "error", err)
		}
		history, err = storeRepo.NewSQLiteRunHistory(runDB, log)
		if err != nil {
			log.Fatal("Failed to initialize run history", "error", err)
		}
		defer runDB.Close()
	} else {
		history = storeRepo.NewMemoryRunHistory()
	}

	// Set up the criteria parser collaborator
	parserAuth := oauth.NewParserAuth(cfg.ParserClientID, cfg.ParserClientSecret, cfg.ParserTokenURL, log)
	parser := storeRepo.NewHTTPCriteriaParser(cfg.ParserEndpoint, parserAuth.Client(ctx), log)

	// Tuning: defaults, then the optional settings file on top
	tuning := usecase.DefaultTuning()
	if cfg.SettingsPath != "" {
		if settings, err := config.LoadSettings(cfg.SettingsPath); err != nil {
			log.Warn("Failed to load settings file, using defaults", "error", err)
		} else {
			tuning = settings.Tuning(tuning)
		}
	}

	// Wire the pipeline
	hub := feed.NewHub()
	m := metrics.NewMetrics("flightdeck")
	browser := usecase.NewBrowser(store, parser, history, hub, m, log, tuning)

	// Watch the settings file for live tuning changes
	stopWatch := make(chan struct{})
	if cfg.SettingsPath != "" {
		err := config.WatchSettings(cfg.SettingsPath, log, stopWatch, func(s config.Settings) {
			browser.ApplyTuning(s.Tuning(usecase.DefaultTuning()))
		})
		if err != nil {
			log.Warn("Settings watch disabled", "error", err)
		}
	}

	// Kick off the first page
	browser.Load()

	// Set up HTTP server
	apiServer := api.NewServer(browser, history, hub, log)
	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.CorsMiddleware(api.LoggingMiddleware(log, mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	close(stopWatch)
	cancel()
	browser.Close()
	hub.Close()
	if err := history.Close(); err != nil {
		log.Error("Run history close error", "error", err)
	}
	if disconnect != nil {
		disconnect()
	}

	log.Info("Flightdeck Service stopped")
}

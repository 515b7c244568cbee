// Package main is the entry point for the Folio portfolio simulator.
//
// Startup order:
//  1. Load configuration and build the logger
//  2. Open prices.db and cache.db and apply their schemas
//  3. Choose the price source (local store or hosted table)
//  4. Register background jobs
//  5. Serve HTTP until SIGINT/SIGTERM, then shut down gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/folio/internal/clientdata"
	"github.com/aristath/folio/internal/clients/supabase"
	"github.com/aristath/folio/internal/config"
	"github.com/aristath/folio/internal/database"
	allocationhandlers "github.com/aristath/folio/internal/modules/allocation/handlers"
	"github.com/aristath/folio/internal/modules/prices"
	priceshandlers "github.com/aristath/folio/internal/modules/prices/handlers"
	"github.com/aristath/folio/internal/modules/recommendation"
	recommendationhandlers "github.com/aristath/folio/internal/modules/recommendation/handlers"
	"github.com/aristath/folio/internal/modules/session"
	sessionhandlers "github.com/aristath/folio/internal/modules/session/handlers"
	simulationhandlers "github.com/aristath/folio/internal/modules/simulation/handlers"
	"github.com/aristath/folio/internal/scheduler"
	"github.com/aristath/folio/internal/server"
	"github.com/aristath/folio/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("price_source", cfg.PriceSource).
		Msg("Starting Folio")

	pricesDB, err := openDatabase(cfg.DataDir, "prices", database.ProfileStandard)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open prices database")
	}
	defer pricesDB.Close()

	cacheDB, err := openDatabase(cfg.DataDir, "cache", database.ProfileCache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	priceRepo := prices.NewRepository(pricesDB.Conn(), log)
	cacheRepo := clientdata.NewRepository(cacheDB.Conn())

	var remote *supabase.Client
	if cfg.RemoteEnabled() {
		remote = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, cacheRepo, cfg.PriceCache, log)
	}

	var (
		source   prices.Source         = priceRepo
		searcher prices.TickerSearcher = priceRepo
	)
	if cfg.PriceSource == config.PriceSourceRemote {
		source = remote
		searcher = remote
	}

	loader := prices.NewLoader(source, cfg.PageSize, log)
	sessions := session.NewManager(loader, log)

	sched := scheduler.New(log)
	if err := registerJobs(sched, cfg, remote, priceRepo, cacheRepo, sessions, log, pricesDB, cacheDB); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:          log,
		Port:         cfg.Port,
		DevMode:      cfg.DevMode,
		AllowOrigins: cfg.AllowOrigins,
		System: server.NewSystemHandlers(
			log,
			cfg.DataDir,
			cfg.PriceSource,
			[]*database.DB{pricesDB, cacheDB},
			sched,
			sessions,
		),
		Modules: []server.RouteRegistrar{
			priceshandlers.NewHandler(loader, searcher, log),
			simulationhandlers.NewHandler(loader, log),
			allocationhandlers.NewHandler(log),
			recommendationhandlers.NewHandler(recommendation.NewBacktester(loader), log),
		},
		Streaming: []server.RouteRegistrar{
			sessionhandlers.NewHandler(sessions, cfg.AllowOrigins, log),
		},
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func openDatabase(dataDir, name string, profile database.DatabaseProfile) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// registerJobs wires every background job. price_sync exists only when a
// hosted price table is configured; it copies into prices.db.
func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	remote *supabase.Client,
	priceRepo *prices.Repository,
	cacheRepo *clientdata.Repository,
	sessions *session.Manager,
	log zerolog.Logger,
	databases ...*database.DB,
) error {
	if remote != nil {
		tickers := cfg.SyncTickers
		if len(tickers) == 0 {
			tickers = recommendation.Tickers()
		}
		syncJob := prices.NewSyncJob(remote, priceRepo, tickers, cfg.PageSize, log)
		if err := sched.AddJob(cfg.Jobs.PriceSync, syncJob); err != nil {
			return err
		}
	} else {
		log.Info().Msg("SUPABASE_URL not set, price sync disabled")
	}

	jobs := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.Jobs.CacheCleanup, clientdata.NewCleanupJob(cacheRepo, log)},
		{cfg.Jobs.SessionSweep, session.NewSweepJob(sessions, cfg.SessionIdle, log)},
		{cfg.Jobs.WALCheckpoint, scheduler.NewCheckWALCheckpointsJob(log, databases...)},
		{cfg.Jobs.DatabaseCheck, scheduler.NewCheckDatabasesJob(log, databases...)},
	}
	for _, j := range jobs {
		if err := sched.AddJob(j.schedule, j.job); err != nil {
			return err
		}
	}

	return nil
}

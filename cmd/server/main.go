package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/config"
	"github.com/mamadbah2/buildmat/internal/repository/mongodb"
	"github.com/mamadbah2/buildmat/internal/repository/sheets"
	"github.com/mamadbah2/buildmat/internal/scheduler"
	"github.com/mamadbah2/buildmat/internal/server/handlers"
	"github.com/mamadbah2/buildmat/internal/server/router"
	"github.com/mamadbah2/buildmat/internal/service/catalog"
	"github.com/mamadbah2/buildmat/internal/service/optimizer"
	"github.com/mamadbah2/buildmat/internal/service/pricing"
	"github.com/mamadbah2/buildmat/internal/service/projects"
	"github.com/mamadbah2/buildmat/internal/service/recommendation"
	reportingsvc "github.com/mamadbah2/buildmat/internal/service/reporting"
	"github.com/mamadbah2/buildmat/internal/service/scoring"
	"github.com/mamadbah2/buildmat/pkg/clients/supplier"
	"github.com/mamadbah2/buildmat/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var (
		mirror      catalog.Mirror
		projectRepo projects.Repository
		mongoRepo   *mongodb.MongoDBRepository
	)
	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		mongoRepo, err = mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		mirror, projectRepo = mongoRepo, mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI not set, catalog and projects are kept in memory only")
	}

	store := catalog.NewStore(mirror, baseLogger.Named("svc.catalog"))
	engine := scoring.NewEngine(scoring.DefaultPolicy())
	optimizerSvc := optimizer.NewService(store, engine, baseLogger.Named("svc.optimizer"))
	recommender := recommendation.NewService(store, engine, cfg.Recommend.Workers, baseLogger.Named("svc.recommendation"))
	tracker := projects.NewTracker(projectRepo, optimizerSvc, baseLogger.Named("svc.projects"))

	if mongoRepo != nil {
		loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := restoreState(loadCtx, mongoRepo, store, tracker); err != nil {
			baseLogger.Fatal("failed to restore state from mongodb", zap.Error(err))
		}
		cancel()
	}
	if cfg.Catalog.SeedSample {
		if _, err := catalog.SeedIfEmpty(context.Background(), store); err != nil {
			baseLogger.Fatal("failed to seed sample catalog", zap.Error(err))
		}
	}

	var (
		priceSyncer scheduler.PriceSyncer
		exporter    scheduler.CatalogExporter
		sheetsRepo  sheets.Repository
	)
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	}
	reportingSvc := reportingsvc.NewService(store, sheetsRepo, baseLogger.Named("svc.reporting"))
	if sheetsRepo != nil {
		exporter = reportingSvc
	}
	if cfg.Supplier.Enabled() {
		priceSyncer = pricing.NewSyncer(store, supplier.NewClient(cfg.Supplier), baseLogger.Named("svc.pricing"))
	}

	defaults := optimizer.DefaultPolicy()
	defaults.MinRetainedFraction = cfg.Optimizer.MinRetainedFraction
	defaults.Precision = cfg.Optimizer.Precision

	engineRouter := router.New(router.Handlers{
		Catalog:  handlers.NewCatalogHandler(store, reportingSvc, priceSyncer, baseLogger.Named("handlers.catalog")),
		Engine:   handlers.NewEngineHandler(recommender, optimizerSvc, cfg.Recommend.DefaultLimit, defaults, baseLogger.Named("handlers.engine")),
		Projects: handlers.NewProjectHandler(tracker, defaults, baseLogger.Named("handlers.projects")),
	}, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Schedule, priceSyncer, exporter, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engineRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.Int("materials", store.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func restoreState(ctx context.Context, repo *mongodb.MongoDBRepository, store *catalog.Store, tracker *projects.Tracker) error {
	materials, err := repo.ListMaterials(ctx)
	if err != nil {
		return err
	}
	if err := store.Load(materials); err != nil {
		return err
	}

	stored, err := repo.ListProjects(ctx)
	if err != nil {
		return err
	}
	return tracker.Load(stored)
}

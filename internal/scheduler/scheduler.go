package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/config"
	"github.com/mamadbah2/buildmat/internal/service/pricing"
)

const jobTimeout = 2 * time.Minute

// PriceSyncer refreshes catalog prices from the supplier feed.
type PriceSyncer interface {
	Sync(ctx context.Context) (pricing.Result, error)
}

// CatalogExporter writes the catalog to the export spreadsheet.
type CatalogExporter interface {
	ExportCatalog(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks. Either job may be nil when its
// integration is not configured.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ScheduleConfig
	syncer   PriceSyncer
	exporter CatalogExporter
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ScheduleConfig, syncer PriceSyncer, exporter CatalogExporter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		syncer:   syncer,
		exporter: exporter,
		logger:   logger,
	}, nil
}

// Start registers the configured jobs and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if s.syncer != nil {
		if _, err := s.cron.AddFunc(s.cfg.PriceSyncCron, s.syncPrices); err != nil {
			s.logger.Error("failed to schedule price sync", zap.Error(err))
		}
	}
	if s.exporter != nil {
		if _, err := s.cron.AddFunc(s.cfg.CatalogExportCron, s.exportCatalog); err != nil {
			s.logger.Error("failed to schedule catalog export", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) syncPrices() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	res, err := s.syncer.Sync(ctx)
	if err != nil {
		s.logger.Error("price sync failed", zap.Error(err))
		return
	}
	s.logger.Info("price sync finished", zap.Int("updated", res.Updated), zap.Int("unmatched", res.Unmatched))
}

func (s *Scheduler) exportCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.exporter.ExportCatalog(ctx)
	if err != nil {
		s.logger.Error("catalog export failed", zap.Error(err))
		return
	}
	s.logger.Info("catalog export finished", zap.Int("materials", n))
}

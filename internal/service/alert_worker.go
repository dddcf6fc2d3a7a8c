package service

import (
	"context"
	"sync"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/rs/zerolog"
)

// AlertWorker is a background worker that periodically rebuilds every
// company's installment reminders.
type AlertWorker struct {
	scheduler   *AlertScheduler
	companyRepo domain.CompanyRepository
	logger      zerolog.Logger
	interval    time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	mu          sync.Mutex
	running     bool
}

// AlertWorkerConfig holds configuration for the alert worker
type AlertWorkerConfig struct {
	Interval time.Duration // How often to re-run alert scheduling
}

// DefaultAlertWorkerConfig returns sensible defaults
func DefaultAlertWorkerConfig() AlertWorkerConfig {
	return AlertWorkerConfig{
		Interval: 1 * time.Hour,
	}
}

// NewAlertWorker creates a new alert worker
func NewAlertWorker(
	scheduler *AlertScheduler,
	companyRepo domain.CompanyRepository,
	logger zerolog.Logger,
	config AlertWorkerConfig,
) *AlertWorker {
	if config.Interval <= 0 {
		config.Interval = 1 * time.Hour
	}

	return &AlertWorker{
		scheduler:   scheduler,
		companyRepo: companyRepo,
		logger:      logger.With().Str("component", "alert_worker").Logger(),
		interval:    config.Interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background alert sync
func (w *AlertWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Msg("Starting alert worker")

	go w.run(ctx)
}

// Stop gracefully stops the alert worker
func (w *AlertWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping alert worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Alert worker stopped")
}

// run is the main loop for the alert worker
func (w *AlertWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Run immediately on startup
	w.syncAllCompanies()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-w.stopCh:
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-ticker.C:
			w.syncAllCompanies()
		}
	}
}

// syncAllCompanies rebuilds alert batches for every company
func (w *AlertWorker) syncAllCompanies() {
	startTime := time.Now()

	companies, err := w.companyRepo.GetAll()
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to get companies for alert sync")
		return
	}

	synced := 0
	failed := 0
	for _, company := range companies {
		if err := w.scheduler.SyncCompany(company.ID); err != nil {
			w.logger.Error().
				Err(err).
				Int32("company_id", company.ID).
				Msg("Alert sync failed for company")
			failed++
			continue
		}
		synced++
	}

	w.logger.Info().
		Int("synced", synced).
		Int("failed", failed).
		Dur("elapsed", time.Since(startTime)).
		Msg("Alert sync completed")
}

package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/storefront/storefront-backend/pkg/logger"
)

// DefaultPruneSpec runs the prune daily at 03:30.
const DefaultPruneSpec = "30 3 * * *"

// EventPruner deletes processed payment events older than a retention window.
type EventPruner interface {
	PrunePaymentEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// PaymentEventScheduler prunes the webhook idempotency table on a cron schedule.
type PaymentEventScheduler struct {
	cron      *cron.Cron
	pruner    EventPruner
	retention time.Duration
	spec      string
}

func NewPaymentEventScheduler(pruner EventPruner, retention time.Duration) *PaymentEventScheduler {
	return &PaymentEventScheduler{
		cron:      cron.New(),
		pruner:    pruner,
		retention: retention,
		spec:      DefaultPruneSpec,
	}
}

// Start registers the prune job and starts the cron runner.
func (s *PaymentEventScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.RunOnce)
	if err != nil {
		logger.Error("Failed to add cron job for payment event pruning", err)
		return err
	}

	s.cron.Start()
	logger.Info("Payment event scheduler started", map[string]interface{}{
		"spec":      s.spec,
		"retention": s.retention.String(),
	})
	return nil
}

// RunOnce performs a single prune pass.
func (s *PaymentEventScheduler) RunOnce() {
	if s.retention <= 0 {
		logger.Warn("Payment event retention disabled, skipping prune", nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.pruner.PrunePaymentEvents(ctx, s.retention)
	if err != nil {
		logger.Error("Scheduled payment event prune failed", err)
		return
	}

	logger.Info("Scheduled payment event prune finished", map[string]interface{}{
		"deleted": deleted,
	})
}

// Stop waits for a running job to finish.
func (s *PaymentEventScheduler) Stop() {
	logger.Info("Stopping payment event scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Payment event scheduler stopped", nil)
}

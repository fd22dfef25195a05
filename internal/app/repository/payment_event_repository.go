package repository

import (
	"context"
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentEventRepository interface {
	WithTx(tx *gorm.DB) PaymentEventRepository
	Record(ctx context.Context, event *model.PaymentEvent) error
	Exists(ctx context.Context, eventID string) (bool, error)
	AttachOrder(ctx context.Context, eventID string, orderID uint) error
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type paymentEventRepository struct {
	db *gorm.DB
}

func NewPaymentEventRepository(db *gorm.DB) PaymentEventRepository {
	return &paymentEventRepository{db: db}
}

func (r *paymentEventRepository) WithTx(tx *gorm.DB) PaymentEventRepository {
	return &paymentEventRepository{db: tx}
}

// Record claims the event id. It returns ErrDuplicate when the event was already recorded.
func (r *paymentEventRepository) Record(ctx context.Context, event *model.PaymentEvent) error {
	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(event)
	if result.Error != nil {
		logger.Error("Failed to record payment event", result.Error, map[string]interface{}{
			"event_id": event.EventID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *paymentEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PaymentEvent{}).Where("event_id = ?", eventID).Count(&count).Error
	return count > 0, err
}

func (r *paymentEventRepository) AttachOrder(ctx context.Context, eventID string, orderID uint) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentEvent{}).
		Where("event_id = ?", eventID).
		Update("order_id", orderID).Error
}

func (r *paymentEventRepository) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("processed_at < ?", cutoff).Delete(&model.PaymentEvent{})
	if result.Error != nil {
		logger.Error("Failed to prune payment events", result.Error, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

package model

import "time"

// PaymentEvent records a processor event that has already been applied.
// The unique EventID makes webhook redelivery a no-op.
type PaymentEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Provider    string    `gorm:"size:50;not null;default:'stripe'" json:"provider"`
	EventID     string    `gorm:"size:255;uniqueIndex;not null" json:"event_id"`
	EventType   string    `gorm:"size:100;not null" json:"event_type"`
	SessionID   string    `gorm:"size:255;index" json:"session_id"`
	OrderID     *uint     `gorm:"index" json:"order_id,omitempty"`
	ProcessedAt time.Time `gorm:"not null;index" json:"processed_at"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}

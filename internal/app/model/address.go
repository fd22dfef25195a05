package model

import "time"

// Address is referenced by orders as shipping or billing destination.
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:191;not null;index" json:"user_id"`
	FullName   string    `gorm:"size:255;not null" json:"full_name"`
	Line1      string    `gorm:"size:255;not null" json:"line1"`
	Line2      string    `gorm:"size:255" json:"line2"`
	City       string    `gorm:"size:100;not null" json:"city"`
	State      string    `gorm:"size:100" json:"state"`
	PostalCode string    `gorm:"size:20" json:"postal_code"`
	Country    string    `gorm:"size:2;not null" json:"country"`
	Phone      string    `gorm:"size:30" json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Address) TableName() string {
	return "addresses"
}

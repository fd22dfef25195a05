package model

import "time"

const WishlistItemStatusAvailable = "available"

type Wishlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:191;uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Items []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}

type WishlistItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WishlistID uint      `gorm:"not null;uniqueIndex:idx_wishlist_items_wishlist_product" json:"wishlist_id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_wishlist_items_wishlist_product;index" json:"product_id"`
	Status     string    `gorm:"size:50;not null;default:'available'" json:"status"`
	CreatedAt  time.Time `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

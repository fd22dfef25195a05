package model

import "time"

type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusOrdered   CartStatus = "ordered"
	CartStatusAbandoned CartStatus = "abandoned"
)

// Cart belongs to exactly one owner and is created on first use.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"size:191;uniqueIndex;not null" json:"user_id"`
	Status    CartStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem keeps the title, image and prices seen when the line was first added.
type CartItem struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	CartID              uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID           uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product;index" json:"product_id"`
	TitleSnapshot       string    `gorm:"size:255;not null" json:"title_snapshot"`
	ImgSnapshot         string    `gorm:"type:text" json:"img_snapshot"`
	UnitPrice           Money     `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	UnitDiscountedPrice Money     `gorm:"type:numeric(10,2);not null" json:"unit_discounted_price"`
	Quantity            int       `gorm:"not null" json:"quantity"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is the discounted unit price times quantity.
func (i CartItem) LineTotal() Money {
	return i.UnitDiscountedPrice.Mul(i.Quantity)
}

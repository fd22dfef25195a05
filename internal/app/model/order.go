package model

import "time"

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Order struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	UserID            string        `gorm:"size:191;not null;index" json:"user_id"`
	Status            OrderStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus     PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	SubtotalAmount    Money         `gorm:"type:numeric(10,2);not null" json:"subtotal_amount"`
	DiscountAmount    Money         `gorm:"type:numeric(10,2);not null" json:"discount_amount"`
	ShippingAmount    Money         `gorm:"type:numeric(10,2);not null" json:"shipping_amount"`
	TotalAmount       Money         `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Currency          string        `gorm:"size:10" json:"currency"`
	PaymentProvider   string        `gorm:"size:50" json:"payment_provider,omitempty"`
	PaymentSessionID  string        `gorm:"size:255;index" json:"payment_session_id,omitempty"`
	ShippingAddressID *uint         `gorm:"index" json:"shipping_address_id,omitempty"`
	BillingAddressID  *uint         `gorm:"index" json:"billing_address_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	ShippingAddress *Address    `gorm:"foreignKey:ShippingAddressID;constraint:OnDelete:SET NULL" json:"shipping_address,omitempty"`
	BillingAddress  *Address    `gorm:"foreignKey:BillingAddressID;constraint:OnDelete:SET NULL" json:"billing_address,omitempty"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	OrderID             uint      `gorm:"not null;uniqueIndex:idx_order_items_order_product" json:"order_id"`
	ProductID           uint      `gorm:"not null;uniqueIndex:idx_order_items_order_product;index" json:"product_id"`
	TitleSnapshot       string    `gorm:"size:255;not null" json:"title_snapshot"`
	ImgSnapshot         string    `gorm:"type:text" json:"img_snapshot"`
	UnitPrice           Money     `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	UnitDiscountedPrice Money     `gorm:"type:numeric(10,2);not null" json:"unit_discounted_price"`
	Quantity            int       `gorm:"not null" json:"quantity"`
	CreatedAt           time.Time `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

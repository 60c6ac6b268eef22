package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"

	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"

	PaymentMethodCOD    = "cod"
	PaymentMethodEsewa  = "esewa"
	PaymentMethodKhalti = "khalti"
)

// OrderStatuses lists every status an admin may set, in display order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// StatusBadge is the display data for an order status.
type StatusBadge struct {
	Label string `json:"label"`
	Tone  string `json:"tone"` // warning, info, success, danger, neutral
}

// BadgeFor maps a status to its label and tone. Unknown statuses render
// as a neutral badge carrying the raw value.
func BadgeFor(status string) StatusBadge {
	switch status {
	case OrderStatusPending:
		return StatusBadge{Label: "Pending", Tone: "warning"}
	case OrderStatusProcessing:
		return StatusBadge{Label: "Processing", Tone: "info"}
	case OrderStatusShipped:
		return StatusBadge{Label: "Shipped", Tone: "info"}
	case OrderStatusDelivered:
		return StatusBadge{Label: "Delivered", Tone: "success"}
	case OrderStatusCancelled:
		return StatusBadge{Label: "Cancelled", Tone: "danger"}
	default:
		return StatusBadge{Label: status, Tone: "neutral"}
	}
}

// IsOnlinePayment reports whether the method is settled outside delivery.
func IsOnlinePayment(method string) bool {
	return method == PaymentMethodEsewa || method == PaymentMethodKhalti
}

// Order is the model for the 'orders' table
type Order struct {
	ID            int64  `json:"id" gorm:"primaryKey"`
	OrderNumber   string `json:"orderNumber" gorm:"size:32;uniqueIndex;not null"`
	UserID        int64  `json:"userId" gorm:"index;not null"`
	AddressID     *int64 `json:"addressId,omitempty" gorm:"index"`
	Status        string `json:"status" gorm:"size:20;index;not null"`
	PaymentMethod string `json:"paymentMethod" gorm:"size:20;not null"`
	PaymentStatus string `json:"paymentStatus" gorm:"size:20;not null"`

	// Shipping snapshot, kept even if the address is later edited or deleted.
	ShippingName    string `json:"shippingName" gorm:"size:150"`
	ShippingPhone   string `json:"shippingPhone" gorm:"size:30"`
	ShippingAddress string `json:"shippingAddress" gorm:"type:text"`

	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	ShippingFee decimal.Decimal `json:"shippingFee" gorm:"type:decimal(12,2);not null"`
	Tax         decimal.Decimal `json:"tax" gorm:"type:decimal(12,2);not null"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Notes       string          `json:"notes,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	User    *User       `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Address *Address    `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Items   []OrderItem `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	Badge StatusBadge `json:"badge" gorm:"-"`
}

// IsPaymentOverdue reports whether an online-payment order placed before the
// cutoff is still waiting for its money.
func (o *Order) IsPaymentOverdue(placedBefore time.Time) bool {
	return o.Status == OrderStatusPending &&
		o.PaymentStatus == PaymentUnpaid &&
		IsOnlinePayment(o.PaymentMethod) &&
		o.CreatedAt.Before(placedBefore)
}

// AfterFind fills the display badge whenever an order is loaded.
func (o *Order) AfterFind(_ *gorm.DB) error {
	o.Badge = BadgeFor(o.Status)
	return nil
}

// OrderItem is the model for the 'order_items' table
type OrderItem struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	OrderID     int64           `json:"orderId" gorm:"index;not null"`
	VariantID   *int64          `json:"variantId,omitempty" gorm:"index"`
	ProductID   *int64          `json:"productId,omitempty" gorm:"index"`
	ProductName string          `json:"productName" gorm:"size:200;not null"`
	VariantName string          `json:"variantName" gorm:"size:150"`
	SKU         string          `json:"sku" gorm:"size:64"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2);not null"` // Price at the time of purchase
	Quantity    int             `json:"quantity" gorm:"not null"`
	LineTotal   decimal.Decimal `json:"lineTotal" gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `json:"createdAt"`
}

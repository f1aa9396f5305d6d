package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thescentlab/scentlab-backend/pkg/enums"
)

// Order is a persisted checkout. Inventory is deducted in the same
// transaction that creates the row; status transitions never touch stock.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      *uuid.UUID        `gorm:"column:user_id;type:uuid;index"`
	GuestEmail  *string           `gorm:"column:guest_email"`
	Status      enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	ShipName    string            `gorm:"column:ship_name;not null"`
	ShipLine1   string            `gorm:"column:ship_line1;not null"`
	ShipLine2   *string           `gorm:"column:ship_line2"`
	ShipCity    string            `gorm:"column:ship_city;not null"`
	ShipState   string            `gorm:"column:ship_state;not null"`
	ShipPostal  string            `gorm:"column:ship_postal;not null"`
	ShipCountry string            `gorm:"column:ship_country;not null"`
	Subtotal    decimal.Decimal   `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Shipping    decimal.Decimal   `gorm:"column:shipping;type:numeric(10,2);not null"`
	Total       decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	PayMethod   string            `gorm:"column:pay_method;not null;default:'simulated'"`
	PaidAt      *time.Time        `gorm:"column:paid_at"`
	ShippedAt   *time.Time        `gorm:"column:shipped_at"`
	DeliveredAt *time.Time        `gorm:"column:delivered_at"`
	CancelledAt *time.Time        `gorm:"column:cancelled_at"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

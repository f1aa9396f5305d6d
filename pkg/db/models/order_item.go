package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thescentlab/scentlab-backend/pkg/enums"
)

// OrderItem is one purchased line. PriceAtPurchase is captured from the
// catalog at checkout so later price edits never change historical orders.
type OrderItem struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	FragranceID     uuid.UUID          `gorm:"column:fragrance_id;type:uuid;not null"`
	PurchaseType    enums.PurchaseType `gorm:"column:purchase_type;not null"`
	Quantity        int                `gorm:"column:quantity;not null"`
	MlQuantity      int                `gorm:"column:ml_quantity;not null;default:0"`
	PriceAtPurchase decimal.Decimal    `gorm:"column:price_at_purchase;type:numeric(10,2);not null"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// LedgerQuantity is the quantity the inventory ledger deducts for this line:
// bottle count for sealed purchases, total milliliters for decants.
func (i OrderItem) LedgerQuantity() int {
	if i.PurchaseType == enums.PurchaseTypeDecant {
		return i.MlQuantity * i.Quantity
	}
	return i.Quantity
}

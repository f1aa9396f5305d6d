package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

// ShippingAddress is the destination captured on the order.
type ShippingAddress struct {
	Name       string  `json:"name"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// OrderItemInput is one requested line in a checkout draft.
type OrderItemInput struct {
	FragranceID uuid.UUID
	Type        enums.PurchaseType
	Quantity    int
	// MlQuantity is the decant unit size in milliliters. Ignored for
	// bottle purchases.
	MlQuantity int
}

// CreateOrderInput is the checkout draft. Either UserID or GuestEmail must
// be present.
type CreateOrderInput struct {
	UserID     *uuid.UUID
	GuestEmail *string
	Address    ShippingAddress
	Items      []OrderItemInput
}

// UpdateStatusInput requests one state machine transition.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
}

// OrderItemDTO is the read model for one purchased line.
type OrderItemDTO struct {
	ID              uuid.UUID          `json:"id"`
	FragranceID     uuid.UUID          `json:"fragrance_id"`
	PurchaseType    enums.PurchaseType `json:"purchase_type"`
	Quantity        int                `json:"quantity"`
	MlQuantity      int                `json:"ml_quantity,omitempty"`
	PriceAtPurchase decimal.Decimal    `json:"price_at_purchase"`
}

// OrderDTO is the read model returned to controllers.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	UserID      *uuid.UUID        `json:"user_id,omitempty"`
	GuestEmail  *string           `json:"guest_email,omitempty"`
	Status      enums.OrderStatus `json:"status"`
	Address     ShippingAddress   `json:"shipping_address"`
	Items       []OrderItemDTO    `json:"items"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
	Shipping    decimal.Decimal   `json:"shipping"`
	Total       decimal.Decimal   `json:"total"`
	PayMethod   string            `json:"pay_method"`
	PaidAt      *time.Time        `json:"paid_at,omitempty"`
	ShippedAt   *time.Time        `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ListInput pages a user's order history.
type ListInput struct {
	UserID     uuid.UUID
	Pagination pagination.Params
}

func toOrderDTO(order models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:              item.ID,
			FragranceID:     item.FragranceID,
			PurchaseType:    item.PurchaseType,
			Quantity:        item.Quantity,
			MlQuantity:      item.MlQuantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}
	return OrderDTO{
		ID:         order.ID,
		UserID:     order.UserID,
		GuestEmail: order.GuestEmail,
		Status:     order.Status,
		Address: ShippingAddress{
			Name:       order.ShipName,
			Line1:      order.ShipLine1,
			Line2:      order.ShipLine2,
			City:       order.ShipCity,
			State:      order.ShipState,
			PostalCode: order.ShipPostal,
			Country:    order.ShipCountry,
		},
		Items:       items,
		Subtotal:    order.Subtotal,
		Shipping:    order.Shipping,
		Total:       order.Total,
		PayMethod:   order.PayMethod,
		PaidAt:      order.PaidAt,
		ShippedAt:   order.ShippedAt,
		DeliveredAt: order.DeliveredAt,
		CancelledAt: order.CancelledAt,
		CreatedAt:   order.CreatedAt,
	}
}

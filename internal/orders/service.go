package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thescentlab/scentlab-backend/internal/inventory"
	"github.com/thescentlab/scentlab-backend/pkg/config"
	"github.com/thescentlab/scentlab-backend/pkg/db"
	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
	"github.com/thescentlab/scentlab-backend/pkg/metrics"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// fragranceLoader resolves catalog prices at checkout time. Lookups run
// through the checkout transaction so they never contend with the inventory
// locks it already holds.
type fragranceLoader interface {
	FindActiveByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Fragrance, error)
}

// stockDeductor applies one deduction inside the checkout transaction.
type stockDeductor interface {
	DeductTx(ctx context.Context, tx *gorm.DB, input inventory.DeductInput) (*inventory.DeductResult, error)
}

// Service turns checkout drafts into persisted orders and drives the order
// status state machine.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	ListByUser(ctx context.Context, input ListInput) (*pagination.Page[OrderDTO], error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
	Cancel(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo          *Repository
	fragrances    fragranceLoader
	ledger        stockDeductor
	tx            txRunner
	logg          *logger.Logger
	metrics       *metrics.InventoryMetrics
	flatFee       decimal.Decimal
	freeThreshold decimal.Decimal
	now           func() time.Time
}

// NewService constructs an order service instance.
func NewService(
	repo *Repository,
	fragrances fragranceLoader,
	ledger stockDeductor,
	tx txRunner,
	logg *logger.Logger,
	m *metrics.InventoryMetrics,
	shipping config.ShippingConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if fragrances == nil {
		return nil, fmt.Errorf("fragrance loader required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:          repo,
		fragrances:    fragrances,
		ledger:        ledger,
		tx:            tx,
		logg:          logg,
		metrics:       m,
		flatFee:       shipping.FlatFeeAmount(),
		freeThreshold: shipping.FreeThresholdAmount(),
		now:           time.Now,
	}, nil
}

// CreateOrder validates the draft, deducts stock for every line item, and
// persists the order, all inside one transaction. If any line item cannot be
// satisfied the transaction rolls back and no stock moves.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if err := validateDraft(input); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:          uuid.New(),
		UserID:      input.UserID,
		GuestEmail:  input.GuestEmail,
		Status:      enums.OrderStatusPending,
		ShipName:    strings.TrimSpace(input.Address.Name),
		ShipLine1:   strings.TrimSpace(input.Address.Line1),
		ShipLine2:   input.Address.Line2,
		ShipCity:    strings.TrimSpace(input.Address.City),
		ShipState:   strings.TrimSpace(input.Address.State),
		ShipPostal:  strings.TrimSpace(input.Address.PostalCode),
		ShipCountry: strings.TrimSpace(input.Address.Country),
		PayMethod:   "simulated",
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))

		for _, draft := range input.Items {
			item, err := s.fulfillItem(ctx, tx, order.ID, draft)
			if err != nil {
				return err
			}
			subtotal = subtotal.Add(item.PriceAtPurchase)
			items = append(items, *item)
		}

		order.Items = items
		order.Subtotal = subtotal
		order.Shipping = s.shippingFor(subtotal)
		order.Total = subtotal.Add(order.Shipping)
		paidAt := s.now().UTC()
		order.PaidAt = &paidAt

		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveOrderCreated(len(order.Items))
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, "order created")

	dto := toOrderDTO(*order)
	return &dto, nil
}

// fulfillItem resolves the live catalog price, deducts stock, and returns the
// persisted line with its captured price.
func (s *service) fulfillItem(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, draft OrderItemInput) (*models.OrderItem, error) {
	fragrance, err := s.fragrances.FindActiveByIDTx(ctx, tx, draft.FragranceID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fragrance not found").
				WithDetails(map[string]any{"fragrance_id": draft.FragranceID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fragrance")
	}

	item := models.OrderItem{
		ID:           uuid.New(),
		OrderID:      orderID,
		FragranceID:  draft.FragranceID,
		PurchaseType: draft.Type,
		Quantity:     draft.Quantity,
	}
	if draft.Type == enums.PurchaseTypeDecant {
		item.MlQuantity = draft.MlQuantity
		item.PriceAtPurchase = fragrance.PerMlPrice.
			Mul(decimal.NewFromInt(int64(draft.MlQuantity))).
			Mul(decimal.NewFromInt(int64(draft.Quantity))).
			Round(2)
	} else {
		item.PriceAtPurchase = fragrance.BottlePrice.
			Mul(decimal.NewFromInt(int64(draft.Quantity))).
			Round(2)
	}

	if _, err := s.ledger.DeductTx(ctx, tx, inventory.DeductInput{
		FragranceID: draft.FragranceID,
		Type:        draft.Type,
		Quantity:    item.LedgerQuantity(),
	}); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *service) shippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(s.freeThreshold) {
		return decimal.Zero
	}
	return s.flatFee
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapFindErr(err)
	}
	dto := toOrderDTO(*order)
	return &dto, nil
}

func (s *service) ListByUser(ctx context.Context, input ListInput) (*pagination.Page[OrderDTO], error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListByUser(ctx, input.UserID, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	dtos := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toOrderDTO(row))
	}
	page := pagination.BuildPage(dtos, input.Pagination.Limit, func(dto OrderDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: dto.CreatedAt, ID: dto.ID}
	})
	return &page, nil
}

// UpdateStatus applies one state machine transition, stamping the matching
// timestamp. Status changes never touch inventory.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.Status))
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			return mapFindErr(err)
		}

		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("cannot transition order from %q to %q", order.Status, input.Status)).
				WithDetails(map[string]any{"current": order.Status, "requested": input.Status})
		}

		now := s.now().UTC()
		fields := map[string]any{"status": input.Status}
		order.Status = input.Status
		switch input.Status {
		case enums.OrderStatusShipped:
			fields["shipped_at"] = now
			order.ShippedAt = &now
		case enums.OrderStatusDelivered:
			fields["delivered_at"] = now
			order.DeliveredAt = &now
		case enums.OrderStatusCancelled:
			fields["cancelled_at"] = now
			order.CancelledAt = &now
		}

		if err := repo.UpdateFields(ctx, order.ID, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, updated.ID.String())
	s.logg.Info(ctx, "order status updated")

	dto := toOrderDTO(*updated)
	return &dto, nil
}

// Cancel is a convenience wrapper for the cancelled transition. Cancelling
// does not restock: inventory moves only at creation.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	return s.UpdateStatus(ctx, UpdateStatusInput{OrderID: id, Status: enums.OrderStatusCancelled})
}

func validateDraft(input CreateOrderInput) error {
	if input.UserID == nil && (input.GuestEmail == nil || strings.TrimSpace(*input.GuestEmail) == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "either a user or a guest email is required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	for i, item := range input.Items {
		if !item.Type.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: invalid purchase type %q", i, item.Type))
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if item.Type == enums.PurchaseTypeDecant && item.MlQuantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: ml quantity must be positive for decants", i))
		}
	}

	addr := input.Address
	for field, value := range map[string]string{
		"name":        addr.Name,
		"line1":       addr.Line1,
		"city":        addr.City,
		"state":       addr.State,
		"postal_code": addr.PostalCode,
		"country":     addr.Country,
	} {
		if strings.TrimSpace(value) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("shipping address %s is required", field))
		}
	}
	return nil
}

func mapFindErr(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
}

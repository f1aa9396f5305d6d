package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
)

func TestCreateOrderFlatShippingBelowThreshold(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	fragranceID := mustSeedFragranceWithStock(t, conn, "85", "1.50", 5, 50, 0)
	userID := uuid.New()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:  &userID,
		Address: testAddress(),
		Items: []OrderItemInput{
			{FragranceID: fragranceID, Type: enums.PurchaseTypeBottle, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "85", order.Subtotal.String())
	assert.Equal(t, "9.99", order.Shipping.String())
	assert.Equal(t, "94.99", order.Total.String())
	require.NotNil(t, order.PaidAt)

	stock := loadStock(t, conn, fragranceID)
	assert.Equal(t, 4, stock.SealedBottles)
}

func TestCreateOrderFreeShippingAtThreshold(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	fragranceID := mustSeedFragranceWithStock(t, conn, "120", "1.50", 2, 50, 0)
	userID := uuid.New()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:  &userID,
		Address: testAddress(),
		Items: []OrderItemInput{
			{FragranceID: fragranceID, Type: enums.PurchaseTypeBottle, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "120", order.Subtotal.String())
	assert.True(t, order.Shipping.IsZero())
	assert.Equal(t, "120", order.Total.String())
}

func TestCreateOrderDecantPriceCapture(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	fragranceID := mustSeedFragranceWithStock(t, conn, "200", "2.50", 1, 50, 30)
	userID := uuid.New()

	// 2 decant units of 10 ml at 2.50/ml captures 50.00 for the line.
	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:  &userID,
		Address: testAddress(),
		Items: []OrderItemInput{
			{FragranceID: fragranceID, Type: enums.PurchaseTypeDecant, Quantity: 2, MlQuantity: 10},
		},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "50", order.Items[0].PriceAtPurchase.String())

	stock := loadStock(t, conn, fragranceID)
	assert.Equal(t, 10, stock.OpenDecantMl)
	assert.Equal(t, 1, stock.SealedBottles)
}

func TestCreateOrderMultiItemRollback(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	plentiful := mustSeedFragranceWithStock(t, conn, "50", "1", 10, 50, 100)
	scarce := mustSeedFragranceWithStock(t, conn, "60", "1", 0, 50, 5)
	userID := uuid.New()

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:  &userID,
		Address: testAddress(),
		Items: []OrderItemInput{
			{FragranceID: plentiful, Type: enums.PurchaseTypeBottle, Quantity: 2},
			{FragranceID: scarce, Type: enums.PurchaseTypeDecant, Quantity: 1, MlQuantity: 40},
		},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	// The first item's deduction must roll back with the failed order.
	stock := loadStock(t, conn, plentiful)
	assert.Equal(t, 10, stock.SealedBottles)

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "no order may be persisted when a line item fails")
}

func TestCreateOrderGuestCheckout(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	fragranceID := mustSeedFragranceWithStock(t, conn, "40", "1", 3, 50, 0)

	guestEmail := "guest@example.com"
	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		GuestEmail: &guestEmail,
		Address:    testAddress(),
		Items: []OrderItemInput{
			{FragranceID: fragranceID, Type: enums.PurchaseTypeBottle, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, order.UserID)
	require.NotNil(t, order.GuestEmail)
	assert.Equal(t, guestEmail, *order.GuestEmail)
}

func TestCreateOrderValidation(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	fragranceID := mustSeedFragranceWithStock(t, conn, "40", "1", 3, 50, 0)
	userID := uuid.New()

	cases := map[string]CreateOrderInput{
		"no identity": {
			Address: testAddress(),
			Items:   []OrderItemInput{{FragranceID: fragranceID, Type: enums.PurchaseTypeBottle, Quantity: 1}},
		},
		"no items": {
			UserID:  &userID,
			Address: testAddress(),
		},
		"bad type": {
			UserID:  &userID,
			Address: testAddress(),
			Items:   []OrderItemInput{{FragranceID: fragranceID, Type: "sample", Quantity: 1}},
		},
		"decant without ml": {
			UserID:  &userID,
			Address: testAddress(),
			Items:   []OrderItemInput{{FragranceID: fragranceID, Type: enums.PurchaseTypeDecant, Quantity: 1}},
		},
		"missing address": {
			UserID: &userID,
			Items:  []OrderItemInput{{FragranceID: fragranceID, Type: enums.PurchaseTypeBottle, Quantity: 1}},
		},
	}

	for name, input := range cases {
		_, err := svc.CreateOrder(ctx, input)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "case %q: expected typed error, got %v", name, err)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code(), "case %q", name)
	}
}

func TestCreateOrderUnknownFragrance(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	userID := uuid.New()

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  &userID,
		Address: testAddress(),
		Items: []OrderItemInput{
			{FragranceID: uuid.New(), Type: enums.PurchaseTypeBottle, Quantity: 1},
		},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateStatusTransitions(t *testing.T) {
	t.Parallel()

	frozen := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	svc, conn := newTestService(t, func() time.Time { return frozen })
	ctx := context.Background()
	fragranceID := mustSeedFragranceWithStock(t, conn, "40", "1", 3, 50, 0)
	userID := uuid.New()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:  &userID,
		Address: testAddress(),
		Items: []OrderItemInput{
			{FragranceID: fragranceID, Type: enums.PurchaseTypeBottle, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// Pending cannot jump straight to shipped.
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusShipped})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	processing, err := svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusProcessing})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, processing.Status)

	shipped, err := svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusShipped})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, shipped.Status)
	require.NotNil(t, shipped.ShippedAt)
	assert.True(t, shipped.ShippedAt.Equal(frozen))

	delivered, err := svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusDelivered})
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)

	// Delivered is terminal.
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusCancelled})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: uuid.New(), Status: "misplaced"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCancelDoesNotRestock(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	fragranceID := mustSeedFragranceWithStock(t, conn, "40", "1", 3, 50, 0)
	userID := uuid.New()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:  &userID,
		Address: testAddress(),
		Items: []OrderItemInput{
			{FragranceID: fragranceID, Type: enums.PurchaseTypeBottle, Quantity: 2},
		},
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	stock := loadStock(t, conn, fragranceID)
	assert.Equal(t, 1, stock.SealedBottles, "cancellation must not restock")
}

func TestListByUserPagination(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	fragranceID := mustSeedFragranceWithStock(t, conn, "40", "1", 10, 50, 0)
	userID := uuid.New()
	otherID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(ctx, CreateOrderInput{
			UserID:  &userID,
			Address: testAddress(),
			Items: []OrderItemInput{
				{FragranceID: fragranceID, Type: enums.PurchaseTypeBottle, Quantity: 1},
			},
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:  &otherID,
		Address: testAddress(),
		Items: []OrderItemInput{
			{FragranceID: fragranceID, Type: enums.PurchaseTypeBottle, Quantity: 1},
		},
	})
	require.NoError(t, err)

	page, err := svc.ListByUser(ctx, ListInput{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	for _, order := range page.Items {
		require.NotNil(t, order.UserID)
		assert.Equal(t, userID, *order.UserID)
		assert.NotEmpty(t, order.Items)
	}
}

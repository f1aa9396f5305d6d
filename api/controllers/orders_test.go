package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thescentlab/scentlab-backend/api/middleware"
	"github.com/thescentlab/scentlab-backend/internal/orders"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

type stubOrderService struct {
	createInput *orders.CreateOrderInput
	order       *orders.OrderDTO
	cancelled   bool
	err         error
}

func (s *stubOrderService) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error) {
	s.createInput = &input
	return s.order, s.err
}

func (s *stubOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) ListByUser(ctx context.Context, input orders.ListInput) (*pagination.Page[orders.OrderDTO], error) {
	return &pagination.Page[orders.OrderDTO]{Items: []orders.OrderDTO{}}, s.err
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) Cancel(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	s.cancelled = true
	return s.order, s.err
}

const checkoutBody = `{
	"guest_email": "guest@example.com",
	"shipping_address": {
		"name": "Jamie Rivera",
		"line1": "12 Cedar Lane",
		"city": "Austin",
		"state": "TX",
		"postal_code": "78701",
		"country": "US"
	},
	"items": [
		{"fragrance_id": "%s", "type": "decant", "quantity": 1, "ml_quantity": 10}
	]
}`

func checkoutRequest(t *testing.T) *http.Request {
	t.Helper()
	body := []byte(fmt.Sprintf(checkoutBody, uuid.New()))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestOrderCreateGuestUsesEmail(t *testing.T) {
	stub := &stubOrderService{order: &orders.OrderDTO{ID: uuid.New()}}
	handler := OrderCreate(stub, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(t))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.createInput == nil {
		t.Fatal("expected create to be called")
	}
	if stub.createInput.UserID != nil {
		t.Fatal("guest checkout must not carry a user id")
	}
	if stub.createInput.GuestEmail == nil || *stub.createInput.GuestEmail != "guest@example.com" {
		t.Fatalf("unexpected guest email %v", stub.createInput.GuestEmail)
	}
}

func TestOrderCreateAuthenticatedIgnoresGuestEmail(t *testing.T) {
	stub := &stubOrderService{order: &orders.OrderDTO{ID: uuid.New()}}
	handler := OrderCreate(stub, nil)

	userID := uuid.New()
	req := checkoutRequest(t)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.createInput.UserID == nil || *stub.createInput.UserID != userID {
		t.Fatalf("expected order bound to %s, got %v", userID, stub.createInput.UserID)
	}
	if stub.createInput.GuestEmail != nil {
		t.Fatal("authenticated checkout must not carry a guest email")
	}
}

func orderRequest(t *testing.T, method, path string, orderID uuid.UUID) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestOrderGetBlocksOtherUsers(t *testing.T) {
	owner := uuid.New()
	orderID := uuid.New()
	stub := &stubOrderService{order: &orders.OrderDTO{ID: orderID, UserID: &owner}}
	handler := OrderGet(stub, nil)

	req := orderRequest(t, http.MethodGet, "/api/v1/orders/"+orderID.String(), orderID)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New().String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestOrderGetAllowsOwner(t *testing.T) {
	owner := uuid.New()
	orderID := uuid.New()
	stub := &stubOrderService{order: &orders.OrderDTO{ID: orderID, UserID: &owner}}
	handler := OrderGet(stub, nil)

	req := orderRequest(t, http.MethodGet, "/api/v1/orders/"+orderID.String(), orderID)
	req = req.WithContext(middleware.WithUserID(req.Context(), owner.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrderGetGuestOrderRequiresAdmin(t *testing.T) {
	orderID := uuid.New()
	email := "guest@example.com"
	stub := &stubOrderService{order: &orders.OrderDTO{ID: orderID, GuestEmail: &email}}
	handler := OrderGet(stub, nil)

	req := orderRequest(t, http.MethodGet, "/api/v1/orders/"+orderID.String(), orderID)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New().String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	req = orderRequest(t, http.MethodGet, "/api/v1/orders/"+orderID.String(), orderID)
	ctx := middleware.WithUserID(req.Context(), uuid.New().String())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestOrderCancelChecksOwnership(t *testing.T) {
	owner := uuid.New()
	orderID := uuid.New()
	stub := &stubOrderService{order: &orders.OrderDTO{ID: orderID, UserID: &owner}}
	handler := OrderCancel(stub, nil)

	req := orderRequest(t, http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", orderID)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New().String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if stub.cancelled {
		t.Fatal("cancel must not run for non-owners")
	}
}

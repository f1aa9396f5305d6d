package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thescentlab/scentlab-backend/api/middleware"
	"github.com/thescentlab/scentlab-backend/api/responses"
	"github.com/thescentlab/scentlab-backend/api/validators"
	"github.com/thescentlab/scentlab-backend/internal/orders"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

type orderItemRequest struct {
	FragranceID string `json:"fragrance_id" validate:"required,uuid"`
	Type        string `json:"type" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	MlQuantity  int    `json:"ml_quantity,omitempty" validate:"min=0"`
}

type createOrderRequest struct {
	GuestEmail *string                `json:"guest_email,omitempty" validate:"omitempty,email"`
	Address    orders.ShippingAddress `json:"shipping_address" validate:"required"`
	Items      []orderItemRequest     `json:"items" validate:"required,min=1,dive"`
}

// OrderCreate runs checkout. Authenticated requests attach the order to the
// caller; anonymous requests must supply a guest email.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := orders.CreateOrderInput{
			Address: payload.Address,
			Items:   make([]orders.OrderItemInput, 0, len(payload.Items)),
		}
		for _, item := range payload.Items {
			fragranceID, err := uuid.Parse(item.FragranceID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fragrance id"))
				return
			}
			input.Items = append(input.Items, orders.OrderItemInput{
				FragranceID: fragranceID,
				Type:        enums.PurchaseType(strings.TrimSpace(item.Type)),
				Quantity:    item.Quantity,
				MlQuantity:  item.MlQuantity,
			})
		}

		if raw := middleware.UserIDFromContext(ctx); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session"))
				return
			}
			input.UserID = &userID
		} else {
			input.GuestEmail = payload.GuestEmail
		}

		order, err := svc.CreateOrder(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderGet returns a single order. Customers can only read their own orders;
// guest orders are visible to admins only.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.GetOrder(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := authorizeOrderAccess(ctx, order); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// MyOrders pages the authenticated user's order history.
func MyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.ListByUser(ctx, orders.ListInput{
			UserID: userID,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// OrderCancel cancels an order the caller owns. Cancelled stock is not
// returned to inventory.
func OrderCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		existing, err := svc.GetOrder(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := authorizeOrderAccess(ctx, existing); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Cancel(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminOrderUpdateStatus applies one status transition to any order.
func AdminOrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(ctx, orders.UpdateStatusInput{
			OrderID: id,
			Status:  enums.OrderStatus(strings.ToLower(strings.TrimSpace(payload.Status))),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// authorizeOrderAccess enforces owner-or-admin reads. Orders without an owner
// belong to guests and are admin-only.
func authorizeOrderAccess(ctx context.Context, order *orders.OrderDTO) error {
	if middleware.RoleFromContext(ctx) == string(enums.UserRoleAdmin) {
		return nil
	}
	userID, err := requireUserID(ctx)
	if err != nil {
		return err
	}
	if order.UserID == nil || *order.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
	}
	return nil
}

func requireUserID(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}
	return userID, nil
}

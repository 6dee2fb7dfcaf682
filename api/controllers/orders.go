package controllers

import (
	"context"
	"net/http"

	"github.com/agentfashion/storefront/api/middleware"
	"github.com/agentfashion/storefront/api/responses"
	"github.com/agentfashion/storefront/api/validators"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/types"
)

type OrderService interface {
	Checkout(ctx context.Context, req types.CheckoutRequest) (types.Order, error)
	Orders(ctx context.Context, userID string) []types.Order
}

func OrderCreate(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body types.CheckoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireSelfOrAdmin(r, body.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "order_id", order.OrderID), "order.created")
		}
		responses.WriteSuccess(w, http.StatusCreated, "Order placed", map[string]any{"order": order})
	}
}

// OrderList returns the caller's own orders.
func OrderList(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders := svc.Orders(r.Context(), middleware.UserIDFromContext(r.Context()))
		responses.WriteSuccess(w, http.StatusOK, "Orders fetched", map[string]any{"orders": orders})
	}
}

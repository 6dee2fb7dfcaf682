package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentfashion/storefront/api/middleware"
	"github.com/agentfashion/storefront/api/responses"
	"github.com/agentfashion/storefront/api/validators"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/types"
)

type CartService interface {
	Cart(ctx context.Context, userID string) []types.CartItem
	AddToCart(ctx context.Context, req types.AddToCartRequest) (types.CartItem, error)
	UpdateCartItem(ctx context.Context, userID, cartItemID string, quantity int) (types.CartItem, error)
	RemoveCartItem(ctx context.Context, userID, cartItemID string) error
}

func CartFetch(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if err := requireSelfOrAdmin(r, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := svc.Cart(r.Context(), userID)
		responses.WriteSuccess(w, http.StatusOK, "Cart fetched", map[string]any{"cart_items": items})
	}
}

func CartAdd(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body types.AddToCartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireSelfOrAdmin(r, body.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddToCart(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, http.StatusCreated, "Item added to cart", map[string]any{"cart_item": item})
	}
}

// CartUpdateItem changes the quantity of one of the caller's cart lines.
func CartUpdateItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body types.UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		item, err := svc.UpdateCartItem(r.Context(), userID, chi.URLParam(r, "cartItemId"), body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, http.StatusOK, "Cart item updated", map[string]any{"cart_item": item})
	}
}

func CartRemoveItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if err := svc.RemoveCartItem(r.Context(), userID, chi.URLParam(r, "cartItemId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, http.StatusOK, "Cart item removed", types.Status{Success: true})
	}
}

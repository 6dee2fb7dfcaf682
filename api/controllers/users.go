package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentfashion/storefront/api/middleware"
	"github.com/agentfashion/storefront/api/responses"
	"github.com/agentfashion/storefront/pkg/enums"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/types"
)

type UserService interface {
	GetUser(ctx context.Context, userID string) (types.User, error)
}

// UserProfile returns {user}. Callers may only read their own profile unless
// they are admins.
func UserProfile(svc UserService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if err := requireSelfOrAdmin(r, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.GetUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, "User fetched", map[string]any{"user": user})
	}
}

func requireSelfOrAdmin(r *http.Request, userID string) error {
	ctx := r.Context()
	if middleware.RoleFromContext(ctx) == enums.RoleAdmin || middleware.UserIDFromContext(ctx) == userID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "Not allowed to access this user")
}

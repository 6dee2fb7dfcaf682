package controllers

import (
	"context"
	"net/http"

	"github.com/agentfashion/storefront/api/middleware"
	"github.com/agentfashion/storefront/api/responses"
	"github.com/agentfashion/storefront/api/validators"
	"github.com/agentfashion/storefront/internal/backend"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/types"
)

// AuthService is the account surface used by the auth endpoints.
type AuthService interface {
	Register(ctx context.Context, req backend.RegisterRequest) (types.Registration, error)
	Login(ctx context.Context, req backend.LoginRequest) (types.AuthGrant, error)
	Logout(ctx context.Context, token string) error
}

// AuthRegister wires the register endpoint into the HTTP layer.
func AuthRegister(svc AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body backend.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusCreated, "User registered successfully", result)
	}
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body backend.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, http.StatusOK, "Login successful", result)
	}
}

// AuthLogout revokes the presented token. It succeeds without one.
func AuthLogout(svc AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := middleware.BearerToken(r); token != "" && svc != nil {
			if err := svc.Logout(r.Context(), token); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, http.StatusOK, "Logged out", types.Status{Success: true, Message: "Logged out"})
	}
}

package controllers

import (
	"net/http"

	"github.com/agentfashion/storefront/api/responses"
	"github.com/agentfashion/storefront/pkg/config"
)

func HealthLive(cfg *config.ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AgentFashion-Env", cfg.App.Env)
		responses.WriteSuccess(w, http.StatusOK, "live", map[string]string{"status": "live"})
	}
}

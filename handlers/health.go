package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"olympiad-registration-backend/utils"
)

var startTime = time.Now()

// HealthHandler gère les endpoints de santé
type HealthHandler struct {
	environment string
	backend     string
	ping        func(ctx context.Context) error
}

// NewHealthHandler crée un nouveau HealthHandler. ping peut être nil.
func NewHealthHandler(environment, backend string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{environment: environment, backend: backend, ping: ping}
}

// Health retourne l'état de santé du serveur
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			dbStatus = "error"
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"env":        h.environment,
		"database":   h.backend,
		"db_status":  dbStatus,
		"uptime":     time.Since(startTime).String(),
		"go_version": runtime.Version(),
	})
}

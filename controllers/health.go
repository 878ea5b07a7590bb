package controllers

import (
	"context"
	"net/http"
	"time"

	"vegmart/apperrors"
)

// HealthController reports whether the database answers
type HealthController struct {
	Ping func(ctx context.Context) error
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := hc.Ping(ctx); err != nil {
		writeError(w, r, apperrors.Upstream("Database unavailable", err))
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]string{"status": "ok"})
}

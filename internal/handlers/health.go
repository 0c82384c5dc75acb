package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/aora/backend/internal/docstore"
)

// HealthHandler reports liveness and whether the document store answers
type HealthHandler struct {
	store    docstore.Store
	backends map[string]string
}

// NewHealthHandler creates a HealthHandler; backends names the configured
// implementations and is echoed in the response.
func NewHealthHandler(store docstore.Store, backends map[string]string) *HealthHandler {
	return &HealthHandler{store: store, backends: backends}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	body := echo.Map{"status": "healthy", "service": "aora-api", "backends": h.backends}
	if _, err := h.store.Query(ctx, usersCollection, docstore.Query{Limit: 1}); err != nil {
		body["status"] = "degraded"
		body["error"] = err.Error()
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	return c.JSON(http.StatusOK, body)
}

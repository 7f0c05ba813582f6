// Package api provides the read-only HTTP endpoints for auction records.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MariaBraganca/immobyte/internal/store"
)

// Handler serves auction record requests.
type Handler struct {
	store store.Store
}

// NewHandler creates a new API handler.
func NewHandler(st store.Store) *Handler {
	return &Handler{store: st}
}

// Register registers the API routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/auctions", h.ListAuctions)
	e.GET("/auctions/:auction_id", h.GetAuction)
	e.GET("/healthz", h.Health)
}

// ListAuctions retrieves all auction records.
// GET /auctions
func (h *Handler) ListAuctions(c echo.Context) error {
	auctions, err := h.store.ListAuctions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"auctions": auctions,
	})
}

// GetAuction retrieves a single auction record.
// GET /auctions/:auction_id
func (h *Handler) GetAuction(c echo.Context) error {
	auctionID := c.Param("auction_id")

	auction, err := h.store.GetAuction(c.Request().Context(), auctionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if auction == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "auction not found"})
	}
	return c.JSON(http.StatusOK, auction)
}

// Health reports service liveness.
// GET /healthz
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MariaBraganca/immobyte/internal/api"
	"github.com/MariaBraganca/immobyte/internal/domain"
	"github.com/MariaBraganca/immobyte/internal/store"
)

func newTestHandler(t *testing.T) (*api.Handler, store.Store) {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return api.NewHandler(s), s
}

func seedAuction(t *testing.T, s store.Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, s.CreateAuction(context.Background(), &domain.Auction{
		AuctionID:   id,
		Number:      "K 17/23",
		Court:       "Amtsgericht Mitte",
		Object:      "Eigentumswohnung",
		Address:     "Musterstrasse 1, 10115 Berlin",
		Price:       250000,
		Appointment: now,
		Description: "2 Zimmer, 54 qm",
		ReportURL:   "https://example.com/report.pdf",
		CreatedAt:   now,
		UpdatedAt:   now,
	}))
}

func TestListAuctions(t *testing.T) {
	e := echo.New()
	h, s := newTestHandler(t)
	seedAuction(t, s, "a1")

	req := httptest.NewRequest(http.MethodGet, "/auctions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ListAuctions(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Auctions []domain.Auction `json:"auctions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Auctions, 1)
	assert.Equal(t, "K 17/23", resp.Auctions[0].Number)
}

func TestGetAuction(t *testing.T) {
	e := echo.New()
	h, s := newTestHandler(t)
	seedAuction(t, s, "a1")

	req := httptest.NewRequest(http.MethodGet, "/auctions/a1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("auction_id")
	c.SetParamValues("a1")

	require.NoError(t, h.GetAuction(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var auction domain.Auction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auction))
	assert.Equal(t, "Amtsgericht Mitte", auction.Court)
}

func TestGetAuctionNotFound(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auctions/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("auction_id")
	c.SetParamValues("missing")

	require.NoError(t, h.GetAuction(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/internal/scoring"
	"github.com/radarinvest/backend/pkg/logger"
)

// StocksHandler serves the snapshot catalogue.
type StocksHandler struct {
	stocks contracts.StockRepository
	logger *logger.Logger
}

// NewStocksHandler creates a stocks handler.
func NewStocksHandler(stocks contracts.StockRepository, log *logger.Logger) *StocksHandler {
	return &StocksHandler{
		stocks: stocks,
		logger: log,
	}
}

// StockListResponse is the stock list payload.
type StockListResponse struct {
	Count  int                        `json:"count"`
	Stocks []*contracts.StockSnapshot `json:"stocks"`
}

// List returns all snapshots, or only the qualified subset.
// GET /api/stocks?qualified=true
func (h *StocksHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		snapshots []*contracts.StockSnapshot
		err       error
	)
	if r.URL.Query().Get("qualified") == "true" {
		snapshots, err = h.stocks.ListQualified(ctx)
	} else {
		snapshots, err = h.stocks.ListAll(ctx)
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to list stocks")
		respondError(w, http.StatusInternalServerError, "Failed to list stocks")
		return
	}

	respondJSON(w, http.StatusOK, StockListResponse{
		Count:  len(snapshots),
		Stocks: snapshots,
	})
}

// Get returns one snapshot by ticker.
// GET /api/stocks/{ticker}
func (h *StocksHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	snapshot, err := h.stocks.GetByTicker(ctx, ticker)
	if errors.Is(err, scoring.ErrStockNotFound) {
		respondError(w, http.StatusNotFound, "Stock not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get stock")
		respondError(w, http.StatusInternalServerError, "Failed to get stock")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/internal/strategy"
	"github.com/radarinvest/backend/pkg/logger"
)

// StrategiesHandler serves strategy CRUD plus on-demand evaluation.
type StrategiesHandler struct {
	strategies contracts.StrategyRepository
	stocks     contracts.StockRepository
	evaluator  contracts.StrategyEvaluator
	logger     *logger.Logger
}

// NewStrategiesHandler creates a strategies handler.
func NewStrategiesHandler(
	strategies contracts.StrategyRepository,
	stocks contracts.StockRepository,
	evaluator contracts.StrategyEvaluator,
	log *logger.Logger,
) *StrategiesHandler {
	return &StrategiesHandler{
		strategies: strategies,
		stocks:     stocks,
		evaluator:  evaluator,
		logger:     log,
	}
}

// StrategyRequest is the create/update payload.
type StrategyRequest struct {
	Name                 string                 `json:"name"`
	Description          string                 `json:"description"`
	NotificationsEnabled bool                   `json:"notifications_enabled"`
	Rules                []contracts.FilterRule `json:"rules"`
}

// List returns the caller's active strategies.
// GET /api/strategies
func (h *StrategiesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	strategies, err := h.strategies.ListByUser(ctx, uid)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list strategies")
		respondError(w, http.StatusInternalServerError, "Failed to list strategies")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(strategies),
		"strategies": strategies,
	})
}

// Get returns one strategy.
// GET /api/strategies/{id}
func (h *StrategiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	strat, err := h.strategies.Get(ctx, id)
	if errors.Is(err, strategy.ErrStrategyNotFound) {
		respondError(w, http.StatusNotFound, "Strategy not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get strategy")
		respondError(w, http.StatusInternalServerError, "Failed to get strategy")
		return
	}
	if strat.UserID != uid {
		respondError(w, http.StatusNotFound, "Strategy not found")
		return
	}

	respondJSON(w, http.StatusOK, strat)
}

// Create creates a strategy for the caller.
// POST /api/strategies
func (h *StrategiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req StrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	strat := &contracts.Strategy{
		UserID:               uid,
		Name:                 req.Name,
		Description:          req.Description,
		NotificationsEnabled: req.NotificationsEnabled,
		Rules:                req.Rules,
		Active:               true,
	}
	if err := strat.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.strategies.Create(ctx, strat); err != nil {
		h.logger.WithError(err).Error("Failed to create strategy")
		respondError(w, http.StatusInternalServerError, "Failed to create strategy")
		return
	}

	respondJSON(w, http.StatusCreated, strat)
}

// Update rewrites a strategy and its rules.
// PUT /api/strategies/{id}
func (h *StrategiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req StrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	strat := &contracts.Strategy{
		ID:                   id,
		UserID:               uid,
		Name:                 req.Name,
		Description:          req.Description,
		NotificationsEnabled: req.NotificationsEnabled,
		Rules:                req.Rules,
		Active:               true,
	}
	if err := strat.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.strategies.Update(ctx, strat)
	if errors.Is(err, strategy.ErrStrategyNotFound) {
		respondError(w, http.StatusNotFound, "Strategy not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to update strategy")
		respondError(w, http.StatusInternalServerError, "Failed to update strategy")
		return
	}

	respondJSON(w, http.StatusOK, strat)
}

// Deactivate soft-deletes a strategy.
// DELETE /api/strategies/{id}
func (h *StrategiesHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.strategies.Deactivate(ctx, id, uid)
	if errors.Is(err, strategy.ErrStrategyNotFound) {
		respondError(w, http.StatusNotFound, "Strategy not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to deactivate strategy")
		respondError(w, http.StatusInternalServerError, "Failed to deactivate strategy")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Matches evaluates a strategy against the current cohort.
// GET /api/strategies/{id}/matches
func (h *StrategiesHandler) Matches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	strat, err := h.strategies.Get(ctx, id)
	if errors.Is(err, strategy.ErrStrategyNotFound) {
		respondError(w, http.StatusNotFound, "Strategy not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get strategy")
		respondError(w, http.StatusInternalServerError, "Failed to get strategy")
		return
	}
	if strat.UserID != uid {
		respondError(w, http.StatusNotFound, "Strategy not found")
		return
	}

	cohort, err := h.stocks.ListAll(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load cohort")
		respondError(w, http.StatusInternalServerError, "Failed to load stocks")
		return
	}

	matches := h.evaluator.Apply(ctx, cohort, strat)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"strategy_id": strat.ID,
		"count":       len(matches),
		"stocks":      matches,
	})
}

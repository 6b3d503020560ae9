package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/pkg/logger"
	"github.com/radarinvest/backend/pkg/redis"
)

// RecommendationsHandler serves the ranked recommendation list. Results
// are cached per (archetype, limit) because scoring a cohort is the most
// expensive request this API serves.
type RecommendationsHandler struct {
	stocks       contracts.StockRepository
	recommender  contracts.Recommender
	cache        *redis.Cache
	cacheTTL     time.Duration
	defaultLimit int
	maxLimit     int
	logger       *logger.Logger
}

// NewRecommendationsHandler creates a recommendations handler.
func NewRecommendationsHandler(
	stocks contracts.StockRepository,
	recommender contracts.Recommender,
	cache *redis.Cache,
	cacheTTL time.Duration,
	defaultLimit, maxLimit int,
	log *logger.Logger,
) *RecommendationsHandler {
	return &RecommendationsHandler{
		stocks:       stocks,
		recommender:  recommender,
		cache:        cache,
		cacheTTL:     cacheTTL,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       log,
	}
}

// RecommendationsResponse is the recommendation list payload.
type RecommendationsResponse struct {
	Archetype contracts.Archetype        `json:"archetype"`
	Count     int                        `json:"count"`
	Stocks    []*contracts.StockSnapshot `json:"stocks"`
}

// List returns the top recommendations for an archetype.
// GET /api/recommendations?archetype=patient_partner&limit=10
func (h *RecommendationsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	archetype := contracts.Archetype(r.URL.Query().Get("archetype"))
	if archetype == "" {
		archetype = contracts.ArchetypePatientPartner
	}
	if !archetype.Valid() {
		respondError(w, http.StatusBadRequest, "Unknown archetype")
		return
	}

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	cacheKey := fmt.Sprintf("recommendations:%s:%d", archetype, limit)

	var cached RecommendationsResponse
	found, err := h.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		h.logger.WithError(err).Warn("Recommendation cache read failed")
	}
	if found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	cohort, err := h.stocks.ListAll(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load cohort")
		respondError(w, http.StatusInternalServerError, "Failed to load stocks")
		return
	}

	top := h.recommender.Recommend(ctx, cohort, archetype, limit)
	resp := RecommendationsResponse{
		Archetype: archetype,
		Count:     len(top),
		Stocks:    top,
	}

	if err := h.cache.Set(ctx, cacheKey, resp, h.cacheTTL); err != nil {
		h.logger.WithError(err).Warn("Recommendation cache write failed")
	}

	respondJSON(w, http.StatusOK, resp)
}

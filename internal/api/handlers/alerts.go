package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/radarinvest/backend/internal/alerting"
	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/internal/users"
	"github.com/radarinvest/backend/pkg/logger"
	"github.com/radarinvest/backend/pkg/redis"
)

// Generation is already idempotent through the dedup windows; the rate
// limit only keeps one client from hammering the full scoring pipeline.
const (
	generateLimit  = 5
	generateWindow = time.Hour
)

// AlertsHandler serves the alert inbox and on-demand generation.
type AlertsHandler struct {
	alerts    contracts.AlertRepository
	users     contracts.UserRepository
	generator contracts.AlertGenerator
	limiter   *redis.RateLimiter
	logger    *logger.Logger
}

// NewAlertsHandler creates an alerts handler.
func NewAlertsHandler(
	alerts contracts.AlertRepository,
	userRepo contracts.UserRepository,
	generator contracts.AlertGenerator,
	limiter *redis.RateLimiter,
	log *logger.Logger,
) *AlertsHandler {
	return &AlertsHandler{
		alerts:    alerts,
		users:     userRepo,
		generator: generator,
		limiter:   limiter,
		logger:    log,
	}
}

// List returns the caller's alerts, newest first.
// GET /api/alerts?unread=true
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	list, err := h.alerts.ListByUser(ctx, uid, unreadOnly)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list alerts")
		respondError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(list),
		"alerts": list,
	})
}

// Generate runs all alert checks for the caller.
// POST /api/alerts/generate
func (h *AlertsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, err := userID(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	allowed, remaining, err := h.limiter.Allow(ctx, redis.RateLimitConfig{
		Key:    fmt.Sprintf("alerts:generate:%d", uid),
		Limit:  generateLimit,
		Window: generateWindow,
	})
	if err != nil {
		h.logger.WithError(err).Warn("Rate limit check failed, allowing request")
	} else if !allowed {
		respondError(w, http.StatusTooManyRequests, "Alert generation limit reached, try again later")
		return
	}

	user, err := h.users.Get(ctx, uid)
	if errors.Is(err, users.ErrUserNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load user")
		respondError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	created, err := h.generator.GenerateAll(ctx, user)
	if err != nil {
		h.logger.WithError(err).Error("Alert generation failed")
		respondError(w, http.StatusInternalServerError, "Alert generation failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"created":   len(created),
		"alerts":    created,
		"remaining": remaining,
	})
}

// MarkRead marks one alert as read.
// POST /api/alerts/{id}/read
func (h *AlertsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, contracts.AlertRead)
}

// Dismiss dismisses one alert.
// POST /api/alerts/{id}/dismiss
func (h *AlertsHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, contracts.AlertDismissed)
}

func (h *AlertsHandler) updateStatus(w http.ResponseWriter, r *http.Request, status contracts.AlertStatus) {
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

	err = h.alerts.UpdateStatus(ctx, id, uid, status)
	if errors.Is(err, alerting.ErrAlertNotFound) {
		respondError(w, http.StatusNotFound, "Alert not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to update alert")
		respondError(w, http.StatusInternalServerError, "Failed to update alert")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id,
		"status": status,
	})
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/webspider/backend/internal/auth"
	"github.com/andres10976/webspider/backend/internal/model"
	"github.com/andres10976/webspider/backend/internal/service/events"
)

type alertStore interface {
	Upsert(ctx context.Context, targetEmail, message string, isActive bool) error
	ListActiveFor(ctx context.Context, userEmail string) ([]model.Alert, error)
}

type AlertHandler struct {
	gate   adminGate
	repo   alertStore
	events changePublisher
}

func NewAlertHandler(gate adminGate, repo alertStore, events changePublisher) *AlertHandler {
	return &AlertHandler{gate: gate, repo: repo, events: events}
}

func (h *AlertHandler) RegisterRoutes(r chi.Router) {
	r.Post("/alerts", h.Set)
	r.Post("/alerts/active", h.Active)
}

// Active returns the alerts a user should see: the broadcast alert and
// any alert addressed to them, active ones only.
func (h *AlertHandler) Active(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserEmail string `json:"user_email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserEmail == "" {
		writeError(w, http.StatusBadRequest, "User email is required")
		return
	}
	if !auth.Permits(r.Context(), req.UserEmail) {
		writeError(w, http.StatusForbidden, "Unauthorized.")
		return
	}

	alerts, err := h.repo.ListActiveFor(r.Context(), auth.Acting(r.Context(), req.UserEmail))
	if err != nil {
		slog.Error("failed to fetch alerts", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch alerts")
		return
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// Set creates or replaces the alert for target_email, "ALL" when omitted.
// is_active defaults to true unless it is literally false.
func (h *AlertHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminEmail  string          `json:"admin_email"`
		TargetEmail string          `json:"target_email"`
		Message     string          `json:"message"`
		IsActive    json.RawMessage `json:"is_active"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if !h.gate.IsAdmin(req.AdminEmail) || !auth.Permits(r.Context(), req.AdminEmail) {
		writeError(w, http.StatusForbidden, "Unauthorized. Admin access required.")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message cannot be empty.")
		return
	}

	target := req.TargetEmail
	if target == "" {
		target = model.BroadcastTarget
	}
	isActive := string(bytes.TrimSpace(req.IsActive)) != "false"

	if err := h.repo.Upsert(r.Context(), target, req.Message, isActive); err != nil {
		slog.Error("failed to set alert", "target_email", target, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to set alert")
		return
	}

	publish(r.Context(), h.events, events.NewChange(events.ActionAlertUpserted, target, ""))
	writeMessage(w, "Alert configured successfully")
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/webspider/backend/internal/auth"
	"github.com/andres10976/webspider/backend/internal/model"
	"github.com/andres10976/webspider/backend/internal/repository"
	"github.com/andres10976/webspider/backend/internal/service/events"
	"github.com/andres10976/webspider/backend/internal/service/monitorcfg"
	"github.com/andres10976/webspider/backend/internal/service/stats"
)

type adminGate interface {
	IsAdmin(email string) bool
}

type adminMonitorStore interface {
	ListAll(ctx context.Context) ([]model.Monitor, error)
	SetPaused(ctx context.Context, id string, paused bool) error
}

type AdminHandler struct {
	gate   adminGate
	repo   adminMonitorStore
	events changePublisher
}

func NewAdminHandler(gate adminGate, repo adminMonitorStore, events changePublisher) *AdminHandler {
	return &AdminHandler{gate: gate, repo: repo, events: events}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/check", h.Check)
	r.Get("/admin/stats", h.Stats)
	r.Post("/admin/monitors/pause", h.TogglePause)
}

// isAdmin requires the asserted email to be an admin and, when tokens are
// enabled, to be the caller's own.
func (h *AdminHandler) isAdmin(r *http.Request, email string) bool {
	return h.gate.IsAdmin(email) && auth.Permits(r.Context(), email)
}

// Check reports whether the given email is an admin. It never fails for
// a non-admin; the dashboard uses it to decide what to render.
func (h *AdminHandler) Check(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_admin": h.isAdmin(r, email)})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.isAdmin(r, r.URL.Query().Get("email")) {
		writeError(w, http.StatusForbidden, "Unauthorized.")
		return
	}

	monitors, err := h.repo.ListAll(r.Context())
	if err != nil {
		slog.Error("failed to fetch admin stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, stats.Aggregate(monitors))
}

func (h *AdminHandler) TogglePause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string          `json:"id"`
		AdminEmail string          `json:"admin_email"`
		IsPaused   json.RawMessage `json:"is_paused"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if !h.isAdmin(r, req.AdminEmail) {
		writeError(w, http.StatusForbidden, "Unauthorized.")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Monitor ID is required")
		return
	}

	paused := monitorcfg.Truthy(req.IsPaused)
	if err := h.repo.SetPaused(r.Context(), req.ID, paused); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Monitor not found")
			return
		}
		slog.Error("failed to toggle monitor", "monitor_id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	action := events.ActionMonitorResumed
	if paused {
		action = events.ActionMonitorPaused
	}
	publish(r.Context(), h.events, events.NewChange(action, req.ID, ""))
	writeMessage(w, fmt.Sprintf("Monitor pause state updated to %t", paused))
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/webspider/backend/internal/auth"
	"github.com/andres10976/webspider/backend/internal/model"
	"github.com/andres10976/webspider/backend/internal/repository"
	"github.com/andres10976/webspider/backend/internal/service/events"
	"github.com/andres10976/webspider/backend/internal/service/monitorcfg"
)

type monitorStore interface {
	ListByOwner(ctx context.Context, ownerEmail string) ([]model.Monitor, error)
	Create(ctx context.Context, ownerEmail string, cfg *model.MonitorConfig, limit int) (*model.Monitor, error)
	UpdateOwned(ctx context.Context, id, ownerEmail string, cfg *model.MonitorConfig) error
	DeleteOwned(ctx context.Context, id, ownerEmail string) error
}

// MonitorHandler serves the owner-scoped monitor endpoints. Every
// statement is filtered by the owner email: the verified one when the
// request carries a token, the asserted one otherwise.
type MonitorHandler struct {
	repo   monitorStore
	events changePublisher
	limit  int
}

func NewMonitorHandler(repo monitorStore, events changePublisher, limit int) *MonitorHandler {
	return &MonitorHandler{repo: repo, events: events, limit: limit}
}

func (h *MonitorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/monitors", h.List)
	r.Post("/monitors", h.Create)
	r.Put("/monitors", h.Edit)
	r.Delete("/monitors/{id}", h.Delete)
}

func (h *MonitorHandler) List(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email parameter is required")
		return
	}
	if !auth.Permits(r.Context(), email) {
		writeError(w, http.StatusForbidden, "Unauthorized.")
		return
	}

	monitors, err := h.repo.ListByOwner(r.Context(), auth.Acting(r.Context(), email))
	if err != nil {
		slog.Error("failed to list monitors", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if monitors == nil {
		monitors = []model.Monitor{}
	}
	writeJSON(w, http.StatusOK, monitors)
}

func (h *MonitorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in monitorcfg.Input
	if !decodeBody(w, r, &in) {
		return
	}

	cfg, err := monitorcfg.NormalizeNew(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !auth.Permits(r.Context(), in.UserEmail) {
		writeError(w, http.StatusForbidden, "Unauthorized.")
		return
	}

	mon, err := h.repo.Create(r.Context(), auth.Acting(r.Context(), in.UserEmail), cfg, h.limit)
	if err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			writeError(w, http.StatusForbidden, "Monitor limit reached")
			return
		}
		slog.Error("failed to create monitor", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	publish(r.Context(), h.events, events.NewChange(events.ActionMonitorCreated, mon.ID, mon.UserEmail))
	writeJSON(w, http.StatusCreated, mon)
}

// Edit replaces a monitor's configuration. A monitor owned by someone
// else is reported exactly like a missing one.
func (h *MonitorHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var in monitorcfg.Input
	if !decodeBody(w, r, &in) {
		return
	}

	cfg, err := monitorcfg.NormalizeEdit(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !auth.Permits(r.Context(), in.UserEmail) {
		writeError(w, http.StatusForbidden, "Unauthorized.")
		return
	}

	owner := auth.Acting(r.Context(), in.UserEmail)
	if err := h.repo.UpdateOwned(r.Context(), in.ID, owner, cfg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Monitor not found or unauthorized")
			return
		}
		slog.Error("failed to update monitor", "monitor_id", in.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	publish(r.Context(), h.events, events.NewChange(events.ActionMonitorUpdated, in.ID, owner))
	writeMessage(w, "Monitor updated successfully")
}

func (h *MonitorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	email := r.URL.Query().Get("email")
	if id == "" || email == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !auth.Permits(r.Context(), email) {
		writeError(w, http.StatusForbidden, "Unauthorized.")
		return
	}

	owner := auth.Acting(r.Context(), email)
	if err := h.repo.DeleteOwned(r.Context(), id, owner); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Monitor not found or unauthorized")
			return
		}
		slog.Error("failed to delete monitor", "monitor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	publish(r.Context(), h.events, events.NewChange(events.ActionMonitorDeleted, id, owner))
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/webspider/backend/internal/service/webhook"
)

type webhookReconciler interface {
	Reconcile(ctx context.Context) (*webhook.Result, error)
}

type TelegramHandler struct {
	reconciler webhookReconciler
}

func NewTelegramHandler(reconciler webhookReconciler) *TelegramHandler {
	return &TelegramHandler{reconciler: reconciler}
}

func (h *TelegramHandler) RegisterRoutes(r chi.Router) {
	r.Get("/telegram/config", h.Config)
}

// Config returns the bot username for the dashboard's "connect Telegram"
// link and makes sure the bot webhook points at this deployment.
func (h *TelegramHandler) Config(w http.ResponseWriter, r *http.Request) {
	res, err := h.reconciler.Reconcile(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrMisconfigured):
			slog.Error("telegram is not configured", "error", err)
			writeError(w, http.StatusInternalServerError,
				"Server misconfigured. Check TELEGRAM_BOT_TOKEN and PUBLIC_BASE_URL environment variables.")
		case errors.Is(err, webhook.ErrProviderAuth):
			slog.Error("telegram rejected bot token", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to authenticate Bot Token with Telegram")
		default:
			slog.Error("telegram webhook reconciliation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error while configuring Telegram")
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

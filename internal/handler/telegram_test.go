package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andres10976/webspider/backend/internal/service/webhook"
)

func TestTelegramConfig_Success(t *testing.T) {
	h := NewTelegramHandler(&mockReconciler{
		reconcileFn: func(ctx context.Context) (*webhook.Result, error) {
			return &webhook.Result{BotUsername: "spider_bot", WebhookManagement: webhook.StatusActive}, nil
		},
	})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/telegram/config", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeMap(t, rec)
	if body["bot_username"] != "spider_bot" {
		t.Errorf("bot_username = %v", body["bot_username"])
	}
	if body["webhook_management"] != webhook.StatusActive {
		t.Errorf("webhook_management = %v", body["webhook_management"])
	}
}

func TestTelegramConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"misconfigured", webhook.ErrMisconfigured,
			"Server misconfigured. Check TELEGRAM_BOT_TOKEN and PUBLIC_BASE_URL environment variables."},
		{"bad token", fmt.Errorf("getMe: %w", webhook.ErrProviderAuth), "Failed to authenticate Bot Token with Telegram"},
		{"transport", errors.New("dial tcp: timeout"), "Internal server error while configuring Telegram"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTelegramHandler(&mockReconciler{
				reconcileFn: func(ctx context.Context) (*webhook.Result, error) { return nil, tt.err },
			})

			rec := serve(h, httptest.NewRequest(http.MethodGet, "/telegram/config", nil))
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
			}
			if msg := decodeMap(t, rec)["error"]; msg != tt.msg {
				t.Errorf("error = %v, want %q", msg, tt.msg)
			}
		})
	}
}

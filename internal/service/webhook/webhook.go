// Package webhook keeps the Telegram bot's registered webhook pointed at
// this deployment. Reconcile reads the provider state first and only
// writes when it differs, so it can run on every dashboard load.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/andres10976/webspider/backend/internal/service/telegram"
)

const (
	StatusActive  = "active"
	StatusSkipped = "skipped (requires secure https domain)"

	DefaultPath = "/.netlify/functions/telegram-webhook"
)

var (
	ErrMisconfigured = errors.New("telegram bot token or public base URL not configured")
	ErrProviderAuth  = errors.New("telegram rejected the bot token")
)

type provider interface {
	GetMe(ctx context.Context) (*telegram.User, error)
	GetWebhookInfo(ctx context.Context) (*telegram.WebhookInfo, error)
	SetWebhook(ctx context.Context, url string) error
}

type Result struct {
	BotUsername       string `json:"bot_username"`
	WebhookManagement string `json:"webhook_management"`
}

type Reconciler struct {
	provider   provider
	configured bool
	baseURL    string
	path       string
}

// New returns a reconciler for the given provider. configured is false
// when the bot token is missing; Reconcile then fails without calling out.
func New(p provider, configured bool, baseURL, path string) *Reconciler {
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &Reconciler{
		provider:   p,
		configured: configured,
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       path,
	}
}

// DesiredURL is the callback the bot should be registered with.
func (r *Reconciler) DesiredURL() string {
	return r.baseURL + r.path
}

func (r *Reconciler) Reconcile(ctx context.Context) (*Result, error) {
	if !r.configured || r.baseURL == "" {
		return nil, ErrMisconfigured
	}

	me, err := r.provider.GetMe(ctx)
	if err != nil {
		var apiErr *telegram.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %v", ErrProviderAuth, err)
		}
		return nil, fmt.Errorf("get bot identity: %w", err)
	}

	result := &Result{BotUsername: me.Username, WebhookManagement: StatusSkipped}

	// Telegram only delivers updates to https endpoints.
	if !strings.HasPrefix(r.baseURL, "https://") {
		slog.Info("skipping telegram webhook setup, base URL is not https",
			"base_url", r.baseURL)
		return result, nil
	}

	desired := r.DesiredURL()
	current := ""
	info, err := r.provider.GetWebhookInfo(ctx)
	if err != nil {
		var apiErr *telegram.APIError
		if !errors.As(err, &apiErr) {
			return nil, fmt.Errorf("get webhook info: %w", err)
		}
		slog.Warn("telegram refused webhook info, treating webhook as unset", "error", err)
	} else {
		current = info.URL
	}

	if current != desired {
		slog.Info("setting telegram webhook", "current", current, "desired", desired)
		if err := r.provider.SetWebhook(ctx, desired); err != nil {
			return nil, fmt.Errorf("set webhook: %w", err)
		}
	}

	result.WebhookManagement = StatusActive
	return result, nil
}

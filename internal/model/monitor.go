package model

import (
	"encoding/json"
	"time"
)

// Monitor is a tracked URL with its check configuration and the last
// result reported by the crawler.
type Monitor struct {
	ID        string `json:"id"`
	UserEmail string `json:"user_email"`
	URL       string `json:"url"`

	AIFocusNote      string `json:"ai_focus_note"`
	CustomWebhookURL string `json:"custom_webhook_url"`

	TriggerModeEnabled bool `json:"trigger_mode_enabled"`
	VisualModeEnabled  bool `json:"visual_mode_enabled"`
	DeepCrawl          bool `json:"deep_crawl"`
	DeepCrawlDepth     int  `json:"deep_crawl_depth"`
	CheckFrequency     int  `json:"check_frequency"`

	RequiresLogin bool            `json:"requires_login"`
	HasCaptcha    bool            `json:"has_captcha"`
	Username      string          `json:"username"`
	Password      string          `json:"password"`
	CaptchaJSON   json.RawMessage `json:"captcha_json"`

	EmailNotificationsEnabled    bool   `json:"email_notifications_enabled"`
	TelegramNotificationsEnabled bool   `json:"telegram_notifications_enabled"`
	TelegramChatID               string `json:"telegram_chat_id"`

	// Written by the crawler.
	LastRunStatus   string `json:"last_run_status"`
	LatestAISummary string `json:"latest_ai_summary"`
	IsPaused        bool   `json:"is_paused"`

	CreatedAt            time.Time `json:"created_at"`
	LastUpdatedTimestamp time.Time `json:"last_updated_timestamp"`
}

// MonitorConfig holds the user-editable part of a monitor after
// normalization. Ownership and crawler status are not part of it.
type MonitorConfig struct {
	URL                          string
	AIFocusNote                  string
	CustomWebhookURL             string
	TriggerModeEnabled           bool
	VisualModeEnabled            bool
	DeepCrawl                    bool
	DeepCrawlDepth               int
	CheckFrequency               int
	RequiresLogin                bool
	HasCaptcha                   bool
	Username                     string
	Password                     string
	CaptchaJSON                  json.RawMessage
	EmailNotificationsEnabled    bool
	TelegramNotificationsEnabled bool
	TelegramChatID               string
}

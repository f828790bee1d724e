// Package monitorcfg turns loosely typed monitor payloads into the
// configuration stored for a monitor. Numeric fields never fail validation:
// unusable values fall back to defaults.
package monitorcfg

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/andres10976/webspider/backend/internal/model"
)

const (
	MinDeepCrawlDepth     = 1
	MaxDeepCrawlDepth     = 5
	MinCheckFrequency     = 15
	DefaultCheckFrequency = 1440 // one day, in minutes
)

var ErrMissingFields = errors.New("missing required fields")

// Input is the monitor payload as sent by the dashboard. Flags and
// tunables are kept raw because clients send numbers, numeric strings
// and booleans interchangeably.
type Input struct {
	ID        string `json:"id"`
	UserEmail string `json:"user_email"`
	URL       string `json:"url"`

	AIFocusNote      string `json:"ai_focus_note"`
	CustomWebhookURL string `json:"custom_webhook_url"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	TelegramChatID   string `json:"telegram_chat_id"`

	TriggerModeEnabled           json.RawMessage `json:"trigger_mode_enabled"`
	VisualModeEnabled            json.RawMessage `json:"visual_mode_enabled"`
	DeepCrawl                    json.RawMessage `json:"deep_crawl"`
	DeepCrawlDepth               json.RawMessage `json:"deep_crawl_depth"`
	CheckFrequency               json.RawMessage `json:"check_frequency"`
	RequiresLogin                json.RawMessage `json:"requires_login"`
	HasCaptcha                   json.RawMessage `json:"has_captcha"`
	CaptchaJSON                  json.RawMessage `json:"captcha_json"`
	EmailNotificationsEnabled    json.RawMessage `json:"email_notifications_enabled"`
	TelegramNotificationsEnabled json.RawMessage `json:"telegram_notifications_enabled"`
}

// NormalizeEdit validates an edit of an existing monitor; id, owner and
// url are all required.
func NormalizeEdit(in Input) (*model.MonitorConfig, error) {
	if in.ID == "" {
		return nil, ErrMissingFields
	}
	return normalize(in)
}

// NormalizeNew validates a monitor about to be created. The id is
// assigned by the store.
func NormalizeNew(in Input) (*model.MonitorConfig, error) {
	return normalize(in)
}

func normalize(in Input) (*model.MonitorConfig, error) {
	if in.UserEmail == "" || in.URL == "" {
		return nil, ErrMissingFields
	}

	return &model.MonitorConfig{
		URL:                          in.URL,
		AIFocusNote:                  in.AIFocusNote,
		CustomWebhookURL:             in.CustomWebhookURL,
		TriggerModeEnabled:           Truthy(in.TriggerModeEnabled),
		VisualModeEnabled:            Truthy(in.VisualModeEnabled),
		DeepCrawl:                    Truthy(in.DeepCrawl),
		DeepCrawlDepth:               DeepCrawlDepth(in.DeepCrawlDepth),
		CheckFrequency:               CheckFrequency(in.CheckFrequency),
		RequiresLogin:                Truthy(in.RequiresLogin),
		HasCaptcha:                   Truthy(in.HasCaptcha),
		Username:                     in.Username,
		Password:                     in.Password,
		CaptchaJSON:                  captcha(in.CaptchaJSON),
		EmailNotificationsEnabled:    Truthy(in.EmailNotificationsEnabled),
		TelegramNotificationsEnabled: Truthy(in.TelegramNotificationsEnabled),
		TelegramChatID:               in.TelegramChatID,
	}, nil
}

// DeepCrawlDepth clamps the requested depth to [1,5]; unusable input is 1.
func DeepCrawlDepth(raw json.RawMessage) int {
	n, ok := LooseInt(raw)
	if !ok || n < MinDeepCrawlDepth {
		return MinDeepCrawlDepth
	}
	if n > MaxDeepCrawlDepth {
		return MaxDeepCrawlDepth
	}
	return n
}

// CheckFrequency returns the check interval in minutes. Anything below
// the minimum resets to a daily check rather than being rejected.
func CheckFrequency(raw json.RawMessage) int {
	n, ok := LooseInt(raw)
	if !ok || n < MinCheckFrequency {
		return DefaultCheckFrequency
	}
	return n
}

// LooseInt reads an integer from a JSON number or from the leading
// integer of a JSON string ("30 min" is 30). Fractions are truncated.
func LooseInt(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return leadingInt(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return 0, false
		}
		return clampInt(math.Trunc(f)), true
	default:
		return 0, false
	}
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return clampInt(f), true
}

// clampInt keeps values inside the database's INTEGER range.
func clampInt(f float64) int {
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

// Truthy reports whether a JSON value counts as set: absent, null, false,
// zero and the empty string are false, everything else is true.
func Truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}

	switch s := string(raw); {
	case s == "null", s == "false", s == `""`:
		return false
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		f, err := strconv.ParseFloat(s, 64)
		return err == nil && f != 0
	default:
		return true
	}
}

func captcha(raw json.RawMessage) json.RawMessage {
	if !Truthy(raw) {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil
	}
	return buf.Bytes()
}

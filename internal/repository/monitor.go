package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/andres10976/webspider/backend/internal/model"
)

const monitorColumns = `id, user_email, url, ai_focus_note, custom_webhook_url,
	trigger_mode_enabled, visual_mode_enabled, deep_crawl, deep_crawl_depth,
	check_frequency, requires_login, has_captcha, username, password, captcha_json,
	email_notifications_enabled, telegram_notifications_enabled, telegram_chat_id,
	last_run_status, latest_ai_summary, is_paused, created_at, last_updated_timestamp`

type MonitorRepository struct {
	db DBTX
}

func NewMonitorRepository(db DBTX) *MonitorRepository {
	return &MonitorRepository{db: db}
}

// ListAll returns every monitor, newest first. Only the admin overview
// uses it; there is no pagination.
func (r *MonitorRepository) ListAll(ctx context.Context) ([]model.Monitor, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+monitorColumns+` FROM monitors ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectMonitors(rows)
}

func (r *MonitorRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]model.Monitor, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+monitorColumns+` FROM monitors
		WHERE user_email = $1 ORDER BY created_at DESC`, ownerEmail)
	if err != nil {
		return nil, err
	}
	return collectMonitors(rows)
}

// Create inserts a monitor for ownerEmail unless the owner already has
// limit monitors. A limit of zero or less disables the check. Creates for
// the same owner are serialized by a transaction-scoped advisory lock, so
// the count and the insert see every committed monitor of that owner.
func (r *MonitorRepository) Create(ctx context.Context, ownerEmail string, cfg *model.MonitorConfig, limit int) (*model.Monitor, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}

	created, err := insertMonitor(ctx, tx, ownerEmail, cfg, limit)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	if len(created) == 0 {
		return nil, ErrLimitReached
	}
	return &created[0], nil
}

func insertMonitor(ctx context.Context, tx pgx.Tx, ownerEmail string, cfg *model.MonitorConfig, limit int) ([]model.Monitor, error) {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, ownerEmail); err != nil {
		return nil, fmt.Errorf("lock owner: %w", err)
	}

	rows, err := tx.Query(ctx,
		`INSERT INTO monitors (
			id, user_email, url, ai_focus_note, custom_webhook_url,
			trigger_mode_enabled, visual_mode_enabled, deep_crawl, deep_crawl_depth,
			check_frequency, requires_login, has_captcha, username, password, captcha_json,
			email_notifications_enabled, telegram_notifications_enabled, telegram_chat_id,
			created_at, last_updated_timestamp)
		SELECT $1::uuid, $2::text, $3::text, $4::text, $5::text,
			$6::boolean, $7::boolean, $8::boolean, $9::integer,
			$10::integer, $11::boolean, $12::boolean, $13::text, $14::text, $15::jsonb,
			$16::boolean, $17::boolean, $18::text, $19::timestamptz, $19::timestamptz
		WHERE $20::integer <= 0
			OR (SELECT COUNT(*) FROM monitors WHERE user_email = $2::text) < $20::integer
		RETURNING `+monitorColumns,
		uuid.New(), ownerEmail, cfg.URL, cfg.AIFocusNote, cfg.CustomWebhookURL,
		cfg.TriggerModeEnabled, cfg.VisualModeEnabled, cfg.DeepCrawl, cfg.DeepCrawlDepth,
		cfg.CheckFrequency, cfg.RequiresLogin, cfg.HasCaptcha, cfg.Username, cfg.Password,
		jsonParam(cfg.CaptchaJSON),
		cfg.EmailNotificationsEnabled, cfg.TelegramNotificationsEnabled, cfg.TelegramChatID,
		time.Now(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("insert monitor: %w", err)
	}
	return collectMonitors(rows)
}

// UpdateOwned replaces the configuration of the monitor identified by id
// and owned by ownerEmail. A wrong id and a wrong owner both yield
// ErrNotFound so other users' monitors stay indistinguishable from missing ones.
func (r *MonitorRepository) UpdateOwned(ctx context.Context, id, ownerEmail string, cfg *model.MonitorConfig) error {
	monitorID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE monitors SET
			url = $3,
			ai_focus_note = $4,
			custom_webhook_url = $5,
			trigger_mode_enabled = $6,
			visual_mode_enabled = $7,
			deep_crawl = $8,
			deep_crawl_depth = $9,
			check_frequency = $10,
			requires_login = $11,
			has_captcha = $12,
			username = $13,
			password = $14,
			captcha_json = $15,
			email_notifications_enabled = $16,
			telegram_notifications_enabled = $17,
			telegram_chat_id = $18,
			last_updated_timestamp = $19
		WHERE id = $1 AND user_email = $2`,
		monitorID, ownerEmail,
		cfg.URL, cfg.AIFocusNote, cfg.CustomWebhookURL,
		cfg.TriggerModeEnabled, cfg.VisualModeEnabled, cfg.DeepCrawl, cfg.DeepCrawlDepth,
		cfg.CheckFrequency, cfg.RequiresLogin, cfg.HasCaptcha, cfg.Username, cfg.Password,
		jsonParam(cfg.CaptchaJSON),
		cfg.EmailNotificationsEnabled, cfg.TelegramNotificationsEnabled, cfg.TelegramChatID,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update monitor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPaused is the admin pause toggle; it is not scoped by owner.
func (r *MonitorRepository) SetPaused(ctx context.Context, id string, paused bool) error {
	monitorID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE monitors SET is_paused = $2, last_updated_timestamp = $3 WHERE id = $1`,
		monitorID, paused, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MonitorRepository) DeleteOwned(ctx context.Context, id, ownerEmail string) error {
	monitorID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	tag, err := r.db.Exec(ctx,
		`DELETE FROM monitors WHERE id = $1 AND user_email = $2`, monitorID, ownerEmail)
	if err != nil {
		return fmt.Errorf("delete monitor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectMonitors(rows pgx.Rows) ([]model.Monitor, error) {
	defer rows.Close()

	monitors := []model.Monitor{}
	for rows.Next() {
		var m model.Monitor
		var captcha []byte
		if err := rows.Scan(
			&m.ID, &m.UserEmail, &m.URL, &m.AIFocusNote, &m.CustomWebhookURL,
			&m.TriggerModeEnabled, &m.VisualModeEnabled, &m.DeepCrawl, &m.DeepCrawlDepth,
			&m.CheckFrequency, &m.RequiresLogin, &m.HasCaptcha, &m.Username, &m.Password,
			&captcha,
			&m.EmailNotificationsEnabled, &m.TelegramNotificationsEnabled, &m.TelegramChatID,
			&m.LastRunStatus, &m.LatestAISummary, &m.IsPaused, &m.CreatedAt,
			&m.LastUpdatedTimestamp,
		); err != nil {
			return nil, err
		}
		if len(captcha) > 0 {
			m.CaptchaJSON = json.RawMessage(captcha)
		}
		monitors = append(monitors, m)
	}
	return monitors, rows.Err()
}

// jsonParam maps an empty payload to SQL NULL.
func jsonParam(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

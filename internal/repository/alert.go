package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andres10976/webspider/backend/internal/model"
)

type AlertRepository struct {
	db DBTX
}

func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

// Upsert creates or replaces the alert for targetEmail. There is at most
// one alert per target; concurrent upserts resolve last-writer-wins.
func (r *AlertRepository) Upsert(ctx context.Context, targetEmail, message string, isActive bool) error {
	if targetEmail == "" {
		targetEmail = model.BroadcastTarget
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO alerts (target_email, message, is_active, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (target_email) DO UPDATE SET
			message = EXCLUDED.message,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`,
		targetEmail, message, isActive, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert alert: %w", err)
	}
	return nil
}

// ListActiveFor returns the active broadcast alert and the active alert
// addressed to userEmail, if any.
func (r *AlertRepository) ListActiveFor(ctx context.Context, userEmail string) ([]model.Alert, error) {
	rows, err := r.db.Query(ctx,
		`SELECT target_email, message, is_active, updated_at
		FROM alerts
		WHERE is_active AND (target_email = $1 OR target_email = $2)
		ORDER BY updated_at DESC`,
		model.BroadcastTarget, userEmail,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []model.Alert{}
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.TargetEmail, &a.Message, &a.IsActive, &a.UpdatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

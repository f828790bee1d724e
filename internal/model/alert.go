package model

import "time"

// BroadcastTarget is the target_email value addressing every user.
const BroadcastTarget = "ALL"

type Alert struct {
	TargetEmail string    `json:"target_email"`
	Message     string    `json:"message"`
	IsActive    bool      `json:"is_active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Actions recorded by the payment subsystem.
const (
	ActionPaymentCreated   = "payment.created"
	ActionWebhookUnmatched = "payment.webhook.unmatched"
)

type Record struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Action     string            `gorm:"not null" json:"action"`
	TargetType string            `gorm:"not null" json:"target_type"`
	TargetID   string            `json:"target_id"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Record) TableName() string { return "audit_logs" }

// Service persists operator-facing audit records. Write failures are the
// caller's problem to log; audit is never allowed to fail a payment flow.
type Service interface {
	Log(ctx context.Context, action, targetType, targetID string, metadata map[string]any) error
}

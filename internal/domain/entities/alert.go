package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertDirection determines which side of the target price triggers an alert
type AlertDirection string

const (
	AlertDirectionAbove AlertDirection = "above"
	AlertDirectionBelow AlertDirection = "below"
)

// Validate checks if the alert direction is valid
func (d AlertDirection) Validate() error {
	switch d {
	case AlertDirectionAbove, AlertDirectionBelow:
		return nil
	default:
		return fmt.Errorf("invalid alert direction: %s", d)
	}
}

// PriceAlert is a user-defined price watch on an asset. Once triggered it
// stays triggered; re-arming is an explicit user action, never done by the
// evaluator.
type PriceAlert struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	AssetID     uuid.UUID       `json:"asset_id" db:"asset_id"`
	TargetPrice decimal.Decimal `json:"target_price" db:"target_price"`
	Direction   AlertDirection  `json:"direction" db:"direction"`
	NotifyEmail string          `json:"notify_email,omitempty" db:"notify_email"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	IsTriggered bool            `json:"is_triggered" db:"is_triggered"`
	TriggeredAt *time.Time      `json:"triggered_at,omitempty" db:"triggered_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ShouldTrigger reports whether the given price satisfies the alert condition
func (a *PriceAlert) ShouldTrigger(price decimal.Decimal) bool {
	switch a.Direction {
	case AlertDirectionAbove:
		return price.GreaterThanOrEqual(a.TargetPrice)
	case AlertDirectionBelow:
		return price.LessThanOrEqual(a.TargetPrice)
	default:
		return false
	}
}

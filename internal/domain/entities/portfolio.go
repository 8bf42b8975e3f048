package entities

import (
	"time"

	"github.com/google/uuid"
)

// Portfolio is the aggregate root for a user's positions and transactions.
// Positions and transactions reference it by ID; the portfolio never embeds
// its owned collections in memory.
type Portfolio struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description,omitempty" db:"description"`
	BaseCurrency string    `json:"base_currency" db:"base_currency"`
	IsDefault    bool      `json:"is_default" db:"is_default"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether the portfolio belongs to the given user
func (p *Portfolio) OwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// Watchlist is a named set of assets a user monitors without holding them.
// Items reference it by ID.
type Watchlist struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	IsDefault   bool      `json:"is_default" db:"is_default"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether the watchlist belongs to the given user
func (w *Watchlist) OwnedBy(userID uuid.UUID) bool {
	return w.UserID == userID
}

// WatchlistItem is one watched asset. At most one item exists per
// (watchlist, asset) pair.
type WatchlistItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WatchlistID uuid.UUID `json:"watchlist_id" db:"watchlist_id"`
	AssetID     uuid.UUID `json:"asset_id" db:"asset_id"`
	Notes       string    `json:"notes,omitempty" db:"notes"`
	AddedAt     time.Time `json:"added_at" db:"added_at"`
}

package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the engine
const (
	AuditActionTransactionCreated = "transaction.created"
	AuditActionTransactionDeleted = "transaction.deleted"
	AuditActionAlertTriggered     = "alert.triggered"
	AuditActionAlertRearmed       = "alert.rearmed"
	AuditActionPortfolioCreated   = "portfolio.created"
	AuditActionWatchlistCreated   = "watchlist.created"
)

// AuditLog is an append-only record of one system change. Entries are never
// updated or deleted once written.
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.NullUUID   `json:"user_id,omitempty" db:"user_id"`
	Action     string          `json:"action" db:"action"`
	Resource   string          `json:"resource" db:"resource"`
	ResourceID uuid.UUID       `json:"resource_id" db:"resource_id"`
	Metadata   json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

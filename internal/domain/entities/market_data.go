package entities

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MarketDataSnapshot is the point-in-time market quote cached per asset.
// A refresh overwrites the whole row; it is never partially patched.
type MarketDataSnapshot struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	AssetID       uuid.UUID           `json:"asset_id" db:"asset_id"`
	Price         decimal.Decimal     `json:"price" db:"price"`
	OpenPrice     decimal.NullDecimal `json:"open_price,omitempty" db:"open_price"`
	HighPrice     decimal.NullDecimal `json:"high_price,omitempty" db:"high_price"`
	LowPrice      decimal.NullDecimal `json:"low_price,omitempty" db:"low_price"`
	Volume        sql.NullInt64       `json:"volume,omitempty" db:"volume"`
	Change        decimal.NullDecimal `json:"change,omitempty" db:"change"`
	ChangePercent decimal.NullDecimal `json:"change_percent,omitempty" db:"change_percent"`
	DataSource    string              `json:"data_source" db:"data_source"`
	LastUpdated   time.Time           `json:"last_updated" db:"last_updated"`
}

// IsStale reports whether the snapshot is older than the given bound
func (s *MarketDataSnapshot) IsStale(bound time.Duration, now time.Time) bool {
	return now.Sub(s.LastUpdated) > bound
}

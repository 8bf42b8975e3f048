package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a ledger entry
type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

// Validate checks if the transaction type is valid
func (t TransactionType) Validate() error {
	switch t {
	case TransactionTypeBuy, TransactionTypeSell:
		return nil
	default:
		return fmt.Errorf("invalid transaction type: %s", t)
	}
}

// Transaction is one immutable ledger entry for a portfolio. The only
// permitted mutation is deletion, which is compensated by replaying the
// remaining entries for the pair, never by editing history.
type Transaction struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	PortfolioID     uuid.UUID       `json:"portfolio_id" db:"portfolio_id"`
	AssetID         uuid.UUID       `json:"asset_id" db:"asset_id"`
	TransactionType TransactionType `json:"transaction_type" db:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity" db:"quantity"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit" db:"price_per_unit"`
	Commission      decimal.Decimal `json:"commission" db:"commission"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// TotalAmount is quantity times price, excluding commission
func (t *Transaction) TotalAmount() decimal.Decimal {
	return t.Quantity.Mul(t.PricePerUnit)
}

// TotalCost is the full cash impact including commission
func (t *Transaction) TotalCost() decimal.Decimal {
	return t.TotalAmount().Add(t.Commission)
}

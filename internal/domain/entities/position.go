package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PortfolioPosition is the derived holding for one (portfolio, asset) pair.
// At most one position exists per pair. Quantity is never negative. The
// average purchase price is meaningful only while quantity is positive; when
// the quantity returns to zero the row is retained with the average reset to
// zero so a later re-buy starts a fresh cost basis.
//
// Version backs optimistic concurrency: a stale update is rejected with a
// concurrency conflict instead of silently overwriting.
type PortfolioPosition struct {
	ID                   uuid.UUID           `json:"id" db:"id"`
	PortfolioID          uuid.UUID           `json:"portfolio_id" db:"portfolio_id"`
	AssetID              uuid.UUID           `json:"asset_id" db:"asset_id"`
	Quantity             decimal.Decimal     `json:"quantity" db:"quantity"`
	AveragePurchasePrice decimal.Decimal     `json:"average_purchase_price" db:"average_purchase_price"`
	CurrentPrice         decimal.NullDecimal `json:"current_price,omitempty" db:"current_price"`
	LastPriceUpdate      *time.Time          `json:"last_price_update,omitempty" db:"last_price_update"`
	Version              int64               `json:"-" db:"version"`
	CreatedAt            time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at" db:"updated_at"`
}

// TotalInvested is the cost basis of the holding
func (p *PortfolioPosition) TotalInvested() decimal.Decimal {
	return p.Quantity.Mul(p.AveragePurchasePrice)
}

// CurrentValue is the market value of the holding. Falls back to the cost
// basis when no market price has been cached yet.
func (p *PortfolioPosition) CurrentValue() decimal.Decimal {
	if p.CurrentPrice.Valid {
		return p.Quantity.Mul(p.CurrentPrice.Decimal)
	}
	return p.TotalInvested()
}

// UnrealizedGainLoss is the difference between market value and cost basis
func (p *PortfolioPosition) UnrealizedGainLoss() decimal.Decimal {
	return p.CurrentValue().Sub(p.TotalInvested())
}

// ReturnPercentage is the unrealized return relative to the cost basis,
// zero when nothing is invested.
func (p *PortfolioPosition) ReturnPercentage() decimal.Decimal {
	invested := p.TotalInvested()
	if invested.IsZero() {
		return decimal.Zero
	}
	return p.UnrealizedGainLoss().Div(invested).Mul(decimal.NewFromInt(100))
}

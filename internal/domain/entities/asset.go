package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssetType classifies a tradable asset
type AssetType string

const (
	AssetTypeStock  AssetType = "stock"
	AssetTypeETF    AssetType = "etf"
	AssetTypeCrypto AssetType = "crypto"
	AssetTypeBond   AssetType = "bond"
	AssetTypeFund   AssetType = "fund"
)

// Validate checks if the asset type is valid
func (t AssetType) Validate() error {
	switch t {
	case AssetTypeStock, AssetTypeETF, AssetTypeCrypto, AssetTypeBond, AssetTypeFund:
		return nil
	default:
		return fmt.Errorf("invalid asset type: %s", t)
	}
}

// Asset represents a tradable asset (stock, crypto, ETF, etc.).
// Positions, transactions and alerts reference it by ID only.
type Asset struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Symbol    string    `json:"symbol" db:"symbol"`
	Name      string    `json:"name" db:"name"`
	AssetType AssetType `json:"asset_type" db:"asset_type"`
	Exchange  string    `json:"exchange,omitempty" db:"exchange"`
	Currency  string    `json:"currency" db:"currency"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPosition_ComputedFields(t *testing.T) {
	pos := &PortfolioPosition{
		Quantity:             d("10"),
		AveragePurchasePrice: d("100"),
		CurrentPrice:         decimal.NewNullDecimal(d("120")),
	}

	assert.True(t, pos.TotalInvested().Equal(d("1000")))
	assert.True(t, pos.CurrentValue().Equal(d("1200")))
	assert.True(t, pos.UnrealizedGainLoss().Equal(d("200")))
	assert.True(t, pos.ReturnPercentage().Equal(d("20")))
}

func TestPosition_CurrentValueFallsBackToCostBasis(t *testing.T) {
	pos := &PortfolioPosition{
		Quantity:             d("5"),
		AveragePurchasePrice: d("40"),
	}

	assert.True(t, pos.CurrentValue().Equal(d("200")))
	assert.True(t, pos.UnrealizedGainLoss().IsZero())
}

func TestPosition_ReturnPercentageZeroWhenNothingInvested(t *testing.T) {
	pos := &PortfolioPosition{
		Quantity:             decimal.Zero,
		AveragePurchasePrice: decimal.Zero,
		CurrentPrice:         decimal.NewNullDecimal(d("99")),
	}

	assert.True(t, pos.ReturnPercentage().IsZero())
}

func TestPortfolio_OwnedBy(t *testing.T) {
	owner := uuid.New()
	p := &Portfolio{UserID: owner}

	assert.True(t, p.OwnedBy(owner))
	assert.False(t, p.OwnedBy(uuid.New()))
}

func TestAlertDirection_Validate(t *testing.T) {
	assert.NoError(t, AlertDirectionAbove.Validate())
	assert.NoError(t, AlertDirectionBelow.Validate())
	assert.Error(t, AlertDirection("sideways").Validate())
}

func TestPriceAlert_ShouldTrigger(t *testing.T) {
	tests := []struct {
		name      string
		direction AlertDirection
		target    string
		price     string
		want      bool
	}{
		{"above, price over target", AlertDirectionAbove, "150", "151", true},
		{"above, price at target", AlertDirectionAbove, "150", "150", true},
		{"above, price under target", AlertDirectionAbove, "150", "149.99", false},
		{"below, price under target", AlertDirectionBelow, "90", "89", true},
		{"below, price at target", AlertDirectionBelow, "90", "90", true},
		{"below, price over target", AlertDirectionBelow, "90", "90.01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := &PriceAlert{Direction: tt.direction, TargetPrice: d(tt.target)}
			assert.Equal(t, tt.want, alert.ShouldTrigger(d(tt.price)))
		})
	}
}

func TestMarketDataSnapshot_IsStale(t *testing.T) {
	now := time.Now().UTC()
	fresh := &MarketDataSnapshot{LastUpdated: now.Add(-5 * time.Minute)}
	stale := &MarketDataSnapshot{LastUpdated: now.Add(-20 * time.Minute)}

	assert.False(t, fresh.IsStale(15*time.Minute, now))
	assert.True(t, stale.IsStale(15*time.Minute, now))
}

package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subtally/subtally/internal/pkg/billingcycle"
)

func TestTierBeforeSaveNormalizesPeriod(t *testing.T) {
	tier := &Tier{
		Name:   "Pro",
		Price:  decimal.RequireFromString("9.99"),
		Period: "Monthly",
	}

	require.NoError(t, tier.BeforeSave(nil))
	assert.Equal(t, "monthly", tier.Period)
}

func TestTierBeforeSaveRejectsUnknownPeriod(t *testing.T) {
	tier := &Tier{
		Name:   "Pro",
		Price:  decimal.RequireFromString("9.99"),
		Period: "quarterly",
	}

	err := tier.BeforeSave(nil)
	assert.ErrorIs(t, err, billingcycle.ErrUnsupportedPeriod)
}

func TestTierBeforeSaveRejectsNegativePrice(t *testing.T) {
	tier := &Tier{
		Name:   "Pro",
		Price:  decimal.RequireFromString("-1.00"),
		Period: "monthly",
	}

	assert.Error(t, tier.BeforeSave(nil))
}

func TestTierBillingPeriod(t *testing.T) {
	tier := &Tier{Period: "weekly"}

	p, err := tier.BillingPeriod()
	require.NoError(t, err)
	assert.Equal(t, billingcycle.PeriodWeekly, p)
}

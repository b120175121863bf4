package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionUnsubscribe(t *testing.T) {
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := &Subscription{UserID: 1, StartedAt: started, Active: true}

	now := started.AddDate(0, 2, 0)
	require.NoError(t, sub.Unsubscribe(now))

	assert.False(t, sub.Active)
	require.NotNil(t, sub.DeletedAt)
	assert.Equal(t, now, *sub.DeletedAt)

	// a second cancel must fail, not silently succeed
	err := sub.Unsubscribe(now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyUnsubscribed)
	assert.Equal(t, now, *sub.DeletedAt)
}

func TestSubscriptionBeforeSaveInvariants(t *testing.T) {
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cancelled := started.AddDate(0, 1, 0)

	tests := []struct {
		name    string
		sub     Subscription
		wantErr bool
	}{
		{
			name: "active subscription",
			sub:  Subscription{StartedAt: started, Active: true},
		},
		{
			name: "cancelled subscription",
			sub:  Subscription{StartedAt: started, Active: false, DeletedAt: &cancelled},
		},
		{
			name:    "missing start date",
			sub:     Subscription{Active: true},
			wantErr: true,
		},
		{
			name:    "active with deleted_at set",
			sub:     Subscription{StartedAt: started, Active: true, DeletedAt: &cancelled},
			wantErr: true,
		},
		{
			name:    "inactive without deleted_at",
			sub:     Subscription{StartedAt: started, Active: false},
			wantErr: true,
		},
		{
			name: "deleted before started",
			sub: func() Subscription {
				before := started.AddDate(0, 0, -1)
				return Subscription{StartedAt: started, Active: false, DeletedAt: &before}
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.BeforeSave(nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubscriptionBillingTerms(t *testing.T) {
	tierID := uint(7)
	tier := &Tier{
		ID:     tierID,
		Price:  decimal.RequireFromString("14.99"),
		Period: "monthly",
	}

	catalog := &Subscription{TierID: &tierID, Tier: tier}
	price, period := catalog.BillingTerms()
	assert.True(t, price.Equal(decimal.RequireFromString("14.99")))
	assert.Equal(t, "monthly", period)
	assert.False(t, catalog.IsTemplate())

	template := &Subscription{
		TemplateName:   "Gym",
		TemplatePrice:  decimal.RequireFromString("29.90"),
		TemplatePeriod: "yearly",
	}
	price, period = template.BillingTerms()
	assert.True(t, price.Equal(decimal.RequireFromString("29.90")))
	assert.Equal(t, "yearly", period)
	assert.True(t, template.IsTemplate())
	assert.Equal(t, "Gym", template.DisplayName())
}

func TestSubscriptionBillingEnd(t *testing.T) {
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := started.AddDate(0, 6, 0)

	active := &Subscription{StartedAt: started, Active: true}
	assert.Equal(t, now, active.BillingEnd(now))

	cancelledAt := started.AddDate(0, 3, 0)
	cancelled := &Subscription{StartedAt: started, Active: false, DeletedAt: &cancelledAt}
	assert.Equal(t, cancelledAt, cancelled.BillingEnd(now))

	// cancellation in the future does not cap billing yet
	futureCancel := now.AddDate(0, 1, 0)
	pending := &Subscription{StartedAt: started, Active: false, DeletedAt: &futureCancel}
	assert.Equal(t, now, pending.BillingEnd(now))
}

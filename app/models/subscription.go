package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrAlreadyUnsubscribed is returned when a subscription is cancelled twice.
var ErrAlreadyUnsubscribed = errors.New("subscription already cancelled")

// Subscription is one user's enrollment in a tier, or a self-tracked entry
// for a service not in the catalog (TierID nil, template fields set).
//
// Lifecycle: created active with DeletedAt nil; cancelled exactly once via
// Unsubscribe, which flips Active and sets DeletedAt. Rows are never
// physically deleted so billing history stays computable.
type Subscription struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"index" json:"user_id"`
	User           User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TierID         *uint           `gorm:"index" json:"tier_id,omitempty"`
	Tier           *Tier           `gorm:"foreignKey:TierID" json:"tier,omitempty"`
	TemplateName   string          `gorm:"type:varchar(150)" json:"template_name,omitempty"`
	TemplatePrice  decimal.Decimal `gorm:"type:decimal(10,2)" json:"template_price,omitempty"`
	TemplatePeriod string          `gorm:"type:varchar(16)" json:"template_period,omitempty"`
	StartedAt      time.Time       `gorm:"not null;index" json:"started_at"`
	Active         bool            `gorm:"default:true;index" json:"active"`
	DeletedAt      *time.Time      `gorm:"type:timestamp;default:null" json:"deleted_at,omitempty"`
	LastRemindedAt *time.Time      `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Subscription) BeforeSave(_ *gorm.DB) error {
	if s.StartedAt.IsZero() {
		return errors.New("subscription start date is required")
	}
	// DeletedAt is non-null exactly when the subscription is inactive, and
	// never precedes the start.
	if s.Active != (s.DeletedAt == nil) {
		return errors.New("active flag and deleted_at are out of sync")
	}
	if s.DeletedAt != nil && s.DeletedAt.Before(s.StartedAt) {
		return errors.New("deleted_at precedes started_at")
	}
	return nil
}

// IsTemplate reports whether this is a self-tracked subscription without a
// catalog tier.
func (s *Subscription) IsTemplate() bool {
	return s.TierID == nil
}

// DisplayName returns the catalog product name or the template name.
func (s *Subscription) DisplayName() string {
	if s.IsTemplate() || s.Tier == nil {
		return s.TemplateName
	}
	return s.Tier.Product.Name
}

// BillingTerms resolves the live price and period used for cycle math.
// Catalog subscriptions always read the current tier row, template
// subscriptions their own stored values.
func (s *Subscription) BillingTerms() (decimal.Decimal, string) {
	if s.IsTemplate() || s.Tier == nil {
		return s.TemplatePrice, s.TemplatePeriod
	}
	return s.Tier.Price, s.Tier.Period
}

// BillingEnd returns the instant billing stops accruing: DeletedAt for a
// cancelled subscription, otherwise now.
func (s *Subscription) BillingEnd(now time.Time) time.Time {
	if s.DeletedAt != nil && s.DeletedAt.Before(now) {
		return *s.DeletedAt
	}
	return now
}

// Unsubscribe performs the single allowed mutation: soft-cancel at "now".
func (s *Subscription) Unsubscribe(now time.Time) error {
	if !s.Active || s.DeletedAt != nil {
		return ErrAlreadyUnsubscribed
	}
	s.Active = false
	s.DeletedAt = &now
	return nil
}

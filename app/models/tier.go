package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/subtally/subtally/internal/pkg/billingcycle"
)

// Tier is a priced plan of a catalog product. Period is restricted to the
// four canonical recurrence lengths; BeforeSave rejects everything else so
// invalid periods never reach the cycle math.
type Tier struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"index" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Name      string          `gorm:"type:varchar(100)" json:"name" validate:"required,min=1,max=100"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Period    string          `gorm:"type:varchar(16)" json:"period" validate:"required,oneof=daily weekly monthly yearly"`
	Active    bool            `gorm:"default:true" json:"active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (t *Tier) BeforeSave(_ *gorm.DB) error {
	p, err := billingcycle.ParsePeriod(t.Period)
	if err != nil {
		return err
	}
	t.Period = string(p)
	if t.Price.IsNegative() {
		return gorm.ErrInvalidValue
	}
	return nil
}

// BillingPeriod returns the tier period as an engine period.
func (t *Tier) BillingPeriod() (billingcycle.Period, error) {
	return billingcycle.ParsePeriod(t.Period)
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	VendorID    uint           `gorm:"index" json:"vendor_id"`
	Vendor      Vendor         `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	CategoryID  uint           `gorm:"index" json:"category_id"`
	Category    Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name        string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Slug        string         `gorm:"type:varchar(180);uniqueIndex" json:"slug" validate:"required,max=180"`
	Description string         `gorm:"type:text" json:"description" validate:"max=5000"`
	URL         string         `gorm:"type:varchar(255)" json:"url" validate:"omitempty,url,max=255"`
	ViewCount   int64          `gorm:"default:0" json:"view_count"`
	Tiers       []Tier         `gorm:"foreignKey:ProductID" json:"tiers,omitempty"`
	Logo        *ProductLogo   `gorm:"foreignKey:ProductID" json:"logo,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

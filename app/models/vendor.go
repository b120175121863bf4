package models

import (
	"time"

	"gorm.io/gorm"
)

type Vendor struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"index" json:"owner_id"`
	Owner       User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name        string         `gorm:"type:varchar(150);uniqueIndex" json:"name" validate:"required,min=2,max=150"`
	Website     string         `gorm:"type:varchar(255)" json:"website" validate:"omitempty,url,max=255"`
	Description string         `gorm:"type:text" json:"description" validate:"max=2000"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

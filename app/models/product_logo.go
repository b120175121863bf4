package models

import (
	"time"
)

// ProductLogo is the stored logo of a catalog product plus its generated
// variants. The original lives on local disk and is mirrored to object
// storage; variants are derived and re-creatable.
type ProductLogo struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ProductID     uint       `gorm:"uniqueIndex" json:"product_id"`
	UUID          string     `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	FileName      string     `gorm:"type:varchar(255)" json:"file_name"`
	FileType      string     `gorm:"type:varchar(10)" json:"file_type"`
	FileSize      int64      `json:"file_size"`
	FilePath      string     `gorm:"type:varchar(255)" json:"file_path"`
	ThumbnailPath string     `gorm:"type:varchar(255)" json:"thumbnail_path"`
	SmallPath     string     `gorm:"type:varchar(255)" json:"small_path"`
	ObjectKey     string     `gorm:"type:varchar(255)" json:"-"`
	MirroredAt    *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

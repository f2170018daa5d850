package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultItemImage is used when an item is created without an image.
const DefaultItemImage = "/images/sample.jpg"

type Item struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Price        float64        `gorm:"not null;default:0;index" json:"price"`
	Category     string         `gorm:"type:varchar(100);not null;index" json:"category"`
	ImageURL     string         `json:"imageUrl"`
	CountInStock int            `gorm:"not null;default:0" json:"countInStock"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Item) TableName() string {
	return "items"
}

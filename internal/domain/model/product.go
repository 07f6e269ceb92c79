package model

import (
	"time"

	"gorm.io/gorm"
)

// Productは商品カタログの1件
type Product struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Price       float64 `gorm:"type:decimal(15,2);not null" json:"price"`
	Stock       int64   `gorm:"not null;default:0" json:"stock"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProductViewCounterは商品詳細の閲覧回数を1行で持つカウンタ
type ProductViewCounter struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	ViewCount int64  `gorm:"not null;default:0" json:"view_count"`
}

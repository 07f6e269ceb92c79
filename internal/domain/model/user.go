package model

import (
	"time"

	"gorm.io/gorm"
)

// Userはアカウント本体。
// usernameとemailは未削除の行の中で一意。
type User struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"` // 物理削除はしない
}

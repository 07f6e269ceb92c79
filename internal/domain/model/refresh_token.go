package model

import "time"

// RefreshTokenはログイン/リフレッシュごとに1件作る使い捨てトークン。
// 有効なのは revoked=false かつ used_at が未設定で期限内のものだけ。
// revokedは一度trueになったら戻らない。
type RefreshToken struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Token     string `gorm:"type:varchar(500);uniqueIndex;not null"`
	UserID    string `gorm:"type:uuid;not null;index"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Revoked   bool      `gorm:"not null;default:false"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

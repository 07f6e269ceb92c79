package model

import (
	"time"

	"gorm.io/gorm"
)

// 口座開設申込のステータス
type OnboardingStatus string

const (
	OnboardingStatusRequested  OnboardingStatus = "REQUESTED"
	OnboardingStatusInProgress OnboardingStatus = "IN_PROGRESS"
	OnboardingStatusCompleted  OnboardingStatus = "COMPLETED"
	OnboardingStatusRejected   OnboardingStatus = "REJECTED"
)

// ValidOnboardingStatusはstatusが定義済みの値かどうか
func ValidOnboardingStatus(s OnboardingStatus) bool {
	switch s {
	case OnboardingStatusRequested, OnboardingStatusInProgress,
		OnboardingStatusCompleted, OnboardingStatusRejected:
		return true
	default:
		return false
	}
}

// Onboardingは口座開設申込。
// Documentは暗号化済みの文字列をそのまま持つ。
// DocumentHashは平文のsha256で、重複チェック専用（塩なし）。
type Onboarding struct {
	ID            string           `gorm:"type:uuid;primaryKey"`
	Name          string           `gorm:"type:varchar(255);not null"`
	Document      string           `gorm:"type:text;not null"`
	DocumentHash  string           `gorm:"column:document_hash;type:varchar(64);uniqueIndex;not null"`
	Email         string           `gorm:"type:varchar(100);uniqueIndex;not null"`
	InitialAmount float64          `gorm:"type:decimal(15,2);not null"`
	Status        OnboardingStatus `gorm:"type:varchar(20);not null;default:'REQUESTED';index:idx_onboarding_user_status,priority:2"`
	UserID        string           `gorm:"type:uuid;not null;index:idx_onboarding_user_status,priority:1"`
	User          User             `gorm:"foreignKey:UserID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrOnboardingNotFound = errors.New("onboarding not found")

// 口座開設申込の保存・取得
type OnboardingRepository interface {
	Create(ctx context.Context, onboarding *model.Onboarding) error
	//申込emailで1件取得（なければnil, nil）
	FindByEmail(ctx context.Context, email string) (*model.Onboarding, error)
	//書類のfingerprintで1件取得（なければnil, nil）
	FindByDocumentHash(ctx context.Context, documentHash string) (*model.Onboarding, error)
	FindByID(ctx context.Context, id string) (*model.Onboarding, error)
	//ユーザーの申込を作成日の新しい順で取得
	FindAllByUserID(ctx context.Context, userID string) ([]model.Onboarding, error)
	Update(ctx context.Context, onboarding *model.Onboarding) error
	//ソフトデリート
	Delete(ctx context.Context, id string) error
}

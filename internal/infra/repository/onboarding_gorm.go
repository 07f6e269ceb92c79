package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type onboardingGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewOnboardingGormRepository(db *gorm.DB) repo.OnboardingRepository {
	return &onboardingGormRepository{db: db}
}

func (r *onboardingGormRepository) Create(ctx context.Context, onboarding *model.Onboarding) error {
	if err := r.db.WithContext(ctx).Create(onboarding).Error; err != nil {
		return err
	}
	return nil
}

// 申込emailで1件取得
func (r *onboardingGormRepository) FindByEmail(ctx context.Context, email string) (*model.Onboarding, error) {
	var o model.Onboarding

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&o).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &o, nil
}

// 書類fingerprintで1件取得
func (r *onboardingGormRepository) FindByDocumentHash(ctx context.Context, documentHash string) (*model.Onboarding, error) {
	var o model.Onboarding

	err := r.db.WithContext(ctx).
		Where("document_hash = ?", documentHash).
		First(&o).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &o, nil
}

func (r *onboardingGormRepository) FindByID(ctx context.Context, id string) (*model.Onboarding, error) {
	var o model.Onboarding

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&o).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrOnboardingNotFound
		}
		return nil, err
	}

	return &o, nil
}

// ユーザーの申込を新しい順で取得
func (r *onboardingGormRepository) FindAllByUserID(ctx context.Context, userID string) ([]model.Onboarding, error) {
	var list []model.Onboarding

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error

	if err != nil {
		return nil, err
	}

	return list, nil
}

func (r *onboardingGormRepository) Update(ctx context.Context, onboarding *model.Onboarding) error {
	if err := r.db.WithContext(ctx).Save(onboarding).Error; err != nil {
		return err
	}
	return nil
}

// ソフトデリート（DeletedAtをセット）
func (r *onboardingGormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Onboarding{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrOnboardingNotFound
	}

	return nil
}

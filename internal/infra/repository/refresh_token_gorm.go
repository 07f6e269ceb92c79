package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type refreshTokenGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewRefreshTokenGormRepository(db *gorm.DB) repo.RefreshTokenRepository {
	return &refreshTokenGormRepository{db: db}
}

// リフレッシュトークンを保存。
func (r *refreshTokenGormRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	//タイムアウトやキャンセルをDB処理に伝える
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return err
	}
	return nil
}

// トークン値で所有ユーザーをJOINして1件取得します。
func (r *refreshTokenGormRepository) FindByTokenWithUser(ctx context.Context, token string) (*model.RefreshToken, error) {
	var rt model.RefreshToken

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		First(&rt).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrRefreshTokenNotFound
		}
		return nil, err
	}

	return &rt, nil
}

// used_at をセットして「使用済み」にします。
// 条件付きUPDATEなので、同じトークンを同時に使われても勝者は1人だけ。
func (r *refreshTokenGormRepository) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("id = ? AND used_at IS NULL AND revoked = ?", tokenID, false).
		Update("used_at", usedAt)

	if result.Error != nil {
		return result.Error
	}

	// 更新件数が0なら「すでに使用済み/無効/存在しない」
	if result.RowsAffected == 0 {
		return repo.ErrRefreshTokenNotFound
	}

	return nil
}

// revoked=trueにして無効化。
func (r *refreshTokenGormRepository) Revoke(ctx context.Context, tokenID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("id = ? AND revoked = ?", tokenID, false).
		Update("revoked", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrRefreshTokenNotFound
	}

	return nil
}

// 指定ユーザーの未失効トークンを一括revoke。
// 対象が0件でもエラーにしない（logoutの冪等性）。
func (r *refreshTokenGormRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)

	return result.Error
}

// 期限切れのトークンを全削除します（revoked/usedは問わない）。
func (r *refreshTokenGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.RefreshToken{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

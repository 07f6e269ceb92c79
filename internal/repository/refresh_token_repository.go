package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
	"time"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// リフレッシュトークンの保存・取得・更新・削除
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	//トークン値で所有ユーザーごと1クエリで取得
	FindByTokenWithUser(ctx context.Context, token string) (*model.RefreshToken, error)
	//未使用・未失効の行だけused_atをセット。0件更新なら先に誰かが使っている
	MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error
	// revoked=trueにする（trueからfalseへは戻さない）
	Revoke(ctx context.Context, tokenID string) error
	//指定ユーザーの未失効トークンを一括revoke。対象0件でもエラーにしない（冪等）
	RevokeAllByUserID(ctx context.Context, userID string) error
	//期限切れを全削除（revoked/usedは問わない）。削除件数を返す
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

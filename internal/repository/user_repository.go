package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// unique制約違反をusecaseに伝えるためのエラー。
// 事前チェックの隙間で同時登録が走ってもDB制約側でここに落ちる。
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// アカウントの保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。unique違反はErrDuplicateUsername/ErrDuplicateEmailで返す
	Create(ctx context.Context, user *model.User) error
	//usernameまたはemailが一致する1件を1クエリで取得（なければnil, nil）
	FindByUsernameOrEmail(ctx context.Context, username string, email string) (*model.User, error)
	//usernameで1件取得（なければnil, nil）
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// IDで1件取得（なければnil, nil）
	FindByID(ctx context.Context, userID string) (*model.User, error)
	// IDで有効（is_active=true）な1件を取得（なければnil, nil）
	FindActiveByID(ctx context.Context, userID string) (*model.User, error)
}

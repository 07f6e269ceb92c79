package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	domainrepo "app/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// postgresのunique違反コード
const pgUniqueViolation = "23505"

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// Create はユーザーを新規作成。
// 同時登録のレースは事前チェックでは防げないので、
// unique制約違反をここでErrDuplicateUsername/ErrDuplicateEmailに変換する。
func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return domainrepo.ErrDuplicateUsername
			}
			return domainrepo.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// usernameまたはemailの一致を1クエリで1件取得
func (r *userGormRepository) FindByUsernameOrEmail(ctx context.Context, username string, email string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// usernameでユーザーを1件取得
func (r *userGormRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// IDで有効なユーザーを1件取得。停止済み・削除済みは見つからない扱い
func (r *userGormRepository) FindActiveByID(ctx context.Context, userID string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", userID, true).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewProductGormRepository(db *gorm.DB) repo.ProductRepository {
	return &productGormRepository{db: db}
}

func (r *productGormRepository) Create(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return err
	}
	return nil
}

func (r *productGormRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrProductNotFound
		}
		return nil, err
	}

	return &p, nil
}

// 作成日の新しい順で全件取得
func (r *productGormRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	var list []model.Product

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&list).Error

	if err != nil {
		return nil, err
	}

	return list, nil
}

func (r *productGormRepository) Update(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return err
	}
	return nil
}

// ソフトデリート
func (r *productGormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Product{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrProductNotFound
	}

	return nil
}

// 閲覧カウンタを+1して現在値を返す。行がなければ作る。
func (r *productGormRepository) IncrementViewCount(ctx context.Context) (int64, error) {
	counter := model.ProductViewCounter{ID: uuid.NewString(), ViewCount: 0}

	//1行しか使わないので既存行があればそれを対象にする
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		FirstOrCreate(&counter, model.ProductViewCounter{}).Error
	if err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).
		Model(&model.ProductViewCounter{}).
		Where("id = ?", counter.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}

	var updated model.ProductViewCounter
	if err := r.db.WithContext(ctx).Where("id = ?", counter.ID).First(&updated).Error; err != nil {
		return 0, err
	}

	return updated.ViewCount, nil
}

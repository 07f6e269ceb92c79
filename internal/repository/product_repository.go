package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrProductNotFound = errors.New("product not found")

// 商品カタログの保存・取得
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	//作成日の新しい順で全件取得
	FindAll(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	//ソフトデリート
	Delete(ctx context.Context, id string) error
	//商品詳細の閲覧カウンタを+1して現在値を返す
	IncrementViewCount(ctx context.Context) (int64, error)
}

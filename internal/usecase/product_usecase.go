package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

type ProductUsecase struct {
	products repo.ProductRepository
	clock    Clock
}

// DI
func NewProductUsecase(products repo.ProductRepository, clock Clock) *ProductUsecase {
	return &ProductUsecase{
		products: products,
		clock:    clock,
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int64
}

// 商品詳細の返却形（閲覧カウンタ込み）
type ProductDetailOutput struct {
	model.Product
	ViewCount int64 `json:"view_count"`
}

func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return nil, NewHTTPError(http.StatusBadRequest, "name is required and cannot exceed 255 characters")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "description is required")
	}
	if in.Price <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "price must be a positive number")
	}
	if in.Stock < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "stock cannot be negative")
	}

	now := u.clock.Now()
	product := &model.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := u.products.Create(ctx, product); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error creating product")
	}

	return product, nil
}

func (u *ProductUsecase) FindAll(ctx context.Context) ([]model.Product, error) {
	list, err := u.products.FindAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error fetching products")
	}
	return list, nil
}

// FindOneは詳細取得。読むたびに閲覧カウンタを+1する。
func (u *ProductUsecase) FindOne(ctx context.Context, id string) (*ProductDetailOutput, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "the provided ID is not a valid UUID")
	}

	product, err := u.products.FindByID(ctx, id)
	if err != nil {
		if err == repo.ErrProductNotFound {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "error fetching product")
	}

	viewCount, err := u.products.IncrementViewCount(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error fetching product")
	}

	return &ProductDetailOutput{
		Product:   *product,
		ViewCount: viewCount,
	}, nil
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int64
}

// Updateは指定フィールドだけ上書きする部分更新
func (u *ProductUsecase) Update(ctx context.Context, id string, in UpdateProductInput) (*model.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "the provided ID is not a valid UUID")
	}

	product, err := u.products.FindByID(ctx, id)
	if err != nil {
		if err == repo.ErrProductNotFound {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "error updating product")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > 255 {
			return nil, NewHTTPError(http.StatusBadRequest, "name is required and cannot exceed 255 characters")
		}
		product.Name = name
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, NewHTTPError(http.StatusBadRequest, "description is required")
		}
		product.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, NewHTTPError(http.StatusBadRequest, "price must be a positive number")
		}
		product.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, NewHTTPError(http.StatusBadRequest, "stock cannot be negative")
		}
		product.Stock = *in.Stock
	}

	product.UpdatedAt = u.clock.Now()

	if err := u.products.Update(ctx, product); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error updating product")
	}

	return product, nil
}

// Removeはソフトデリート
func (u *ProductUsecase) Remove(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return NewHTTPError(http.StatusBadRequest, "the provided ID is not a valid UUID")
	}

	if err := u.products.Delete(ctx, id); err != nil {
		if err == repo.ErrProductNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "error deleting product")
	}

	return nil
}

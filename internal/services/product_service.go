package services

import (
	"context"
	"fmt"

	dbm "bookstore/internal/models/db_models"
	"bookstore/internal/models/request_models"
	resp "bookstore/internal/models/response_models"
	"bookstore/internal/repositories"
	"bookstore/pkg/utils"
)

type ProductService interface {
	ListProducts(ctx context.Context, q request_models.ListQuery, kind string) (*resp.Page[resp.ProductResponse], error)
}

type productService struct {
	products repositories.ProductRepository
}

func NewProductService(products repositories.ProductRepository) ProductService {
	return &productService{products: products}
}

func (s *productService) ListProducts(ctx context.Context, q request_models.ListQuery, kind string) (*resp.Page[resp.ProductResponse], error) {
	q.Normalize()
	if err := validatePaging(q.Page, q.Limit); err != nil {
		return nil, err
	}
	switch dbm.ProductKind(kind) {
	case "", dbm.ProductEbook, dbm.ProductAudiobook, dbm.ProductCourse, dbm.ProductPodcast:
	default:
		return nil, utils.ErrInvalidFilter
	}

	filter := repositories.BuildQuery(q, repositories.ProductSearchFields, repositories.ProductSortColumns)
	products, total, err := s.products.List(ctx, filter, kind, q.Page, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list products: %v", utils.ErrDatabaseError, err)
	}

	items := make([]resp.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, resp.NewProductResponse(&products[i]))
	}
	return &resp.Page[resp.ProductResponse]{Items: items, Page: q.Page, Limit: q.Limit, Total: total}, nil
}

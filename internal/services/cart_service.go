package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbm "bookstore/internal/models/db_models"
	resp "bookstore/internal/models/response_models"
	"bookstore/internal/repositories"
	"bookstore/pkg/utils"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*resp.CartResponse, error)
	ReplaceCart(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*resp.CartResponse, error)
}

type cartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*resp.CartResponse, error) {
	cart, err := s.carts.GetCart(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: read cart: %v", utils.ErrStorageError, err)
	}
	if cart == nil {
		return &resp.CartResponse{UserID: userID.String(), Products: []resp.ProductResponse{}, Total: decimal.Zero}, nil
	}

	ids := make([]uuid.UUID, 0, len(cart.ProductIDs))
	for _, raw := range cart.ProductIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: find products: %v", utils.ErrDatabaseError, err)
	}
	return cartResponse(cart, products), nil
}

// ReplaceCart stores the given selection; unknown or unpublished products
// are rejected.
func (s *cartService) ReplaceCart(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*resp.CartResponse, error) {
	seen := make(map[uuid.UUID]struct{}, len(productIDs))
	ids := make([]uuid.UUID, 0, len(productIDs))
	for _, id := range productIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: find products: %v", utils.ErrDatabaseError, err)
	}
	if len(products) != len(ids) {
		return nil, utils.ErrProductNotFound
	}

	cart := &dbm.Cart{UserID: userID.String(), ProductIDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		cart.ProductIDs = append(cart.ProductIDs, id.String())
	}
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("%w: save cart: %v", utils.ErrStorageError, err)
	}
	return cartResponse(cart, products), nil
}

func cartResponse(cart *dbm.Cart, products []dbm.Product) *resp.CartResponse {
	out := &resp.CartResponse{
		UserID:    cart.UserID,
		Products:  make([]resp.ProductResponse, 0, len(products)),
		Total:     decimal.Zero,
		UpdatedAt: utils.FormatRFC3339(cart.UpdatedAt),
	}
	for i := range products {
		out.Products = append(out.Products, resp.NewProductResponse(&products[i]))
		out.Total = out.Total.Add(products[i].Price)
	}
	return out
}

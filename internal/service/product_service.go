package service

import (
	"context"
	"errors"
	"strings"

	"photo-inventory/internal/apperr"
	"photo-inventory/internal/config"
	"photo-inventory/internal/domain"
	"photo-inventory/internal/repository"
	"photo-inventory/internal/validation"
)

var (
	ErrProductNotFound  = apperr.NotFound("product not found")
	ErrProductForbidden = apperr.Forbidden("you do not own this product")
	ErrProductNameTaken = apperr.Conflict("product with this name already exists")
	ErrPriceOutOfRange  = apperr.Validation("price must be less than or equal to 9999999999.99",
		apperr.FieldError{Field: "price", Message: "must be less than or equal to 9999999999.99"})
)

// ProductInput carries the writable product fields. Pointers distinguish a
// missing price or qty from zero.
type ProductInput struct {
	Name        string   `json:"name" validate:"notblank,max=100"`
	Description string   `json:"description" validate:"notblank,max=500"`
	Price       *float64 `json:"price" validate:"required,gte=0,lte=9999999999.99"`
	Qty         *int     `json:"qty" validate:"required,gte=0"`
}

// ProductService implements owner-scoped product management
type ProductService interface {
	Create(ctx context.Context, userID int64, input ProductInput) (*domain.Product, error)
	List(ctx context.Context, userID int64) ([]*domain.Product, error)
	Get(ctx context.Context, id, userID int64) (*domain.Product, error)
	Update(ctx context.Context, id, userID int64, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id, userID int64) (*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	nameScope   repository.NameScope
}

// NewProductService creates a ProductService. nameScope is
// config.NameScopeGlobal or config.NameScopeOwner; anything else is global.
func NewProductService(productRepo repository.ProductRepository, nameScope string) ProductService {
	scope := repository.NamesGlobal
	if nameScope == config.NameScopeOwner {
		scope = repository.NamesPerOwner
	}
	return &productService{
		productRepo: productRepo,
		nameScope:   scope,
	}
}

func (s *productService) Create(ctx context.Context, userID int64, input ProductInput) (*domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       *input.Price,
		Qty:         *input.Qty,
		UserID:      userID,
	}

	if err := s.productRepo.Create(ctx, product, s.nameScope); err != nil {
		return nil, writeError("failed to create product", err)
	}

	return product, nil
}

func (s *productService) List(ctx context.Context, userID int64) ([]*domain.Product, error) {
	products, err := s.productRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list products", err)
	}
	return products, nil
}

// Get answers not found for products owned by someone else, so callers
// cannot discover which ids exist.
func (s *productService) Get(ctx context.Context, id, userID int64) (*domain.Product, error) {
	product, err := s.productRepo.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.Internal("failed to get product", err)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, id, userID int64, input ProductInput) (*domain.Product, error) {
	product, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = *input.Price
	product.Qty = *input.Qty

	if err := s.productRepo.Update(ctx, product, s.nameScope); err != nil {
		return nil, writeError("failed to update product", err)
	}

	return product, nil
}

func (s *productService) Delete(ctx context.Context, id, userID int64) (*domain.Product, error) {
	product, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.Internal("failed to delete product", err)
	}

	return product, nil
}

// findOwned distinguishes missing (404) from foreign (403) products.
func (s *productService) findOwned(ctx context.Context, id, userID int64) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.Internal("failed to get product", err)
	}

	if !product.OwnedBy(userID) {
		return nil, ErrProductForbidden
	}

	return product, nil
}

func writeError(msg string, err error) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return ErrProductNotFound
	case errors.Is(err, repository.ErrProductNameTaken):
		return ErrProductNameTaken
	case errors.Is(err, repository.ErrPriceOutOfRange):
		return ErrPriceOutOfRange
	}
	return apperr.Internal(msg, err)
}

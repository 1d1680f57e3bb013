// Package product implements the carousel/catalog resource consumed by the
// storefront. All mutating operations sit behind the auth gate.
package product

import (
	"context"
	"strings"

	"github.com/pingliu/service-rental-go/internal/product/entity"
	"github.com/pingliu/service-rental-go/pkg/utilities"
)

// Repository is the catalog store consumed by the service.
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]entity.Product, error)
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id int64) error
	UpdateImage(ctx context.Context, id int64, imageURL string) error
}

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// CreateInput is the catalog creation payload.
type CreateInput struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	IsActive    *bool  `json:"isActive"`
}

// Create validates required fields and inserts the product, active by
// default.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Product, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.ProductID == "" || in.Name == "" || in.Description == "" || in.ImageURL == "" {
		return nil, ErrMissingField
	}
	p := &entity.Product{
		ID:          utilities.NewID(),
		ProductID:   in.ProductID,
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		IsActive:    true,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the catalog; activeOnly restricts it to displayed items.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]entity.Product, error) {
	return s.repo.List(ctx, activeOnly)
}

// Get returns a single product.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateInput is a partial update: only non-nil fields mutate the record.
type UpdateInput struct {
	ProductID   *string `json:"productId"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	IsActive    *bool   `json:"isActive"`
}

// Update applies the supplied fields to an existing product.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*entity.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ProductID != nil {
		p.ProductID = *in.ProductID
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// SetImage records a freshly uploaded carousel image for the product.
func (s *Service) SetImage(ctx context.Context, id int64, imageURL string) error {
	return s.repo.UpdateImage(ctx, id, imageURL)
}

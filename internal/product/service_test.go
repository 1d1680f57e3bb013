package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingliu/service-rental-go/internal/product/entity"
)

type fakeRepo struct {
	products map[int64]*entity.Product
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: map[int64]*entity.Product{}}
}

func (r *fakeRepo) List(ctx context.Context, activeOnly bool) ([]entity.Product, error) {
	out := []entity.Product{}
	for _, p := range r.products {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) Create(ctx context.Context, p *entity.Product) error {
	for _, other := range r.products {
		if other.ProductID == p.ProductID {
			return ErrProductIDTaken
		}
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, p *entity.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeRepo) UpdateImage(ctx context.Context, id int64, imageURL string) error {
	p, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	p.ImageURL = imageURL
	return nil
}

func validCreate() CreateInput {
	return CreateInput{
		ProductID:   "p-001",
		Name:        "City Bike",
		Description: "Weekend rental",
		ImageURL:    "/uploads/products/product_x.png",
	}
}

func TestCreate_ActiveByDefault(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo())
	p, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.True(t, p.IsActive)
}

func TestCreate_MissingFields(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo())
	for name, mutate := range map[string]func(*CreateInput){
		"product id":  func(in *CreateInput) { in.ProductID = " " },
		"name":        func(in *CreateInput) { in.Name = "" },
		"description": func(in *CreateInput) { in.Description = "" },
		"image url":   func(in *CreateInput) { in.ImageURL = "" },
	} {
		in := validCreate()
		mutate(&in)
		_, err := svc.Create(context.Background(), in)
		assert.ErrorIs(t, err, ErrMissingField, name)
	}
}

func TestCreate_DuplicateProductID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo())
	_, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreate())
	assert.ErrorIs(t, err, ErrProductIDTaken)
}

func TestList_ActiveOnly(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo())
	_, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	inactive := validCreate()
	inactive.ProductID = "p-002"
	off := false
	inactive.IsActive = &off
	_, err = svc.Create(context.Background(), inactive)
	require.NoError(t, err)

	active, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdate_Partial(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo())
	created, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	name := "Mountain Bike"
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Mountain Bike", updated.Name)
	assert.Equal(t, created.ProductID, updated.ProductID)
	assert.Equal(t, created.Description, updated.Description)

	off := false
	updated, err = svc.Update(context.Background(), created.ID, UpdateInput{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrNotFound)

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetImage(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	require.NoError(t, svc.SetImage(context.Background(), created.ID, "/uploads/products/product_y.png"))
	p, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/product_y.png", p.ImageURL)
}

package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pingliu/service-rental-go/internal/product"
	"github.com/pingliu/service-rental-go/internal/product/entity"
)

// ProductRepo provides data access for the products table using sqlx.
type ProductRepo struct {
	db *sqlx.DB
}

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// EnsureTable creates the products table if not exists (idempotent).
func (r *ProductRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS products (
  id BIGINT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL,
  image_url TEXT NOT NULL DEFAULT '',
  is_active BOOLEAN NOT NULL DEFAULT true,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_product_id ON products (product_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func translateConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "idx_products_product_id" {
		return product.ErrProductIDTaken
	}
	return err
}

const columns = `id, product_id, name, description, image_url, is_active, created_at, updated_at`

// List returns products, optionally restricted to the active ones.
func (r *ProductRepo) List(ctx context.Context, activeOnly bool) ([]entity.Product, error) {
	q := `SELECT ` + columns + ` FROM products ORDER BY created_at`
	if activeOnly {
		q = `SELECT ` + columns + ` FROM products WHERE is_active ORDER BY created_at`
	}
	out := []entity.Product{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a product row.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	const q = `SELECT ` + columns + ` FROM products WHERE id=$1`
	var row entity.Product
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// Create inserts a new product; duplicate product ids are translated.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	const q = `INSERT INTO products (id, product_id, name, description, image_url, is_active)
	VALUES (:id, :product_id, :name, :description, :image_url, :is_active)
	RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, q, p)
	if err != nil {
		return translateConstraint(err)
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&p.CreatedAt, &p.UpdatedAt)
	}
	return errors.New("no row returned")
}

// Update persists all mutable fields of the product.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	const q = `UPDATE products SET
		product_id=:product_id, name=:name, description=:description,
		image_url=:image_url, is_active=:is_active, updated_at=NOW()
	WHERE id=:id`
	res, err := r.db.NamedExecContext(ctx, q, p)
	if err != nil {
		return translateConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product row.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return product.ErrNotFound
	}
	return nil
}

// UpdateImage stores a freshly uploaded carousel image URL.
func (r *ProductRepo) UpdateImage(ctx context.Context, id int64, imageURL string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET image_url=$2, updated_at=NOW() WHERE id=$1`, id, imageURL)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return product.ErrNotFound
	}
	return nil
}

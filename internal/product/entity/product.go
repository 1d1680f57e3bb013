package entity

import "time"

// Product is a carousel/catalog item. ProductID is the client-facing
// identifier and is unique across all products.
type Product struct {
	ID          int64     `db:"id" json:"id,string"`
	ProductID   string    `db:"product_id" json:"productId"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

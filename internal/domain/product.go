package domain

import "time"

// MaxProductPrice is the largest price the products.price NUMERIC(12,2)
// column holds. Prices are stored rounded to cents.
const MaxProductPrice = 9999999999.99

// Product is an inventory item owned by a single user
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Qty         int       `json:"qty" db:"qty"`
	UserID      int64     `json:"user_id" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether userID owns the product
func (p *Product) OwnedBy(userID int64) bool {
	return p.UserID == userID
}

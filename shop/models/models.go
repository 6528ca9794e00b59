// Package models declares the storage-owned entities of the shop.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a Telegram account known to the shop. ReferrerID points at the
// user whose referral link brought this one in; it is never the user itself.
type User struct {
	UserID     int64     `db:"user_id"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	Phone      *string   `db:"phone"`
	ReferrerID *int64    `db:"referrer_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// Category groups products. Rows are reference data seeded by migrations.
type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Product is a sellable item managed through the admin form.
type Product struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Image       string          `db:"image"`
	CategoryID  int64           `db:"category_id"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// ProductFields carries the five values accumulated by the admin form.
type ProductFields struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	CategoryID  int64
}

// Banner holds the picture and description shown on one menu page.
// There is always exactly one row per known page name; the core only
// updates images, never creates or deletes rows.
type Banner struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Image       string `db:"image"`
	Description string `db:"description"`
}

// CartItem is one (user, product) line of a cart with the joined product.
type CartItem struct {
	ID        int64   `db:"id"`
	UserID    int64   `db:"user_id"`
	ProductID int64   `db:"product_id"`
	Quantity  int     `db:"quantity"`
	Product   Product `db:"product"`
}

// LineTotal returns quantity times unit price for this cart line.
func (ci CartItem) LineTotal() decimal.Decimal {
	return ci.Product.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

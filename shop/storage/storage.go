// Package storage implements the postgres repository behind the shop.
// Every accessor is a single statement (or a short statement sequence);
// no transaction spans a conversation turn.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/shop/models"
)

// ErrNotFound reports that a referenced row does not exist (anymore).
var ErrNotFound = errors.New("storage: not found")

// Repository wraps the shared sqlx pool with the shop's query surface.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a Repository over an established pool.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// FetchBanner returns the banner row for a known page name.
func (r *Repository) FetchBanner(ctx context.Context, page string) (models.Banner, error) {
	var b models.Banner
	err := r.db.GetContext(ctx, &b,
		`SELECT id, name, image, description FROM banners WHERE name = $1`, page)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Banner{}, fmt.Errorf("banner %q: %w", page, ErrNotFound)
	}
	if err != nil {
		return models.Banner{}, fmt.Errorf("fetch banner %q: %w", page, err)
	}
	return b, nil
}

// FetchBannerPages returns all known banner page names in id order.
func (r *Repository) FetchBannerPages(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM banners ORDER BY id`); err != nil {
		return nil, fmt.Errorf("fetch banner pages: %w", err)
	}
	return names, nil
}

// UpdateBannerImage replaces the image of the banner for the given page.
func (r *Repository) UpdateBannerImage(ctx context.Context, page, imageID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE banners SET image = $2 WHERE name = $1`, page, imageID)
	if err != nil {
		return fmt.Errorf("update banner %q: %w", page, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("banner %q: %w", page, ErrNotFound)
	}
	logger.SVCCatalog.LogAttrs(ctx, slog.LevelInfo, "banner.image_updated",
		slog.String("event", "banner.update"),
		slog.String("page", page),
	)
	return nil
}

// FetchCategories returns all categories in id order.
func (r *Repository) FetchCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.db.SelectContext(ctx, &cats, `SELECT id, name FROM categories ORDER BY id`); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return cats, nil
}

// FetchProducts returns the products of one category in id order.
func (r *Repository) FetchProducts(ctx context.Context, categoryID int64) ([]models.Product, error) {
	var prods []models.Product
	err := r.db.SelectContext(ctx, &prods,
		`SELECT id, name, description, price, image, category_id, created_at, updated_at
		 FROM products WHERE category_id = $1 ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("fetch products of category %d: %w", categoryID, err)
	}
	return prods, nil
}

// FetchProduct returns one product by id.
func (r *Repository) FetchProduct(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := r.db.GetContext(ctx, &p,
		`SELECT id, name, description, price, image, category_id, created_at, updated_at
		 FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("fetch product %d: %w", id, err)
	}
	return p, nil
}

// InsertProduct creates a product and returns its id.
func (r *Repository) InsertProduct(ctx context.Context, f models.ProductFields) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		`INSERT INTO products (name, description, price, image, category_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		f.Name, f.Description, f.Price, f.Image, f.CategoryID)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	logger.SVCCatalog.LogAttrs(ctx, slog.LevelInfo, "product.inserted",
		slog.String("event", "product.insert"),
		slog.Int64("product_id", id),
		slog.Int64("category_id", f.CategoryID),
	)
	return id, nil
}

// UpdateProduct overwrites all mutable fields of an existing product.
func (r *Repository) UpdateProduct(ctx context.Context, id int64, f models.ProductFields) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, image = $5, category_id = $6, updated_at = now()
		 WHERE id = $1`,
		id, f.Name, f.Description, f.Price, f.Image, f.CategoryID)
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	logger.SVCCatalog.LogAttrs(ctx, slog.LevelInfo, "product.updated",
		slog.String("event", "product.update"),
		slog.Int64("product_id", id),
	)
	return nil
}

// DeleteProduct removes a product. Deleting an absent row is not an error.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	logger.SVCCatalog.LogAttrs(ctx, slog.LevelInfo, "product.deleted",
		slog.String("event", "product.delete"),
		slog.Int64("product_id", id),
	)
	return nil
}

// FetchUserCart returns the user's cart lines with joined products, oldest first.
func (r *Repository) FetchUserCart(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT c.id, c.user_id, c.product_id, c.quantity,
		        p.id AS "product.id", p.name AS "product.name",
		        p.description AS "product.description", p.price AS "product.price",
		        p.image AS "product.image", p.category_id AS "product.category_id",
		        p.created_at AS "product.created_at", p.updated_at AS "product.updated_at"
		 FROM cart_items c
		 JOIN products p ON p.id = c.product_id
		 WHERE c.user_id = $1
		 ORDER BY c.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch cart of user %d: %w", userID, err)
	}
	return items, nil
}

// AddToCart creates a cart line with quantity 1 or increments an existing one.
func (r *Repository) AddToCart(ctx context.Context, userID, productID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + 1`,
		userID, productID)
	if err != nil {
		return fmt.Errorf("add to cart (user %d, product %d): %w", userID, productID, err)
	}
	logger.SVCCart.LogAttrs(ctx, slog.LevelDebug, "cart.increment",
		slog.String("event", "cart.add"),
		slog.Int64("user_id", userID),
		slog.Int64("product_id", productID),
	)
	return nil
}

// ReduceInCart decrements a cart line and deletes it at zero. It reports
// whether the line still exists afterwards; a missing line reports false.
func (r *Repository) ReduceInCart(ctx context.Context, userID, productID int64) (bool, error) {
	var quantity int
	err := r.db.GetContext(ctx, &quantity,
		`SELECT quantity FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reduce in cart (user %d, product %d): %w", userID, productID, err)
	}
	if quantity > 1 {
		_, err = r.db.ExecContext(ctx,
			`UPDATE cart_items SET quantity = quantity - 1 WHERE user_id = $1 AND product_id = $2`,
			userID, productID)
		if err != nil {
			return false, fmt.Errorf("reduce in cart (user %d, product %d): %w", userID, productID, err)
		}
		return true, nil
	}
	if err := r.DeleteFromCart(ctx, userID, productID); err != nil {
		return false, err
	}
	return false, nil
}

// DeleteFromCart removes a cart line. Idempotent: an absent row is a no-op.
func (r *Repository) DeleteFromCart(ctx context.Context, userID, productID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return fmt.Errorf("delete from cart (user %d, product %d): %w", userID, productID, err)
	}
	logger.SVCCart.LogAttrs(ctx, slog.LevelDebug, "cart.delete",
		slog.String("event", "cart.delete"),
		slog.Int64("user_id", userID),
		slog.Int64("product_id", productID),
	)
	return nil
}

// UpsertUser registers a user on first contact. Existing rows are left
// untouched so a referrer can never be rewritten by a later /start.
func (r *Repository) UpsertUser(ctx context.Context, userID int64, firstName, lastName string, phone *string, referrerID *int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, first_name, last_name, phone, referrer_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, firstName, lastName, phone, referrerID)
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", userID, err)
	}
	logger.SVCUsers.LogAttrs(ctx, slog.LevelDebug, "user.upserted",
		slog.String("event", "user.upsert"),
		slog.Int64("user_id", userID),
		slog.Bool("referred", referrerID != nil),
	)
	return nil
}

// FetchUser returns one user row.
func (r *Repository) FetchUser(ctx context.Context, userID int64) (models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u,
		`SELECT user_id, first_name, last_name, phone, referrer_id, created_at
		 FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("fetch user %d: %w", userID, err)
	}
	return u, nil
}

// CountReferrals returns how many users registered through this user's link.
func (r *Repository) CountReferrals(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM users WHERE referrer_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count referrals of user %d: %w", userID, err)
	}
	return n, nil
}

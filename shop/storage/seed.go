package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/shopbot/core/logger"
)

// defaultBannerText is shown on a page until an admin uploads a real banner.
var defaultBannerText = map[string]string{
	"main":    "Welcome to the shop!",
	"about":   "About us.\nOpen around the clock.",
	"catalog": "Pick a category:",
	"cart":    "The cart is empty!",
	"profile": "Your profile",
}

// BannerPages lists the known page names in menu order.
func BannerPages() []string {
	return []string{"main", "about", "catalog", "cart", "profile"}
}

// EnsureBanners guarantees exactly one banner row per known page name.
// Existing rows are left untouched, so re-running the seed is safe.
func (r *Repository) EnsureBanners(ctx context.Context) error {
	for _, page := range BannerPages() {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO banners (name, image, description)
			 VALUES ($1, '', $2)
			 ON CONFLICT (name) DO NOTHING`,
			page, defaultBannerText[page])
		if err != nil {
			return fmt.Errorf("seed banner %q: %w", page, err)
		}
	}
	logger.SEED.LogAttrs(ctx, slog.LevelInfo, "banners.ensured",
		slog.String("event", "seed"),
		slog.Int("count", len(BannerPages())),
	)
	return nil
}

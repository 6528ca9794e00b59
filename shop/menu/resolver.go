// Package menu renders the five-level inline menu of the shop and owns
// the callback token codec the menu buttons speak.
package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/format"
	"github.com/m3rciful/shopbot/shop/cart"
	"github.com/m3rciful/shopbot/shop/models"
	"github.com/m3rciful/shopbot/shop/pager"
)

// ErrUnknownMenuLevel reports a decoded token whose level is outside the
// five known views. Such a token cannot come from a button we rendered.
var ErrUnknownMenuLevel = errors.New("menu: unknown menu level")

// Store is the read surface the resolver renders from.
type Store interface {
	FetchBanner(ctx context.Context, page string) (models.Banner, error)
	FetchCategories(ctx context.Context) ([]models.Category, error)
	FetchProducts(ctx context.Context, categoryID int64) ([]models.Product, error)
	FetchUserCart(ctx context.Context, userID int64) ([]models.CartItem, error)
	CountReferrals(ctx context.Context, userID int64) (int, error)
}

// View is one fully rendered menu screen: a photo, an HTML caption and
// the inline keyboard to edit in place.
type View struct {
	Image   string
	Caption string
	Markup  *tele.ReplyMarkup
}

// Resolver renders menu screens from storage state.
type Resolver struct {
	store   Store
	carts   *cart.Engine
	botNick string
	adminID int64
}

// NewResolver builds a Resolver. botNick is the bot's username without
// the leading "@" and feeds the referral link on the profile screen.
// adminID gates the product management buttons.
func NewResolver(store Store, carts *cart.Engine, botNick string, adminID int64) *Resolver {
	return &Resolver{store: store, carts: carts, botNick: botNick, adminID: adminID}
}

// Render resolves a decoded callback into the screen it asks for. Cart
// mutations encoded in the callback are applied before rendering.
func (r *Resolver) Render(ctx context.Context, cb Callback, userID int64) (View, error) {
	switch cb.Level {
	case LevelMain:
		return r.renderBannerPage(ctx, cb.MenuName)
	case LevelCatalog:
		return r.renderCatalog(ctx)
	case LevelProduct:
		return r.renderProducts(ctx, cb, userID)
	case LevelCart:
		return r.renderCart(ctx, cb, userID)
	case LevelProfile:
		return r.renderProfile(ctx, userID)
	default:
		return View{}, fmt.Errorf("%w: %d", ErrUnknownMenuLevel, cb.Level)
	}
}

// renderBannerPage serves both "main" and "about": same keyboard,
// different banner row.
func (r *Resolver) renderBannerPage(ctx context.Context, page string) (View, error) {
	banner, err := r.store.FetchBanner(ctx, page)
	if err != nil {
		return View{}, err
	}
	return View{
		Image:   banner.Image,
		Caption: banner.Description,
		Markup:  mainMenuMarkup(),
	}, nil
}

func (r *Resolver) renderCatalog(ctx context.Context) (View, error) {
	banner, err := r.store.FetchBanner(ctx, "catalog")
	if err != nil {
		return View{}, err
	}
	categories, err := r.store.FetchCategories(ctx)
	if err != nil {
		return View{}, err
	}
	return View{
		Image:   banner.Image,
		Caption: banner.Description,
		Markup:  catalogMarkup(categories),
	}, nil
}

func (r *Resolver) renderProducts(ctx context.Context, cb Callback, userID int64) (View, error) {
	products, err := r.store.FetchProducts(ctx, cb.Category)
	if err != nil {
		return View{}, err
	}
	if len(products) == 0 {
		banner, err := r.store.FetchBanner(ctx, "catalog")
		if err != nil {
			return View{}, err
		}
		return View{
			Image:   banner.Image,
			Caption: "There are no products in this category yet.",
			Markup:  catalogMarkup(nil),
		}, nil
	}

	// Stale tokens can outlive the assortment, e.g. a product deleted
	// while someone holds its page open. Clamp rather than fail.
	page := clampPage(cb.Page, len(products))
	pg, err := pager.Paginate(products, page)
	if err != nil {
		return View{}, fmt.Errorf("products of category %d: %w", cb.Category, err)
	}

	p := pg.Item
	caption := fmt.Sprintf(
		"<strong>%s</strong>\n%s\nPrice: %s\n<strong>Product %d from %d</strong>",
		format.EscapeHTML(p.Name), format.EscapeHTML(p.Description),
		p.Price.StringFixed(2), pg.Index, pg.Total,
	)
	return View{
		Image:   p.Image,
		Caption: caption,
		Markup:  productMarkup(cb.Category, pg.Index, p.ID, pg.HasPrev, pg.HasNext, userID == r.adminID),
	}, nil
}

func (r *Resolver) renderCart(ctx context.Context, cb Callback, userID int64) (View, error) {
	op := cart.OpFromMenuName(cb.MenuName)
	page, err := r.carts.Apply(ctx, op, userID, cb.ProductID, cb.Page)
	if err != nil {
		return View{}, err
	}

	items, err := r.store.FetchUserCart(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if len(items) == 0 {
		banner, err := r.store.FetchBanner(ctx, "cart")
		if err != nil {
			return View{}, err
		}
		return View{
			Image:   banner.Image,
			Caption: fmt.Sprintf("<strong>%s</strong>", banner.Description),
			Markup:  emptyCartMarkup(),
		}, nil
	}

	page = clampPage(page, len(items))
	pg, err := pager.Paginate(items, page)
	if err != nil {
		return View{}, fmt.Errorf("cart of user %d: %w", userID, err)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}

	item := pg.Item
	caption := fmt.Sprintf(
		"<strong>%s</strong>\n%s$ x %d = %s$\nProduct %d from %d in cart.\nTotal price of the cart %s",
		format.EscapeHTML(item.Product.Name),
		item.Product.Price.StringFixed(2), item.Quantity, item.LineTotal().StringFixed(2),
		pg.Index, pg.Total,
		total.StringFixed(2),
	)

	logger.SVCMenu.LogAttrs(ctx, slog.LevelDebug, "cart.rendered",
		slog.String("event", "menu.cart"),
		slog.Int64("user_id", userID),
		slog.Int("cart_items", len(items)),
	)

	return View{
		Image:   item.Product.Image,
		Caption: caption,
		Markup:  cartMarkup(pg.Index, item.Product.ID, pg.HasPrev, pg.HasNext),
	}, nil
}

func clampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

func (r *Resolver) renderProfile(ctx context.Context, userID int64) (View, error) {
	banner, err := r.store.FetchBanner(ctx, "profile")
	if err != nil {
		return View{}, err
	}
	referrals, err := r.store.CountReferrals(ctx, userID)
	if err != nil {
		return View{}, err
	}
	caption := fmt.Sprintf(
		"<strong>%s</strong>\nReferral link: https://t.me/%s?start=%d\nNumber of referrals: %d",
		banner.Description, r.botNick, userID, referrals,
	)
	return View{
		Image:   banner.Image,
		Caption: caption,
		Markup:  profileMarkup(),
	}, nil
}

package menu

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/shop/cart"
	"github.com/m3rciful/shopbot/shop/models"
)

// fakeStore backs the resolver and the cart engine with in-memory state.
type fakeStore struct {
	banners    map[string]models.Banner
	categories []models.Category
	products   map[int64][]models.Product
	byID       map[int64]models.Product
	carts      map[int64][]models.CartItem
	referrals  map[int64]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		banners:   make(map[string]models.Banner),
		products:  make(map[int64][]models.Product),
		byID:      make(map[int64]models.Product),
		carts:     make(map[int64][]models.CartItem),
		referrals: make(map[int64]int),
	}
}

func (s *fakeStore) addBanner(page, image, description string) {
	s.banners[page] = models.Banner{Name: page, Image: image, Description: description}
}

func (s *fakeStore) addProduct(p models.Product) {
	s.products[p.CategoryID] = append(s.products[p.CategoryID], p)
	s.byID[p.ID] = p
}

func (s *fakeStore) FetchBanner(_ context.Context, page string) (models.Banner, error) {
	b, ok := s.banners[page]
	if !ok {
		return models.Banner{}, fmt.Errorf("no banner %q", page)
	}
	return b, nil
}

func (s *fakeStore) FetchCategories(_ context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func (s *fakeStore) FetchProducts(_ context.Context, categoryID int64) ([]models.Product, error) {
	return s.products[categoryID], nil
}

func (s *fakeStore) FetchUserCart(_ context.Context, userID int64) ([]models.CartItem, error) {
	return s.carts[userID], nil
}

func (s *fakeStore) CountReferrals(_ context.Context, userID int64) (int, error) {
	return s.referrals[userID], nil
}

func (s *fakeStore) AddToCart(_ context.Context, userID, productID int64) error {
	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity++
			return nil
		}
	}
	s.carts[userID] = append(lines, models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  1,
		Product:   s.byID[productID],
	})
	return nil
}

func (s *fakeStore) ReduceInCart(_ context.Context, userID, productID int64) (bool, error) {
	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		if lines[i].Quantity > 1 {
			lines[i].Quantity--
			return true, nil
		}
		s.carts[userID] = append(lines[:i], lines[i+1:]...)
		return false, nil
	}
	return false, nil
}

func (s *fakeStore) DeleteFromCart(_ context.Context, userID, productID int64) error {
	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newResolver(store *fakeStore, adminID int64) *Resolver {
	return NewResolver(store, cart.NewEngine(store), "shop_test_bot", adminID)
}

// markupHasData reports whether any inline button carries the exact data.
func markupHasData(markup *tele.ReplyMarkup, data string) bool {
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.Data == data {
				return true
			}
		}
	}
	return false
}

func TestRenderUnknownLevel(t *testing.T) {
	store := newFakeStore()
	r := newResolver(store, 0)

	_, err := r.Render(context.Background(), Callback{Level: Level(9), MenuName: "main"}, 1)
	assert.ErrorIs(t, err, ErrUnknownMenuLevel)
}

func TestRenderMainAndAbout(t *testing.T) {
	store := newFakeStore()
	store.addBanner("main", "img-main", "Welcome!")
	store.addBanner("about", "img-about", "We sell things.")
	r := newResolver(store, 0)
	ctx := context.Background()

	view, err := r.Render(ctx, Callback{Level: LevelMain, MenuName: "main"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "img-main", view.Image)
	assert.Equal(t, "Welcome!", view.Caption)
	require.NotNil(t, view.Markup)

	about, err := r.Render(ctx, Callback{Level: LevelMain, MenuName: "about"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "We sell things.", about.Caption)
	// Both screens navigate through the same top-level keyboard.
	assert.Equal(t, view.Markup, about.Markup)
}

func TestRenderCatalogListsCategories(t *testing.T) {
	store := newFakeStore()
	store.addBanner("catalog", "img-cat", "Pick a category")
	store.categories = []models.Category{{ID: 1, Name: "Tea"}, {ID: 2, Name: "Coffee"}}
	r := newResolver(store, 0)

	view, err := r.Render(context.Background(), Callback{Level: LevelCatalog, MenuName: "catalog"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pick a category", view.Caption)
	assert.True(t, markupHasData(view.Markup,
		Encode(Callback{Level: LevelProduct, MenuName: "category", Category: 2, Page: 1})))
}

func TestRenderProductFormatsPrice(t *testing.T) {
	store := newFakeStore()
	store.addProduct(models.Product{
		ID: 10, Name: "Sencha", Description: "Green tea", Price: price("19.9"),
		Image: "img-10", CategoryID: 1,
	})
	store.addProduct(models.Product{
		ID: 11, Name: "Assam", Description: "Black tea", Price: price("7"),
		Image: "img-11", CategoryID: 1,
	})
	r := newResolver(store, 0)

	view, err := r.Render(context.Background(),
		Callback{Level: LevelProduct, MenuName: "category", Category: 1, Page: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "img-10", view.Image)
	assert.Contains(t, view.Caption, "Price: 19.90")
	assert.Contains(t, view.Caption, "Product 1 from 2")
	assert.True(t, markupHasData(view.Markup,
		Encode(Callback{Level: LevelProduct, MenuName: "next", Category: 1, Page: 2})))
}

func TestRenderProductStalePageClamps(t *testing.T) {
	store := newFakeStore()
	store.addProduct(models.Product{ID: 10, Name: "Sencha", Price: price("5"), Image: "img-10", CategoryID: 1})
	store.addProduct(models.Product{ID: 11, Name: "Assam", Price: price("6"), Image: "img-11", CategoryID: 1})
	r := newResolver(store, 0)

	view, err := r.Render(context.Background(),
		Callback{Level: LevelProduct, MenuName: "next", Category: 1, Page: 5}, 1)
	require.NoError(t, err)
	assert.Equal(t, "img-11", view.Image)
	assert.Contains(t, view.Caption, "Product 2 from 2")
}

func TestRenderEmptyCategory(t *testing.T) {
	store := newFakeStore()
	store.addBanner("catalog", "img-cat", "Pick a category")
	r := newResolver(store, 0)

	view, err := r.Render(context.Background(),
		Callback{Level: LevelProduct, MenuName: "category", Category: 42, Page: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "img-cat", view.Image)
	assert.Contains(t, view.Caption, "no products")
}

func TestAdminSeesManagementButtons(t *testing.T) {
	store := newFakeStore()
	store.addProduct(models.Product{ID: 10, Name: "Sencha", Price: price("5"), Image: "img-10", CategoryID: 1})
	r := newResolver(store, 777)
	cb := Callback{Level: LevelProduct, MenuName: "category", Category: 1, Page: 1}
	ctx := context.Background()

	admin, err := r.Render(ctx, cb, 777)
	require.NoError(t, err)
	assert.True(t, markupHasData(admin.Markup, "delete_10"))
	assert.True(t, markupHasData(admin.Markup, "change_10"))

	user, err := r.Render(ctx, cb, 1)
	require.NoError(t, err)
	assert.False(t, markupHasData(user.Markup, "delete_10"))
	assert.False(t, markupHasData(user.Markup, "change_10"))
}

func TestRenderCartGrandTotal(t *testing.T) {
	store := newFakeStore()
	store.addProduct(models.Product{ID: 10, Name: "Sencha", Price: price("19.99"), Image: "img-10", CategoryID: 1})
	store.addProduct(models.Product{ID: 11, Name: "Assam", Price: price("5"), Image: "img-11", CategoryID: 1})
	ctx := context.Background()
	require.NoError(t, store.AddToCart(ctx, 1, 10))
	require.NoError(t, store.AddToCart(ctx, 1, 10))
	require.NoError(t, store.AddToCart(ctx, 1, 11))
	r := newResolver(store, 0)

	view, err := r.Render(ctx, Callback{Level: LevelCart, MenuName: "cart", Page: 1}, 1)
	require.NoError(t, err)
	assert.Contains(t, view.Caption, "19.99$ x 2 = 39.98$")
	assert.Contains(t, view.Caption, "Product 1 from 2 in cart.")
	assert.Contains(t, view.Caption, "Total price of the cart 44.98")
}

func TestRenderCartEmptiesMidBrowse(t *testing.T) {
	store := newFakeStore()
	store.addBanner("cart", "img-cart", "Your cart is empty")
	store.addProduct(models.Product{ID: 10, Name: "Sencha", Price: price("5"), Image: "img-10", CategoryID: 1})
	store.addProduct(models.Product{ID: 11, Name: "Assam", Price: price("6"), Image: "img-11", CategoryID: 1})
	ctx := context.Background()
	require.NoError(t, store.AddToCart(ctx, 1, 10))
	require.NoError(t, store.AddToCart(ctx, 1, 11))
	r := newResolver(store, 0)

	// Viewing item 2 of 2, deleting it must land on page 1.
	view, err := r.Render(ctx,
		Callback{Level: LevelCart, MenuName: "delete", Page: 2, ProductID: 11}, 1)
	require.NoError(t, err)
	assert.Contains(t, view.Caption, "Product 1 from 1 in cart.")
	assert.Equal(t, "img-10", view.Image)

	// Deleting the last line lands on the empty-cart banner with no
	// pagination or mutation buttons at all.
	view, err = r.Render(ctx,
		Callback{Level: LevelCart, MenuName: "delete", Page: 1, ProductID: 10}, 1)
	require.NoError(t, err)
	assert.Equal(t, "img-cart", view.Image)
	assert.Contains(t, view.Caption, "Your cart is empty")
	require.Len(t, view.Markup.InlineKeyboard, 1)
	require.Len(t, view.Markup.InlineKeyboard[0], 1)
}

func TestRenderProfile(t *testing.T) {
	store := newFakeStore()
	store.addBanner("profile", "img-profile", "Your profile")
	store.referrals[1] = 3
	r := newResolver(store, 0)

	view, err := r.Render(context.Background(),
		Callback{Level: LevelProfile, MenuName: "profile"}, 1)
	require.NoError(t, err)
	assert.Contains(t, view.Caption, "https://t.me/shop_test_bot?start=1")
	assert.Contains(t, view.Caption, "Number of referrals: 3")
	assert.False(t, strings.Contains(view.Caption, "%!"))
}

package admin

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/core/telegram/state"
	"github.com/m3rciful/shopbot/shop/models"
)

type fakeAdminStore struct {
	categories   []models.Category
	products     map[int64]models.Product
	inserted     []models.ProductFields
	updated      map[int64]models.ProductFields
	insertErr    error
	bannerPages  []string
	bannerImages map[string]string
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{
		categories:   []models.Category{{ID: 1, Name: "Tea"}, {ID: 3, Name: "Coffee"}},
		products:     make(map[int64]models.Product),
		updated:      make(map[int64]models.ProductFields),
		bannerPages:  []string{"main", "about", "catalog", "cart", "profile"},
		bannerImages: make(map[string]string),
	}
}

func (s *fakeAdminStore) FetchCategories(_ context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func (s *fakeAdminStore) FetchProduct(_ context.Context, id int64) (models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, errors.New("no such product")
	}
	return p, nil
}

func (s *fakeAdminStore) InsertProduct(_ context.Context, f models.ProductFields) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, f)
	return int64(len(s.inserted)), nil
}

func (s *fakeAdminStore) UpdateProduct(_ context.Context, id int64, f models.ProductFields) error {
	s.updated[id] = f
	return nil
}

func (s *fakeAdminStore) FetchBannerPages(_ context.Context) ([]string, error) {
	return s.bannerPages, nil
}

func (s *fakeAdminStore) UpdateBannerImage(_ context.Context, page, imageID string) error {
	s.bannerImages[page] = imageID
	return nil
}

func text(s string) Input { return Input{Text: s} }

func photo(id string) Input { return Input{PhotoID: id} }

func onlyText(t *testing.T, replies []Reply) string {
	t.Helper()
	require.Len(t, replies, 1)
	return replies[0].Text
}

func TestProductFormHappyPath(t *testing.T) {
	store := newFakeAdminStore()
	form := NewProductForm(store, state.NewMemoryManager())
	ctx := context.Background()

	replies := form.StartAdd(7)
	assert.Equal(t, "Enter the product name", onlyText(t, replies))
	assert.True(t, form.Active(7))

	replies, err := form.Handle(ctx, 7, text("Widget Deluxe"))
	require.NoError(t, err)
	assert.Equal(t, "Enter the product description", onlyText(t, replies))

	replies, err = form.Handle(ctx, 7, text("A fine widget"))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "Select the category", replies[0].Text)
	require.NotNil(t, replies[0].Markup)

	// Typed text at the category step is refused.
	replies, err = form.Handle(ctx, 7, text("Coffee"))
	require.NoError(t, err)
	assert.Equal(t, "Select a category from the buttons.", onlyText(t, replies))

	replies, err = form.ChooseCategory(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, "Now enter the price of the product.", onlyText(t, replies))

	replies, err = form.Handle(ctx, 7, text("19.99"))
	require.NoError(t, err)
	assert.Equal(t, "Upload the product image", onlyText(t, replies))

	replies, err = form.Handle(ctx, 7, photo("file-abc"))
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "The product has been")

	require.Len(t, store.inserted, 1)
	got := store.inserted[0]
	assert.Equal(t, "Widget Deluxe", got.Name)
	assert.Equal(t, "A fine widget", got.Description)
	assert.Equal(t, int64(3), got.CategoryID)
	assert.Equal(t, "19.99", got.Price.StringFixed(2))
	assert.Equal(t, "file-abc", got.Image)
	assert.False(t, form.Active(7))
}

func TestProductNameBounds(t *testing.T) {
	store := newFakeAdminStore()
	form := NewProductForm(store, state.NewMemoryManager())
	ctx := context.Background()
	form.StartAdd(7)

	replies, err := form.Handle(ctx, 7, text("Cup"))
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "between 5 and 150 characters")

	replies, err = form.Handle(ctx, 7, text(strings.Repeat("x", 151)))
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "between 5 and 150 characters")

	// Boundary lengths pass.
	replies, err = form.Handle(ctx, 7, text("12345"))
	require.NoError(t, err)
	assert.Equal(t, "Enter the product description", onlyText(t, replies))
}

func TestRepeatTokenOutsideEditMode(t *testing.T) {
	store := newFakeAdminStore()
	form := NewProductForm(store, state.NewMemoryManager())
	form.StartAdd(7)

	// Without an edit target "." is just a one-character name.
	replies, err := form.Handle(context.Background(), 7, text("."))
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "between 5 and 150 characters")
}

func TestBackWalksStepsInReverse(t *testing.T) {
	store := newFakeAdminStore()
	form := NewProductForm(store, state.NewMemoryManager())
	ctx := context.Background()
	form.StartAdd(7)

	_, err := form.Handle(ctx, 7, text("Widget Deluxe"))
	require.NoError(t, err)
	_, err = form.Handle(ctx, 7, text("A fine widget"))
	require.NoError(t, err)
	_, err = form.ChooseCategory(ctx, 7, 3)
	require.NoError(t, err)

	// price -> category
	replies, err := form.Handle(ctx, 7, text("back"))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "returned to the previous step")
	assert.Contains(t, replies[0].Text, "Select the category again")
	require.NotNil(t, replies[0].Markup)

	// category -> description
	replies, err = form.Handle(ctx, 7, text("back"))
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "Enter the description again:")

	// description -> name
	replies, err = form.Handle(ctx, 7, text("back"))
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "Enter the name again:")

	// name has no previous step
	replies, err = form.Handle(ctx, 7, text("back"))
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "There is no previous step")
}

func TestCancelClearsForm(t *testing.T) {
	store := newFakeAdminStore()
	form := NewProductForm(store, state.NewMemoryManager())
	ctx := context.Background()
	form.StartAdd(7)

	_, err := form.Handle(ctx, 7, text("Widget Deluxe"))
	require.NoError(t, err)

	replies, err := form.Handle(ctx, 7, text("Cancel"))
	require.NoError(t, err)
	assert.Equal(t, "Actions cancelled", onlyText(t, replies))
	assert.False(t, form.Active(7))

	_, err = form.Handle(ctx, 7, text("anything"))
	assert.Error(t, err)
}

func TestEditModeKeepsFieldsOnRepeatToken(t *testing.T) {
	store := newFakeAdminStore()
	store.products[42] = models.Product{
		ID: 42, Name: "Old Widget", Description: "Old description",
		Price: decimal.RequireFromString("9.50"),
		Image: "old-image", CategoryID: 1,
	}
	form := NewProductForm(store, state.NewMemoryManager())
	ctx := context.Background()

	_, err := form.StartEdit(ctx, 7, 42)
	require.NoError(t, err)

	_, err = form.Handle(ctx, 7, text("."))
	require.NoError(t, err)
	_, err = form.Handle(ctx, 7, text("."))
	require.NoError(t, err)
	_, err = form.ChooseCategory(ctx, 7, 1)
	require.NoError(t, err)
	_, err = form.Handle(ctx, 7, text("."))
	require.NoError(t, err)
	replies, err := form.Handle(ctx, 7, text("."))
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "The product has been")

	require.Contains(t, store.updated, int64(42))
	got := store.updated[42]
	assert.Equal(t, "Old Widget", got.Name)
	assert.Equal(t, "Old description", got.Description)
	assert.Equal(t, "9.50", got.Price.StringFixed(2))
	assert.Equal(t, "old-image", got.Image)
	assert.Equal(t, int64(1), got.CategoryID)
	assert.Empty(t, store.inserted)
	assert.False(t, form.Active(7))
}

func TestCommitFailureReportsAndClears(t *testing.T) {
	store := newFakeAdminStore()
	store.insertErr = errors.New("insert product: connection reset")
	form := NewProductForm(store, state.NewMemoryManager())
	ctx := context.Background()
	form.StartAdd(7)

	_, err := form.Handle(ctx, 7, text("Widget Deluxe"))
	require.NoError(t, err)
	_, err = form.Handle(ctx, 7, text("A fine widget"))
	require.NoError(t, err)
	_, err = form.ChooseCategory(ctx, 7, 1)
	require.NoError(t, err)
	_, err = form.Handle(ctx, 7, text("5"))
	require.NoError(t, err)

	replies, err := form.Handle(ctx, 7, photo("file-abc"))
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "Please contact the developer.")
	assert.False(t, form.Active(7))
}

func TestBannerFlow(t *testing.T) {
	store := newFakeAdminStore()
	flow := NewBannerFlow(store, state.NewMemoryManager())
	ctx := context.Background()

	replies, err := flow.Start(ctx, 7)
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "main, about, catalog, cart, profile")
	assert.True(t, flow.Active(7))

	replies, err = flow.Handle(ctx, 7, text("hello"))
	require.NoError(t, err)
	assert.Equal(t, "Send the banner photo or cancel.", onlyText(t, replies))

	// Page names are matched case sensitively.
	replies, err = flow.Handle(ctx, 7, Input{PhotoID: "file-1", Caption: "Main"})
	require.NoError(t, err)
	assert.Contains(t, onlyText(t, replies), "valid page name")
	assert.True(t, flow.Active(7))

	replies, err = flow.Handle(ctx, 7, Input{PhotoID: "file-1", Caption: "main"})
	require.NoError(t, err)
	assert.Equal(t, "The banner has been added/changed.", onlyText(t, replies))
	assert.Equal(t, "file-1", store.bannerImages["main"])
	assert.False(t, flow.Active(7))
}

func TestBannerCancel(t *testing.T) {
	store := newFakeAdminStore()
	flow := NewBannerFlow(store, state.NewMemoryManager())
	ctx := context.Background()

	_, err := flow.Start(ctx, 7)
	require.NoError(t, err)

	replies, err := flow.Handle(ctx, 7, text("/cancel"))
	require.NoError(t, err)
	assert.Equal(t, "Actions cancelled", onlyText(t, replies))
	assert.False(t, flow.Active(7))
}

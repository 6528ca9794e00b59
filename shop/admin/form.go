// Package admin implements the multi-step admin conversations: the
// five-field product form and the banner replacement flow. The flows are
// plain request/reply state machines over the session manager so they
// stay testable without a live bot.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/core/telegram/state"
	"github.com/m3rciful/shopbot/shop/menu"
	"github.com/m3rciful/shopbot/shop/models"
)

// Store is the repository slice the admin flows write through.
type Store interface {
	FetchCategories(ctx context.Context) ([]models.Category, error)
	FetchProduct(ctx context.Context, id int64) (models.Product, error)
	InsertProduct(ctx context.Context, f models.ProductFields) (int64, error)
	UpdateProduct(ctx context.Context, id int64, f models.ProductFields) error
}

// Input is one incoming admin message, normalized off the transport.
type Input struct {
	Text    string
	PhotoID string
	Caption string
}

// Reply is one outgoing message of a flow step.
type Reply struct {
	Text   string
	Markup *tele.ReplyMarkup
}

// Product form states, one per field, in fill order.
const (
	StateProductName        state.State = "product:name"
	StateProductDescription state.State = "product:description"
	StateProductCategory    state.State = "product:category"
	StateProductPrice       state.State = "product:price"
	StateProductImage       state.State = "product:image"
)

// Session keys of the accumulating form.
const (
	tempEditID      = "product.edit_id"
	tempOriginal    = "product.original"
	tempName        = "product.name"
	tempDescription = "product.description"
	tempCategoryID  = "product.category_id"
	tempPrice       = "product.price"
)

const (
	repeatToken = "."

	msgCancelled   = "Actions cancelled"
	msgNoPrevStep  = "There is no previous step, either enter the product name or type \"cancel\""
	msgStepBack    = "Okay, you've returned to the previous step\n"
	msgCommitted   = "The product has been added/updated"
	msgPickButtons = "Select a category from the buttons."
)

// step ties a form state to its prompt and its re-entry text used when
// the admin walks back into it.
type step struct {
	st     state.State
	prompt string
	again  string
}

var productSteps = []step{
	{StateProductName, "Enter the product name", "Enter the name again:"},
	{StateProductDescription, "Enter the product description", "Enter the description again:"},
	{StateProductCategory, "Select the category", "Select the category again ⬆️"},
	{StateProductPrice, "Now enter the price of the product.", "Enter the price again:"},
	{StateProductImage, "Upload the product image", "Upload the image again:"},
}

func stepIndex(st state.State) int {
	for i, s := range productSteps {
		if s.st == st {
			return i
		}
	}
	return -1
}

// ProductForm collects the five product fields across a conversation and
// commits them as one insert or update.
type ProductForm struct {
	store    Store
	sessions state.Manager
}

// NewProductForm builds a ProductForm over the shared session manager.
func NewProductForm(store Store, sessions state.Manager) *ProductForm {
	return &ProductForm{store: store, sessions: sessions}
}

// Active reports whether the user is inside the product form.
func (f *ProductForm) Active(userID int64) bool {
	return stepIndex(f.sessions.GetState(userID)) >= 0
}

// StartAdd begins a fresh form. The reply keyboard is removed so stray
// admin-menu taps do not leak into the field answers.
func (f *ProductForm) StartAdd(userID int64) []Reply {
	f.reset(userID)
	f.sessions.SetState(userID, StateProductName)
	return []Reply{{Text: productSteps[0].prompt, Markup: keyboard.RemoveKeyboard()}}
}

// StartEdit begins the form over an existing product. The edit target
// lives in this user's session only, so two admins can edit different
// products at once. Each field accepts "." to keep the current value.
func (f *ProductForm) StartEdit(ctx context.Context, userID, productID int64) ([]Reply, error) {
	original, err := f.store.FetchProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	f.reset(userID)
	f.sessions.SetTemp(userID, tempEditID, productID)
	f.sessions.SetTemp(userID, tempOriginal, original)
	f.sessions.SetState(userID, StateProductName)

	logger.SVCAdmin.LogAttrs(ctx, slog.LevelInfo, "product.edit_started",
		slog.String("event", "admin.edit"),
		slog.Int64("user_id", userID),
		slog.Int64("product_id", productID),
	)
	return []Reply{{Text: productSteps[0].prompt, Markup: keyboard.RemoveKeyboard()}}, nil
}

// Handle advances the form with one admin message. Meta inputs ("cancel",
// "back") are resolved before any field validation.
func (f *ProductForm) Handle(ctx context.Context, userID int64, in Input) ([]Reply, error) {
	current := f.sessions.GetState(userID)
	idx := stepIndex(current)
	if idx < 0 {
		return nil, fmt.Errorf("admin: no product form in state %q", current)
	}

	if in.PhotoID == "" {
		switch strings.ToLower(strings.TrimSpace(in.Text)) {
		case "cancel", "/cancel":
			return f.cancel(userID), nil
		case "back", "/back":
			return f.back(ctx, userID, idx)
		}
	}

	switch current {
	case StateProductName:
		return f.handleName(userID, in), nil
	case StateProductDescription:
		return f.handleDescription(ctx, userID, in)
	case StateProductCategory:
		return []Reply{{Text: msgPickButtons}}, nil
	case StateProductPrice:
		return f.handlePrice(ctx, userID, in)
	case StateProductImage:
		return f.handleImage(ctx, userID, in)
	}
	return nil, fmt.Errorf("admin: unhandled form state %q", current)
}

// ChooseCategory consumes the category button tap of the category step.
func (f *ProductForm) ChooseCategory(ctx context.Context, userID, categoryID int64) ([]Reply, error) {
	if f.sessions.GetState(userID) != StateProductCategory {
		return []Reply{{Text: msgPickButtons}}, nil
	}
	categories, err := f.store.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	known := false
	for _, cat := range categories {
		if cat.ID == categoryID {
			known = true
			break
		}
	}
	if !known {
		return []Reply{{Text: msgPickButtons}}, nil
	}
	f.sessions.SetTemp(userID, tempCategoryID, categoryID)
	f.sessions.SetState(userID, StateProductPrice)
	return []Reply{{Text: productSteps[3].prompt}}, nil
}

func (f *ProductForm) cancel(userID int64) []Reply {
	f.reset(userID)
	return []Reply{{Text: msgCancelled, Markup: Keyboard()}}
}

// back moves one step earlier in the fixed step order.
func (f *ProductForm) back(ctx context.Context, userID int64, idx int) ([]Reply, error) {
	if idx == 0 {
		return []Reply{{Text: msgNoPrevStep}}, nil
	}
	prev := productSteps[idx-1]
	f.sessions.SetState(userID, prev.st)
	replies := []Reply{{Text: msgStepBack + prev.again}}
	if prev.st == StateProductCategory {
		markup, err := f.categoryMarkup(ctx)
		if err != nil {
			return nil, err
		}
		replies[0].Markup = markup
	}
	return replies, nil
}

func (f *ProductForm) handleName(userID int64, in Input) []Reply {
	if in.PhotoID != "" || in.Text == "" {
		return []Reply{{Text: "You entered invalid data. Please enter the product name as text."}}
	}
	name := in.Text
	if name == repeatToken {
		original, ok := f.original(userID)
		if ok {
			name = original.Name
		}
	}
	if n := utf8.RuneCountInString(name); n < 5 || n > 150 {
		return []Reply{{Text: "The product name should be between 5 and 150 characters long. Please enter again."}}
	}
	f.sessions.SetTemp(userID, tempName, name)
	f.sessions.SetState(userID, StateProductDescription)
	return []Reply{{Text: productSteps[1].prompt}}
}

func (f *ProductForm) handleDescription(ctx context.Context, userID int64, in Input) ([]Reply, error) {
	if in.PhotoID != "" || in.Text == "" {
		return []Reply{{Text: "You entered invalid data. Please enter the product description as text."}}, nil
	}
	description := in.Text
	if description == repeatToken {
		original, ok := f.original(userID)
		if ok {
			description = original.Description
		}
	}
	if utf8.RuneCountInString(description) < 5 {
		return []Reply{{Text: "Description is too short. Please enter again."}}, nil
	}
	f.sessions.SetTemp(userID, tempDescription, description)
	f.sessions.SetState(userID, StateProductCategory)

	markup, err := f.categoryMarkup(ctx)
	if err != nil {
		return nil, err
	}
	return []Reply{{Text: productSteps[2].prompt, Markup: markup}}, nil
}

func (f *ProductForm) handlePrice(ctx context.Context, userID int64, in Input) ([]Reply, error) {
	text := in.Text
	if text == repeatToken {
		original, ok := f.original(userID)
		if ok {
			f.sessions.SetTemp(userID, tempPrice, original.Price)
			f.sessions.SetState(userID, StateProductImage)
			return []Reply{{Text: productSteps[4].prompt}}, nil
		}
	}
	price, err := decimal.NewFromString(text)
	if err != nil || price.IsNegative() {
		return []Reply{{Text: "Enter a valid price value"}}, nil
	}
	f.sessions.SetTemp(userID, tempPrice, price)
	f.sessions.SetState(userID, StateProductImage)
	return []Reply{{Text: productSteps[4].prompt}}, nil
}

func (f *ProductForm) handleImage(ctx context.Context, userID int64, in Input) ([]Reply, error) {
	image := in.PhotoID
	if image == "" {
		if in.Text == repeatToken {
			if original, ok := f.original(userID); ok {
				image = original.Image
			}
		}
		if image == "" {
			return []Reply{{Text: "Send the product photo"}}, nil
		}
	}
	return f.commit(ctx, userID, image)
}

// commit writes the accumulated form in one storage call. A storage
// failure is reported to the admin and the form is abandoned either way.
func (f *ProductForm) commit(ctx context.Context, userID int64, image string) ([]Reply, error) {
	fields := models.ProductFields{Image: image}
	if v, ok := f.sessions.GetTemp(userID, tempName); ok {
		fields.Name, _ = v.(string)
	}
	if v, ok := f.sessions.GetTemp(userID, tempDescription); ok {
		fields.Description, _ = v.(string)
	}
	if v, ok := f.sessions.GetTempInt64(userID, tempCategoryID); ok {
		fields.CategoryID = v
	}
	if v, ok := f.sessions.GetTemp(userID, tempPrice); ok {
		fields.Price, _ = v.(decimal.Decimal)
	}
	editID, editing := f.sessions.GetTempInt64(userID, tempEditID)
	f.reset(userID)

	var err error
	if editing {
		err = f.store.UpdateProduct(ctx, editID, fields)
	} else {
		_, err = f.store.InsertProduct(ctx, fields)
	}
	if err != nil {
		logger.SVCAdmin.LogAttrs(ctx, slog.LevelError, "product.commit_failed",
			slog.String("event", "admin.commit"),
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		return []Reply{{
			Text:   fmt.Sprintf("Error: \n%s\nPlease contact the developer.", err),
			Markup: Keyboard(),
		}}, nil
	}
	return []Reply{{Text: msgCommitted, Markup: Keyboard()}}, nil
}

func (f *ProductForm) categoryMarkup(ctx context.Context) (*tele.ReplyMarkup, error) {
	categories, err := f.store.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	var row []tele.InlineButton
	for _, cat := range categories {
		row = append(row, tele.InlineButton{
			Text: cat.Name,
			Data: menu.EncodeAdmin("prodcat", cat.ID),
		})
	}
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{row}}, nil
}

func (f *ProductForm) original(userID int64) (models.Product, bool) {
	if _, editing := f.sessions.GetTempInt64(userID, tempEditID); !editing {
		return models.Product{}, false
	}
	v, ok := f.sessions.GetTemp(userID, tempOriginal)
	if !ok {
		return models.Product{}, false
	}
	p, ok := v.(models.Product)
	return p, ok
}

func (f *ProductForm) reset(userID int64) {
	f.sessions.Clear(userID)
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/format"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/state"
	"github.com/m3rciful/shopbot/core/telegram/ui"
	"github.com/m3rciful/shopbot/shop/admin"
	"github.com/m3rciful/shopbot/shop/menu"
	"github.com/m3rciful/shopbot/shop/models"
	"github.com/m3rciful/shopbot/shop/storage"
)

// AdminStore is the repository slice the admin handlers touch directly.
// The form and banner flows carry their own store slices.
type AdminStore interface {
	FetchCategories(ctx context.Context) ([]models.Category, error)
	FetchProducts(ctx context.Context, categoryID int64) ([]models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Admin serves the /admin command, the admin reply keyboard and the
// verb_id callbacks behind the assortment browser.
type Admin struct {
	store    AdminStore
	form     *admin.ProductForm
	banners  *admin.BannerFlow
	sessions state.Manager
	adminID  int64
}

// NewAdmin builds the admin handler set.
func NewAdmin(store AdminStore, form *admin.ProductForm, banners *admin.BannerFlow, sessions state.Manager, adminID int64) *Admin {
	return &Admin{store: store, form: form, banners: banners, sessions: sessions, adminID: adminID}
}

// Command serves /admin: just the persistent reply keyboard.
func (h *Admin) Command(c tele.Context) error {
	return tghelpers.SendText(c, "What would you like to do?", &tele.SendOptions{ReplyMarkup: admin.Keyboard()})
}

// MenuText dispatches the admin reply-keyboard taps. It reports whether
// the update was consumed so unmatched text can fall through to the
// generic fallback.
func (h *Admin) MenuText(c tele.Context) (bool, error) {
	if c.Sender().ID != h.adminID {
		return false, nil
	}
	ctx := tghelpers.BuildContext(c)

	switch c.Text() {
	case admin.BtnAddProduct:
		return true, sendReplies(c, h.form.StartAdd(c.Sender().ID))
	case admin.BtnAssortment:
		return true, h.sendCategoryPicker(c, ctx)
	case admin.BtnChangeBanner:
		replies, err := h.banners.Start(ctx, c.Sender().ID)
		if err != nil {
			return true, err
		}
		return true, sendReplies(c, replies)
	}
	return false, nil
}

func (h *Admin) sendCategoryPicker(c tele.Context, ctx context.Context) error {
	categories, err := h.store.FetchCategories(ctx)
	if err != nil {
		return err
	}
	var row []tele.InlineButton
	for _, cat := range categories {
		row = append(row, tele.InlineButton{
			Text: cat.Name,
			Data: menu.EncodeAdmin("category", cat.ID),
		})
	}
	markup := &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{row}}
	return tghelpers.SendText(c, "Select a category:", &tele.SendOptions{ReplyMarkup: markup})
}

// AssortmentCategory serves "category_<id>": one card per product with
// its management buttons.
func (h *Admin) AssortmentCategory(c tele.Context) error {
	ctx, id, err := h.decodeAdmin(c, "category")
	if err != nil {
		return err
	}
	if ctx == nil {
		return nil
	}

	products, err := h.store.FetchProducts(ctx, id)
	if err != nil {
		return err
	}
	_ = c.Respond()
	for _, p := range products {
		caption := fmt.Sprintf("<strong>%s</strong>\n%s\nPrice: %s",
			format.EscapeHTML(p.Name), format.EscapeHTML(p.Description), p.Price.StringFixed(2))
		markup := &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
			{Text: "Delete", Data: menu.EncodeAdmin("delete", p.ID)},
			{Text: "Modify", Data: menu.EncodeAdmin("change", p.ID)},
		}}}
		if err := c.Send(ui.PhotoFromFileID(p.Image, caption), ui.HTMLOptions(markup)); err != nil {
			return err
		}
	}
	return tghelpers.SendText(c, "Here is the list of products ⏫")
}

// DeleteProduct serves "delete_<id>".
func (h *Admin) DeleteProduct(c tele.Context) error {
	ctx, id, err := h.decodeAdmin(c, "delete")
	if err != nil {
		return err
	}
	if ctx == nil {
		return nil
	}
	if err := h.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "Product deleted"})
	return tghelpers.SendText(c, "Product deleted!")
}

// ChangeProduct serves "change_<id>": opens the form over the product.
func (h *Admin) ChangeProduct(c tele.Context) error {
	ctx, id, err := h.decodeAdmin(c, "change")
	if err != nil {
		return err
	}
	if ctx == nil {
		return nil
	}
	replies, err := h.form.StartEdit(ctx, c.Sender().ID, id)
	if err != nil {
		// Another admin may have deleted the product behind this button.
		if errors.Is(err, storage.ErrNotFound) {
			h.sessions.Clear(c.Sender().ID)
			return c.Respond(&tele.CallbackResponse{Text: "This product no longer exists."})
		}
		return err
	}
	_ = c.Respond()
	return sendReplies(c, replies)
}

// ChooseCategory serves "prodcat_<id>": the category step of the form.
func (h *Admin) ChooseCategory(c tele.Context) error {
	ctx, id, err := h.decodeAdmin(c, "prodcat")
	if err != nil {
		return err
	}
	if ctx == nil {
		return nil
	}
	replies, err := h.form.ChooseCategory(ctx, c.Sender().ID, id)
	if err != nil {
		return err
	}
	_ = c.Respond()
	return sendReplies(c, replies)
}

// decodeAdmin gates and parses a verb_id callback. A nil context return
// means the update was already answered and must be dropped.
func (h *Admin) decodeAdmin(c tele.Context, verb string) (context.Context, int64, error) {
	ctx := tghelpers.BuildContext(c)
	if c.Sender().ID != h.adminID {
		logger.SVCAdmin.LogAttrs(ctx, slog.LevelWarn, "callback.denied",
			slog.String("event", "admin.deny"),
			slog.Int64("user_id", c.Sender().ID),
		)
		return nil, 0, c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	id, err := menu.DecodeAdmin(c.Callback().Data, verb)
	if err != nil {
		logger.SVCAdmin.LogAttrs(ctx, slog.LevelWarn, "callback.rejected",
			slog.String("event", "admin.reject"),
			slog.String("err", err.Error()),
		)
		return nil, 0, c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	return ctx, id, nil
}

// FormInput adapts the current update into a flow input.
func FormInput(c tele.Context) admin.Input {
	in := admin.Input{Text: c.Text()}
	if msg := c.Message(); msg != nil && msg.Photo != nil {
		in.PhotoID = msg.Photo.FileID
		in.Caption = msg.Caption
		in.Text = ""
	}
	return in
}

// RegisterStates binds every conversation state to its flow so the FSM
// manager can dispatch mid-conversation updates.
func (h *Admin) RegisterStates() {
	productStates := []state.State{
		admin.StateProductName,
		admin.StateProductDescription,
		admin.StateProductCategory,
		admin.StateProductPrice,
		admin.StateProductImage,
	}
	for _, st := range productStates {
		state.RegisterHandler(st, func(c tele.Context) error {
			replies, err := h.form.Handle(tghelpers.BuildContext(c), c.Sender().ID, FormInput(c))
			if err != nil {
				return err
			}
			return sendReplies(c, replies)
		})
	}
	state.RegisterHandler(admin.StateBannerImage, func(c tele.Context) error {
		replies, err := h.banners.Handle(tghelpers.BuildContext(c), c.Sender().ID, FormInput(c))
		if err != nil {
			return err
		}
		return sendReplies(c, replies)
	})
}

func sendReplies(c tele.Context, replies []admin.Reply) error {
	for _, r := range replies {
		if err := tghelpers.SendHTML(c, r.Text, r.Markup); err != nil {
			return err
		}
	}
	return nil
}

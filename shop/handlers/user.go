// Package handlers binds the shop flows to telebot endpoints. All domain
// decisions live in the menu, cart and admin packages; handlers only
// translate updates in and replies out.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/ui"
	"github.com/m3rciful/shopbot/shop/menu"
	"github.com/m3rciful/shopbot/shop/models"
	"github.com/m3rciful/shopbot/shop/storage"
)

// UserStore is the repository slice the user handlers touch directly.
type UserStore interface {
	FetchUser(ctx context.Context, userID int64) (models.User, error)
	UpsertUser(ctx context.Context, userID int64, firstName, lastName string, phone *string, referrerID *int64) error
	AddToCart(ctx context.Context, userID, productID int64) error
}

// User serves /start and the whole inline menu.
type User struct {
	store    UserStore
	resolver *menu.Resolver
}

// NewUser builds the user-facing handler set.
func NewUser(store UserStore, resolver *menu.Resolver) *User {
	return &User{store: store, resolver: resolver}
}

// startOutcome is the referral decision of one /start.
type startOutcome struct {
	// ReferrerID is stored with the registration, nil when the payload
	// is absent, malformed, self-pointing, or the user already exists.
	ReferrerID *int64
	// SelfLink marks a payload pointing at the sender itself.
	SelfLink bool
	// Notify is set only when the /start actually registers a new user
	// with a referrer, so replaying a link cannot spam the referrer.
	Notify bool
}

// resolveStart decides how the /start payload is applied for this sender.
func (h *User) resolveStart(ctx context.Context, userID int64, payload string) (startOutcome, error) {
	var out startOutcome
	if p := strings.TrimSpace(payload); p != "" {
		if id, err := strconv.ParseInt(p, 10, 64); err == nil {
			if id == userID {
				out.SelfLink = true
			} else {
				out.ReferrerID = &id
			}
		}
	}

	_, err := h.store.FetchUser(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return startOutcome{}, err
	}
	if known := err == nil; known {
		out.ReferrerID = nil
	} else {
		out.Notify = out.ReferrerID != nil
	}
	return out, nil
}

// Start registers the user and opens the main menu. A numeric /start
// payload is treated as a referral: recorded for new users only, never
// pointing at the user itself.
func (h *User) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	from := c.Sender()

	out, err := h.resolveStart(ctx, from.ID, c.Message().Payload)
	if err != nil {
		return err
	}
	if out.SelfLink {
		_ = tghelpers.SendText(c, "You cant register using your own referral link")
	}

	if err := h.store.UpsertUser(ctx, from.ID, from.FirstName, from.LastName, nil, out.ReferrerID); err != nil {
		return err
	}

	// Best effort: the referrer may have blocked the bot.
	if out.Notify {
		if _, err := c.Bot().Send(&tele.User{ID: *out.ReferrerID}, "Someone registered using your referral link"); err != nil {
			logger.SVCUsers.LogAttrs(ctx, slog.LevelDebug, "referral.notify_failed",
				slog.String("event", "user.referral"),
				slog.Int64("user_id", *out.ReferrerID),
				slog.String("err", err.Error()),
			)
		}
	}

	view, err := h.resolver.Render(ctx, menu.Callback{Level: menu.LevelMain, MenuName: "main"}, from.ID)
	if err != nil {
		return err
	}
	return c.Send(ui.PhotoFromFileID(view.Image, view.Caption), ui.HTMLOptions(view.Markup))
}

// MenuCallback serves every "menu|..." button: decodes the token, applies
// any cart mutation it carries, and edits the message in place.
func (h *User) MenuCallback(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	cb, err := menu.Decode(c.Callback().Data)
	if err != nil {
		return h.rejectCallback(c, ctx, err)
	}

	// Adding to the cart keeps the current screen: just a toast.
	if cb.Level == menu.LevelProduct && cb.MenuName == "add_to_cart" {
		if err := h.store.AddToCart(ctx, userID, cb.ProductID); err != nil {
			return err
		}
		return c.Respond(&tele.CallbackResponse{Text: "Product added to the cart."})
	}

	view, err := h.resolver.Render(ctx, cb, userID)
	if err != nil {
		if errors.Is(err, menu.ErrUnknownMenuLevel) {
			return h.rejectCallback(c, ctx, err)
		}
		if errors.Is(err, storage.ErrNotFound) {
			_ = c.Respond()
			return tghelpers.SendHTML(c, "Sorry, this section is unavailable right now.")
		}
		return err
	}

	_ = c.Respond()
	return c.Edit(ui.PhotoFromFileID(view.Image, view.Caption), ui.HTMLOptions(view.Markup))
}

// rejectCallback answers a token the bot never issued. Logged and
// swallowed: stale or forged buttons must not crash the conversation.
func (h *User) rejectCallback(c tele.Context, ctx context.Context, err error) error {
	logger.SVCMenu.LogAttrs(ctx, slog.LevelWarn, "callback.rejected",
		slog.String("event", "menu.reject"),
		slog.Int64("user_id", c.Sender().ID),
		slog.String("err", err.Error()),
	)
	return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
}

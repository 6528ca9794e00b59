package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/core/telegram/state"
)

// StateBannerImage is the single step of the banner flow: one photo with
// the target page name in its caption.
const StateBannerImage state.State = "banner:image"

// BannerStore is the repository slice the banner flow needs.
type BannerStore interface {
	FetchBannerPages(ctx context.Context) ([]string, error)
	UpdateBannerImage(ctx context.Context, page, imageID string) error
}

// BannerFlow replaces the image of one menu banner.
type BannerFlow struct {
	store    BannerStore
	sessions state.Manager
}

// NewBannerFlow builds a BannerFlow over the shared session manager.
func NewBannerFlow(store BannerStore, sessions state.Manager) *BannerFlow {
	return &BannerFlow{store: store, sessions: sessions}
}

// Active reports whether the user is inside the banner flow.
func (f *BannerFlow) Active(userID int64) bool {
	return f.sessions.GetState(userID) == StateBannerImage
}

// Start opens the flow and lists the page names a banner can target.
func (f *BannerFlow) Start(ctx context.Context, userID int64) ([]Reply, error) {
	pages, err := f.store.FetchBannerPages(ctx)
	if err != nil {
		return nil, err
	}
	f.sessions.Clear(userID)
	f.sessions.SetState(userID, StateBannerImage)
	text := fmt.Sprintf(
		"Send the banner photo.\nSpecify the page for which it's intended:\n%s",
		strings.Join(pages, ", "),
	)
	return []Reply{{Text: text, Markup: keyboard.RemoveKeyboard()}}, nil
}

// Handle consumes one admin message of the flow. The photo caption names
// the target page and must match a known page exactly, case included.
func (f *BannerFlow) Handle(ctx context.Context, userID int64, in Input) ([]Reply, error) {
	if in.PhotoID == "" {
		switch strings.ToLower(strings.TrimSpace(in.Text)) {
		case "cancel", "/cancel":
			f.sessions.Clear(userID)
			return []Reply{{Text: msgCancelled, Markup: Keyboard()}}, nil
		}
		return []Reply{{Text: "Send the banner photo or cancel."}}, nil
	}

	pages, err := f.store.FetchBannerPages(ctx)
	if err != nil {
		return nil, err
	}
	page := strings.TrimSpace(in.Caption)
	known := false
	for _, p := range pages {
		if p == page {
			known = true
			break
		}
	}
	if !known {
		text := fmt.Sprintf("Please enter a valid page name, for example:\n%s", strings.Join(pages, ", "))
		return []Reply{{Text: text}}, nil
	}

	f.sessions.Clear(userID)
	if err := f.store.UpdateBannerImage(ctx, page, in.PhotoID); err != nil {
		logger.SVCAdmin.LogAttrs(ctx, slog.LevelError, "banner.commit_failed",
			slog.String("event", "admin.banner"),
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		return []Reply{{
			Text:   fmt.Sprintf("Error: \n%s\nPlease contact the developer.", err),
			Markup: Keyboard(),
		}}, nil
	}
	return []Reply{{Text: "The banner has been added/changed.", Markup: Keyboard()}}, nil
}

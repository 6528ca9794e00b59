package telegram

import (
	"testing"

	"github.com/m3rciful/shopbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noopHandler(tele.Context) error { return nil }

func TestListCommandsFiltersMenuEntries(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     noopHandler,
		Description: "Open the shop",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     noopHandler,
		Description: "Admin menu",
		AdminOnly:   true,
		Hidden:      true,
	})

	visible := reg.ListCommands(true)
	if len(visible) != 1 {
		t.Fatalf("visible commands: got %d, want 1", len(visible))
	}
	if visible[0].Text != "/start" {
		t.Fatalf("visible command: got %q, want /start", visible[0].Text)
	}

	all := reg.ListCommands(false)
	if len(all) != 2 {
		t.Fatalf("all commands: got %d, want 2", len(all))
	}
}

func TestGetCallbackExactWinsOverPrefix(t *testing.T) {
	reg := NewRegistry()
	var hit string
	if err := reg.RegisterCallback("menu", func(tele.Context) error {
		hit = "exact"
		return nil
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}
	if err := reg.RegisterCallbackPrefix("menu", func(tele.Context) error {
		hit = "prefix"
		return nil
	}); err != nil {
		t.Fatalf("register prefix: %v", err)
	}

	h, ok := reg.GetCallback("menu")
	if !ok {
		t.Fatal("expected a handler for key menu")
	}
	_ = h(nil)
	if hit != "exact" {
		t.Fatalf("dispatched handler: got %q, want exact", hit)
	}

	if _, ok := reg.GetCallback("delete_42"); ok {
		t.Fatal("unexpected handler for unregistered key")
	}
}

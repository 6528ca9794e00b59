package handlers

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/ui"
)

// Fallbacks answers updates nothing else claimed.
type Fallbacks struct{}

var _ ui.FallbackProvider = Fallbacks{}

// UnknownText nudges the user back into the menu.
func (Fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, "I don't understand. Send /start to open the shop.")
	}
}

// UnknownPhoto ignores photos outside a conversation that expects one.
func (Fallbacks) UnknownPhoto() tele.HandlerFunc {
	return func(c tele.Context) error {
		return nil
	}
}

// UnknownCallback answers buttons from messages the bot no longer owns.
func (Fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
}

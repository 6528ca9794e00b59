package admin

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/telegram/keyboard"
)

// Texts of the admin reply keyboard. The text router dispatches on them
// verbatim, so the constants are shared with the handlers.
const (
	BtnAddProduct   = "Add Product"
	BtnAssortment   = "Assortment"
	BtnChangeBanner = "Add/Change Banner"
)

// Keyboard returns the persistent admin reply keyboard.
func Keyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{BtnAddProduct, BtnAssortment},
		[]string{BtnChangeBanner},
	)
}

package menu

import (
	"github.com/m3rciful/shopbot/shop/models"

	tele "gopkg.in/telebot.v4"
)

func menuBtn(label string, cb Callback) tele.InlineButton {
	return tele.InlineButton{Text: label, Data: Encode(cb)}
}

func adminBtn(label, verb string, id int64) tele.InlineButton {
	return tele.InlineButton{Text: label, Data: EncodeAdmin(verb, id)}
}

func markupOf(rows ...[]tele.InlineButton) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

func mainMenuMarkup() *tele.ReplyMarkup {
	return markupOf(
		[]tele.InlineButton{
			menuBtn("🛍 Catalog", Callback{Level: LevelCatalog, MenuName: "catalog"}),
		},
		[]tele.InlineButton{
			menuBtn("🛒 Cart", Callback{Level: LevelCart, MenuName: "cart", Page: 1}),
			menuBtn("👤 Profile", Callback{Level: LevelProfile, MenuName: "profile"}),
		},
		[]tele.InlineButton{
			menuBtn("ℹ️ About us", Callback{Level: LevelMain, MenuName: "about"}),
		},
	)
}

func catalogMarkup(categories []models.Category) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton
	for _, cat := range categories {
		rows = append(rows, []tele.InlineButton{
			menuBtn(cat.Name, Callback{
				Level:    LevelProduct,
				MenuName: "category",
				Category: cat.ID,
				Page:     1,
			}),
		})
	}
	rows = append(rows, []tele.InlineButton{
		menuBtn("⬅️ Back", Callback{Level: LevelMain, MenuName: "main"}),
		menuBtn("🛒 Cart", Callback{Level: LevelCart, MenuName: "cart", Page: 1}),
	})
	return markupOf(rows...)
}

func productMarkup(categoryID int64, page int, productID int64, hasPrev, hasNext, isAdmin bool) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton

	if isAdmin {
		rows = append(rows, []tele.InlineButton{
			adminBtn("Delete", "delete", productID),
			adminBtn("Modify", "change", productID),
		})
	}

	rows = append(rows, []tele.InlineButton{
		menuBtn("🛒 Add to cart", Callback{
			Level:     LevelProduct,
			MenuName:  "add_to_cart",
			Category:  categoryID,
			Page:      page,
			ProductID: productID,
		}),
	})

	var nav []tele.InlineButton
	if hasPrev {
		nav = append(nav, menuBtn("◀ Prev.", Callback{
			Level:    LevelProduct,
			MenuName: "previous",
			Category: categoryID,
			Page:     page - 1,
		}))
	}
	if hasNext {
		nav = append(nav, menuBtn("Next. ▶", Callback{
			Level:    LevelProduct,
			MenuName: "next",
			Category: categoryID,
			Page:     page + 1,
		}))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, []tele.InlineButton{
		menuBtn("⬅️ Back", Callback{Level: LevelCatalog, MenuName: "catalog"}),
		menuBtn("🛒 Cart", Callback{Level: LevelCart, MenuName: "cart", Page: 1}),
	})
	return markupOf(rows...)
}

func cartMarkup(page int, productID int64, hasPrev, hasNext bool) *tele.ReplyMarkup {
	rows := [][]tele.InlineButton{
		{
			menuBtn("❌ Delete", Callback{Level: LevelCart, MenuName: "delete", Page: page, ProductID: productID}),
			menuBtn("➖ 1", Callback{Level: LevelCart, MenuName: "decrement", Page: page, ProductID: productID}),
			menuBtn("➕ 1", Callback{Level: LevelCart, MenuName: "increment", Page: page, ProductID: productID}),
		},
	}

	var nav []tele.InlineButton
	if hasPrev {
		nav = append(nav, menuBtn("◀ Prev.", Callback{Level: LevelCart, MenuName: "previous", Page: page - 1}))
	}
	if hasNext {
		nav = append(nav, menuBtn("Next. ▶", Callback{Level: LevelCart, MenuName: "next", Page: page + 1}))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, []tele.InlineButton{
		menuBtn("🏠 Main menu", Callback{Level: LevelMain, MenuName: "main"}),
	})
	return markupOf(rows...)
}

func emptyCartMarkup() *tele.ReplyMarkup {
	return markupOf([]tele.InlineButton{
		menuBtn("🏠 Main menu", Callback{Level: LevelMain, MenuName: "main"}),
	})
}

func profileMarkup() *tele.ReplyMarkup {
	return markupOf([]tele.InlineButton{
		menuBtn("🏠 Main menu", Callback{Level: LevelMain, MenuName: "main"}),
	})
}

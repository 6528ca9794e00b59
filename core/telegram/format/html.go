// Package format holds text helpers for messages rendered with a
// Telegram parse mode.
package format

import "strings"

// Telegram HTML mode only treats &, < and > as markup.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes user-provided text interpolated into an HTML-mode
// message so it cannot terminate or open tags.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

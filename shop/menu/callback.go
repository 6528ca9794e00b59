package menu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedToken reports callback data that does not belong to the
// token family it was decoded with. Menu tokens and admin verb_id tokens
// ("delete_42") must never parse through each other's codec.
var ErrMalformedToken = errors.New("menu: malformed callback token")

// TokenPrefix is the literal discriminator of the menu token family. It
// doubles as the registry key the callback router dispatches on.
const TokenPrefix = "menu"

const fieldSep = ":"

// Level selects one of the five top-level views.
type Level int

const (
	LevelMain Level = iota
	LevelCatalog
	LevelProduct
	LevelCart
	LevelProfile

	levelCount
)

// Callback is the decoded form of a menu button token.
type Callback struct {
	Level     Level
	MenuName  string
	Category  int64
	Page      int
	ProductID int64
}

// Encode renders the full wire token: "menu|<level>:<name>:<cat>:<page>:<prod>".
func Encode(cb Callback) string {
	payload := strings.Join([]string{
		strconv.Itoa(int(cb.Level)),
		cb.MenuName,
		strconv.FormatInt(cb.Category, 10),
		strconv.Itoa(cb.Page),
		strconv.FormatInt(cb.ProductID, 10),
	}, fieldSep)
	return TokenPrefix + "|" + payload
}

// Decode parses a wire token produced by Encode. Telebot's "\f" framing
// prefix is tolerated. Anything without the menu prefix or with a wrong
// field shape fails with ErrMalformedToken.
func Decode(token string) (Callback, error) {
	raw := strings.TrimPrefix(token, "\\f")
	prefix, payload, ok := strings.Cut(raw, "|")
	if !ok || prefix != TokenPrefix {
		return Callback{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}
	parts := strings.Split(payload, fieldSep)
	if len(parts) != 5 {
		return Callback{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}

	level, err := strconv.Atoi(parts[0])
	if err != nil {
		return Callback{}, fmt.Errorf("%w: bad level in %q", ErrMalformedToken, token)
	}
	category, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Callback{}, fmt.Errorf("%w: bad category in %q", ErrMalformedToken, token)
	}
	page, err := strconv.Atoi(parts[3])
	if err != nil {
		return Callback{}, fmt.Errorf("%w: bad page in %q", ErrMalformedToken, token)
	}
	productID, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return Callback{}, fmt.Errorf("%w: bad product id in %q", ErrMalformedToken, token)
	}

	return Callback{
		Level:     Level(level),
		MenuName:  parts[1],
		Category:  category,
		Page:      page,
		ProductID: productID,
	}, nil
}

// EncodeAdmin renders a verb_id token of the admin family, e.g. "delete_42".
func EncodeAdmin(verb string, id int64) string {
	return verb + "_" + strconv.FormatInt(id, 10)
}

// DecodeAdmin extracts the id from a verb_id token, requiring the exact
// verb. Menu-family tokens fail with ErrMalformedToken.
func DecodeAdmin(token, verb string) (int64, error) {
	raw := strings.TrimPrefix(token, "\\f")
	rest, found := strings.CutPrefix(raw, verb+"_")
	if !found || strings.Contains(raw, "|") {
		return 0, fmt.Errorf("%w: %q is not a %s token", ErrMalformedToken, token, verb)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id in %q", ErrMalformedToken, token)
	}
	return id, nil
}

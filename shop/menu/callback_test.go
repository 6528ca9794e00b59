package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuTokenRoundTrip(t *testing.T) {
	cases := []Callback{
		{Level: LevelMain, MenuName: "main"},
		{Level: LevelCatalog, MenuName: "catalog"},
		{Level: LevelProduct, MenuName: "category", Category: 3, Page: 1},
		{Level: LevelProduct, MenuName: "next", Category: 3, Page: 7, ProductID: 0},
		{Level: LevelCart, MenuName: "delete", Page: 2, ProductID: 42},
		{Level: LevelCart, MenuName: "increment", Page: 1, ProductID: 99},
		{Level: LevelProfile, MenuName: "profile"},
	}

	for _, want := range cases {
		got, err := Decode(Encode(want))
		require.NoError(t, err, "token %s", Encode(want))
		assert.Equal(t, want, got)
	}
}

func TestDecodeToleratesTelebotFraming(t *testing.T) {
	want := Callback{Level: LevelCart, MenuName: "cart", Page: 2, ProductID: 5}
	got, err := Decode("\\f" + Encode(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeRejectsAdminFamily(t *testing.T) {
	for _, token := range []string{"delete_42", "change_42", "category_7", "prodcat_3"} {
		_, err := Decode(token)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %s", token)
	}
}

func TestDecodeRejectsWrongShape(t *testing.T) {
	for _, token := range []string{
		"",
		"menu|",
		"menu|0:main",
		"menu|x:main:0:1:0",
		"menu|0:main:a:1:0",
		"menu|0:main:0:b:0",
		"menu|0:main:0:1:c",
		"other|0:main:0:1:0",
	} {
		_, err := Decode(token)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", token)
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	token := EncodeAdmin("delete", 42)
	assert.Equal(t, "delete_42", token)

	id, err := DecodeAdmin(token, "delete")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestDecodeAdminRejectsMenuFamily(t *testing.T) {
	token := Encode(Callback{Level: LevelMain, MenuName: "main"})
	_, err := DecodeAdmin(token, "delete")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestDecodeAdminRejectsWrongVerb(t *testing.T) {
	_, err := DecodeAdmin("change_42", "delete")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = DecodeAdmin("delete_xyz", "delete")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

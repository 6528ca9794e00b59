package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateBounds(t *testing.T) {
	items := []string{"a", "b", "c"}

	for index := 1; index <= len(items); index++ {
		page, err := Paginate(items, index)
		require.NoError(t, err)
		assert.Equal(t, items[index-1], page.Item)
		assert.Equal(t, index, page.Index)
		assert.Equal(t, len(items), page.Total)
		assert.Equal(t, index > 1, page.HasPrev)
		assert.Equal(t, index < len(items), page.HasNext)
	}
}

func TestPaginateOutOfRange(t *testing.T) {
	items := []int{10, 20}

	for _, index := range []int{0, -1, 3, 100} {
		_, err := Paginate(items, index)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", index)
	}
}

func TestPaginateEmptyIsAlwaysOutOfRange(t *testing.T) {
	_, err := Paginate([]int(nil), 1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPaginateSingleItem(t *testing.T) {
	page, err := Paginate([]string{"only"}, 1)
	require.NoError(t, err)
	assert.False(t, page.HasPrev)
	assert.False(t, page.HasNext)
	assert.Equal(t, 1, page.Total)
}

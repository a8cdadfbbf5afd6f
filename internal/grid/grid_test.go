// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate(t *testing.T) {
	items := seq(50)

	tests := []struct {
		name       string
		page, size int
		wantStart  int
		wantEnd    int
		wantPages  int
		wantPage   int
	}{
		{"first page", 1, 12, 0, 12, 5, 1},
		{"last partial page", 5, 12, 48, 50, 5, 5},
		{"middle page", 3, 12, 24, 36, 5, 3},
		{"page below one", 0, 12, 0, 12, 5, 1},
		{"default size", 1, 0, 0, 12, 5, 1},
		{"past the end", 9, 12, 50, 50, 5, 9},
		{"single page", 1, 100, 0, 50, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Paginate(items, tt.page, tt.size)
			assert.Equal(t, tt.wantStart, w.StartIndex)
			assert.Equal(t, tt.wantEnd, w.EndIndex)
			assert.Equal(t, tt.wantPages, w.TotalPages)
			assert.Equal(t, tt.wantPage, w.Page)
			assert.Equal(t, items[tt.wantStart:tt.wantEnd], w.Items)
			assert.Equal(t, 50, w.Total)
		})
	}
}

func TestPaginateLastPageHasTwoItems(t *testing.T) {
	w := Paginate(seq(50), 5, 12)

	assert.Equal(t, []int{48, 49}, w.Items)
	assert.Equal(t, 2, w.Len())
	assert.True(t, w.HasPrev())
	assert.False(t, w.HasNext())
}

func TestPaginateEmpty(t *testing.T) {
	w := Paginate([]string{}, 1, 12)

	assert.Empty(t, w.Items)
	assert.Equal(t, 0, w.TotalPages)
	assert.Equal(t, 0, w.StartIndex)
	assert.Equal(t, 0, w.EndIndex)
	assert.False(t, w.HasNext())
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 5))
	assert.Equal(t, 5, ClampPage(7, 5))
	assert.Equal(t, 3, ClampPage(3, 5))
	assert.Equal(t, 1, ClampPage(4, 0))
}

func TestPageNumbers(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, Paginate(seq(30), 1, 12).PageNumbers(5))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 9}, Paginate(seq(100), 2, 12).PageNumbers(5))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, Paginate(seq(100), 8, 12).PageNumbers(5))
}

func TestServerWindow(t *testing.T) {
	w := ServerWindow([]int{20, 21, 22}, 3, 10, 23)

	assert.Equal(t, 20, w.StartIndex)
	assert.Equal(t, 23, w.EndIndex)
	assert.Equal(t, 3, w.TotalPages)
	assert.Equal(t, 3, w.Len())
	assert.False(t, w.HasNext())

	empty := ServerWindow([]int(nil), 0, 0, 0)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, DefaultPageSize, empty.PageSize)
	assert.Equal(t, 0, empty.Len())
}

func TestPaginateHugePage(t *testing.T) {
	for _, page := range []int{math.MaxInt / 6, math.MaxInt / 12, math.MaxInt} {
		w := Paginate(seq(50), page, 12)
		assert.Equal(t, 50, w.StartIndex, "page %d", page)
		assert.Equal(t, 50, w.EndIndex, "page %d", page)
		assert.Empty(t, w.Items)
		assert.Equal(t, 5, w.TotalPages)
	}

	w := Paginate(seq(50), 1, math.MaxInt)
	assert.Equal(t, 0, w.StartIndex)
	assert.Equal(t, 50, w.EndIndex)
	assert.Equal(t, 1, w.TotalPages)
}

func TestServerWindowHugePage(t *testing.T) {
	w := ServerWindow([]int(nil), math.MaxInt/6, 10, 23)
	assert.Equal(t, 23, w.StartIndex)
	assert.Equal(t, 23, w.EndIndex)
	assert.Equal(t, 0, w.Len())
}

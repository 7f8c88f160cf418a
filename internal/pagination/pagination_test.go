package pagination_test

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/ovsidee/UniversityApp/internal/pagination"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"Empty", 0, 1},
		{"One", 1, 1},
		{"ExactlyFull", 5, 1},
		{"Overflow", 6, 2},
		{"Many", 23, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pagination.TotalPages(tt.count, pagination.PageSize))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, pagination.Clamp(0))
	assert.Equal(t, 1, pagination.Clamp(-4))
	assert.Equal(t, 7, pagination.Clamp(7))
}

func TestNewPage(t *testing.T) {
	t.Run("BeyondLastPage", func(t *testing.T) {
		page := pagination.NewPage[int](nil, 9, 6)

		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
		assert.Equal(t, 9, page.Meta.CurrentPage)
		assert.Equal(t, 2, page.Meta.TotalPages)
	})

	t.Run("NegativePage", func(t *testing.T) {
		page := pagination.NewPage([]int{1, 2}, -1, 2)

		assert.Equal(t, 1, page.Meta.CurrentPage)
		assert.Equal(t, 1, page.Meta.TotalPages)
	})
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"?page=3", 3},
		{"?page=0", 1},
		{"?page=-2", 1},
		{"?page=abc", 1},
		{"?page=9223372036854775807", math.MaxInt},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/courses"+tt.query, nil)
		assert.Equal(t, tt.want, pagination.ParsePage(r), tt.query)
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, pagination.Offset(1, 5))
	assert.Equal(t, 0, pagination.Offset(0, 5))
	assert.Equal(t, 10, pagination.Offset(3, 5))

	t.Run("HugePageSaturates", func(t *testing.T) {
		assert.Equal(t, math.MaxInt, pagination.Offset(math.MaxInt, 5))
		assert.Equal(t, math.MaxInt, pagination.Offset(math.MaxInt/5+2, 5))
		assert.Equal(t, (math.MaxInt/5)*5, pagination.Offset(math.MaxInt/5+1, 5))
	})
}

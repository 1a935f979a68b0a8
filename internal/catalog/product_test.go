package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		pageSize int
		want     int
	}{
		{"empty result", 0, 9, 0},
		{"single partial page", 3, 9, 1},
		{"exact multiple", 18, 9, 2},
		{"one over", 19, 9, 3},
		{"original default", 100, 9, 12},
		{"zero page size", 10, 0, 0},
		{"negative total", -1, 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.total, tt.pageSize))
		})
	}
}

func TestProduct_Thumbnail(t *testing.T) {
	assert.Equal(t, "", Product{}.Thumbnail())
	assert.Equal(t, "a.png", Product{Images: []string{"a.png", "b.png"}}.Thumbnail())
}

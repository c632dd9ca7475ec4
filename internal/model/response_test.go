package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageOffset(t *testing.T) {
	tests := []struct {
		name   string
		page   int
		limit  int
		want   int64
		wantOK bool
	}{
		{name: "first page", page: 1, limit: 20, want: 0, wantOK: true},
		{name: "third page", page: 3, limit: 20, want: 40, wantOK: true},
		{name: "non-positive page", page: 0, limit: 20, want: 0, wantOK: true},
		{name: "overflow", page: math.MaxInt64 / 10, limit: 100, wantOK: false},
		{name: "largest page", page: math.MaxInt64/100 + 1, limit: 100, want: (math.MaxInt64 / 100) * 100, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PageOffset(tt.page, tt.limit)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

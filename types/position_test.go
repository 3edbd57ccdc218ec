package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		want int
	}{
		{"same", Position{3, 4}, Position{3, 4}, 0},
		{"earlier line", Position{1, 9}, Position{2, 0}, -1},
		{"later line", Position{5, 0}, Position{2, 30}, 1},
		{"same line earlier column", Position{2, 1}, Position{2, 3}, -1},
		{"same line later column", Position{2, 7}, Position{2, 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
			assert.Equal(t, -tt.want, tt.b.Compare(tt.a), "compare must be antisymmetric")
		})
	}
}

func TestPositionPredicates(t *testing.T) {
	a := Position{Line: 1, Column: 2}
	b := Position{Line: 1, Column: 5}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
	assert.True(t, a.Equal(Position{Line: 1, Column: 2}))
	assert.False(t, a.Equal(b))
	assert.False(t, a.AfterOrEqual(b))
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "1:1", Position{}.String())
	assert.Equal(t, "10:4", Position{Line: 9, Column: 3}.String())
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: Position{Line: 10}, End: Position{Line: 20, Column: 5}}

	assert.True(t, r.Contains(Position{Line: 10}), "start is inclusive")
	assert.True(t, r.Contains(Position{Line: 20, Column: 5}), "end is inclusive")
	assert.True(t, r.Contains(Position{Line: 15, Column: 80}))
	assert.False(t, r.Contains(Position{Line: 9, Column: 99}))
	assert.False(t, r.Contains(Position{Line: 20, Column: 6}))
}

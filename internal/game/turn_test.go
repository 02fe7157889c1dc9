package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocalTurn(t *testing.T) {
	tests := []struct {
		moves        string
		localIsWhite bool
		want         bool
	}{
		{"", true, true},
		{"", false, false},
		{"e2e4", true, false},
		{"e2e4", false, true},
		{"e2e4 e7e5", false, false},
		{"e2e4 e7e5", true, true},
		{"  e2e4   e7e5  g1f3 ", false, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsLocalTurn(tt.moves, tt.localIsWhite), "moves=%q white=%v", tt.moves, tt.localIsWhite)
	}
}

func TestMoveCount(t *testing.T) {
	assert.Equal(t, 0, MoveCount(""))
	assert.Equal(t, 0, MoveCount("   "))
	assert.Equal(t, 3, MoveCount("e2e4 e7e5 g1f3"))
}

package collider2d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestFloorDivHandlesNegatives(t *testing.T) {
	require.Equal(t, int32(-1), floorDiv32(-0.5, 1))
	require.Equal(t, int32(0), floorDiv32(0, 1))
	require.Equal(t, int32(-2), floorDiv32(-2, 1))
}

func TestGridInsertCoversEveryCellInRange(t *testing.T) {
	g := newGrid(1)
	g.insert(0, mgl32.Vec2{-0.5, -0.5}, mgl32.Vec2{0.5, 0.5})
	require.Equal(t, 4, g.len())
	for _, k := range []cellKey{{-1, -1}, {0, -1}, {-1, 0}, {0, 0}} {
		list, ok := g.get(k)
		require.True(t, ok)
		require.Contains(t, list, 0)
	}
}

func TestGridClearResetsCells(t *testing.T) {
	g := newGrid(1)
	g.insert(0, mgl32.Vec2{0, 0}, mgl32.Vec2{0, 0})
	require.Equal(t, 1, g.len())
	g.clear(1)
	require.Equal(t, 0, g.len())
}

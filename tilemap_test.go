package collider2d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func tileMask() LayerMask    { return LayerMask{Layer: 2, CollidesWith: 1} }
func probeMask() LayerMask   { return LayerMask{Layer: 1, CollidesWith: 2} }

func TestTileRaycastBasic(t *testing.T) {
	w := NewWorld(testConfig())
	w.AttachTilemap(TileMapDesc{
		Origin: mgl32.Vec2{0, 0}, CellSize: 1, Width: 3, Height: 1,
		Solids: []byte{0, 1, 0}, Mask: tileMask(), UserKey: 77, HasKey: true,
	})
	hit, ok := w.RaycastAll(mgl32.Vec2{-0.5, 0.5}, mgl32.Vec2{1, 0}, probeMask(), 10)
	require.True(t, ok)
	require.Equal(t, BodyRefTile, hit.Body.Kind)
	require.Equal(t, int32(1), hit.Body.Tile.CX)
}

func TestQueryAABBAllFindsTile(t *testing.T) {
	w := NewWorld(testConfig())
	w.AttachTilemap(TileMapDesc{
		Origin: mgl32.Vec2{0, 0}, CellSize: 1, Width: 3, Height: 1,
		Solids: []byte{0, 1, 0}, Mask: tileMask(),
	})
	res := w.QueryAABBAll(mgl32.Vec2{1, 0.5}, mgl32.Vec2{0.6, 0.6}, probeMask())
	found := false
	for _, h := range res {
		if h.Body.Kind == BodyRefTile && h.Body.Tile.CX == 1 {
			found = true
		}
	}
	require.True(t, found)
}

func TestSweepAABBTilesBasic(t *testing.T) {
	w := NewWorld(testConfig())
	solids := []byte{0, 1, 0, 0, 1, 0, 0, 1, 0}
	w.AttachTilemap(TileMapDesc{
		Origin: mgl32.Vec2{0, 0}, CellSize: 1, Width: 3, Height: 3,
		Solids: solids, Mask: tileMask(),
	})
	start := mgl32.Vec2{0.2, 1.5}
	he := mgl32.Vec2{0.3, 0.3}
	vel := mgl32.Vec2{2, 0}
	_, hit, _, _, ok := w.SweepAABBTiles(start, he, vel, probeMask())
	require.True(t, ok)
	require.Greater(t, hit.Toi, float32(0))
	require.LessOrEqual(t, hit.Toi, float32(1))
	require.Less(t, hit.Normal[0], float32(-0.5))
	require.True(t, hit.Hint.HasSafePos)
}

func TestTileRaycastMonotonicity(t *testing.T) {
	w := NewWorld(testConfig())
	w.AttachTilemap(TileMapDesc{
		Origin: mgl32.Vec2{0, 0}, CellSize: 1, Width: 3, Height: 1,
		Solids: []byte{0, 1, 0}, Mask: tileMask(),
	})
	origin := mgl32.Vec2{0.1, 0.5}
	dir := mgl32.Vec2{1, 0}
	mask := probeMask()

	_, _, _, _, ok1 := w.RaycastTiles(origin, dir, 0.8, mask)
	require.False(t, ok1)

	_, hit2, _, _, ok2 := w.RaycastTiles(origin, dir, 10, mask)
	require.True(t, ok2)
	require.Greater(t, hit2.Toi, float32(0.8))

	_, hit3, _, _, ok3 := w.RaycastTiles(origin, dir, hit2.Toi, mask)
	require.True(t, ok3)
	require.InDelta(t, hit2.Toi, hit3.Toi, 1e-5)
}

func TestSafePosNoOverlapAfterSweep(t *testing.T) {
	w := NewWorld(testConfig())
	solids := []byte{0, 1, 0, 0, 1, 0, 0, 1, 0}
	w.AttachTilemap(TileMapDesc{
		Origin: mgl32.Vec2{0, 0}, CellSize: 1, Width: 3, Height: 3,
		Solids: solids, Mask: tileMask(),
	})
	start := mgl32.Vec2{0.2, 1.5}
	he := mgl32.Vec2{0.4, 0.4}
	vel := mgl32.Vec2{3, 0}
	mask := probeMask()
	_, hit, _, _, ok := w.SweepAABBTiles(start, he, vel, mask)
	require.True(t, ok)
	require.True(t, hit.Hint.HasSafePos)

	hits := w.QueryAABBAll(hit.Hint.SafePos, he, mask)
	for _, h := range hits {
		require.NotEqual(t, BodyRefTile, h.Body.Kind)
	}
}

func TestCircleSweepMinkowskiEquivalence(t *testing.T) {
	w := NewWorld(testConfig())
	width, height := int32(16), int32(16)
	solids := make([]byte, width*height)
	for y := int32(0); y < height; y++ {
		solids[y*width+5] = 1
	}
	w.AttachTilemap(TileMapDesc{
		Origin: mgl32.Vec2{0, 0}, CellSize: 1, Width: width, Height: height,
		Solids: solids, Mask: tileMask(),
	})
	mask := probeMask()
	c := mgl32.Vec2{1.5, 3.5}
	r := float32(0.4)
	vel := mgl32.Vec2{6, 0}

	_, hitAABB, _, _, okA := w.SweepAABBTiles(c, mgl32.Vec2{r, r}, vel, mask)
	_, hitCircle, _, _, okC := w.SweepCircleTiles(c, r, vel, mask)
	require.True(t, okA)
	require.True(t, okC)
	require.InDelta(t, hitAABB.Toi, hitCircle.Toi, 5e-3)

	dn := hitAABB.Normal.Sub(hitCircle.Normal)
	require.Less(t, sqrt32(dn.Dot(dn)), float32(1e-3))
}

func TestUpdateTilesOverwritesPatch(t *testing.T) {
	w := NewWorld(testConfig())
	ref := w.AttachTilemap(TileMapDesc{
		Origin: mgl32.Vec2{0, 0}, CellSize: 1, Width: 3, Height: 1,
		Solids: []byte{0, 0, 0}, Mask: tileMask(),
	})
	w.UpdateTiles(ref, 1, 0, 1, 1, []byte{1})
	found := false
	for _, h := range w.QueryAABBAll(mgl32.Vec2{1.5, 0.5}, mgl32.Vec2{0.4, 0.4}, probeMask()) {
		if h.Body.Kind == BodyRefTile {
			found = true
		}
	}
	require.True(t, found)
}

func TestUpdateTilesLengthMismatchPanics(t *testing.T) {
	w := NewWorld(testConfig())
	ref := w.AttachTilemap(TileMapDesc{
		Origin: mgl32.Vec2{0, 0}, CellSize: 1, Width: 3, Height: 1,
		Solids: []byte{0, 0, 0}, Mask: tileMask(),
	})
	require.Panics(t, func() {
		w.UpdateTiles(ref, 0, 0, 2, 1, []byte{1})
	})
}

func TestDetachTilemapRenumbersHandles(t *testing.T) {
	w := NewWorld(testConfig())
	first := w.AttachTilemap(TileMapDesc{
		Origin: mgl32.Vec2{0, 0}, CellSize: 1, Width: 1, Height: 1,
		Solids: []byte{0}, Mask: tileMask(),
	})
	w.AttachTilemap(TileMapDesc{
		Origin: mgl32.Vec2{10, 10}, CellSize: 1, Width: 1, Height: 1,
		Solids: []byte{1}, Mask: tileMask(), UserKey: 5, HasKey: true,
	})
	w.DetachTilemap(first)
	require.Equal(t, 1, len(w.tilemaps.maps))
	// the formerly-second map has slid down into slot 0 after compaction.
	require.Equal(t, uint64(5), w.tilemaps.maps[0].UserKey)
}

package collider2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// cellKey is an integer grid coordinate, floor-divided by cell size.
type cellKey struct {
	X, Y int32
}

// grid is the ephemeral per-frame uniform hash grid. Unlike the
// teacher's power-of-two hash-bucket SpatialGrid, cells are keyed
// directly by integer coordinate in a plain map: the spec requires an
// exact cell count per entry (see grid coverage invariant), which a
// hashed bucket array can silently violate by colliding distinct
// cells into the same slot.
type grid struct {
	cellSize float32
	cells    map[cellKey][]int
}

func newGrid(cellSize float32) *grid {
	if cellSize < 1e-5 {
		cellSize = 1e-5
	}
	return &grid{cellSize: cellSize, cells: make(map[cellKey][]int)}
}

func (g *grid) clear(cellSize float32) {
	if cellSize < 1e-5 {
		cellSize = 1e-5
	}
	g.cellSize = cellSize
	if len(g.cells) > 0 {
		g.cells = make(map[cellKey][]int)
	}
}

func worldToCell(p mgl32.Vec2, cellSize float32) cellKey {
	return cellKey{
		X: floorDiv32(p[0], cellSize),
		Y: floorDiv32(p[1], cellSize),
	}
}

func floorDiv32(v, cellSize float32) int32 {
	return int32(math.Floor(float64(v / cellSize)))
}

// insert adds entry idx to every cell covered by the inclusive
// [min, max] box.
func (g *grid) insert(idx int, min, max mgl32.Vec2) {
	lo := worldToCell(min, g.cellSize)
	hi := worldToCell(max, g.cellSize)
	for iy := lo.Y; iy <= hi.Y; iy++ {
		for ix := lo.X; ix <= hi.X; ix++ {
			k := cellKey{ix, iy}
			g.cells[k] = append(g.cells[k], idx)
		}
	}
}

func (g *grid) get(k cellKey) ([]int, bool) {
	v, ok := g.cells[k]
	return v, ok
}

func (g *grid) len() int {
	return len(g.cells)
}

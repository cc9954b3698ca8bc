// Command raycast-demo fires a handful of rays through a small static
// tilemap plus one circle collider, printing the closest hit for each — a
// minimal illustration of RaycastAll and the QueryAABBAll merge.
package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixelguild/collider2d"
)

func buildWall(width, height int32) []byte {
	solids := make([]byte, width*height)
	for y := int32(0); y < height; y++ {
		solids[y*width+10] = 1
	}
	return solids
}

func main() {
	cfg := collider2d.DefaultWorldConfig()
	world := collider2d.NewWorld(cfg)

	const width, height = 20, 20
	tileMask := collider2d.LayerMask{Layer: 2, CollidesWith: 1}
	world.AttachTilemap(collider2d.TileMapDesc{
		Origin:   mgl32.Vec2{0, 0},
		CellSize: 1,
		Width:    width,
		Height:   height,
		Solids:   buildWall(width, height),
		Mask:     tileMask,
	})

	probeMask := collider2d.LayerMask{Layer: 1, CollidesWith: 2 | 4}
	colliderMask := collider2d.LayerMask{Layer: 4, CollidesWith: 1}

	world.BeginFrame()
	world.PushCircle(mgl32.Vec2{15, 8}, 0.5, mgl32.Vec2{0, 0}, colliderMask, 1, true)
	world.EndFrame()

	origins := []mgl32.Vec2{
		{0, 5},
		{0, 8},
		{5, 15},
	}
	dir := mgl32.Vec2{1, 0}

	for i, origin := range origins {
		hit, ok := world.RaycastAll(origin, dir, probeMask, 100)
		if !ok {
			fmt.Printf("ray %d from %v: no hit\n", i, origin)
			continue
		}
		switch hit.Body.Kind {
		case collider2d.BodyRefTile:
			fmt.Printf("ray %d from %v: hit tile (%d,%d) at toi=%.3f\n",
				i, origin, hit.Body.Tile.CX, hit.Body.Tile.CY, hit.Hit.Toi)
		case collider2d.BodyRefCollider:
			fmt.Printf("ray %d from %v: hit collider %d at toi=%.3f\n",
				i, origin, hit.Body.Collider, hit.Hit.Toi)
		}
	}

	nearby := world.QueryAABBAll(mgl32.Vec2{10, 8}, mgl32.Vec2{2, 2}, probeMask)
	fmt.Printf("bodies near (10,8): %d\n", len(nearby))
}

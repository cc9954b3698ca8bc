// Command breakout-demo drives a tiny brick-breaker frame loop against
// collider2d: a ball collider swept against a paddle and a wall of brick
// colliders, printing the events each frame emits.
package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixelguild/collider2d"
)

const (
	ballLayer   = 1
	paddleLayer = 2
	brickLayer  = 4
	wallLayer   = 8
)

func allMask(layer uint32) collider2d.LayerMask {
	return collider2d.LayerMask{Layer: layer, CollidesWith: ballLayer | paddleLayer | brickLayer | wallLayer}
}

func buildBricks(w *collider2d.World, rows, cols int, origin mgl32.Vec2, cell float32) {
	half := mgl32.Vec2{cell * 0.45, cell * 0.2}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			center := origin.Add(mgl32.Vec2{float32(c) * cell, float32(r) * cell * 0.5})
			key := uint64(r*cols + c + 1)
			w.PushAABB(center, half, mgl32.Vec2{0, 0}, allMask(brickLayer), key, true)
		}
	}
}

func main() {
	cfg := collider2d.DefaultWorldConfig()
	cfg.Dt = 1.0 / 60.0
	cfg.EnableSweepEvents = true
	cfg.EnableOverlapEvents = true
	world := collider2d.NewWorld(cfg)

	ballPos := mgl32.Vec2{5, 1}
	ballVel := mgl32.Vec2{3, 6}
	const ballRadius = 0.2

	paddlePos := mgl32.Vec2{5, 0.3}
	paddleHalf := mgl32.Vec2{1, 0.15}

	for frame := 0; frame < 30; frame++ {
		world.BeginFrame()
		world.PushCircle(ballPos, ballRadius, ballVel, allMask(ballLayer), 1, true)
		world.PushAABB(paddlePos, paddleHalf, mgl32.Vec2{0, 0}, allMask(paddleLayer), 2, true)
		buildBricks(world, 3, 8, mgl32.Vec2{1, 8}, 1)
		world.EndFrame()
		world.GenerateEvents()

		events := world.DrainEvents()
		for _, ev := range events {
			switch ev.Kind {
			case collider2d.EventSweep:
				fmt.Printf("frame %d: sweep toi=%.3f normal=%v\n", frame, ev.Sweep.Toi, ev.Sweep.Normal)
			case collider2d.EventOverlap:
				fmt.Printf("frame %d: overlap depth=%.3f\n", frame, ev.Overlap.Depth)
			}
		}

		ballPos = ballPos.Add(ballVel.Mul(cfg.Dt))
		if ballPos[0] < 0 || ballPos[0] > 10 {
			ballVel[0] = -ballVel[0]
		}
		if ballPos[1] > 9 {
			ballVel[1] = -ballVel[1]
		}
	}

	stats := world.DebugStats()
	fmt.Printf("final frame stats: entries=%d cells=%d candidate_pairs=%d unique_pairs=%d\n",
		stats.Entries, stats.Cells, stats.CandidatePairs, stats.UniquePairs)
}

package collider2d

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixelguild/collider2d/narrowphase"
)

// tilemapStore owns attached tile grids across frames. Detach
// compacts the slice, which renumbers subsequent handles — the
// implementation choice the spec leaves open (see DESIGN.md).
type tilemapStore struct {
	maps []Tilemap
}

func (s *tilemapStore) attach(desc TileMapDesc) TileMapRef {
	solids := make([]byte, len(desc.Solids))
	copy(solids, desc.Solids)
	s.maps = append(s.maps, Tilemap{
		Origin:   desc.Origin,
		CellSize: desc.CellSize,
		Width:    desc.Width,
		Height:   desc.Height,
		Solids:   solids,
		Mask:     desc.Mask,
		UserKey:  desc.UserKey,
		HasKey:   desc.HasKey,
	})
	return TileMapRef(len(s.maps) - 1)
}

// updateTiles overwrites a rectangular patch. data must be row-major
// with len(data) == w*h; mismatched lengths indicate a caller bug.
func (s *tilemapStore) updateTiles(ref TileMapRef, x, y, w, h int32, data []byte) {
	idx := int(ref)
	if idx < 0 || idx >= len(s.maps) {
		return
	}
	if int(w*h) != len(data) {
		panic(fmt.Sprintf("collider2d: update_tiles data length %d does not match %d*%d", len(data), w, h))
	}
	m := &s.maps[idx]
	for row := int32(0); row < h; row++ {
		dstY := y + row
		if dstY >= m.Height {
			break
		}
		if dstY < 0 {
			continue
		}
		dstOff := dstY*m.Width + x
		srcOff := row * w
		length := w
		if x+length > m.Width {
			length = m.Width - x
		}
		if length <= 0 || x < 0 {
			continue
		}
		copy(m.Solids[dstOff:dstOff+length], data[srcOff:srcOff+length])
	}
}

func (s *tilemapStore) detach(ref TileMapRef) {
	idx := int(ref)
	if idx < 0 || idx >= len(s.maps) {
		return
	}
	s.maps = append(s.maps[:idx], s.maps[idx+1:]...)
}

func tileAt(m *Tilemap, ix, iy int32) (int, bool) {
	if ix < 0 || iy < 0 || ix >= m.Width || iy >= m.Height {
		return 0, false
	}
	return int(iy*m.Width + ix), true
}

// anyTileOverlapAt returns the first solid tile whose box overlaps the
// AABB footprint (center, he) within tilemap mi, scanning in row-major
// order for determinism.
func anyTileOverlapAt(mi int, m *Tilemap, center, he mgl32.Vec2) (TileRef, bool) {
	cell := m.CellSize
	if cell < 1e-5 {
		cell = 1e-5
	}
	min := center.Sub(he).Sub(m.Origin)
	max := center.Add(he).Sub(m.Origin)
	ix0, iy0 := floorDiv32(min[0], cell), floorDiv32(min[1], cell)
	ix1, iy1 := floorDiv32(max[0], cell), floorDiv32(max[1], cell)
	for iy := iy0; iy <= iy1; iy++ {
		for ix := ix0; ix <= ix1; ix++ {
			idx, ok := tileAt(m, ix, iy)
			if !ok || m.Solids[idx] == 0 {
				continue
			}
			tileMin := m.Origin.Add(mgl32.Vec2{float32(ix) * cell, float32(iy) * cell})
			tileC := tileMin.Add(mgl32.Vec2{cell * 0.5, cell * 0.5})
			tileH := mgl32.Vec2{cell * 0.5, cell * 0.5}
			if _, ok := narrowphase.OverlapAABBAABB(center, he, tileC, tileH); ok {
				return TileRef{Map: TileMapRef(mi), CX: ix, CY: iy}, true
			}
		}
	}
	return TileRef{}, false
}

type tileSweepResult struct {
	Tile   TileRef
	Hit    SweepHit
	Key    uint64
	HasKey bool
}

// sweepShapeTiles performs the conservative stepped sweep of an
// AABB- or circle-shaped footprint (approximated by its half-extents)
// against every consenting tilemap, refining the first overlap with a
// 14-iteration binary search.
func (w *World) sweepShapeTiles(center, he, vel mgl32.Vec2, mask LayerMask) (tileSweepResult, bool) {
	eps := w.cfg.TileEps
	if eps < 1e-6 {
		eps = 1e-6
	}
	d := vel.Mul(w.cfg.Dt)

	for mi := range w.tilemaps.maps {
		m := &w.tilemaps.maps[mi]
		if !w.allowsPair(mask, m.Mask) {
			continue
		}
		cell := m.CellSize
		if cell < 1e-5 {
			cell = 1e-5
		}
		length := sqrt32(d.Dot(d))
		stepsF := ceil32(length/cell) * 2
		if stepsF < 2 {
			stepsF = 2
		}
		steps := int(stepsF)

		tPrev := float32(0)
		prevFree := center
		found := false
		var tref TileRef

		for i := 1; i <= steps; i++ {
			t := float32(i) / stepsF
			if t > 1 {
				t = 1
			}
			p := center.Add(d.Mul(t))
			hitTref, ok := anyTileOverlapAt(mi, m, p, he)
			if !ok {
				tPrev = t
				prevFree = p
				continue
			}
			tref = hitTref
			found = true

			lo, hi := tPrev, t
			for iter := 0; iter < 14; iter++ {
				mid := 0.5 * (lo + hi)
				q := center.Add(d.Mul(mid))
				if _, ok := anyTileOverlapAt(mi, m, q, he); ok {
					hi = mid
				} else {
					lo = mid
					prevFree = q
				}
			}
			toi := hi
			pHit := center.Add(d.Mul(toi))
			tileMin := m.Origin.Add(mgl32.Vec2{float32(tref.CX) * cell, float32(tref.CY) * cell})
			push, _ := narrowphase.AABBTilePushout(pHit, he, tileMin, cell)
			normal := push.Normal
			if normal.Dot(normal) == 0 {
				diff := pHit.Sub(prevFree)
				l := sqrt32(diff.Dot(diff))
				if l > 0 {
					normal = diff.Mul(1 / l)
				}
			}
			hit := SweepHit{
				Toi:     toi,
				Normal:  normal,
				Contact: push.Contact,
			}
			hit.Hint.HasSafePos = true
			hit.Hint.SafePos = center.Add(d.Mul(toi - eps))

			result := tileSweepResult{Tile: tref, Hit: hit, Key: m.UserKey, HasKey: m.HasKey}
			return result, true
		}
		_ = found
	}
	return tileSweepResult{}, false
}

type tileRayResult struct {
	Tile   TileRef
	Hit    SweepHit
	Key    uint64
	HasKey bool
}

// raycastTilesInternal DDA-traverses every attached tilemap from
// origin along dir, returning the closest solid-cell hit.
func (w *World) raycastTilesInternal(origin, dir mgl32.Vec2, maxT float32, mask LayerMask) (tileRayResult, bool) {
	if dir.Dot(dir) == 0 {
		return tileRayResult{}, false
	}
	eps := w.cfg.TileEps
	if eps < 1e-6 {
		eps = 1e-6
	}

	var best tileRayResult
	haveBest := false

	for mi := range w.tilemaps.maps {
		m := &w.tilemaps.maps[mi]
		cell := m.CellSize
		if cell < 1e-5 {
			cell = 1e-5
		}
		local := origin.Sub(m.Origin)
		cx := floorDiv32(local[0], cell)
		cy := floorDiv32(local[1], cell)

		stepX, stepY := int32(0), int32(0)
		if dir[0] > 0 {
			stepX = 1
		} else if dir[0] < 0 {
			stepX = -1
		}
		if dir[1] > 0 {
			stepY = 1
		} else if dir[1] < 0 {
			stepY = -1
		}

		nextBoundary := func(c, step int32) float32 {
			if step > 0 {
				return (float32(c) + 1.0) * cell
			}
			return float32(c) * cell
		}

		tMaxX := float32(1e30)
		if stepX != 0 {
			nb := m.Origin[0] + nextBoundary(cx, stepX)
			tMaxX = (nb - origin[0]) / dir[0]
		}
		tMaxY := float32(1e30)
		if stepY != 0 {
			nb := m.Origin[1] + nextBoundary(cy, stepY)
			tMaxY = (nb - origin[1]) / dir[1]
		}
		tDeltaX := float32(1e30)
		if stepX != 0 {
			tDeltaX = cell / abs32(dir[0])
		}
		tDeltaY := float32(1e30)
		if stepY != 0 {
			tDeltaY = cell / abs32(dir[1])
		}

		tCurr := float32(0)
		// 0 = start cell, 1 = last step was X, 2 = last step was Y
		lastAxis := 0

		for iter := 0; iter < 20000; iter++ {
			if tCurr > maxT {
				break
			}
			if idx, ok := tileAt(m, cx, cy); ok && m.Solids[idx] != 0 && w.allowsPair(mask, m.Mask) {
				toi := tCurr
				if toi < 0 {
					toi = 0
				}
				var normal mgl32.Vec2
				switch lastAxis {
				case 1:
					normal = mgl32.Vec2{-float32(stepX), 0}
				case 2:
					normal = mgl32.Vec2{0, -float32(stepY)}
				}
				hit := SweepHit{
					Toi:     toi,
					Normal:  normal,
					Contact: origin.Add(dir.Mul(toi)),
				}
				hit.Hint.HasSafePos = true
				hit.Hint.SafePos = origin.Add(dir.Mul(toi - eps))
				cand := tileRayResult{
					Tile:   TileRef{Map: TileMapRef(mi), CX: cx, CY: cy},
					Hit:    hit,
					Key:    m.UserKey,
					HasKey: m.HasKey,
				}
				if !haveBest || cand.Hit.Toi < best.Hit.Toi {
					best = cand
					haveBest = true
				}
				break
			}

			if tMaxX < tMaxY {
				cx += stepX
				tCurr = tMaxX
				tMaxX += tDeltaX
				lastAxis = 1
			} else {
				cy += stepY
				tCurr = tMaxY
				tMaxY += tDeltaY
				lastAxis = 2
			}
		}
	}

	return best, haveBest
}

func ceil32(v float32) float32 {
	i := float32(int32(v))
	if i < v {
		i++
	}
	return i
}

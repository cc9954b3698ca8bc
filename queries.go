package collider2d

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixelguild/collider2d/narrowphase"
)

// QueryHit is a single collider match from a point/AABB/circle query,
// carrying the collider's optional user key.
type QueryHit struct {
	ID      FrameId
	UserKey uint64
	HasKey  bool
}

// BodyQueryHit is a single match from a unified query, naming either
// a collider or a tile.
type BodyQueryHit struct {
	Body    BodyRef
	UserKey uint64
	HasKey  bool
}

// RaycastHit is the result of Raycast.
type RaycastHit struct {
	ID      FrameId
	Hit     SweepHit
	UserKey uint64
	HasKey  bool
}

// BodyRaycastHit is the result of RaycastAll, naming either a
// collider or a tile.
type BodyRaycastHit struct {
	Body    BodyRef
	Hit     SweepHit
	UserKey uint64
	HasKey  bool
}

// Raycast DDA-walks the broadphase grid from origin along dir,
// returning the closest collider hit within max_t under mutual mask
// consent. Mutual consent is applied here regardless of
// WorldConfig.RequireMutualConsent: a ray is a one-off probe with no
// independent "other side", so both masks must agree for the probe to
// count as a hit.
func (w *World) Raycast(origin, dir mgl32.Vec2, mask LayerMask, maxT float32) (RaycastHit, bool) {
	if dir.Dot(dir) == 0 {
		return RaycastHit{}, false
	}
	cs := w.cfg.CellSize
	if cs < 1e-5 {
		cs = 1e-5
	}

	var best RaycastHit
	haveBest := false
	tested := make(map[int]struct{})

	cell := worldToCell(origin, cs)
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
			return (float32(c) + 1.0) * cs
		}
		return float32(c) * cs
	}
	tMaxX := float32(1e30)
	if stepX != 0 {
		tMaxX = (nextBoundary(cell.X, stepX) - origin[0]) / dir[0]
	}
	tMaxY := float32(1e30)
	if stepY != 0 {
		tMaxY = (nextBoundary(cell.Y, stepY) - origin[1]) / dir[1]
	}
	tDeltaX := float32(1e30)
	if stepX != 0 {
		tDeltaX = cs / abs32(dir[0])
	}
	tDeltaY := float32(1e30)
	if stepY != 0 {
		tDeltaY = cs / abs32(dir[1])
	}

	tCurr := float32(0)
	for iter := 0; iter < 10000; iter++ {
		if tCurr > maxT {
			break
		}
		if list, ok := w.grid.get(cell); ok {
			for _, idx := range list {
				if _, done := tested[idx]; done {
					continue
				}
				tested[idx] = struct{}{}
				e := &w.entries[idx]
				if !(mask.Allows(e.desc.Mask) && e.desc.Mask.Allows(mask)) {
					continue
				}
				var hit narrowphase.Hit
				var ok bool
				switch e.desc.Kind {
				case KindAABB:
					hit, ok = narrowphase.RayAABB(origin, dir, w.aabbs[idx][0], w.aabbs[idx][1])
				case KindCircle:
					hit, ok = narrowphase.RayCircle(origin, dir, e.desc.Center, e.desc.Radius)
				default:
					hit, ok = narrowphase.RayCircle(origin, dir, e.desc.Center, 0)
				}
				if !ok || hit.Toi < 0 || hit.Toi > maxT {
					continue
				}
				if !haveBest || hit.Toi < best.Hit.Toi {
					best = RaycastHit{ID: FrameId(idx), Hit: convertHit(hit), UserKey: e.desc.UserKey, HasKey: e.desc.HasUserKey}
					haveBest = true
				}
			}
		}

		if tMaxX < tMaxY {
			cell.X += stepX
			tCurr = tMaxX
			tMaxX += tDeltaX
		} else {
			cell.Y += stepY
			tCurr = tMaxY
			tMaxY += tDeltaY
		}
	}

	return best, haveBest
}

// RaycastAll merges Raycast against colliders with a DDA raycast
// against every attached tilemap, keeping the closer hit.
func (w *World) RaycastAll(origin, dir mgl32.Vec2, mask LayerMask, maxT float32) (BodyRaycastHit, bool) {
	var best BodyRaycastHit
	haveBest := false
	if h, ok := w.Raycast(origin, dir, mask, maxT); ok {
		best = BodyRaycastHit{Body: ColliderBodyRef(h.ID), Hit: h.Hit, UserKey: h.UserKey, HasKey: h.HasKey}
		haveBest = true
	}
	if tr, ok := w.raycastTilesInternal(origin, dir, maxT, mask); ok {
		if !haveBest || tr.Hit.Toi < best.Hit.Toi {
			best = BodyRaycastHit{Body: TileBodyRef(tr.Tile), Hit: tr.Hit, UserKey: tr.Key, HasKey: tr.HasKey}
			haveBest = true
		}
	}
	return best, haveBest
}

// RaycastTiles is the tile-only fast path: the same tilemap DDA
// traversal that RaycastAll merges with the collider Raycast.
func (w *World) RaycastTiles(origin, dir mgl32.Vec2, maxT float32, mask LayerMask) (TileRef, SweepHit, uint64, bool, bool) {
	tr, ok := w.raycastTilesInternal(origin, dir, maxT, mask)
	return tr.Tile, tr.Hit, tr.Key, tr.HasKey, ok
}

// SweepAABBTiles is the tile-only fast path for an AABB footprint.
func (w *World) SweepAABBTiles(center, halfExtents, vel mgl32.Vec2, mask LayerMask) (TileRef, SweepHit, uint64, bool, bool) {
	r, ok := w.sweepShapeTiles(center, halfExtents, vel, mask)
	return r.Tile, r.Hit, r.Key, r.HasKey, ok
}

// SweepCircleTiles is the tile-only fast path for a circle footprint.
func (w *World) SweepCircleTiles(center mgl32.Vec2, radius float32, vel mgl32.Vec2, mask LayerMask) (TileRef, SweepHit, uint64, bool, bool) {
	r, ok := w.sweepShapeTiles(center, mgl32.Vec2{radius, radius}, vel, mask)
	return r.Tile, r.Hit, r.Key, r.HasKey, ok
}

// QueryPoint returns every collider whose shape contains p.
func (w *World) QueryPoint(p mgl32.Vec2, mask LayerMask) []QueryHit {
	cs := w.cfg.CellSize
	if cs < 1e-5 {
		cs = 1e-5
	}
	var out []QueryHit
	list, ok := w.grid.get(worldToCell(p, cs))
	if !ok {
		return out
	}
	for _, idx := range list {
		e := &w.entries[idx]
		if !(mask.Allows(e.desc.Mask) && e.desc.Mask.Allows(mask)) {
			continue
		}
		var hit bool
		switch e.desc.Kind {
		case KindAABB:
			hit = narrowphase.OverlapPointAABB(p, e.desc.Center, w.halfExtentsOf(idx))
		case KindCircle:
			hit = narrowphase.OverlapPointCircle(p, e.desc.Center, e.desc.Radius)
		default:
			hit = p == e.desc.Center
		}
		if hit {
			out = append(out, QueryHit{ID: FrameId(idx), UserKey: e.desc.UserKey, HasKey: e.desc.HasUserKey})
		}
	}
	return out
}

// QueryAABB returns every collider overlapping the given AABB footprint.
func (w *World) QueryAABB(center, halfExtents mgl32.Vec2, mask LayerMask) []QueryHit {
	return w.cellRangeQuery(center.Sub(halfExtents), center.Add(halfExtents), mask, func(e *entry, idx int) bool {
		switch e.desc.Kind {
		case KindAABB:
			_, ok := narrowphase.OverlapAABBAABB(e.desc.Center, w.halfExtentsOf(idx), center, halfExtents)
			return ok
		case KindCircle:
			return overlapCircleAABBBool(e.desc.Center, e.desc.Radius, center, halfExtents)
		default:
			return narrowphase.OverlapPointAABB(e.desc.Center, center, halfExtents)
		}
	})
}

// QueryCircle returns every collider overlapping the given circle footprint.
func (w *World) QueryCircle(center mgl32.Vec2, radius float32, mask LayerMask) []QueryHit {
	rvec := mgl32.Vec2{radius, radius}
	return w.cellRangeQuery(center.Sub(rvec), center.Add(rvec), mask, func(e *entry, idx int) bool {
		switch e.desc.Kind {
		case KindAABB:
			return overlapCircleAABBBool(center, radius, e.desc.Center, w.halfExtentsOf(idx))
		case KindCircle:
			_, ok := narrowphase.OverlapCircleCircle(center, radius, e.desc.Center, e.desc.Radius)
			return ok
		default:
			return narrowphase.OverlapPointCircle(e.desc.Center, center, radius)
		}
	})
}

func (w *World) cellRangeQuery(min, max mgl32.Vec2, mask LayerMask, test func(e *entry, idx int) bool) []QueryHit {
	cs := w.cfg.CellSize
	if cs < 1e-5 {
		cs = 1e-5
	}
	lo := worldToCell(min, cs)
	hi := worldToCell(max, cs)
	var out []QueryHit
	seen := make(map[int]struct{})
	for iy := lo.Y; iy <= hi.Y; iy++ {
		for ix := lo.X; ix <= hi.X; ix++ {
			list, ok := w.grid.get(cellKey{ix, iy})
			if !ok {
				continue
			}
			for _, idx := range list {
				if _, dup := seen[idx]; dup {
					continue
				}
				seen[idx] = struct{}{}
				e := &w.entries[idx]
				if !(mask.Allows(e.desc.Mask) && e.desc.Mask.Allows(mask)) {
					continue
				}
				if test(e, idx) {
					out = append(out, QueryHit{ID: FrameId(idx), UserKey: e.desc.UserKey, HasKey: e.desc.HasUserKey})
				}
			}
		}
	}
	return out
}

func (w *World) tileFootprintQuery(min, max mgl32.Vec2, mask LayerMask, test func(tileC, tileH mgl32.Vec2) bool) []BodyQueryHit {
	var out []BodyQueryHit
	for mi := range w.tilemaps.maps {
		m := &w.tilemaps.maps[mi]
		if !w.allowsPair(mask, m.Mask) {
			continue
		}
		cell := m.CellSize
		if cell < 1e-5 {
			cell = 1e-5
		}
		lmin := min.Sub(m.Origin)
		lmax := max.Sub(m.Origin)
		ix0, iy0 := floorDiv32(lmin[0], cell), floorDiv32(lmin[1], cell)
		ix1, iy1 := floorDiv32(lmax[0], cell), floorDiv32(lmax[1], cell)
		for iy := iy0; iy <= iy1; iy++ {
			for ix := ix0; ix <= ix1; ix++ {
				idx, ok := tileAt(m, ix, iy)
				if !ok || m.Solids[idx] == 0 {
					continue
				}
				tileMin := m.Origin.Add(mgl32.Vec2{float32(ix) * cell, float32(iy) * cell})
				tileC := tileMin.Add(mgl32.Vec2{cell * 0.5, cell * 0.5})
				tileH := mgl32.Vec2{cell * 0.5, cell * 0.5}
				if test(tileC, tileH) {
					out = append(out, BodyQueryHit{
						Body:    TileBodyRef(TileRef{Map: TileMapRef(mi), CX: ix, CY: iy}),
						UserKey: m.UserKey,
						HasKey:  m.HasKey,
					})
				}
			}
		}
	}
	return out
}

// QueryPointAll merges QueryPoint with a point-in-tile test across
// every attached tilemap.
func (w *World) QueryPointAll(p mgl32.Vec2, mask LayerMask) []BodyQueryHit {
	var out []BodyQueryHit
	for _, h := range w.QueryPoint(p, mask) {
		out = append(out, BodyQueryHit{Body: ColliderBodyRef(h.ID), UserKey: h.UserKey, HasKey: h.HasKey})
	}
	for mi := range w.tilemaps.maps {
		m := &w.tilemaps.maps[mi]
		if !w.allowsPair(mask, m.Mask) {
			continue
		}
		cell := m.CellSize
		if cell < 1e-5 {
			cell = 1e-5
		}
		local := p.Sub(m.Origin)
		cx := floorDiv32(local[0], cell)
		cy := floorDiv32(local[1], cell)
		if idx, ok := tileAt(m, cx, cy); ok && m.Solids[idx] != 0 {
			out = append(out, BodyQueryHit{
				Body:    TileBodyRef(TileRef{Map: TileMapRef(mi), CX: cx, CY: cy}),
				UserKey: m.UserKey,
				HasKey:  m.HasKey,
			})
		}
	}
	return out
}

// QueryAABBAll merges QueryAABB with a footprint scan of solid tiles
// across every attached tilemap.
func (w *World) QueryAABBAll(center, halfExtents mgl32.Vec2, mask LayerMask) []BodyQueryHit {
	var out []BodyQueryHit
	for _, h := range w.QueryAABB(center, halfExtents, mask) {
		out = append(out, BodyQueryHit{Body: ColliderBodyRef(h.ID), UserKey: h.UserKey, HasKey: h.HasKey})
	}
	out = append(out, w.tileFootprintQuery(center.Sub(halfExtents), center.Add(halfExtents), mask, func(tileC, tileH mgl32.Vec2) bool {
		_, ok := narrowphase.OverlapAABBAABB(center, halfExtents, tileC, tileH)
		return ok
	})...)
	return out
}

// QueryCircleAll merges QueryCircle with a footprint scan of solid
// tiles across every attached tilemap.
func (w *World) QueryCircleAll(center mgl32.Vec2, radius float32, mask LayerMask) []BodyQueryHit {
	var out []BodyQueryHit
	for _, h := range w.QueryCircle(center, radius, mask) {
		out = append(out, BodyQueryHit{Body: ColliderBodyRef(h.ID), UserKey: h.UserKey, HasKey: h.HasKey})
	}
	rvec := mgl32.Vec2{radius, radius}
	out = append(out, w.tileFootprintQuery(center.Sub(rvec), center.Add(rvec), mask, func(tileC, tileH mgl32.Vec2) bool {
		return overlapCircleAABBBool(center, radius, tileC, tileH)
	})...)
	return out
}

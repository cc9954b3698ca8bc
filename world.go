// Package collider2d implements a detection-only 2D collision engine
// for tile-based action games. A World is rebuilt every frame from
// caller-supplied colliders and static tilemaps; it never integrates
// motion or resolves contacts, only reports events, queries, and
// pairwise tests with resolution hints attached.
package collider2d

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

type entry struct {
	desc   ColliderDesc
	motion Motion
}

// World owns all per-frame collision state: the collider table, its
// computed AABBs, the broadphase grid, the user-key index, and the
// event buffer, plus tilemaps that persist across frames. It is not
// safe for concurrent use — see the single-threaded concurrency
// model in SPEC_FULL.md §5.
type World struct {
	cfg           WorldConfig
	frameCounter  uint32

	entries []entry
	aabbs   [][2]mgl32.Vec2 // min, max per entry
	keyToID map[uint64]FrameId

	grid *grid

	tilemaps tilemapStore

	events []Event

	lastTiming    WorldTiming
	hasLastTiming bool
}

// NewWorld constructs an empty world with the given configuration.
func NewWorld(cfg WorldConfig) *World {
	return &World{
		cfg:     cfg,
		keyToID: make(map[uint64]FrameId),
		grid:    newGrid(cfg.CellSize),
	}
}

// BeginFrame clears all ephemeral per-frame state: the collider
// table, AABBs, grid, user-key index, and event buffer. Handles from
// the previous frame are invalidated.
func (w *World) BeginFrame() {
	w.entries = w.entries[:0]
	w.aabbs = w.aabbs[:0]
	w.grid.clear(w.cfg.CellSize)
	for k := range w.keyToID {
		delete(w.keyToID, k)
	}
	w.events = w.events[:0]
	w.hasLastTiming = false
	w.frameCounter++
}

// Push adds a collider descriptor and its motion to the current
// frame's table and returns its dense FrameId. A duplicate UserKey
// within one frame is a caller bug and panics.
func (w *World) Push(desc ColliderDesc, motion Motion) FrameId {
	id := FrameId(len(w.entries))
	if desc.HasUserKey {
		if _, dup := w.keyToID[desc.UserKey]; dup {
			panic("collider2d: duplicate user_key encountered within a frame")
		}
		w.keyToID[desc.UserKey] = id
	}
	w.entries = append(w.entries, entry{desc: desc, motion: motion})
	return id
}

// PushCircle is a convenience wrapper around Push for circle colliders.
func (w *World) PushCircle(center mgl32.Vec2, radius float32, vel mgl32.Vec2, mask LayerMask, userKey uint64, hasKey bool) FrameId {
	return w.Push(ColliderDesc{Kind: KindCircle, Center: center, Radius: radius, Mask: mask, UserKey: userKey, HasUserKey: hasKey}, Motion{Velocity: vel})
}

// PushAABB is a convenience wrapper around Push for AABB colliders.
func (w *World) PushAABB(center, halfExtents mgl32.Vec2, vel mgl32.Vec2, mask LayerMask, userKey uint64, hasKey bool) FrameId {
	return w.Push(ColliderDesc{Kind: KindAABB, Center: center, HalfExtents: halfExtents, Mask: mask, UserKey: userKey, HasUserKey: hasKey}, Motion{Velocity: vel})
}

// PushPoint is a convenience wrapper around Push for point colliders.
func (w *World) PushPoint(p mgl32.Vec2, vel mgl32.Vec2, mask LayerMask, userKey uint64, hasKey bool) FrameId {
	return w.Push(ColliderDesc{Kind: KindPoint, Center: p, Mask: mask, UserKey: userKey, HasUserKey: hasKey}, Motion{Velocity: vel})
}

// AttachTilemap registers a static tile grid that persists until
// DetachTilemap is called.
func (w *World) AttachTilemap(desc TileMapDesc) TileMapRef {
	return w.tilemaps.attach(desc)
}

// UpdateTiles overwrites a rectangular patch of an attached tilemap.
func (w *World) UpdateTiles(ref TileMapRef, x, y, width, height int32, data []byte) {
	w.tilemaps.updateTiles(ref, x, y, width, height, data)
}

// DetachTilemap removes a tilemap. Subsequent handles referring to
// tilemaps after it in attachment order are renumbered.
func (w *World) DetachTilemap(ref TileMapRef) {
	w.tilemaps.detach(ref)
}

func (w *World) computeEntryAABB(e *entry) (mgl32.Vec2, mgl32.Vec2) {
	var half mgl32.Vec2
	switch e.desc.Kind {
	case KindAABB:
		half = e.desc.HalfExtents
	case KindCircle:
		half = mgl32.Vec2{e.desc.Radius, e.desc.Radius}
	}

	if w.cfg.TightenSweptAABB {
		p0 := e.desc.Center
		p1 := e.desc.Center.Add(e.motion.Velocity.Mul(w.cfg.Dt))
		minC := mgl32.Vec2{minf(p0[0], p1[0]), minf(p0[1], p1[1])}.Sub(half)
		maxC := mgl32.Vec2{maxf32(p0[0], p1[0]), maxf32(p0[1], p1[1])}.Add(half)
		return minC, maxC
	}
	return e.desc.Center.Sub(half), e.desc.Center.Add(half)
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// EndFrame computes each entry's swept AABB and rebuilds the
// broadphase grid from them.
func (w *World) EndFrame() {
	var tAll, t0, t1 time.Time
	if w.cfg.EnableTiming {
		tAll = time.Now()
		t0 = time.Now()
	}

	w.aabbs = make([][2]mgl32.Vec2, len(w.entries))
	for i := range w.entries {
		min, max := w.computeEntryAABB(&w.entries[i])
		w.aabbs[i] = [2]mgl32.Vec2{min, max}
	}
	var aabbMs float64
	if w.cfg.EnableTiming {
		aabbMs = msSince(t0)
		t1 = time.Now()
	}

	for i, mm := range w.aabbs {
		w.grid.insert(i, mm[0], mm[1])
	}

	if w.cfg.EnableTiming {
		w.lastTiming = WorldTiming{
			AABBBuildMs: aabbMs,
			GridBuildMs: msSince(t1),
		}
		_ = tAll
		w.hasLastTiming = true
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}

// DrainEvents returns and clears the current frame's emitted events.
func (w *World) DrainEvents() []Event {
	out := make([]Event, len(w.events))
	copy(out, w.events)
	w.events = w.events[:0]
	return out
}

// DebugStats reports the current frame's broadphase footprint.
func (w *World) DebugStats() WorldStats {
	entries := len(w.entries)
	cells := w.grid.len()
	candidatePairs := 0
	seen := make(map[[2]int]struct{})
	for _, list := range w.grid.cells {
		n := len(list)
		if n >= 2 {
			candidatePairs += n * (n - 1) / 2
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, b := list[i], list[j]
				if a > b {
					a, b = b, a
				}
				seen[[2]int{a, b}] = struct{}{}
			}
		}
	}
	return WorldStats{Entries: entries, Cells: cells, CandidatePairs: candidatePairs, UniquePairs: len(seen)}
}

// Timing reports the last EndFrame/GenerateEvents millisecond
// breakdown, when WorldConfig.EnableTiming is set.
func (w *World) Timing() (WorldTiming, bool) {
	return w.lastTiming, w.hasLastTiming
}

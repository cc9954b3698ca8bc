package collider2d

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixelguild/collider2d/narrowphase"
)

func (w *World) pushEvent(ev Event) bool {
	if len(w.events) >= w.cfg.MaxEvents {
		return false
	}
	w.events = append(w.events, ev)
	return true
}

// GenerateEvents runs the two-phase event pipeline over the frame
// built by EndFrame: Collider x Collider candidate pairs from the
// broadphase grid, then Collider x Tile sweeps/overlaps for every
// entry. Events beyond WorldConfig.MaxEvents are silently dropped.
func (w *World) GenerateEvents() {
	var tAll, tScan0 time.Time
	timing := WorldTiming{}
	if w.cfg.EnableTiming {
		tAll = time.Now()
		tScan0 = time.Now()
		if w.hasLastTiming {
			timing = w.lastTiming
		}
	}

	seenPairs := make(map[[2]int]struct{})

phase1:
	for _, indices := range w.grid.cells {
		for i0 := 0; i0 < len(indices); i0++ {
			for i1 := i0 + 1; i1 < len(indices); i1++ {
				a, b := indices[i0], indices[i1]
				key := [2]int{a, b}
				if a > b {
					key = [2]int{b, a}
				}
				if _, dup := seenPairs[key]; dup {
					continue
				}
				seenPairs[key] = struct{}{}

				if len(w.events) >= w.cfg.MaxEvents {
					break phase1
				}

				var tNp0 time.Time
				if w.cfg.EnableTiming {
					tNp0 = time.Now()
				}

				ea := &w.entries[a]
				eb := &w.entries[b]
				if !w.allowsPair(ea.desc.Mask, eb.desc.Mask) {
					continue
				}

				rel := ea.motion.Velocity.Sub(eb.motion.Velocity)
				dynamic := rel.Dot(rel) > 1e-12

				if dynamic && w.cfg.EnableSweepEvents {
					if sweep, ok := w.sweepPairIdx(a, b); ok {
						w.pushEvent(makeColliderEvent(EventSweep, FrameId(a), FrameId(b), ea, eb, Overlap{}, sweep, false, true))
					} else if w.cfg.EnableOverlapEvents {
						if ov, ok := w.overlapPairIdx(a, b); ok {
							w.pushEvent(makeColliderEvent(EventOverlap, FrameId(a), FrameId(b), ea, eb, ov, SweepHit{}, true, false))
						}
					}
				} else if w.cfg.EnableOverlapEvents {
					if ov, ok := w.overlapPairIdx(a, b); ok {
						w.pushEvent(makeColliderEvent(EventOverlap, FrameId(a), FrameId(b), ea, eb, ov, SweepHit{}, true, false))
					}
				}

				if w.cfg.EnableTiming {
					timing.NarrowphaseMs += msSince(tNp0)
				}
			}
		}
	}

	if w.cfg.EnableTiming {
		timing.ScanMs = msSince(tScan0) - timing.NarrowphaseMs
	}

	// Phase 2: collider x tile.
	if len(w.events) < w.cfg.MaxEvents {
	phase2:
		for i := range w.entries {
			e := &w.entries[i]
			he := w.halfExtentsOf(i)
			maskA := e.desc.Mask
			v := e.motion.Velocity
			emitted := false

			if v.Dot(v) > 1e-12 && w.cfg.EnableSweepEvents {
				if res, ok := w.sweepShapeTiles(e.desc.Center, he, v, maskA); ok {
					ev := Event{
						Kind:    EventSweep,
						A:       ColliderBodyRef(FrameId(i)),
						B:       TileBodyRef(res.Tile),
						AKey:    e.desc.UserKey,
						HasAKey: e.desc.HasUserKey,
						BKey:    res.Key,
						HasBKey: res.HasKey,
						Sweep:   res.Hit,
						HasSweep: true,
					}
					w.pushEvent(ev)
					emitted = true
				}
			}

			if !emitted && w.cfg.EnableOverlapEvents {
				for mi := range w.tilemaps.maps {
					m := &w.tilemaps.maps[mi]
					if !w.allowsPair(maskA, m.Mask) {
						continue
					}
					tref, ok := anyTileOverlapAt(mi, m, e.desc.Center, he)
					if !ok {
						continue
					}
					cell := m.CellSize
					if cell < 1e-5 {
						cell = 1e-5
					}
					tileMin := m.Origin.Add(mgl32.Vec2{float32(tref.CX) * cell, float32(tref.CY) * cell})
					ov := pushoutFor(e.desc.Center, he, tileMin, cell)
					ov.Hint.StartEmbedded = true
					ev := Event{
						Kind:       EventOverlap,
						A:          ColliderBodyRef(FrameId(i)),
						B:          TileBodyRef(tref),
						AKey:       e.desc.UserKey,
						HasAKey:    e.desc.HasUserKey,
						BKey:       m.UserKey,
						HasBKey:    m.HasKey,
						Overlap:    ov,
						HasOverlap: true,
					}
					w.pushEvent(ev)
					break
				}
			}

			if len(w.events) >= w.cfg.MaxEvents {
				break phase2
			}
		}
	}

	if w.cfg.EnableTiming {
		timing.GenerateEventsMs = msSince(tAll)
		w.lastTiming = timing
		w.hasLastTiming = true
	}
}

func makeColliderEvent(kind EventKind, a, b FrameId, ea, eb *entry, ov Overlap, sweep SweepHit, hasOverlap, hasSweep bool) Event {
	return Event{
		Kind:       kind,
		A:          ColliderBodyRef(a),
		B:          ColliderBodyRef(b),
		AKey:       ea.desc.UserKey,
		HasAKey:    ea.desc.HasUserKey,
		BKey:       eb.desc.UserKey,
		HasBKey:    eb.desc.HasUserKey,
		Overlap:    ov,
		HasOverlap: hasOverlap,
		Sweep:      sweep,
		HasSweep:   hasSweep,
	}
}

// pushoutFor picks circle or AABB pushout math depending on the
// collider's footprint: zero half-extent is a point (treated as a
// zero-radius circle), a square footprint is treated as a circle for
// simplicity, matching the reference engine's start-embedded handling.
func pushoutFor(center, he, tileMin mgl32.Vec2, cell float32) Overlap {
	if he[0] == 0 && he[1] == 0 {
		o, _ := narrowphase.CircleTilePushout(center, 0, tileMin, cell)
		return convertOverlap(o)
	}
	if he[0] == he[1] {
		o, _ := narrowphase.CircleTilePushout(center, he[0], tileMin, cell)
		return convertOverlap(o)
	}
	o, _ := narrowphase.AABBTilePushout(center, he, tileMin, cell)
	return convertOverlap(o)
}

package collider2d

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixelguild/collider2d/narrowphase"
)

// halfExtentsOf returns a collider's half-extent footprint: its own
// for AABBs, (r,r) for circles, zero for points.
func (w *World) halfExtentsOf(idx int) mgl32.Vec2 {
	e := &w.entries[idx]
	switch e.desc.Kind {
	case KindAABB:
		return e.desc.HalfExtents
	case KindCircle:
		return mgl32.Vec2{e.desc.Radius, e.desc.Radius}
	default:
		return mgl32.Vec2{}
	}
}

func overlapCircleAABBBool(circleC mgl32.Vec2, r float32, boxC, boxH mgl32.Vec2) bool {
	min := boxC.Sub(boxH)
	max := boxC.Add(boxH)
	closest := mgl32.Vec2{clamp32(circleC[0], min[0], max[0]), clamp32(circleC[1], min[1], max[1])}
	d := closest.Sub(circleC)
	return d.Dot(d) <= r*r
}

// allowsPair applies the configured mutual-or-either-side mask rule.
func (w *World) allowsPair(a, b LayerMask) bool {
	if w.cfg.RequireMutualConsent {
		return a.Allows(b) && b.Allows(a)
	}
	return a.Allows(b) || b.Allows(a)
}

// overlapPairIdx dispatches overlap tests across the 3x3 shape-kind
// matrix. Point-vs-AABB/Circle and Circle-vs-AABB return approximate
// results (zero normal, zero depth) rather than true penetration,
// matching the reference engine's treatment of these asymmetric pairs.
func (w *World) overlapPairIdx(ai, bi int) (Overlap, bool) {
	a := &w.entries[ai]
	b := &w.entries[bi]

	switch {
	case a.desc.Kind == KindAABB && b.desc.Kind == KindAABB:
		o, ok := narrowphase.OverlapAABBAABB(a.desc.Center, w.halfExtentsOf(ai), b.desc.Center, w.halfExtentsOf(bi))
		return convertOverlap(o), ok

	case a.desc.Kind == KindCircle && b.desc.Kind == KindCircle:
		o, ok := narrowphase.OverlapCircleCircle(a.desc.Center, a.desc.Radius, b.desc.Center, b.desc.Radius)
		return convertOverlap(o), ok

	case a.desc.Kind == KindPoint && b.desc.Kind == KindAABB:
		if narrowphase.OverlapPointAABB(a.desc.Center, b.desc.Center, w.halfExtentsOf(bi)) {
			return Overlap{Contact: a.desc.Center}, true
		}
		return Overlap{}, false

	case a.desc.Kind == KindAABB && b.desc.Kind == KindPoint:
		if narrowphase.OverlapPointAABB(b.desc.Center, a.desc.Center, w.halfExtentsOf(ai)) {
			return Overlap{Contact: b.desc.Center}, true
		}
		return Overlap{}, false

	case a.desc.Kind == KindPoint && b.desc.Kind == KindCircle:
		if narrowphase.OverlapPointCircle(a.desc.Center, b.desc.Center, b.desc.Radius) {
			return Overlap{Contact: a.desc.Center}, true
		}
		return Overlap{}, false

	case a.desc.Kind == KindCircle && b.desc.Kind == KindPoint:
		if narrowphase.OverlapPointCircle(b.desc.Center, a.desc.Center, a.desc.Radius) {
			return Overlap{Contact: b.desc.Center}, true
		}
		return Overlap{}, false

	case a.desc.Kind == KindCircle && b.desc.Kind == KindAABB:
		if overlapCircleAABBBool(a.desc.Center, a.desc.Radius, b.desc.Center, w.halfExtentsOf(bi)) {
			return Overlap{Contact: a.desc.Center}, true
		}
		return Overlap{}, false

	case a.desc.Kind == KindAABB && b.desc.Kind == KindCircle:
		if overlapCircleAABBBool(b.desc.Center, b.desc.Radius, a.desc.Center, w.halfExtentsOf(ai)) {
			return Overlap{Contact: b.desc.Center}, true
		}
		return Overlap{}, false

	default: // Point x Point
		if a.desc.Center == b.desc.Center {
			return Overlap{Contact: a.desc.Center}, true
		}
		return Overlap{}, false
	}
}

// sweepPairIdx dispatches sweep tests across the shape-kind matrix.
// Asymmetric AABB x Circle / Point orderings reuse the canonical
// Circle-vs-AABB primitive with roles swapped and the normal negated
// to preserve the "from B into A" convention.
func (w *World) sweepPairIdx(ai, bi int) (SweepHit, bool) {
	a := &w.entries[ai]
	b := &w.entries[bi]
	dt := w.cfg.Dt

	switch {
	case a.desc.Kind == KindAABB && b.desc.Kind == KindAABB:
		h, ok := narrowphase.SweepAABBAABB(
			a.desc.Center, w.halfExtentsOf(ai), a.motion.Velocity.Mul(dt),
			b.desc.Center, w.halfExtentsOf(bi), b.motion.Velocity.Mul(dt),
		)
		return convertHit(h), ok

	case a.desc.Kind == KindCircle && b.desc.Kind == KindCircle:
		h, ok := narrowphase.SweepCircleCircle(
			a.desc.Center, a.desc.Radius, a.motion.Velocity.Mul(dt),
			b.desc.Center, b.desc.Radius, b.motion.Velocity.Mul(dt),
		)
		return convertHit(h), ok

	case a.desc.Kind == KindCircle && b.desc.Kind == KindAABB:
		h, ok := narrowphase.SweepCircleAABB(
			a.desc.Center, a.desc.Radius, a.motion.Velocity.Mul(dt),
			b.desc.Center, w.halfExtentsOf(bi), b.motion.Velocity.Mul(dt),
		)
		return convertHit(h), ok

	case a.desc.Kind == KindAABB && b.desc.Kind == KindCircle:
		h, ok := narrowphase.SweepCircleAABB(
			b.desc.Center, b.desc.Radius, b.motion.Velocity.Mul(dt),
			a.desc.Center, w.halfExtentsOf(ai), a.motion.Velocity.Mul(dt),
		)
		if !ok {
			return SweepHit{}, false
		}
		return negateNormal(convertHit(h)), true

	case a.desc.Kind == KindPoint && b.desc.Kind == KindAABB:
		h, ok := narrowphase.SweepCircleAABB(
			a.desc.Center, 0, a.motion.Velocity.Mul(dt),
			b.desc.Center, w.halfExtentsOf(bi), b.motion.Velocity.Mul(dt),
		)
		return convertHit(h), ok

	case a.desc.Kind == KindAABB && b.desc.Kind == KindPoint:
		h, ok := narrowphase.SweepCircleAABB(
			b.desc.Center, 0, b.motion.Velocity.Mul(dt),
			a.desc.Center, w.halfExtentsOf(ai), a.motion.Velocity.Mul(dt),
		)
		if !ok {
			return SweepHit{}, false
		}
		return negateNormal(convertHit(h)), true

	case a.desc.Kind == KindPoint && b.desc.Kind == KindCircle:
		h, ok := narrowphase.SweepCircleCircle(
			a.desc.Center, 0, a.motion.Velocity.Mul(dt),
			b.desc.Center, b.desc.Radius, b.motion.Velocity.Mul(dt),
		)
		return convertHit(h), ok

	case a.desc.Kind == KindCircle && b.desc.Kind == KindPoint:
		h, ok := narrowphase.SweepCircleCircle(
			b.desc.Center, 0, b.motion.Velocity.Mul(dt),
			a.desc.Center, a.desc.Radius, a.motion.Velocity.Mul(dt),
		)
		if !ok {
			return SweepHit{}, false
		}
		return negateNormal(convertHit(h)), true

	default: // Point x Point
		return SweepHit{}, false
	}
}

func negateNormal(h SweepHit) SweepHit {
	h.Normal = h.Normal.Mul(-1)
	return h
}

func convertOverlap(o narrowphase.Overlap) Overlap {
	return Overlap{Normal: o.Normal, Depth: o.Depth, Contact: o.Contact}
}

func convertHit(h narrowphase.Hit) SweepHit {
	return SweepHit{Toi: h.Toi, Normal: h.Normal, Contact: h.Contact}
}

// OverlapPair runs a discrete overlap test between two colliders from
// the current frame.
func (w *World) OverlapPair(a, b FrameId) (Overlap, bool) {
	return w.overlapPairIdx(int(a), int(b))
}

// SweepPair runs a continuous sweep test between two colliders from
// the current frame.
func (w *World) SweepPair(a, b FrameId) (SweepHit, bool) {
	return w.sweepPairIdx(int(a), int(b))
}

// OverlapByKey resolves both user keys to the current frame's
// colliders before dispatching OverlapPair.
func (w *World) OverlapByKey(a, b uint64) (Overlap, bool) {
	ia, ok := w.keyToID[a]
	if !ok {
		return Overlap{}, false
	}
	ib, ok := w.keyToID[b]
	if !ok {
		return Overlap{}, false
	}
	return w.overlapPairIdx(int(ia), int(ib))
}

// SweepByKey resolves both user keys to the current frame's colliders
// before dispatching SweepPair.
func (w *World) SweepByKey(a, b uint64) (SweepHit, bool) {
	ia, ok := w.keyToID[a]
	if !ok {
		return SweepHit{}, false
	}
	ib, ok := w.keyToID[b]
	if !ok {
		return SweepHit{}, false
	}
	return w.sweepPairIdx(int(ia), int(ib))
}

// Package narrowphase implements the pure primitive intersection tests
// the rest of the engine dispatches to: slab-method ray/segment casts,
// analytic circle casts, axis-aligned overlap tests, and Minkowski-sum
// swept tests. Every function here is stateless and side-effect free.
package narrowphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-7

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Hit is a ray/segment/sweep intersection result.
type Hit struct {
	Toi     float32
	Normal  mgl32.Vec2
	Contact mgl32.Vec2
}

// Overlap is a discrete penetration result. Normal points from B into A.
type Overlap struct {
	Normal  mgl32.Vec2
	Depth   float32
	Contact mgl32.Vec2
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lenSq(v mgl32.Vec2) float32 {
	return v.Dot(v)
}

// RayAABB casts a ray from origin along dir against an AABB [min, max]
// using the slab method. If origin is inside the box the hit is
// immediate (toi=0, normal=(0,0)).
func RayAABB(origin, dir, min, max mgl32.Vec2) (Hit, bool) {
	tmin := float32(-1e30)
	tmax := float32(1e30)
	var nEnter mgl32.Vec2

	if abs32(dir[0]) < epsilon {
		if origin[0] < min[0] || origin[0] > max[0] {
			return Hit{}, false
		}
	} else {
		inv := 1.0 / dir[0]
		t1 := (min[0] - origin[0]) * inv
		t2 := (max[0] - origin[0]) * inv
		nx := float32(-1.0)
		if t1 > t2 {
			t1, t2 = t2, t1
			nx = 1.0
		}
		if t1 > tmin {
			tmin = t1
			nEnter = mgl32.Vec2{nx, 0}
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return Hit{}, false
		}
	}

	if abs32(dir[1]) < epsilon {
		if origin[1] < min[1] || origin[1] > max[1] {
			return Hit{}, false
		}
	} else {
		inv := 1.0 / dir[1]
		t1 := (min[1] - origin[1]) * inv
		t2 := (max[1] - origin[1]) * inv
		ny := float32(-1.0)
		if t1 > t2 {
			t1, t2 = t2, t1
			ny = 1.0
		}
		if t1 > tmin {
			tmin = t1
			nEnter = mgl32.Vec2{0, ny}
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return Hit{}, false
		}
	}

	toi := tmin
	normal := nEnter
	if tmin < 0 {
		toi = 0
		normal = mgl32.Vec2{0, 0}
	}
	contact := origin.Add(dir.Mul(toi))
	return Hit{Toi: toi, Normal: normal, Contact: contact}, true
}

// RayCircle casts a ray from origin along dir against a circle.
func RayCircle(origin, dir, center mgl32.Vec2, r float32) (Hit, bool) {
	m := origin.Sub(center)
	a := lenSq(dir)
	if a == 0 {
		return Hit{}, false
	}
	b := 2 * m.Dot(dir)
	c := lenSq(m) - r*r
	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}, false
	}
	sq := sqrt32(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	t := t1
	if t0 >= 0 {
		t = t0
	}
	if t < 0 {
		return Hit{}, false
	}
	contact := origin.Add(dir.Mul(t))
	n := contact.Sub(center)
	l := sqrt32(lenSq(n))
	normal := mgl32.Vec2{0, 0}
	if l > 0 {
		normal = n.Mul(1 / l)
	}
	return Hit{Toi: t, Normal: normal, Contact: contact}, true
}

// LineSegmentAABB is RayAABB clamped to the segment [a, b], t in [0,1].
func LineSegmentAABB(a, b, min, max mgl32.Vec2) (Hit, bool) {
	d := b.Sub(a)
	tmin := float32(0)
	tmax := float32(1)
	var nEnter mgl32.Vec2

	if abs32(d[0]) < epsilon {
		if a[0] < min[0] || a[0] > max[0] {
			return Hit{}, false
		}
	} else {
		inv := 1.0 / d[0]
		t1 := (min[0] - a[0]) * inv
		t2 := (max[0] - a[0]) * inv
		nx := float32(-1.0)
		if t1 > t2 {
			t1, t2 = t2, t1
			nx = 1.0
		}
		if t1 > tmin {
			tmin = t1
			nEnter = mgl32.Vec2{nx, 0}
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return Hit{}, false
		}
	}

	if abs32(d[1]) < epsilon {
		if a[1] < min[1] || a[1] > max[1] {
			return Hit{}, false
		}
	} else {
		inv := 1.0 / d[1]
		t1 := (min[1] - a[1]) * inv
		t2 := (max[1] - a[1]) * inv
		ny := float32(-1.0)
		if t1 > t2 {
			t1, t2 = t2, t1
			ny = 1.0
		}
		if t1 > tmin {
			tmin = t1
			nEnter = mgl32.Vec2{0, ny}
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return Hit{}, false
		}
	}

	if tmin < 0 || tmin > 1 {
		return Hit{}, false
	}
	toi := clamp(tmin, 0, 1)
	contact := a.Add(d.Mul(toi))
	normal := nEnter
	if toi == 0 && a[0] >= min[0] && a[0] <= max[0] && a[1] >= min[1] && a[1] <= max[1] {
		normal = mgl32.Vec2{0, 0}
	}
	return Hit{Toi: toi, Normal: normal, Contact: contact}, true
}

// LineSegmentCircle is RayCircle clamped to the segment [a, b].
func LineSegmentCircle(a, b, center mgl32.Vec2, r float32) (Hit, bool) {
	d := b.Sub(a)
	m := a.Sub(center)
	ac := lenSq(d)
	if ac == 0 {
		return Hit{}, false
	}
	bc := 2 * m.Dot(d)
	cc := lenSq(m) - r*r
	disc := bc*bc - 4*ac*cc
	if disc < 0 {
		return Hit{}, false
	}
	sq := sqrt32(disc)
	t0 := (-bc - sq) / (2 * ac)
	t1 := (-bc + sq) / (2 * ac)
	t := float32(1e30)
	found := false
	for _, cand := range [2]float32{t0, t1} {
		if cand >= 0 && cand <= 1 && cand < t {
			t = cand
			found = true
		}
	}
	if !found {
		return Hit{}, false
	}
	contact := a.Add(d.Mul(t))
	n := contact.Sub(center)
	l := sqrt32(lenSq(n))
	normal := mgl32.Vec2{0, 0}
	if l > 0 {
		normal = n.Mul(1 / l)
	}
	return Hit{Toi: t, Normal: normal, Contact: contact}, true
}

// OverlapAABBAABB tests two AABBs given as center/half-extent pairs.
// Normal points from B (c1,h1) into A (c0,h0).
func OverlapAABBAABB(c0, h0, c1, h1 mgl32.Vec2) (Overlap, bool) {
	d := c1.Sub(c0)
	ox := (h0[0] + h1[0]) - abs32(d[0])
	oy := (h0[1] + h1[1]) - abs32(d[1])
	if ox < 0 || oy < 0 {
		return Overlap{}, false
	}

	var depth, axisH float32
	var normal mgl32.Vec2
	if ox <= oy {
		nx := float32(-1.0)
		if d[0] < 0 {
			nx = 1.0
		}
		depth, normal, axisH = maxf(ox, 0), mgl32.Vec2{nx, 0}, h0[0]
	} else {
		ny := float32(-1.0)
		if d[1] < 0 {
			ny = 1.0
		}
		depth, normal, axisH = maxf(oy, 0), mgl32.Vec2{0, ny}, h0[1]
	}

	bmin := c1.Sub(h1)
	bmax := c1.Add(h1)
	contact := mgl32.Vec2{clamp(c0[0], bmin[0], bmax[0]), clamp(c0[1], bmin[1], bmax[1])}
	contact = contact.Sub(normal.Mul(axisH))

	return Overlap{Normal: normal, Depth: depth, Contact: contact}, true
}

// OverlapCircleCircle tests two circles. Normal points from B into A.
func OverlapCircleCircle(c0 mgl32.Vec2, r0 float32, c1 mgl32.Vec2, r1 float32) (Overlap, bool) {
	delta := c0.Sub(c1)
	dist2 := lenSq(delta)
	rsum := r0 + r1
	if dist2 > rsum*rsum {
		return Overlap{}, false
	}
	if dist2 == 0 {
		return Overlap{Normal: mgl32.Vec2{0, 0}, Depth: rsum, Contact: c0}, true
	}
	dist := sqrt32(dist2)
	normal := delta.Mul(1 / dist)
	depth := maxf(rsum-dist, 0)
	contact := c0.Sub(normal.Mul(r0))
	return Overlap{Normal: normal, Depth: depth, Contact: contact}, true
}

// OverlapPointAABB reports whether p lies within the box [c-h, c+h].
func OverlapPointAABB(p, c, h mgl32.Vec2) bool {
	min := c.Sub(h)
	max := c.Add(h)
	return p[0] >= min[0] && p[0] <= max[0] && p[1] >= min[1] && p[1] <= max[1]
}

// OverlapPointCircle reports whether p lies within radius r of c.
func OverlapPointCircle(p, c mgl32.Vec2, r float32) bool {
	d := p.Sub(c)
	return lenSq(d) <= r*r
}

func mulElem(a, b mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{a[0] * b[0], a[1] * b[1]}
}

// SweepAABBAABB sweeps A (c0,h0,v0) against B (c1,h1,v1) over one
// frame via Minkowski expansion: a ray from c0 along vrel against B
// inflated by h0.
func SweepAABBAABB(c0, h0, v0, c1, h1, v1 mgl32.Vec2) (Hit, bool) {
	vrel := v0.Sub(v1)
	if lenSq(vrel) <= epsilon {
		return Hit{}, false
	}
	expand := h0.Add(h1)
	min := c1.Sub(expand)
	max := c1.Add(expand)
	hit, ok := RayAABB(c0, vrel, min, max)
	if !ok || hit.Toi < 0 || hit.Toi > 1 {
		return Hit{}, false
	}
	centerAtHit := c0.Add(vrel.Mul(hit.Toi))
	contact := centerAtHit.Sub(mulElem(hit.Normal, h0))
	return Hit{Toi: hit.Toi, Normal: hit.Normal, Contact: contact}, true
}

// SweepCircleAABB sweeps a circle (c,r,v) against an AABB (boxC,boxH,boxV)
// via Minkowski expansion: a ray against the box inflated by r.
func SweepCircleAABB(c mgl32.Vec2, r float32, v, boxC, boxH, boxV mgl32.Vec2) (Hit, bool) {
	vrel := v.Sub(boxV)
	if lenSq(vrel) <= epsilon {
		return Hit{}, false
	}
	rvec := mgl32.Vec2{r, r}
	min := boxC.Sub(boxH).Sub(rvec)
	max := boxC.Add(boxH).Add(rvec)
	hit, ok := RayAABB(c, vrel, min, max)
	if !ok || hit.Toi < 0 || hit.Toi > 1 {
		return Hit{}, false
	}
	centerAtHit := c.Add(vrel.Mul(hit.Toi))
	contact := centerAtHit.Sub(hit.Normal.Mul(r))
	return Hit{Toi: hit.Toi, Normal: hit.Normal, Contact: contact}, true
}

// SweepCircleCircle sweeps circle A (c0,r0,v0) against circle B
// (c1,r1,v1) via a ray from c0 against a circle at c1 with combined radius.
func SweepCircleCircle(c0 mgl32.Vec2, r0 float32, v0 mgl32.Vec2, c1 mgl32.Vec2, r1 float32, v1 mgl32.Vec2) (Hit, bool) {
	vrel := v0.Sub(v1)
	if lenSq(vrel) <= epsilon {
		return Hit{}, false
	}
	rsum := r0 + r1
	hit, ok := RayCircle(c0, vrel, c1, rsum)
	if !ok || hit.Toi < 0 || hit.Toi > 1 {
		return Hit{}, false
	}
	centerAtHit := c0.Add(vrel.Mul(hit.Toi))
	contact := centerAtHit.Sub(hit.Normal.Mul(r0))
	return Hit{Toi: hit.Toi, Normal: hit.Normal, Contact: contact}, true
}

// AABBTilePushout computes the minimum-axis push vector moving an AABB
// (c,he) out of a single solid tile spanning [tileMin, tileMin+cell].
// Not present in the reference implementation; derived from
// OverlapAABBAABB by treating the tile as a box of half-extent cell/2.
func AABBTilePushout(c, he, tileMin mgl32.Vec2, cell float32) (Overlap, bool) {
	half := cell / 2
	tileCenter := tileMin.Add(mgl32.Vec2{half, half})
	return OverlapAABBAABB(c, he, tileCenter, mgl32.Vec2{half, half})
}

// CircleTilePushout computes the minimum push vector moving a circle
// (c,r) out of a single solid tile, clamping the closest point on the
// tile box to the circle center (standard circle-vs-AABB penetration).
func CircleTilePushout(c mgl32.Vec2, r float32, tileMin mgl32.Vec2, cell float32) (Overlap, bool) {
	tileMax := tileMin.Add(mgl32.Vec2{cell, cell})
	closest := mgl32.Vec2{clamp(c[0], tileMin[0], tileMax[0]), clamp(c[1], tileMin[1], tileMax[1])}
	delta := c.Sub(closest)
	dist2 := lenSq(delta)

	if dist2 > 0 {
		dist := sqrt32(dist2)
		if dist >= r {
			return Overlap{}, false
		}
		normal := delta.Mul(1 / dist)
		depth := r - dist
		contact := closest
		return Overlap{Normal: normal, Depth: depth, Contact: contact}, true
	}

	// Center is inside the tile box: push out along the axis of least
	// penetration, same choice as OverlapAABBAABB.
	half := cell / 2
	tileCenter := tileMin.Add(mgl32.Vec2{half, half})
	d := c.Sub(tileCenter)
	ox := half + r - abs32(d[0])
	oy := half + r - abs32(d[1])
	var normal mgl32.Vec2
	var depth float32
	if ox <= oy {
		nx := float32(1.0)
		if d[0] < 0 {
			nx = -1.0
		}
		normal, depth = mgl32.Vec2{nx, 0}, ox
	} else {
		ny := float32(1.0)
		if d[1] < 0 {
			ny = -1.0
		}
		normal, depth = mgl32.Vec2{0, ny}, oy
	}
	contact := c.Sub(normal.Mul(r))
	return Overlap{Normal: normal, Depth: maxf(depth, 0), Contact: contact}, true
}

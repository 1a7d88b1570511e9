// Package geometry bridges the shape model and the polygon-clipping library:
// outline conversion, input repair, guarded boolean operations, and ring
// grouping for multi-part results.
package geometry

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// minRingArea is the area below which a ring is treated as degenerate noise
// left behind by clipping and dropped.
const minRingArea = 1e-9

// ToPolygon converts a world-space outline into a single-ring polygon.
func ToPolygon(o model.Outline) geom.Polygon {
	p := make(geom.Polygon, 1)
	p[0] = make([]geom.Point, 0, len(o))
	for _, v := range o {
		p[0] = append(p[0], geom.Point{X: v.X, Y: v.Y})
	}
	return p
}

// RectPolygon converts a rectangle into a single-ring polygon.
func RectPolygon(r model.Rect) geom.Polygon {
	return geom.Polygon{{
		{X: r.X, Y: r.Y},
		{X: r.Right(), Y: r.Y},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.X, Y: r.Bottom()},
	}}
}

// PartsToPolygon flattens tile parts back into one polygon, outer rings and
// holes together, for feeding into further boolean operations.
func PartsToPolygon(parts []model.PolygonPart) geom.Polygon {
	var p geom.Polygon
	for _, part := range parts {
		p = append(p, ToPolygon(part.Outer)[0])
		for _, h := range part.Holes {
			p = append(p, ToPolygon(h)[0])
		}
	}
	return p
}

// ringToOutline converts one polygon ring back to a model outline.
func ringToOutline(ring []geom.Point) model.Outline {
	o := make(model.Outline, 0, len(ring))
	for _, pt := range ring {
		o = append(o, model.Point2D{X: pt.X, Y: pt.Y})
	}
	return o
}

// ringArea returns the signed shoelace area of a ring. Positive for one
// winding direction, negative for the other.
func ringArea(ring []geom.Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum / 2
}

// dedupeRing drops consecutive duplicate vertices, including a closing vertex
// equal to the first one.
func dedupeRing(ring []geom.Point) []geom.Point {
	if len(ring) == 0 {
		return ring
	}
	out := make([]geom.Point, 0, len(ring))
	for _, pt := range ring {
		if len(out) > 0 && samePoint(out[len(out)-1], pt) {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func samePoint(a, b geom.Point) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

// Repair cleans a polygon before or after clipping: consecutive duplicate
// vertices are removed and rings with fewer than three vertices or near-zero
// area are dropped.
func Repair(p geom.Polygon) geom.Polygon {
	out := make(geom.Polygon, 0, len(p))
	for _, ring := range p {
		ring = dedupeRing(ring)
		if len(ring) < 3 {
			continue
		}
		if math.Abs(ringArea(ring)) < minRingArea {
			continue
		}
		out = append(out, ring)
	}
	return out
}

// safeOp runs one clipping operation, converting a library panic on
// degenerate input into an error.
func safeOp(name string, f func() geom.Polygon) (res geom.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%s failed: %v", name, r)
		}
	}()
	return f(), nil
}

// Union returns a combined with b.
func Union(a, b geom.Polygon) (geom.Polygon, error) {
	return safeOp("union", func() geom.Polygon { return a.Union(b).(geom.Polygon) })
}

// Intersect returns the overlap of a and b.
func Intersect(a, b geom.Polygon) (geom.Polygon, error) {
	return safeOp("intersection", func() geom.Polygon { return a.Intersection(b).(geom.Polygon) })
}

// Difference returns a with b removed.
func Difference(a, b geom.Polygon) (geom.Polygon, error) {
	return safeOp("difference", func() geom.Polygon { return a.Difference(b).(geom.Polygon) })
}

// IntersectionArea returns the exact overlap area between an outline and a
// rectangle. The result of clipping a simple outline by a rectangle has no
// holes, so the area is the plain sum over result rings.
func IntersectionArea(o model.Outline, r model.Rect) (float64, error) {
	if len(o) < 3 {
		return 0, nil
	}
	res, err := Intersect(Repair(ToPolygon(o)), RectPolygon(r))
	if err != nil {
		return 0, err
	}
	var area float64
	for _, ring := range res {
		area += math.Abs(ringArea(ring))
	}
	return area, nil
}

// PointInRing reports whether p lies inside the ring, by ray casting.
// Points exactly on the boundary may land on either side.
func PointInRing(p model.Point2D, ring []geom.Point) bool {
	if len(ring) < 3 {
		return false
	}
	inside := false
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := ring[i], ring[j]
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}
	return inside
}

// FromPolygon groups the rings of a clipping result into parts: each ring
// nested inside an even number of other rings starts a part, each ring at odd
// nesting depth becomes a hole of the smallest part ring containing it.
// Winding order of the input is irrelevant.
func FromPolygon(p geom.Polygon) []model.PolygonPart {
	rings := Repair(p)
	if len(rings) == 0 {
		return nil
	}

	depth := make([]int, len(rings))
	for i := range rings {
		probe := model.Point2D{X: rings[i][0].X, Y: rings[i][0].Y}
		for j := range rings {
			if i == j {
				continue
			}
			if PointInRing(probe, rings[j]) {
				depth[i]++
			}
		}
	}

	type outer struct {
		ringIndex int
		area      float64
		part      model.PolygonPart
	}
	var outers []outer
	for i, ring := range rings {
		if depth[i]%2 == 0 {
			outers = append(outers, outer{
				ringIndex: i,
				area:      math.Abs(ringArea(ring)),
				part:      model.PolygonPart{Outer: ringToOutline(ring)},
			})
		}
	}

	for i, ring := range rings {
		if depth[i]%2 == 0 {
			continue
		}
		probe := model.Point2D{X: ring[0].X, Y: ring[0].Y}
		best := -1
		for oi := range outers {
			if !PointInRing(probe, rings[outers[oi].ringIndex]) {
				continue
			}
			if best == -1 || outers[oi].area < outers[best].area {
				best = oi
			}
		}
		if best == -1 {
			// Orphan hole, drop it rather than invert some unrelated part.
			continue
		}
		outers[best].part.Holes = append(outers[best].part.Holes, ringToOutline(ring))
	}

	parts := make([]model.PolygonPart, 0, len(outers))
	for _, o := range outers {
		parts = append(parts, o.part)
	}
	return parts
}

// PartsArea sums the net area of grouped parts.
func PartsArea(parts []model.PolygonPart) float64 {
	var a float64
	for _, p := range parts {
		a += p.Area()
	}
	return a
}

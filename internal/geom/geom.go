// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geom provides the 2D primitives used to reconcile link rectangles
// with SVG path geometry: axis-aligned boxes, segment tests, and coordinate
// sampling of path data.
package geom

import "math"

// Point is a location in a 2D coordinate space.
type Point struct {
	X, Y float64
}

// BBox is an axis-aligned rectangle with X1 <= X2 and Y1 <= Y2. The
// coordinate space is whatever it was computed in; callers must not compare
// boxes from different spaces.
type BBox struct {
	X1, Y1, X2, Y2 float64
}

// NewBBox returns the normalized box spanning the two corners.
func NewBBox(x1, y1, x2, y2 float64) BBox {
	return BBox{
		X1: math.Min(x1, x2),
		Y1: math.Min(y1, y2),
		X2: math.Max(x1, x2),
		Y2: math.Max(y1, y2),
	}
}

// FromRect converts an origin-and-extent rectangle into a box.
func FromRect(x, y, width, height float64) BBox {
	return NewBBox(x, y, x+width, y+height)
}

func (b BBox) Width() float64  { return b.X2 - b.X1 }
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }
func (b BBox) Area() float64   { return b.Width() * b.Height() }

// Contains reports whether (x, y) lies inside b, edges included.
func (b BBox) Contains(x, y float64) bool {
	return b.X1 <= x && x <= b.X2 && b.Y1 <= y && y <= b.Y2
}

// Overlap returns the intersection of b and o. The second result is false
// unless the intersection has strictly positive width and height.
func (b BBox) Overlap(o BBox) (BBox, bool) {
	r := BBox{
		X1: math.Max(b.X1, o.X1),
		Y1: math.Max(b.Y1, o.Y1),
		X2: math.Min(b.X2, o.X2),
		Y2: math.Min(b.Y2, o.Y2),
	}
	if r.X1 < r.X2 && r.Y1 < r.Y2 {
		return r, true
	}
	return BBox{}, false
}

// FlipY mirrors b vertically about a page of the given height, mapping
// bottom-origin PDF coordinates to top-origin SVG coordinates and back.
func FlipY(b BBox, pageHeight float64) BBox {
	return NewBBox(b.X1, pageHeight-b.Y1, b.X2, pageHeight-b.Y2)
}

// RectanglesIntersect reports whether a and b share at least one point.
// Touching edges count as intersecting.
func RectanglesIntersect(a, b BBox) bool {
	return !(a.X2 < b.X1 || b.X2 < a.X1 || a.Y2 < b.Y1 || b.Y2 < a.Y1)
}

// ccw reports whether p, q, r turn counter-clockwise.
func ccw(p, q, r Point) bool {
	return (r.Y-p.Y)*(q.X-p.X) > (q.Y-p.Y)*(r.X-p.X)
}

// SegmentsIntersect reports whether segment p1-p2 crosses segment p3-p4.
// Collinear overlaps are not detected.
func SegmentsIntersect(p1, p2, p3, p4 Point) bool {
	return ccw(p1, p3, p4) != ccw(p2, p3, p4) && ccw(p1, p2, p3) != ccw(p1, p2, p4)
}

// SegmentIntersectsRect reports whether the segment (x1,y1)-(x2,y2) has an
// endpoint inside r or crosses one of its edges.
func SegmentIntersectsRect(x1, y1, x2, y2 float64, r BBox) bool {
	if r.Contains(x1, y1) || r.Contains(x2, y2) {
		return true
	}
	a, b := Point{x1, y1}, Point{x2, y2}
	edges := [4][2]Point{
		{{r.X1, r.Y1}, {r.X1, r.Y2}}, // left
		{{r.X2, r.Y1}, {r.X2, r.Y2}}, // right
		{{r.X1, r.Y1}, {r.X2, r.Y1}}, // top
		{{r.X1, r.Y2}, {r.X2, r.Y2}}, // bottom
	}
	for _, e := range edges {
		if SegmentsIntersect(a, b, e[0], e[1]) {
			return true
		}
	}
	return false
}

package game

import "math"

// edgeTolerance is the slack used by Contains for colinearity and range tests.
const edgeTolerance = 1e-6

// Edge is one cushion facet: an oriented segment whose normal points into
// the playing surface.
type Edge struct {
	ID        string `json:"id"`
	P1        Vec2   `json:"p1"`
	P2        Vec2   `json:"p2"`
	Direction Vec2   `json:"direction"` // normalized direction from p1 to p2
	Normal    Vec2   `json:"normal"`    // left normal of direction
	length    float64
}

// NewEdge builds an edge from p1 to p2.
func NewEdge(id string, p1, p2 Vec2) Edge {
	d := p2.Minus(p1)
	dir := d.Normalize()
	return Edge{
		ID:        id,
		P1:        p1,
		P2:        p2,
		Direction: dir,
		Normal:    dir.LeftNormal(),
		length:    d.Magnitude(),
	}
}

func (e Edge) Length() float64 {
	return e.length
}

// ClosestPoint returns the point of the segment nearest to p.
func (e Edge) ClosestPoint(p Vec2) Vec2 {
	c, _ := closestPointOnSegment(e.P1, e.P2, p)
	return c
}

func (e Edge) DistanceTo(p Vec2) float64 {
	return e.ClosestPoint(p).DistanceTo(p)
}

// Contains reports whether p lies on the segment, within tolerance.
func (e Edge) Contains(p Vec2) bool {
	if e.length == 0 {
		return p.DistanceTo(e.P1) <= edgeTolerance
	}
	rel := p.Minus(e.P1)
	if math.Abs(rel.Cross(e.Direction)) > edgeTolerance*math.Max(1, e.length) {
		return false
	}
	t := rel.Dot(e.Direction)
	return t >= -edgeTolerance && t <= e.length+edgeTolerance
}

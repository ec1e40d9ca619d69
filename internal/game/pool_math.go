package game

import "math"

func degToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// MapRange linearly maps value from [inMin, inMax] onto [outMin, outMax],
// clamping to the output range. A degenerate input range maps to outMin.
func MapRange(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	t := (value - inMin) / (inMax - inMin)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return outMin + t*(outMax-outMin)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// closestPointOnSegment returns the point on a-b nearest to p and the
// projection parameter t in [0, 1].
func closestPointOnSegment(a, b, p Vec2) (Vec2, float64) {
	ab := b.Minus(a)
	lenSq := ab.MagnitudeSquared()
	if lenSq == 0 {
		return a, 0
	}
	t := clamp(p.Minus(a).Dot(ab)/lenSq, 0, 1)
	return a.Plus(ab.Times(t)), t
}

// pointInPolygon is the even-odd ray cast test.
func pointInPolygon(p Vec2, poly []Vec2) bool {
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xCross := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// checkObjectsConverging returns true if two objects are moving toward each other.
func checkObjectsConverging(posA, posB Vec2, velA, velB Vec2) bool {
	relVel := velA.Minus(velB)
	return relVel.Dot(posB.Minus(posA)) > 0
}

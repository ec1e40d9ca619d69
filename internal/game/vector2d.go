package game

import "math"

// Vec2 is a 2D vector in table units.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Vec2FromAngle returns the unit vector pointing at degrees.
func Vec2FromAngle(degrees float64) Vec2 {
	rad := degToRad(degrees)
	return Vec2{X: math.Cos(rad), Y: math.Sin(rad)}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector, or the zero vector when v has no length.
func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / m, Y: v.Y / m}
}

func (v Vec2) RightNormal() Vec2 {
	return Vec2{X: v.Y, Y: -v.X}
}

func (v Vec2) LeftNormal() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Rotate turns v by degrees around the origin.
func (v Vec2) Rotate(degrees float64) Vec2 {
	rad := degToRad(degrees)
	sin, cos := math.Sincos(rad)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Reflect mirrors v over the unit normal n: v - 2(v·n)n.
func (v Vec2) Reflect(n Vec2) Vec2 {
	return v.Minus(n.Times(2 * v.Dot(n)))
}

func (v Vec2) Invert() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

// Angle returns the bearing of v in degrees, zero for the zero vector.
func (v Vec2) Angle() float64 {
	if v.IsZero() {
		return 0
	}
	return radToDeg(math.Atan2(v.Y, v.X))
}

// AngleBetween returns the unsigned angle to o in degrees.
func (v Vec2) AngleBetween(o Vec2) float64 {
	return radToDeg(math.Acos(v.AngleBetweenCos(o)))
}

// AngleBetweenCos returns the cosine of the angle to o, clamped to [-1, 1].
func (v Vec2) AngleBetweenCos(o Vec2) float64 {
	denom := v.Magnitude() * o.Magnitude()
	if denom == 0 {
		return 1
	}
	cos := v.Dot(o) / denom
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return cos
}

func (v Vec2) DistanceTo(o Vec2) float64 {
	return v.Minus(o).Magnitude()
}

func (v Vec2) DistanceSquaredTo(o Vec2) float64 {
	return v.Minus(o).MagnitudeSquared()
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// AddInPlace accumulates o into v.
func (v *Vec2) AddInPlace(o Vec2) {
	v.X += o.X
	v.Y += o.Y
}

// ScaleInPlace multiplies v by s.
func (v *Vec2) ScaleInPlace(s float64) {
	v.X *= s
	v.Y *= s
}

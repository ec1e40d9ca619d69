package game

// Ball numbering and the standard table dimensions, in table units.
// Cushion faces sit at x = ±500 and y = ±250 with the origin at the table centre.
const (
	NumBalls  = 16 // 0=cue, 1-7=solids, 8=eight, 9-15=stripes
	CueBall   = 0
	EightBall = 8

	DefaultBallRadius   = 16.0
	DefaultPocketRadius = 18.0 // capture radius around a pocket centre

	// Half extents of the cushion faces.
	TableHalfWidth  = 500.0
	TableHalfHeight = 250.0

	// Shot input ranges.
	MaxPower = 100.0
	MaxSpin  = 50.0
)

package game

// Spin is the english put on a ball, in shot units (-MaxSpin..MaxSpin).
type Spin struct {
	Side     float64 `json:"side"`     // lateral english, bends cushion rebounds
	Vertical float64 `json:"vertical"` // positive is topspin, negative is backspin
}

// Ball is the mutable state of one numbered ball.
type Ball struct {
	Number           int
	Position         Vec2
	PreviousPosition Vec2
	Velocity         Vec2 // per-tick displacement
	PendingForce     Vec2 // collision impulse folded into Velocity at the next tick
	Spin             Spin
	OnTable          bool
	Pocket           *Pocket
}

// NewBall creates a ball at rest on the table.
func NewBall(number int, pos Vec2) *Ball {
	return &Ball{
		Number:           number,
		Position:         pos,
		PreviousPosition: pos,
		OnTable:          true,
	}
}

// InPlay reports whether the ball takes part in collisions.
func (b *Ball) InPlay() bool {
	return b.OnTable && b.Pocket == nil
}

// IsStopped reports whether the ball's speed is below the threshold.
func (b *Ball) IsStopped(minForceSquared float64) bool {
	return b.Velocity.MagnitudeSquared() < minForceSquared
}

// IsResting reports whether the ball has neither speed nor a pending impulse.
func (b *Ball) IsResting(minForceSquared float64) bool {
	return b.IsStopped(minForceSquared) && b.PendingForce.MagnitudeSquared() < minForceSquared
}

// ApplyFriction scales the velocity by friction and snaps it to zero below
// the threshold.
func (b *Ball) ApplyFriction(friction, minForceSquared float64) {
	b.Velocity.ScaleInPlace(friction)
	if b.Velocity.MagnitudeSquared() < minForceSquared {
		b.Velocity = Vec2{}
	}
}

// Stop zeroes all motion and spin.
func (b *Ball) Stop() {
	b.Velocity = Vec2{}
	b.PendingForce = Vec2{}
	b.Spin = Spin{}
}

// Reset puts the ball back on the table at pos, at rest.
func (b *Ball) Reset(pos Vec2) {
	b.Stop()
	b.Position = pos
	b.PreviousPosition = pos
	b.OnTable = true
	b.Pocket = nil
}

// Record is the flat wire form of a ball.
type Record struct {
	Number   int     `json:"number"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	OnTable  bool    `json:"onTable"`
	PocketID *int    `json:"pocketId,omitempty"`
}

// Record serializes the ball.
func (b *Ball) Record() Record {
	r := Record{
		Number:  b.Number,
		X:       b.Position.X,
		Y:       b.Position.Y,
		VX:      b.Velocity.X,
		VY:      b.Velocity.Y,
		OnTable: b.OnTable,
	}
	if b.Pocket != nil {
		id := b.Pocket.ID
		r.PocketID = &id
	}
	return r
}

// ApplyRecord overwrites the ball's position, velocity and table state.
// The pocket id is resolved against table; unknown ids clear the pocket.
// A ball in a known pocket is off the table whatever OnTable says.
// Spin and pending impulses are dropped since records do not carry them.
func (b *Ball) ApplyRecord(r Record, table *Table) {
	b.Position = NewVec2(r.X, r.Y)
	b.PreviousPosition = b.Position
	b.Velocity = NewVec2(r.VX, r.VY)
	b.PendingForce = Vec2{}
	b.Spin = Spin{}
	b.OnTable = r.OnTable
	b.Pocket = nil
	if r.PocketID != nil && table != nil {
		b.Pocket = table.PocketByID(*r.PocketID)
	}
	if b.Pocket != nil {
		b.OnTable = false
	}
}

// BallFromRecord deserializes a ball.
func BallFromRecord(r Record, table *Table) *Ball {
	b := &Ball{Number: r.Number}
	b.ApplyRecord(r, table)
	return b
}

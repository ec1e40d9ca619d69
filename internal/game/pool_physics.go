package game

import "math"

// separationEpsilon is the overlap tolerated before two balls are pushed apart.
const separationEpsilon = 1e-9

// Controller advances a ball set by one fixed tick at a time, resolving
// pocket captures, cushion rebounds and ball contacts and raising events.
// It is not safe for concurrent use.
type Controller struct {
	table  *Table
	tuning Tuning
	events Dispatcher

	wasMoving  bool
	allStopped bool

	// contacts marks ball pairs already resolved during the current tick.
	contacts [NumBalls][NumBalls]bool
}

// NewController creates a controller over validated geometry and tuning.
func NewController(table *Table, tuning Tuning) *Controller {
	return &Controller{
		table:      table,
		tuning:     tuning,
		allStopped: true,
	}
}

// On registers the handler for kind.
func (c *Controller) On(kind EventKind, h Handler) {
	c.events.On(kind, h)
}

// AllStopped reports the rest state computed by the last tick.
func (c *Controller) AllStopped() bool {
	return c.allStopped
}

func (c *Controller) Table() *Table {
	return c.table
}

func (c *Controller) Tuning() Tuning {
	return c.tuning
}

// Resting reports whether every in-play ball has neither speed nor a pending
// impulse. It does not touch the controller's edge state.
func (c *Controller) Resting(balls []*Ball) bool {
	for _, b := range balls {
		if b == nil || !b.InPlay() {
			continue
		}
		if !b.IsResting(c.tuning.MinForceSquared) {
			return false
		}
	}
	return true
}

// Reset clears the stop-edge state, e.g. after the ball set was replaced.
func (c *Controller) Reset(balls []*Ball) {
	c.allStopped = c.Resting(balls)
	c.wasMoving = !c.allStopped
}

// Tick advances balls by exactly one tick.
func (c *Controller) Tick(balls []*Ball) {
	c.contacts = [NumBalls][NumBalls]bool{}
	for _, b := range balls {
		if b == nil {
			continue
		}
		b.Velocity.AddInPlace(b.PendingForce)
		b.PendingForce = Vec2{}
		b.PreviousPosition = b.Position
	}

	for _, b := range balls {
		if b == nil || !b.InPlay() {
			continue
		}
		c.advance(b, balls)
		if !b.InPlay() {
			continue
		}
		b.ApplyFriction(c.tuning.Friction, c.tuning.MinForceSquared)
		c.decaySpin(b)
	}

	c.separate(balls)

	c.allStopped = c.Resting(balls)
	if c.allStopped && c.wasMoving {
		c.events.emit(Event{Kind: EventBallsStopped, Ball: -1})
	}
	c.wasMoving = !c.allStopped
}

// advance moves b along its velocity in sub-steps no longer than
// SubStepLength so a fast ball cannot pass through a cushion.
func (c *Controller) advance(b *Ball, balls []*Ball) {
	if c.capture(b, c.table.Geometry(c.table.QuadrantOf(b.Position)).Pockets) {
		return
	}

	speed := b.Velocity.Magnitude()
	remaining := speed
	for remaining > 0 {
		dir := b.Velocity.Normalize()
		if dir.IsZero() {
			return
		}
		step := math.Min(c.tuning.SubStepLength, remaining)
		remaining -= step

		next := b.Position.Plus(dir.Times(step))
		geo := c.table.Geometry(c.table.QuadrantOf(next))

		if !c.table.Playable.Contains(next) {
			if c.bankCorner(b, next, geo.Corners) || c.bankEdge(b, next, geo.Edges) {
				// Travel left in this tick shrinks with the speed lost.
				newSpeed := b.Velocity.Magnitude()
				if speed > 0 {
					remaining *= newSpeed / speed
				}
				speed = newSpeed
				continue
			}
		}

		if other := c.firstContact(b, next, balls); other != nil {
			// The struck side of a contact already resolved this tick holds
			// its position; its share arrives through PendingForce.
			if !c.markContact(b, other) {
				return
			}
			c.resolveBallBall(b, other, next)
			return
		}

		b.Position = next
		if c.capture(b, geo.Pockets) {
			return
		}
	}
}

// capture pots b if it lies within the capture radius of any pocket.
func (c *Controller) capture(b *Ball, pockets []Pocket) bool {
	rSq := c.table.PocketRadius * c.table.PocketRadius
	for _, p := range pockets {
		if b.Position.DistanceSquaredTo(p.Position) > rSq {
			continue
		}
		pocket := c.table.PocketByID(p.ID)
		if pocket == nil {
			continue
		}
		c.pot(b, pocket)
		return true
	}
	return false
}

func (c *Controller) pot(b *Ball, pocket *Pocket) {
	// Remaining travel is spent drawing the ball onto the pocket centre.
	steps := c.tuning.PocketSnapSteps
	for i := 0; i < steps; i++ {
		left := float64(steps - i)
		b.Position = b.Position.Plus(pocket.Position.Minus(b.Position).Times(1 / left))
	}
	b.Position = pocket.Position
	b.Pocket = pocket
	b.OnTable = false
	b.Stop()

	c.events.emit(Event{Kind: EventBallIntoHole, Ball: b.Number, Pocket: pocket.ID})
}

// bankCorner bounces b off the nearest boundary vertex it touches at next.
func (c *Controller) bankCorner(b *Ball, next Vec2, corners []Corner) bool {
	rSq := c.table.BallRadius * c.table.BallRadius
	var hit *Corner
	best := math.Inf(1)
	for i := range corners {
		corner := &corners[i]
		d := next.DistanceSquaredTo(corner.Position)
		if d > rSq || b.Velocity.Dot(corner.Normal) >= 0 {
			continue
		}
		if d < best {
			hit, best = corner, d
		}
	}
	if hit == nil {
		return false
	}
	c.bounce(b, hit.Normal, hit.ID)
	return true
}

// bankEdge bounces b off the nearest cushion facet it touches at next.
func (c *Controller) bankEdge(b *Ball, next Vec2, edges []Edge) bool {
	rSq := c.table.BallRadius * c.table.BallRadius
	var hit *Edge
	best := math.Inf(1)
	for i := range edges {
		edge := &edges[i]
		d := edge.ClosestPoint(next).DistanceSquaredTo(next)
		if d > rSq || b.Velocity.Dot(edge.Normal) >= 0 {
			continue
		}
		if d < best {
			hit, best = edge, d
		}
	}
	if hit == nil {
		return false
	}
	c.bounce(b, hit.Normal, hit.ID)
	return true
}

// bounce reflects b's velocity about normal, applies the cushion loss and
// bends the rebound by side spin, which halves on every bounce.
func (c *Controller) bounce(b *Ball, normal Vec2, bankID string) {
	v := b.Velocity.Reflect(normal).Times(c.tuning.CushionRestitution)

	if b.Spin.Side != 0 {
		v = v.Rotate(-b.Spin.Side * c.tuning.SideSpinAngle)
		b.Spin.Side *= c.tuning.SideSpinDecay
		if math.Abs(b.Spin.Side) < 0.1 {
			b.Spin.Side = 0
		}
	}

	// A bent rebound still has to leave the cushion.
	if dot := v.Dot(normal); dot < 0 {
		v = v.Minus(normal.Times(dot))
	}

	b.Velocity = v
	c.events.emit(Event{Kind: EventBallWithBank, Ball: b.Number, Bank: bankID})
}

// firstContact returns the nearest in-play ball that b would touch at next
// while the two are converging.
func (c *Controller) firstContact(b *Ball, next Vec2, balls []*Ball) *Ball {
	diam := 2 * c.table.BallRadius
	diamSq := diam * diam
	var hit *Ball
	best := math.Inf(1)
	for _, o := range balls {
		if o == nil || o == b || !o.InPlay() {
			continue
		}
		d := next.DistanceSquaredTo(o.Position)
		if d > diamSq {
			continue
		}
		if !checkObjectsConverging(next, o.Position, b.Velocity, o.Velocity.Plus(o.PendingForce)) {
			continue
		}
		if d < best {
			hit, best = o, d
		}
	}
	return hit
}

// markContact records the pair for this tick and reports whether it was new.
// Numbers outside the rack are never tracked.
func (c *Controller) markContact(a, b *Ball) bool {
	i, j := a.Number, b.Number
	if i < 0 || j < 0 || i >= NumBalls || j >= NumBalls {
		return true
	}
	if i > j {
		i, j = j, i
	}
	if c.contacts[i][j] {
		return false
	}
	c.contacts[i][j] = true
	return true
}

// resolveBallBall separates b from o along the line of centres and splits
// the normal components of their velocities. The mover's new velocity is
// applied now; the struck ball's change waits in PendingForce until the next
// tick so it cannot resolve the same contact again.
func (c *Controller) resolveBallBall(b, o *Ball, next Vec2) {
	diam := 2 * c.table.BallRadius

	n := o.Position.Minus(next).Normalize()
	if n.IsZero() {
		n = b.Velocity.Normalize()
	}
	b.Position = o.Position.Minus(n.Times(diam))

	vb := b.Velocity
	vo := o.Velocity.Plus(o.PendingForce)

	// Incidence between the approach and the line of centres sets how much
	// of the mover's speed is carried along the normal.
	incidence := vb.AngleBetweenCos(n)
	ballNormal := n.Times(vb.Magnitude() * incidence)
	ballTangent := vb.Minus(ballNormal)
	targetNormal := n.Times(vo.Dot(n))

	e := c.tuning.BallElasticity
	newBallNormal := targetNormal.Times(e).Plus(ballNormal.Times(1 - e))
	newTargetNormal := ballNormal.Times(e).Plus(targetNormal.Times(1 - e))

	impact := ballNormal.Minus(targetNormal).Magnitude()

	b.Velocity = ballTangent.Plus(newBallNormal)
	o.PendingForce.AddInPlace(newTargetNormal.Minus(targetNormal))

	// Topspin follows the object ball, backspin draws the cue ball back.
	if b.Number == CueBall && b.Spin.Vertical != 0 {
		b.Velocity.AddInPlace(n.Times(b.Spin.Vertical * c.tuning.DrawFactor * impact))
		b.Spin.Vertical = 0
	}

	c.events.emit(Event{Kind: EventBallWithBall, Ball: b.Number, Other: o.Number, Impact: impact})
}

func (c *Controller) decaySpin(b *Ball) {
	if b.Velocity.IsZero() {
		b.Spin = Spin{}
		return
	}
	b.Spin.Vertical *= c.tuning.SpinDecay
	if math.Abs(b.Spin.Vertical) < 0.1 {
		b.Spin.Vertical = 0
	}
}

// separate pushes overlapping in-play balls apart along their line of
// centres, sharing the correction equally.
func (c *Controller) separate(balls []*Ball) {
	diam := 2 * c.table.BallRadius
	for pass := 0; pass < c.tuning.SeparationPasses; pass++ {
		moved := false
		for i, a := range balls {
			if a == nil || !a.InPlay() {
				continue
			}
			for _, o := range balls[i+1:] {
				if o == nil || !o.InPlay() {
					continue
				}
				d := a.Position.DistanceTo(o.Position)
				if d >= diam-separationEpsilon {
					continue
				}
				n := o.Position.Minus(a.Position).Normalize()
				if n.IsZero() {
					n = NewVec2(1, 0)
				}
				push := n.Times((diam - d) / 2)
				a.Position = a.Position.Minus(push)
				o.Position = o.Position.Plus(push)
				moved = true
			}
		}
		if !moved {
			return
		}
	}
}

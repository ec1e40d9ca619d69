package game

import (
	"go.uber.org/zap"
)

// State is the engine's shot lifecycle.
type State string

const (
	StateIdle       State = "IDLE"
	StateSimulating State = "SIMULATING"
)

// PocketedBall records a ball potted during the current shot.
type PocketedBall struct {
	Number   int `json:"number"`
	PocketID int `json:"pocketId"`
}

// Frame is what a host receives for every tick.
type Frame struct {
	Tick     uint64   `json:"tick"`
	State    State    `json:"state"`
	Snapshot Snapshot `json:"snapshot"`
	Events   []Event  `json:"events"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine owns the ball set and the controller and runs shots tick by tick.
// It is single threaded: callers serialize access, and handlers registered
// with On run inside Tick.
type Engine struct {
	table      *Table
	tuning     Tuning
	controller *Controller
	balls      [NumBalls]*Ball

	state   State
	ticking bool
	tick    uint64

	firstBallHit *int
	pocketed     []PocketedBall
	frameEvents  []Event

	handlers Dispatcher
	log      *zap.Logger
}

// NewEngine creates an engine for a validated config and racks the balls.
func NewEngine(cfg Config, opts ...Option) *Engine {
	table := NewTable(cfg.Table)
	e := &Engine{
		table:      table,
		tuning:     cfg.Tuning,
		controller: NewController(table, cfg.Tuning),
		state:      StateIdle,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.controller.On(EventBallIntoHole, e.onBallIntoHole)
	e.controller.On(EventBallWithBall, e.onBallWithBall)
	e.controller.On(EventBallWithBank, e.forward)
	e.controller.On(EventBallsStopped, e.forward)

	e.InitRack()
	return e
}

// On registers an external handler for kind. Handlers run synchronously
// inside Tick, after the engine has updated its own shot tracking.
func (e *Engine) On(kind EventKind, h Handler) {
	e.handlers.On(kind, h)
}

func (e *Engine) Table() *Table {
	return e.table
}

func (e *Engine) State() State {
	return e.state
}

// TickCount returns the number of ticks run since construction.
func (e *Engine) TickCount() uint64 {
	return e.tick
}

// InitRack puts all sixteen balls on their rack positions at rest.
func (e *Engine) InitRack() {
	for i := 0; i < NumBalls; i++ {
		if e.balls[i] == nil {
			e.balls[i] = NewBall(i, e.table.Rack[i])
			continue
		}
		e.balls[i].Reset(e.table.Rack[i])
	}
	e.state = StateIdle
	e.firstBallHit = nil
	e.pocketed = nil
	e.controller.Reset(e.balls[:])
	e.log.Debug("balls racked")
}

// Shoot strikes the cue ball. angleDegrees is the direction of travel,
// power is 0..MaxPower and spin components are -MaxSpin..MaxSpin. It fails
// without touching any state when a shot is already running or the cue ball
// is not on the table.
func (e *Engine) Shoot(angleDegrees, power float64, spin Spin) bool {
	if e.state == StateSimulating || e.ticking {
		return false
	}
	cue := e.balls[CueBall]
	if cue == nil || !cue.InPlay() {
		return false
	}

	force := MapRange(clamp(power, 0, MaxPower), 0, MaxPower, 0, e.tuning.MaxForce)

	e.firstBallHit = nil
	e.pocketed = nil

	cue.Spin = Spin{
		Side:     clamp(spin.Side, -MaxSpin, MaxSpin),
		Vertical: clamp(spin.Vertical, -MaxSpin, MaxSpin),
	}
	cue.PendingForce = Vec2FromAngle(angleDegrees).Times(force)

	if e.controller.Resting(e.balls[:]) {
		cue.Stop()
		e.log.Debug("shot has no force, table stays at rest",
			zap.Float64("angle", angleDegrees), zap.Float64("power", power))
		return true
	}

	// Arm the stop edge so a shot that dies in its first tick still
	// raises balls-stopped.
	e.controller.Reset(e.balls[:])
	e.state = StateSimulating
	e.log.Debug("shot started",
		zap.Float64("angle", angleDegrees),
		zap.Float64("power", power),
		zap.Float64("force", force),
		zap.Float64("side", cue.Spin.Side),
		zap.Float64("vertical", cue.Spin.Vertical))
	return true
}

// Tick advances one fixed step while a shot is running and returns the
// resulting frame. While idle it returns the current frame unchanged.
func (e *Engine) Tick() Frame {
	if e.state != StateSimulating || e.ticking {
		return e.Frame()
	}

	e.ticking = true
	e.frameEvents = make([]Event, 0, 4)
	e.controller.Tick(e.balls[:])
	e.ticking = false
	e.tick++

	if e.controller.AllStopped() {
		e.state = StateIdle
		e.log.Debug("shot finished",
			zap.Uint64("tick", e.tick),
			zap.Int("pocketed", len(e.pocketed)))
	}

	events := e.frameEvents
	e.frameEvents = nil
	return e.frame(events)
}

// SimulateToRest ticks until the table is at rest or maxTicks have run. It
// returns every event raised and whether rest was reached.
func (e *Engine) SimulateToRest(maxTicks int) ([]Event, bool) {
	var events []Event
	for i := 0; i < maxTicks && e.state == StateSimulating; i++ {
		f := e.Tick()
		events = append(events, f.Events...)
	}
	return events, e.state == StateIdle
}

// SyncFromExternal overwrites the listed balls from an authoritative source.
// Balls missing from records are left alone. It is refused while a tick is
// running, e.g. from inside an event handler.
func (e *Engine) SyncFromExternal(records []Record) bool {
	if e.ticking {
		return false
	}
	for _, r := range records {
		if r.Number < 0 || r.Number >= NumBalls {
			continue
		}
		e.balls[r.Number].ApplyRecord(r, e.table)
	}

	e.controller.Reset(e.balls[:])
	if e.controller.AllStopped() {
		e.state = StateIdle
	} else {
		e.state = StateSimulating
	}
	e.log.Debug("synced from external state",
		zap.Int("balls", len(records)), zap.String("state", string(e.state)))
	return true
}

// RespotCueBall puts the cue ball on the table at (x, y), at rest.
func (e *Engine) RespotCueBall(x, y float64) bool {
	if e.ticking {
		return false
	}
	e.balls[CueBall].Reset(NewVec2(x, y))
	e.log.Debug("cue ball respotted", zap.Float64("x", x), zap.Float64("y", y))
	return true
}

// IsValidCueBallPlacement reports whether the cue ball may be placed at
// (x, y): inside the playable area and clear of every other ball in play.
func (e *Engine) IsValidCueBallPlacement(x, y float64) bool {
	p := NewVec2(x, y)
	if !e.table.Playable.Contains(p) {
		return false
	}
	minDist := 2*e.table.BallRadius + e.tuning.PlacementMargin
	minDistSq := minDist * minDist
	for _, b := range e.balls {
		if b.Number == CueBall || !b.InPlay() {
			continue
		}
		if p.DistanceSquaredTo(b.Position) < minDistSq {
			return false
		}
	}
	return true
}

// Records returns the wire form of every ball.
func (e *Engine) Records() []Record {
	out := make([]Record, NumBalls)
	for i, b := range e.balls {
		out[i] = b.Record()
	}
	return out
}

// Snapshot captures the table for renderers and peers.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Balls:         make(map[int]BallSnapshot, NumBalls),
		AllStopped:    e.controller.Resting(e.balls[:]),
		PocketedBalls: make([]PocketedBall, len(e.pocketed)),
	}
	for _, b := range e.balls {
		s.Balls[b.Number] = BallSnapshot{
			X:       b.Position.X,
			Y:       b.Position.Y,
			VX:      b.Velocity.X,
			VY:      b.Velocity.Y,
			OnTable: b.OnTable,
		}
	}
	if e.firstBallHit != nil {
		n := *e.firstBallHit
		s.FirstBallHit = &n
	}
	copy(s.PocketedBalls, e.pocketed)
	return s
}

// Frame returns the current table as a frame with no events, without ticking.
func (e *Engine) Frame() Frame {
	return e.frame(nil)
}

func (e *Engine) frame(events []Event) Frame {
	if events == nil {
		events = []Event{}
	}
	return Frame{Tick: e.tick, State: e.state, Snapshot: e.Snapshot(), Events: events}
}

// === Controller event hooks ===

func (e *Engine) forward(ev Event) {
	e.frameEvents = append(e.frameEvents, ev)
	e.handlers.emit(ev)
}

func (e *Engine) onBallIntoHole(ev Event) {
	seen := false
	for _, p := range e.pocketed {
		if p.Number == ev.Ball {
			seen = true
			break
		}
	}
	if !seen {
		e.pocketed = append(e.pocketed, PocketedBall{Number: ev.Ball, PocketID: ev.Pocket})
	}
	e.log.Debug("ball potted", zap.Int("ball", ev.Ball), zap.Int("pocket", ev.Pocket))
	e.forward(ev)
}

func (e *Engine) onBallWithBall(ev Event) {
	if e.firstBallHit == nil {
		if ev.Ball == CueBall {
			n := ev.Other
			e.firstBallHit = &n
		} else if ev.Other == CueBall {
			n := ev.Ball
			e.firstBallHit = &n
		}
	}
	e.forward(ev)
}

package game

import (
	"errors"
	"fmt"
)

// ErrInvalidTuning wraps every Tuning validation failure.
var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning holds the coefficients that shape how the table feels. Velocities
// are per-tick displacements, so every coefficient is per tick.
type Tuning struct {
	Friction           float64 `json:"friction" yaml:"friction"`                       // velocity multiplier applied once per tick
	CushionRestitution float64 `json:"cushion_restitution" yaml:"cushion_restitution"` // fraction of speed kept after a cushion bounce
	BallElasticity     float64 `json:"ball_elasticity" yaml:"ball_elasticity"`         // fraction of normal impact passed to the struck ball
	MinForceSquared    float64 `json:"min_force_squared" yaml:"min_force_squared"`     // squared speed below which a ball is stopped
	MaxForce           float64 `json:"max_force" yaml:"max_force"`                     // per-tick speed of a full power shot
	SubStepLength      float64 `json:"sub_step_length" yaml:"sub_step_length"`
	SideSpinAngle      float64 `json:"side_spin_angle" yaml:"side_spin_angle"` // degrees of bend per unit of side spin
	SideSpinDecay      float64 `json:"side_spin_decay" yaml:"side_spin_decay"` // side spin multiplier per cushion bounce
	DrawFactor         float64 `json:"draw_factor" yaml:"draw_factor"`         // share of impact speed per unit of vertical spin
	SpinDecay          float64 `json:"spin_decay" yaml:"spin_decay"`           // vertical spin multiplier per tick
	PocketSnapSteps    int     `json:"pocket_snap_steps" yaml:"pocket_snap_steps"`
	PlacementMargin    float64 `json:"placement_margin" yaml:"placement_margin"`
	SeparationPasses   int     `json:"separation_passes" yaml:"separation_passes"`
}

// DefaultTuning returns the coefficients used by the standard table.
func DefaultTuning() Tuning {
	return Tuning{
		Friction:           0.985,
		CushionRestitution: 0.75,
		BallElasticity:     0.94,
		MinForceSquared:    0.01,
		MaxForce:           40,
		SubStepLength:      4,
		SideSpinAngle:      0.3,
		SideSpinDecay:      0.5,
		DrawFactor:         0.012,
		SpinDecay:          0.99,
		PocketSnapSteps:    3,
		PlacementMargin:    1,
		SeparationPasses:   16,
	}
}

// Validate checks ranges once at load time; the controller trusts the values.
func (t Tuning) Validate() error {
	switch {
	case t.Friction <= 0 || t.Friction > 1:
		return fmt.Errorf("%w: friction %v not in (0, 1]", ErrInvalidTuning, t.Friction)
	case t.CushionRestitution < 0 || t.CushionRestitution > 1:
		return fmt.Errorf("%w: cushion restitution %v not in [0, 1]", ErrInvalidTuning, t.CushionRestitution)
	case t.BallElasticity < 0 || t.BallElasticity > 1:
		return fmt.Errorf("%w: ball elasticity %v not in [0, 1]", ErrInvalidTuning, t.BallElasticity)
	case t.MinForceSquared < 0:
		return fmt.Errorf("%w: negative min force", ErrInvalidTuning)
	case t.MaxForce <= 0:
		return fmt.Errorf("%w: max force must be positive", ErrInvalidTuning)
	case t.SubStepLength <= 0:
		return fmt.Errorf("%w: sub-step length must be positive", ErrInvalidTuning)
	case t.SideSpinDecay < 0 || t.SideSpinDecay > 1:
		return fmt.Errorf("%w: side spin decay %v not in [0, 1]", ErrInvalidTuning, t.SideSpinDecay)
	case t.SpinDecay < 0 || t.SpinDecay > 1:
		return fmt.Errorf("%w: spin decay %v not in [0, 1]", ErrInvalidTuning, t.SpinDecay)
	case t.PocketSnapSteps < 1:
		return fmt.Errorf("%w: pocket snap steps must be at least 1", ErrInvalidTuning)
	case t.SeparationPasses < 1:
		return fmt.Errorf("%w: separation passes must be at least 1", ErrInvalidTuning)
	}
	return nil
}

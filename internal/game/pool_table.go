package game

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrInvalidGeometry wraps every TableConfig validation failure.
var ErrInvalidGeometry = errors.New("invalid table geometry")

// BoundaryPoint is one named vertex of the closed cushion polygon.
type BoundaryPoint struct {
	Name string  `json:"name" yaml:"name"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
}

// Rect is an axis aligned rectangle.
type Rect struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

func (r Rect) Center() Vec2 {
	return Vec2{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

func (r Rect) empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// TableConfig is the static description of a table. Boundary points are
// listed so that the playing surface lies on the left of each edge.
type TableConfig struct {
	BallRadius   float64         `json:"ball_radius" yaml:"ball_radius"`
	PocketRadius float64         `json:"pocket_radius" yaml:"pocket_radius"`
	Playable     Rect            `json:"playable" yaml:"playable"` // region where a ball centre touches no cushion
	Boundary     []BoundaryPoint `json:"boundary" yaml:"boundary"`
	Pockets      []Vec2          `json:"pockets" yaml:"pockets"`
	Rack         []Vec2          `json:"rack" yaml:"rack"` // indexed by ball number
}

// Validate checks the geometry once at load time.
func (c TableConfig) Validate() error {
	if c.BallRadius <= 0 {
		return fmt.Errorf("%w: ball radius must be positive", ErrInvalidGeometry)
	}
	if c.PocketRadius <= 0 {
		return fmt.Errorf("%w: pocket radius must be positive", ErrInvalidGeometry)
	}
	if c.Playable.empty() {
		return fmt.Errorf("%w: playable rectangle is empty", ErrInvalidGeometry)
	}
	if len(c.Boundary) < 3 {
		return fmt.Errorf("%w: boundary needs at least 3 points, got %d", ErrInvalidGeometry, len(c.Boundary))
	}
	if len(c.Pockets) == 0 {
		return fmt.Errorf("%w: no pockets", ErrInvalidGeometry)
	}
	if len(c.Rack) != NumBalls {
		return fmt.Errorf("%w: rack needs %d positions, got %d", ErrInvalidGeometry, NumBalls, len(c.Rack))
	}
	diamSq := 4 * c.BallRadius * c.BallRadius
	for i, p := range c.Rack {
		if !c.Playable.Contains(p) {
			return fmt.Errorf("%w: rack position for ball %d outside playable area", ErrInvalidGeometry, i)
		}
		for j := i + 1; j < len(c.Rack); j++ {
			if p.DistanceSquaredTo(c.Rack[j]) < diamSq {
				return fmt.Errorf("%w: rack balls %d and %d overlap", ErrInvalidGeometry, i, j)
			}
		}
	}
	return nil
}

// Config bundles geometry and tuning, as read from a table file.
type Config struct {
	Table  TableConfig `json:"table" yaml:"table"`
	Tuning Tuning      `json:"tuning" yaml:"tuning"`
}

// DefaultConfig returns the standard table with default tuning.
func DefaultConfig() Config {
	return Config{Table: StandardTableConfig(), Tuning: DefaultTuning()}
}

// LoadConfig decodes YAML over the defaults and validates the result.
// Keys missing from the document keep their default values.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode table config: %w", err)
	}
	if err := cfg.Table.Validate(); err != nil {
		return Config{}, err
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// StandardTableConfig is the 8-ball table: a 24-point polygon with jawed
// pockets, six pockets and the triangle rack.
func StandardTableConfig() TableConfig {
	const (
		w = TableHalfWidth
		h = TableHalfHeight
	)
	br := DefaultBallRadius
	pr := DefaultPocketRadius

	boundary := []BoundaryPoint{
		// Top-left corner to top-centre
		{"A", -w, -h - 40}, {"B", -w + 40, -h}, {"C", -40, -h}, {"D", -20, -h - 40},
		// Top-centre to top-right
		{"E", 20, -h - 40}, {"F", 40, -h}, {"G", w - 40, -h}, {"H", w, -h - 40},
		// Right side
		{"I", w + 40, -h}, {"J", w, -h + 40}, {"K", w, h - 40}, {"L", w + 40, h},
		// Bottom-right to bottom-centre
		{"M", w, h + 40}, {"N", w - 40, h}, {"O", 40, h}, {"P", 20, h + 40},
		// Bottom-centre to bottom-left
		{"Q", -20, h + 40}, {"R", -40, h}, {"S", -w + 40, h}, {"T", -w, h + 40},
		// Left side
		{"U", -w - 40, h}, {"V", -w, h - 40}, {"W", -w, -h + 40}, {"X", -w - 40, -h},
	}

	pockets := []Vec2{
		{-w - pr/2, -h - pr/4},
		{0, -h - pr},
		{w + pr/2, -h - pr/4},
		{-w - pr/2, h + pr/4},
		{0, h + pr},
		{w + pr/2, h + pr/4},
	}

	return TableConfig{
		BallRadius:   br,
		PocketRadius: pr,
		Playable:     Rect{MinX: -w + br, MinY: -h + br, MaxX: w - br, MaxY: h - br},
		Boundary:     boundary,
		Pockets:      pockets,
		Rack:         standardRack(br),
	}
}

// standardRack places the cue ball on the head spot and racks the object
// balls in a triangle on the foot spot, eight in the centre. Fixed offsets,
// no jitter, so every rack is identical.
func standardRack(br float64) []Vec2 {
	pos := make([]Vec2, NumBalls)

	i := TableHalfWidth / 2
	e := 1.782 // row spacing in radii
	s := 1.05  // column spacing in radii

	pos[0] = NewVec2(-i, 0)

	// Apex ball
	pos[1] = NewVec2(i, 0)

	// Row 2
	pos[2] = NewVec2(i+e*br, br*s)
	pos[15] = NewVec2(i+e*br, -br*s)

	// Row 3 (8-ball in centre)
	pos[8] = NewVec2(i+2*e*br, 0)
	pos[5] = NewVec2(i+2*e*br, 2*br*s)
	pos[10] = NewVec2(i+2*e*br, -2*br*s)

	// Row 4
	pos[7] = NewVec2(i+3*e*br, 1*br*s)
	pos[4] = NewVec2(i+3*e*br, 3*br*s)
	pos[9] = NewVec2(i+3*e*br, -1*br*s)
	pos[6] = NewVec2(i+3*e*br, -3*br*s)

	// Row 5
	pos[11] = NewVec2(i+4*e*br, 0)
	pos[12] = NewVec2(i+4*e*br, 2*br*s)
	pos[13] = NewVec2(i+4*e*br, -2*br*s)
	pos[14] = NewVec2(i+4*e*br, 4*br*s)
	pos[3] = NewVec2(i+4*e*br, -4*br*s)

	return pos
}

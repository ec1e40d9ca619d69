package game

import "math"

// Pocket is one of the table's holes.
type Pocket struct {
	ID       int  `json:"id"`
	Position Vec2 `json:"position"`
}

// Corner is a boundary vertex with the averaged normal of its two edges.
// A ball touching a vertex bounces off this normal instead of either edge's.
type Corner struct {
	ID       string `json:"id"`
	Position Vec2   `json:"position"`
	Normal   Vec2   `json:"normal"`
}

// Quadrant is a quarter of the table relative to its centre.
type Quadrant int

const (
	QuadrantTopLeft Quadrant = iota
	QuadrantTopRight
	QuadrantBottomLeft
	QuadrantBottomRight
	numQuadrants
)

// QuadrantGeometry is the subset of cushions, pockets and corners that a ball
// located in one quadrant can reach.
type QuadrantGeometry struct {
	Edges   []Edge
	Pockets []Pocket
	Corners []Corner
}

// Table is the immutable geometry built from a TableConfig.
type Table struct {
	BallRadius   float64
	PocketRadius float64
	Playable     Rect
	Center       Vec2
	Edges        []Edge
	Corners      []Corner
	Pockets      []Pocket
	Boundary     []Vec2
	Rack         [NumBalls]Vec2

	quadrants [numQuadrants]QuadrantGeometry
}

// NewTable builds the table geometry. The config is expected to be validated.
func NewTable(cfg TableConfig) *Table {
	t := &Table{
		BallRadius:   cfg.BallRadius,
		PocketRadius: cfg.PocketRadius,
		Playable:     cfg.Playable,
		Center:       cfg.Playable.Center(),
	}

	n := len(cfg.Boundary)
	t.Boundary = make([]Vec2, n)
	for i, bp := range cfg.Boundary {
		t.Boundary[i] = NewVec2(bp.X, bp.Y)
	}

	t.Edges = make([]Edge, n)
	for i := 0; i < n; i++ {
		a, b := cfg.Boundary[i], cfg.Boundary[(i+1)%n]
		t.Edges[i] = NewEdge(a.Name+b.Name, t.Boundary[i], t.Boundary[(i+1)%n])
	}

	t.Corners = make([]Corner, 0, n)
	for i := 0; i < n; i++ {
		in := t.Edges[(i+n-1)%n]
		out := t.Edges[i]
		normal := in.Normal.Plus(out.Normal).Normalize()
		if normal.IsZero() {
			continue
		}
		t.Corners = append(t.Corners, Corner{
			ID:       cfg.Boundary[i].Name,
			Position: t.Boundary[i],
			Normal:   normal,
		})
	}

	t.Pockets = make([]Pocket, len(cfg.Pockets))
	for i, p := range cfg.Pockets {
		t.Pockets[i] = Pocket{ID: i, Position: p}
	}

	for i := 0; i < NumBalls && i < len(cfg.Rack); i++ {
		t.Rack[i] = cfg.Rack[i]
	}

	t.partition()
	return t
}

// NewStandardTable builds the standard 8-ball table.
func NewStandardTable() *Table {
	return NewTable(StandardTableConfig())
}

// partition assigns geometry to every quadrant it can be reached from. The
// reach margin covers a ball straddling the centre lines plus one sub-step.
func (t *Table) partition() {
	reach := 2 * (t.BallRadius + t.PocketRadius)
	for q := Quadrant(0); q < numQuadrants; q++ {
		region := t.quadrantRegion(q, reach)
		g := &t.quadrants[q]
		for _, e := range t.Edges {
			if overlaps(region, segmentBounds(e.P1, e.P2)) {
				g.Edges = append(g.Edges, e)
			}
		}
		for _, p := range t.Pockets {
			if region.Contains(p.Position) {
				g.Pockets = append(g.Pockets, p)
			}
		}
		for _, c := range t.Corners {
			if region.Contains(c.Position) {
				g.Corners = append(g.Corners, c)
			}
		}
	}
}

func (t *Table) quadrantRegion(q Quadrant, reach float64) Rect {
	inf := math.Inf(1)
	r := Rect{MinX: -inf, MinY: -inf, MaxX: inf, MaxY: inf}
	switch q {
	case QuadrantTopLeft:
		r.MaxX, r.MaxY = t.Center.X+reach, t.Center.Y+reach
	case QuadrantTopRight:
		r.MinX, r.MaxY = t.Center.X-reach, t.Center.Y+reach
	case QuadrantBottomLeft:
		r.MaxX, r.MinY = t.Center.X+reach, t.Center.Y-reach
	case QuadrantBottomRight:
		r.MinX, r.MinY = t.Center.X-reach, t.Center.Y-reach
	}
	return r
}

func segmentBounds(a, b Vec2) Rect {
	return Rect{
		MinX: math.Min(a.X, b.X), MinY: math.Min(a.Y, b.Y),
		MaxX: math.Max(a.X, b.X), MaxY: math.Max(a.Y, b.Y),
	}
}

func overlaps(a, b Rect) bool {
	return a.MinX <= b.MaxX && b.MinX <= a.MaxX && a.MinY <= b.MaxY && b.MinY <= a.MaxY
}

// QuadrantOf returns the quadrant containing p. Top is negative y.
func (t *Table) QuadrantOf(p Vec2) Quadrant {
	right := p.X >= t.Center.X
	bottom := p.Y >= t.Center.Y
	switch {
	case !right && !bottom:
		return QuadrantTopLeft
	case right && !bottom:
		return QuadrantTopRight
	case !right && bottom:
		return QuadrantBottomLeft
	default:
		return QuadrantBottomRight
	}
}

// Geometry returns the collision candidates for q. Unknown quadrants yield
// empty sets rather than failing.
func (t *Table) Geometry(q Quadrant) QuadrantGeometry {
	if q < 0 || q >= numQuadrants {
		return QuadrantGeometry{}
	}
	return t.quadrants[q]
}

// PocketByID looks up a pocket.
func (t *Table) PocketByID(id int) *Pocket {
	if id < 0 || id >= len(t.Pockets) {
		return nil
	}
	return &t.Pockets[id]
}

// InsideBoundary reports whether p lies inside the cushion polygon.
func (t *Table) InsideBoundary(p Vec2) bool {
	return pointInPolygon(p, t.Boundary)
}

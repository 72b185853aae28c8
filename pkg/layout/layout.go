package layout

import (
	"fmt"
	"math"
)

// Default spacing between levels, between ranks within a level, and between
// cells of the grid fallback.
const (
	DefaultLevelSpacing = 500.0
	DefaultRankSpacing  = 250.0
	DefaultGridSpacing  = 300.0
)

// Direction selects the axis that levels advance along.
type Direction string

const (
	// DirectionHorizontal places levels left to right (x = level) and ranks
	// top to bottom (y = rank).
	DirectionHorizontal Direction = "horizontal"
	// DirectionVertical places levels top to bottom (y = level) and ranks
	// left to right (x = rank).
	DirectionVertical Direction = "vertical"
)

// Position is a 2D coordinate in renderer units.
type Position struct {
	X float64 `json:"x" bson:"x" toml:"x"`
	Y float64 `json:"y" bson:"y" toml:"y"`
}

// Spacing holds the fixed constants used to turn (level, rank) into
// coordinates. The zero value is invalid; use [DefaultSpacing].
type Spacing struct {
	Level     float64   `toml:"level_spacing"`
	Rank      float64   `toml:"rank_spacing"`
	Grid      float64   `toml:"grid_spacing"`
	Direction Direction `toml:"direction"`
}

// DefaultSpacing returns the spacing used when nothing is configured.
func DefaultSpacing() Spacing {
	return Spacing{
		Level:     DefaultLevelSpacing,
		Rank:      DefaultRankSpacing,
		Grid:      DefaultGridSpacing,
		Direction: DirectionHorizontal,
	}
}

// WithDefaults fills zero fields from [DefaultSpacing].
func (s Spacing) WithDefaults() Spacing {
	d := DefaultSpacing()
	if s.Level == 0 {
		s.Level = d.Level
	}
	if s.Rank == 0 {
		s.Rank = d.Rank
	}
	if s.Grid == 0 {
		s.Grid = d.Grid
	}
	if s.Direction == "" {
		s.Direction = d.Direction
	}
	return s
}

// Validate checks that spacing values are finite and positive and the
// direction is known.
func (s Spacing) Validate() error {
	if !positive(s.Level) || !positive(s.Rank) || !positive(s.Grid) {
		return fmt.Errorf("spacing must be positive (level=%v rank=%v grid=%v)", s.Level, s.Rank, s.Grid)
	}
	switch s.Direction {
	case DirectionHorizontal, DirectionVertical:
		return nil
	default:
		return fmt.Errorf("invalid direction: %q (must be horizontal or vertical)", s.Direction)
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Placement is the layout input for one node.
type Placement struct {
	ID       string
	Level    int
	Explicit *Position // author-supplied position, nil when absent
}

// Source records which rule produced a node's position.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceLayered  Source = "layered"
	SourceGrid     Source = "grid"
)

// Result holds computed positions and where each came from.
type Result struct {
	Positions map[string]Position
	Sources   map[string]Source
	Ranks     map[string]int // rank within level; grid index for grid placements
}

// Compute assigns a position to every placement.
//
// Precedence is fixed: an explicit position is kept verbatim; otherwise, if
// the graph has any edges, the node is placed by (level, rank); otherwise it
// falls back to a square grid in input order. Rank is the node's index among
// same-level placements in input order, so the output is fully determined by
// the input order and levels.
func Compute(placements []Placement, hasEdges bool, spacing Spacing) Result {
	spacing = spacing.WithDefaults()
	res := Result{
		Positions: make(map[string]Position, len(placements)),
		Sources:   make(map[string]Source, len(placements)),
		Ranks:     make(map[string]int, len(placements)),
	}

	nextRank := make(map[int]int)
	for i, p := range placements {
		var pos Position
		var src Source
		var rank int
		if hasEdges {
			rank = nextRank[p.Level]
			nextRank[p.Level]++
			pos, src = Layered(p.Level, rank, spacing), SourceLayered
		} else {
			rank = i
			pos, src = Grid(i, len(placements), spacing.Grid), SourceGrid
		}
		if p.Explicit != nil {
			pos, src = *p.Explicit, SourceExplicit
		}
		res.Positions[p.ID] = pos
		res.Sources[p.ID] = src
		res.Ranks[p.ID] = rank
	}
	return res
}

// Layered converts a (level, rank) pair to a coordinate.
func Layered(level, rank int, spacing Spacing) Position {
	along := float64(level) * spacing.Level
	across := float64(rank) * spacing.Rank
	if spacing.Direction == DirectionVertical {
		return Position{X: across, Y: along}
	}
	return Position{X: along, Y: across}
}

// Grid returns the position of the index-th cell in a square grid sized for
// total items: ceil(sqrt(total)) columns, filled row by row.
func Grid(index, total int, spacing float64) Position {
	cols := int(math.Ceil(math.Sqrt(float64(max(1, total)))))
	row := index / cols
	col := index % cols
	return Position{X: float64(col) * spacing, Y: float64(row) * spacing}
}

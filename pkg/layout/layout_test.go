package layout

import (
	"math"
	"testing"
)

func TestCompute_Layered(t *testing.T) {
	placements := []Placement{
		{ID: "A", Level: 0},
		{ID: "B", Level: 1},
		{ID: "C", Level: 1},
		{ID: "D", Level: 2},
	}

	res := Compute(placements, true, DefaultSpacing())

	want := map[string]Position{
		"A": {X: 0, Y: 0},
		"B": {X: 500, Y: 0},
		"C": {X: 500, Y: 250},
		"D": {X: 1000, Y: 0},
	}
	for id, p := range want {
		if got := res.Positions[id]; got != p {
			t.Errorf("Positions[%s] = %+v, want %+v", id, got, p)
		}
		if res.Sources[id] != SourceLayered {
			t.Errorf("Sources[%s] = %s, want layered", id, res.Sources[id])
		}
	}
	if res.Ranks["C"] != 1 {
		t.Errorf("Ranks[C] = %d, want 1", res.Ranks["C"])
	}
}

func TestCompute_ExplicitWins(t *testing.T) {
	pinned := Position{X: -42.5, Y: 17}
	placements := []Placement{
		{ID: "A", Level: 0},
		{ID: "B", Level: 3, Explicit: &pinned},
	}

	for _, hasEdges := range []bool{true, false} {
		res := Compute(placements, hasEdges, DefaultSpacing())
		if got := res.Positions["B"]; got != pinned {
			t.Errorf("hasEdges=%v: Positions[B] = %+v, want %+v", hasEdges, got, pinned)
		}
		if res.Sources["B"] != SourceExplicit {
			t.Errorf("hasEdges=%v: Sources[B] = %s, want explicit", hasEdges, res.Sources["B"])
		}
	}
}

func TestCompute_ExplicitStillTakesRank(t *testing.T) {
	pinned := Position{X: 1, Y: 1}
	placements := []Placement{
		{ID: "A", Level: 0, Explicit: &pinned},
		{ID: "B", Level: 0},
	}

	res := Compute(placements, true, DefaultSpacing())

	if got := res.Positions["B"]; got != (Position{X: 0, Y: 250}) {
		t.Errorf("Positions[B] = %+v, want rank 1 slot", got)
	}
}

func TestCompute_GridFallback(t *testing.T) {
	placements := []Placement{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}

	res := Compute(placements, false, DefaultSpacing())

	// 5 nodes -> 3 columns
	want := map[string]Position{
		"a": {X: 0, Y: 0},
		"b": {X: 300, Y: 0},
		"c": {X: 600, Y: 0},
		"d": {X: 0, Y: 300},
		"e": {X: 300, Y: 300},
	}
	for id, p := range want {
		if got := res.Positions[id]; got != p {
			t.Errorf("Positions[%s] = %+v, want %+v", id, got, p)
		}
		if res.Sources[id] != SourceGrid {
			t.Errorf("Sources[%s] = %s, want grid", id, res.Sources[id])
		}
	}
}

func TestCompute_Vertical(t *testing.T) {
	spacing := Spacing{Level: 100, Rank: 10, Grid: 1, Direction: DirectionVertical}
	placements := []Placement{{ID: "A", Level: 0}, {ID: "B", Level: 2}, {ID: "C", Level: 2}}

	res := Compute(placements, true, spacing)

	if got := res.Positions["C"]; got != (Position{X: 10, Y: 200}) {
		t.Errorf("Positions[C] = %+v, want {10 200}", got)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	placements := []Placement{{ID: "x", Level: 1}, {ID: "y", Level: 0}, {ID: "z", Level: 1}}
	first := Compute(placements, true, DefaultSpacing())
	for i := 0; i < 10; i++ {
		again := Compute(placements, true, DefaultSpacing())
		for id, p := range first.Positions {
			if again.Positions[id] != p {
				t.Fatalf("run %d: Positions[%s] = %+v, want %+v", i, id, again.Positions[id], p)
			}
		}
	}
}

func TestGrid_SingleNode(t *testing.T) {
	if got := Grid(0, 1, 300); got != (Position{}) {
		t.Errorf("Grid(0,1) = %+v, want origin", got)
	}
	if got := Grid(0, 0, 300); got != (Position{}) {
		t.Errorf("Grid(0,0) = %+v, want origin", got)
	}
}

func TestSpacing_WithDefaultsAndValidate(t *testing.T) {
	s := Spacing{Rank: 80}.WithDefaults()
	if s.Level != DefaultLevelSpacing || s.Rank != 80 || s.Grid != DefaultGridSpacing {
		t.Errorf("WithDefaults() = %+v", s)
	}
	if s.Direction != DirectionHorizontal {
		t.Errorf("Direction = %q, want horizontal", s.Direction)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	bad := []Spacing{
		{Level: -1, Rank: 1, Grid: 1, Direction: DirectionHorizontal},
		{Level: 1, Rank: 1, Grid: 1, Direction: "diagonal"},
		{Level: math.NaN(), Rank: 1, Grid: 1, Direction: DirectionHorizontal},
		{Level: 1, Rank: math.Inf(1), Grid: 1, Direction: DirectionHorizontal},
		{Level: 1, Rank: 1, Grid: math.Inf(-1), Direction: DirectionHorizontal},
	}
	for _, b := range bad {
		if err := b.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", b)
		}
	}
}

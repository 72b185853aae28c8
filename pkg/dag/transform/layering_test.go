package transform

import (
	"slices"
	"testing"

	"github.com/matzehuels/dagflow/pkg/dag"
)

func TestAssignLevels_LongestPath(t *testing.T) {
	ids := []string{"A", "B", "C", "D"}
	blocking := map[string][]string{
		"B": {"A"},
		"C": {"B"},
		"D": {"A", "C"},
	}

	lv := AssignLevels(ids, blocking)

	want := map[string]int{"A": 0, "B": 1, "C": 2, "D": 3}
	for id, l := range want {
		if lv.Level[id] != l {
			t.Errorf("Level[%s] = %d, want %d", id, lv.Level[id], l)
		}
	}
	if lv.Max != 3 {
		t.Errorf("Max = %d, want 3", lv.Max)
	}
	if len(lv.Unordered) != 0 {
		t.Errorf("Unordered = %v, want empty", lv.Unordered)
	}
}

func TestAssignLevels_IgnoresUnknownPredecessors(t *testing.T) {
	lv := AssignLevels([]string{"B"}, map[string][]string{"B": {"ghost"}})
	if lv.Level["B"] != 0 {
		t.Errorf("Level[B] = %d, want 0", lv.Level["B"])
	}
}

func TestAssignLevels_ResidualCycle(t *testing.T) {
	ids := []string{"A", "B", "C"}
	blocking := map[string][]string{"B": {"A", "C"}, "C": {"B"}}

	lv := AssignLevels(ids, blocking)

	if !slices.Equal(lv.Unordered, []string{"B", "C"}) {
		t.Errorf("Unordered = %v, want [B C]", lv.Unordered)
	}
	for _, id := range ids {
		if lv.Level[id] != 0 {
			t.Errorf("Level[%s] = %d, want 0", id, lv.Level[id])
		}
	}
}

func TestAssignLevels_Monotone(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d", "e", "f"}, [][2]string{
		{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}, {"d", "e"}, {"e", "b"}, {"f", "e"}, {"c", "f"},
	})
	deps := ResolveDependencies(g, PolicyFirstSeen)

	lv := AssignLevels(g.NodeIDs(), deps.Blocking)

	for tgt, srcs := range deps.Blocking {
		for _, src := range srcs {
			if lv.Level[src] >= lv.Level[tgt] {
				t.Errorf("level(%s)=%d not below level(%s)=%d", src, lv.Level[src], tgt, lv.Level[tgt])
			}
		}
	}
}

func TestAssignLayers(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})

	AssignLayers(g)

	if n, _ := g.Node("c"); n.Level != 2 {
		t.Errorf("Level(c) = %d, want 2", n.Level)
	}
	if g.MaxLevel() != 2 {
		t.Errorf("MaxLevel() = %d, want 2", g.MaxLevel())
	}
}

func TestDedupeEdges(t *testing.T) {
	edges := []dag.Edge{
		{ID: "first", From: "A", To: "B"},
		{ID: "x", From: "B", To: "C"},
		{ID: "second", From: "A", To: "B"},
		{ID: "rev", From: "B", To: "A"},
	}

	once := DedupeEdges(edges)
	twice := DedupeEdges(once)

	if len(once) != 3 {
		t.Fatalf("len = %d, want 3", len(once))
	}
	if once[0].ID != "first" {
		t.Errorf("kept %q, want first occurrence", once[0].ID)
	}
	if len(twice) != len(once) {
		t.Fatalf("DedupeEdges not idempotent: %d vs %d edges", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("edge %d: %q vs %q after second pass", i, once[i].ID, twice[i].ID)
		}
	}
	if len(edges) != 4 {
		t.Error("input slice modified")
	}
}

func TestDedupe_InPlace(t *testing.T) {
	g := build(t, []string{"A", "B"}, [][2]string{{"A", "B"}, {"A", "B"}, {"A", "B"}})

	if n := Dedupe(g); n != 2 {
		t.Errorf("Dedupe() = %d, want 2", n)
	}
	if g.EdgeCount() != 1 || len(g.Children("A")) != 1 {
		t.Errorf("EdgeCount() = %d, Children(A) = %v", g.EdgeCount(), g.Children("A"))
	}
	if n := Dedupe(g); n != 0 {
		t.Errorf("second Dedupe() = %d, want 0", n)
	}
}

func TestNormalize(t *testing.T) {
	g := build(t, []string{"A", "B", "C", "D"}, [][2]string{
		{"A", "B"}, {"B", "C"}, {"C", "A"}, {"C", "D"}, {"A", "B"},
	})

	res, stats := Normalize(g, NormalizeOptions{})

	if stats.DuplicatesRemoved != 1 || stats.CycleEdgesExcluded != 1 || stats.MaxLevel != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if res.Level["D"] != 3 {
		t.Errorf("Level[D] = %d, want 3", res.Level["D"])
	}
	if n, _ := g.Node("C"); n.Level != 2 {
		t.Errorf("node C level = %d, want 2", n.Level)
	}
}

package workflow

import (
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/matzehuels/dagflow/pkg/dag/transform"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/layout"
)

func def(nodes []string, edges ...[2]string) graph.Definition {
	d := graph.Definition{Name: "test"}
	for _, id := range nodes {
		d.Nodes = append(d.Nodes, graph.NodeRecord{ID: id})
	}
	for _, e := range edges {
		d.Edges = append(d.Edges, graph.EdgeRecord{Source: e[0], Target: e[1]})
	}
	return d
}

func mustBuild(t *testing.T, d graph.Definition) *Graph {
	t.Helper()
	g, err := Build(d, DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestBuild_CycleExclusion(t *testing.T) {
	g := mustBuild(t, def([]string{"A", "B", "C", "D"},
		[2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"}, [2]string{"C", "D"}))

	if !g.HasPath("C", "A") {
		t.Error("HasPath(C, A) = false, want true")
	}

	wantBlocking := map[string][]string{"B": {"A"}, "C": {"B"}, "D": {"C"}}
	got := g.BlockingDependencies()
	if len(got) != len(wantBlocking) {
		t.Errorf("BlockingDependencies() = %v, want %v", got, wantBlocking)
	}
	for k, v := range wantBlocking {
		if !slices.Equal(got[k], v) {
			t.Errorf("Blocking[%s] = %v, want %v", k, got[k], v)
		}
	}

	wantLevels := map[string]int{"A": 0, "B": 1, "C": 2, "D": 3}
	for id, lv := range wantLevels {
		if got, _ := g.Level(id); got != lv {
			t.Errorf("Level(%s) = %d, want %d", id, got, lv)
		}
	}

	if deps := g.Dependencies(); !slices.Equal(deps["A"], []string{"C"}) {
		t.Errorf("Dependencies()[A] = %v, want [C]", deps["A"])
	}
	if !g.IsFeedback("C", "A") || g.IsFeedback("A", "B") {
		t.Error("IsFeedback mismatch")
	}
	diag := g.Diagnostics()
	if !diag.HasCycles() || diag.Err() != nil {
		t.Errorf("Diagnostics = %+v", diag)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuild_Dedup(t *testing.T) {
	d := graph.Definition{
		Nodes: []graph.NodeRecord{{ID: "X"}, {ID: "Y"}},
		Edges: []graph.EdgeRecord{
			{ID: "first", Source: "X", Target: "Y", SourceHandle: "h1"},
			{ID: "second", Source: "X", Target: "Y", SourceHandle: "h2"},
			{Source: "X", Target: "Y"},
		},
	}
	g := mustBuild(t, d)

	edges := g.Edges()
	if len(edges) != 1 {
		t.Fatalf("Edges() = %v, want one edge", edges)
	}
	if edges[0].ID != "first" || edges[0].Attrs.SourceHandle != "h1" {
		t.Errorf("kept %+v, want first occurrence", edges[0])
	}
	if g.Diagnostics().DuplicatesDropped != 2 {
		t.Errorf("DuplicatesDropped = %d, want 2", g.Diagnostics().DuplicatesDropped)
	}
}

func TestBuild_FallbackChain(t *testing.T) {
	g := mustBuild(t, def([]string{"P", "Q", "R"}))

	edges := g.Edges()
	if len(edges) != 2 {
		t.Fatalf("Edges() = %v, want 2", edges)
	}
	if edges[0].ID != "e-P-Q" || edges[1].ID != "e-Q-R" || edges[0].Kind != graph.FallbackEdgeKind {
		t.Errorf("chain = %+v", edges)
	}
	for id, lv := range map[string]int{"P": 0, "Q": 1, "R": 2} {
		if got, _ := g.Level(id); got != lv {
			t.Errorf("Level(%s) = %d, want %d", id, got, lv)
		}
	}
	if !g.Diagnostics().Chained {
		t.Error("Diagnostics().Chained = false")
	}

	empty := graph.Definition{Nodes: def([]string{"P", "Q"}).Nodes, Edges: []graph.EdgeRecord{}}
	if g := mustBuild(t, empty); g.EdgeCount() != 1 {
		t.Errorf("empty edge list should chain, got %d edges", g.EdgeCount())
	}
}

func TestBuild_NoChainUsesGrid(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.NoChain = true

	g, err := Build(def([]string{"a", "b", "c", "d", "e"}), opts)
	if err != nil {
		t.Fatal(err)
	}

	if g.HasEdges() {
		t.Fatal("expected no edges")
	}
	p, src, _ := g.Position("e")
	if src != layout.SourceGrid || p != (layout.Position{X: 300, Y: 300}) {
		t.Errorf("Position(e) = %+v (%s), want grid {300 300}", p, src)
	}
}

func TestFilter_Workflow(t *testing.T) {
	g := mustBuild(t, def([]string{"N0", "MSAT1", "RD1"},
		[2]string{"N0", "MSAT1"}, [2]string{"N0", "RD1"}, [2]string{"MSAT1", "RD1"}))

	view := g.Filter("msat")

	if got := view.NodeIDs(); !slices.Equal(got, []string{"N0", "MSAT1"}) {
		t.Errorf("nodes = %v, want [N0 MSAT1]", got)
	}
	if len(view.Edges) != 1 || view.Edges[0].Source != "N0" || view.Edges[0].Target != "MSAT1" {
		t.Errorf("edges = %+v, want [N0->MSAT1]", view.Edges)
	}

	rd := g.Filter("rd")
	if got := rd.NodeIDs(); !slices.Equal(got, []string{"N0", "RD1"}) {
		t.Errorf("rd nodes = %v", got)
	}
	if all := g.Filter(""); len(all.Nodes) != 3 || len(all.Edges) != 3 {
		t.Errorf("wildcard view = %d nodes %d edges", len(all.Nodes), len(all.Edges))
	}
}

func TestFilter_SubgraphValidity(t *testing.T) {
	g := mustBuild(t, def([]string{"N0", "Q0", "MSAT1", "MSAT2", "RD1", "RD2", "X9"},
		[2]string{"N0", "MSAT1"}, [2]string{"MSAT1", "MSAT2"}, [2]string{"MSAT2", "RD1"},
		[2]string{"Q0", "RD1"}, [2]string{"RD1", "RD2"}, [2]string{"RD2", "N0"}, [2]string{"X9", "Q0"}))

	for _, wf := range []string{"all", "msat", "rd", "unknown"} {
		view := g.Filter(wf)
		ids := make(map[string]bool)
		for _, n := range view.Nodes {
			ids[n.ID] = true
		}
		for _, e := range view.Edges {
			if !ids[e.Source] || !ids[e.Target] {
				t.Errorf("%s: edge %s->%s has endpoint outside view", wf, e.Source, e.Target)
			}
		}
		for _, common := range []string{"N0", "Q0"} {
			if !ids[common] {
				t.Errorf("%s: common node %s missing", wf, common)
			}
		}
	}

	if got := g.Filter("unknown").NodeIDs(); !slices.Equal(got, []string{"N0", "Q0"}) {
		t.Errorf("unknown workflow nodes = %v, want common only", got)
	}
}

func TestFilter_ExplicitTag(t *testing.T) {
	d := graph.Definition{Nodes: []graph.NodeRecord{
		{ID: "intake", Workflow: "common"},
		{ID: "MSAT-looking", Workflow: "qa"},
		{ID: "check", Workflow: "qa"},
		{ID: "MSAT1"},
	}}
	g := mustBuild(t, d)

	if got := g.Members("qa"); !slices.Equal(got, []string{"intake", "MSAT-looking", "check"}) {
		t.Errorf("Members(qa) = %v", got)
	}
	if got := g.Members("msat"); !slices.Equal(got, []string{"intake", "MSAT1"}) {
		t.Errorf("Members(msat) = %v, explicit tag should win over prefix", got)
	}
}

func TestDependenciesFor(t *testing.T) {
	g := mustBuild(t, def([]string{"N0", "MSAT1", "RD1", "MSAT2"},
		[2]string{"N0", "MSAT2"}, [2]string{"RD1", "MSAT2"}, [2]string{"MSAT1", "MSAT2"}))

	tests := []struct {
		node, workflow string
		want           []string
	}{
		{"MSAT2", "msat", []string{"N0", "MSAT1"}},
		{"MSAT2", "all", []string{"N0", "RD1", "MSAT1"}},
		{"MSAT2", "", []string{"N0", "RD1", "MSAT1"}},
		{"MSAT2", "nope", []string{"N0"}},
		{"ghost", "msat", []string{}},
		{"N0", "msat", []string{}},
	}
	for _, tt := range tests {
		got := g.DependenciesFor(tt.node, tt.workflow)
		if !slices.Equal(got, tt.want) {
			t.Errorf("DependenciesFor(%s, %s) = %v, want %v", tt.node, tt.workflow, got, tt.want)
		}
	}
}

func TestBuild_ExplicitPosition(t *testing.T) {
	pinned := layout.Position{X: -12.5, Y: 987}
	d := def([]string{"A", "B", "C"}, [2]string{"A", "B"}, [2]string{"B", "C"})
	d.Nodes[2].Position = &pinned

	g := mustBuild(t, d)

	p, src, ok := g.Position("C")
	if !ok || p != pinned || src != layout.SourceExplicit {
		t.Errorf("Position(C) = %+v %s %v, want %+v explicit", p, src, ok, pinned)
	}
	if lv, _ := g.Level("C"); lv != 2 {
		t.Errorf("Level(C) = %d, want 2", lv)
	}
	if p, _, _ := g.Position("B"); p != (layout.Position{X: 500, Y: 0}) {
		t.Errorf("Position(B) = %+v, want {500 0}", p)
	}

	view := g.Filter("all")
	if n, _ := view.Node("C"); n.Position != pinned {
		t.Errorf("view position = %+v", n.Position)
	}
}

func TestBuild_StrictPolicy(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.Policy = transform.PolicyStrict
	g, err := Build(def([]string{"A", "B", "C", "D"},
		[2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"}, [2]string{"C", "D"}), opts)
	if err != nil {
		t.Fatal(err)
	}

	if got := g.BlockingFor("D"); !slices.Equal(got, []string{"C"}) {
		t.Errorf("BlockingFor(D) = %v", got)
	}
	for _, id := range []string{"A", "B", "C"} {
		if lv, _ := g.Level(id); lv != 0 {
			t.Errorf("Level(%s) = %d, want 0 under strict", id, lv)
		}
	}
	if len(g.Diagnostics().Excluded) != 3 {
		t.Errorf("Excluded = %v", g.Diagnostics().Excluded)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  graph.Definition
		code errors.Code
	}{
		{"EmptyID", def([]string{"A", ""}), errors.ErrCodeInvalidNode},
		{"DuplicateID", def([]string{"A", "A"}), errors.ErrCodeInvalidNode},
		{"DanglingTarget", def([]string{"A"}, [2]string{"A", "Z"}), errors.ErrCodeDanglingEdge},
		{"DanglingSource", def([]string{"A"}, [2]string{"Z", "A"}), errors.ErrCodeDanglingEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.def, DefaultBuildOptions())
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() error = %v, want %s", err, tt.code)
			}
		})
	}

	opts := DefaultBuildOptions()
	opts.Policy = "sometimes"
	if _, err := Build(def([]string{"A"}), opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad policy error = %v", err)
	}

	for _, v := range []float64{math.NaN(), math.Inf(1)} {
		opts := DefaultBuildOptions()
		opts.Spacing.Level = v
		if _, err := Build(def([]string{"A", "B"}), opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("level spacing %v: error = %v, want INVALID_INPUT", v, err)
		}
	}
}

func TestBuild_EmptyAndSingle(t *testing.T) {
	g := mustBuild(t, graph.Definition{})
	if g.NodeCount() != 0 || len(g.Filter("msat").Nodes) != 0 {
		t.Error("empty definition should build an empty graph")
	}

	one := mustBuild(t, def([]string{"N0"}))
	if p, src, _ := one.Position("N0"); p != (layout.Position{}) || src != layout.SourceGrid {
		t.Errorf("single node = %+v %s, want grid origin", p, src)
	}
}

func TestGraph_AccessorsReturnCopies(t *testing.T) {
	d := def([]string{"A", "B"}, [2]string{"A", "B"})
	d.Nodes[0].Data = map[string]any{"label": "start"}
	g := mustBuild(t, d)

	g.BlockingDependencies()["B"][0] = "mutated"
	g.Levels()["B"] = 99
	n, _ := g.Node("A")
	n.Payload["label"] = "mutated"

	if g.BlockingFor("B")[0] != "A" {
		t.Error("BlockingDependencies aliases internal state")
	}
	if lv, _ := g.Level("B"); lv != 1 {
		t.Error("Levels aliases internal state")
	}
	if n, _ := g.Node("A"); n.Payload["label"] != "start" {
		t.Error("Node aliases internal payload")
	}
}

func TestGraph_EdgeAttrsAreIsolated(t *testing.T) {
	animated := true
	d := def([]string{"A", "B"})
	d.Edges = []graph.EdgeRecord{{
		Source:    "A",
		Target:    "B",
		Style:     map[string]any{"stroke": "red"},
		MarkerEnd: map[string]any{"type": "arrowclosed"},
		Animated:  &animated,
	}}
	g := mustBuild(t, d)

	d.Edges[0].Style["stroke"] = "blue"
	d.Edges[0].MarkerEnd.(map[string]any)["type"] = "arrow"
	animated = false

	edges := g.Edges()
	edges[0].Attrs.Style["stroke"] = "green"
	*edges[0].Attrs.Animated = false

	view := g.Filter(Wildcard)
	view.Edges[0].Style["stroke"] = "yellow"

	e := g.Filter(Wildcard).Edges[0]
	if e.Style["stroke"] != "red" {
		t.Errorf("style stroke = %v, want red", e.Style["stroke"])
	}
	if e.MarkerEnd.(map[string]any)["type"] != "arrowclosed" {
		t.Errorf("markerEnd = %v, want arrowclosed", e.MarkerEnd)
	}
	if e.Animated == nil || !*e.Animated {
		t.Error("animated flag changed after Build")
	}
}

func TestMemo(t *testing.T) {
	m := NewMemo(BuildOptions{})
	d := def([]string{"A", "B"})

	g1, hit, err := m.Build(d)
	if err != nil || hit {
		t.Fatalf("first Build: hit=%v err=%v", hit, err)
	}
	g2, hit, _ := m.Build(def([]string{"A", "B"}))
	if !hit || g1 != g2 {
		t.Error("identical definition should hit the memo")
	}

	if _, _, err := m.Build(def([]string{"A", "A"})); err == nil {
		t.Error("expected build error")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = m.Build(d)
		}()
	}
	wg.Wait()
	m.Reset()
	if m.Len() != 0 {
		t.Error("Reset() should empty the memo")
	}
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := c.IDs(); !slices.Equal(got, []string{"all", "msat", "rd"}) {
		t.Errorf("IDs() = %v", got)
	}

	bad := []Catalog{
		{Wildcard: "all", Workflows: []Spec{{ID: "a"}, {ID: "a"}}},
		{Wildcard: "all", Workflows: []Spec{{ID: "all"}}},
		{Wildcard: "all", Workflows: []Spec{{ID: "bad id"}}},
	}
	for _, b := range bad {
		if err := b.Validate(); !errors.Is(err, errors.ErrCodeInvalidWorkflow) {
			t.Errorf("Validate(%+v) = %v, want INVALID_WORKFLOW", b.Workflows, err)
		}
	}
}

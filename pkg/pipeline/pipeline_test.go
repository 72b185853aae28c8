package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/dagflow/pkg/cache"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
)

func testDefinition() graph.Definition {
	return graph.Definition{
		Name: "demo",
		Nodes: []graph.NodeRecord{
			{ID: "N0"}, {ID: "MSAT1"}, {ID: "MSAT2"}, {ID: "RD1"},
		},
		Edges: []graph.EdgeRecord{
			{Source: "N0", Target: "MSAT1"},
			{Source: "MSAT1", Target: "MSAT2"},
			{Source: "MSAT2", Target: "MSAT1"},
			{Source: "N0", Target: "RD1"},
		},
	}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	return NewRunner(c, nil, nil)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}

	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options should be valid: %v", err)
	}
	if opts.Policy != "first-seen" {
		t.Errorf("Policy = %q, want first-seen", opts.Policy)
	}
	if opts.LevelSpacing != 500 || opts.RankSpacing != 250 || opts.GridSpacing != 300 {
		t.Errorf("spacing = %v/%v/%v", opts.LevelSpacing, opts.RankSpacing, opts.GridSpacing)
	}
	if opts.Workflow != "all" {
		t.Errorf("Workflow = %q, want all", opts.Workflow)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}

	// Idempotent
	before := opts.ViewKeyOpts()
	opts.SetDefaults()
	if opts.ViewKeyOpts() != before {
		t.Error("SetDefaults should be idempotent")
	}
}

func TestOptionsValidate(t *testing.T) {
	bad := []Options{
		{Policy: "newest"},
		{Direction: "diagonal"},
		{LevelSpacing: -5},
		{Formats: []string{"gif"}},
	}
	for _, o := range bad {
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("ValidateAndSetDefaults(%+v) = nil, want error", o)
		} else if !errors.IsClientError(err) {
			t.Errorf("error %v should be a client error", err)
		}
	}
}

func TestViewKeyOpts_DistinguishesOptions(t *testing.T) {
	a := Options{Workflow: "msat"}
	b := Options{Workflow: "rd"}
	c := Options{Workflow: "msat", NoChain: true}
	for _, o := range []*Options{&a, &b, &c} {
		o.SetDefaults()
	}
	if a.ViewKeyOpts() == b.ViewKeyOpts() || a.ViewKeyOpts() == c.ViewKeyOpts() {
		t.Error("different options must produce different view keys")
	}
}

func TestExecute(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Workflow: "msat", Formats: []string{FormatJSON, FormatDOT}}

	res, err := r.Execute(ctx, testDefinition(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.RunID == "" || res.DefHash == "" {
		t.Error("RunID and DefHash should be set")
	}
	if res.Graph == nil {
		t.Fatal("Graph should be set on a fresh build")
	}
	if res.CacheInfo.ViewHit || res.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}

	if got := res.View.NodeIDs(); strings.Join(got, ",") != "N0,MSAT1,MSAT2" {
		t.Errorf("view nodes = %v", got)
	}
	if res.Stats.NodeCount != 4 || res.Stats.EdgeCount != 4 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.Diagnostics.Excluded) != 1 {
		t.Errorf("Excluded = %v, want one feedback edge", res.Diagnostics.Excluded)
	}

	view, err := graph.UnmarshalView(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if view.Workflow != "msat" || len(view.Edges) != 3 {
		t.Errorf("json artifact = %+v", view)
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), "style=dashed") {
		t.Error("dot artifact should draw the feedback edge dashed")
	}
}

func TestExecute_CacheHit(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatJSON}}

	first, err := r.Execute(ctx, testDefinition(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	second, err := r.Execute(ctx, testDefinition(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !second.CacheInfo.ViewHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if second.Graph != nil {
		t.Error("Graph should be nil when the view is cached")
	}
	if second.RunID == first.RunID {
		t.Error("each run needs its own RunID")
	}
	if string(second.Artifacts[FormatJSON]) != string(first.Artifacts[FormatJSON]) {
		t.Error("cached artifact differs from rendered artifact")
	}
	if len(second.Diagnostics.Excluded) != 1 {
		t.Error("diagnostics should survive the cache")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, testDefinition(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if third.CacheInfo.ViewHit || third.CacheInfo.RenderHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecute_InvalidDefinition(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	def := graph.Definition{
		Nodes: []graph.NodeRecord{{ID: "A"}},
		Edges: []graph.EdgeRecord{{Source: "A", Target: "ghost"}},
	}

	_, err := r.Execute(context.Background(), def, Options{})
	if !errors.Is(err, errors.ErrCodeDanglingEdge) {
		t.Errorf("Execute() error = %v, want DANGLING_EDGE", err)
	}
}

func TestBuildWithCacheInfo(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	v, g, hit, err := r.BuildWithCacheInfo(ctx, testDefinition(), Options{Workflow: "rd"})
	if err != nil {
		t.Fatalf("BuildWithCacheInfo() error = %v", err)
	}
	if hit || g == nil {
		t.Errorf("first build: hit=%v graph=%v", hit, g)
	}
	if strings.Join(v.NodeIDs(), ",") != "N0,RD1" {
		t.Errorf("rd view nodes = %v", v.NodeIDs())
	}

	_, _, hit, _ = r.BuildWithCacheInfo(ctx, testDefinition(), Options{Workflow: "rd"})
	if !hit {
		t.Error("second build should hit the cache")
	}
}

func TestRender_Formats(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	g, err := r.Build(context.Background(), testDefinition(), Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	opts := Options{Formats: []string{FormatDOT, FormatSVG}, Detail: true}
	opts.SetDefaults()
	artifacts, err := Render(context.Background(), g.Filter(""), opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(artifacts[FormatDOT]), "level: 2") {
		t.Error("detailed DOT should include levels")
	}
	if !strings.Contains(string(artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact is not SVG")
	}
}

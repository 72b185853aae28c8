package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
)

const plantDefinition = `{
  "nodes": [
    {"id": "N0", "data": {"label": "Intake"}},
    {"id": "MSAT1"},
    {"id": "MSAT2"},
    {"id": "RD1"}
  ],
  "edges": [
    {"source": "N0", "target": "MSAT1"},
    {"source": "MSAT1", "target": "MSAT2"},
    {"source": "MSAT2", "target": "MSAT1"},
    {"source": "N0", "target": "RD1"},
    {"source": "N0", "target": "RD1"}
  ]
}`

// testEnv is a config file whose local source holds plant.json and whose
// file cache lives in a temp directory.
type testEnv struct {
	dir    string
	config string
	plant  string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	defs := filepath.Join(dir, "defs")
	if err := os.MkdirAll(defs, 0o755); err != nil {
		t.Fatal(err)
	}
	plant := filepath.Join(defs, "plant.json")
	if err := os.WriteFile(plant, []byte(plantDefinition), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := fmt.Sprintf("[cache]\nbackend = \"file\"\ndir = %q\n\n[source]\nkind = \"local\"\ndir = %q\n",
		filepath.Join(dir, "cache"), defs)
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	old := uiOut
	uiOut = &bytes.Buffer{}
	t.Cleanup(func() { uiOut = old })

	return testEnv{dir: dir, config: cfgPath, plant: plant}
}

// run executes the root command and returns what it wrote to stdout.
func (e testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	c.stdin = strings.NewReader(stdin)

	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "build", env.plant, "-w", "msat")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	view, err := graph.UnmarshalView([]byte(out))
	if err != nil {
		t.Fatalf("output is not a view: %v\n%s", err, out)
	}
	if got := view.NodeIDs(); !slices.Equal(got, []string{"N0", "MSAT1", "MSAT2"}) {
		t.Errorf("nodes = %v", got)
	}
	feedback := 0
	for _, e := range view.Edges {
		if e.Feedback {
			feedback++
			if e.Source != "MSAT2" || e.Target != "MSAT1" {
				t.Errorf("feedback edge = %s->%s, want MSAT2->MSAT1", e.Source, e.Target)
			}
		}
	}
	if feedback != 1 {
		t.Errorf("feedback edges = %d, want 1", feedback)
	}
}

func TestBuildCommand_ByNameAndStdin(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "build", "plant", "--levels")
	if err != nil {
		t.Fatalf("build by name: %v", err)
	}
	if !strings.Contains(out, "L0") || !strings.Contains(out, "N0") || !strings.Contains(out, "L2") {
		t.Errorf("levels output = %q", out)
	}

	out, err = env.run(t, `[{"id":"A"},{"id":"B"}]`, "build", "-")
	if err != nil {
		t.Fatalf("build from stdin: %v", err)
	}
	view, _ := graph.UnmarshalView([]byte(out))
	if len(view.Edges) != 1 || view.Edges[0].Source != "A" || view.Edges[0].Target != "B" {
		t.Errorf("chained edges = %+v", view.Edges)
	}

	_, err = env.run(t, "", "build", "missing")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing definition error = %v, want NOT_FOUND", err)
	}
}

func TestBuildCommand_Output(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "out", "view.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := env.run(t, "", "build", env.plant, "-o", path, "--direction", "vertical"); err != nil {
		t.Fatalf("build: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	view, _ := graph.UnmarshalView(data)
	n0, _ := view.Node("N0")
	msat1, _ := view.Node("MSAT1")
	if msat1.Position.Y <= n0.Position.Y {
		t.Errorf("vertical layout should grow downwards: N0=%v MSAT1=%v", n0.Position, msat1.Position)
	}
}

func TestDepsCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "deps", env.plant, "MSAT1", "-w", "msat")
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	if strings.TrimSpace(out) != "N0" {
		t.Errorf("deps MSAT1 = %q, want N0", out)
	}

	out, err = env.run(t, "", "deps", env.plant, "--all", "--json", "-w", "rd")
	if err != nil {
		t.Fatalf("deps --all: %v", err)
	}
	var all map[string][]string
	if err := json.Unmarshal([]byte(out), &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || !slices.Equal(all["RD1"], []string{"N0"}) || len(all["N0"]) != 0 {
		t.Errorf("rd deps = %v", all)
	}

	out, _ = env.run(t, "", "deps", env.plant, "GHOST", "--json")
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("unknown node deps = %q, want []", out)
	}

	if _, err := env.run(t, "", "deps", env.plant); err == nil {
		t.Error("deps without node or --all should fail")
	}
}

func TestValidateCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "validate", env.plant, "--json")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	var report validateReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatal(err)
	}
	if !report.Valid || report.CycleEdges != 1 || report.Duplicates != 1 || report.Nodes != 4 {
		t.Errorf("report = %+v", report)
	}

	if _, err := env.run(t, "", "validate", env.plant, "--strict"); err == nil {
		t.Error("strict validation should fail on a cycle")
	}

	dangling := filepath.Join(env.dir, "dangling.json")
	_ = os.WriteFile(dangling, []byte(`{"nodes":[{"id":"A"}],"edges":[{"source":"A","target":"B"}]}`), 0o644)
	if _, err := env.run(t, "", "validate", dangling); !errors.Is(err, errors.ErrCodeDanglingEdge) {
		t.Errorf("dangling edge error = %v", err)
	}
}

func TestRenderCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "render", env.plant, "-f", "dot", "-o", "-")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "digraph G {") || !strings.Contains(out, "style=dashed") {
		t.Errorf("dot output = %q", out)
	}

	base := filepath.Join(env.dir, "render", "plant")
	if _, err := env.run(t, "", "render", env.plant, "-f", "dot,json", "-o", base); err != nil {
		t.Fatalf("render files: %v", err)
	}
	for _, ext := range []string{".dot", ".json"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s: %v", base+ext, err)
		}
	}

	if _, err := env.run(t, "", "render", env.plant, "-f", "gif"); err == nil {
		t.Error("invalid format should fail")
	}
}

func TestWorkflowsCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "", "workflows")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"all", "msat", "rd"} {
		if !strings.Contains(out, want) {
			t.Errorf("workflows output missing %q: %s", want, out)
		}
	}
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "config", "path")
	if err != nil || strings.TrimSpace(out) != env.config {
		t.Errorf("config path = %q, %v", out, err)
	}

	out, err = env.run(t, "", "config", "show")
	if err != nil || !strings.Contains(out, "[source]") {
		t.Errorf("config show = %q, %v", out, err)
	}

	if _, err := env.run(t, "", "config", "init"); err == nil {
		t.Error("config init should refuse to overwrite")
	}
	if _, err := env.run(t, "", "config", "init", "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "cache", "path")
	if err != nil || strings.TrimSpace(out) != filepath.Join(env.dir, "cache") {
		t.Errorf("cache path = %q, %v", out, err)
	}

	if _, err := env.run(t, "", "build", env.plant); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run(t, "", "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(env.dir, "cache"))
	if len(entries) != 0 {
		t.Errorf("cache has %d entries after clear", len(entries))
	}
}

func TestDefinitionName(t *testing.T) {
	tests := map[string]string{
		"plant.json":             "plant",
		"dir/plant.nodes.json":   "plant",
		"/abs/path/process.json": "process",
		"noext":                  "noext",
	}
	for in, want := range tests {
		if got := definitionName(in); got != want {
			t.Errorf("definitionName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		base    string
		formats []string
		want    map[string]string
	}{
		{"out/plant", []string{"svg"}, map[string]string{"svg": "out/plant.svg"}},
		{"plant.svg", []string{"svg"}, map[string]string{"svg": "plant.svg"}},
		{"plant.svg", []string{"svg", "dot"}, map[string]string{"svg": "plant.svg", "dot": "plant.dot"}},
		{"plant-v1.2", []string{"dot"}, map[string]string{"dot": "plant-v1.2.dot"}},
	}
	for _, tt := range tests {
		got := outputPaths(tt.base, tt.formats)
		for f, want := range tt.want {
			if got[f] != want {
				t.Errorf("outputPaths(%q, %v)[%s] = %q, want %q", tt.base, tt.formats, f, got[f], want)
			}
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg, png,,pdf", []string{"svg", "png", "pdf"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

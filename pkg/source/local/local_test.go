package local

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/dagflow/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestSource(t *testing.T) *Source {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "combined.json", `{"nodes":[{"id":"A"},{"id":"B"}],"edges":[{"source":"A","target":"B"}]}`)
	writeFile(t, dir, "split.nodes.json", `[{"id":"N0"},{"id":"MSAT1"}]`)
	writeFile(t, dir, "split.edges.json", `[{"source":"N0","target":"MSAT1","type":"smoothstep"}]`)
	writeFile(t, dir, "chain.nodes.json", `[{"id":"X"},{"id":"Y"}]`)
	writeFile(t, dir, "orphan.edges.json", `[]`)
	writeFile(t, dir, "notes.txt", "ignored")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestSource_List(t *testing.T) {
	s := newTestSource(t)
	names, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"chain", "combined", "split"}
	if !slices.Equal(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}
}

func TestSource_Get(t *testing.T) {
	s := newTestSource(t)
	ctx := context.Background()

	def, err := s.Get(ctx, "combined")
	if err != nil {
		t.Fatalf("Get(combined) error = %v", err)
	}
	if def.Name != "combined" || len(def.Nodes) != 2 || len(def.Edges) != 1 {
		t.Errorf("Get(combined) = %+v", def)
	}

	def, err = s.Get(ctx, "split")
	if err != nil {
		t.Fatalf("Get(split) error = %v", err)
	}
	if len(def.Edges) != 1 || def.Edges[0].Type != "smoothstep" {
		t.Errorf("split edges = %+v", def.Edges)
	}

	def, err = s.Get(ctx, "chain")
	if err != nil {
		t.Fatalf("Get(chain) error = %v", err)
	}
	if def.HasEdges() {
		t.Error("chain has no edge file and should have no edges")
	}
}

func TestSource_Errors(t *testing.T) {
	s := newTestSource(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(missing) error = %v, want NOT_FOUND", err)
	}
	if _, err := s.Get(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get(traversal) error = %v, want INVALID_INPUT", err)
	}
	if _, err := New(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("New(missing dir) error = %v, want NOT_FOUND", err)
	}
}

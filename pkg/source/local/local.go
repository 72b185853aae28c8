// Package local loads workflow definitions from a directory.
//
// Each definition is stored either as one combined document
//
//	<dir>/<name>.json
//
// or as a node file with an optional separate edge list
//
//	<dir>/<name>.nodes.json
//	<dir>/<name>.edges.json
//
// The combined form wins when both exist. A missing edge file means the
// definition has no explicit edges.
package local

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
	dfio "github.com/matzehuels/dagflow/pkg/io"
	"github.com/matzehuels/dagflow/pkg/source"
)

const (
	extCombined = ".json"
	extNodes    = ".nodes.json"
	extEdges    = ".edges.json"
)

// Source reads definitions from a directory.
type Source struct {
	dir string
}

// New returns a source rooted at dir. The directory must exist.
func New(dir string) (*Source, error) {
	if err := errors.ValidatePath(dir); err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "definition directory %s", dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", dir)
	}
	return &Source{dir: dir}, nil
}

// Kind implements source.Source.
func (s *Source) Kind() string { return "local" }

// Dir returns the root directory.
func (s *Source) Dir() string { return s.dir }

// List implements source.Source.
func (s *Source) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		if name, ok := definitionName(e.Name()); ok {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Get implements source.Source.
func (s *Source) Get(ctx context.Context, name string) (graph.Definition, error) {
	if err := errors.ValidateDefinitionName(name); err != nil {
		return graph.Definition{}, err
	}
	if err := ctx.Err(); err != nil {
		return graph.Definition{}, err
	}

	combined := filepath.Join(s.dir, name+extCombined)
	if exists(combined) {
		return s.load(name, combined, "")
	}
	nodes := filepath.Join(s.dir, name+extNodes)
	if exists(nodes) {
		return s.load(name, nodes, filepath.Join(s.dir, name+extEdges))
	}
	return graph.Definition{}, source.NotFound(s.Kind(), name)
}

func (s *Source) load(name, nodesPath, edgesPath string) (graph.Definition, error) {
	def, err := dfio.ImportDefinition(nodesPath, edgesPath)
	if err != nil {
		return graph.Definition{}, err
	}
	if def.Name == "" {
		def.Name = name
	}
	return def, nil
}

// definitionName maps a file name to the definition it belongs to. Edge
// files only accompany a node file and are not definitions on their own.
func definitionName(file string) (string, bool) {
	switch {
	case strings.HasSuffix(file, extEdges):
		return "", false
	case strings.HasSuffix(file, extNodes):
		return strings.TrimSuffix(file, extNodes), true
	case strings.HasSuffix(file, extCombined):
		return strings.TrimSuffix(file, extCombined), true
	}
	return "", false
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

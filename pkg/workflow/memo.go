package workflow

import (
	"sync"

	"github.com/matzehuels/dagflow/pkg/cache"
	"github.com/matzehuels/dagflow/pkg/graph"
)

// Memo caches built graphs by the content hash of their definition. It is
// owned by the caller and safe for concurrent use. All graphs in a Memo are
// built with the same options.
type Memo struct {
	opts BuildOptions

	mu     sync.Mutex
	graphs map[string]*Graph
}

// NewMemo returns an empty memo that builds with opts.
func NewMemo(opts BuildOptions) *Memo {
	opts.SetDefaults()
	return &Memo{opts: opts, graphs: make(map[string]*Graph)}
}

// Build returns the memoized graph for def, building it on first use. The
// boolean reports a hit. Failed builds are not memoized.
func (m *Memo) Build(def graph.Definition) (*Graph, bool, error) {
	key, err := cache.HashJSON(def)
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.graphs[key]; ok {
		return g, true, nil
	}
	g, err := Build(def, m.opts)
	if err != nil {
		return nil, false, err
	}
	m.graphs[key] = g
	return g, false, nil
}

// Len returns the number of memoized graphs.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.graphs)
}

// Reset drops every memoized graph.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.graphs)
}

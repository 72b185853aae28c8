package graph_test

import (
	"fmt"

	"github.com/matzehuels/dagflow/pkg/graph"
)

func ExampleUnmarshalDefinition() {
	data := []byte(`[
		{"id": "N0"},
		{"id": "MSAT1", "type": "input"},
		{"id": "RD1"}
	]`)

	def, err := graph.UnmarshalDefinition(data)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("nodes:", len(def.Nodes))
	fmt.Println("has edges:", def.HasEdges())
	fmt.Println("kind:", graph.NodeFromRecord(def.Nodes[0]).Kind)
	// Output:
	// nodes: 3
	// has edges: false
	// kind: custom
}

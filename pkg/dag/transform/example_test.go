package transform_test

import (
	"fmt"

	"github.com/matzehuels/dagflow/pkg/dag"
	"github.com/matzehuels/dagflow/pkg/dag/transform"
)

func ExampleNormalize() {
	// An approval loop: review can send work back to draft.
	g := dag.New(nil)
	for _, id := range []string{"draft", "review", "approve", "publish"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "draft", To: "review"})
	_ = g.AddEdge(dag.Edge{From: "review", To: "approve"})
	_ = g.AddEdge(dag.Edge{From: "approve", To: "draft"}) // feedback
	_ = g.AddEdge(dag.Edge{From: "approve", To: "publish"})

	res, stats := transform.Normalize(g, transform.NormalizeOptions{})

	for _, id := range g.NodeIDs() {
		fmt.Printf("%s: level %d\n", id, res.Level[id])
	}
	fmt.Println("excluded:", stats.CycleEdgesExcluded)
	fmt.Println("draft waits on:", res.Blocking["draft"])
	// Output:
	// draft: level 0
	// review: level 1
	// approve: level 2
	// publish: level 3
	// excluded: 1
	// draft waits on: []
}

func ExampleHasPath() {
	edges := []dag.Edge{{From: "a", To: "b"}, {From: "b", To: "c"}}
	fmt.Println(transform.HasPath(edges, "a", "c"))
	fmt.Println(transform.HasPath(edges, "c", "a"))
	// Output:
	// true
	// false
}

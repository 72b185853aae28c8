// Package nodelink renders workflow views as node-link diagrams.
//
// # Usage
//
// Convert a view to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g.Filter("msat"), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The generated DOT reads left to right (rankdir=LR) so Graphviz columns
// line up with computed levels. Nodes on one level are pinned to the same
// rank. Feedback edges are dashed and excluded from ranking.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink

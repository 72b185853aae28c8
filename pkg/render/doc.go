// Package render provides output format conversion for rendered workflows.
//
// # Overview
//
// The [nodelink] subpackage turns a workflow view into Graphviz DOT and
// SVG. This package converts SVG into other formats with the external
// rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// When rsvg-convert is missing, conversions fail with [ErrConverterMissing].
//
// [nodelink]: github.com/matzehuels/dagflow/pkg/render/nodelink
package render

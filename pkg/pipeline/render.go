package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/observability"
	"github.com/matzehuels/dagflow/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
// SVG, PNG and PDF are derived from the same DOT document.
func Render(ctx context.Context, v graph.View, opts Options) (map[string][]byte, error) {
	dotOpts := nodelink.Options{Detailed: opts.Detail, Direction: opts.Spacing().Direction}
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	for _, format := range opts.Formats {
		if format != FormatJSON && dot == "" {
			dot = nodelink.ToDOT(v, dotOpts)
		}

		observability.Build().OnRenderStart(ctx, format)
		start := time.Now()

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			data, err = graph.MarshalView(v)
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, 2.0)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		default:
			err = ValidateFormat(format)
		}

		observability.Build().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			if errors.GetCode(err) != "" {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

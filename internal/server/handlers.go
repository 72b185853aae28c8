package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dagflow/pkg/buildinfo"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/httputil"
	dfio "github.com/matzehuels/dagflow/pkg/io"
	"github.com/matzehuels/dagflow/pkg/pipeline"
	"github.com/matzehuels/dagflow/pkg/workflow"
)

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

type dependenciesResponse struct {
	Definition   string   `json:"definition"`
	Workflow     string   `json:"workflow"`
	Node         string   `json:"node"`
	Known        bool     `json:"known"`
	Dependencies []string `json:"dependencies"`
}

type diagnosticsResponse struct {
	Definition  string               `json:"definition"`
	Nodes       int                  `json:"nodes"`
	Edges       int                  `json:"edges"`
	MaxLevel    int                  `json:"maxLevel"`
	Diagnostics workflow.Diagnostics `json:"diagnostics"`
	Error       string               `json:"error,omitempty"`
}

type workflowsResponse struct {
	Wildcard  string          `json:"wildcard"`
	Workflows []workflow.Spec `json:"workflows"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", requestIDFrom(r.Context()))
	}
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Current()})
}

func (s *Server) handleListDefinitions(w http.ResponseWriter, r *http.Request) {
	names, err := s.source.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"definitions": names, "source": s.source.Kind()})
}

func (s *Server) handleGetDefinition(w http.ResponseWriter, r *http.Request) {
	def, err := s.source.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, def)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	g, err := s.graph(r, name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := diagnosticsResponse{
		Definition:  name,
		Nodes:       g.NodeCount(),
		Edges:       g.EdgeCount(),
		MaxLevel:    g.MaxLevel(),
		Diagnostics: g.Diagnostics(),
	}
	if err := g.Diagnostics().Err(); err != nil {
		resp.Error = err.Error()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, _ *http.Request) {
	c := s.opts.Defaults.Catalog
	specs := c.Workflows
	if specs == nil {
		specs = []workflow.Spec{}
	}
	httputil.WriteJSON(w, http.StatusOK, workflowsResponse{Wildcard: c.Wildcard, Workflows: specs})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	opts, err := s.runOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	def, err := s.definition(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeView(w, r, def, opts)
}

func (s *Server) handleBuildView(w http.ResponseWriter, r *http.Request) {
	opts, err := s.runOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	def, err := dfio.ReadDefinition(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeView(w, r, def, opts)
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, def graph.Definition, opts pipeline.Options) {
	view, _, hit, err := s.runner.BuildWithCacheInfo(r.Context(), def, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.runOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Formats = []string{format}

	def, err := s.definition(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), def, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setCacheHeader(w, res.CacheInfo.RenderHit)
	httputil.WriteBytes(w, http.StatusOK, contentTypes[format], res.Artifacts[format])
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflow")
	if err := errors.ValidateWorkflowID(workflowID); err != nil {
		s.fail(w, r, err)
		return
	}
	nodeID := chi.URLParam(r, "node")
	if err := errors.ValidateNodeID(nodeID); err != nil {
		s.fail(w, r, err)
		return
	}
	name := r.URL.Query().Get("definition")
	g, err := s.graph(r, name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	_, known := g.Node(nodeID)
	httputil.WriteJSON(w, http.StatusOK, dependenciesResponse{
		Definition:   name,
		Workflow:     workflowID,
		Node:         nodeID,
		Known:        known,
		Dependencies: g.DependenciesFor(nodeID, workflowID),
	})
}

// graph loads and builds a named definition with the server defaults.
func (s *Server) graph(r *http.Request, name string) (*workflow.Graph, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "definition query parameter is required")
	}
	def, err := s.source.Get(r.Context(), name)
	if err != nil {
		return nil, err
	}
	if s.memo.Len() >= maxMemoGraphs {
		s.memo.Reset()
	}
	g, _, err := s.memo.Build(def)
	return g, err
}

// definition loads the definition named by the "definition" query parameter.
func (s *Server) definition(r *http.Request) (graph.Definition, error) {
	name := r.URL.Query().Get("definition")
	if name == "" {
		return graph.Definition{}, errors.New(errors.ErrCodeInvalidInput, "definition query parameter is required")
	}
	return s.source.Get(r.Context(), name)
}

// runOptions derives pipeline options from the server defaults, the
// workflow path parameter and query overrides.
func (s *Server) runOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.opts.Defaults
	opts.Logger = s.logger.With("request_id", requestIDFrom(r.Context()))

	workflowID := chi.URLParam(r, "workflow")
	if err := errors.ValidateWorkflowID(workflowID); err != nil {
		return opts, err
	}
	opts.Workflow = workflowID

	q := r.URL.Query()
	if v := q.Get("policy"); v != "" {
		opts.Policy = v
	}
	if v := q.Get("direction"); v != "" {
		opts.Direction = v
	}
	for name, dst := range map[string]*bool{"no_chain": &opts.NoChain, "detail": &opts.Detail, "refresh": &opts.Refresh} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
			}
			*dst = b
		}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
}

// Package remote loads workflow definitions from another dagflow server
// over its HTTP API.
//
// List calls GET {base}/api/v1/definitions and Get calls
// GET {base}/api/v1/definitions/{name}. Connection failures and 5xx
// responses are retried with backoff; a 404 maps to NOT_FOUND. Wrap the
// source with [source.NewCached] to avoid refetching on every build.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/dagflow/pkg/buildinfo"
	"github.com/matzehuels/dagflow/pkg/cache"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/source"
)

const (
	kind        = "remote"
	httpTimeout = 10 * time.Second

	// maxResponseBytes bounds a single definition response.
	maxResponseBytes = 32 << 20
)

// errNotFound marks a 404 so Get can report the definition name.
var errNotFound = fmt.Errorf("resource not found")

// Source fetches definitions from a dagflow server.
type Source struct {
	base    *url.URL
	http    *http.Client
	headers map[string]string
}

var _ source.Source = (*Source)(nil)

// New creates a source for the server at baseURL. A non-empty token is sent
// as a bearer token on every request.
func New(baseURL, token string) (*Source, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid remote source URL %q", baseURL)
	}
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Source{
		base:    u,
		http:    &http.Client{Timeout: httpTimeout},
		headers: headers,
	}, nil
}

// Kind implements source.Source.
func (s *Source) Kind() string { return kind }

// URL returns the server base URL.
func (s *Source) URL() string { return s.base.String() }

// List implements source.Source.
func (s *Source) List(ctx context.Context) ([]string, error) {
	var resp struct {
		Definitions []string `json:"definitions"`
	}
	err := cache.RetryWithBackoff(ctx, func() error {
		return s.get(ctx, s.endpoint("definitions"), &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Definitions == nil {
		return []string{}, nil
	}
	return resp.Definitions, nil
}

// Get implements source.Source.
func (s *Source) Get(ctx context.Context, name string) (graph.Definition, error) {
	if err := errors.ValidateDefinitionName(name); err != nil {
		return graph.Definition{}, err
	}
	var def graph.Definition
	err := cache.RetryWithBackoff(ctx, func() error {
		def = graph.Definition{}
		return s.get(ctx, s.endpoint("definitions", name), &def)
	})
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return graph.Definition{}, source.NotFound(kind, name)
		}
		return graph.Definition{}, err
	}
	if def.Name == "" {
		def.Name = name
	}
	return def, nil
}

func (s *Source) endpoint(parts ...string) string {
	u := *s.base
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/" + strings.Join(escaped, "/")
	u.RawPath = ""
	return u.String()
}

// get performs a GET request and JSON-decodes the response into v.
func (s *Source) get(ctx context.Context, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	for k, val := range s.headers {
		req.Header.Set(k, val)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "remote source"))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", target)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.Wrap(errors.ErrCodeNotFound, errNotFound, "remote source")
	case code >= 500:
		return cache.Retryable(errors.New(errors.ErrCodeNetwork, "remote source: status %d", code))
	case code >= 400:
		return errors.New(errors.ErrCodeInvalidInput, "remote source: status %d", code)
	default:
		return errors.New(errors.ErrCodeNetwork, "remote source: status %d", code)
	}
}

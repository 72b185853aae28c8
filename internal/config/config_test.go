package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/dagflow/pkg/cache"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/layout"
	"github.com/matzehuels/dagflow/pkg/source"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Layout != layout.DefaultSpacing() {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Source.Kind != SourceLocal {
		t.Errorf("backends = %s/%s", cfg.Cache.Backend, cfg.Source.Kind)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
policy = "strict"

[layout]
rank_spacing = 120
direction = "vertical"

[catalog]
common_prefixes = ["START"]
[[catalog.workflows]]
id = "qa"
prefix = "QA"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "90m"
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Policy != "strict" {
		t.Errorf("Policy = %q", cfg.Policy)
	}
	if cfg.Layout.Rank != 120 || cfg.Layout.Level != layout.DefaultLevelSpacing {
		t.Errorf("Layout = %+v, want rank override with default level", cfg.Layout)
	}
	if len(cfg.Catalog.Workflows) != 1 || cfg.Catalog.Workflows[0].ID != "qa" {
		t.Errorf("Catalog.Workflows = %+v", cfg.Catalog.Workflows)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL)
	}

	opts := cfg.PipelineOptions()
	if opts.Policy != "strict" || opts.Direction != "vertical" || opts.RankSpacing != 120 {
		t.Errorf("PipelineOptions() = %+v", opts)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		`policy = "random"`,
		"[cache]\nbackend = \"memcached\"",
		"[cache]\nbackend = \"redis\"",
		"[source]\nkind = \"mongo\"",
		"[source]\nkind = \"remote\"",
		"[source]\nkind = \"s3\"",
		"[layout]\ndirection = \"diagonal\"",
		"[cache]\nttl = \"soon\"",
		"not toml at all =",
	}
	for _, in := range tests {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) = nil error", in)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dagflow.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Path() != path {
		t.Errorf("Load() = addr %q path %q", cfg.Server.Addr, cfg.Path())
	}

	t.Setenv("DAGFLOW_ADDR", ":7070")
	cfg, _ = Load(path)
	if cfg.Server.Addr != ":7070" {
		t.Errorf("env override: addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("explicit missing file: error = %v, want NOT_FOUND", err)
	}

	unknown := filepath.Join(dir, "unknown.toml")
	_ = os.WriteFile(unknown, []byte("colour = \"blue\"\n"), 0o644)
	if _, err := Load(unknown); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown key: error = %v, want INVALID_FORMAT", err)
	}
}

func TestLoad_DefaultPathMissing(t *testing.T) {
	t.Setenv("DAGFLOW_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want defaults", cfg.Path())
	}
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dagflow.toml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Catalog.Workflows) != len(Default().Catalog.Workflows) {
		t.Errorf("round trip lost workflows: %+v", cfg.Catalog)
	}
	if err := WriteDefault(path); err == nil {
		t.Error("WriteDefault should refuse to overwrite")
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()
	cfg := Default()

	c, err := cfg.OpenCache(ctx, true)
	if err != nil || c != cache.NewNullCache() {
		t.Errorf("noCache: %v, %v", c, err)
	}

	cfg.Cache.Dir = t.TempDir()
	c, err = cfg.OpenCache(ctx, false)
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("OpenCache() = %T, want *cache.FileCache", c)
	}
}

func TestOpenSource_Local(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "demo.json"), []byte(`[{"id":"A"}]`), 0o644)

	cfg := Default()
	cfg.Source.Dir = dir
	src, closeFn, err := cfg.OpenSource(context.Background(), nil)
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	defer closeFn(context.Background())

	names, err := src.List(context.Background())
	if err != nil || len(names) != 1 || names[0] != "demo" {
		t.Errorf("List() = %v, %v", names, err)
	}
}

func TestOpenSource_Remote(t *testing.T) {
	t.Setenv("DAGFLOW_SOURCE_TOKEN", "from-env")
	cfg, err := Parse("[source]\nkind = \"remote\"\nurl = \"https://flows.example.com\"")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Source.Token != "" {
		t.Errorf("Parse should not apply env, token = %q", cfg.Source.Token)
	}
	applyEnv(cfg)
	if cfg.Source.Token != "from-env" {
		t.Errorf("token = %q, want from-env", cfg.Source.Token)
	}

	src, closeFn, err := cfg.OpenSource(context.Background(), nil)
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	defer closeFn(context.Background())
	if src.Kind() != "remote" {
		t.Errorf("Kind() = %q, want remote", src.Kind())
	}
	if _, ok := src.(*source.Cached); !ok {
		t.Errorf("remote source should be cached, got %T", src)
	}
}

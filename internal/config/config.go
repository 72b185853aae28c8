// Package config loads dagflow settings from a TOML file.
//
// Lookup order for the file: the explicit --config path, $DAGFLOW_CONFIG,
// $XDG_CONFIG_HOME/dagflow/dagflow.toml, then ~/.config/dagflow/dagflow.toml.
// A missing default file is not an error; built-in defaults apply.
// Connection strings and the remote source token can be overridden from
// the environment (DAGFLOW_ADDR, DAGFLOW_REDIS_URL, DAGFLOW_MONGO_URI,
// DAGFLOW_SOURCE_TOKEN) so secrets stay out of the file.
//
// Example file:
//
//	policy = "first-seen"
//
//	[layout]
//	level_spacing = 500
//	rank_spacing = 250
//	direction = "horizontal"
//
//	[catalog]
//	common_prefixes = ["N"]
//	common_ids = ["Q0"]
//	[[catalog.workflows]]
//	id = "msat"
//	prefix = "MSAT"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "1h"
//
//	[source]
//	kind = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dagflow/pkg/dag/transform"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/layout"
	"github.com/matzehuels/dagflow/pkg/workflow"
)

const (
	appName  = "dagflow"
	fileName = "dagflow.toml"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Definition source kinds.
const (
	SourceLocal  = "local"
	SourceMongo  = "mongo"
	SourceRemote = "remote"
)

// Duration is a time.Duration written as a string ("90s", "1h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete file configuration.
type Config struct {
	Policy  string           `toml:"policy"`
	NoChain bool             `toml:"no_chain"`
	Layout  layout.Spacing   `toml:"layout"`
	Catalog workflow.Catalog `toml:"catalog"`
	Cache   CacheConfig      `toml:"cache"`
	Source  SourceConfig     `toml:"source"`
	Server  ServerConfig     `toml:"server"`

	// path is the file the config was read from, empty for defaults.
	path string
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"` // caps entry lifetime; zero keeps per-type defaults
}

// SourceConfig selects where named definitions are loaded from.
type SourceConfig struct {
	Kind       string `toml:"kind"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	URL        string `toml:"url"`   // remote: base URL of another dagflow server
	Token      string `toml:"token"` // remote: bearer token
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	Metrics         bool     `toml:"metrics"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{
		Policy:  string(transform.PolicyFirstSeen),
		Layout:  layout.DefaultSpacing(),
		Catalog: workflow.DefaultCatalog(),
		Cache:   CacheConfig{Backend: CacheFile},
		Source:  SourceConfig{Kind: SourceLocal, Dir: "."},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: Duration{10 * time.Second},
			Metrics:         true,
		},
	}
	return cfg
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() (string, error) {
	if p := os.Getenv("DAGFLOW_CONFIG"); p != "" {
		return p, nil
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the configuration at path. An empty path looks up
// [DefaultPath] and falls back to [Default] when that file is absent; an
// explicit path that does not exist is a NOT_FOUND error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return applyEnv(Default()), nil
		}
		path = p
	}

	cfg := blank()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
			}
			return applyEnv(Default()), nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "config file %s: unknown key %q", path, undecoded[0].String())
	}
	cfg.path = path
	cfg.fillDefaults()

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration from TOML text. It applies defaults but not
// environment overrides.
func Parse(data string) (*Config, error) {
	cfg := blank()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string { return c.path }

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := transform.ParsePolicy(c.Policy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "policy")
	}
	if err := c.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "layout")
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache: redis backend requires redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache: invalid backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache: ttl must not be negative")
	}
	switch c.Source.Kind {
	case SourceLocal:
	case SourceMongo:
		if c.Source.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "source: mongo kind requires mongo_uri")
		}
	case SourceRemote:
		if c.Source.URL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "source: remote kind requires url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "source: invalid kind %q (must be local, mongo or remote)", c.Source.Kind)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server: addr is required")
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrCodeInvalidPath, "%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := Default().Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// blank returns the defaults with an empty catalog. Decoding merges array
// tables into existing slice elements, so the catalog starts empty and is
// defaulted only when the file leaves it out entirely.
func blank() *Config {
	cfg := Default()
	cfg.Catalog = workflow.Catalog{}
	return cfg
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Catalog.Wildcard == "" && len(c.Catalog.Workflows) == 0 && len(c.Catalog.CommonIDs) == 0 && len(c.Catalog.CommonPrefixes) == 0 {
		c.Catalog = d.Catalog
	}
	if c.Policy == "" {
		c.Policy = d.Policy
	}
	c.Layout = c.Layout.WithDefaults()
	c.Catalog = c.Catalog.WithDefaults()
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Source.Kind == "" {
		c.Source.Kind = d.Source.Kind
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
}

func applyEnv(c *Config) *Config {
	if v := os.Getenv("DAGFLOW_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DAGFLOW_REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("DAGFLOW_MONGO_URI"); v != "" {
		c.Source.MongoURI = v
	}
	if v := os.Getenv("DAGFLOW_SOURCE_TOKEN"); v != "" {
		c.Source.Token = v
	}
	return c
}

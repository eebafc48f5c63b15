package project

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig wraps every semantic error of a config file.
var ErrInvalidConfig = errors.New("invalid config")

// Config mirrors hxinfer.toml. Zero values mean "use the default".
type Config struct {
	Check   CheckConfig   `toml:"check"`
	Sources SourcesConfig `toml:"sources"`
}

type CheckConfig struct {
	MaxDiagnostics   int  `toml:"max_diagnostics"`
	Jobs             int  `toml:"jobs"`
	WarningsAsErrors bool `toml:"warnings_as_errors"`
	// Cache enables the on-disk diagnostics cache; nil means enabled.
	Cache        *bool `toml:"cache,omitempty"`
	StrictGuards bool  `toml:"strict_guards"`
}

type SourcesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Project is a loaded config with its location.
type Project struct {
	Path   string // hxinfer.toml, empty when running without one
	Root   string
	Config Config
}

// Default is the config written by `hxinfer init`.
func Default() Config {
	enabled := true
	return Config{
		Check: CheckConfig{
			MaxDiagnostics: 100,
			Cache:          &enabled,
		},
		Sources: SourcesConfig{
			Include: []string{"src"},
			Exclude: []string{"**/_*"},
		},
	}
}

// Load finds hxinfer.toml above startDir. Without one it returns a project
// rooted at startDir with an empty config and ok=false.
func Load(startDir string) (p *Project, ok bool, err error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		root, err := filepath.Abs(startDir)
		if err != nil {
			return nil, false, fmt.Errorf("failed to resolve start directory: %w", err)
		}
		return &Project{Root: root}, false, nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Project{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes and validates one config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("%w: [check].max_diagnostics must not be negative", ErrInvalidConfig)
	}
	if c.Check.Jobs < 0 {
		return fmt.Errorf("%w: [check].jobs must not be negative", ErrInvalidConfig)
	}
	for _, pattern := range append(append([]string(nil), c.Sources.Include...), c.Sources.Exclude...) {
		if _, err := filepath.Match(strings.ReplaceAll(pattern, "**", "*"), ""); err != nil {
			return fmt.Errorf("%w: bad pattern %q", ErrInvalidConfig, pattern)
		}
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// JobsOrDefault is the worker count: the configured one or GOMAXPROCS.
func (c CheckConfig) JobsOrDefault() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (c CheckConfig) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

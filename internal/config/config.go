// Package config loads per-vault settings from the config file inside
// the vault's data directory, falling back to built-in defaults when
// the file or individual keys are absent.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
)

// DataDirName is the per-vault directory holding the graph database,
// the configuration file, and everything else the indexer writes.
const DataDirName = ".zettelscript"

// FileName is the configuration file name inside the data directory.
const FileName = "config.yaml"

// dbDirName is the graph database directory inside the data directory.
const dbDirName = "graph"

// Config holds the per-vault settings.
type Config struct {
	// DataDir is where the graph database lives, relative to the vault
	// root unless absolute.
	DataDir string `yaml:"data_dir"`

	// IgnorePatterns are gitignore-style patterns excluded from
	// indexing, on top of .gitignore and the built-in exclusions.
	IgnorePatterns []string `yaml:"ignore_patterns"`

	Watch WatchConfig `yaml:"watch"`
	Index IndexConfig `yaml:"index"`
	Paths PathsConfig `yaml:"paths"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.IgnorePatterns, validation.Each(validation.Required)),
	); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Paths.Validate()
}

// DataPath returns the data directory for a vault root.
func (c *Config) DataPath(vaultRoot string) string {
	if filepath.IsAbs(c.DataDir) {
		return c.DataDir
	}
	return filepath.Join(vaultRoot, c.DataDir)
}

// DatabasePath returns the graph database directory for a vault root.
func (c *Config) DatabasePath(vaultRoot string) string {
	return filepath.Join(c.DataPath(vaultRoot), dbDirName)
}

// Duration is a time.Duration that unmarshals from YAML duration
// strings ("250ms", "2s") as well as integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

// WatchConfig holds file-watching configuration.
type WatchConfig struct {
	// Debounce is how long a changed file must stay quiet before it is
	// reindexed.
	Debounce Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(Duration(0))),
	)
}

// IndexConfig holds batch-indexing configuration.
type IndexConfig struct {
	// Parallelism bounds concurrent file parsing during a batch index.
	// Zero means the CPU count.
	Parallelism int `yaml:"parallelism"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Parallelism, validation.Min(0)),
	)
}

// PathsConfig holds the default knobs for path queries. The query
// commands start from these values and apply per-invocation flags on
// top.
type PathsConfig struct {
	K                int     `yaml:"k"`
	MaxDepth         int     `yaml:"max_depth"`
	MaxExtraHops     int     `yaml:"max_extra_hops"`
	OverlapThreshold float64 `yaml:"overlap_threshold"`
	MaxCandidates    int     `yaml:"max_candidates"`
}

// Validate validates the path-query configuration.
func (c *PathsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.K, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxDepth, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxExtraHops, validation.Min(0)),
		validation.Field(&c.OverlapThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.MaxCandidates, validation.Required, validation.Min(1)),
	)
}

// Query returns the path-query options these settings describe.
func (c *PathsConfig) Query() graph.PathQuery {
	return graph.PathQuery{
		K:                c.K,
		MaxDepth:         c.MaxDepth,
		MaxExtraHops:     c.MaxExtraHops,
		OverlapThreshold: c.OverlapThreshold,
		MaxCandidates:    c.MaxCandidates,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
// A vault without a config file runs on exactly these.
func NewDefaultConfig() *Config {
	q := graph.DefaultPathQuery()
	return &Config{
		DataDir: DataDirName,
		Watch: WatchConfig{
			Debounce: Duration(100 * time.Millisecond),
		},
		Paths: PathsConfig{
			K:                q.K,
			MaxDepth:         q.MaxDepth,
			MaxExtraHops:     q.MaxExtraHops,
			OverlapThreshold: q.OverlapThreshold,
			MaxCandidates:    q.MaxCandidates,
		},
	}
}

// FilePath returns the configuration file path for a vault root.
func FilePath(vaultRoot string) string {
	return filepath.Join(vaultRoot, DataDirName, FileName)
}

// Load reads the vault's configuration file. A missing file is not an
// error: the defaults apply unchanged. Keys the file does set override
// the defaults, and environment variables in the file are expanded
// before parsing.
func Load(vaultRoot string) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(FilePath(vaultRoot))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

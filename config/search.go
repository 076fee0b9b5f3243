package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// MaxFileSize is the raw size ceiling above which files are never extracted.
	MaxFileSize int64 = 50 * 1024 * 1024

	DefaultResultLimit    = 20
	DefaultMatchTimeout   = 5 * time.Second
	DefaultExtractTimeout = 30 * time.Second
	DefaultContextWidth   = 40
)

// SearchConfig holds everything a single search invocation needs.
// It is built once at startup and treated as read-only afterwards.
type SearchConfig struct {
	RootDirectory  string        `toml:"root_directory"`
	Pattern        string        `toml:"-"`
	CaseSensitive  bool          `toml:"case_sensitive"`
	UseRegex       bool          `toml:"use_regex"`
	UseOCR         bool          `toml:"use_ocr"`
	ShowPreview    bool          `toml:"show_preview"`
	Extensions     []string      `toml:"extensions"`
	MaxDepth       int           `toml:"max_depth"` // negative = unlimited, 0 = root files only
	IncludeHidden  bool          `toml:"include_hidden"`
	ResultLimit    int           `toml:"result_limit"`
	Interactive    bool          `toml:"interactive"`
	Workers        int           `toml:"workers"`
	MatchTimeout   time.Duration `toml:"-"`
	ExtractTimeout time.Duration `toml:"-"`
	ContextWidth   int           `toml:"context_width"` // 0 = previews show line numbers only
	SkipCommonDirs bool          `toml:"skip_common_dirs"`

	extSet map[string]struct{}
}

// DefaultSearchConfig returns a config populated with the documented defaults.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		RootDirectory:  ".",
		MaxDepth:       -1,
		ResultLimit:    DefaultResultLimit,
		MatchTimeout:   DefaultMatchTimeout,
		ExtractTimeout: DefaultExtractTimeout,
		ContextWidth:   DefaultContextWidth,
		SkipCommonDirs: true,
	}
}

// Validate checks invariants that do not need file system access.
func (c *SearchConfig) Validate() error {
	if c.Pattern == "" {
		return errors.New("search pattern is required")
	}
	if c.ResultLimit <= 0 {
		return fmt.Errorf("result limit must be positive, got %d", c.ResultLimit)
	}
	if c.Workers < 0 {
		return fmt.Errorf("worker count must not be negative, got %d", c.Workers)
	}
	if c.ContextWidth < 0 {
		return fmt.Errorf("context width must not be negative, got %d", c.ContextWidth)
	}
	for _, ext := range c.Extensions {
		if NormalizeExtension(ext) == "" {
			return fmt.Errorf("invalid extension filter %q", ext)
		}
	}
	return nil
}

// Prepare builds lookup structures and fills zero values with defaults.
func (c *SearchConfig) Prepare() {
	if c.RootDirectory == "" {
		c.RootDirectory = "."
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MatchTimeout <= 0 {
		c.MatchTimeout = DefaultMatchTimeout
	}
	if c.ExtractTimeout <= 0 {
		c.ExtractTimeout = DefaultExtractTimeout
	}
	c.extSet = nil
	if len(c.Extensions) > 0 {
		c.extSet = make(map[string]struct{}, len(c.Extensions))
		for _, ext := range c.Extensions {
			c.extSet[NormalizeExtension(ext)] = struct{}{}
		}
	}
}

// AllowsExtension reports whether the extension filter admits ext.
// An absent filter admits everything.
func (c *SearchConfig) AllowsExtension(ext string) bool {
	if c.extSet == nil {
		return true
	}
	_, ok := c.extSet[NormalizeExtension(ext)]
	return ok
}

// DepthAllowed reports whether a file at depth (0 = directly in root) is within MaxDepth.
func (c *SearchConfig) DepthAllowed(depth int) bool {
	return c.MaxDepth < 0 || depth <= c.MaxDepth
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/scour/config.toml, falling back to ~/.config.
func DefaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "scour", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "scour", "config.toml")
}

// fileConfig mirrors SearchConfig with durations as strings, since TOML has no
// duration type.
type fileConfig struct {
	SearchConfig
	MatchTimeout   string `toml:"match_timeout"`
	ExtractTimeout string `toml:"extract_timeout"`
}

// LoadFile overlays values from a TOML file onto base. A missing file is not an error.
func LoadFile(path string, base SearchConfig) (SearchConfig, error) {
	if path == "" {
		return base, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return base, nil
	}

	fc := fileConfig{SearchConfig: base}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return base, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg := fc.SearchConfig
	cfg.MatchTimeout = base.MatchTimeout
	cfg.ExtractTimeout = base.ExtractTimeout
	if fc.MatchTimeout != "" {
		d, err := time.ParseDuration(fc.MatchTimeout)
		if err != nil {
			return base, fmt.Errorf("invalid match_timeout in %s: %w", path, err)
		}
		cfg.MatchTimeout = d
	}
	if fc.ExtractTimeout != "" {
		d, err := time.ParseDuration(fc.ExtractTimeout)
		if err != nil {
			return base, fmt.Errorf("invalid extract_timeout in %s: %w", path, err)
		}
		cfg.ExtractTimeout = d
	}
	return cfg, nil
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Page holds page geometry in points.
type Page struct {
	Size         string  `toml:"size"`
	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	MarginTop    float64 `toml:"margin_top"`
	MarginRight  float64 `toml:"margin_right"`
	MarginBottom float64 `toml:"margin_bottom"`
	MarginLeft   float64 `toml:"margin_left"`
}

// Layout holds the fixed presentation allowances used by the two-column split.
type Layout struct {
	ContinuedHeaderAllowance  float64 `toml:"continued_header_allowance"`
	ContainerPaddingAllowance float64 `toml:"container_padding_allowance"`
	ColumnGap                 float64 `toml:"column_gap"`
}

// Render controls fonts, resources and render concurrency.
type Render struct {
	FontDirs       []string `toml:"font_dirs"`
	ResourcePaths  []string `toml:"resource_paths"`
	HeroPage       bool     `toml:"hero_page"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	Concurrency    int      `toml:"concurrency"`
}

// Cache locates the per-video artifact directory and the rendered PDF store.
type Cache struct {
	Dir         string `toml:"dir"`
	StorePath   string `toml:"store_path"`
	PDFTTLHours int    `toml:"pdf_ttl_hours"`
}

// Logging selects the log level and handler format.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full set of settings read from cookbook.toml.
type Config struct {
	Page    Page    `toml:"page"`
	Layout  Layout  `toml:"layout"`
	Render  Render  `toml:"render"`
	Cache   Cache   `toml:"cache"`
	Logging Logging `toml:"logging"`
}

// Timeout returns the per-render deadline, zero when disabled.
func (c *Config) Timeout() time.Duration {
	if c.Render.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Render.TimeoutSeconds) * time.Second
}

// PDFTTL returns how long rendered documents stay in the artifact store.
func (c *Config) PDFTTL() time.Duration {
	return time.Duration(c.Cache.PDFTTLHours) * time.Hour
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cookbook/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		def, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = def
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// EnsureDirectories creates the cache directory and the store's parent.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Cache.Dir, filepath.Dir(c.Cache.StorePath)} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

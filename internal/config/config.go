package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mysteryweb/internal/layout"
	"mysteryweb/internal/source"
)

const (
	DefaultPath = "mysteryweb.yaml"

	EnvDSN   = "MYSTERYWEB_DSN"
	EnvDebug = "MYSTERYWEB_DEBUG"
)

type ProjectConfig struct {
	Project string       `yaml:"project"`
	Version int          `yaml:"version"`
	Source  SourceConfig `yaml:"source"`
	Layout  LayoutConfig `yaml:"layout"`
	Build   BuildConfig  `yaml:"build"`
	Log     LogConfig    `yaml:"log"`
}

type SourceConfig struct {
	Kind    string   `yaml:"kind"`
	Path    string   `yaml:"path"`
	Paths   []string `yaml:"paths"`
	Exclude []string `yaml:"exclude"`
	DSN     string   `yaml:"dsn"`
}

type LayoutConfig struct {
	Algorithm   string                `yaml:"algorithm"`
	Direction   string                `yaml:"direction"`
	NodeSpacing float64               `yaml:"node_spacing"`
	RankSpacing float64               `yaml:"rank_spacing"`
	Alignment   string                `yaml:"alignment"`
	Threads     int                   `yaml:"threads"`
	OffThread   bool                  `yaml:"off_thread"`
	Force       layout.ForceOverrides `yaml:"force"`
}

type BuildConfig struct {
	IncludeOrphans bool `yaml:"include_orphans"`
	// Integrity is a pointer so an omitted key can default to true.
	Integrity *bool `yaml:"integrity"`
	MaxDepth  int   `yaml:"max_depth"`
	MaxNodes  int   `yaml:"max_nodes"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

// Default is the configuration used when no project file exists.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{Project: "mysteryweb", Version: 1}
	cfg.ApplyDefaults()
	return cfg
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	cfg.ApplyDefaults()
	cfg.ApplyEnv()

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault reads path, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*ProjectConfig, error) {
	cfg, err := LoadProjectConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.ApplyEnv()
		return cfg, nil
	}
	return cfg, err
}

// LoadEnv reads a .env file into the process environment when one exists.
// Variables already set are not overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading env: %w", err)
	}
	return nil
}

func (c *ProjectConfig) ApplyDefaults() {
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	if c.Source.Kind == "" {
		c.Source.Kind = string(source.KindFile)
	}
	if c.Source.Kind == string(source.KindFile) && c.Source.Path == "" {
		c.Source.Path = "dataset.yaml"
	}
	if c.Source.Kind == string(source.KindMarkdown) && len(c.Source.Paths) == 0 {
		c.Source.Paths = []string{"./mystery/"}
	}
	if c.Layout.Direction == "" {
		c.Layout.Direction = string(layout.LeftRight)
	}
	if c.Build.Integrity == nil {
		on := true
		c.Build.Integrity = &on
	}
}

// ApplyEnv lets MYSTERYWEB_DSN and MYSTERYWEB_DEBUG override the file.
func (c *ProjectConfig) ApplyEnv() {
	if dsn := strings.TrimSpace(os.Getenv(EnvDSN)); dsn != "" {
		c.Source.DSN = dsn
	}
	if raw := strings.TrimSpace(os.Getenv(EnvDebug)); raw != "" {
		if debug, err := strconv.ParseBool(raw); err == nil {
			c.Log.Debug = debug
		}
	}
}

// IntegrityEnabled reports whether builds run the integrity-checking resolver.
func (c *ProjectConfig) IntegrityEnabled() bool {
	return c.Build.Integrity == nil || *c.Build.Integrity
}

// LayoutFor turns the layout section into a layout.Config. An empty
// algorithm is returned as-is so the view default applies.
func (c *ProjectConfig) LayoutFor() (layout.Config, error) {
	cfg := layout.Config{
		Direction:   layout.Direction(strings.ToUpper(c.Layout.Direction)),
		NodeSpacing: c.Layout.NodeSpacing,
		RankSpacing: c.Layout.RankSpacing,
		Alignment:   c.Layout.Alignment,
		Threads:     c.Layout.Threads,
		OffThread:   c.Layout.OffThread,
		Force:       c.Layout.Force,
	}
	if c.Layout.Algorithm != "" {
		alg, err := layout.ParseAlgorithm(c.Layout.Algorithm)
		if err != nil {
			return layout.Config{}, err
		}
		cfg.Algorithm = alg
	}
	return cfg, nil
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	kind, err := source.ParseKind(cfg.Source.Kind)
	if err != nil {
		return err
	}
	switch kind {
	case source.KindFile:
		if strings.TrimSpace(cfg.Source.Path) == "" {
			return fmt.Errorf("source path is required")
		}
	case source.KindMarkdown:
		for i, p := range cfg.Source.Paths {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("source path %d is empty", i)
			}
		}
	case source.KindPostgres:
		if strings.TrimSpace(cfg.Source.DSN) == "" {
			return fmt.Errorf("source dsn is required for postgres (or set %s)", EnvDSN)
		}
	}

	if cfg.Layout.Algorithm != "" {
		if _, err := layout.ParseAlgorithm(cfg.Layout.Algorithm); err != nil {
			return err
		}
	}
	switch layout.Direction(strings.ToUpper(cfg.Layout.Direction)) {
	case layout.TopBottom, layout.BottomTop, layout.LeftRight, layout.RightLeft:
	default:
		return fmt.Errorf("unsupported layout direction: %q", cfg.Layout.Direction)
	}
	switch cfg.Layout.Alignment {
	case "", "center", "left", "right":
	default:
		return fmt.Errorf("unsupported layout alignment: %q", cfg.Layout.Alignment)
	}
	if cfg.Build.MaxDepth < 0 || cfg.Build.MaxNodes < 0 {
		return fmt.Errorf("build limits must not be negative")
	}

	return nil
}

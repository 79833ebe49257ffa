package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/rimdefs/internal/defs"
	"github.com/harrison/rimdefs/internal/filelock"
	"github.com/harrison/rimdefs/internal/logger"
	"github.com/harrison/rimdefs/internal/models"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the config file name inside the rimdefs home directory.
const ConfigFileName = "config.yaml"

// HistoryConfig represents build history configuration
type HistoryConfig struct {
	// Enabled records every build in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// LayerConfig is an extra named layer built after the standard ones.
type LayerConfig struct {
	Name  string   `yaml:"name"`
	Roots []string `yaml:"roots"`
}

// Config represents rimdefs configuration options
type Config struct {
	// Official, Workshop and Dev are the scan roots of the standard layers
	Official []string `yaml:"official"`
	Workshop []string `yaml:"workshop"`
	Dev      []string `yaml:"dev"`

	// Layers are extra layers, built in the listed order
	Layers []LayerConfig `yaml:"layers,omitempty"`

	// Out is the output directory for items and schema files
	Out string `yaml:"out"`

	// Version is used when no explicit or detected version is available
	Version string `yaml:"version"`

	// AutoVersion enables Version.txt detection under the official roots
	AutoVersion bool `yaml:"auto_version"`

	// IncludeLanguages stops the languages directory from being pruned
	IncludeLanguages bool `yaml:"include_languages"`

	// Exclude lists extra directory names pruned during mod scans
	Exclude []string `yaml:"exclude,omitempty"`

	// DefSuffixes overrides the tag suffixes that mark definition elements
	DefSuffixes []string `yaml:"def_suffixes,omitempty"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written
	LogDir string `yaml:"log_dir"`

	// History contains build history configuration
	History HistoryConfig `yaml:"history"`

	// path is the file the config was loaded from, used to resolve and
	// relativise paths.
	path string
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Official:    []string{},
		Workshop:    []string{},
		Dev:         []string{},
		Out:         "../data",
		Version:     "",
		AutoVersion: true,
		LogLevel:    "info",
		LogDir:      "logs",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "history.db",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
// Keys absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// LoadConfigFromDir loads configuration from config.yaml in the specified
// rimdefs home directory.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ConfigFileName))
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// SetPath sets the file used to resolve relative paths and by Save.
func (c *Config) SetPath(path string) {
	c.path = path
}

// baseDir is the directory relative paths are resolved against: the
// config file's directory, or the working directory without one.
func (c *Config) baseDir() string {
	if c.path != "" {
		if abs, err := filepath.Abs(filepath.Dir(c.path)); err == nil {
			return abs
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// ResolvePaths makes every path in the config absolute, resolving
// relative ones against the config file's directory. Blank roots are
// dropped.
func (c *Config) ResolvePaths() {
	base := c.baseDir()
	c.Official = resolveList(base, c.Official)
	c.Workshop = resolveList(base, c.Workshop)
	c.Dev = resolveList(base, c.Dev)
	for i := range c.Layers {
		c.Layers[i].Roots = resolveList(base, c.Layers[i].Roots)
	}
	if strings.TrimSpace(c.Out) != "" {
		c.Out = resolve(base, c.Out)
	}
	if strings.TrimSpace(c.LogDir) != "" {
		c.LogDir = resolve(base, c.LogDir)
	}
	if strings.TrimSpace(c.History.DBPath) != "" {
		c.History.DBPath = resolve(base, c.History.DBPath)
	}
}

func resolve(base, p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	return filepath.Clean(p)
}

func resolveList(base string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, resolve(base, p))
	}
	return out
}

// FlagOverrides carries CLI flag values. Nil fields were not provided on
// the command line and leave the config untouched. --version is absent:
// it outranks the detected version, which the config value does not.
type FlagOverrides struct {
	Official         *[]string
	Workshop         *[]string
	Dev              *[]string
	Out              *string
	AutoVersion      *bool
	IncludeLanguages *bool
	Exclude          *[]string
	LogLevel         *string
	LogDir           *string
	HistoryEnabled   *bool
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(f FlagOverrides) {
	if f.Official != nil {
		c.Official = *f.Official
	}
	if f.Workshop != nil {
		c.Workshop = *f.Workshop
	}
	if f.Dev != nil {
		c.Dev = *f.Dev
	}
	if f.Out != nil {
		c.Out = *f.Out
	}
	if f.AutoVersion != nil {
		c.AutoVersion = *f.AutoVersion
	}
	if f.IncludeLanguages != nil {
		c.IncludeLanguages = *f.IncludeLanguages
	}
	if f.Exclude != nil {
		c.Exclude = *f.Exclude
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.HistoryEnabled != nil {
		c.History.Enabled = *f.HistoryEnabled
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: %s", c.LogLevel, strings.Join(logger.Levels, ", "))
	}

	if strings.TrimSpace(c.Out) == "" {
		return fmt.Errorf("out cannot be empty")
	}

	seen := make(map[string]bool)
	for _, l := range c.Layers {
		if !models.ValidLayerName(l.Name) {
			return fmt.Errorf("invalid layer name %q, use lowercase letters, digits, '-' and '_'", l.Name)
		}
		if models.IsStandardLayer(l.Name) {
			return fmt.Errorf("layer %q is built in and cannot be redefined", l.Name)
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate layer %q", l.Name)
		}
		seen[l.Name] = true
	}

	for _, s := range c.DefSuffixes {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("def_suffixes cannot contain blank entries")
		}
	}

	if c.History.Enabled && strings.TrimSpace(c.History.DBPath) == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}

// ScanRoots returns the configured layers in build order: the standard
// layers first, then the extra layers as listed.
func (c *Config) ScanRoots() []models.ScanRoot {
	roots := []models.ScanRoot{
		{Layer: models.LayerOfficial, Paths: append([]string(nil), c.Official...)},
		{Layer: models.LayerWorkshop, Paths: append([]string(nil), c.Workshop...)},
		{Layer: models.LayerDev, Paths: append([]string(nil), c.Dev...)},
	}
	for _, l := range c.Layers {
		roots = append(roots, models.ScanRoot{Layer: l.Name, Paths: append([]string(nil), l.Roots...)})
	}
	return roots
}

// Matcher returns the definition matcher for the configured suffixes.
func (c *Config) Matcher() defs.Matcher {
	if len(c.DefSuffixes) == 0 {
		return defs.DefaultMatcher()
	}
	return defs.Matcher{Suffixes: append([]string(nil), c.DefSuffixes...)}
}

// Save writes the config to its path. Paths under the config file's
// directory are stored relative to it, with "/" separators.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no file path")
	}
	base := c.baseDir()

	out := *c
	out.Official = relativiseList(base, c.Official)
	out.Workshop = relativiseList(base, c.Workshop)
	out.Dev = relativiseList(base, c.Dev)
	out.Layers = make([]LayerConfig, len(c.Layers))
	for i, l := range c.Layers {
		out.Layers[i] = LayerConfig{Name: l.Name, Roots: relativiseList(base, l.Roots)}
	}
	out.Out = relativise(base, c.Out)
	out.LogDir = relativise(base, c.LogDir)
	out.History.DBPath = relativise(base, c.History.DBPath)

	return writeYAML(c.path, &out)
}

func relativise(base, p string) string {
	if p == "" || !filepath.IsAbs(p) {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(base, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func relativiseList(base string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, relativise(base, p))
	}
	return out
}

// WriteDefault writes the built-in defaults to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}
	return writeYAML(path, DefaultConfig())
}

// Marshal returns the YAML form of the config.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

func writeYAML(path string, c *Config) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := filelock.LockAndWrite(path, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

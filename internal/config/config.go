// Package config handles loading and saving application configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/neuron-tracer/config.yaml
//
// Window geometry and per-session UI state live in the JSON preferences
// store (ui/prefs), not here; config.yaml is for settings a user edits
// deliberately.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scale bar units. Lengths are always stored in nanometres; the micron
// unit only changes the label.
const (
	UnitNanometres = "nm"
	UnitMicrons    = "um"
)

// NanometresPerMicron converts between the two scale bar units.
const NanometresPerMicron = 1000

// SelectionConfig controls the point picker.
type SelectionConfig struct {
	// PickThreshold is the screen-space distance in pixels within which a
	// cursor snaps to an interaction point.
	PickThreshold float64 `yaml:"pick_threshold,omitempty"`
}

// ViewConfig holds viewport defaults.
type ViewConfig struct {
	ShowMesh       bool   `yaml:"show_mesh,omitempty"`
	ScaleBarLength int64  `yaml:"scale_bar_length,omitempty"` // nanometres
	ScaleBarUnits  string `yaml:"scale_bar_units,omitempty"`  // nm or um
}

// FilesConfig controls file handling and folder navigation.
type FilesConfig struct {
	AutoSave        bool     `yaml:"auto_save,omitempty"`
	MeshExtensions  []string `yaml:"mesh_extensions,omitempty"`
	WatchFolder     bool     `yaml:"watch_folder,omitempty"`
	WatchDebounceMS int      `yaml:"watch_debounce_ms,omitempty"`
}

// Config is the top-level configuration for neuron-tracer.
type Config struct {
	Selection SelectionConfig `yaml:"selection,omitempty"`
	View      ViewConfig      `yaml:"view,omitempty"`
	Files     FilesConfig     `yaml:"files,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Selection: SelectionConfig{
			PickThreshold: 20,
		},
		View: ViewConfig{
			ScaleBarLength: 5000,
			ScaleBarUnits:  UnitNanometres,
		},
		Files: FilesConfig{
			AutoSave:        true,
			MeshExtensions:  []string{".obj", ".stl", ".ply"},
			WatchFolder:     true,
			WatchDebounceMS: 250,
		},
	}
}

// ConfigDir returns the XDG config directory for neuron-tracer.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "neuron-tracer")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "neuron-tracer")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// normalize clamps out-of-range values back to their defaults so a bad
// hand edit never leaves the app unusable.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Selection.PickThreshold <= 0 {
		c.Selection.PickThreshold = def.Selection.PickThreshold
	}
	if c.View.ScaleBarLength <= 0 {
		c.View.ScaleBarLength = def.View.ScaleBarLength
	}
	switch strings.ToLower(c.View.ScaleBarUnits) {
	case UnitNanometres:
		c.View.ScaleBarUnits = UnitNanometres
	case UnitMicrons, "µm", "micron", "microns":
		c.View.ScaleBarUnits = UnitMicrons
	default:
		c.View.ScaleBarUnits = def.View.ScaleBarUnits
	}
	if len(c.Files.MeshExtensions) == 0 {
		c.Files.MeshExtensions = def.Files.MeshExtensions
	}
	for i, ext := range c.Files.MeshExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Files.MeshExtensions[i] = ext
	}
	if c.Files.WatchDebounceMS <= 0 {
		c.Files.WatchDebounceMS = def.Files.WatchDebounceMS
	}
}

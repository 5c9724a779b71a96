package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Navigation NavigationConfig `json:"navigation" toml:"navigation" yaml:"navigation"`
	Cache      CacheConfig      `json:"cache" toml:"cache" yaml:"cache"`
	Filters    FilterConfig     `json:"filters" toml:"filters" yaml:"filters"`
	State      StateConfig      `json:"state" toml:"state" yaml:"state"`
	Log        LogConfig        `json:"log" toml:"log" yaml:"log"`
	UI         UIConfig         `json:"ui" toml:"ui" yaml:"ui"`
}

// NavigationConfig holds history walking options.
type NavigationConfig struct {
	PerPage      int    `json:"perPage" toml:"perPage" yaml:"perPage"`                // Default: 100
	ManifestPath string `json:"manifestPath" toml:"manifestPath" yaml:"manifestPath"` // Default: __cleanough/meta.json
	Backend      string `json:"backend" toml:"backend" yaml:"backend"`                // "go-git" or "git"
}

// CacheConfig holds provider response caching options.
type CacheConfig struct {
	TTLSeconds int `json:"ttlSeconds" toml:"ttlSeconds" yaml:"ttlSeconds"` // Default: 300
}

// TTL returns the cache lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include" toml:"include" yaml:"include"`
	Exclude []string `json:"exclude" toml:"exclude" yaml:"exclude"`
}

// StateConfig selects where browser state is persisted.
type StateConfig struct {
	Backend string `json:"backend" toml:"backend" yaml:"backend"` // "file" or "sqlite"
	Path    string `json:"path" toml:"path" yaml:"path"`          // empty: user config dir
}

// LogConfig holds logging options.
type LogConfig struct {
	Level  string `json:"level" toml:"level" yaml:"level"`
	Format string `json:"format" toml:"format" yaml:"format"`
	File   string `json:"file" toml:"file" yaml:"file"` // log file used while the browser owns the terminal
}

// UIConfig holds browser colors.
type UIConfig struct {
	Accent  string `json:"accent" toml:"accent" yaml:"accent"`
	Added   string `json:"added" toml:"added" yaml:"added"`
	Removed string `json:"removed" toml:"removed" yaml:"removed"`
	Muted   string `json:"muted" toml:"muted" yaml:"muted"`
}

// Backends accepted by NavigationConfig.Backend.
const (
	BackendGoGit = "go-git"
	BackendGit   = "git"
)

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Navigation: NavigationConfig{
			PerPage:      100,
			ManifestPath: "__cleanough/meta.json",
			Backend:      BackendGoGit,
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		State: StateConfig{
			Backend: "file",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		UI: UIConfig{
			Accent:  "#7D56F4",
			Added:   "#22C55E",
			Removed: "#EF4444",
			Muted:   "#6B7280",
		},
	}
}

// Validate checks values that would make the tool misbehave.
func (c *Config) Validate() error {
	if c.Navigation.PerPage <= 0 {
		return fmt.Errorf("navigation.perPage must be positive, got %d", c.Navigation.PerPage)
	}
	if c.Navigation.ManifestPath == "" {
		return fmt.Errorf("navigation.manifestPath must not be empty")
	}
	switch c.Navigation.Backend {
	case BackendGoGit, BackendGit:
	default:
		return fmt.Errorf("unknown navigation.backend %q (expected %s or %s)", c.Navigation.Backend, BackendGoGit, BackendGit)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttlSeconds must not be negative, got %d", c.Cache.TTLSeconds)
	}
	switch c.State.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown state.backend %q (expected file or sqlite)", c.State.Backend)
	}
	return nil
}

// defaultNames are tried in the working directory, then in $HOME.
var defaultNames = []string{".histwalk.json", ".histwalk.toml", ".histwalk.yaml", ".histwalk.yml"}

// LoadConfig loads configuration from a file, merging with defaults.
// With an empty path the default names are searched; none found yields defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findDefault()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findDefault() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}
	for _, dir := range dirs {
		for _, name := range defaultNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func decode(path string, data []byte, cfg *Config) error {
	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	}
	return nil
}

// SaveConfig saves configuration to a file in the format implied by its extension.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch filepath.Ext(path) {
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kylesnowschwartz/summary-widget/stats"
)

// Config represents the full configuration file structure.
type Config struct {
	Listen   *string                   `json:"listen,omitempty" yaml:"listen,omitempty" toml:"listen,omitempty"`
	Defaults SettingsConfig            `json:"defaults,omitempty" yaml:"defaults,omitempty" toml:"defaults,omitempty"`
	Widgets  map[string]SettingsConfig `json:"widgets,omitempty" yaml:"widgets,omitempty" toml:"widgets,omitempty"`
}

// SettingsConfig holds settings for a named widget or the defaults.
// All fields are pointers to distinguish "not set" from "set to zero".
// Digits of DigitsNone explicitly disables rounding.
type SettingsConfig struct {
	Statistic *string `json:"statistic,omitempty" yaml:"statistic,omitempty" toml:"statistic,omitempty"`
	Digits    *int    `json:"digits,omitempty" yaml:"digits,omitempty" toml:"digits,omitempty"`
}

// Format identifies a config file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from the file extension.
// Unknown extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Load reads and parses a config file from the given path.
// Returns nil config (not error) if path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	cfg, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// Parse decodes config content in the given format.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	case FormatTOML:
		err = toml.Unmarshal(data, &cfg)
	default:
		return nil, errors.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Encode serializes cfg in the given format.
func Encode(cfg Config, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(cfg, "", "  ")
	case FormatYAML:
		return yaml.Marshal(cfg)
	case FormatTOML:
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
			return nil, err
		}
		return []byte(sb.String()), nil
	default:
		return nil, errors.Errorf("unsupported format: %s", format)
	}
}

// Resolve combines defaults, config file, and overlays for a named widget.
// Precedence: built-in defaults < config.defaults < config.widgets[name] < overlays,
// with later overlays winning. Nil overlays are skipped.
func (c *Config) Resolve(widget string, overlays ...*SettingsConfig) stats.Settings {
	// Start with hardcoded defaults
	result := DefaultConfig()

	if c != nil {
		// Apply config file defaults
		result = mergeConfig(result, c.Defaults)

		// Apply widget-specific config
		if widgetConfig, ok := c.Widgets[widget]; ok {
			result = mergeConfig(result, widgetConfig)
		}
	}

	// Apply payload settings and CLI flags (if provided)
	for _, o := range overlays {
		if o != nil {
			result = mergeConfig(result, *o)
		}
	}

	return result.Settings()
}

// Resolve without a config file - uses only defaults and overlays.
func Resolve(widget string, overlays ...*SettingsConfig) stats.Settings {
	var nilConfig *Config
	return nilConfig.Resolve(widget, overlays...)
}

// FromSettings converts render settings to an overlay that sets every field.
// A nil Digits becomes DigitsNone, so callers validate s first: a Digits of
// DigitsNone would otherwise pass through as "no rounding".
func FromSettings(s stats.Settings) *SettingsConfig {
	statistic := string(s.Statistic)
	digits := DigitsNone
	if s.Digits != nil {
		digits = *s.Digits
	}
	return &SettingsConfig{Statistic: &statistic, Digits: &digits}
}

// ListenAddr returns the configured listen address, or DefaultListen.
func (c *Config) ListenAddr() string {
	if c == nil || c.Listen == nil || *c.Listen == "" {
		return DefaultListen
	}
	return *c.Listen
}

// ResolvedConfig holds the final resolved values (no pointers, always has values).
type ResolvedConfig struct {
	Statistic string
	Digits    int
}

// Settings converts the resolved values to render settings.
func (r ResolvedConfig) Settings() stats.Settings {
	s := stats.Settings{Statistic: stats.Statistic(r.Statistic)}
	if r.Digits != DigitsNone {
		d := r.Digits
		s.Digits = &d
	}
	return s
}

// mergeConfig overlays src onto base, only replacing non-nil values.
func mergeConfig(base ResolvedConfig, src SettingsConfig) ResolvedConfig {
	if src.Statistic != nil {
		base.Statistic = *src.Statistic
	}
	if src.Digits != nil {
		base.Digits = *src.Digits
	}
	return base
}

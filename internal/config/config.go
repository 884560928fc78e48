package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "mdgraph.yaml"

// Layout mirrors the graph layout attributes.
type Layout struct {
	RankDir string  `mapstructure:"rankdir"`
	NodeSep float64 `mapstructure:"nodesep"`
	RankSep float64 `mapstructure:"ranksep"`
}

// Output controls where and how rendered artifacts are written.
type Output struct {
	Format string `mapstructure:"format"`
	// Path is the output base name; the format extension is appended.
	Path string `mapstructure:"path"`
	// ImageDir caches downloaded node images. Empty disables image fetching.
	ImageDir string `mapstructure:"image_dir"`
}

// Cache configures the render cache.
type Cache struct {
	TTL time.Duration `mapstructure:"ttl"`
	// RedisURL selects the redis store (redis://host:port/db). Empty keeps the in-memory store.
	RedisURL string `mapstructure:"redis_url"`
}

// Server configures the HTTP API.
type Server struct {
	Port int `mapstructure:"port"`
}

// Config is the full configuration file.
type Config struct {
	Layout   Layout `mapstructure:"layout"`
	Output   Output `mapstructure:"output"`
	Strict   bool   `mapstructure:"strict"`
	LogLevel string `mapstructure:"log_level"`
	Cache    Cache  `mapstructure:"cache"`
	Server   Server `mapstructure:"server"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Layout:   Layout{RankDir: "LR", NodeSep: 0.6, RankSep: 0.7},
		Output:   Output{Format: "svg", Path: "output_diagram"},
		LogLevel: "info",
		Cache:    Cache{TTL: 10 * time.Minute},
		Server:   Server{Port: 8080},
	}
}

// Load reads a YAML or JSON config file over the defaults.
// When path is empty DefaultFile is tried and a missing file yields the defaults.
// An explicitly requested file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := Decode(data, strings.ToLower(filepath.Ext(path)) == ".json", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return cfg, cfg.Validate()
}

// Decode merges raw YAML (or JSON) into cfg. Keys absent from data keep their value.
func Decode(data []byte, isJSON bool, cfg *Config) error {
	raw := map[string]any{}
	if isJSON {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

var rankDirs = map[string]bool{"LR": true, "RL": true, "TB": true, "BT": true}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if !rankDirs[strings.ToUpper(c.Layout.RankDir)] {
		errs = append(errs, fmt.Errorf("layout.rankdir must be one of LR, RL, TB, BT (got %q)", c.Layout.RankDir))
	}
	if c.Layout.NodeSep < 0 || c.Layout.RankSep < 0 {
		errs = append(errs, errors.New("layout separations must not be negative"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	return errors.Join(errs...)
}

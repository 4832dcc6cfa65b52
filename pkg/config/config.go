// Package config loads layered configuration for the mind map service.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/ritzau/mindmap-layout/pkg/camera"
	"github.com/ritzau/mindmap-layout/pkg/history"
	"github.com/ritzau/mindmap-layout/pkg/placement"
	"github.com/ritzau/mindmap-layout/pkg/session"
	"github.com/ritzau/mindmap-layout/pkg/simulation"
	"github.com/ritzau/mindmap-layout/pkg/suggest"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = "mindmap.toml"

// EnvPrefix prefixes environment overrides: MINDMAP_SERVER_PORT sets
// server.port.
const EnvPrefix = "MINDMAP_"

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig      `koanf:"server"`
	Viewport   ViewportConfig    `koanf:"viewport"`
	Placement  placement.Config  `koanf:"placement"`
	Simulation simulation.Params `koanf:"simulation"`
	Camera     camera.Config     `koanf:"camera"`
	History    HistoryConfig     `koanf:"history"`
	Suggest    suggest.Config    `koanf:"suggest"`
	Log        LogConfig         `koanf:"log"`
	Watch      bool              `koanf:"watch"`

	// File is the config file that was read, empty if none.
	File string `koanf:"-"`
}

type ServerConfig struct {
	Port     int           `koanf:"port" validate:"gte=0,lte=65535"`
	TickRate time.Duration `koanf:"tick_rate" validate:"gt=0"`
}

type ViewportConfig struct {
	Width  float64 `koanf:"width" validate:"gt=0"`
	Height float64 `koanf:"height" validate:"gt=0"`
}

type HistoryConfig struct {
	Capacity int `koanf:"capacity" validate:"gte=1"`
}

type LogConfig struct {
	Verbosity string `koanf:"verbosity" validate:"omitempty,oneof=trace debug info warn warning error"`
	Verbose   int    `koanf:"verbose" validate:"gte=0"`
	JSON      bool   `koanf:"json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:     ServerConfig{Port: 8080, TickRate: session.DefaultTickRate},
		Viewport:   ViewportConfig{Width: 800, Height: 600},
		Placement:  placement.DefaultConfig(),
		Simulation: simulation.DefaultParams(),
		Camera:     camera.DefaultConfig(),
		History:    HistoryConfig{Capacity: history.DefaultCapacity},
		Suggest:    suggest.DefaultConfig(),
		Log:        LogConfig{Verbosity: "info"},
	}
}

// Session returns the session part of the configuration.
func (c *Config) Session() session.Config {
	return session.Config{
		Width:           c.Viewport.Width,
		Height:          c.Viewport.Height,
		Placement:       c.Placement,
		Simulation:      c.Simulation,
		Camera:          c.Camera,
		HistoryCapacity: c.History.Capacity,
	}
}

// Validate checks every section against its constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// flagKeys maps command line flags to config keys. Flags not listed here
// are not configuration.
var flagKeys = map[string]string{
	"port":             "server.port",
	"tick-rate":        "server.tick_rate",
	"width":            "viewport.width",
	"height":           "viewport.height",
	"history":          "history.capacity",
	"suggest-endpoint": "suggest.endpoint",
	"mock":             "suggest.mock",
	"log-level":        "log.verbosity",
	"verbose":          "log.verbose",
	"log-json":         "log.json",
	"watch":            "watch",
}

// RegisterFlags defines the configuration flags on f. Their defaults
// are the built-in configuration.
func RegisterFlags(f *pflag.FlagSet) {
	d := Default()
	f.String("config", "", "config file (default "+DefaultFile+" if present)")
	f.Int("port", d.Server.Port, "HTTP port")
	f.Duration("tick-rate", d.Server.TickRate, "interval between simulation ticks")
	f.Float64("width", d.Viewport.Width, "viewport width")
	f.Float64("height", d.Viewport.Height, "viewport height")
	f.Int("history", d.History.Capacity, "undo history capacity")
	f.String("suggest-endpoint", d.Suggest.Endpoint, "suggestion service URL")
	f.Bool("mock", d.Suggest.Mock, "use the built-in mock suggestion service")
	f.String("log-level", d.Log.Verbosity, "log level (trace, debug, info, warn, error)")
	f.CountP("verbose", "v", "increase verbosity (repeatable)")
	f.Bool("log-json", d.Log.JSON, "log as JSON")
	f.Bool("watch", d.Watch, "reload tuning when the config file changes")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaultMap()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File. A missing default file is fine; a missing named file is not.
	path, explicit := configPath(f)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		path = ""
	}

	// 3. Environment Variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, any) {
			return flagKeys[fl.Name], posflag.FlagVal(f, fl)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns MINDMAP_SIMULATION_ALPHA_MIN into simulation.alpha_min:
// the first segment names the section, the rest the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func configPath(f *pflag.FlagSet) (path string, explicit bool) {
	if f != nil {
		if p, err := f.GetString("config"); err == nil && p != "" {
			return p, true
		}
	}
	return DefaultFile, false
}

func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"server.port":      d.Server.Port,
		"server.tick_rate": d.Server.TickRate,

		"viewport.width":  d.Viewport.Width,
		"viewport.height": d.Viewport.Height,

		"placement.distance":     d.Placement.Distance,
		"placement.cone_degrees": d.Placement.ConeDegrees,
		"placement.list_indent":  d.Placement.ListIndent,
		"placement.list_offset":  d.Placement.ListOffset,
		"placement.list_spacing": d.Placement.ListSpacing,

		"simulation.charge":            d.Simulation.Charge,
		"simulation.center_strength":   d.Simulation.CenterStrength,
		"simulation.collide_strength":  d.Simulation.CollideStrength,
		"simulation.collide_padding":   d.Simulation.CollidePadding,
		"simulation.drift_strength":    d.Simulation.DriftStrength,
		"simulation.alpha_min":         d.Simulation.AlphaMin,
		"simulation.alpha_decay":       d.Simulation.AlphaDecay,
		"simulation.velocity_decay":    d.Simulation.VelocityDecay,
		"simulation.reheat":            d.Simulation.Reheat,
		"simulation.settle":            d.Simulation.Settle,
		"simulation.drag_alpha_target": d.Simulation.DragAlphaTarget,
		"simulation.stretch_factor":    d.Simulation.StretchFactor,
		"simulation.compress_factor":   d.Simulation.CompressFactor,

		"camera.min_zoom":      d.Camera.MinZoom,
		"camera.max_zoom":      d.Camera.MaxZoom,
		"camera.fit_margin":    d.Camera.FitMargin,
		"camera.duration":      d.Camera.Duration,
		"camera.drag_duration": d.Camera.DragDuration,

		"history.capacity": d.History.Capacity,

		"suggest.endpoint":          d.Suggest.Endpoint,
		"suggest.timeout":           d.Suggest.Timeout,
		"suggest.mock":              d.Suggest.Mock,
		"suggest.mock_delay":        d.Suggest.MockDelay,
		"suggest.max_requests":      d.Suggest.MaxRequests,
		"suggest.interval":          d.Suggest.Interval,
		"suggest.open_timeout":      d.Suggest.OpenTimeout,
		"suggest.min_requests":      d.Suggest.MinRequests,
		"suggest.failure_threshold": d.Suggest.FailureThreshold,

		"log.verbosity": d.Log.Verbosity,
		"log.verbose":   d.Log.Verbose,
		"log.json":      d.Log.JSON,

		"watch": d.Watch,
	}
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]any
}

func makeMapProvider(m map[string]any) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(p.m, "."), nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

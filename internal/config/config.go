package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lazypower/seastate/internal/engine"
)

// Config holds all seastate configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path      string        `yaml:"path"`
	Retention time.Duration `yaml:"retention"` // watch events older than this are pruned; 0 keeps all
}

type EngineConfig struct {
	TickInterval time.Duration   `yaml:"tick_interval"`
	BedtimeHour  int             `yaml:"bedtime_hour"`
	Timezone     string          `yaml:"timezone"` // IANA name or "Local"
	Debug        bool            `yaml:"debug"`
	Weights      WeightsConfig   `yaml:"weights"`
	Axes         AxesConfig      `yaml:"axes"`
	Circadian    CircadianConfig `yaml:"circadian"`
	Snapshot     SnapshotConfig  `yaml:"snapshot"`
	Replay       ReplayConfig    `yaml:"replay"`
}

type WeightsConfig struct {
	TimePressure    float64 `yaml:"time_pressure"`
	ContentQuality  float64 `yaml:"content_quality"`
	BehaviorPattern float64 `yaml:"behavior_pattern"`
	Circadian       float64 `yaml:"circadian"`
}

type AxisConfig struct {
	HalfLife   time.Duration `yaml:"half_life"`
	Saturation float64       `yaml:"saturation"`
}

type AxesConfig struct {
	TimePressure    AxisConfig `yaml:"time_pressure"`
	ContentQuality  AxisConfig `yaml:"content_quality"`
	BehaviorPattern AxisConfig `yaml:"behavior_pattern"`
}

type CircadianConfig struct {
	ReferenceWeight float64 `yaml:"reference_weight"`
	MaxBoost        float64 `yaml:"max_boost"`
}

type SnapshotConfig struct {
	Interval time.Duration `yaml:"interval"`
	Capacity int           `yaml:"capacity"`
	Window   time.Duration `yaml:"window"`
}

type ReplayConfig struct {
	Lookback time.Duration `yaml:"lookback"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	d := engine.DefaultSettings()
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Database: DatabaseConfig{
			Path:      "", // resolved at runtime via store.DefaultDBPath()
			Retention: 30 * 24 * time.Hour,
		},
		Engine: EngineConfig{
			TickInterval: 30 * time.Second,
			BedtimeHour:  d.BedtimeHour,
			Timezone:     "Local",
			Weights: WeightsConfig{
				TimePressure:    d.Weights.TimePressure,
				ContentQuality:  d.Weights.ContentQuality,
				BehaviorPattern: d.Weights.BehaviorPattern,
				Circadian:       d.Weights.Circadian,
			},
			Axes: AxesConfig{
				TimePressure:    axisConfig(d.Axes[engine.TimePressure]),
				ContentQuality:  axisConfig(d.Axes[engine.ContentQuality]),
				BehaviorPattern: axisConfig(d.Axes[engine.BehaviorPattern]),
			},
			Circadian: CircadianConfig{
				ReferenceWeight: d.Circadian.ReferenceWeight,
				MaxBoost:        d.Circadian.MaxBoost,
			},
			Snapshot: SnapshotConfig{
				Interval: d.Snapshot.Interval,
				Capacity: d.Snapshot.Capacity,
				Window:   d.Snapshot.Window,
			},
			Replay: ReplayConfig{Lookback: d.Lookback},
		},
	}
}

func axisConfig(p engine.AxisParams) AxisConfig {
	return AxisConfig{HalfLife: p.HalfLife, Saturation: p.Saturation}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// DefaultPath returns ~/.seastate/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".seastate", "config.yaml"), nil
}

// Path returns $SEASTATE_CONFIG, or the default path.
func Path() (string, error) {
	if p := os.Getenv("SEASTATE_CONFIG"); p != "" {
		return p, nil
	}
	return DefaultPath()
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if cfg, err = Parse(data); err != nil {
				return cfg, err
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if p := os.Getenv("SEASTATE_DB"); p != "" {
		cfg.Database.Path = p
	}
	if v := os.Getenv("SEASTATE_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SEASTATE_DEBUG: %w", err)
		}
		cfg.Engine.Debug = debug
	}
	return nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	e := c.Engine
	if e.TickInterval <= 0 {
		return fmt.Errorf("engine.tick_interval must be positive")
	}
	if e.BedtimeHour < 0 || e.BedtimeHour > 23 {
		return fmt.Errorf("engine.bedtime_hour %d out of range 0-23", e.BedtimeHour)
	}
	for name, a := range map[string]AxisConfig{
		"time_pressure":    e.Axes.TimePressure,
		"content_quality":  e.Axes.ContentQuality,
		"behavior_pattern": e.Axes.BehaviorPattern,
	} {
		if a.HalfLife <= 0 {
			return fmt.Errorf("engine.axes.%s.half_life must be positive", name)
		}
		if !finite(a.Saturation) || a.Saturation <= 0 {
			return fmt.Errorf("engine.axes.%s.saturation must be positive and finite", name)
		}
	}
	for name, v := range map[string]float64{
		"weights.time_pressure":      e.Weights.TimePressure,
		"weights.content_quality":    e.Weights.ContentQuality,
		"weights.behavior_pattern":   e.Weights.BehaviorPattern,
		"weights.circadian":          e.Weights.Circadian,
		"circadian.reference_weight": e.Circadian.ReferenceWeight,
		"circadian.max_boost":        e.Circadian.MaxBoost,
	} {
		if !finite(v) {
			return fmt.Errorf("engine.%s must be finite, got %v", name, v)
		}
	}
	if e.Snapshot.Interval <= 0 || e.Snapshot.Capacity <= 0 || e.Snapshot.Window <= 0 {
		return fmt.Errorf("engine.snapshot values must be positive")
	}
	if e.Replay.Lookback <= 0 {
		return fmt.Errorf("engine.replay.lookback must be positive")
	}
	if r := c.Database.Retention; r < 0 || (r > 0 && r < e.Replay.Lookback) {
		return fmt.Errorf("database.retention must be 0 or at least engine.replay.lookback")
	}
	if _, err := loadLocation(e.Timezone); err != nil {
		return err
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("engine.timezone: %w", err)
	}
	return loc, nil
}

// Settings converts the engine section into engine settings. Negative or
// non-finite blend weights are treated as 0.
func (e EngineConfig) Settings() (engine.Settings, error) {
	loc, err := loadLocation(e.Timezone)
	if err != nil {
		return engine.Settings{}, err
	}

	var axes [len(engine.Axes)]engine.AxisParams
	axes[engine.TimePressure] = engine.AxisParams(e.Axes.TimePressure)
	axes[engine.ContentQuality] = engine.AxisParams(e.Axes.ContentQuality)
	axes[engine.BehaviorPattern] = engine.AxisParams(e.Axes.BehaviorPattern)

	return engine.Settings{
		Weights: engine.Weights{
			TimePressure:    nonNegative("time_pressure", e.Weights.TimePressure),
			ContentQuality:  nonNegative("content_quality", e.Weights.ContentQuality),
			BehaviorPattern: nonNegative("behavior_pattern", e.Weights.BehaviorPattern),
			Circadian:       nonNegative("circadian", e.Weights.Circadian),
		},
		BedtimeHour: e.BedtimeHour,
		Location:    loc,
		Axes:        axes,
		Circadian: engine.CircadianParams{
			ReferenceWeight: e.Circadian.ReferenceWeight,
			MaxBoost:        e.Circadian.MaxBoost,
		},
		Snapshot: engine.SnapshotParams{
			Interval: e.Snapshot.Interval,
			Capacity: e.Snapshot.Capacity,
			Window:   e.Snapshot.Window,
		},
		Lookback: e.Replay.Lookback,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nonNegative(name string, w float64) float64 {
	if !finite(w) {
		log.Printf("config: weight %s is not finite (%v), using 0", name, w)
		return 0
	}
	if w < 0 {
		log.Printf("config: weight %s is negative (%v), using 0", name, w)
		return 0
	}
	return w
}

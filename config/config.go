package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/combo/market"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the candle engine. It is passed by value
// and never mutated by the engine.
type Config struct {
	Prices market.PriceRange `json:"prices" yaml:"prices"`
	Candle CandleConfig      `json:"candle" yaml:"candle"`
	Target TargetConfig      `json:"target" yaml:"target"`
	Combo  ComboConfig       `json:"combo" yaml:"combo"`
	Tick   TickConfig        `json:"tick" yaml:"tick"`
	Log    LogConfig         `json:"log" yaml:"log"`
}

// Band is a [Min, Max] ratio band random factors are drawn from.
type Band struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// CandleConfig controls how a freshly added candle moves away from its open.
type CandleConfig struct {
	// DeltaSpan is the width of the symmetric interval the open-to-close
	// delta is drawn from.
	DeltaSpan float64 `json:"delta_span" yaml:"delta_span"`
}

// TargetConfig sizes the reward band of new candles.
type TargetConfig struct {
	Ratio   Band    `json:"ratio" yaml:"ratio"`
	MinSpan float64 `json:"min_span" yaml:"min_span"`
}

// ComboConfig sizes the close boost granted while a streak is alive.
type ComboConfig struct {
	Ratio Band `json:"ratio" yaml:"ratio"`
}

// TickConfig controls the automatic play loop.
type TickConfig struct {
	Period    time.Duration `json:"period" yaml:"period"`
	ReturnStd float64       `json:"return_std" yaml:"return_std"`
	ReturnMax float64       `json:"return_max" yaml:"return_max"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

// Default returns the reference tuning: prices in [0, 200], a 50ms tick with
// 3% return deviation clipped at 10%.
func Default() Config {
	prices := market.PriceRange{Min: 0, Max: 200}
	return Config{
		Prices: prices,
		Candle: CandleConfig{DeltaSpan: 50},
		Target: TargetConfig{
			Ratio:   Band{Min: 0.2, Max: 0.4},
			MinSpan: prices.Width() * 0.1,
		},
		Combo: ComboConfig{
			Ratio: Band{Min: 0.2, Max: 0.4},
		},
		Tick: TickConfig{
			Period:    50 * time.Millisecond,
			ReturnStd: 0.03,
			ReturnMax: 0.10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON).
// Keys missing from the file keep their Default values.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, &cfg); jerr != nil {
			return Config{}, fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overlays COMBO_LOG_LEVEL, COMBO_LOG_FORMAT and COMBO_TICK_PERIOD.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("COMBO_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("COMBO_LOG_FORMAT"); ok && v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("COMBO_TICK_PERIOD"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("COMBO_TICK_PERIOD: %w", err)
		}
		c.Tick.Period = d
	}
	return nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if err := c.Prices.Validate(); err != nil {
		return fmt.Errorf("prices: %w", err)
	}
	if err := finite("candle.delta_span", c.Candle.DeltaSpan); err != nil {
		return err
	}
	if c.Candle.DeltaSpan < 0 {
		return fmt.Errorf("candle.delta_span must not be negative")
	}
	if err := c.Target.Ratio.validate("target.ratio"); err != nil {
		return err
	}
	if err := finite("target.min_span", c.Target.MinSpan); err != nil {
		return err
	}
	if c.Target.MinSpan < 0 {
		return fmt.Errorf("target.min_span must not be negative")
	}
	if err := c.Combo.Ratio.validate("combo.ratio"); err != nil {
		return err
	}
	if c.Tick.Period <= 0 {
		return fmt.Errorf("tick.period must be positive")
	}
	if err := finite("tick.return_std", c.Tick.ReturnStd); err != nil {
		return err
	}
	if err := finite("tick.return_max", c.Tick.ReturnMax); err != nil {
		return err
	}
	if c.Tick.ReturnStd < 0 {
		return fmt.Errorf("tick.return_std must not be negative")
	}
	if c.Tick.ReturnMax <= 0 || c.Tick.ReturnMax > 1 {
		return fmt.Errorf("tick.return_max must be in (0, 1]")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

func (b Band) validate(name string) error {
	if err := finite(name+".min", b.Min); err != nil {
		return err
	}
	if err := finite(name+".max", b.Max); err != nil {
		return err
	}
	if b.Min < 0 || b.Max < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	if b.Min > b.Max {
		return fmt.Errorf("%s.min must not exceed %s.max", name, name)
	}
	return nil
}

// finite rejects NaN and ±Inf, which slip past ordered comparisons.
func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	return nil
}

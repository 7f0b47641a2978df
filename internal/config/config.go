package config

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"fileforge/internal/common"

	"github.com/spf13/viper"
)

// Config holds engine configuration
type Config struct {
	MaxConcurrency     int
	SafetyFactor       float64
	DownscaleFactor    float64
	MaxDownscaleRounds int
	QualityMin         int
	QualityMax         int
	ConvertQuality     int
	RasterDPI          float64
	MaxFileCount       int
	MaxFileSize        int64
	MaxTotalSize       int64
	StatsDSN           string

	Presets *Presets
	Logger  *slog.Logger
}

const envPrefix = "FILEFORGE"

// New creates a configuration from defaults and FILEFORGE_* environment
// variables. Invalid overrides are logged and replaced with defaults.
func New() *Config {
	cfg, err := Load(viper.New())
	if err != nil {
		cfg = Default()
		cfg.Logger.Warn("Ignoring invalid configuration", "error", err)
	}
	return cfg
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxConcurrency:     defaultConcurrency(),
		SafetyFactor:       0.95,
		DownscaleFactor:    0.75,
		MaxDownscaleRounds: 3,
		QualityMin:         1,
		QualityMax:         100,
		ConvertQuality:     92,
		RasterDPI:          common.DefaultRasterDPI,
		MaxFileCount:       common.DefaultMaxFileCount,
		MaxFileSize:        common.DefaultMaxFileSize,
		MaxTotalSize:       common.DefaultMaxTotalSize,
		StatsDSN:           ":memory:",
		Presets:            DefaultPresets(),
		Logger:             slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

// Load reads configuration through v. A config file set on v is read first;
// environment variables override it.
func Load(v *viper.Viper) (*Config, error) {
	def := Default()

	v.SetDefault("max_concurrency", def.MaxConcurrency)
	v.SetDefault("safety_factor", def.SafetyFactor)
	v.SetDefault("downscale_factor", def.DownscaleFactor)
	v.SetDefault("max_downscale_rounds", def.MaxDownscaleRounds)
	v.SetDefault("quality_min", def.QualityMin)
	v.SetDefault("quality_max", def.QualityMax)
	v.SetDefault("convert_quality", def.ConvertQuality)
	v.SetDefault("raster_dpi", def.RasterDPI)
	v.SetDefault("max_file_count", def.MaxFileCount)
	v.SetDefault("max_file_size", def.MaxFileSize)
	v.SetDefault("max_total_size", def.MaxTotalSize)
	v.SetDefault("stats_dsn", def.StatsDSN)
	v.SetDefault("presets_file", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		MaxConcurrency:     v.GetInt("max_concurrency"),
		SafetyFactor:       v.GetFloat64("safety_factor"),
		DownscaleFactor:    v.GetFloat64("downscale_factor"),
		MaxDownscaleRounds: v.GetInt("max_downscale_rounds"),
		QualityMin:         v.GetInt("quality_min"),
		QualityMax:         v.GetInt("quality_max"),
		ConvertQuality:     v.GetInt("convert_quality"),
		RasterDPI:          v.GetFloat64("raster_dpi"),
		MaxFileCount:       v.GetInt("max_file_count"),
		MaxFileSize:        v.GetInt64("max_file_size"),
		MaxTotalSize:       v.GetInt64("max_total_size"),
		StatsDSN:           v.GetString("stats_dsn"),
		Presets:            def.Presets,
		Logger:             newLogger(v.GetString("log_level")),
	}

	if path := v.GetString("presets_file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read presets file: %w", err)
		}
		presets, err := ParsePresets(data)
		if err != nil {
			return nil, err
		}
		cfg.Presets = presets
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every knob is in range.
func (c *Config) Validate() error {
	switch {
	case c.MaxConcurrency < 1:
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	case c.SafetyFactor <= 0 || c.SafetyFactor > 1:
		return fmt.Errorf("safety_factor must be in (0, 1], got %v", c.SafetyFactor)
	case c.DownscaleFactor <= 0 || c.DownscaleFactor >= 1:
		return fmt.Errorf("downscale_factor must be in (0, 1), got %v", c.DownscaleFactor)
	case c.MaxDownscaleRounds < 0:
		return fmt.Errorf("max_downscale_rounds must not be negative, got %d", c.MaxDownscaleRounds)
	case c.QualityMin < 1 || c.QualityMax > 100 || c.QualityMin > c.QualityMax:
		return fmt.Errorf("quality range %d..%d must lie within 1..100", c.QualityMin, c.QualityMax)
	case c.ConvertQuality < 1 || c.ConvertQuality > 100:
		return fmt.Errorf("convert_quality must be in 1..100, got %d", c.ConvertQuality)
	case c.RasterDPI < 18 || c.RasterDPI > 600:
		return fmt.Errorf("raster_dpi must be in 18..600, got %v", c.RasterDPI)
	case c.MaxFileCount < 1 || c.MaxFileSize < 1 || c.MaxTotalSize < 1:
		return fmt.Errorf("request limits must be positive")
	}
	return nil
}

func defaultConcurrency() int {
	n := runtime.NumCPU()
	if n > common.MaxConcurrencyLimit {
		n = common.MaxConcurrencyLimit
	}
	return n
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// Package config handles sprtool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/mobispr/internal/render"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all tool settings.
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// DecodeConfig controls how sprites are parsed and decoded.
type DecodeConfig struct {
	Scale     int `yaml:"scale"`      // integer upscale factor, >= 1
	Palette   int `yaml:"palette"`    // palette used for exports
	CacheSize int `yaml:"cache_size"` // decoded textures kept per sprite, 0 = all

	SpriteCache int `yaml:"sprite_cache"` // parsed sprites kept open
}

// ExportConfig controls image output.
type ExportConfig struct {
	Format    string `yaml:"format"`     // png or bmp
	OutputDir string `yaml:"output_dir"` // default destination
	Workers   int    `yaml:"workers"`    // parallel entries in export-all
	TickMS    int    `yaml:"tick_ms"`    // animation tick length
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			Scale:     1,
			Palette:   0,
			CacheSize: 0,

			SpriteCache: 32,
		},
		Export: ExportConfig{
			Format:    render.FormatPNG,
			OutputDir: "out",
			Workers:   4,
			TickMS:    66,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Decode.Scale < 1 {
		return fmt.Errorf("%w: decode.scale must be >= 1, got %d", ErrInvalidConfig, c.Decode.Scale)
	}
	if c.Decode.Palette < 0 {
		return fmt.Errorf("%w: decode.palette must be >= 0, got %d", ErrInvalidConfig, c.Decode.Palette)
	}
	if c.Decode.CacheSize < 0 {
		return fmt.Errorf("%w: decode.cache_size must be >= 0, got %d", ErrInvalidConfig, c.Decode.CacheSize)
	}
	if c.Decode.SpriteCache < 1 {
		return fmt.Errorf("%w: decode.sprite_cache must be >= 1, got %d", ErrInvalidConfig, c.Decode.SpriteCache)
	}
	if !render.ValidFormat(c.Export.Format) {
		return fmt.Errorf("%w: export.format must be png or bmp, got %q", ErrInvalidConfig, c.Export.Format)
	}
	if c.Export.Workers < 1 {
		return fmt.Errorf("%w: export.workers must be >= 1, got %d", ErrInvalidConfig, c.Export.Workers)
	}
	if c.Export.TickMS < 1 {
		return fmt.Errorf("%w: export.tick_ms must be >= 1, got %d", ErrInvalidConfig, c.Export.TickMS)
	}
	return nil
}

// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// FileName is the optional config file looked up in the project root.
	FileName = "quotecard.yaml"

	// EnvPrefix prefixes environment overrides, e.g. QUOTECARD_CANVAS_WIDTH.
	EnvPrefix = "QUOTECARD_"

	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600

	DefaultLogFileMaxSizeMB  = 10
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28
)

// DefaultQuoteFonts are the decorative fonts tried for quote text.
var DefaultQuoteFonts = []string{
	"Agbalumo-Regular",
	"Condiment-Regular",
	"Courgette-Regular",
	"EmilysCandy-Regular",
	"FreckleFace-Regular",
	"GamjaFlower-Regular",
	"IrishGrover-Regular",
	"Knewave-Regular",
	"Pacifico-Regular",
	"ShadowsIntoLight-Regular",
}

// DefaultSystemFontDirs are searched after the project font directory.
var DefaultSystemFontDirs = []string{
	"/usr/share/fonts/truetype/dejavu",
	"/usr/share/fonts/truetype/liberation",
	"/usr/share/fonts/truetype/ubuntu",
}

// Config is the root configuration structure.
type Config struct {
	Canvas CanvasConfig `koanf:"canvas" validate:"required"`
	Fonts  FontsConfig  `koanf:"fonts"`
	Paths  PathsConfig  `koanf:"paths"  validate:"required"`
	Log    LogConfig    `koanf:"log"    validate:"required"`
}

// CanvasConfig describes every generated image.
type CanvasConfig struct {
	Width      int    `koanf:"width"      validate:"required,min=50,max=10000"`
	Height     int    `koanf:"height"     validate:"required,min=50,max=10000"`
	Background string `koanf:"background" validate:"required"`
	Foreground string `koanf:"foreground" validate:"required"`
	Format     string `koanf:"format"     validate:"required,oneof=png jpg jpeg gif bmp tiff tif"`
}

// FontsConfig names the fonts to look for and where.
type FontsConfig struct {
	Dir        string   `koanf:"dir"`
	SystemDirs []string `koanf:"system_dirs"`
	Quote      []string `koanf:"quote"`
	Speaker    string   `koanf:"speaker"`
}

// PathsConfig holds directories relative to the project root unless absolute.
type PathsConfig struct {
	Data   string `koanf:"data"   validate:"required"`
	Output string `koanf:"output" validate:"required"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"canvas.width":      DefaultCanvasWidth,
		"canvas.height":     DefaultCanvasHeight,
		"canvas.background": "white",
		"canvas.foreground": "black",
		"canvas.format":     "png",

		"fonts.dir":         filepath.Join("fonts", "ttf"),
		"fonts.system_dirs": append([]string{}, DefaultSystemFontDirs...),
		"fonts.quote":       append([]string{}, DefaultQuoteFonts...),
		"fonts.speaker":     "DejaVuSans",

		"paths.data":   "data",
		"paths.output": "output",

		"log.level":            "info",
		"log.format":           "pretty",
		"log.file.enabled":     false,
		"log.file.path":        filepath.Join("logs", "quotecard.log"),
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (QUOTECARD_ prefix)
//  2. quotecard.yaml in root, when root is not empty and the file exists
//  3. Default values
func Load(root string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if root != "" {
		if err := loadFileIfExists(k, filepath.Join(root, FileName)); err != nil {
			return nil, fmt.Errorf("loading %s: %w", FileName, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, EnvPrefix)),
			"_",
			".",
		)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// loadFileIfExists loads a YAML config file if it exists.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return k.Load(file.Provider(path), yaml.Parser())
}

// FontSearchPaths is the project font directory followed by the system ones.
func (c *Config) FontSearchPaths(root string) []string {
	paths := []string{}
	if c.Fonts.Dir != "" {
		paths = append(paths, Resolve(root, c.Fonts.Dir))
	}
	return append(paths, c.Fonts.SystemDirs...)
}

// Resolve joins path to root unless path is absolute or root is empty.
func Resolve(root, path string) string {
	if filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}

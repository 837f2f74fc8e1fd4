// Package config handles tool configuration loading and management.
package config

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/aimtools/internal/catalog"
	"github.com/Faultbox/aimtools/internal/export"
	"github.com/Faultbox/aimtools/internal/texture"
	"github.com/Faultbox/aimtools/pkg/encoding"
	"github.com/Faultbox/aimtools/pkg/formats"
	"github.com/Faultbox/aimtools/pkg/mesh"
)

// Config holds all tool settings.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Export  ExportConfig  `yaml:"export"`
	Texture TextureConfig `yaml:"texture"`
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
}

// GameConfig selects the game release and its text code page.
type GameConfig struct {
	Variant  string `yaml:"variant"`  // aim1 or aim2
	Encoding string `yaml:"encoding"` // code page of fixed-width strings
}

// ExportConfig holds model export settings.
type ExportConfig struct {
	Axis      string   `yaml:"axis"`
	Formats   []string `yaml:"formats"`
	Scale     float32  `yaml:"scale"`
	OutputDir string   `yaml:"output_dir"`
}

// TextureConfig holds texture conversion settings.
type TextureConfig struct {
	Format    string `yaml:"format"`
	OutputDir string `yaml:"output_dir"`
}

// CatalogConfig locates the placement catalog.
type CatalogConfig struct {
	Driver string `yaml:"driver"` // yaml or sqlite
	Path   string `yaml:"path"`
	Prefix string `yaml:"prefix"` // map name prefix
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Game: GameConfig{
			Variant:  "aim1",
			Encoding: encoding.DefaultCodePage,
		},
		Export: ExportConfig{
			Axis:    mesh.MayaYUp.String(),
			Formats: []string{string(export.FormatOBJ)},
			Scale:   1,
		},
		Texture: TextureConfig{
			Format: string(texture.FormatBMP),
		},
		Catalog: CatalogConfig{
			Driver: catalog.DriverYAML,
			Path:   "catalog.yaml",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "console",
			LogFile: "",
		},
	}
}

// Variant returns the parsed game variant.
func (c *Config) Variant() (formats.GameVariant, error) {
	v, ok := formats.ParseGameVariant(c.Game.Variant)
	if !ok {
		return formats.GameAim1, errors.Errorf("unknown game variant %q", c.Game.Variant)
	}
	return v, nil
}

// MeshOptions returns the export options for pkg/mesh.
func (c *Config) MeshOptions() (mesh.Options, error) {
	axis, err := mesh.ParseAxisSystem(c.Export.Axis)
	if err != nil {
		return mesh.Options{}, err
	}
	return mesh.Options{Axis: axis, Scale: c.Export.Scale}, nil
}

// Validate checks that every named setting is known.
func (c *Config) Validate() error {
	if _, err := c.Variant(); err != nil {
		return err
	}
	if _, err := c.MeshOptions(); err != nil {
		return errors.Wrap(err, "export.axis")
	}
	if c.Export.Scale < 0 {
		return errors.Errorf("export.scale must not be negative, got %v", c.Export.Scale)
	}
	if _, err := export.ParseFormats(c.Export.Formats); err != nil {
		return errors.Wrap(err, "export.formats")
	}
	if _, err := texture.ParseFormat(c.Texture.Format); err != nil {
		return errors.Wrap(err, "texture.format")
	}
	switch c.Catalog.Driver {
	case catalog.DriverYAML, catalog.DriverSQLite:
	default:
		return errors.Wrapf(catalog.ErrUnknownDriver, "catalog.driver %q", c.Catalog.Driver)
	}
	return nil
}

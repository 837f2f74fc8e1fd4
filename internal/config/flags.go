package config

import (
	"flag"
	"strings"
)

// Flags holds command-line overrides. Only flags registered on a FlagSet are
// applied; the rest keep their zero value and leave the config untouched.
type Flags struct {
	Config string
	Debug  bool
	M2     bool

	Axis    string
	Formats string
	Scale   float64
	Output  string

	Texture string

	DB     string
	Driver string
	Prefix string
}

// RegisterFlags adds the flags every command accepts.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.M2, "m2", false, "Read A.I.M. 2 file layouts")
	return f
}

// RegisterExport adds model export flags.
func (f *Flags) RegisterExport(fs *flag.FlagSet) {
	fs.StringVar(&f.Axis, "axis", "", "Target axis system (MayaYUp, MayaZUp, DirectX, Windows3DViewer, ...)")
	fs.StringVar(&f.Formats, "formats", "", "Comma-separated output formats (obj, yaml, glb, fbx)")
	fs.Float64Var(&f.Scale, "scale", 0, "Unit scale applied to positions")
	fs.StringVar(&f.Output, "o", "", "Output directory")
}

// RegisterTexture adds texture conversion flags.
func (f *Flags) RegisterTexture(fs *flag.FlagSet) {
	fs.StringVar(&f.Texture, "format", "", "Output image format (bmp, tga, webp, png)")
	fs.StringVar(&f.Output, "o", "", "Output directory")
}

// RegisterCatalog adds catalog flags.
func (f *Flags) RegisterCatalog(fs *flag.FlagSet) {
	fs.StringVar(&f.DB, "db", "", "Catalog file")
	fs.StringVar(&f.Driver, "driver", "", "Catalog driver (yaml, sqlite)")
	fs.StringVar(&f.Prefix, "prefix", "", "Map name prefix")
}

// RegisterAll adds every override flag, for commands that act on the whole config.
func (f *Flags) RegisterAll(fs *flag.FlagSet) {
	f.RegisterExport(fs)
	f.RegisterCatalog(fs)
	fs.StringVar(&f.Texture, "format", "", "Output image format (bmp, tga, webp, png)")
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.M2 {
		cfg.Game.Variant = "aim2"
	}
	if f.Axis != "" {
		cfg.Export.Axis = f.Axis
	}
	if f.Formats != "" {
		cfg.Export.Formats = strings.Split(f.Formats, ",")
	}
	if f.Scale > 0 {
		cfg.Export.Scale = float32(f.Scale)
	}
	if f.Output != "" {
		cfg.Export.OutputDir = f.Output
		cfg.Texture.OutputDir = f.Output
	}
	if f.Texture != "" {
		cfg.Texture.Format = f.Texture
	}
	if f.DB != "" {
		cfg.Catalog.Path = f.DB
		if f.Driver == "" && (strings.HasSuffix(f.DB, ".db") || strings.HasSuffix(f.DB, ".sqlite")) {
			cfg.Catalog.Driver = "sqlite"
		}
	}
	if f.Driver != "" {
		cfg.Catalog.Driver = f.Driver
	}
	if f.Prefix != "" {
		cfg.Catalog.Prefix = f.Prefix
	}
}

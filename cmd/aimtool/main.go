// aimtool is a CLI utility for converting A.I.M. game data files.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/Faultbox/aimtools/internal/config"
	"github.com/Faultbox/aimtools/internal/logger"
	"github.com/Faultbox/aimtools/pkg/encoding"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "model", "mod":
		err = cmdModel(args)
	case "texture", "tm":
		err = cmdTexture(args)
	case "mmo", "objects":
		err = cmdMMO(args)
	case "mechs":
		err = cmdMechs(args)
	case "inspect", "dump":
		err = cmdInspect(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`aimtool - A.I.M. game data utility

Usage:
  aimtool <command> [options] <file or directory>

Commands:
  model   <path>   Convert .mod models (obj, yaml, glb, fbx)
  texture <path>   Convert .tm textures (bmp, tga, webp, png)
  mmo     <path>   Merge .mmo map object placements into the catalog
  mechs   <path>   List mechanoid groups of .mmo maps
  inspect <file>   Dump the decoded structure of a .mod, .mmo or .tm file
  config  [file]   Write the effective config (defaults, file, flags) to file
                   or the user config directory; -print writes it to stdout

Common options:
  -config <file>   Config file (default ./aimtools.yaml)
  -debug           Enable debug logging
  -m2              Read A.I.M. 2 layouts

Examples:
  aimtool model -formats obj,glb -axis blender data/models
  aimtool texture -format png -o textures data/tex
  aimtool mmo -db aim.db -prefix aim2 -m2 data/maps
  aimtool mechs data/maps/location1.mmo
  aimtool config -m2 -db aim.db -formats obj,glb aimtools.yaml`)
}

// setup loads the configuration and initializes logging and text decoding.
func setup(flags *config.Flags) (*config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}

	opts := logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: true,
	}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithOptions(opts); err != nil {
		return nil, errors.Wrap(err, "initializing logger")
	}

	if err := encoding.SetCodePage(cfg.Game.Encoding); err != nil {
		return nil, errors.Wrap(err, "game.encoding")
	}
	return cfg, nil
}

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/aimtools/internal/batch"
	"github.com/Faultbox/aimtools/internal/catalog"
	"github.com/Faultbox/aimtools/internal/config"
	"github.com/Faultbox/aimtools/internal/export"
	"github.com/Faultbox/aimtools/internal/logger"
	"github.com/Faultbox/aimtools/internal/reconcile"
	"github.com/Faultbox/aimtools/internal/texture"
	"github.com/Faultbox/aimtools/pkg/formats"
	"github.com/Faultbox/aimtools/pkg/mesh"
)

func parse(fs *flag.FlagSet, args []string, usage string) {
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: aimtool %s\n", usage)
		fs.PrintDefaults()
		os.Exit(1)
	}
}

// finish reports failed files and turns them into an error.
func finish(results []batch.Result) error {
	failed := batch.Failed(results)
	logger.Info("done", zap.Int("files", len(results)), zap.Int("failed", len(failed)))
	if len(failed) > 0 {
		return errors.Errorf("%d of %d files failed", len(failed), len(results))
	}
	return nil
}

func cmdModel(args []string) error {
	fs := flag.NewFlagSet("model", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	flags.RegisterExport(fs)
	bundle := fs.String("bundle", "", "Also write all models into one OBJ file")
	parse(fs, args, "model [options] <file.mod | directory>")

	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	variant, _ := cfg.Variant()
	meshOpts, _ := cfg.MeshOptions()
	outFormats, _ := export.ParseFormats(cfg.Export.Formats)

	files, err := batch.Files(fs.Arg(0), ".mod")
	if err != nil {
		return err
	}

	opts := export.Options{
		Variant:   variant,
		Formats:   outFormats,
		OutputDir: cfg.Export.OutputDir,
		Mesh:      meshOpts,
	}
	var models []*mesh.Model
	results := batch.Run(files, func(path string) error {
		m, err := export.Load(path, variant)
		if err != nil {
			return err
		}
		written, err := export.Write(m, path, opts)
		if err != nil {
			return err
		}
		for _, w := range written {
			fmt.Println(w)
		}
		if *bundle != "" {
			models = append(models, m)
		}
		return nil
	})

	if *bundle != "" && len(models) > 0 {
		if err := export.WriteOBJBundle(*bundle, models, meshOpts); err != nil {
			return err
		}
		fmt.Println(*bundle)
	}
	return finish(results)
}

func cmdTexture(args []string) error {
	fs := flag.NewFlagSet("texture", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	flags.RegisterTexture(fs)
	parse(fs, args, "texture [options] <file.tm | directory>")

	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	format, _ := texture.ParseFormat(cfg.Texture.Format)

	files, err := batch.Files(fs.Arg(0), ".tm")
	if err != nil {
		return err
	}

	results := batch.Run(files, func(path string) error {
		out, err := texture.Convert(path, cfg.Texture.OutputDir, format)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	})
	return finish(results)
}

func cmdMMO(args []string) error {
	fs := flag.NewFlagSet("mmo", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	flags.RegisterCatalog(fs)
	parse(fs, args, "mmo [options] <file.mmo | directory>")

	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	variant, _ := cfg.Variant()

	files, err := batch.Files(fs.Arg(0), ".mmo")
	if err != nil {
		return err
	}

	store, err := catalog.Open(cfg.Catalog.Driver, cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	cat, err := store.Load()
	if err != nil {
		return err
	}

	r := reconcile.New(cat, cfg.Catalog.Prefix, logger.Log)
	var totals reconcile.Totals
	results := batch.Run(files, func(path string) error {
		m, err := formats.ParseMMOFile(path, variant)
		if err != nil {
			return errors.Wrapf(err, "decoding %s", path)
		}
		res, err := r.Reconcile(path, m)
		if err != nil {
			return err
		}
		totals.Add(res)
		fmt.Printf("%s: inserted: %d, exist: %d\n", path, res.Inserted, res.Existing)
		return nil
	})
	for range batch.Failed(results) {
		totals.Fail()
	}

	fmt.Printf("total: inserted: %d, exist: %d, failed files: %d\n", totals.Inserted, totals.Existing, totals.Failed)
	if totals.Changed() {
		if err := store.Save(cat); err != nil {
			return err
		}
	}
	return finish(results)
}

func cmdMechs(args []string) error {
	fs := flag.NewFlagSet("mechs", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	parse(fs, args, "mechs [options] <file.mmo | directory>")

	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	variant, _ := cfg.Variant()

	files, err := batch.Files(fs.Arg(0), ".mmo")
	if err != nil {
		return err
	}

	results := batch.Run(files, func(path string) error {
		m, err := formats.ParseMMOFile(path, variant)
		if err != nil {
			return errors.Wrapf(err, "decoding %s", path)
		}
		writeMechs(os.Stdout, path, m)
		return nil
	})
	return finish(results)
}

// writeMechs prints one "name org count map" line per mechanoid group.
func writeMechs(w io.Writer, path string, m *formats.MMO) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, g := range m.MechGroups {
		fmt.Fprintf(w, "%s %s %d %s\n", g.Name, g.Org, len(g.Mechanoids), stem)
	}
}

func cmdInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	depth := fs.Int("depth", 3, "Maximum nesting depth to print (0 = unlimited)")
	block := fs.String("block", "", "Print only the named block of a .mod file")
	parse(fs, args, "inspect [options] <file.mod | file.mmo | file.tm>")

	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	variant, _ := cfg.Variant()

	v, err := decode(fs.Arg(0), variant)
	if err != nil {
		return err
	}
	if *block != "" {
		if v, err = selectBlock(v, *block); err != nil {
			return err
		}
	}

	dumper := spew.NewDefaultConfig()
	dumper.DisableCapacities = true
	dumper.DisablePointerAddresses = true
	dumper.MaxDepth = *depth
	dumper.Fdump(os.Stdout, v)
	return nil
}

// selectBlock narrows a decoded model to one block.
func selectBlock(v any, name string) (any, error) {
	model, ok := v.(*formats.Model)
	if !ok {
		return nil, errors.New("-block applies to .mod files only")
	}
	b := model.GetBlockByName(name)
	if b == nil {
		return nil, errors.Errorf("block %q not found", name)
	}
	return b, nil
}

// textureInfo is the printable part of a decoded texture.
type textureInfo struct {
	Width      int
	Height     int
	Compressed bool
}

func decode(path string, variant formats.GameVariant) (any, error) {
	var (
		v   any
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mod":
		v, err = formats.ParseMODFile(path, variant)
	case ".mmo":
		v, err = formats.ParseMMOFile(path, variant)
	case ".tm":
		var tm *formats.TM
		if tm, err = formats.ParseTMFile(path); err == nil {
			v = textureInfo{Width: tm.Width, Height: tm.Height, Compressed: tm.Compressed}
		}
	default:
		return nil, errors.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return v, nil
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	flags.RegisterAll(fs)
	show := fs.Bool("print", false, "Print the resulting config instead of writing it")
	fs.Parse(args)

	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	if *show {
		return cfg.Encode(os.Stdout)
	}

	path, err := cfg.SaveTo(fs.Arg(0))
	if err != nil {
		return err
	}
	logger.Info("config written", zap.String("path", path))
	fmt.Println(path)
	return nil
}

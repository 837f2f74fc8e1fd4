// Package export decodes MOD files and writes them in the selected
// interchange formats.
package export

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/aimtools/internal/logger"
	"github.com/Faultbox/aimtools/pkg/formats"
	"github.com/Faultbox/aimtools/pkg/mesh"
)

// ErrUnknownFormat is returned for an unsupported model format name.
var ErrUnknownFormat = errors.New("unknown model format")

// Format is a model output format.
type Format string

const (
	FormatOBJ  Format = "obj" // writes .obj and .mtl
	FormatYAML Format = "yaml"
	FormatGLB  Format = "glb"
	FormatFBX  Format = "fbx"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatOBJ, FormatYAML, FormatGLB, FormatFBX}

// ParseFormats parses format names, dropping duplicates. An empty list selects OBJ.
func ParseFormats(names []string) ([]Format, error) {
	if len(names) == 0 {
		return []Format{FormatOBJ}, nil
	}

	var out []Format
	seen := make(map[Format]bool)
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		if f == "gltf" {
			f = FormatGLB
		}
		known := false
		for _, k := range Formats {
			known = known || k == f
		}
		if !known {
			return nil, errors.Wrapf(ErrUnknownFormat, "%q", n)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Options control a model conversion.
type Options struct {
	Variant   formats.GameVariant
	Formats   []Format
	OutputDir string // empty writes next to the source
	Mesh      mesh.Options
}

// Load decodes and links a MOD file.
func Load(src string, variant formats.GameVariant) (*mesh.Model, error) {
	mod, err := formats.ParseMODFile(src, variant)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", src)
	}

	logger.Debug("model decoded",
		zap.String("file", src),
		zap.Int("blocks", len(mod.Blocks)),
		zap.Int("vertices", mod.GetTotalVertexCount()),
		zap.Int("faces", mod.GetTotalFaceCount()),
	)

	m := mesh.New(filepath.Base(src), mod)
	if err := m.Link(logger.WithFile(src)); err != nil {
		return nil, errors.Wrapf(err, "linking %s", src)
	}
	return m, nil
}

// Convert decodes src and writes every selected format. It returns the written paths.
func Convert(src string, opts Options) ([]string, error) {
	m, err := Load(src, opts.Variant)
	if err != nil {
		return nil, err
	}
	return Write(m, src, opts)
}

// Write exports a linked model decoded from src.
func Write(m *mesh.Model, src string, opts Options) ([]string, error) {
	if len(m.PrintableBlocks()) == 0 {
		logger.Warn("model has no printable blocks", zap.String("file", src))
	}

	base := src
	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating %s", opts.OutputDir)
		}
		base = filepath.Join(opts.OutputDir, filepath.Base(src))
	}

	fs := opts.Formats
	if len(fs) == 0 {
		fs = []Format{FormatOBJ}
	}

	var written []string
	for _, f := range fs {
		paths, err := write(m, base, f, opts.Mesh)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}

	logger.Debug("model converted",
		zap.String("file", src),
		zap.Int("blocks", len(m.Blocks)),
		zap.Strings("outputs", written),
	)
	return written, nil
}

func write(m *mesh.Model, base string, f Format, opts mesh.Options) ([]string, error) {
	switch f {
	case FormatOBJ:
		mtl := base + ".mtl"
		if opts.MaterialLib == "" {
			opts.MaterialLib = filepath.Base(mtl)
		}
		obj := base + ".obj"
		if err := writeFile(obj, func(out *os.File) error {
			_, err := mesh.WriteOBJ(out, m, mesh.Offsets{}, opts)
			return err
		}); err != nil {
			return nil, err
		}
		if err := writeFile(mtl, func(out *os.File) error {
			return mesh.WriteMTL(out, m, opts)
		}); err != nil {
			return []string{obj}, err
		}
		return []string{obj, mtl}, nil
	case FormatYAML:
		return one(base+".yaml", func(out *os.File) error { return mesh.WriteYAML(out, m, opts) })
	case FormatGLB:
		return one(base+".glb", func(out *os.File) error { return mesh.WriteGLB(out, m, opts) })
	case FormatFBX:
		return one(base+".fbx", func(out *os.File) error { return mesh.WriteFBX(out, m, opts) })
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", string(f))
	}
}

func one(path string, fn func(*os.File) error) ([]string, error) {
	if err := writeFile(path, fn); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := fn(out); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(out.Close(), "closing %s", path)
}

// WriteOBJBundle concatenates several models into one OBJ and MTL pair,
// carrying index offsets across models.
func WriteOBJBundle(path string, models []*mesh.Model, opts mesh.Options) error {
	mtl := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	opts.MaterialLib = filepath.Base(mtl)

	err := writeFile(path, func(out *os.File) error {
		w := bufio.NewWriter(out)
		var off mesh.Offsets
		for i, m := range models {
			o := opts
			if i > 0 {
				o.MaterialLib = ""
			}
			var err error
			if off, err = mesh.WriteOBJ(w, m, off, o); err != nil {
				return errors.Wrapf(err, "model %s", m.Name)
			}
		}
		return w.Flush()
	})
	if err != nil {
		return err
	}

	return writeFile(mtl, func(out *os.File) error {
		w := bufio.NewWriter(out)
		for _, m := range models {
			if err := mesh.WriteMTL(w, m, opts); err != nil {
				return errors.Wrapf(err, "model %s", m.Name)
			}
		}
		return w.Flush()
	})
}

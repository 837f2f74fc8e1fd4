// Package texture converts decoded TM textures to common image files.
package texture

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/aimtools/internal/logger"
	"github.com/Faultbox/aimtools/pkg/formats"
)

// ErrUnknownFormat is returned for an unsupported output format name.
var ErrUnknownFormat = errors.New("unknown image format")

// Format is an output image format.
type Format string

const (
	FormatBMP  Format = "bmp"
	FormatTGA  Format = "tga"
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatBMP, FormatTGA, FormatWebP, FormatPNG}

// ParseFormat parses a format name; empty selects BMP.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	if s == "" {
		return FormatBMP, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes img in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatBMP, "":
		return bmp.Encode(w, img)
	case FormatTGA:
		return tga.Encode(w, img)
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	case FormatPNG:
		return png.Encode(w, img)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", string(f))
	}
}

// OutputPath returns the converted file name: the source name with the format
// extension appended ("hull.tm" -> "hull.tm.bmp"), placed in outDir when set.
func OutputPath(src, outDir string, f Format) string {
	name := src + f.Ext()
	if outDir != "" {
		name = filepath.Join(outDir, filepath.Base(name))
	}
	return name
}

// Convert decodes a TM file and writes it as an image. It returns the output path.
func Convert(src, outDir string, f Format) (string, error) {
	tm, err := formats.ParseTMFile(src)
	if err != nil {
		return "", errors.Wrapf(err, "decoding %s", src)
	}

	dst := OutputPath(src, outDir, f)
	if err := writeFile(dst, tm.Image, f); err != nil {
		return "", err
	}

	logger.Debug("texture converted",
		zap.String("file", src),
		zap.String("output", dst),
		zap.Int("width", tm.Width),
		zap.Int("height", tm.Height),
		zap.Bool("dxt5", tm.Compressed),
	)
	return dst, nil
}

func writeFile(path string, img image.Image, f Format) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return errors.Wrapf(err, "encoding %s", path)
	}
	return errors.Wrapf(out.Close(), "closing %s", path)
}

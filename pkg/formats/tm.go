// TM texture container parser.
package formats

import (
	"errors"
	"fmt"
	"image"
	"os"
)

// TM format errors.
var (
	ErrInvalidTextureSize   = errors.New("invalid texture dimensions")
	ErrTruncatedTextureData = errors.New("truncated texture data")
)

// TM header layout.
const (
	tmFlagOffset    = 0x10
	tmPayloadOffset = 0x4C
)

// TM is a decoded texture.
type TM struct {
	Width      int
	Height     int
	Compressed bool // payload was DXT5
	Image      *image.NRGBA
}

// ParseTM decodes a TM texture into a top-down raster.
func ParseTM(data []byte) (*TM, error) {
	if len(data) < tmPayloadOffset {
		return nil, fmt.Errorf("%w: header is %d bytes, need %d", ErrTruncatedTextureData, len(data), tmPayloadOffset)
	}

	r := newReader(data)
	width := r.i32("width")
	height := r.i32("height")
	r.seek("compression flag", tmFlagOffset)
	flag := r.u8("compression flag")
	r.seek("payload", tmPayloadOffset)
	if r.err != nil {
		return nil, r.err
	}

	tm := &TM{
		Width:      int(width),
		Height:     int(height),
		Compressed: flag != 0,
	}

	payload := data[tmPayloadOffset:]
	var err error
	if tm.Compressed {
		tm.Image, err = DecodeDXT5(payload, tm.Width, tm.Height)
	} else {
		tm.Image, err = DecodePacked4444(payload, tm.Width, tm.Height)
	}
	if err != nil {
		return nil, fmt.Errorf("%w (%dx%d, compressed=%v, payload %d bytes)", err, width, height, tm.Compressed, len(payload))
	}
	return tm, nil
}

// ParseTMFile parses a TM file from disk.
func ParseTMFile(path string) (*TM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading TM file: %w", err)
	}
	return ParseTM(data)
}

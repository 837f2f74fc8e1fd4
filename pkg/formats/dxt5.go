package formats

import (
	"encoding/binary"
	"image"
	"image/color"
)

// DXT5BlockSize is the size of one compressed 4x4 tile.
const DXT5BlockSize = 16

// DXT5Size returns the payload size of a width x height DXT5 image.
func DXT5Size(width, height int) int {
	return (width / 4) * (height / 4) * DXT5BlockSize
}

// DecodeDXT5 decompresses DXT5 tiles stored in row-major order into a
// width x height raster. Both dimensions must be positive multiples of 4.
func DecodeDXT5(data []byte, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 || width%4 != 0 || height%4 != 0 {
		return nil, ErrInvalidTextureSize
	}
	if len(data) < DXT5Size(width, height) {
		return nil, ErrTruncatedTextureData
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	var tile [16]color.NRGBA

	tilesX := width / 4
	tilesY := height / 4
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			off := (ty*tilesX + tx) * DXT5BlockSize
			decodeDXT5Block(data[off:off+DXT5BlockSize], &tile)

			for i, c := range tile {
				img.SetNRGBA(tx*4+i%4, ty*4+i/4, c)
			}
		}
	}
	return img, nil
}

// decodeDXT5Block decodes 8 bytes of alpha followed by 8 bytes of color into
// 16 pixels, index = y*4 + x.
func decodeDXT5Block(block []byte, out *[16]color.NRGBA) {
	alphas := dxt5AlphaLevels(block[0], block[1])

	// 48 bits of 3-bit alpha indices
	var alphaBits uint64
	for i := 0; i < 6; i++ {
		alphaBits |= uint64(block[2+i]) << (8 * i)
	}

	c0 := binary.LittleEndian.Uint16(block[8:])
	c1 := binary.LittleEndian.Uint16(block[10:])
	colors := dxt5ColorPalette(c0, c1)
	colorBits := binary.LittleEndian.Uint32(block[12:])

	for i := 0; i < 16; i++ {
		a := alphas[(alphaBits>>(3*i))&7]
		c := colors[(colorBits>>(2*i))&3]
		c.A = a
		out[i] = c
	}
}

// dxt5AlphaLevels returns the eight interpolated alpha values.
// Equal endpoints give a uniform palette.
func dxt5AlphaLevels(a0, a1 uint8) [8]uint8 {
	var levels [8]uint8
	levels[0] = a0
	levels[1] = a1
	for i := 1; i < 7; i++ {
		levels[i+1] = uint8(((7-i)*int(a0) + i*int(a1)) / 7)
	}
	return levels
}

// dxt5ColorPalette expands two RGB565 colors into the four-color palette.
// DXT5 color blocks always use the four-color mode.
func dxt5ColorPalette(c0, c1 uint16) [4]color.NRGBA {
	r0, g0, b0 := rgb565(c0)
	r1, g1, b1 := rgb565(c1)
	return [4]color.NRGBA{
		{R: uint8(r0), G: uint8(g0), B: uint8(b0)},
		{R: uint8(r1), G: uint8(g1), B: uint8(b1)},
		{R: uint8((2*r0 + r1) / 3), G: uint8((2*g0 + g1) / 3), B: uint8((2*b0 + b1) / 3)},
		{R: uint8((r0 + 2*r1) / 3), G: uint8((g0 + 2*g1) / 3), B: uint8((b0 + 2*b1) / 3)},
	}
}

func rgb565(v uint16) (r, g, b uint32) {
	r = uint32(v>>11) & 0x1f
	g = uint32(v>>5) & 0x3f
	b = uint32(v) & 0x1f

	r = (r << 3) | (r >> 2)
	g = (g << 2) | (g >> 4)
	b = (b << 3) | (b >> 2)
	return
}

// ExpandNibble widens a 4-bit sample to 8 bits by bit replication (0x5 -> 0x55).
func ExpandNibble(n uint8) uint8 {
	n &= 0x0f
	return n<<4 | n
}

// DecodePacked4444 decodes the uncompressed fallback format: two bytes per
// pixel, four 4-bit channels (B, G, R, A from low to high nibble). The source is
// stored bottom-up; the returned raster is flipped to top-down.
func DecodePacked4444(data []byte, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidTextureSize
	}
	if len(data) < width*height*2 {
		return nil, ErrTruncatedTextureData
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := (height - 1 - y) * width * 2
		for x := 0; x < width; x++ {
			b0 := data[row+x*2]
			b1 := data[row+x*2+1]
			img.SetNRGBA(x, y, color.NRGBA{
				B: ExpandNibble(b0),
				G: ExpandNibble(b0 >> 4),
				R: ExpandNibble(b1),
				A: ExpandNibble(b1 >> 4),
			})
		}
	}
	return img, nil
}

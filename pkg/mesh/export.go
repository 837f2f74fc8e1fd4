package mesh

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultTextureSuffix is appended to texture names in material files.
const DefaultTextureSuffix = ".TM.bmp"

// Options controls coordinate conversion and file references of an export.
type Options struct {
	Axis AxisSystem
	// Scale multiplies positions; zero means 1.
	Scale float32
	// MaterialLib is referenced by an mtllib line when set.
	MaterialLib string
	// TextureSuffix replaces DefaultTextureSuffix when set.
	TextureSuffix string
}

func (o Options) scale() float32 {
	if o.Scale == 0 {
		return 1
	}
	return o.Scale
}

func (o Options) textureSuffix() string {
	if o.TextureSuffix == "" {
		return DefaultTextureSuffix
	}
	return o.TextureSuffix
}

// view is a block's linked geometry converted to the target axis system.
type view struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	faces     []Face
	bounds    Bounds
}

func (o Options) view(b *Block) (*view, error) {
	if !b.Linked() {
		return nil, fmt.Errorf("%w: %s", ErrNotLinked, b.Name())
	}
	g := b.Processed
	mat := o.Axis.Matrix()
	scale := o.scale()

	v := &view{
		positions: make([]mgl32.Vec3, len(g.Positions)),
		normals:   make([]mgl32.Vec3, len(g.Normals)),
		uvs:       g.UVs,
		faces:     g.Faces,
		bounds:    emptyBounds(),
	}
	for i, p := range g.Positions {
		v.positions[i] = mat.Mul3x1(p.Vec3()).Mul(scale)
		v.bounds.extend(v.positions[i])
	}
	for i, n := range g.Normals {
		v.normals[i] = mat.Mul3x1(n)
	}

	if o.Axis.ReversesWinding() {
		v.faces = make([]Face, len(g.Faces))
		for i, f := range g.Faces {
			v.faces[i] = Face{f[0], f[2], f[1]}
		}
	}
	return v, nil
}

// ftoa formats a float with the shortest exact representation.
func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

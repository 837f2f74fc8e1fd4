// Package mesh assembles decoded model blocks into linked, exportable geometry.
//
// Linking expands every face corner into its own slot in three parallel pools
// (positions, normals, texture coordinates). Exporters only read the linked
// pools, so a block must be linked before it can be written.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/aimtools/pkg/formats"
)

// Mesh assembly errors.
var (
	ErrFaceIndexOutOfRange = errors.New("face index out of range")
	ErrNotLinked           = errors.New("block is not linked")
)

// Corner indexes one face corner into the position, normal and uv pools.
type Corner struct {
	Vertex uint32
	Normal uint32
	UV     uint32
}

// Face is a linked triangle.
type Face [3]Corner

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func emptyBounds() Bounds {
	return Bounds{
		Min: mgl32.Vec3{1e10, 1e10, 1e10},
		Max: mgl32.Vec3{-1e10, -1e10, -1e10},
	}
}

func (b *Bounds) extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Empty reports whether no point was added.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0]
}

// Geometry is the linked form of a block's mesh.
type Geometry struct {
	Positions []mgl32.Vec4
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Faces     []Face
	Bounds    Bounds
}

// Block wraps a decoded block with its linked geometry.
type Block struct {
	*formats.Block
	Processed *Geometry
}

// Linked reports whether Link has run for this block.
func (b *Block) Linked() bool {
	return b.Processed != nil
}

// Model is a decoded model prepared for export.
type Model struct {
	Name   string
	Source *formats.Model
	Blocks []*Block
}

// New wraps a decoded model. Blocks share storage with src.
func New(name string, src *formats.Model) *Model {
	m := &Model{
		Name:   name,
		Source: src,
		Blocks: make([]*Block, len(src.Blocks)),
	}
	for i := range src.Blocks {
		m.Blocks[i] = &Block{Block: &src.Blocks[i]}
	}
	return m
}

// Link links every block that is not linked yet.
func (m *Model) Link(log *zap.Logger) error {
	for _, b := range m.Blocks {
		if err := Link(b, log); err != nil {
			return fmt.Errorf("block %q: %w", b.Name(), err)
		}
	}
	return nil
}

// PrintableBlocks returns the blocks that produce exportable geometry.
func (m *Model) PrintableBlocks() []*Block {
	var out []*Block
	for _, b := range m.Blocks {
		if Printable(b) {
			out = append(out, b)
		}
	}
	return out
}

// Link resolves every face corner of the block against its vertex array and
// fills b.Processed. NaN coordinates are replaced (position by 0, w by 1) and
// each replacement is logged. A linked block is left untouched.
func Link(b *Block, log *zap.Logger) error {
	if b.Linked() {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	if !b.MaterialType.Known() {
		log.Warn("unknown material type",
			zap.String("block", b.Name()),
			zap.Stringer("material", b.MaterialType),
		)
	}

	raw := &b.Mesh
	positions := make([]mgl32.Vec4, len(raw.Vertices))
	for i, v := range raw.Vertices {
		positions[i] = sanitizePosition(v.Position, b.Name(), i, log)
	}

	n := len(raw.Faces) * 3
	g := &Geometry{
		Positions: make([]mgl32.Vec4, 0, n),
		Normals:   make([]mgl32.Vec3, 0, n),
		UVs:       make([]mgl32.Vec2, 0, n),
		Faces:     make([]Face, 0, len(raw.Faces)),
		Bounds:    emptyBounds(),
	}

	for fi, face := range raw.Faces {
		var lf Face
		for c, idx := range face {
			if int(idx) >= len(raw.Vertices) {
				return fmt.Errorf("%w: face %d corner %d references vertex %d of %d",
					ErrFaceIndexOutOfRange, fi, c, idx, len(raw.Vertices))
			}
			v := raw.Vertices[idx]
			slot := uint32(len(g.Positions))

			g.Positions = append(g.Positions, positions[idx])
			g.Normals = append(g.Normals, v.Normal)
			g.UVs = append(g.UVs, v.UV)
			g.Bounds.extend(positions[idx].Vec3())

			lf[c] = Corner{Vertex: slot, Normal: slot, UV: slot}
		}
		g.Faces = append(g.Faces, lf)
	}

	b.Processed = g
	return nil
}

var coordNames = [4]string{"x", "y", "z", "w"}

func sanitizePosition(p mgl32.Vec4, block string, vertex int, log *zap.Logger) mgl32.Vec4 {
	for i, c := range p {
		if !math.IsNaN(float64(c)) {
			continue
		}
		replacement := float32(0)
		if i == 3 {
			replacement = 1
		}
		p[i] = replacement
		log.Warn("NaN vertex coordinate replaced",
			zap.String("block", block),
			zap.Int("vertex", vertex),
			zap.String("field", coordNames[i]),
			zap.Float64("value", float64(replacement)),
		)
	}
	return p
}

// Printable reports whether the block produces exportable geometry.
// Fire materials and particle emitters carry no real surface.
func Printable(b *Block) bool {
	if b.MaterialType.IsFire() {
		return false
	}
	if b.Header.Type == formats.BlockParticleEmitter {
		return false
	}
	return len(b.Mesh.Faces) > 0
}

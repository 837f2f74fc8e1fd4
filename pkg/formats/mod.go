// MOD (model container) parser for 3D models, materials and animations.
package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// MOD format errors.
var (
	ErrInvalidBlockCount = errors.New("invalid MOD block count")
)

const (
	modHeaderSize = 0x40
	maxBlockCount = 10000

	vertexSize     = 12 + 12 + 8
	windVertexSize = vertexSize + 4
	faceSize       = 6
)

// ParseMOD decodes a complete model container. Any bytes left after the
// declared blocks, or a block ending early, is a structural error.
func ParseMOD(data []byte, variant GameVariant) (*Model, error) {
	r := newReader(data)

	blockCount := r.u32("block count")
	if blockCount > maxBlockCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockCount, blockCount)
	}

	model := &Model{
		Header: r.bytes("header", modHeaderSize),
		Blocks: make([]Block, blockCount),
	}

	for i := range model.Blocks {
		if err := parseBlock(r, &model.Blocks[i], variant); err != nil {
			return nil, fmt.Errorf("parsing block %d: %w", i, err)
		}
	}

	r.expectEOF("trailing data after last block")
	if r.err != nil {
		return nil, r.err
	}
	return model, nil
}

// ParseMODFile parses a MOD file from disk.
func ParseMODFile(path string, variant GameVariant) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MOD file: %w", err)
	}
	return ParseMOD(data, variant)
}

// parseBlock reads a block header and its size-delimited payload.
func parseBlock(r *reader, b *Block, variant GameVariant) error {
	parseBlockHeader(r, &b.Header, variant)
	if r.err != nil {
		return r.err
	}

	p := r.sub("block "+b.Header.Name+" payload", int(b.Header.Size))
	if r.err != nil {
		return r.err
	}
	parseBlockPayload(p, b)
	p.expectEOF("block " + b.Header.Name + " payload")
	return p.err
}

func parseBlockHeader(r *reader, h *BlockHeader, variant GameVariant) {
	h.Type = BlockType(r.u32("block type"))
	h.Name = r.name("block name")
	for _, tex := range []*TextureRef{&h.Mask, &h.Spec, &h.Tex3, &h.Tex4} {
		parseTextureRef(r, tex, variant)
	}
	h.LODMask = r.u32("LOD mask")
	r.read("header reserved2", &h.Reserved2)
	h.Reserved3 = r.u32("header reserved3")
	h.Size = r.u32("block size")
	r.read("header reserved4", &h.Reserved4)
}

func parseTextureRef(r *reader, t *TextureRef, variant GameVariant) {
	t.Name = r.name("texture name")
	if variant == GameAim2 {
		t.Number = r.u32("texture number")
	}
}

func parseBlockPayload(r *reader, b *Block) {
	r.read("material", &b.Material)
	b.MaterialType = MaterialType(r.u32("material type"))
	b.AutoAnimation = r.u32("auto animation")
	b.AnimationCycle = r.f32("animation cycle")
	b.TriMeshMultiplier = r.u32("tri-mesh multiplier")

	b.Additional.Param = AdditionalParameter(r.u32("additional parameter"))
	b.Additional.Coefficient = r.f32("detalization coefficient")

	b.Rotation.Type = RotationType(r.u32("rotation type"))
	b.Rotation.Speed = r.f32("rotation speed")
	r.read("rotation center", &b.Rotation.Center)

	b.Flags = r.u32("block flags")
	parseMeshData(r, &b.Mesh, b.Flags)

	// Animations carry at least the type, name and four segment headers.
	animCount := r.count("animation count", 4+NameSize+4*12)
	if animCount > 0 {
		b.Animations = make([]Animation, animCount)
		for i := range b.Animations {
			parseAnimation(r, &b.Animations[i])
		}
	}

	damageCount := r.count("damage model count", NameSize+4)
	if damageCount > 0 {
		b.DamageModels = make([]DamageModel, damageCount)
		for i := range b.DamageModels {
			parseDamageModel(r, &b.DamageModels[i])
		}
	}

	b.Reserved7 = r.u32("reserved7")
	b.Reserved9 = r.f32("reserved9")
	b.Reserved10 = r.u32("reserved10")
	b.Reserved8 = r.f32("reserved8")
	b.Reserved11 = r.u32("reserved11")
	b.Reserved12 = r.u32("reserved12")
}

// parseMeshData reads vertex and face counts followed by the records.
func parseMeshData(r *reader, md *MeshData, flags uint32) {
	stride := vertexSize
	if flags&FlagWindTransform != 0 {
		stride = windVertexSize
	}

	vertexCount := r.u32("vertex count")
	faceCount := r.u32("face count")
	if r.err != nil {
		return
	}
	if uint64(vertexCount)*uint64(stride)+uint64(faceCount)*faceSize > uint64(r.remaining()) {
		r.fail("mesh data")
		return
	}

	md.Vertices = make([]Vertex, vertexCount)
	for i := range md.Vertices {
		v := &md.Vertices[i]
		var pos mgl32.Vec3
		r.read("vertex position", &pos)
		v.Position = pos.Vec4(1)
		if flags&FlagWindTransform != 0 {
			v.Position[3] = r.f32("vertex w")
		}
		r.read("vertex normal", &v.Normal)
		r.read("vertex uv", &v.UV)
	}

	md.Faces = make([]Face, faceCount)
	r.read("faces", md.Faces)
}

// parseAnimation reads all four segment headers first; the data part of each
// segment can only be sized once its header count is known.
func parseAnimation(r *reader, a *Animation) {
	a.Type = r.u32("animation type")
	a.Name = r.name("animation name")
	for i := range a.Segments {
		decodeSegmentHeader(r, &a.Segments[i])
	}
	for i := range a.Segments {
		decodeSegmentData(r, &a.Segments[i])
	}
}

func decodeSegmentHeader(r *reader, s *AnimationSegment) {
	s.Count = r.u32("segment count")
	s.Reserved0 = r.u32("segment reserved0")
	s.Reserved1 = r.u32("segment reserved1")
}

func decodeSegmentData(r *reader, s *AnimationSegment) {
	if s.Count == 0 || r.err != nil {
		return
	}
	if uint64(s.Count)*(2+6*4) > uint64(r.remaining()) {
		r.fail("segment data")
		return
	}
	s.Polygons = make([]uint16, s.Count)
	r.read("segment polygons", s.Polygons)
	s.Records = make([][6]float32, s.Count)
	r.read("segment records", s.Records)
}

func parseDamageModel(r *reader, d *DamageModel) {
	d.Name = r.name("damage model name")
	polyCount := r.count("damage polygon count", 2)
	d.Polygons = make([]uint16, polyCount)
	r.read("damage polygons", d.Polygons)
	d.Flags = r.u32("damage flags")
	parseMeshData(r, &d.Mesh, d.Flags)
	d.Reserved6 = r.u8("damage reserved6")
	r.read("damage reserved8", &d.Reserved8)
}

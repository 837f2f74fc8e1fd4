package formats

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// FlagWindTransform marks blocks whose vertices carry a fourth (w) coordinate.
const FlagWindTransform = 0x4

// BlockType is the role of a block inside a model.
type BlockType uint32

const (
	BlockVisibleObject   BlockType = 0
	BlockHelperObject    BlockType = 1
	BlockBitmapAlpha     BlockType = 2
	BlockBitmapGrass     BlockType = 3
	BlockParticleEmitter BlockType = 4
)

// String returns a human-readable block type name.
func (t BlockType) String() string {
	switch t {
	case BlockVisibleObject:
		return "VisibleObject"
	case BlockHelperObject:
		return "HelperObject"
	case BlockBitmapAlpha:
		return "BitmapAlpha"
	case BlockBitmapGrass:
		return "BitmapGrass"
	case BlockParticleEmitter:
		return "ParticleEmitter"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
}

// MaterialType selects render and blend behavior.
type MaterialType uint32

const (
	MaterialTexture                                     MaterialType = 0x00
	MaterialTextureWithGlareMap                         MaterialType = 0x01
	MaterialAlphaTextureNoGlare                         MaterialType = 0x02
	MaterialAlphaTextureWithOverlap                     MaterialType = 0x03
	MaterialTextureWithGlareMap2                        MaterialType = 0x04
	MaterialAlphaTextureDoubleSided                     MaterialType = 0x06
	MaterialDetalizationObjectGrass                     MaterialType = 0x08
	MaterialFire                                        MaterialType = 0x09
	MaterialOnly                                        MaterialType = 0x14
	MaterialTextureWithDetalizationMap                  MaterialType = 0x1A
	MaterialDetalizationObjectStone                     MaterialType = 0x1F
	MaterialTextureWithDetalizationMapWithoutModulation MaterialType = 0x20
	MaterialTiledTexture                                MaterialType = 0x22
	MaterialTextureWithGlareMapAndMask                  MaterialType = 0x32
	MaterialTextureWithMask                             MaterialType = 0x35
	MaterialFire2                                       MaterialType = 0x3D
)

var materialTypeNames = map[MaterialType]string{
	MaterialTexture:                                     "Texture",
	MaterialTextureWithGlareMap:                         "TextureWithGlareMap",
	MaterialAlphaTextureNoGlare:                         "AlphaTextureNoGlare",
	MaterialAlphaTextureWithOverlap:                     "AlphaTextureWithOverlap",
	MaterialTextureWithGlareMap2:                        "TextureWithGlareMap2",
	MaterialAlphaTextureDoubleSided:                     "AlphaTextureDoubleSided",
	MaterialDetalizationObjectGrass:                     "DetalizationObjectGrass",
	MaterialFire:                                        "Fire",
	MaterialOnly:                                        "MaterialOnly",
	MaterialTextureWithDetalizationMap:                  "TextureWithDetalizationMap",
	MaterialDetalizationObjectStone:                     "DetalizationObjectStone",
	MaterialTextureWithDetalizationMapWithoutModulation: "TextureWithDetalizationMapWithoutModulation",
	MaterialTiledTexture:                                "TiledTexture",
	MaterialTextureWithGlareMapAndMask:                  "TextureWithGlareMapAndMask",
	MaterialTextureWithMask:                             "TextureWithMask",
	MaterialFire2:                                       "Fire2",
}

// String returns a human-readable material type name.
func (t MaterialType) String() string {
	if name, ok := materialTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%X)", uint32(t))
}

// Known reports whether t is one of the documented material codes.
func (t MaterialType) Known() bool {
	_, ok := materialTypeNames[t]
	return ok
}

// IsFire reports whether the material is a fire/particle effect with no
// exportable geometry.
func (t MaterialType) IsFire() bool {
	return t == MaterialFire || t == MaterialFire2
}

// IsAlpha reports whether the material blends with alpha.
func (t MaterialType) IsAlpha() bool {
	switch t {
	case MaterialAlphaTextureNoGlare, MaterialAlphaTextureWithOverlap, MaterialAlphaTextureDoubleSided:
		return true
	}
	return false
}

// IsDoubleSided reports whether back faces are rendered.
func (t MaterialType) IsDoubleSided() bool {
	return t == MaterialAlphaTextureDoubleSided
}

// AdditionalParameter tags the meaning of Block.Additional.Coefficient.
type AdditionalParameter uint32

const (
	AdditionalNone                    AdditionalParameter = 0
	AdditionalDetalizationCoefficient AdditionalParameter = 1
)

// RotationType is the automatic rotation mode of a block.
type RotationType uint32

const (
	RotationNone       RotationType = 0
	RotationVertical   RotationType = 1
	RotationHorizontal RotationType = 2
	RotationOther      RotationType = 3
)

// String returns a human-readable rotation type name.
func (t RotationType) String() string {
	switch t {
	case RotationNone:
		return "None"
	case RotationVertical:
		return "Vertical"
	case RotationHorizontal:
		return "Horizontal"
	case RotationOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
}

// Vertex is a raw mesh vertex.
type Vertex struct {
	Position mgl32.Vec4 // w is 1 unless the block has FlagWindTransform
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Face is a triangle of indices into the block's vertex array.
type Face [3]uint16

// MeshData is the raw indexed geometry of a block or damage model.
type MeshData struct {
	Vertices []Vertex
	Faces    []Face
}

// Color is an RGBA float color.
type Color [4]float32

// Material holds the lighting colors of a block.
type Material struct {
	Ambient  Color
	Diffuse  Color
	Specular Color
	Emissive Color
	Power    float32
}

// TextureRef names a texture used by a block.
type TextureRef struct {
	Name   string
	Number uint32 // AIM2 only
}

// LOD mask bits.
const (
	LOD1 = 1 << iota
	LOD2
	LOD3
	LOD4
)

// BlockHeader is the fixed-size part preceding each block payload.
type BlockHeader struct {
	Type    BlockType
	Name    string
	Mask    TextureRef
	Spec    TextureRef
	Tex3    TextureRef
	Tex4    TextureRef
	LODMask uint32
	Size    uint32 // payload size in bytes

	Reserved2 [3]uint32
	Reserved3 uint32
	Reserved4 [10]float32
}

// HasLOD reports whether LOD level n (1..4) is present.
func (h *BlockHeader) HasLOD(n int) bool {
	if n < 1 || n > 4 {
		return false
	}
	return h.LODMask&(1<<(n-1)) != 0
}

// Additional holds the optional per-block parameter.
type Additional struct {
	Param       AdditionalParameter
	Coefficient float32
}

// Rotation describes automatic rotation of a block.
type Rotation struct {
	Type   RotationType
	Speed  float32
	Center mgl32.Vec3
}

// AnimationSegment is one of the four channels of an animation.
// Polygons and Records both have Count entries.
type AnimationSegment struct {
	Count     uint32
	Reserved0 uint32
	Reserved1 uint32
	Polygons  []uint16
	Records   [][6]float32
}

// Animation is a named set of four segments.
type Animation struct {
	Type     uint32
	Name     string
	Segments [4]AnimationSegment
}

// DamageModel is alternate geometry shown when the listed polygons are destroyed.
type DamageModel struct {
	Name      string
	Polygons  []uint16
	Flags     uint32
	Mesh      MeshData
	Reserved6 uint8
	Reserved8 [3]float32
}

// Block is one logical unit of a model.
type Block struct {
	Header BlockHeader

	Material          Material
	MaterialType      MaterialType
	AutoAnimation     uint32
	AnimationCycle    float32
	TriMeshMultiplier uint32
	Additional        Additional
	Rotation          Rotation
	Flags             uint32
	Mesh              MeshData

	Animations   []Animation
	DamageModels []DamageModel

	Reserved7  uint32
	Reserved9  float32
	Reserved10 uint32
	Reserved8  float32
	Reserved11 uint32
	Reserved12 uint32
}

// Name returns the block name.
func (b *Block) Name() string {
	return b.Header.Name
}

// Model is a decoded MOD container.
type Model struct {
	Header []byte // reserved header bytes, kept verbatim
	Blocks []Block
}

// GetTotalVertexCount returns the number of raw vertices across all blocks.
func (m *Model) GetTotalVertexCount() int {
	total := 0
	for i := range m.Blocks {
		total += len(m.Blocks[i].Mesh.Vertices)
	}
	return total
}

// GetTotalFaceCount returns the number of raw faces across all blocks.
func (m *Model) GetTotalFaceCount() int {
	total := 0
	for i := range m.Blocks {
		total += len(m.Blocks[i].Mesh.Faces)
	}
	return total
}

// GetBlockByName returns a block by name, or nil if not found.
func (m *Model) GetBlockByName(name string) *Block {
	for i := range m.Blocks {
		if m.Blocks[i].Header.Name == name {
			return &m.Blocks[i]
		}
	}
	return nil
}

// HasAnimation reports whether any block carries animations.
func (m *Model) HasAnimation() bool {
	for i := range m.Blocks {
		if len(m.Blocks[i].Animations) > 0 {
			return true
		}
	}
	return false
}

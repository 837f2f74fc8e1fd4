package mesh

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Document is the structured YAML form of a linked model.
type Document struct {
	Name   string          `yaml:"name"`
	Axis   string          `yaml:"axis"`
	Blocks []BlockDocument `yaml:"blocks"`
}

// BlockDocument describes one printable block.
type BlockDocument struct {
	Name     string           `yaml:"name"`
	Type     string           `yaml:"type"`
	Material MaterialDocument `yaml:"material"`
	Textures TextureDocument  `yaml:"textures"`
	LODMask  uint32           `yaml:"lod_mask"`
	Rotation RotationDocument `yaml:"rotation"`
	Bounds   BoundsDocument   `yaml:"bounds"`

	VertexCount int `yaml:"vertex_count"`
	FaceCount   int `yaml:"face_count"`

	Positions [][3]float32 `yaml:"positions"`
	Normals   [][3]float32 `yaml:"normals"`
	UVs       [][2]float32 `yaml:"uvs"`
	Faces     [][3]uint32  `yaml:"faces"`
}

// MaterialDocument holds material colors.
type MaterialDocument struct {
	Type     string     `yaml:"type"`
	Ambient  [4]float32 `yaml:"ambient,flow"`
	Diffuse  [4]float32 `yaml:"diffuse,flow"`
	Specular [4]float32 `yaml:"specular,flow"`
	Emissive [4]float32 `yaml:"emissive,flow"`
	Power    float32    `yaml:"power"`
}

// TextureDocument names the textures of a block.
type TextureDocument struct {
	Mask string `yaml:"mask,omitempty"`
	Spec string `yaml:"spec,omitempty"`
	Tex3 string `yaml:"tex3,omitempty"`
	Tex4 string `yaml:"tex4,omitempty"`
}

// RotationDocument describes automatic rotation.
type RotationDocument struct {
	Type   string     `yaml:"type"`
	Speed  float32    `yaml:"speed"`
	Center [3]float32 `yaml:"center,flow"`
}

// BoundsDocument is a bounding box.
type BoundsDocument struct {
	Min [3]float32 `yaml:"min,flow"`
	Max [3]float32 `yaml:"max,flow"`
}

// NewDocument builds the YAML document of the printable blocks of m.
func NewDocument(m *Model, opts Options) (*Document, error) {
	doc := &Document{
		Name:   m.Name,
		Axis:   opts.Axis.String(),
		Blocks: []BlockDocument{},
	}

	for _, b := range m.PrintableBlocks() {
		v, err := opts.view(b)
		if err != nil {
			return nil, err
		}

		bd := BlockDocument{
			Name: b.Name(),
			Type: b.Header.Type.String(),
			Material: MaterialDocument{
				Type:     b.MaterialType.String(),
				Ambient:  b.Material.Ambient,
				Diffuse:  b.Material.Diffuse,
				Specular: b.Material.Specular,
				Emissive: b.Material.Emissive,
				Power:    b.Material.Power,
			},
			Textures: TextureDocument{
				Mask: b.Header.Mask.Name,
				Spec: b.Header.Spec.Name,
				Tex3: b.Header.Tex3.Name,
				Tex4: b.Header.Tex4.Name,
			},
			LODMask: b.Header.LODMask,
			Rotation: RotationDocument{
				Type:   b.Rotation.Type.String(),
				Speed:  b.Rotation.Speed,
				Center: b.Rotation.Center,
			},
			Bounds: BoundsDocument{
				Min: v.bounds.Min,
				Max: v.bounds.Max,
			},
			VertexCount: len(v.positions),
			FaceCount:   len(v.faces),
			Positions:   make([][3]float32, len(v.positions)),
			Normals:     make([][3]float32, len(v.normals)),
			UVs:         make([][2]float32, len(v.uvs)),
			Faces:       make([][3]uint32, len(v.faces)),
		}
		for i, p := range v.positions {
			bd.Positions[i] = p
		}
		for i, n := range v.normals {
			bd.Normals[i] = n
		}
		for i, uv := range v.uvs {
			bd.UVs[i] = uv
		}
		for i, f := range v.faces {
			bd.Faces[i] = [3]uint32{f[0].Vertex, f[1].Vertex, f[2].Vertex}
		}

		doc.Blocks = append(doc.Blocks, bd)
	}
	return doc, nil
}

// WriteYAML writes the YAML document of m.
func WriteYAML(w io.Writer, m *Model, opts Options) error {
	doc, err := NewDocument(m, opts)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

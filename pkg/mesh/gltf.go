package mesh

import (
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// BuildGLTF creates a glTF document with one mesh, node and material per
// printable block.
func BuildGLTF(m *Model, opts Options) (*gltf.Document, error) {
	doc := gltf.NewDocument()

	for _, b := range m.PrintableBlocks() {
		v, err := opts.view(b)
		if err != nil {
			return nil, err
		}

		positions := make([][3]float32, len(v.positions))
		for i, p := range v.positions {
			positions[i] = p
		}
		normals := make([][3]float32, len(v.normals))
		for i, n := range v.normals {
			if n.Len() > 0 {
				n = n.Normalize()
			}
			normals[i] = n
		}
		uvs := make([][2]float32, len(v.uvs))
		for i, uv := range v.uvs {
			uvs[i] = uv
		}
		// Linked pools share one slot per corner, so the vertex index
		// addresses every attribute.
		indices := make([]uint32, 0, len(v.faces)*3)
		for _, f := range v.faces {
			indices = append(indices, f[0].Vertex, f[1].Vertex, f[2].Vertex)
		}

		attributes := map[string]uint32{
			"POSITION":   modeler.WritePosition(doc, positions),
			"NORMAL":     modeler.WriteNormal(doc, normals),
			"TEXCOORD_0": modeler.WriteTextureCoord(doc, uvs),
		}
		indicesAccessor := modeler.WriteIndices(doc, indices)

		color := new([4]float32)
		*color = [4]float32(b.Material.Diffuse)
		material := &gltf.Material{
			Name:        b.Name(),
			DoubleSided: b.MaterialType.IsDoubleSided(),
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: color,
			},
		}
		if b.MaterialType.IsAlpha() {
			material.AlphaMode = gltf.AlphaBlend
		}
		doc.Materials = append(doc.Materials, material)
		materialIndex := uint32(len(doc.Materials) - 1)

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: b.Name(),
			Primitives: []*gltf.Primitive{{
				Indices:    &indicesAccessor,
				Attributes: attributes,
				Material:   gltf.Index(materialIndex),
			}},
		})

		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: b.Name(),
			Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
		})
	}
	return doc, nil
}

// WriteGLB writes m as binary glTF.
func WriteGLB(w io.Writer, m *Model, opts Options) error {
	doc, err := BuildGLTF(m, opts)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}

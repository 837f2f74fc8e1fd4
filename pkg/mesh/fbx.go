package mesh

import (
	"os"

	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"
)

const (
	fbxVersion      = 7400
	fbxCreator      = "aimtools FBX exporter"
	fbxCreationTime = "1970-01-01 10:00:00:000"
)

var fbxFileID = []byte{
	0x28, 0xb3, 0x2a, 0xeb, 0xb6, 0x24, 0xcc, 0xc2,
	0xbf, 0xc8, 0xb0, 0x2a, 0xa9, 0x2b, 0xfc, 0xf1}

type fbxBuilder struct {
	f      *fbx.FBX
	lastID int64

	objects     *fbx.Node
	connections *fbx.Node
	counts      map[string]int32
}

func newFBXBuilder(opts Options) *fbxBuilder {
	b := &fbxBuilder{
		f:           fbx.NewFBX(fbxVersion),
		lastID:      1000000,
		objects:     bfbx73.Objects(),
		connections: bfbx73.Connections(),
		counts:      make(map[string]int32),
	}
	b.createHeaders(opts)
	return b
}

func (b *fbxBuilder) nextID() int64 {
	b.lastID++
	return b.lastID
}

func (b *fbxBuilder) root() *fbx.Node {
	return &b.f.Root
}

func (b *fbxBuilder) createHeaders(opts Options) {
	up := opts.Axis.UpAxis()
	front := int32(2)
	if up == 2 {
		front = 1
	}

	b.root().AddNodes(
		bfbx73.FBXHeaderExtension().AddNodes(
			bfbx73.FBXHeaderVersion(1003),
			bfbx73.FBXVersion(fbxVersion),
			bfbx73.EncryptionType(0),
			bfbx73.Creator(fbxCreator),
		),
		bfbx73.FileId(fbxFileID),
		bfbx73.CreationTime(fbxCreationTime),
		bfbx73.Creator(fbxCreator),
		bfbx73.GlobalSettings().AddNodes(
			bfbx73.Version(1000),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("UpAxis", "int", "Integer", "", up),
				bfbx73.P("UpAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("FrontAxis", "int", "Integer", "", front),
				bfbx73.P("FrontAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("CoordAxis", "int", "Integer", "", int32(0)),
				bfbx73.P("CoordAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("UnitScaleFactor", "double", "Number", "", float64(1)),
			),
		),
		bfbx73.Documents().AddNodes(
			bfbx73.Count(1),
			bfbx73.Document(b.nextID(), "Scene", "Scene").AddNodes(
				bfbx73.RootNode(0),
			),
		),
		bfbx73.References(),
		bfbx73.Definitions().AddNodes(
			bfbx73.Version(100),
			bfbx73.Count(0),
			bfbx73.ObjectType("GlobalSettings").AddNodes(
				bfbx73.Count(1),
			),
		),
		b.objects,
		b.connections,
		bfbx73.Takes().AddNodes(
			bfbx73.Current(""),
		),
	)
}

func (b *fbxBuilder) addObject(n *fbx.Node) {
	b.objects.AddNode(n)
	b.counts[n.Name]++
}

// countDefinitions fills the object type counts, in a fixed order.
func (b *fbxBuilder) countDefinitions() {
	definitions := b.root().GetNode("Definitions")
	total := int32(1)
	for _, name := range []string{"Model", "Geometry", "Material"} {
		count := b.counts[name]
		if count == 0 {
			continue
		}
		total += count
		objectType := bfbx73.ObjectType(name).AddNodes(bfbx73.Count(0))
		objectType.GetNode("Count").Properties[0] = count
		definitions.AddNode(objectType)
	}
	definitions.GetNode("Count").Properties[0] = total
}

func (b *fbxBuilder) addBlock(blk *Block, v *view) {
	vertices := make([]float64, 0, len(v.positions)*3)
	for _, p := range v.positions {
		vertices = append(vertices, float64(p[0]), float64(p[1]), float64(p[2]))
	}
	uv := make([]float64, 0, len(v.uvs)*2)
	for _, t := range v.uvs {
		uv = append(uv, float64(t[0]), float64(1-t[1]))
	}

	indexes := make([]int32, 0, len(v.faces)*3)
	uvIndexes := make([]int32, 0, len(v.faces)*3)
	normals := make([]float64, 0, len(v.faces)*9)
	for _, f := range v.faces {
		for i, c := range f {
			idx := int32(c.Vertex)
			if i == 2 {
				// end of polygon
				idx = -idx - 1
			}
			indexes = append(indexes, idx)
			uvIndexes = append(uvIndexes, int32(c.UV))
			n := v.normals[c.Normal]
			normals = append(normals, float64(n[0]), float64(n[1]), float64(n[2]))
		}
	}

	geometryID := b.nextID()
	geometry := bfbx73.Geometry(geometryID, blk.Name()+"\x00\x01Geometry", "Mesh").AddNodes(
		bfbx73.GeometryVersion(124),
		bfbx73.Vertices(vertices),
		bfbx73.PolygonVertexIndex(indexes),
		bfbx73.LayerElementNormal(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByPolygonVertex"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.Normals(normals),
		),
		bfbx73.LayerElementUV(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByPolygonVertex"),
			bfbx73.ReferenceInformationType("IndexToDirect"),
			bfbx73.UV(uv),
			bfbx73.UVIndex(uvIndexes),
		),
		bfbx73.LayerElementMaterial(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("AllSame"),
			bfbx73.ReferenceInformationType("IndexToDirect"),
			bfbx73.Materials([]int32{0}),
		),
		bfbx73.Layer(0).AddNodes(
			bfbx73.Version(100),
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementNormal"),
				bfbx73.TypedIndex(0),
			),
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementUV"),
				bfbx73.TypedIndex(0),
			),
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementMaterial"),
				bfbx73.TypedIndex(0),
			),
		),
	)

	modelID := b.nextID()
	model := bfbx73.Model(modelID, blk.Name()+"\x00\x01Model", "Mesh").AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)

	mat := &blk.Material
	materialID := b.nextID()
	material := bfbx73.Material(materialID, blk.Name()+"\x00\x01Material", "").AddNodes(
		bfbx73.Version(102),
		bfbx73.ShadingModel("phong"),
		bfbx73.MultiLayer(0),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("AmbientColor", "Color", "", "A", float64(mat.Ambient[0]), float64(mat.Ambient[1]), float64(mat.Ambient[2])),
			bfbx73.P("DiffuseColor", "Color", "", "A", float64(mat.Diffuse[0]), float64(mat.Diffuse[1]), float64(mat.Diffuse[2])),
			bfbx73.P("SpecularColor", "Color", "", "A", float64(mat.Specular[0]), float64(mat.Specular[1]), float64(mat.Specular[2])),
			bfbx73.P("EmissiveColor", "Color", "", "A", float64(mat.Emissive[0]), float64(mat.Emissive[1]), float64(mat.Emissive[2])),
			bfbx73.P("Shininess", "double", "Number", "", float64(mat.Power)),
			bfbx73.P("Opacity", "double", "Number", "", float64(mat.Diffuse[3])),
		),
	)

	b.addObject(model)
	b.addObject(geometry)
	b.addObject(material)
	b.connections.AddNodes(
		bfbx73.C("OO", modelID, 0),
		bfbx73.C("OO", geometryID, modelID),
		bfbx73.C("OO", materialID, modelID),
	)
}

// BuildFBX creates an FBX 7.4 scene with a model, geometry and material per
// printable block.
func BuildFBX(m *Model, opts Options) (*fbx.FBX, error) {
	b := newFBXBuilder(opts)
	for _, blk := range m.PrintableBlocks() {
		v, err := opts.view(blk)
		if err != nil {
			return nil, err
		}
		b.addBlock(blk, v)
	}
	b.countDefinitions()
	return b.f, nil
}

// WriteFBX writes m as binary FBX. The encoder patches node offsets in place,
// so it needs a seekable file.
func WriteFBX(out *os.File, m *Model, opts Options) error {
	f, err := BuildFBX(m, opts)
	if err != nil {
		return err
	}
	return fbx.Write(out, f)
}

package formats

import (
	"bytes"
	"encoding/binary"
)

// fixture builds little-endian test data.
type fixture struct {
	bytes.Buffer
}

func (f *fixture) put(values ...any) *fixture {
	for _, v := range values {
		if err := binary.Write(&f.Buffer, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
	return f
}

func (f *fixture) name(s string) *fixture {
	var buf [NameSize]byte
	copy(buf[:], s)
	f.Write(buf[:])
	return f
}

type testBlock struct {
	name     string
	matType  MaterialType
	flags    uint32
	mesh     MeshData
	textures [4]TextureRef
	anims    []Animation
	damage   []DamageModel
}

func writeMesh(f *fixture, md MeshData, flags uint32) {
	f.put(uint32(len(md.Vertices)), uint32(len(md.Faces)))
	for _, v := range md.Vertices {
		f.put(v.Position[0], v.Position[1], v.Position[2])
		if flags&FlagWindTransform != 0 {
			f.put(v.Position[3])
		}
		f.put(v.Normal, v.UV)
	}
	for _, face := range md.Faces {
		f.put(face)
	}
}

func makeBlockPayload(b testBlock) []byte {
	f := &fixture{}
	f.put(Material{Diffuse: Color{1, 1, 1, 1}, Power: 2})
	f.put(uint32(b.matType), uint32(0), float32(0), uint32(1))
	f.put(uint32(AdditionalNone), float32(0))
	f.put(uint32(RotationNone), float32(0), [3]float32{})
	f.put(b.flags)
	writeMesh(f, b.mesh, b.flags)

	f.put(uint32(len(b.anims)))
	for _, a := range b.anims {
		f.put(a.Type).name(a.Name)
		for _, s := range a.Segments {
			f.put(s.Count, s.Reserved0, s.Reserved1)
		}
		for _, s := range a.Segments {
			f.put(s.Polygons, s.Records)
		}
	}

	f.put(uint32(len(b.damage)))
	for _, d := range b.damage {
		f.name(d.Name)
		f.put(uint32(len(d.Polygons)), d.Polygons, d.Flags)
		writeMesh(f, d.Mesh, d.Flags)
		f.put(d.Reserved6, d.Reserved8)
	}

	f.put(uint32(7), float32(9), uint32(10), float32(8), uint32(11), uint32(12))
	return f.Bytes()
}

func makeBlock(variant GameVariant, b testBlock) []byte {
	payload := makeBlockPayload(b)

	f := &fixture{}
	f.put(uint32(BlockVisibleObject)).name(b.name)
	for _, tex := range b.textures {
		f.name(tex.Name)
		if variant == GameAim2 {
			f.put(tex.Number)
		}
	}
	f.put(uint32(LOD1), [3]uint32{}, uint32(0), uint32(len(payload)), [10]float32{})
	f.Write(payload)
	return f.Bytes()
}

func makeMOD(variant GameVariant, blocks ...testBlock) []byte {
	f := &fixture{}
	f.put(uint32(len(blocks)))
	f.Write(make([]byte, modHeaderSize))
	for _, b := range blocks {
		f.Write(makeBlock(variant, b))
	}
	return f.Bytes()
}

func triangleMesh() MeshData {
	return MeshData{
		Vertices: []Vertex{
			{Position: [4]float32{0, 0, 0, 1}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{0, 0}},
			{Position: [4]float32{1, 0, 0, 1}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{1, 0}},
			{Position: [4]float32{0, 1, 0, 1}, Normal: [3]float32{0, 0, 1}, UV: [2]float32{0, 1}},
		},
		Faces: []Face{{0, 1, 2}},
	}
}

type testTail struct {
	goods  []MapGood
	music  []string
	sounds []MapSound
	orgs   []Organization
	bases  []OrganizationBase
	prices []Price
}

// makeMMO writes segments and mech groups, then the map tables when tail is set.
func makeMMO(variant GameVariant, segments []Segment, groups []MechGroup, tail *testTail) []byte {
	f := &fixture{}
	f.put(uint32(len(segments)))
	for _, seg := range segments {
		switch s := seg.(type) {
		case *PlacementSegment:
			f.put(uint32(s.Kind), uint32(len(s.Objects)*MapObjectSize), uint32(len(s.Objects)))
			for _, o := range s.Objects {
				f.put(o.Rotation, o.Position).name(o.TypeName).name(o.Name)
			}
		case *RawSegment:
			f.put(uint32(s.Kind), uint32(len(s.Data)), s.ObjectCount)
			f.Write(s.Data)
		}
	}

	f.put(uint32(len(groups)), uint32(0))
	for _, g := range groups {
		f.name(g.Name).name(g.Org)
		f.put(g.Kind, uint32(len(g.Mechanoids)), g.Reserved)
		for _, m := range g.Mechanoids {
			f.name(m)
		}
	}

	if tail == nil {
		return f.Bytes()
	}

	f.put(uint32(len(tail.goods)))
	for _, g := range tail.goods {
		f.name(g.Name).put(g.Price, g.Amount, g.Reserved)
	}
	f.put(uint32(0))
	f.put(uint32(len(tail.music)))
	for _, m := range tail.music {
		f.name(m)
	}
	f.put(uint32(len(tail.sounds)))
	for _, s := range tail.sounds {
		f.name(s.Name).put(s.Position, s.Volume, s.Flags)
	}
	if variant == GameAim2 {
		f.put(uint32(len(tail.orgs)))
		for _, o := range tail.orgs {
			f.name(o.Name).put(o.Count, o.Reserved)
		}
		f.put(uint32(len(tail.bases)))
		for _, b := range tail.bases {
			f.name(b.Base).name(b.Org).put(b.Reserved)
		}
		f.put(uint32(len(tail.prices)))
		for _, p := range tail.prices {
			f.name(p.Name).put(p.Price, p.Reserved)
		}
	}
	return f.Bytes()
}

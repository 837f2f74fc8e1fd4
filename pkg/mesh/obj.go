package mesh

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/aimtools/pkg/formats"
)

// Offsets are the number of v, vn and vt records already written to an OBJ
// file, so several models can share one file.
type Offsets struct {
	Vertex int
	Normal int
	UV     int
}

// WriteOBJ writes the printable blocks of m as Wavefront OBJ objects, numbering
// indices after off. It returns off advanced by the records written.
func WriteOBJ(w io.Writer, m *Model, off Offsets, opts Options) (Offsets, error) {
	bw := bufio.NewWriter(w)

	if opts.MaterialLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n\n", opts.MaterialLib)
	}

	for _, b := range m.PrintableBlocks() {
		v, err := opts.view(b)
		if err != nil {
			return off, err
		}

		fmt.Fprintf(bw, "o %s\n", b.Name())
		fmt.Fprintf(bw, "usemtl %s\n", b.Name())
		for _, p := range v.positions {
			fmt.Fprintf(bw, "v %s %s %s\n", ftoa(p[0]), ftoa(p[1]), ftoa(p[2]))
		}
		for _, n := range v.normals {
			fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(n[0]), ftoa(n[1]), ftoa(n[2]))
		}
		for _, uv := range v.uvs {
			fmt.Fprintf(bw, "vt %s %s\n", ftoa(uv[0]), ftoa(1-uv[1]))
		}
		fmt.Fprintln(bw, "s 1")
		for _, f := range v.faces {
			fmt.Fprint(bw, "f")
			for _, c := range f {
				fmt.Fprintf(bw, " %d/%d/%d",
					off.Vertex+int(c.Vertex)+1,
					off.UV+int(c.UV)+1,
					off.Normal+int(c.Normal)+1)
			}
			fmt.Fprintln(bw)
		}
		fmt.Fprintln(bw)

		off.Vertex += len(v.positions)
		off.Normal += len(v.normals)
		off.UV += len(v.uvs)
	}

	return off, bw.Flush()
}

// WriteMTL writes one material per printable block, named after the block.
func WriteMTL(w io.Writer, m *Model, opts Options) error {
	bw := bufio.NewWriter(w)
	suffix := opts.textureSuffix()

	for _, b := range m.PrintableBlocks() {
		mat := &b.Material
		fmt.Fprintf(bw, "newmtl %s\n", b.Name())
		writeColor(bw, "Ka", mat.Ambient)
		writeColor(bw, "Kd", mat.Diffuse)
		writeColor(bw, "Ks", mat.Specular)
		writeColor(bw, "Ke", mat.Emissive)
		fmt.Fprintf(bw, "d %s\n", ftoa(mat.Diffuse[3]))
		fmt.Fprintf(bw, "Ns %s\n", ftoa(mat.Power))
		fmt.Fprintln(bw, "illum 2")
		if tex := b.Header.Mask.Name; tex != "" {
			fmt.Fprintf(bw, "map_Ka %s%s\n", tex, suffix)
			fmt.Fprintf(bw, "map_Kd %s%s\n", tex, suffix)
		}
		if tex := b.Header.Spec.Name; tex != "" {
			fmt.Fprintf(bw, "map_Ks %s%s\n", tex, suffix)
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func writeColor(w io.Writer, key string, c formats.Color) {
	fmt.Fprintf(w, "%s %s %s %s\n", key, ftoa(c[0]), ftoa(c[1]), ftoa(c[2]))
}

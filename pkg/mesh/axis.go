package mesh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownAxisSystem is returned for an unrecognized axis system name.
var ErrUnknownAxisSystem = errors.New("unknown axis system")

// AxisSystem is the target coordinate convention of an export.
type AxisSystem int

const (
	MayaYUp AxisSystem = iota
	MayaZUp
	DirectX
	Windows3DViewer
)

// Aliases.
const (
	MotionBuilder = MayaYUp
	OpenGL        = MayaYUp
	Max           = MayaZUp
	Blender       = MayaZUp
	Lightwave     = DirectX
)

var axisSystemNames = map[string]AxisSystem{
	"mayayup":         MayaYUp,
	"motionbuilder":   MotionBuilder,
	"opengl":          OpenGL,
	"mayazup":         MayaZUp,
	"max":             Max,
	"3dsmax":          Max,
	"blender":         Blender,
	"directx":         DirectX,
	"lightwave":       Lightwave,
	"windows3dviewer": Windows3DViewer,
}

// ParseAxisSystem parses a name such as "MayaYUp", "blender" or "directx".
// Case, spaces, dashes and underscores are ignored; empty selects MayaYUp.
func ParseAxisSystem(s string) (AxisSystem, error) {
	key := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s))
	if key == "" {
		return MayaYUp, nil
	}
	if a, ok := axisSystemNames[key]; ok {
		return a, nil
	}
	return MayaYUp, fmt.Errorf("%w: %q", ErrUnknownAxisSystem, s)
}

// String returns the canonical axis system name.
func (a AxisSystem) String() string {
	switch a {
	case MayaYUp:
		return "MayaYUp"
	case MayaZUp:
		return "MayaZUp"
	case DirectX:
		return "DirectX"
	case Windows3DViewer:
		return "Windows3DViewer"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// Matrix returns the conversion from source coordinates.
func (a AxisSystem) Matrix() mgl32.Mat3 {
	switch a {
	case MayaZUp:
		// (x, y, z) -> (x, -z, y)
		return mgl32.Mat3FromRows(
			mgl32.Vec3{1, 0, 0},
			mgl32.Vec3{0, 0, -1},
			mgl32.Vec3{0, 1, 0},
		)
	case DirectX:
		// (x, y, z) -> (x, y, -z)
		return mgl32.Mat3FromRows(
			mgl32.Vec3{1, 0, 0},
			mgl32.Vec3{0, 1, 0},
			mgl32.Vec3{0, 0, -1},
		)
	case Windows3DViewer:
		// (x, y, z) -> (-x, z, y)
		return mgl32.Mat3FromRows(
			mgl32.Vec3{-1, 0, 0},
			mgl32.Vec3{0, 0, 1},
			mgl32.Vec3{0, 1, 0},
		)
	default:
		return mgl32.Ident3()
	}
}

// ReversesWinding reports whether the conversion mirrors geometry, in which
// case triangle winding must be flipped to keep faces front-facing.
func (a AxisSystem) ReversesWinding() bool {
	return a.Matrix().Det() < 0
}

// UpAxis returns the index (0=x, 1=y, 2=z) of the up axis after conversion.
func (a AxisSystem) UpAxis() int32 {
	switch a {
	case MayaZUp, Windows3DViewer:
		return 2
	default:
		return 1
	}
}

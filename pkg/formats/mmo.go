// MMO (map objects) parser: object placements, mechanoid groups and map tables.
package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// MMO format errors.
var (
	ErrTruncatedMMOData = errors.New("truncated MMO data")
)

// ObjectCategory is the category tag of an MMO segment.
type ObjectCategory uint32

const (
	CategoryTexture      ObjectCategory = 1
	CategoryModel        ObjectCategory = 2
	CategorySurface      ObjectCategory = 3
	CategoryStone        ObjectCategory = 4
	CategoryTree         ObjectCategory = 5
	CategoryGlider       ObjectCategory = 6
	CategoryHelper       ObjectCategory = 7
	CategoryRoad         ObjectCategory = 8
	CategoryWeapon       ObjectCategory = 9
	CategoryConfig       ObjectCategory = 10
	CategoryShell        ObjectCategory = 11
	CategoryImage        ObjectCategory = 12
	CategoryExplosion    ObjectCategory = 13
	CategoryEquipment    ObjectCategory = 14
	CategoryOrganization ObjectCategory = 15
	CategoryBuilding     ObjectCategory = 16
	CategoryLamp         ObjectCategory = 17
	CategoryCovering     ObjectCategory = 18
	CategorySound        ObjectCategory = 19
	CategoryMusic        ObjectCategory = 20
	CategoryGoods        ObjectCategory = 21
	CategoryAnomaly      ObjectCategory = 22
	CategoryTower        ObjectCategory = 23
	CategoryBoundary     ObjectCategory = 24
	CategorySoundZone    ObjectCategory = 25
)

var categoryNames = [...]string{
	CategoryTexture:      "TEXTURE",
	CategoryModel:        "MODEL",
	CategorySurface:      "SURFACE",
	CategoryStone:        "STONE",
	CategoryTree:         "TREE",
	CategoryGlider:       "GLIDER",
	CategoryHelper:       "HELPER",
	CategoryRoad:         "ROAD",
	CategoryWeapon:       "WEAPON",
	CategoryConfig:       "CONFIG",
	CategoryShell:        "SHELL",
	CategoryImage:        "IMAGE",
	CategoryExplosion:    "EXPLOSION",
	CategoryEquipment:    "EQUIPMENT",
	CategoryOrganization: "ORGANIZATION",
	CategoryBuilding:     "BUILDING",
	CategoryLamp:         "LAMP",
	CategoryCovering:     "COVERING",
	CategorySound:        "SOUND",
	CategoryMusic:        "MUSIC",
	CategoryGoods:        "GOODS",
	CategoryAnomaly:      "ANOMALY",
	CategoryTower:        "TOWER",
	CategoryBoundary:     "BOUNDARY",
	CategorySoundZone:    "SOUND_ZONE",
}

// String returns the category name.
func (c ObjectCategory) String() string {
	if int(c) < len(categoryNames) && categoryNames[c] != "" {
		return categoryNames[c]
	}
	return fmt.Sprintf("Unknown(%d)", uint32(c))
}

// IsPlacement reports whether segments of this category hold positioned map objects.
func (c ObjectCategory) IsPlacement() bool {
	switch c {
	case CategoryBuilding, CategoryTower, CategoryTree, CategoryStone, CategoryLamp, CategoryBoundary:
		return true
	}
	return false
}

// MapObjectSize is the on-disk size of a MapObject.
const MapObjectSize = 3*16 + 16 + 2*NameSize

// MapObject is a positioned instance of a building or object type.
type MapObject struct {
	Rotation [3]mgl32.Vec4 // rows; the 3x3 orientation is the xyz part, Rotation[2][2] doubles as scale
	Position mgl32.Vec4
	TypeName string // building/object type text id
	Name     string // instance text id
}

// Segment is a typed sub-section of the objects table.
// It is either a *PlacementSegment or a *RawSegment.
type Segment interface {
	Category() ObjectCategory
	Len() int
}

// PlacementSegment holds decoded map objects.
type PlacementSegment struct {
	Kind    ObjectCategory
	Objects []MapObject
}

// Category returns the segment category.
func (s *PlacementSegment) Category() ObjectCategory { return s.Kind }

// Len returns the number of objects.
func (s *PlacementSegment) Len() int { return len(s.Objects) }

// RawSegment keeps the payload of categories that are not decoded.
type RawSegment struct {
	Kind        ObjectCategory
	ObjectCount uint32
	Data        []byte
}

// Category returns the segment category.
func (s *RawSegment) Category() ObjectCategory { return s.Kind }

// Len returns the declared object count.
func (s *RawSegment) Len() int { return int(s.ObjectCount) }

// MechGroup is a group of mechanoids spawned on the map.
type MechGroup struct {
	Name       string
	Org        string
	Kind       uint32
	Reserved   float32
	Mechanoids []string
}

// MapGood is a tradeable good offered on the map.
type MapGood struct {
	Name     string
	Price    float32
	Amount   uint32
	Reserved float32
}

// MapSound is a positioned ambient sound.
type MapSound struct {
	Name     string
	Position mgl32.Vec4
	Volume   float32
	Flags    uint32
}

// Organization is an AIM2 organization entry.
type Organization struct {
	Name     string
	Count    uint32
	Reserved float32
}

// OrganizationBase links a base to its owning organization (AIM2).
type OrganizationBase struct {
	Base     string
	Org      string
	Reserved uint32
}

// Price is an AIM2 price table entry.
type Price struct {
	Name     string
	Price    float32
	Reserved uint32
}

// MMO represents a parsed map objects file.
type MMO struct {
	Segments          []Segment
	MechGroups        []MechGroup
	MechGroupReserved uint32

	// Custom maps end after the mech groups.
	Custom bool

	Goods         []MapGood
	Reserved0     uint32
	Music         []string
	Sounds        []MapSound
	Organizations []Organization
	Bases         []OrganizationBase
	Prices        []Price
}

// PlacementSegments returns the decoded placement segments in file order.
func (m *MMO) PlacementSegments() []*PlacementSegment {
	var out []*PlacementSegment
	for _, seg := range m.Segments {
		if ps, ok := seg.(*PlacementSegment); ok {
			out = append(out, ps)
		}
	}
	return out
}

// CountByCategory returns the number of objects per category.
func (m *MMO) CountByCategory() map[ObjectCategory]int {
	counts := make(map[ObjectCategory]int)
	for _, seg := range m.Segments {
		counts[seg.Category()] += seg.Len()
	}
	return counts
}

// ParseMMO parses a map objects file. Tables are read strictly in order; the
// file may end right after the mech groups (custom maps).
func ParseMMO(data []byte, variant GameVariant) (*MMO, error) {
	if len(data) < 4 {
		return nil, ErrTruncatedMMOData
	}

	r := newReader(data)
	mmo := &MMO{}

	if err := parseSegments(r, mmo); err != nil {
		return nil, err
	}
	parseMechGroups(r, mmo)
	if r.err != nil {
		return nil, r.err
	}
	if r.eof() {
		mmo.Custom = true
		return mmo, nil
	}

	parseGoods(r, mmo)
	mmo.Reserved0 = r.u32("reserved after goods")
	parseMusic(r, mmo)
	parseSounds(r, mmo)
	if variant == GameAim2 {
		parseOrganizations(r, mmo)
	}

	r.expectEOF("trailing data after map tables")
	if r.err != nil {
		return nil, r.err
	}
	return mmo, nil
}

// ParseMMOFile parses an MMO file from disk.
func ParseMMOFile(path string, variant GameVariant) (*MMO, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MMO file: %w", err)
	}
	return ParseMMO(data, variant)
}

func parseSegments(r *reader, mmo *MMO) error {
	count := r.count("segment count", 12)
	mmo.Segments = make([]Segment, 0, count)

	for i := 0; i < count; i++ {
		category := ObjectCategory(r.u32("segment category"))
		length := r.u32("segment length")
		objects := r.u32("segment object count")
		payload := r.sub(fmt.Sprintf("segment %d (%s) payload", i, category), int(length))
		if r.err != nil {
			return r.err
		}

		if !category.IsPlacement() {
			mmo.Segments = append(mmo.Segments, &RawSegment{
				Kind:        category,
				ObjectCount: objects,
				Data:        payload.bytes("raw segment", int(length)),
			})
			continue
		}

		seg, err := parsePlacementSegment(payload, category, objects)
		if err != nil {
			return fmt.Errorf("parsing segment %d: %w", i, err)
		}
		mmo.Segments = append(mmo.Segments, seg)
	}
	return nil
}

func parsePlacementSegment(r *reader, category ObjectCategory, count uint32) (*PlacementSegment, error) {
	if uint64(count)*MapObjectSize != uint64(r.remaining()) {
		r.fail(fmt.Sprintf("%s segment: %d objects", category, count))
		return nil, r.err
	}

	seg := &PlacementSegment{
		Kind:    category,
		Objects: make([]MapObject, count),
	}
	for i := range seg.Objects {
		o := &seg.Objects[i]
		r.read("object rotation", &o.Rotation)
		r.read("object position", &o.Position)
		o.TypeName = r.name("object type name")
		o.Name = r.name("object name")
	}
	r.expectEOF(category.String() + " segment")
	return seg, r.err
}

func parseMechGroups(r *reader, mmo *MMO) {
	count := r.count("mech group count", 2*NameSize+12)
	mmo.MechGroupReserved = r.u32("mech group reserved")
	if r.err != nil {
		return
	}

	mmo.MechGroups = make([]MechGroup, count)
	for i := range mmo.MechGroups {
		g := &mmo.MechGroups[i]
		g.Name = r.name("mech group name")
		g.Org = r.name("mech group org")
		g.Kind = r.u32("mech group kind")
		n := r.u32("mechanoid count")
		g.Reserved = r.f32("mech group reserved")
		if r.err != nil {
			return
		}
		if uint64(n)*NameSize > uint64(r.remaining()) {
			r.fail("mechanoid names")
			return
		}
		g.Mechanoids = make([]string, n)
		for j := range g.Mechanoids {
			g.Mechanoids[j] = r.name("mechanoid name")
		}
	}
}

func parseGoods(r *reader, mmo *MMO) {
	count := r.count("goods count", NameSize+12)
	mmo.Goods = make([]MapGood, count)
	for i := range mmo.Goods {
		g := &mmo.Goods[i]
		g.Name = r.name("good name")
		g.Price = r.f32("good price")
		g.Amount = r.u32("good amount")
		g.Reserved = r.f32("good reserved")
	}
}

func parseMusic(r *reader, mmo *MMO) {
	count := r.count("music count", NameSize)
	mmo.Music = make([]string, count)
	for i := range mmo.Music {
		mmo.Music[i] = r.name("music track")
	}
}

func parseSounds(r *reader, mmo *MMO) {
	count := r.count("sound count", NameSize+24)
	mmo.Sounds = make([]MapSound, count)
	for i := range mmo.Sounds {
		s := &mmo.Sounds[i]
		s.Name = r.name("sound name")
		r.read("sound position", &s.Position)
		s.Volume = r.f32("sound volume")
		s.Flags = r.u32("sound flags")
	}
}

func parseOrganizations(r *reader, mmo *MMO) {
	count := r.count("organization count", NameSize+8)
	mmo.Organizations = make([]Organization, count)
	for i := range mmo.Organizations {
		o := &mmo.Organizations[i]
		o.Name = r.name("organization name")
		o.Count = r.u32("organization count")
		o.Reserved = r.f32("organization reserved")
	}

	count = r.count("organization base count", 2*NameSize+4)
	mmo.Bases = make([]OrganizationBase, count)
	for i := range mmo.Bases {
		b := &mmo.Bases[i]
		b.Base = r.name("base name")
		b.Org = r.name("base organization")
		b.Reserved = r.u32("base reserved")
	}

	count = r.count("price count", NameSize+8)
	mmo.Prices = make([]Price, count)
	for i := range mmo.Prices {
		p := &mmo.Prices[i]
		p.Name = r.name("price name")
		p.Price = r.f32("price value")
		p.Reserved = r.u32("price reserved")
	}
}

package formats

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testObject(typeName, name string, x, y, z float32) MapObject {
	return MapObject{
		Rotation: [3]mgl32.Vec4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}},
		Position: mgl32.Vec4{x, y, z, 0},
		TypeName: typeName,
		Name:     name,
	}
}

func TestParseMMO_CustomMap(t *testing.T) {
	segments := []Segment{
		&PlacementSegment{Kind: CategoryBuilding, Objects: []MapObject{
			testObject("hangar", "hangar_1", 10, 20, 30),
			testObject("hangar", "hangar_2", -5, 0, 1),
		}},
		&RawSegment{Kind: CategoryRoad, ObjectCount: 3, Data: []byte{1, 2, 3, 4}},
		&PlacementSegment{Kind: CategoryTree, Objects: []MapObject{testObject("pine", "pine_1", 0, 0, 0)}},
	}
	groups := []MechGroup{{Name: "patrol", Org: "police", Kind: 2, Mechanoids: []string{"m1", "m2"}}}

	mmo, err := ParseMMO(makeMMO(GameAim1, segments, groups, nil), GameAim1)
	if err != nil {
		t.Fatalf("ParseMMO failed: %v", err)
	}
	if !mmo.Custom {
		t.Error("expected custom map")
	}
	if len(mmo.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(mmo.Segments))
	}

	ps, ok := mmo.Segments[0].(*PlacementSegment)
	if !ok {
		t.Fatalf("segment 0 is %T", mmo.Segments[0])
	}
	if ps.Objects[1].Name != "hangar_2" || ps.Objects[1].Position[0] != -5 {
		t.Errorf("object = %+v", ps.Objects[1])
	}

	raw, ok := mmo.Segments[1].(*RawSegment)
	if !ok {
		t.Fatalf("segment 1 is %T", mmo.Segments[1])
	}
	if raw.Len() != 3 || len(raw.Data) != 4 {
		t.Errorf("raw segment = %+v", raw)
	}

	if got := len(mmo.PlacementSegments()); got != 2 {
		t.Errorf("placement segments = %d, want 2", got)
	}
	counts := mmo.CountByCategory()
	if counts[CategoryBuilding] != 2 || counts[CategoryRoad] != 3 || counts[CategoryTree] != 1 {
		t.Errorf("counts = %v", counts)
	}

	if len(mmo.MechGroups) != 1 || mmo.MechGroups[0].Mechanoids[1] != "m2" {
		t.Errorf("mech groups = %+v", mmo.MechGroups)
	}
}

func TestParseMMO_FullTables(t *testing.T) {
	tail := &testTail{
		goods:  []MapGood{{Name: "fuel", Price: 1.5, Amount: 100}},
		music:  []string{"theme", "battle"},
		sounds: []MapSound{{Name: "wind", Position: mgl32.Vec4{1, 2, 3, 0}, Volume: 0.5}},
	}

	mmo, err := ParseMMO(makeMMO(GameAim1, nil, nil, tail), GameAim1)
	if err != nil {
		t.Fatalf("ParseMMO failed: %v", err)
	}
	if mmo.Custom {
		t.Error("full map reported as custom")
	}
	if len(mmo.Goods) != 1 || mmo.Goods[0].Price != 1.5 || mmo.Goods[0].Amount != 100 {
		t.Errorf("goods = %+v", mmo.Goods)
	}
	if len(mmo.Music) != 2 || mmo.Music[1] != "battle" {
		t.Errorf("music = %v", mmo.Music)
	}
	if len(mmo.Sounds) != 1 || mmo.Sounds[0].Position[2] != 3 {
		t.Errorf("sounds = %+v", mmo.Sounds)
	}
}

func TestParseMMO_Aim2Organizations(t *testing.T) {
	tail := &testTail{
		orgs:   []Organization{{Name: "traders", Count: 4}},
		bases:  []OrganizationBase{{Base: "base_1", Org: "traders"}},
		prices: []Price{{Name: "ore", Price: 12}},
	}
	data := makeMMO(GameAim2, nil, nil, tail)

	mmo, err := ParseMMO(data, GameAim2)
	if err != nil {
		t.Fatalf("ParseMMO failed: %v", err)
	}
	if len(mmo.Organizations) != 1 || mmo.Organizations[0].Count != 4 {
		t.Errorf("organizations = %+v", mmo.Organizations)
	}
	if len(mmo.Bases) != 1 || mmo.Bases[0].Org != "traders" {
		t.Errorf("bases = %+v", mmo.Bases)
	}
	if len(mmo.Prices) != 1 || mmo.Prices[0].Price != 12 {
		t.Errorf("prices = %+v", mmo.Prices)
	}

	// AIM1 does not expect organization tables.
	if _, err := ParseMMO(data, GameAim1); !errors.Is(err, ErrStructureMismatch) {
		t.Errorf("AIM2 data as AIM1: got %v", err)
	}
}

func TestParseMMO_Errors(t *testing.T) {
	building := []Segment{&PlacementSegment{Kind: CategoryBuilding, Objects: []MapObject{testObject("a", "b", 0, 0, 0)}}}
	valid := makeMMO(GameAim1, building, nil, &testTail{})

	// Placement segment whose length is not count*MapObjectSize.
	badLength := &fixture{}
	badLength.put(uint32(1), uint32(CategoryStone), uint32(MapObjectSize), uint32(2))
	badLength.Write(make([]byte, MapObjectSize))
	badLength.put(uint32(0), uint32(0))

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated", valid[:len(valid)-1]},
		{"trailing byte", append(append([]byte{}, valid...), 0)},
		{"segment length mismatch", badLength.Bytes()},
		{"missing mech groups", valid[:4+12+MapObjectSize]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMMO(tt.data, GameAim1)
			if !errors.Is(err, ErrStructureMismatch) {
				t.Fatalf("expected ErrStructureMismatch, got %v", err)
			}
		})
	}

	if _, err := ParseMMO(nil, GameAim1); !errors.Is(err, ErrTruncatedMMOData) {
		t.Errorf("empty data: got %v", err)
	}
}

func TestObjectCategory(t *testing.T) {
	tests := []struct {
		c         ObjectCategory
		name      string
		placement bool
	}{
		{CategoryBuilding, "BUILDING", true},
		{CategoryTower, "TOWER", true},
		{CategoryBoundary, "BOUNDARY", true},
		{CategoryRoad, "ROAD", false},
		{CategorySoundZone, "SOUND_ZONE", false},
		{ObjectCategory(99), "Unknown(99)", false},
		{ObjectCategory(0), "Unknown(0)", false},
	}

	for _, tt := range tests {
		if got := tt.c.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.c.IsPlacement(); got != tt.placement {
			t.Errorf("%s.IsPlacement() = %v, want %v", tt.name, got, tt.placement)
		}
	}
}

package reconcile

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/aimtools/internal/catalog"
	"github.com/Faultbox/aimtools/pkg/formats"
)

var identity = [3]mgl32.Vec4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}}

func object(typeName, name string, x, y, z float32) formats.MapObject {
	return formats.MapObject{
		Rotation: identity,
		Position: mgl32.Vec4{x, y, z, 0},
		TypeName: typeName,
		Name:     name,
	}
}

func testMMO() *formats.MMO {
	return &formats.MMO{
		Segments: []formats.Segment{
			&formats.PlacementSegment{Kind: formats.CategoryBuilding, Objects: []formats.MapObject{
				object("hangar", "hangar_01", 10, 20, 30),
				object("bar", "bar_01", 1, 2, 3),
			}},
			&formats.PlacementSegment{Kind: formats.CategoryTree, Objects: []formats.MapObject{
				object("pine", "pine_01", 5, 5, 0),
			}},
			&formats.PlacementSegment{Kind: formats.CategoryTower, Objects: []formats.MapObject{
				object("tower", "tower_01", 0, 0, 0),
			}},
			&formats.PlacementSegment{Kind: formats.CategoryLamp, Objects: []formats.MapObject{
				object("lamp", "lamp_01", 0, 1, 0),
			}},
			&formats.RawSegment{Kind: formats.CategoryRoad, ObjectCount: 3, Data: []byte{1, 2, 3}},
		},
	}
}

func testCatalog() *catalog.Catalog {
	c := catalog.New()
	c.Maps.Insert(catalog.Map{TextID: "location1"})
	c.Maps.Insert(catalog.Map{TextID: "aim2.location1"})
	return c
}

func TestMapTextID(t *testing.T) {
	tests := []struct {
		file, prefix, want string
	}{
		{"maps/Location1.mmo", "", "location1"},
		{"LOCATION1.MMO", "AIM2", "aim2.location1"},
		{"/data/loc.a.mmo", "", "loc.a"},
	}
	for _, tt := range tests {
		if got := MapTextID(tt.file, tt.prefix); got != tt.want {
			t.Errorf("MapTextID(%q, %q) = %q, want %q", tt.file, tt.prefix, got, tt.want)
		}
	}
}

func TestYaw(t *testing.T) {
	tests := []struct {
		name string
		rot  [3]mgl32.Vec4
		want float64
	}{
		{"identity", identity, 90},
		{"quarter turn", [3]mgl32.Vec4{{0, 0, 0, 0}, {1, 0, 0, 0}, {0, 0, 1, 0}}, 0},
		{"half turn", [3]mgl32.Vec4{{-1, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 1, 0}}, -90},
		{"scaled", [3]mgl32.Vec4{{2, 0, 0, 0}, {2, 0, 0, 0}, {0, 0, 2, 0}}, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Yaw(tt.rot); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Yaw = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReconcile_Routing(t *testing.T) {
	c := testCatalog()
	res, err := New(c, "", nil).Reconcile("data/maps/location1.mmo", testMMO())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if res.Inserted != 5 || res.Existing != 0 {
		t.Errorf("result = %+v, want 5 inserted", res)
	}
	if c.MapBuildings.Len() != 3 || c.MapObjects.Len() != 2 {
		t.Errorf("map buildings/objects = %d/%d, want 3/2", c.MapBuildings.Len(), c.MapObjects.Len())
	}
	if c.Buildings.Len() != 3 || c.Objects.Len() != 2 {
		t.Errorf("buildings/objects = %d/%d, want 3/2", c.Buildings.Len(), c.Objects.Len())
	}

	// Type names are registered in sorted order within a segment.
	if b, _ := c.Buildings.Get(1); b.TextID != "bar" {
		t.Errorf("first building = %q, want bar", b.TextID)
	}

	p, ok := c.MapBuildings.Find(func(p catalog.Placement) bool { return p.TextID == "hangar_01" })
	if !ok {
		t.Fatal("hangar_01 not inserted")
	}
	hangar, _ := c.Buildings.Get(p.OwnerID)
	want := catalog.Placement{
		ID: p.ID, TextID: "hangar_01", MapID: 1, OwnerID: p.OwnerID,
		X: 10, Y: 20, Z: 30, Yaw: 90, Scale: 1,
	}
	if p != want || hangar.TextID != "hangar" {
		t.Errorf("placement = %+v (owner %q)", p, hangar.TextID)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	c := testCatalog()
	r := New(c, "", nil)
	if _, err := r.Reconcile("location1.mmo", testMMO()); err != nil {
		t.Fatal(err)
	}
	before := c.Snapshot()

	res, err := r.Reconcile("location1.mmo", testMMO())
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 0 || res.Existing != 5 {
		t.Errorf("second run = %+v, want 5 existing", res)
	}
	after := c.Snapshot()
	if len(after.MapBuildings) != len(before.MapBuildings) || len(after.Buildings) != len(before.Buildings) {
		t.Error("second run changed the catalog")
	}
}

func TestReconcile_Prefix(t *testing.T) {
	c := testCatalog()
	if _, err := New(c, "AIM2", nil).Reconcile("location1.mmo", testMMO()); err != nil {
		t.Fatal(err)
	}
	p, _ := c.MapObjects.Get(1)
	if p.MapID != 2 {
		t.Errorf("map id = %d, want 2", p.MapID)
	}
}

func TestReconcile_MapNotFound(t *testing.T) {
	c := testCatalog()
	res, err := New(c, "", nil).Reconcile("location9.mmo", testMMO())
	if errors.Cause(err) != ErrMapNotFound {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
	if res != (Result{}) || c.Buildings.Len() != 0 || c.MapBuildings.Len() != 0 {
		t.Error("catalog written for an unknown map")
	}
}

func TestReconcile_SanitizesNaN(t *testing.T) {
	nan := float32(math.NaN())
	obj := object("stone", "stone_01", nan, 4, nan)
	obj.Rotation[2][2] = nan
	m := &formats.MMO{Segments: []formats.Segment{
		&formats.PlacementSegment{Kind: formats.CategoryStone, Objects: []formats.MapObject{obj}},
	}}

	core, logs := observer.New(zap.WarnLevel)
	c := testCatalog()
	if _, err := New(c, "", zap.New(core)).Reconcile("location1.mmo", m); err != nil {
		t.Fatal(err)
	}

	p, _ := c.MapObjects.Get(1)
	if p.X != 0 || p.Y != 4 || p.Z != 0 || p.Scale != 1 || p.Yaw != 90 {
		t.Errorf("placement = %+v", p)
	}
	if logs.Len() != 3 {
		t.Errorf("logged %d substitutions, want 3", logs.Len())
	}
	entry := logs.All()[0]
	if entry.ContextMap()["field"] != "scale" || entry.ContextMap()["file"] != "location1.mmo" {
		t.Errorf("log context = %v", entry.ContextMap())
	}
}

func TestReconcile_ZeroScaleIsStable(t *testing.T) {
	obj := object("stone", "stone_01", 1, 2, 3)
	obj.Rotation[2][2] = 0
	m := &formats.MMO{Segments: []formats.Segment{
		&formats.PlacementSegment{Kind: formats.CategoryStone, Objects: []formats.MapObject{obj}},
	}}

	core, logs := observer.New(zap.WarnLevel)
	c := testCatalog()
	r := New(c, "", zap.New(core))
	if _, err := r.Reconcile("location1.mmo", m); err != nil {
		t.Fatal(err)
	}
	res, err := r.Reconcile("location1.mmo", m)
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 0 || res.Existing != 1 {
		t.Errorf("second run = %+v, want 1 existing", res)
	}
	if c.MapObjects.Len() != 1 {
		t.Errorf("placements = %d, want 1", c.MapObjects.Len())
	}

	p, _ := c.MapObjects.Get(1)
	if p.Yaw != 0 || p.Scale != 0 {
		t.Errorf("placement = %+v", p)
	}
	if logs.Len() == 0 || logs.All()[0].ContextMap()["field"] != "yaw" {
		t.Errorf("yaw substitution not logged: %v", logs.All())
	}
}

func TestReconcile_ExistingOwner(t *testing.T) {
	c := testCatalog()
	c.Objects.Insert(catalog.Object{TextID: "pine"})
	if _, err := New(c, "", nil).Reconcile("location1.mmo", testMMO()); err != nil {
		t.Fatal(err)
	}
	if c.Objects.Len() != 2 {
		t.Errorf("objects = %d, want 2", c.Objects.Len())
	}
	p, _ := c.MapObjects.Find(func(p catalog.Placement) bool { return p.TextID == "pine_01" })
	if p.OwnerID != 1 {
		t.Errorf("pine owner = %d, want 1", p.OwnerID)
	}
}

func TestTotals(t *testing.T) {
	var tot Totals
	if tot.Changed() {
		t.Error("empty totals report a change")
	}
	tot.Add(Result{Existing: 4})
	tot.Fail()
	if tot.Changed() {
		t.Error("existing-only totals report a change")
	}
	tot.Add(Result{Inserted: 2, Existing: 1})
	if tot != (Totals{Files: 3, Failed: 1, Inserted: 2, Existing: 5}) || !tot.Changed() {
		t.Errorf("totals = %+v", tot)
	}
}

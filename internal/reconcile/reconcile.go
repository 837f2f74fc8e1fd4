// Package reconcile merges object placements decoded from MMO files into the
// catalog, inserting only placements that are not already recorded.
package reconcile

import (
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/aimtools/internal/catalog"
	"github.com/Faultbox/aimtools/pkg/formats"
)

// ErrMapNotFound is returned when the catalog has no map for an MMO file.
var ErrMapNotFound = errors.New("map not found in catalog")

// Result counts the placements of one file.
type Result struct {
	Inserted int
	Existing int
}

// Totals accumulates results over a batch.
type Totals struct {
	Files    int
	Failed   int
	Inserted int
	Existing int
}

// Add records a processed file.
func (t *Totals) Add(r Result) {
	t.Files++
	t.Inserted += r.Inserted
	t.Existing += r.Existing
}

// Fail records a file that could not be processed.
func (t *Totals) Fail() {
	t.Files++
	t.Failed++
}

// Changed reports whether anything was inserted, i.e. the catalog must be saved.
func (t *Totals) Changed() bool {
	return t.Inserted > 0
}

// Reconciler upserts placements into a catalog.
type Reconciler struct {
	catalog *catalog.Catalog
	prefix  string
	log     *zap.Logger
}

// New returns a reconciler writing to c. Map names are looked up as
// "prefix.stem" when prefix is set. A nil log discards diagnostics.
func New(c *catalog.Catalog, prefix string, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{catalog: c, prefix: prefix, log: log}
}

// MapTextID returns the catalog map id for an MMO file path.
func MapTextID(file, prefix string) string {
	name := filepath.Base(file)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if prefix != "" {
		name = prefix + "." + name
	}
	return strings.ToLower(name)
}

// Yaw returns the heading in degrees derived from the orientation rows.
// Roll and pitch are not recovered.
func Yaw(rot [3]mgl32.Vec4) float64 {
	scale := float64(rot[2].Z())
	a := math.Atan2(float64(rot[1].X())/scale, float64(rot[0].X())/scale)
	return -(a*180/math.Pi - 90)
}

// Reconcile merges the placements of one MMO file.
func (r *Reconciler) Reconcile(file string, m *formats.MMO) (Result, error) {
	var res Result

	mapName := MapTextID(file, r.prefix)
	mp, ok := r.catalog.MapByTextID(mapName)
	if !ok {
		return res, errors.Wrapf(ErrMapNotFound, "%q", mapName)
	}

	log := r.log.With(zap.String("file", file))
	for _, seg := range m.PlacementSegments() {
		var owners map[string]int
		var placements *catalog.Table[catalog.Placement]

		switch seg.Kind {
		case formats.CategoryBuilding, formats.CategoryTower:
			owners = r.buildingIDs(seg)
			placements = &r.catalog.MapBuildings
		case formats.CategoryTree, formats.CategoryStone, formats.CategoryLamp, formats.CategoryBoundary:
			owners = r.objectIDs(seg)
			placements = &r.catalog.MapObjects
		default:
			continue
		}

		for _, obj := range seg.Objects {
			p := r.placement(log, obj)
			p.MapID = mp.ID
			p.OwnerID = owners[obj.TypeName]

			if _, found := placements.Find(p.Equal); found {
				res.Existing++
				continue
			}
			placements.Insert(p)
			res.Inserted++
		}
	}

	log.Info("map reconciled",
		zap.String("map", mapName),
		zap.Int("inserted", res.Inserted),
		zap.Int("existing", res.Existing),
	)
	return res, nil
}

func (r *Reconciler) placement(log *zap.Logger, obj formats.MapObject) catalog.Placement {
	rot := obj.Rotation
	rot[2][2] = float32(r.sanitize(log, obj.Name, "scale", float64(rot[2][2]), 1))

	return catalog.Placement{
		TextID: obj.Name,
		X:      r.sanitize(log, obj.Name, "x", float64(obj.Position.X()), 0),
		Y:      r.sanitize(log, obj.Name, "y", float64(obj.Position.Y()), 0),
		Z:      r.sanitize(log, obj.Name, "z", float64(obj.Position.Z()), 0),
		Yaw:    r.sanitize(log, obj.Name, "yaw", Yaw(rot), 0),
		Scale:  float64(rot[2][2]),
	}
}

// sanitize replaces a non-finite value with def. A zero scale row makes the
// yaw undefined, which is stored as 0.
func (r *Reconciler) sanitize(log *zap.Logger, object, field string, v, def float64) float64 {
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	log.Warn("non-finite value replaced",
		zap.String("object", object),
		zap.String("field", field),
		zap.Float64("was", v),
		zap.Float64("value", def),
	)
	return def
}

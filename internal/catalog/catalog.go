// Package catalog holds the persisted game database records that map
// placements are reconciled against: maps, building and object types, and
// their placements on maps.
package catalog

// Map is a game location.
type Map struct {
	ID     int    `yaml:"id" gorm:"primaryKey;autoIncrement:false"`
	TextID string `yaml:"text_id" gorm:"index"`
}

// Building is a building type referenced by map placements.
type Building struct {
	ID     int    `yaml:"id" gorm:"primaryKey;autoIncrement:false"`
	TextID string `yaml:"text_id" gorm:"index"`
}

// Object is a scenery object type (tree, stone, lamp, boundary).
type Object struct {
	ID     int    `yaml:"id" gorm:"primaryKey;autoIncrement:false"`
	TextID string `yaml:"text_id" gorm:"index"`
}

// Placement is one instance of a building or object on a map. OwnerID refers
// to a Building for map buildings and to an Object for map objects.
type Placement struct {
	ID      int     `yaml:"id" gorm:"primaryKey;autoIncrement:false"`
	TextID  string  `yaml:"text_id"`
	MapID   int     `yaml:"map_id" gorm:"index"`
	OwnerID int     `yaml:"owner_id"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Z       float64 `yaml:"z"`
	Roll    float64 `yaml:"roll"`
	Pitch   float64 `yaml:"pitch"`
	Yaw     float64 `yaml:"yaw"`
	Scale   float64 `yaml:"scale"`
}

// Equal reports whether two placements match in every field but the ID.
func (p Placement) Equal(o Placement) bool {
	p.ID = o.ID
	return p == o
}

func (m Map) key() int                       { return m.ID }
func (b Building) key() int                  { return b.ID }
func (o Object) key() int                    { return o.ID }
func (p Placement) key() int                 { return p.ID }
func (m Map) withKey(id int) Map             { m.ID = id; return m }
func (b Building) withKey(id int) Building   { b.ID = id; return b }
func (o Object) withKey(id int) Object       { o.ID = id; return o }
func (p Placement) withKey(id int) Placement { p.ID = id; return p }

// Catalog is the in-memory database.
type Catalog struct {
	Maps         Table[Map]
	Buildings    Table[Building]
	Objects      Table[Object]
	MapBuildings Table[Placement]
	MapObjects   Table[Placement]
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// MapByTextID finds a map by its exact text id. Callers pass lower-case
// names; stored ids are compared as is.
func (c *Catalog) MapByTextID(textID string) (Map, bool) {
	return c.Maps.Find(func(m Map) bool {
		return m.TextID == textID
	})
}

// Snapshot is the flat, serializable form of a Catalog.
type Snapshot struct {
	Maps         []Map       `yaml:"maps"`
	Buildings    []Building  `yaml:"buildings"`
	Objects      []Object    `yaml:"objects"`
	MapBuildings []Placement `yaml:"map_buildings"`
	MapObjects   []Placement `yaml:"map_objects"`
}

// Snapshot copies all rows out of the catalog.
func (c *Catalog) Snapshot() Snapshot {
	return Snapshot{
		Maps:         c.Maps.All(),
		Buildings:    c.Buildings.All(),
		Objects:      c.Objects.All(),
		MapBuildings: c.MapBuildings.All(),
		MapObjects:   c.MapObjects.All(),
	}
}

// FromSnapshot builds a catalog from stored rows. New ids continue after the
// largest stored id of each table.
func FromSnapshot(s Snapshot) *Catalog {
	c := New()
	c.Maps.load(s.Maps)
	c.Buildings.load(s.Buildings)
	c.Objects.load(s.Objects)
	c.MapBuildings.load(s.MapBuildings)
	c.MapObjects.load(s.MapObjects)
	return c
}

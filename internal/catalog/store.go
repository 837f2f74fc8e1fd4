package catalog

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Faultbox/aimtools/internal/logger"
)

// ErrUnknownDriver is returned by Open for an unsupported store driver.
var ErrUnknownDriver = errors.New("unknown catalog driver")

// Store loads and saves a whole catalog.
type Store interface {
	Load() (*Catalog, error)
	Save(*Catalog) error
	Close() error
}

// Store drivers.
const (
	DriverYAML   = "yaml"
	DriverSQLite = "sqlite"
)

// Open returns the store for driver at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverYAML, "":
		return NewYAMLStore(path), nil
	case DriverSQLite:
		return OpenSQLStore(path)
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "%q", driver)
	}
}

// YAMLStore keeps the catalog in a single YAML document.
type YAMLStore struct {
	Path string
}

// NewYAMLStore returns a store backed by the file at path.
func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{Path: path}
}

// Load reads the catalog file.
func (s *YAMLStore) Load() (*Catalog, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading catalog %s", s.Path)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(err, "parsing catalog %s", s.Path)
	}
	return FromSnapshot(snap), nil
}

// Save rewrites the catalog file.
func (s *YAMLStore) Save(c *Catalog) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(s.Path))
	}

	data, err := yaml.Marshal(c.Snapshot())
	if err != nil {
		return errors.Wrap(err, "encoding catalog")
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing catalog %s", s.Path)
	}

	logger.Info("catalog saved", zap.String("path", s.Path), zap.String("driver", DriverYAML))
	return nil
}

// Close is a no-op.
func (s *YAMLStore) Close() error { return nil }

// Placement tables share one row type.
const (
	tableMapBuildings = "map_buildings"
	tableMapObjects   = "map_objects"
)

// SQLStore keeps the catalog in a SQLite database through gorm.
type SQLStore struct {
	Path string
	db   *gorm.DB
}

// OpenSQLStore opens (creating if needed) the database at path and migrates
// the catalog tables.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	return newSQLStore(path, db)
}

// newSQLStore migrates db and takes ownership of it. The connection is closed
// when migration fails.
func newSQLStore(path string, db *gorm.DB) (*SQLStore, error) {
	s := &SQLStore{Path: path, db: db}
	if err := s.migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	if err := s.db.AutoMigrate(&Map{}, &Building{}, &Object{}); err != nil {
		return errors.Wrap(err, "migrating catalog tables")
	}
	for _, table := range []string{tableMapBuildings, tableMapObjects} {
		if err := s.db.Table(table).AutoMigrate(&Placement{}); err != nil {
			return errors.Wrapf(err, "migrating %s", table)
		}
	}
	return nil
}

// Load reads every table.
func (s *SQLStore) Load() (*Catalog, error) {
	var snap Snapshot
	steps := []struct {
		table string
		dest  any
	}{
		{"", &snap.Maps},
		{"", &snap.Buildings},
		{"", &snap.Objects},
		{tableMapBuildings, &snap.MapBuildings},
		{tableMapObjects, &snap.MapObjects},
	}
	for _, step := range steps {
		q := s.db
		if step.table != "" {
			q = q.Table(step.table)
		}
		if err := q.Order("id").Find(step.dest).Error; err != nil {
			return nil, errors.Wrapf(err, "loading catalog from %s", s.Path)
		}
	}
	return FromSnapshot(snap), nil
}

// Save replaces the contents of every table in one transaction.
func (s *SQLStore) Save(c *Catalog) error {
	snap := c.Snapshot()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := replaceRows(all, "", &Map{}, snap.Maps); err != nil {
			return err
		}
		if err := replaceRows(all, "", &Building{}, snap.Buildings); err != nil {
			return err
		}
		if err := replaceRows(all, "", &Object{}, snap.Objects); err != nil {
			return err
		}
		if err := replaceRows(all, tableMapBuildings, &Placement{}, snap.MapBuildings); err != nil {
			return err
		}
		return replaceRows(all, tableMapObjects, &Placement{}, snap.MapObjects)
	})
	if err != nil {
		return errors.Wrapf(err, "saving catalog to %s", s.Path)
	}

	logger.Info("catalog saved", zap.String("path", s.Path), zap.String("driver", DriverSQLite))
	return nil
}

func replaceRows[T any](tx *gorm.DB, table string, model any, rows []T) error {
	q := tx
	if table != "" {
		q = q.Table(table)
	}
	if err := q.Delete(model).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	q = tx
	if table != "" {
		q = q.Table(table)
	}
	return q.CreateInBatches(&rows, 500).Error
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

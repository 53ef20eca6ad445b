package database

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("record not found")

// MemoryDSN is a private in-memory SQLite database. Its contents are gone
// once the last connection closes.
const MemoryDSN = ":memory:"

type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewDatabase(dsn string, log *logrus.Logger) (*Database, error) {
	if log == nil {
		log = logrus.New()
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	// Every new connection to :memory: would see an empty database
	sqlDB.SetMaxOpenConns(1)

	return &Database{db: db, logger: log}, nil
}

// RunMigrations creates the tables used by the catalog.
func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&listingRecord{}); err != nil {
		return fmt.Errorf("failed to migrate listings: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

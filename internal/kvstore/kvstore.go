// Package kvstore is the durable client-local key/value slot backing
// the ticket store. Each slot is one row in a gorm-managed table;
// values round-trip byte-for-byte.
package kvstore

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrSlotNotFound is returned by Get when no value was ever written
// under the requested key.
var ErrSlotNotFound = errors.New("kvstore: slot not found")

// Slot is the storage row for one key/value pair.
type Slot struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     []byte    `gorm:"type:blob"`
	UpdatedAt time.Time
}

func (Slot) TableName() string {
	return "kv_slots"
}

// Store reads and writes slots through a gorm connection.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New wraps an already-open gorm connection and ensures the slot table
// exists.
func New(db *gorm.DB, z *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&Slot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate slot table: %w", err)
	}
	return &Store{db: db, logger: z}, nil
}

// Open connects to the configured backend and returns a ready Store.
// MySQL is used when the REAL_DB_* variables are all set, otherwise a
// local SQLite file (KV_DB_PATH, default ticketdesk.db).
func Open(z *zap.Logger) (*Store, error) {
	db, err := openBackend(z)
	if err != nil {
		return nil, err
	}
	return New(db, z)
}

func openBackend(z *zap.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	host := os.Getenv("REAL_DB_HOST")
	port := os.Getenv("REAL_DB_PORT")
	user := os.Getenv("REAL_DB_USER")
	pass := os.Getenv("REAL_DB_PASS")
	dbname := os.Getenv("REAL_DB_NAME")

	if host != "" && port != "" && user != "" && pass != "" && dbname != "" {
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			user, pass, host, port, dbname)
		db, err := gorm.Open(mysql.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect mysql backend: %w", err)
		}
		z.Info("kvstore backend ready", zap.String("backend", "mysql"), zap.String("db", dbname))
		return db, nil
	}

	path := os.Getenv("KV_DB_PATH")
	if path == "" {
		path = "ticketdesk.db"
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite backend: %w", err)
	}
	z.Info("kvstore backend ready", zap.String("backend", "sqlite"), zap.String("path", path))
	return db, nil
}

// Get returns the value stored under key, or ErrSlotNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	var slot Slot
	err := s.db.First(&slot, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return slot.Value, nil
}

// Set writes value under key, replacing any previous value.
func (s *Store) Set(key string, value []byte) error {
	slot := Slot{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}

// Delete removes the slot. Deleting a missing slot is not an error.
func (s *Store) Delete(key string) error {
	if err := s.db.Delete(&Slot{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}
	return nil
}

// Ping reports whether the backend is reachable.
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

package kvstore

import (
	"bytes"
	"errors"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	s, err := New(db, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}

func TestSetGetRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	value := []byte(`{"state":{"tickets":[],"comments":[]},"version":1}`)
	if err := s.Set("ticket-store", value); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := s.Get("ticket-store")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("expected value to round-trip byte-for-byte: want %s, got %s", value, got)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Set("slot", []byte("first")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("slot", []byte("second")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := s.Get("slot")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("expected last write to win, got %s", got)
	}
}

func TestGetMissingSlot(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get("never-written")
	if !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Set("slot", []byte("value")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Delete("slot"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := s.Get("slot"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("expected slot gone after delete, got %v", err)
	}

	// Deleting a missing slot is not an error.
	if err := s.Delete("slot"); err != nil {
		t.Errorf("Delete() on missing slot: %v", err)
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Set("ticket-store", []byte("a")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("ticket-app-user", []byte("b")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Delete("ticket-app-user"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := s.Get("ticket-store")
	if err != nil || string(got) != "a" {
		t.Errorf("expected ticket-store untouched, got %s err %v", got, err)
	}
}

func TestPing(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Ping(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

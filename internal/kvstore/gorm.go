package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one row of the kv_entries table.
type Entry struct {
	Key       string    `gorm:"column:storage_key;primaryKey"`
	Value     string    `gorm:"column:storage_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName pins the table created by the migrations.
func (Entry) TableName() string { return "kv_entries" }

// GormStore keeps entries in a SQL table through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an already migrated database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get returns the value stored under key.
func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return entry.Value, nil
}

// Set upserts key.
func (s *GormStore) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"storage_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *GormStore) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// GetAllKeys lists every stored key in key order.
func (s *GormStore) GetAllKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&Entry{}).Order("storage_key").Pluck("storage_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return keys, nil
}

// RemoveMany deletes all keys in one statement.
func (s *GormStore) RemoveMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("storage_key IN ?", keys).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("removing %d keys: %w", len(keys), err)
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type stateEntry struct {
	Key       string `gorm:"column:state_key;primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (stateEntry) TableName() string {
	return "client_state"
}

// SQL stores state in a single client_state table (sqlite or postgres).
type SQL struct {
	db *gorm.DB
}

// NewSQL migrates the state table and returns the store.
func NewSQL(ctx context.Context, db *gorm.DB) (*SQL, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db is required")
	}
	if err := db.WithContext(ctx).AutoMigrate(&stateEntry{}); err != nil {
		return nil, fmt.Errorf("migrating client_state: %w", err)
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, error) {
	var entry stateEntry
	err := s.db.WithContext(ctx).Where("state_key = ?", key).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return entry.Value, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	entry := stateEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("state_key = ?", key).Delete(&stateEntry{}).Error
}

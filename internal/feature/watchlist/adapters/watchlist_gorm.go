// Package adapters provides the persistence adapter for the watchlist feature.
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crypto_dashboard/internal/feature/watchlist/store"
)

// WatchlistKey is the fixed key the watchlist is stored under. The value is a
// JSON array of asset id strings; there is no versioning or migration.
const WatchlistKey = "crypto-watchlist"

// KVEntry is a row of the generic key-value table backing locally persisted
// client state. The watchlist occupies a single row.
type KVEntry struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"type:text;not null"`
}

// TableName returns the table name for KVEntry.
func (KVEntry) TableName() string {
	return "kv_entries"
}

type watchlistGorm struct {
	db *gorm.DB
}

var _ store.Persister = (*watchlistGorm)(nil)

// NewWatchlistRepository creates a watchlist persister backed by the given DB.
func NewWatchlistRepository(db *gorm.DB) *watchlistGorm {
	return &watchlistGorm{db: db}
}

// Load reads the persisted id list. A missing row is not an error and loads
// as an empty list; a malformed value is an error the store downgrades to an
// empty session (the store never surfaces persistence failures to callers).
func (w *watchlistGorm) Load(ctx context.Context) ([]string, error) {
	var row KVEntry
	err := w.db.WithContext(ctx).First(&row, "key = ?", WatchlistKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(row.Value), &ids); err != nil {
		return nil, fmt.Errorf("decode watchlist value: %w", err)
	}
	return ids, nil
}

// Save writes the entire id list, replacing whatever was stored before.
func (w *watchlistGorm) Save(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode watchlist value: %w", err)
	}

	row := KVEntry{Key: WatchlistKey, Value: string(b)}
	err = w.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}

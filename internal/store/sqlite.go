package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amaumene/imagesearch/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is the row type of the kv_entries table
type kvEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// SQLiteKV stores entries in a sqlite database through gorm
type SQLiteKV struct {
	db *gorm.DB
}

// sqliteDSNOptions makes write transactions take the lock up front and wait
// for a competing writer instead of failing with "database is locked"
const sqliteDSNOptions = "_txlock=immediate&_busy_timeout=5000"

// OpenSQLite opens (or creates) the sqlite database at path
func OpenSQLite(path string) (*SQLiteKV, error) {
	db, err := gorm.Open(sqlite.Open(path+"?"+sqliteDSNOptions), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serialises writers of this process
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteKV{db: db}, nil
}

// Close closes the underlying connection pool
func (s *SQLiteKV) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get retrieves the value stored under key
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).Where(&kvEntry{Key: key}).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &models.StorageError{Op: "get", Key: key, Err: err}
	}
	return e.Value, true, nil
}

// Put stores value under key, replacing any previous value
func (s *SQLiteKV) Put(ctx context.Context, key, value string) error {
	e := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return &models.StorageError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Update reads, transforms and writes key inside one transaction
func (s *SQLiteKV) Update(ctx context.Context, key string, fn func(string, bool) (string, error)) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e kvEntry
		found := true
		if err := tx.Where(&kvEntry{Key: key}).Take(&e).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
		}

		next, err := fn(e.Value, found)
		if err != nil {
			return err
		}

		e.Key = key
		e.Value = next
		e.UpdatedAt = time.Now()
		return tx.Save(&e).Error
	})
	if err != nil {
		var se *models.StorageError
		if errors.As(err, &se) {
			return err
		}
		return &models.StorageError{Op: "update", Key: key, Err: err}
	}
	return nil
}

package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/va6996/flightfinder/log"
	"github.com/va6996/flightfinder/plugins/amadeus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// APICache stores cached API responses
type APICache struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte // Raw JSON
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}

// Open connects to the cache database. driver is "sqlite" or "postgres".
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", driver, err)
	}
	return db, nil
}

// GetCacheEntry retrieves a cache entry that has not expired at now
func GetCacheEntry(db *gorm.DB, key string, now time.Time) (*APICache, error) {
	var entry APICache
	err := db.Where("key = ? AND expires_at > ?", key, now).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetCacheEntry upserts a cache entry
func SetCacheEntry(db *gorm.DB, key string, value []byte, ttl time.Duration, now time.Time) error {
	entry := APICache{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	// Upsert (On Conflict Do Update)
	return db.Save(&entry).Error
}

// CleanupCache removes expired entries
func CleanupCache(db *gorm.DB, now time.Time) error {
	return db.Where("expires_at < ?", now).Delete(&APICache{}).Error
}

// CacheStore is a database-backed amadeus.ResponseCache
type CacheStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ amadeus.ResponseCache = (*CacheStore)(nil)

// NewCacheStore migrates the cache table and drops expired entries
func NewCacheStore(db *gorm.DB) (*CacheStore, error) {
	if err := db.AutoMigrate(&APICache{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache table: %w", err)
	}
	s := &CacheStore{db: db, now: time.Now}
	if err := CleanupCache(db, s.now()); err != nil {
		return nil, fmt.Errorf("failed to clean up cache: %w", err)
	}
	return s, nil
}

// Get returns the cached value for key if present and not expired
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, bool) {
	entry, err := GetCacheEntry(s.db.WithContext(ctx), key, s.now())
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf(ctx, "CacheStore: get %s failed: %v", key, err)
		}
		return nil, false
	}
	return entry.Value, true
}

// Set stores value under key for ttl
func (s *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := SetCacheEntry(s.db.WithContext(ctx), key, value, ttl, s.now()); err != nil {
		log.Warnf(ctx, "CacheStore: set %s failed: %v", key, err)
	}
}

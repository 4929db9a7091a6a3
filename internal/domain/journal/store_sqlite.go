package journal

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// SQLiteStore is the local default when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore migrates the journal table and returns the store.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, entry Entry) error {
	return s.db.WithContext(ctx).Create(&entry).Error
}

func (s *SQLiteStore) ListByAccount(ctx context.Context, account string, limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("account = ?", account).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (s *SQLiteStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Entry{})
	return res.RowsAffected, res.Error
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

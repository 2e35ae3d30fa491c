package kv

import (
	"context"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one row of the kv_entries table.
type Entry struct {
	Key       string     `gorm:"column:entry_key;primaryKey;size:512"`
	Value     string     `gorm:"type:text;not null"`
	ExpiresAt *time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName pins the table name regardless of gorm naming strategy.
func (Entry) TableName() string { return "kv_entries" }

// SQLStore is a Store backed by a single gorm table. Expired rows stay on disk
// until overwritten or deleted, but are invisible to Get and List.
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the SQLite database at path.
func OpenSQLite(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite database %s", path)
	}
	return NewSQLStore(db), nil
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// Migrate creates or updates the kv_entries table.
func (s *SQLStore) Migrate() error {
	if err := s.db.AutoMigrate(&Entry{}); err != nil {
		return errors.Wrap(err, "migrate kv_entries")
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var e Entry
	err := s.live(ctx).Where("entry_key = ?", key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", errors.Wrapf(err, "get key %s", key)
	}
	return e.Value, nil
}

func (s *SQLStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	now := s.now().UTC()
	e := Entry{Key: key, Value: value, UpdatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		e.ExpiresAt = &exp
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return errors.Wrapf(err, "put key %s", key)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return errors.Wrapf(err, "delete key %s", key)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.live(ctx).
		Model(&Entry{}).
		Where(`entry_key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Pluck("entry_key", &keys).Error
	if err != nil {
		return nil, errors.Wrapf(err, "list prefix %s", prefix)
	}
	// LIKE is case-insensitive in SQLite.
	matched := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	return matched, nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get underlying sql database")
	}
	return sqlDB.Close()
}

func (s *SQLStore) live(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Where("(expires_at IS NULL OR expires_at > ?)", s.now().UTC())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

package cache

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/aidemo/internal/models"
)

var errDatabaseStoreNil = errors.New("cache: database store not initialised")

const defaultCounterWindow = time.Minute

// DatabaseStore keeps cache entries in the primary SQL database. SQL has no keyspace
// statistics, so hits and misses are counted in-process.
type DatabaseStore struct {
	db     *gorm.DB
	now    func() time.Time
	hits   atomic.Int64
	misses atomic.Int64
}

// NewDatabaseStore returns nil when db is nil.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// entries returns a session bound to ctx. Each chain started from it gets a fresh
// statement.
func (s *DatabaseStore) entries(ctx context.Context) (*gorm.DB, error) {
	if s == nil {
		return nil, errDatabaseStoreNil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return s.db.WithContext(ctx), nil
}

// byKey filters on the key column; gorm quotes it, as KEY is reserved in MySQL.
func byKey(keys ...string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if len(keys) == 1 {
			return tx.Where(map[string]any{"key": keys[0]})
		}
		return tx.Where(map[string]any{"key": keys})
	}
}

func (s *DatabaseStore) Ping(ctx context.Context) error {
	q, err := s.entries(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := q.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(q.Statement.Context)
}

func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	q, err := s.entries(ctx)
	if err != nil {
		return nil, false, err
	}

	var entry models.CacheEntry
	switch err := q.Scopes(byKey(key)).Take(&entry).Error; {
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.misses.Add(1)
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	if entry.Expired(s.now()) {
		s.misses.Add(1)
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}
	s.hits.Add(1)
	return []byte(entry.Value), true, nil
}

// Set stores value under key. A non-positive ttl keeps the entry until it is deleted.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	q, err := s.entries(ctx)
	if err != nil {
		return err
	}

	entry := models.CacheEntry{Key: key, Value: string(value)}
	if ttl > 0 {
		entry.ExpiresAt = s.now().Add(ttl)
	}
	return upsert(q, &entry)
}

func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	q, err := s.entries(ctx)
	if err != nil {
		return err
	}
	return q.Scopes(byKey(keys...)).Delete(&models.CacheEntry{}).Error
}

// IncrementWithTTL bumps the counter at key inside a row-locking transaction. The window
// starts with the first increment; once it lapses the counter starts again at 1.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	q, err := s.entries(ctx)
	if err != nil {
		return 0, 0, err
	}
	if window <= 0 {
		window = defaultCounterWindow
	}

	now := s.now()
	var entry models.CacheEntry
	err = q.Transaction(func(tx *gorm.DB) error {
		var current *models.CacheEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Scopes(byKey(key)).Take(&entry).Error
		switch {
		case err == nil:
			current = &entry
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		entry = advanceCounter(key, current, now, window)
		return upsert(tx, &entry)
	})
	if err != nil {
		return 0, 0, err
	}

	count, _ := strconv.ParseInt(entry.Value, 10, 64)
	return count, entry.ExpiresAt.Sub(now), nil
}

// advanceCounter returns the counter row after one more hit at now. A missing, expired
// or unparsable row restarts the window.
func advanceCounter(key string, current *models.CacheEntry, now time.Time, window time.Duration) models.CacheEntry {
	next := models.CacheEntry{Key: key, Value: "1", ExpiresAt: now.Add(window)}
	if current == nil || current.Expired(now) || current.ExpiresAt.IsZero() {
		return next
	}
	n, err := strconv.ParseInt(current.Value, 10, 64)
	if err != nil {
		return next
	}
	next.Value = strconv.FormatInt(n+1, 10)
	next.ExpiresAt = current.ExpiresAt
	return next
}

func upsert(tx *gorm.DB, entry *models.CacheEntry) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(entry).Error
}

// PurgeExpired deletes entries that expired before now and returns how many went.
// Entries without an expiry are kept.
func (s *DatabaseStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	q, err := s.entries(ctx)
	if err != nil {
		return 0, err
	}
	res := q.Where("expires_at > ? AND expires_at < ?", time.Time{}, now.UTC()).Delete(&models.CacheEntry{})
	return res.RowsAffected, res.Error
}

// Stats reports open connections, the payload size of stored entries and the hit and
// miss counters recorded by Get.
func (s *DatabaseStore) Stats(ctx context.Context) (Stats, error) {
	q, err := s.entries(ctx)
	if err != nil {
		return Stats{}, err
	}
	sqlDB, err := q.DB()
	if err != nil {
		return Stats{}, err
	}

	var used int64
	if err := q.Model(&models.CacheEntry{}).Select("COALESCE(SUM(LENGTH(value)), 0)").Scan(&used).Error; err != nil {
		return Stats{}, err
	}

	return Stats{
		Backend:          BackendDatabase,
		ConnectedClients: int64(sqlDB.Stats().OpenConnections),
		UsedMemoryHuman:  humanize.Bytes(uint64(max(used, 0))),
		KeyspaceHits:     s.hits.Load(),
		KeyspaceMisses:   s.misses.Load(),
	}, nil
}

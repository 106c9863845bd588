// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/aidemo/internal/database"
)

type schemaLevel int

const (
	schemaNone schemaLevel = iota
	schemaMigrated
	schemaSeeded
)

// TestDBOption selects how much schema MustOpenTestDB prepares.
type TestDBOption func(*schemaLevel)

// WithAutoMigrate creates the cache and blog tables.
func WithAutoMigrate() TestDBOption {
	return func(level *schemaLevel) { *level = max(*level, schemaMigrated) }
}

// WithSeedData migrates and inserts the "Hello World" post.
func WithSeedData() TestDBOption {
	return func(level *schemaLevel) { *level = schemaSeeded }
}

// MustOpenTestDB opens an in-memory database private to t, named after a fresh UUID so
// parallel tests never share state. It is closed on cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	level := schemaNone
	for _, opt := range opts {
		opt(&level)
	}

	db, err := database.Open(database.Config{
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	switch level {
	case schemaSeeded:
		require.NoError(t, database.AutoMigrateAndSeed(db))
	case schemaMigrated:
		require.NoError(t, database.AutoMigrate(db))
	}
	return db
}

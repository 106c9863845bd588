package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// dialect pairs a gorm driver with the DSN builder for its configuration.
type dialect struct {
	open func(dsn string) gorm.Dialector
	dsn  func(cfg Config) (string, error)
}

var dialects = map[string]dialect{
	"sqlite":     {open: sqlite.Open, dsn: sqliteDSN},
	"postgres":   {open: postgres.Open, dsn: postgresDSN},
	"postgresql": {open: postgres.Open, dsn: postgresDSN},
	"mysql":      {open: mysql.Open, dsn: mysqlDSN},
}

const memoryDSN = "file::memory:?cache=shared&_foreign_keys=1"

// sqliteDSN accepts a file: DSN as is, a SQLAlchemy style sqlite:/// URI (three slashes
// relative, four absolute) or a plain path. Parent directories of file paths are created.
func sqliteDSN(cfg Config) (string, error) {
	path := strings.TrimSpace(cfg.Path)
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		if strings.HasPrefix(dsn, "file:") {
			return dsn, nil
		}
		path = strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite://"), "/")
	}

	if path == "" || strings.EqualFold(path, ":memory:") {
		return memoryDSN, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	return "file:" + filepath.ToSlash(path) + "?_foreign_keys=1&_journal_mode=WAL", nil
}

// postgresDSN passes a DSN or postgres:// URL through, else builds a key/value DSN.
// sslmode defaults to disable for in-cluster databases.
func postgresDSN(cfg Config) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn, nil
	}
	if err := requireCredentials("postgres", cfg); err != nil {
		return "", err
	}

	parts := []string{
		"host=" + orDefault(cfg.Host, "localhost"),
		fmt.Sprintf("port=%d", portOrDefault(cfg.Port, 5432)),
		"user=" + cfg.User,
		"dbname=" + cfg.Name,
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+cfg.Password)
	}
	parts = append(parts, sortedPairs(cfg.Options, map[string]string{"sslmode": "disable"})...)
	return strings.Join(parts, " "), nil
}

// mysqlDSN strips a mysql:// scheme from a supplied DSN, else builds a go-sql-driver DSN
// with UTC timestamps parsed into time.Time.
func mysqlDSN(cfg Config) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return strings.TrimPrefix(dsn, "mysql://"), nil
	}
	if err := requireCredentials("mysql", cfg); err != nil {
		return "", err
	}

	account := cfg.User
	if cfg.Password != "" {
		account += ":" + cfg.Password
	}
	query := sortedPairs(cfg.Options, map[string]string{"charset": "utf8mb4", "parseTime": "True", "loc": "UTC"})
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s",
		account, orDefault(cfg.Host, "127.0.0.1"), portOrDefault(cfg.Port, 3306), cfg.Name,
		strings.Join(query, "&")), nil
}

func requireCredentials(driver string, cfg Config) error {
	if cfg.User == "" || cfg.Name == "" {
		return errors.New(driver + " configuration requires user and database name")
	}
	return nil
}

// sortedPairs merges overrides onto defaults and renders key=value pairs in key order.
func sortedPairs(overrides, defaults map[string]string) []string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + merged[k]
	}
	return pairs
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}

func portOrDefault(port, fallback int) int {
	if port > 0 {
		return port
	}
	return fallback
}

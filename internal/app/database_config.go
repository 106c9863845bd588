package app

import (
	"strings"

	"github.com/charlesng35/aidemo/internal/database"
)

// DatabaseClientConfig converts the database section into database.Config. A DSN carrying a
// URL scheme selects its driver, so CLOUD_DB_URI=postgresql://... works without also
// setting database.driver.
func (c DatabaseConfig) DatabaseClientConfig() database.Config {
	driver := strings.ToLower(strings.TrimSpace(c.Driver))
	dsn := strings.TrimSpace(c.DSN)

	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		driver = "postgres"
	case strings.HasPrefix(dsn, "mysql://"):
		driver = "mysql"
	case strings.HasPrefix(dsn, "sqlite://"):
		driver = "sqlite"
	}

	cfg := database.Config{
		Driver: driver,
		Path:   c.Path,
		DSN:    dsn,
	}

	var auth DBAuthConfig
	switch driver {
	case "postgres", "postgresql":
		auth = c.Postgres
	case "mysql":
		auth = c.MySQL
	}
	if auth.Enabled || auth.Host != "" {
		cfg.Host = auth.Host
		cfg.Port = auth.Port
		cfg.Name = auth.Database
		cfg.User = auth.Username
		cfg.Password = auth.Password
	}

	return cfg
}

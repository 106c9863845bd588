package checks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/aidemo/internal/monitoring"
)

// Database pings the SQL connection pool. Details carry the dialect so a readiness
// report shows whether sqlite, postgres or mysql is serving the blog and cache tables.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		if db == nil {
			return down("database not configured")
		}
		result := timed(ctx, "database", timeout, func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
		if result.Status == monitoring.StatusUp {
			result.Details = db.Dialector.Name()
		}
		return result
	})
}

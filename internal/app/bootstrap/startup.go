// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	notificationstore "github.com/cardfolio/clubhouse/internal/app/store/notifications"
	"github.com/cardfolio/clubhouse/internal/app/system/timeouts"
	"github.com/cardfolio/clubhouse/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// notificationCleanup is the process-wide pruning worker, started here and
// stopped in Shutdown.
var notificationCleanup *workers.NotificationCleanup

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It is the
// place to apply environment overrides and start background workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("overrides", n))
	}

	notificationCleanup = workers.NewNotificationCleanup(
		notificationstore.New(deps.ClubhouseMongoDatabase),
		logger,
		appCfg.NotificationCleanupInterval,
		appCfg.NotificationRetention,
	)
	notificationCleanup.Start()

	return nil
}

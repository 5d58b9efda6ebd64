package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eventstime/core/internal/config"
	"github.com/eventstime/core/internal/models"
	pkgcron "github.com/eventstime/core/internal/pkg/cron"
)

// Soft-deleted rows are kept this long before the purge job drops them.
const purgeRetention = 90 * 24 * time.Hour

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("cron")

	sched.Register(pkgcron.Job{
		Name:        "purge_soft_deleted",
		Description: "hard-delete rows soft-deleted more than 90 days ago",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().Add(-purgeRetention)
			targets := []interface{}{
				&models.UserEventStandModel{},
				&models.ProductModel{},
				&models.ProductFileModel{},
				&models.ProductCategoryModel{},
				&models.StandModel{},
				&models.StandCategoryModel{},
				&models.EventModel{},
				&models.UserModel{},
			}
			var purged int64
			for _, target := range targets {
				result := db.Unscoped().
					Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
					Delete(target)
				if result.Error != nil {
					cronLogger.Warn("purge failed", zap.Error(result.Error))
					return result.Error
				}
				purged += result.RowsAffected
			}
			cronLogger.Info(fmt.Sprintf("purge complete, %d rows dropped", purged))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "expire_stale_sessions",
		Description: "clear refresh tokens older than the refresh TTL",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			// updated_at moves on every login and rotation, so a session
			// untouched for a full refresh TTL holds an expired token.
			cutoff := time.Now().Add(-cfg.RefreshTTL())
			result := db.Model(&models.UserTokenModel{}).
				Where("refresh_token IS NOT NULL AND updated_at < ?", cutoff).
				Update("refresh_token", nil)
			if result.Error != nil {
				cronLogger.Warn("session sweep failed", zap.Error(result.Error))
				return result.Error
			}
			if result.RowsAffected > 0 {
				cronLogger.Info(fmt.Sprintf("cleared %d stale sessions", result.RowsAffected))
			}
			return nil
		},
	})
}

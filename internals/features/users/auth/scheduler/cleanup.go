package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	authRepo "schoolportal_backend/internals/features/users/auth/repository"
)

// StartBlacklistCleanupScheduler deletes expired blacklist rows every interval
// until ctx is cancelled.
func StartBlacklistCleanupScheduler(ctx context.Context, db *gorm.DB, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	log = log.Named("blacklist-cleanup")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			RunBlacklistCleanup(ctx, db, log)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func RunBlacklistCleanup(ctx context.Context, db *gorm.DB, log *zap.Logger) int64 {
	n, err := authRepo.CleanupExpiredBlacklist(ctx, db, time.Now())
	if err != nil {
		log.Warn("cleanup failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		log.Info("expired tokens removed", zap.Int64("count", n))
	}
	return n
}

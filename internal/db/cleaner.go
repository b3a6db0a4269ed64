package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartSoftDeleteCleaner purges tasks that were soft-deleted more than
// retention ago, once per interval, until ctx is cancelled.
func StartSoftDeleteCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention).UTC()
				res, err := db.ExecContext(ctx, `
                    DELETE FROM tasks
                     WHERE deleted_at IS NOT NULL
                       AND deleted_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to purge soft-deleted tasks", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("purged soft-deleted tasks", zap.Int64("removed", rows))
				}
			}
		}
	}()
}

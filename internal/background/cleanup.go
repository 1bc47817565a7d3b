package background

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredTokenDeleter removes expired password-reset tokens.
type ExpiredTokenDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupManager periodically removes expired password-reset tokens from
// the database. Consumed tokens are deleted by the reset flow itself; this
// only clears the ones that expired unused.
type CleanupManager struct {
	resetRepo ExpiredTokenDeleter
	logger    *slog.Logger
	interval  time.Duration
	stopCh    chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(resetRepo ExpiredTokenDeleter, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		resetRepo: resetRepo,
		logger:    logger,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.resetRepo.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to cleanup expired reset tokens", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("expired reset token cleanup completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}

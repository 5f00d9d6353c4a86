package scheduler

import (
	"github.com/prasetyo/tokobarang-backend/internal/app/service"
	"github.com/prasetyo/tokobarang-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ResetCleanupScheduler periodically purges expired and consumed password
// reset tokens.
type ResetCleanupScheduler struct {
	cron         *cron.Cron
	resetService service.PasswordResetService
}

func NewResetCleanupScheduler(resetService service.PasswordResetService) *ResetCleanupScheduler {
	return &ResetCleanupScheduler{
		cron:         cron.New(),
		resetService: resetService,
	}
}

// Start schedules the daily purge
func (s *ResetCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Debug("Starting scheduled password reset purge", nil)

		removed, err := s.resetService.PurgeExpired()
		if err != nil {
			logger.Error("Failed to purge password reset tokens", err)
			return
		}

		if removed > 0 {
			logger.Info("Scheduled purge removed stale reset tokens", map[string]interface{}{
				"removed": removed,
			})
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for reset token purge", err)
		return err
	}

	s.cron.Start()
	logger.Info("Password reset cleanup scheduler started (daily)", nil)
	return nil
}

// Stop halts the scheduler
func (s *ResetCleanupScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Password reset cleanup scheduler stopped", nil)
}

package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// cleanupTimeout bounds a single purge run
const cleanupTimeout = 30 * time.Second

// ExpiredTokenPurger deletes expired reset tokens
type ExpiredTokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// CleanupService periodically purges expired password reset tokens.
// Expiry is still enforced when a token is redeemed.
type CleanupService struct {
	purger   ExpiredTokenPurger
	schedule string
	cron     *cron.Cron
}

// NewCleanupService creates a cleanup job for the given cron spec
func NewCleanupService(purger ExpiredTokenPurger, schedule string) *CleanupService {
	return &CleanupService{
		purger:   purger,
		schedule: schedule,
		cron:     cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start registers the job and starts the scheduler
func (s *CleanupService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("🚀 CleanupService started [schedule: %s]", s.schedule)
	return nil
}

// Stop waits for a running purge to finish and stops the scheduler
func (s *CleanupService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 CleanupService stopped")
}

// RunOnce purges expired tokens once
func (s *CleanupService) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		log.Printf("❌ Reset token cleanup failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("✅ Removed %d expired reset tokens", n)
	}
}

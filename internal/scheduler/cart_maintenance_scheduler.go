package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
)

// CartMaintenanceScheduler periodically flushes live cart sessions to their
// storage partitions and evicts sessions idle past the configured threshold.
// This is a durability safety net on top of the write-behind persistence.
type CartMaintenanceScheduler struct {
	cron     *cron.Cron
	sessions *service.CartSessionManager
	interval time.Duration
	idleTTL  time.Duration
}

func NewCartMaintenanceScheduler(sessions *service.CartSessionManager, interval, idleTTL time.Duration) *CartMaintenanceScheduler {
	return &CartMaintenanceScheduler{
		cron:     cron.New(),
		sessions: sessions,
		interval: interval,
		idleTTL:  idleTTL,
	}
}

// Start registers the maintenance sweep and starts the cron loop.
func (s *CartMaintenanceScheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		evicted := s.sessions.EvictIdle(ctx, s.idleTTL)
		s.sessions.FlushAll(ctx)

		logger.Debug("Cart maintenance sweep completed", map[string]interface{}{
			"evicted": evicted,
		})
	})
	if err != nil {
		logger.Error("Failed to register cart maintenance job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart maintenance scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
		"idle_ttl": s.idleTTL.String(),
	})
	return nil
}

// Stop halts the cron loop.
func (s *CartMaintenanceScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Cart maintenance scheduler stopped", nil)
}

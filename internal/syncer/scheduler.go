package syncer

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"tradetrack/internal/logger"
)

// Scheduler periodically reconciles every claimable connection. Passes for
// different connections run concurrently up to Parallel; a connection already
// being synced elsewhere is skipped, not retried.
type Scheduler struct {
	service  *Service
	interval time.Duration
	parallel int
}

func NewScheduler(service *Service, interval time.Duration, parallel int) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if parallel <= 0 {
		parallel = 4
	}
	return &Scheduler{service: service, interval: interval, parallel: parallel}
}

// Run blocks until ctx is cancelled. The first sweep fires after one full
// interval so a restart storm does not hammer the venues.
func (s *Scheduler) Run(ctx context.Context) error {
	if s == nil || s.service == nil {
		return errors.New("scheduler: service is nil")
	}
	logger.Infof("[scheduler] started interval=%s parallel=%d", s.interval, s.parallel)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Infof("[scheduler] stopped")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	conns, err := s.service.connections.ListActive(ctx)
	if err != nil {
		logger.Errorf("[scheduler] list connections failed: %v", err)
		return
	}
	if len(conns) == 0 {
		return
	}
	logger.Debugf("[scheduler] sweep start connections=%d", len(conns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for _, conn := range conns {
		conn := conn
		g.Go(func() error {
			report, err := s.service.Sync(gctx, conn.ID)
			switch {
			case err == nil:
				if report.Inserted > 0 {
					logger.Infof("[scheduler] conn=%s source=%s inserted=%d", conn.ID, conn.Source, report.Inserted)
				}
			case errors.Is(err, ErrSyncInProgress):
				logger.Debugf("[scheduler] conn=%s already syncing, skip", conn.ID)
			case IsCredentialError(err):
				logger.Warnf("[scheduler] conn=%s source=%s credentials unusable: %v", conn.ID, conn.Source, err)
			default:
				logger.Warnf("[scheduler] conn=%s source=%s sync failed: %v", conn.ID, conn.Source, err)
			}
			// A single bad connection must not cancel the rest of the sweep.
			return nil
		})
	}
	_ = g.Wait()
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper purges bundles older than the retention period on a cron schedule.
type Sweeper struct {
	store     Store
	retention time.Duration
	log       logrus.FieldLogger
	now       func() time.Time

	cronEngine *cron.Cron
}

// NewSweeper returns a stopped Sweeper.
func NewSweeper(store Store, retention time.Duration, log logrus.FieldLogger) *Sweeper {
	return &Sweeper{
		store:      store,
		retention:  retention,
		log:        log,
		now:        time.Now,
		cronEngine: cron.New(cron.WithLocation(time.Local)),
	}
}

// Start schedules the sweep at schedule, a standard five-field cron expression.
func (s *Sweeper) Start(schedule string) error {
	if _, err := s.cronEngine.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.log.WithError(err).Error("Bundle retention sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule bundle sweep %q: %w", schedule, err)
	}

	s.cronEngine.Start()
	s.log.WithField("schedule", schedule).Info("Bundle retention sweeper started")
	return nil
}

// Sweep purges once and returns the number of removed bundles.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.store.Purge(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithFields(logrus.Fields{"removed": n, "cutoff": cutoff}).Info("Purged expired dashboard bundles")
	}
	return n, nil
}

// Stop stops the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.log.Info("Bundle retention sweeper stopped")
}

// Package watch runs the console's periodic jobs: re-reading the local store
// so views notice changes made elsewhere, and housekeeping such as
// recycle-bin purges.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/logging"
	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's own messages into our logger.
type cronLogger struct {
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(context.Background(), "cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(context.Background(), "cron: "+msg, append(keysAndValues, "error", err)...)
}

type Scheduler struct {
	c *cron.Cron
}

// NewScheduler returns a stopped scheduler. Jobs that panic are recovered
// and a job still running when its next tick fires is skipped.
func NewScheduler(logger logging.Logger) *Scheduler {
	cl := cronLogger{logger: logger.With("module", "scheduler")}
	return &Scheduler{c: cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)}
}

// Every schedules fn at a fixed interval.
func (s *Scheduler) Every(interval time.Duration, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s", interval)
	}
	_, err := s.c.AddFunc("@every "+interval.String(), fn)
	return err
}

// Add schedules fn with a cron spec such as "@daily".
func (s *Scheduler) Add(spec string, fn func()) error {
	_, err := s.c.AddFunc(spec, fn)
	return err
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.c.Start()
	<-ctx.Done()
	<-s.c.Stop().Done()
}

// Package schedulersvc runs the periodic maintenance jobs of the app.
package schedulersvc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/lmsadmin/core"
)

// JobFunc does one run of a job and returns the number of rows it affected.
type JobFunc func(ctx context.Context) (int, error)

type Scheduler struct {
	cron    *cron.Cron
	logger  core.Logger
	timeout time.Duration
}

func New(logger core.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: time.Minute,
	}
}

// Add registers a job under a standard cron spec or a descriptor like "@hourly".
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, fn) }); err != nil {
		return errors.Wrapf(err, "scheduling %s (%q)", name, spec)
	}
	return nil
}

func (s *Scheduler) run(name string, fn JobFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked: "+name, errors.Errorf("%v", r))
		}
	}()

	n, err := fn(ctx)
	if err != nil {
		s.logger.Error("job failed: "+name, err)
		return
	}
	if n > 0 {
		s.logger.Info("job done: "+name, map[string]interface{}{"affected": n})
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

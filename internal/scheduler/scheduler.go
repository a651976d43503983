package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/markelira/elira-insight/internal/lock"
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/models"
	"github.com/markelira/elira-insight/models/platform"
	"github.com/markelira/elira-insight/monitor"
)

const (
	leaseTTL = 10 * time.Minute
)

// Job is one schedulable unit of work. Window returns the identity of the
// period a run at now covers; two runs with the same (name, window) are the
// same logical run and the second one is skipped.
type Job interface {
	Name() string
	Spec() string
	Window(now time.Time) time.Time
	Run(ctx context.Context, now time.Time) (int, error)
}

type Config struct {
	Timezone string `yaml:"timezone"`
}

// Scheduler drives the registered jobs from cron specs, with a persisted
// run record per (job, window) and an optional cross-replica lease.
type Scheduler struct {
	cr       *cron.Cron
	jobs     map[string]Job
	runs     RunStore
	locker   lock.Locker
	location *time.Location
}

func New(cfg Config, runs RunStore, locker lock.Locker) (*Scheduler, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "Europe/Budapest"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	if locker == nil {
		locker = lock.NewNoopLocker()
	}
	return &Scheduler{
		cr:       cron.New(cron.WithLocation(loc)),
		jobs:     make(map[string]Job),
		runs:     runs,
		locker:   locker,
		location: loc,
	}, nil
}

func (s *Scheduler) Register(job Job) error {
	if _, ok := s.jobs[job.Name()]; ok {
		return fmt.Errorf("job %s already registered", job.Name())
	}
	_, err := s.cr.AddFunc(job.Spec(), func() {
		ctx := context.Background()
		s.RunJob(ctx, job.Name(), time.Now().In(s.location))
	})
	if err != nil {
		return err
	}
	s.jobs[job.Name()] = job
	return nil
}

func (s *Scheduler) Has(name string) bool {
	_, ok := s.jobs[name]
	return ok
}

func (s *Scheduler) Start() error {
	s.cr.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	<-s.cr.Stop().Done()
	return nil
}

// RunJob runs one job for the window containing now. It is the single entry
// point for both cron fires and the manual admin trigger.
func (s *Scheduler) RunJob(ctx context.Context, name string, now time.Time) {
	job, ok := s.jobs[name]
	if !ok {
		log.Error(ctx).Str(log.KeyJob, name).Msg("run requested for unknown job")
		return
	}
	acquired, err := s.locker.Acquire(ctx, name, leaseTTL)
	if err != nil {
		log.Error(ctx).Err(err).Str(log.KeyJob, name).Msg("failed to acquire job lease")
		return
	}
	if !acquired {
		log.Info(ctx).Str(log.KeyJob, name).Msg("job lease held elsewhere, skip run")
		return
	}
	defer func() {
		if err := s.locker.Release(ctx, name); err != nil {
			log.Warn(ctx).Err(err).Str(log.KeyJob, name).Msg("failed to release job lease")
		}
	}()

	window := job.Window(now)
	done, err := s.runs.Completed(ctx, name, window)
	if err != nil {
		log.Error(ctx).Err(err).Str(log.KeyJob, name).Msg("failed to check job run history")
		return
	}
	if done {
		log.Info(ctx).Str(log.KeyJob, name).Time(log.KeyWindowStart, window).Msg("window already completed, skip run")
		return
	}

	run := &models.JobRun{
		Base:        platform.NewBase(ctx),
		Job:         name,
		WindowStart: window,
		StartedAt:   now,
		Status:      models.JobRunRunning,
	}
	if err := s.runs.Begin(ctx, run); err != nil {
		log.Error(ctx).Err(err).Str(log.KeyJob, name).Msg("failed to insert job run record")
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error(ctx).Str(log.KeyJob, name).Msgf("recovered job panic: %v", rec)
			s.runs.Finish(ctx, run, models.JobRunFailed, fmt.Sprintf("panic: %v", rec), 0)
			if aerr := monitor.SendPanicAlarm(ctx, name, rec); aerr != nil {
				log.Warn(ctx).Err(aerr).Str(log.KeyJob, name).Msg("failed to send panic alarm")
			}
		}
	}()

	log.Info(ctx).Str(log.KeyJob, name).Time(log.KeyWindowStart, window).Msgf("start job run at: %+v\n", now)
	count, err := job.Run(ctx, now)
	if err != nil {
		log.Error(ctx).Err(err).Str(log.KeyJob, name).Msgf("job run failed at %+v\n", time.Now())
		s.runs.Finish(ctx, run, models.JobRunFailed, err.Error(), count)
		if aerr := monitor.SendAlarm(ctx, name, err.Error()); aerr != nil {
			log.Warn(ctx).Err(aerr).Str(log.KeyJob, name).Msg("failed to send job alarm")
		}
		return
	}
	s.runs.Finish(ctx, run, models.JobRunSucceeded, "", count)
	log.Info(ctx).Str(log.KeyJob, name).Msgf("finish job run, spent %f seconds, wrote %d notifications\n", time.Since(now).Seconds(), count)
}

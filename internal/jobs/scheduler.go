package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"sipoma/internal/logging"
	"sipoma/internal/services"
)

const (
	PendingDigestJob         = "pending-approval-digest"
	NotificationRetentionJob = "notification-retention"
)

var ErrUnknownJob = errors.New("unknown job")

// Options sets the job intervals.
type Options struct {
	DigestInterval        time.Duration
	RetentionInterval     time.Duration
	NotificationRetention time.Duration
}

// JobScheduler runs the periodic admin inbox jobs.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	notifications services.NotificationService
	opts          Options
	log           logging.Logger
	jobs          map[string]gocron.Job
	mu            sync.RWMutex
}

// NewJobScheduler creates a scheduler with every job registered but not started.
func NewJobScheduler(notifications services.NotificationService, opts Options, log logging.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		notifications: notifications,
		opts:          opts,
		log:           log.With("component", "jobs"),
		jobs:          make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	if err := js.addJob(PendingDigestJob, js.opts.DigestInterval, js.RunPendingDigest); err != nil {
		return err
	}
	return js.addJob(NotificationRetentionJob, js.opts.RetentionInterval, js.RunNotificationRetention)
}

func (js *JobScheduler) addJob(name string, interval time.Duration, task func(context.Context) error) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx := context.Background()
			if err := task(ctx); err != nil {
				js.log.Error(ctx, "job failed", "job", name, "error", err)
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	return nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.Info(context.Background(), "starting background job scheduler", "jobs", len(js.jobs))
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler.
func (js *JobScheduler) Stop() error {
	js.log.Info(context.Background(), "stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// RunPendingDigest adds a digest notification when users await approval.
func (js *JobScheduler) RunPendingDigest(ctx context.Context) error {
	count, err := js.notifications.NotifyPendingDigest(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		js.log.Info(ctx, "pending approval digest sent", "pending", count)
	}
	return nil
}

// RunNotificationRetention deletes read notifications past retention.
func (js *JobScheduler) RunNotificationRetention(ctx context.Context) error {
	deleted, err := js.notifications.PurgeRead(ctx, js.opts.NotificationRetention)
	if err != nil {
		return err
	}
	js.log.Debug(ctx, "read notifications purged", "deleted", deleted)
	return nil
}

// RunNow triggers a registered job outside its schedule.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return ErrUnknownJob
	}
	return job.RunNow()
}

// JobStatus describes one registered job.
type JobStatus struct {
	Name    string    `json:"name"`
	LastRun time.Time `json:"last_run"`
	NextRun time.Time `json:"next_run"`
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(js.jobs))
	for name, job := range js.jobs {
		status := JobStatus{Name: name}
		if last, err := job.LastRun(); err == nil {
			status.LastRun = last
		}
		if next, err := job.NextRun(); err == nil {
			status.NextRun = next
		}
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

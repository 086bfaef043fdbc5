package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/janus/internal/logger"
)

// ErrUnknownJob is returned by RunNow for an unregistered job name
var ErrUnknownJob = errors.New("unknown job")

// Job is a named maintenance task on a cron schedule
type Job struct {
	Name     string
	Schedule string
	// RunOnStart also runs the job once when the orchestrator starts
	RunOnStart bool
	Run        func(ctx context.Context) error
}

// JobStatus is a job's run history for the status endpoint
type JobStatus struct {
	Name         string    `json:"name"`
	Schedule     string    `json:"schedule"`
	Runs         int64     `json:"runs"`
	Failures     int64     `json:"failures"`
	LastRun      time.Time `json:"last_run,omitempty"`
	LastDuration string    `json:"last_duration,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	NextRun      time.Time `json:"next_run,omitempty"`
}

// Config holds scheduler configuration
type Config struct {
	MaxRetries int           // Default: 3
	RetryDelay time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
	}
}

type registered struct {
	job     Job
	entryID cron.EntryID
	status  JobStatus
}

// Orchestrator runs the service's cron jobs
type Orchestrator struct {
	mu        sync.Mutex
	cron      *cron.Cron
	config    *Config
	jobs      map[string]*registered
	log       logrus.FieldLogger
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(config *Config, log logrus.FieldLogger) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}

	cronLog := cron.PrintfLogger(logger.WithComponent(log, "cron"))
	return &Orchestrator{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
		config: config,
		jobs:   make(map[string]*registered),
		log:    logger.WithComponent(log, "scheduler"),
		ctx:    context.Background(),
	}
}

// Register schedules a job. Names must be unique.
func (o *Orchestrator) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a run func")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already registered", job.Name)
	}

	reg := &registered{job: job, status: JobStatus{Name: job.Name, Schedule: job.Schedule}}
	id, err := o.cron.AddFunc(job.Schedule, func() {
		o.execute(o.runContext(), reg)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
	}
	reg.entryID = id
	o.jobs[job.Name] = reg
	return nil
}

// Start begins the cron loop and kicks off RunOnStart jobs in the background
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	o.ctx, o.cancel = context.WithCancel(ctx)
	o.cron.Start()
	o.isRunning = true

	for _, reg := range o.jobs {
		if reg.job.RunOnStart {
			go o.execute(o.ctx, reg)
		}
	}

	o.log.WithField("jobs", len(o.jobs)).Info("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.isRunning {
		o.mu.Unlock()
		return
	}
	o.isRunning = false
	cancel := o.cancel
	o.mu.Unlock()

	cancel()
	<-o.cron.Stop().Done()
	o.log.Info("Scheduler stopped")
}

// RunNow runs a job synchronously outside its schedule
func (o *Orchestrator) RunNow(ctx context.Context, name string) error {
	o.mu.Lock()
	reg, ok := o.jobs[name]
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return o.execute(ctx, reg)
}

// Status returns every job's status sorted by name
func (o *Orchestrator) Status() []JobStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]JobStatus, 0, len(o.jobs))
	for _, reg := range o.jobs {
		st := reg.status
		if o.isRunning {
			st.NextRun = o.cron.Entry(reg.entryID).Next
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Running reports whether the cron loop is active
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isRunning
}

func (o *Orchestrator) runContext() context.Context {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ctx
}

// execute runs the job with retries and records the outcome
func (o *Orchestrator) execute(ctx context.Context, reg *registered) error {
	log := logger.WithJob(o.log, reg.job.Name)
	start := time.Now()

	err := o.runWithRetry(ctx, reg.job, log)
	elapsed := time.Since(start)

	o.mu.Lock()
	reg.status.Runs++
	reg.status.LastRun = start.UTC()
	reg.status.LastDuration = elapsed.Round(time.Millisecond).String()
	reg.status.LastError = ""
	if err != nil {
		reg.status.Failures++
		reg.status.LastError = err.Error()
	}
	o.mu.Unlock()

	if err != nil {
		log.WithError(err).Error("Job failed")
		return err
	}
	log.WithField("duration", elapsed.String()).Debug("Job finished")
	return nil
}

func (o *Orchestrator) runWithRetry(ctx context.Context, job Job, log logrus.FieldLogger) error {
	var err error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		if err = job.Run(ctx); err == nil {
			return nil
		}

		log.WithError(err).WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": o.config.MaxRetries,
		}).Warn("Job attempt failed")

		if attempt == o.config.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.config.RetryDelay):
		}
	}
	return err
}

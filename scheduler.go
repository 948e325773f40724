package ember

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulableTask represents a task that can be scheduled
type SchedulableTask interface {
	Handle() error
	GetName() string
}

// ScheduledJob wraps a task with scheduling information
type ScheduledJob struct {
	task       SchedulableTask
	expression string
	lastRun    time.Time
	runCount   int64
	failCount  int64
	mutex      sync.RWMutex
}

// LastRun returns the time the job last executed
func (j *ScheduledJob) LastRun() time.Time {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	return j.lastRun
}

// RunCount returns how many times the job has executed
func (j *ScheduledJob) RunCount() int64 {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	return j.runCount
}

func (j *ScheduledJob) run() {
	j.mutex.Lock()
	j.lastRun = time.Now()
	j.runCount++
	j.mutex.Unlock()

	if err := j.task.Handle(); err != nil {
		j.mutex.Lock()
		j.failCount++
		j.mutex.Unlock()

		Error("Scheduled job failed", map[string]interface{}{
			"job":   j.task.GetName(),
			"error": err.Error(),
		})
	}
}

// funcTask adapts a plain function to SchedulableTask
type funcTask struct {
	name string
	fn   func() error
}

func (t *funcTask) Handle() error   { return t.fn() }
func (t *funcTask) GetName() string { return t.name }

// Schedule is a cron-backed task scheduler. It is itself a lifecycle-managed
// service: the cron loop starts on OnInit and stops on OnDestroy, so
// registering a *Schedule with the application is all it takes to run jobs
// for the lifetime of the process.
type Schedule struct {
	cron     *cron.Cron
	jobs     map[string]*ScheduledJob
	entryIDs map[string]cron.EntryID
	running  bool
	mutex    sync.RWMutex
}

// NewSchedule creates a stopped scheduler
func NewSchedule() *Schedule {
	return &Schedule{
		cron:     cron.New(),
		jobs:     make(map[string]*ScheduledJob),
		entryIDs: make(map[string]cron.EntryID),
	}
}

// Call schedules a plain function under the given name and cron expression
func (s *Schedule) Call(name, expression string, fn func() error) error {
	return s.Job(&funcTask{name: name, fn: fn}, expression)
}

// Job schedules a task with the given cron expression
func (s *Schedule) Job(task SchedulableTask, expression string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name := task.GetName()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job already scheduled: %s", name)
	}

	job := &ScheduledJob{task: task, expression: expression}
	entryID, err := s.cron.AddFunc(expression, job.run)
	if err != nil {
		return fmt.Errorf("invalid cron expression for %s: %w", name, err)
	}

	s.jobs[name] = job
	s.entryIDs[name] = entryID
	return nil
}

// GetJob returns a scheduled job by name
func (s *Schedule) GetJob(name string) (*ScheduledJob, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	job, exists := s.jobs[name]
	return job, exists
}

// RemoveJob unschedules a job by name
func (s *Schedule) RemoveJob(name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entryID, exists := s.entryIDs[name]
	if !exists {
		return fmt.Errorf("job not found: %s", name)
	}

	s.cron.Remove(entryID)
	delete(s.jobs, name)
	delete(s.entryIDs, name)
	return nil
}

// IsRunning reports whether the cron loop is active
func (s *Schedule) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.running
}

// Start begins the cron loop
func (s *Schedule) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}
	s.cron.Start()
	s.running = true

	Info("Scheduler started", map[string]interface{}{"jobs": len(s.jobs)})
	return nil
}

// Stop halts the cron loop, waiting for running jobs to finish
func (s *Schedule) Stop() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running {
		return nil
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	Info("Scheduler stopped", nil)
	return nil
}

// OnInit starts the scheduler as part of the service lifecycle
func (s *Schedule) OnInit() error {
	return s.Start()
}

// OnDestroy stops the scheduler as part of the service lifecycle. Safe to
// call even when the scheduler was never started.
func (s *Schedule) OnDestroy() error {
	return s.Stop()
}

// -----------------------------------------------------------------------
// Scheduler Service - cron-driven background maintenance jobs
// -----------------------------------------------------------------------

package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
)

// job tracks one registered maintenance task and its cron entry.
type job struct {
	name        string
	schedule    string
	description string
	handler     func() error
	enabled     bool
	entryID     cron.EntryID
	lastRun     *time.Time
	lastError   string
	isRunning   bool
}

// Service runs registered jobs on cron schedules. Jobs can be enabled and
// disabled at runtime; a disabled job keeps its registration but is
// removed from the cron runner.
type Service struct {
	cron   *cron.Cron
	jobs   map[string]*job
	mu     sync.RWMutex
	logger arbor.ILogger

	running bool
}

var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates a scheduler. Jobs are registered before Start.
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		jobs:   make(map[string]*job),
		logger: logger,
	}
}

// RegisterJob registers a named job. The schedule uses standard five-field
// cron syntax. Registration on a started scheduler takes effect immediately.
func (s *Service) RegisterJob(name string, schedule string, description string, handler func() error) error {
	if name == "" {
		return fmt.Errorf("job name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("job handler cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s is already registered", name)
	}

	j := &job{
		name:        name,
		schedule:    schedule,
		description: description,
		handler:     handler,
		enabled:     true,
	}

	entryID, err := s.cron.AddFunc(schedule, s.runner(j))
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, name, err)
	}
	j.entryID = entryID
	s.jobs[name] = j

	s.logger.Info().
		Str("job", name).
		Str("schedule", schedule).
		Msg("Job registered")
	return nil
}

// runner wraps a job handler with status tracking and panic containment.
func (s *Service) runner(j *job) func() {
	return func() {
		s.mu.Lock()
		if j.isRunning {
			s.mu.Unlock()
			s.logger.Warn().Str("job", j.name).Msg("Job still running; skipping this tick")
			return
		}
		j.isRunning = true
		s.mu.Unlock()

		started := time.Now().UTC()
		s.logger.Debug().Str("job", j.name).Msg("Job started")

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("job panicked: %v", r)
				}
			}()
			return j.handler()
		}()

		s.mu.Lock()
		j.isRunning = false
		j.lastRun = &started
		if err != nil {
			j.lastError = err.Error()
		} else {
			j.lastError = ""
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Error().Err(err).Str("job", j.name).Msg("Job failed")
			return
		}
		s.logger.Debug().
			Str("job", j.name).
			Str("duration", time.Since(started).String()).
			Msg("Job completed")
	}
}

// Start begins executing registered jobs on their schedules.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.cron.Start()
	s.running = true

	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for in-flight jobs to finish.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// IsRunning returns true if the scheduler is active.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// EnableJob re-adds a disabled job to the cron runner.
func (s *Service) EnableJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s is not registered", name)
	}
	if j.enabled {
		return nil
	}

	entryID, err := s.cron.AddFunc(j.schedule, s.runner(j))
	if err != nil {
		return fmt.Errorf("failed to re-enable job %s: %w", name, err)
	}
	j.entryID = entryID
	j.enabled = true

	s.logger.Info().Str("job", name).Msg("Job enabled")
	return nil
}

// DisableJob removes a job from the cron runner without unregistering it.
func (s *Service) DisableJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s is not registered", name)
	}
	if !j.enabled {
		return nil
	}

	s.cron.Remove(j.entryID)
	j.enabled = false

	s.logger.Info().Str("job", name).Msg("Job disabled")
	return nil
}

// GetJobStatus returns the status of a specific job.
func (s *Service) GetJobStatus(name string) (*interfaces.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, exists := s.jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %s is not registered", name)
	}
	return s.statusLocked(j), nil
}

// GetAllJobStatuses returns all job statuses keyed by name.
func (s *Service) GetAllJobStatuses() map[string]*interfaces.JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make(map[string]*interfaces.JobStatus, len(s.jobs))
	for name, j := range s.jobs {
		statuses[name] = s.statusLocked(j)
	}
	return statuses
}

func (s *Service) statusLocked(j *job) *interfaces.JobStatus {
	status := &interfaces.JobStatus{
		Name:        j.name,
		Enabled:     j.enabled,
		Schedule:    j.schedule,
		Description: j.description,
		LastRun:     j.lastRun,
		IsRunning:   j.isRunning,
		LastError:   j.lastError,
	}
	if j.enabled && s.running {
		entry := s.cron.Entry(j.entryID)
		if !entry.Next.IsZero() {
			next := entry.Next
			status.NextRun = &next
		}
	}
	return status
}

// Package jobs owns the job registry and the pipeline that drives each
// submitted job from queued to a terminal state.
package jobs

import (
	"fmt"
	"sync"

	"bizradar/models"
)

// Store is the in-memory job registry. Jobs live for the process lifetime;
// there is no eviction. Each job is mutated only by its own pipeline
// goroutine; the store serializes access so pollers always see a consistent
// snapshot.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*models.Job)}
}

// Create registers a new job in the queued state.
func (s *Store) Create(id string) *models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &models.Job{
		ID:            id,
		Status:        models.StatusQueued,
		CurrentAction: "Queued",
		Results:       []models.BusinessRecord{},
	}
	s.jobs[id] = job
	return job
}

// Snapshot returns a copy of the job, with the results slice duplicated so
// callers never alias the pipeline's working set.
func (s *Store) Snapshot(id string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	snap := *job
	snap.Results = make([]models.BusinessRecord, len(job.Results))
	copy(snap.Results, job.Results)
	return snap, true
}

// SetStatus advances the job's status and replaces its current action.
func (s *Store) SetStatus(id string, status models.JobStatus, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
		job.CurrentAction = action
	}
}

// SetAction updates the human-readable activity line without a status change.
func (s *Store) SetAction(id, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.CurrentAction = action
	}
}

// SetCenter records the resolved map center.
func (s *Store) SetCenter(id string, center *models.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Center = center
	}
}

// AppendResult freezes one record onto the job and bumps progress. The
// estimate is 10 + (found/max)*85, kept monotonically non-decreasing.
func (s *Store) AppendResult(id string, record models.BusinessRecord, maxResults int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	results := make([]models.BusinessRecord, len(job.Results), len(job.Results)+1)
	copy(results, job.Results)
	job.Results = append(results, record)

	if maxResults > 0 {
		progress := 10 + float64(len(job.Results))/float64(maxResults)*85
		if progress > job.Progress {
			job.Progress = progress
		}
	}
	job.CurrentAction = fmt.Sprintf("Analyzed %d businesses", len(job.Results))
}

// ResultCount returns how many records the job has accumulated so far.
func (s *Store) ResultCount(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if job, ok := s.jobs[id]; ok {
		return len(job.Results)
	}
	return 0
}

// SetProgress bumps progress, never letting it move backwards.
func (s *Store) SetProgress(id string, progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok && progress > job.Progress {
		job.Progress = progress
	}
}

// Complete moves the job to its successful terminal state.
func (s *Store) Complete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = models.StatusCompleted
		job.Progress = 100
		job.CurrentAction = "Analysis Complete"
	}
}

// Fail moves the job to its failed terminal state with the given message.
func (s *Store) Fail(id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = models.StatusFailed
		job.Error = message
		job.CurrentAction = "Failed"
	}
}

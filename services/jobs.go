package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealflow/models"
)

// Job-Zustände des In-Process-Batch-Scorings.
const (
	JobStateWaiting   = "waiting"
	JobStateActive    = "active"
	JobStateCompleted = "completed"
	JobStateFailed    = "failed"
)

// BatchJob ist der Zustand eines Batch-Scoring-Laufs. Progress läuft von 0
// bis 100.
type BatchJob struct {
	ID        string     `json:"id"`
	State     string     `json:"state"`
	Progress  int        `json:"progress"`
	DealIDs   []uint     `json:"deal_ids"`
	Succeeded []uint     `json:"succeeded"`
	Failed    []uint     `json:"failed"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// JobService führt Batch-Scorings im Hintergrund aus. Die Jobs leben nur im
// Prozess; nach einem Neustart sind sie weg.
type JobService struct {
	DB     *gorm.DB
	Scores *ScoreService
	Logger *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*BatchJob
}

// NewJobService erstellt eine neue Instanz des JobService.
func NewJobService(db *gorm.DB, scores *ScoreService, logger *zap.Logger) *JobService {
	return &JobService{
		DB:     db,
		Scores: scores,
		Logger: logger,
		jobs:   map[string]*BatchJob{},
	}
}

// EnqueueBatchScore legt einen Job an und startet ihn asynchron. Die ID kann
// sofort zum Abfragen des Fortschritts benutzt werden.
func (j *JobService) EnqueueBatchScore(dealIDs []uint, userID *uint, weights *models.ScoringWeights) *BatchJob {
	job := &BatchJob{
		ID:        uuid.NewString(),
		State:     JobStateWaiting,
		DealIDs:   dealIDs,
		Succeeded: []uint{},
		Failed:    []uint{},
		CreatedAt: time.Now().UTC(),
	}
	j.mu.Lock()
	j.jobs[job.ID] = job
	j.mu.Unlock()

	go j.run(job.ID, userID, weights)
	return job
}

func (j *JobService) run(jobID string, userID *uint, weights *models.ScoringWeights) {
	j.update(jobID, func(job *BatchJob) {
		now := time.Now().UTC()
		job.State = JobStateActive
		job.StartedAt = &now
	})

	j.mu.RLock()
	dealIDs := append([]uint(nil), j.jobs[jobID].DealIDs...)
	j.mu.RUnlock()

	ctx := context.Background()
	for i, id := range dealIDs {
		var startup models.Startup
		err := j.DB.First(&startup, id).Error
		if err == nil {
			_, err = j.Scores.RequestScore(ctx, &startup, userID, weights)
		}

		done := i + 1
		j.update(jobID, func(job *BatchJob) {
			if err != nil {
				job.Failed = append(job.Failed, id)
			} else {
				job.Succeeded = append(job.Succeeded, id)
			}
			job.Progress = done * 100 / len(dealIDs)
		})
		if err != nil {
			j.Logger.Warn("Batch scoring item failed",
				zap.String("job_id", jobID),
				zap.Uint("deal_id", id),
				zap.Error(err))
		}
	}

	j.update(jobID, func(job *BatchJob) {
		now := time.Now().UTC()
		job.EndedAt = &now
		job.Progress = 100
		if len(job.Succeeded) == 0 && len(job.DealIDs) > 0 {
			job.State = JobStateFailed
			job.Error = "all deals failed to score"
		} else {
			job.State = JobStateCompleted
		}
	})
	j.Logger.Info("Batch scoring finished", zap.String("job_id", jobID))
}

func (j *JobService) update(jobID string, fn func(*BatchJob)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if job, ok := j.jobs[jobID]; ok {
		fn(job)
	}
}

// GetJob liefert eine Momentaufnahme des Jobzustands.
func (j *JobService) GetJob(jobID string) (*BatchJob, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	job, ok := j.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot := *job
	snapshot.DealIDs = append([]uint(nil), job.DealIDs...)
	snapshot.Succeeded = append([]uint(nil), job.Succeeded...)
	snapshot.Failed = append([]uint(nil), job.Failed...)
	return &snapshot, nil
}

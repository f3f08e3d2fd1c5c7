package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// JobStatus is the poll-visible state of an evaluation job
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

const statusKeyPrefix = "evaluation_job_status:"

// StatusStore keeps job statuses in Redis with a TTL so pollers can
// follow a job without touching the session document.
type StatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusStore(client *redis.Client) *StatusStore {
	return &StatusStore{
		client: client,
		ttl:    12 * time.Hour,
	}
}

func (s *StatusStore) Update(ctx context.Context, jobID string, status JobStatus) error {
	key := statusKeyPrefix + jobID

	err := s.client.Set(ctx, key, string(status), s.ttl).Err()
	if err != nil {
		log.Error().Err(err).
			Str("jobId", jobID).
			Str("status", string(status)).
			Msg("Failed to update job status in Redis")
		return fmt.Errorf("failed to update job status: %w", err)
	}

	return nil
}

// Get returns the job status, or empty when the job is unknown or expired
func (s *StatusStore) Get(ctx context.Context, jobID string) (JobStatus, error) {
	value, err := s.client.Get(ctx, statusKeyPrefix+jobID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read job status: %w", err)
	}
	return JobStatus(value), nil
}

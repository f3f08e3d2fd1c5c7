package stream

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harini-sv/sheetcheck/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Producer enqueues evaluation jobs onto the Redis stream. The caller
// is handed a job id immediately and polls for completion.
type Producer struct {
	client    *redis.Client
	streamKey string
	status    *StatusStore
}

func NewProducer(client *redis.Client, streamKey string, status *StatusStore) *Producer {
	return &Producer{
		client:    client,
		streamKey: streamKey,
		status:    status,
	}
}

// Enqueue publishes one job per (interview, question) pair and marks it
// pending for status polling. The pending status is written before the
// message so a fast consumer's completed status is never overwritten.
func (p *Producer) Enqueue(ctx context.Context, job *models.EvaluationJob) (string, error) {
	job.JobID = uuid.New().String()

	if err := p.status.Update(ctx, job.JobID, JobPending); err != nil {
		log.Warn().Err(err).Str("jobId", job.JobID).Msg("Failed to mark job pending")
	}

	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamKey,
		Values: map[string]interface{}{
			"jobId":       job.JobID,
			"interviewId": job.InterviewID,
			"questionId":  job.QuestionID,
			"answerText":  job.AnswerText,
			"filePath":    job.FilePath,
		},
	}).Err()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Debug().
		Str("jobId", job.JobID).
		Str("interviewId", job.InterviewID).
		Str("questionId", job.QuestionID).
		Msg("Evaluation job enqueued")

	return job.JobID, nil
}

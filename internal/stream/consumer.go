package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harini-sv/sheetcheck/internal/evaluator"
	"github.com/harini-sv/sheetcheck/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Processor executes one evaluation job end to end
type Processor interface {
	ProcessEvaluation(ctx context.Context, job *models.EvaluationJob) error
}

// Consumer reads evaluation jobs from the Redis stream via a consumer
// group and hands them to the worker pool. Pending-entry recovery makes
// jobs survive a consumer crash.
type Consumer struct {
	client              *redis.Client
	streamKey           string
	consumerGroup       string
	consumerName        string
	processor           Processor
	pool                *evaluator.WorkerPool
	retryHandler        *RetryHandler
	status              *StatusStore
	retentionDuration   time.Duration
	pelRecoveryInterval time.Duration
	cleanupInterval     time.Duration
	lastPELCheck        time.Time
	lastCleanup         time.Time
}

func NewConsumer(
	client *redis.Client,
	streamKey string,
	consumerGroup string,
	consumerName string,
	processor Processor,
	pool *evaluator.WorkerPool,
	retryHandler *RetryHandler,
	status *StatusStore,
	retentionDuration time.Duration,
) *Consumer {
	return &Consumer{
		client:              client,
		streamKey:           streamKey,
		consumerGroup:       consumerGroup,
		consumerName:        consumerName,
		processor:           processor,
		pool:                pool,
		retryHandler:        retryHandler,
		status:              status,
		retentionDuration:   retentionDuration,
		pelRecoveryInterval: 30 * time.Second,
		cleanupInterval:     1 * time.Hour,
		lastPELCheck:        time.Now(),
		lastCleanup:         time.Now(),
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	if err := c.createConsumerGroup(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create consumer group, may already exist")
	}

	// Recover PEL messages on startup (handle crash recovery)
	if err := c.recoverPEL(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover PEL messages on startup")
	}
	c.lastPELCheck = time.Now()

	go c.runCleanupPeriodically(ctx)
	log.Info().
		Dur("cleanup_interval", c.cleanupInterval).
		Dur("retention", c.retentionDuration).
		Msg("Started stream cleanup goroutine")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.consume(ctx); err != nil {
				log.Error().Err(err).Msg("Error consuming messages")
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (c *Consumer) createConsumerGroup(ctx context.Context) error {
	// MKSTREAM will create the stream if it doesn't exist
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.consumerGroup, "$").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			log.Debug().
				Str("group", c.consumerGroup).
				Msg("Consumer group already exists")
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().
		Str("group", c.consumerGroup).
		Str("stream", c.streamKey).
		Msg("Created new consumer group")
	return nil
}

// recoverPEL claims messages left pending by a crashed consumer
func (c *Consumer) recoverPEL(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.consumerGroup,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()

	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("failed to get pending messages: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	minIdleTime := 1 * time.Minute
	messageIDs := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.Idle >= minIdleTime {
			messageIDs = append(messageIDs, p.ID)
		}
	}

	if len(messageIDs) == 0 {
		return nil
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		MinIdle:  minIdleTime,
		Messages: messageIDs,
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to claim messages: %w", err)
	}

	if len(claimed) > 0 {
		log.Info().
			Int("claimed", len(claimed)).
			Msg("Claimed idle PEL messages, reprocessing")
	}

	for _, msg := range claimed {
		if err := c.processMessage(ctx, &msg); err != nil {
			log.Error().
				Err(err).
				Str("message_id", msg.ID).
				Msg("Failed to process claimed PEL message")
		}
	}

	return nil
}

func (c *Consumer) consume(ctx context.Context) error {
	if time.Since(c.lastPELCheck) > c.pelRecoveryInterval {
		if err := c.recoverPEL(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to recover PEL messages")
		}
		c.lastPELCheck = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    10,
		Block:    time.Second,
	}).Result()

	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		if stream.Stream != c.streamKey {
			continue
		}

		for _, msg := range stream.Messages {
			if err := c.processMessage(ctx, &msg); err != nil {
				log.Error().
					Err(err).
					Str("message_id", msg.ID).
					Msg("Failed to process message")
			}
		}
	}

	return nil
}

// processMessage parses the evaluation job and submits it to the worker
// pool. Unparseable messages are acknowledged immediately to avoid
// endless redelivery.
func (c *Consumer) processMessage(ctx context.Context, msg *redis.XMessage) error {
	job, err := parseJob(msg)
	if err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to parse evaluation job")
		c.acknowledge(ctx, msg.ID)
		return err
	}

	return c.pool.Submit(&evaluationTask{
		consumer:  c,
		messageID: msg.ID,
		fields:    msg.Values,
		job:       job,
	})
}

func parseJob(msg *redis.XMessage) (*models.EvaluationJob, error) {
	fields := make(map[string]string)
	for key, val := range msg.Values {
		if value, ok := val.(string); ok {
			fields[key] = value
		}
	}

	job := &models.EvaluationJob{
		JobID:       fields["jobId"],
		InterviewID: fields["interviewId"],
		QuestionID:  fields["questionId"],
		AnswerText:  fields["answerText"],
		FilePath:    fields["filePath"],
	}
	if job.JobID == "" || job.InterviewID == "" || job.QuestionID == "" {
		return nil, fmt.Errorf("message %s is missing job fields", msg.ID)
	}
	return job, nil
}

// evaluationTask is the worker-pool unit for one queued evaluation
type evaluationTask struct {
	consumer  *Consumer
	messageID string
	fields    map[string]interface{}
	job       *models.EvaluationJob
}

func (t *evaluationTask) Execute(ctx context.Context) error {
	c := t.consumer

	err := c.retryHandler.RetryWithBackoff(ctx, func() error {
		return c.processor.ProcessEvaluation(ctx, t.job)
	}, t.messageID, t.fields)

	if err != nil {
		// Already parked on the dead-letter queue by the retry handler;
		// acknowledge so the PEL does not redeliver it forever.
		if statusErr := c.status.Update(ctx, t.job.JobID, JobFailed); statusErr != nil {
			log.Warn().Err(statusErr).Str("jobId", t.job.JobID).Msg("Failed to mark job failed")
		}
		c.acknowledge(ctx, t.messageID)
		return err
	}

	if err := c.status.Update(ctx, t.job.JobID, JobCompleted); err != nil {
		log.Warn().Err(err).Str("jobId", t.job.JobID).Msg("Failed to mark job completed")
	}

	return c.acknowledge(ctx, t.messageID)
}

// cleanupOldMessages removes messages older than the retention duration
func (c *Consumer) cleanupOldMessages(ctx context.Context) error {
	cutoffTime := time.Now().Add(-c.retentionDuration)
	minID := fmt.Sprintf("%d-0", cutoffTime.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}

	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Dur("retention", c.retentionDuration).
			Msg("Cleaned up old messages from stream")
	}

	return nil
}

func (c *Consumer) runCleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	if err := c.cleanupOldMessages(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to run initial cleanup")
	}
	c.lastCleanup = time.Now()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Cleanup goroutine shutting down")
			return
		case <-ticker.C:
			if err := c.cleanupOldMessages(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to cleanup old messages")
			}
			c.lastCleanup = time.Now()
		}
	}
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) error {
	err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, messageID).Err()
	if err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to acknowledge message")
		return err
	}

	return nil
}

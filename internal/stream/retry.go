package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxRetries = 3

// RetryHandler retries failed job processing with exponential backoff
// and parks messages that keep failing on a dead-letter list for
// operator inspection.
type RetryHandler struct {
	client        *redis.Client
	deadLetterKey string
}

func NewRetryHandler(client *redis.Client, deadLetterKey string) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
	}
}

// RetryWithBackoff runs fn up to maxRetries times. After the final
// failure the original message is copied to the dead-letter key and the
// last error is returned.
func (r *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	var lastErr error
	backoff := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		log.Warn().Err(lastErr).
			Str("message_id", messageID).
			Int("attempt", attempt).
			Msg("Job processing failed")

		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	r.sendToDeadLetter(ctx, messageID, fields, lastErr)
	return lastErr
}

func (r *RetryHandler) sendToDeadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error) {
	entry := map[string]interface{}{
		"message_id": messageID,
		"fields":     fields,
		"error":      cause.Error(),
		"failed_at":  time.Now().Format(time.RFC3339),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to marshal dead-letter entry")
		return
	}

	if err := r.client.LPush(ctx, r.deadLetterKey, payload).Err(); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to push to dead-letter queue")
		return
	}

	log.Error().
		Str("message_id", messageID).
		Str("dead_letter_key", r.deadLetterKey).
		Msg("Message sent to dead-letter queue")
}

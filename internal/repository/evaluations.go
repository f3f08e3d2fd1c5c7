package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/harini-sv/sheetcheck/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const evaluationsCollection = "evaluations"

type EvaluationsRepository struct {
	mongoRepo *MongoRepository
}

func NewEvaluationsRepository(mongoRepo *MongoRepository) *EvaluationsRepository {
	return &EvaluationsRepository{
		mongoRepo: mongoRepo,
	}
}

// SaveEvaluation upserts under the (interview, question) pair, so
// re-running a job overwrites rather than duplicates.
func (r *EvaluationsRepository) SaveEvaluation(ctx context.Context, evaluation *models.FinalEvaluation) error {
	if evaluation.CreatedAt.IsZero() {
		evaluation.CreatedAt = time.Now()
	}

	filter := bson.M{"interviewId": evaluation.InterviewID, "questionId": evaluation.QuestionID}

	err := r.mongoRepo.ReplaceOne(ctx, evaluationsCollection, filter, evaluation, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}

	return nil
}

func (r *EvaluationsRepository) GetEvaluationsByInterviewID(ctx context.Context, interviewID string) ([]*models.FinalEvaluation, error) {
	filter := bson.M{"interviewId": interviewID}

	cursor, err := r.mongoRepo.FindMany(ctx, evaluationsCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find evaluations: %w", err)
	}
	defer cursor.Close(ctx)

	var evaluations []*models.FinalEvaluation
	if err := cursor.All(ctx, &evaluations); err != nil {
		return nil, fmt.Errorf("failed to decode evaluations: %w", err)
	}

	return evaluations, nil
}

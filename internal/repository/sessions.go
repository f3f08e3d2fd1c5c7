package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/harini-sv/sheetcheck/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionsCollection = "interview_sessions"

// SessionsRepository stores the opaque session document keyed by
// interview id.
type SessionsRepository struct {
	mongoRepo *MongoRepository
}

func NewSessionsRepository(mongoRepo *MongoRepository) *SessionsRepository {
	return &SessionsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *SessionsRepository) InsertSession(ctx context.Context, session *models.InterviewSession) error {
	session.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, sessionsCollection, session)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

func (r *SessionsRepository) GetSession(ctx context.Context, interviewID string) (*models.InterviewSession, error) {
	filter := bson.M{"interviewId": interviewID}

	var session models.InterviewSession
	err := r.mongoRepo.FindOne(ctx, sessionsCollection, filter).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &session, nil
}

func (r *SessionsRepository) SaveSession(ctx context.Context, session *models.InterviewSession) error {
	filter := bson.M{"interviewId": session.InterviewID}

	err := r.mongoRepo.ReplaceOne(ctx, sessionsCollection, filter, session, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// SetAnswerStatus updates the evaluation status of the answer recorded
// for questionID without rewriting the rest of the document.
func (r *SessionsRepository) SetAnswerStatus(ctx context.Context, interviewID, questionID string, status models.EvaluationStatus) error {
	filter := bson.M{"interviewId": interviewID, "answers.questionId": questionID}
	update := bson.M{"$set": bson.M{"answers.$.evaluationStatus": status}}

	err := r.mongoRepo.UpdateOne(ctx, sessionsCollection, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update answer status: %w", err)
	}

	return nil
}

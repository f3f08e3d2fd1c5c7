package models

import (
	"time"
)

// SessionStatus is the interview lifecycle state
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// EvaluationStatus tracks an answer through the evaluation pipeline
type EvaluationStatus string

const (
	EvaluationPending   EvaluationStatus = "pending"
	EvaluationEvaluated EvaluationStatus = "evaluated"
	EvaluationFailed    EvaluationStatus = "failed"
)

// AnswerSubmission records one submitted answer. Submissions are
// append-only; only EvaluationStatus mutates after creation.
type AnswerSubmission struct {
	QuestionID       string           `bson:"questionId" json:"question_id"`
	AnswerText       string           `bson:"answerText" json:"answer_text"`
	FilePath         string           `bson:"filePath,omitempty" json:"file_path,omitempty"`
	SubmittedAt      time.Time        `bson:"submittedAt" json:"submitted_at"`
	EvaluationStatus EvaluationStatus `bson:"evaluationStatus" json:"evaluation_status"`
}

// InterviewSession is the opaque session document stored per interview id.
// The question sequence is fixed at creation; CurrentQuestionIndex only
// increases and the session completes exactly when it reaches the
// question count.
type InterviewSession struct {
	InterviewID          string             `bson:"interviewId" json:"interview_id"`
	CandidateID          string             `bson:"candidateId" json:"candidate_id"`
	CandidateName        string             `bson:"candidateName" json:"candidate_name"`
	Role                 string             `bson:"role" json:"role"`
	Difficulty           string             `bson:"difficulty" json:"difficulty"`
	Questions            []Question         `bson:"questions" json:"questions"`
	CurrentQuestionIndex int                `bson:"currentQuestionIndex" json:"current_question_index"`
	Answers              []AnswerSubmission `bson:"answers" json:"answers"`
	Status               SessionStatus      `bson:"status" json:"status"`
	CreatedAt            time.Time          `bson:"createdAt" json:"created_at"`
}

// EvaluationJob is the payload carried on the evaluation stream,
// one job per (interview, question) pair.
type EvaluationJob struct {
	JobID       string `json:"job_id"`
	InterviewID string `json:"interview_id"`
	QuestionID  string `json:"question_id"`
	AnswerText  string `json:"answer_text"`
	FilePath    string `json:"file_path,omitempty"`
}

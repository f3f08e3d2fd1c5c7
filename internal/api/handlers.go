package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harini-sv/sheetcheck/internal/config"
	"github.com/harini-sv/sheetcheck/internal/interview"
	"github.com/harini-sv/sheetcheck/internal/stream"
	"github.com/rs/zerolog/log"
)

// Handler holds dependencies for handlers
type Handler struct {
	cfg          *config.Config
	interviewSvc *interview.Service
	jobStatus    *stream.StatusStore
}

func NewHandler(cfg *config.Config, interviewSvc *interview.Service, jobStatus *stream.StatusStore) *Handler {
	return &Handler{
		cfg:          cfg,
		interviewSvc: interviewSvc,
		jobStatus:    jobStatus,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"mock_mode": h.cfg.MockMode,
	})
}

// CreateInterviewRequest is the payload to open a new interview
type CreateInterviewRequest struct {
	CandidateName string `json:"candidate_name" binding:"required"`
	Role          string `json:"role" binding:"required"`
	Difficulty    string `json:"difficulty" binding:"required"`
}

func (h *Handler) CreateInterview(c *gin.Context) {
	var req CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	ctx := c.Request.Context()
	session, err := h.interviewSvc.Create(ctx, req.CandidateName, req.Role, req.Difficulty)
	if err != nil {
		if errors.Is(err, interview.ErrNoQuestions) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "No questions available for specified criteria",
				Code:  "NO_QUESTIONS",
			})
			return
		}
		log.Error().Err(err).Msg("Failed to create interview")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to create interview",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	first := session.Questions[0]
	c.JSON(http.StatusOK, gin.H{
		"interview_id": session.InterviewID,
		"first_question": gin.H{
			"id":         first.ID,
			"text":       first.Text,
			"type":       first.Type,
			"time_limit": first.TimeLimitSeconds,
		},
	})
}

func (h *Handler) NextQuestion(c *gin.Context) {
	interviewID := c.Param("id")
	ctx := c.Request.Context()

	question, progress, completed, err := h.interviewSvc.NextQuestion(ctx, interviewID)
	if err != nil {
		if errors.Is(err, interview.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "Interview not found",
				Code:  "NOT_FOUND",
			})
			return
		}
		log.Error().Err(err).Str("interviewId", interviewID).Msg("Failed to get next question")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to get next question",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	if completed {
		c.JSON(http.StatusOK, gin.H{
			"status":     "completed",
			"report_url": fmt.Sprintf("/api/v1/interviews/%s/report", interviewID),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"question": gin.H{
			"id":         question.ID,
			"text":       question.Text,
			"type":       question.Type,
			"time_limit": question.TimeLimitSeconds,
		},
		"progress": progress,
	})
}

func (h *Handler) SubmitAnswer(c *gin.Context) {
	interviewID := c.Param("id")
	ctx := c.Request.Context()

	answerText := c.PostForm("answer_text")
	if answerText == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "answer_text is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	filePath := ""
	if file, err := c.FormFile("file"); err == nil {
		if file.Size > h.cfg.MaxFileSize {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "Uploaded file exceeds size limit",
				Code:  "FILE_TOO_LARGE",
			})
			return
		}

		dir := filepath.Join(h.cfg.UploadDir, interviewID)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("Failed to create upload directory")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "Failed to store upload",
				Code:  "INTERNAL_ERROR",
			})
			return
		}

		filePath = filepath.Join(dir, uuid.New().String()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, filePath); err != nil {
			log.Error().Err(err).Str("path", filePath).Msg("Failed to save uploaded file")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "Failed to store upload",
				Code:  "INTERNAL_ERROR",
			})
			return
		}
	}

	jobID, err := h.interviewSvc.SubmitAnswer(ctx, interviewID, answerText, filePath)
	if err != nil {
		switch {
		case errors.Is(err, interview.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "Interview not found",
				Code:  "NOT_FOUND",
			})
		case errors.Is(err, interview.ErrInterviewComplete):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "No more questions available",
				Code:  "INTERVIEW_COMPLETE",
			})
		default:
			log.Error().Err(err).Str("interviewId", interviewID).Msg("Failed to submit answer")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "Failed to submit answer",
				Code:  "INTERNAL_ERROR",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"evaluation_pending": true,
		"estimated_time_sec": 15,
		"job_id":             jobID,
	})
}

func (h *Handler) JobStatus(c *gin.Context) {
	jobID := c.Param("jobId")

	status, err := h.jobStatus.Get(c.Request.Context(), jobID)
	if err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("Failed to read job status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to read job status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if status == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Job not found",
			Code:  "NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id": jobID,
		"status": status,
	})
}

func (h *Handler) Report(c *gin.Context) {
	interviewID := c.Param("id")

	report, err := h.interviewSvc.Report(c.Request.Context(), interviewID)
	if err != nil {
		if errors.Is(err, interview.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "Interview not found",
				Code:  "NOT_FOUND",
			})
			return
		}
		log.Error().Err(err).Str("interviewId", interviewID).Msg("Failed to generate report")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to generate report",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

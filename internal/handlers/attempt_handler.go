package handlers

import (
	"context"
	"net/http"

	"assessment-service/internal/grading"
	"assessment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	Service *service.AttemptService
}

func NewAttemptHandler(s *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{Service: s}
}

// StartAttempt admits a new attempt against the test in the path, subject
// to the test's max-attempts ceiling. The response carries the question
// tree without the answer key so the client can render immediately.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}

	attempt, err := h.Service.Start(context.Background(), identity, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	questions, err := h.Service.QuestionsForAttempt(context.Background(), attempt.TestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attempt": attempt, "questions": questions})
}

// SubmitAttempt records the caller's answers and auto-grades whatever the
// answer key covers.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}

	var body struct {
		Answers []grading.SubmittedAnswer `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.Submit(context.Background(), identity, c.Param("id"), body.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GradeAttempt applies a grader's per-question awards to a submitted
// attempt. Supervisor or admin only.
func (h *AttemptHandler) GradeAttempt(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	if !identity.CanGrade() {
		c.JSON(http.StatusForbidden, gin.H{"error": "supervisor or admin role required"})
		return
	}

	var body struct {
		Awards   []grading.ManualAward `json:"awards" binding:"required"`
		Feedback string                `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.Grade(context.Background(), identity, c.Param("id"), body.Awards, body.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	detail, err := h.Service.Get(context.Background(), identity, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// PendingGrading lists submitted attempts awaiting manual review.
func (h *AttemptHandler) PendingGrading(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	if !identity.CanGrade() {
		c.JSON(http.StatusForbidden, gin.H{"error": "supervisor or admin role required"})
		return
	}
	attempts, err := h.Service.PendingGrading(context.Background())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

// MyResults lists the caller's graded attempts.
func (h *AttemptHandler) MyResults(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	attempts, err := h.Service.ResultsByUser(context.Background(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

// MyNotifications lists the caller's in-app notifications.
func (h *AttemptHandler) MyNotifications(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	notifications, err := h.Service.NotificationsForUser(context.Background(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// UserResults lists graded attempts for the user in the path.
func (h *AttemptHandler) UserResults(c *gin.Context) {
	attempts, err := h.Service.ResultsByUser(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

package handlers

import (
	"context"
	"net/http"

	"assessment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	Service *service.TestService
}

func NewTestHandler(s *service.TestService) *TestHandler {
	return &TestHandler{Service: s}
}

// CreateTest accepts the full test tree (test, questions, options) and
// persists it atomically. Supervisor or admin only.
func (h *TestHandler) CreateTest(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	if !identity.CanGrade() {
		c.JSON(http.StatusForbidden, gin.H{"error": "supervisor or admin role required"})
		return
	}

	var input service.CreateTestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, questions, err := h.Service.CreateTest(context.Background(), identity, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"test": test, "questions": questions})
}

// GetTest returns the test with its questions. Options are stripped of
// the answer key unless the caller has grading authority.
func (h *TestHandler) GetTest(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	detail, err := h.Service.GetTest(context.Background(), identity, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *TestHandler) UpdateTest(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	if !identity.CanGrade() {
		c.JSON(http.StatusForbidden, gin.H{"error": "supervisor or admin role required"})
		return
	}

	var input service.UpdateTestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.Service.UpdateTest(context.Background(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, test)
}

func (h *TestHandler) ListByCourse(c *gin.Context) {
	tests, err := h.Service.ListByCourse(context.Background(), c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": tests})
}

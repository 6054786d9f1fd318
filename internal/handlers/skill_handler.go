package handlers

import (
	"context"
	"net/http"
	"time"

	"assessment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SkillHandler struct {
	Service *service.SkillService
}

func NewSkillHandler(s *service.SkillService) *SkillHandler {
	return &SkillHandler{Service: s}
}

func (h *SkillHandler) CreateSkill(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	if !identity.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	var body struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	skill, err := h.Service.CreateSkill(context.Background(), body.Name, body.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, skill)
}

func (h *SkillHandler) ListSkills(c *gin.Context) {
	skills, err := h.Service.ListSkills(context.Background())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

func (h *SkillHandler) GetSkill(c *gin.Context) {
	skill, err := h.Service.GetSkill(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, skill)
}

// LinkCourseSkill registers how strongly a course contributes to a skill.
// Admin only.
func (h *SkillHandler) LinkCourseSkill(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	if !identity.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	var body struct {
		CourseID string  `json:"course_id" binding:"required"`
		SkillID  string  `json:"skill_id" binding:"required"`
		Weight   float64 `json:"weight"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.LinkCourseSkill(context.Background(), body.CourseID, body.SkillID, body.Weight); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "linked"})
}

// IngestCompletion records a course completion reported by the course
// service, which feeds skill recalculation.
func (h *SkillHandler) IngestCompletion(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	if !identity.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	var body struct {
		UserID      string     `json:"user_id" binding:"required"`
		CourseID    string     `json:"course_id" binding:"required"`
		CompletedAt *time.Time `json:"completed_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	completedAt := time.Time{}
	if body.CompletedAt != nil {
		completedAt = *body.CompletedAt
	}
	if err := h.Service.IngestCompletion(context.Background(), body.UserID, body.CourseID, completedAt); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recorded"})
}

// Recalculate rebuilds a user's derived skill levels on demand.
func (h *SkillHandler) Recalculate(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	userID := c.Param("userId")
	if userID != identity.UserID && !identity.CanGrade() {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot recalculate another user's skills"})
		return
	}

	skills, err := h.Service.Recalculate(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

// PublicUserSkills returns stored skill levels without an identity check;
// levels are derived data, not answer material.
func (h *SkillHandler) PublicUserSkills(c *gin.Context) {
	skills, err := h.Service.UserSkills(context.Background(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

// UserSkills returns the stored skill levels for a user.
func (h *SkillHandler) UserSkills(c *gin.Context) {
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	userID := c.Param("userId")
	if userID != identity.UserID && !identity.CanGrade() {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot view another user's skills"})
		return
	}

	skills, err := h.Service.UserSkills(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

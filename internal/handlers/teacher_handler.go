package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

type TeacherHandler struct {
	BaseHandler
	reviewService   services.ReviewService
	identityService services.IdentityService
}

func NewTeacherHandler(reviewService services.ReviewService, identityService services.IdentityService, logger utils.Logger) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler:     NewBaseHandler(logger),
		reviewService:   reviewService,
		identityService: identityService,
	}
}

// GetFeed returns the newest submissions across all of the teacher's quizzes
// @Router /teacher/feed [get]
func (h *TeacherHandler) GetFeed(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	feed, err := h.reviewService.TeacherFeed(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": feed})
}

// @Router /teacher/emails [post]
func (h *TeacherHandler) AddTeacherEmail(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.TeacherEmailRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.identityService.AddTeacherEmail(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// @Router /teacher/emails/{email} [delete]
func (h *TeacherHandler) RemoveTeacherEmail(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	email := ParseStringIDParam(c, "email")
	if email == "" {
		return
	}

	if err := h.identityService.RemoveTeacherEmail(c.Request.Context(), actor, email); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

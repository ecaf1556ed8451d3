package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

type ClassHandler struct {
	BaseHandler
	classService  services.ClassService
	reviewService services.ReviewService
}

func NewClassHandler(classService services.ClassService, reviewService services.ReviewService, logger utils.Logger) *ClassHandler {
	return &ClassHandler{
		BaseHandler:   NewBaseHandler(logger),
		classService:  classService,
		reviewService: reviewService,
	}
}

// @Router /classes [post]
func (h *ClassHandler) CreateClass(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.CreateClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	class, err := h.classService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

// ListClasses lists the teacher's classes, creating the default class on
// first use
// @Router /classes [get]
func (h *ClassHandler) ListClasses(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if _, err := h.classService.EnsureDefaultClass(c.Request.Context(), actor); err != nil {
		h.handleServiceError(c, err)
		return
	}
	classes, err := h.classService.ListForTeacher(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// @Router /classes/{id} [put]
func (h *ClassHandler) RenameClass(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.RenameClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	class, err := h.classService.Rename(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *ClassHandler) ArchiveClass(c *gin.Context)   { h.setArchived(c, true) }
func (h *ClassHandler) UnarchiveClass(c *gin.Context) { h.setArchived(c, false) }

func (h *ClassHandler) setArchived(c *gin.Context, archived bool) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	class, err := h.classService.SetArchived(c.Request.Context(), actor, id, archived)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// @Router /classes/{id} [delete]
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Deleting class", "class_id", id)
	if err := h.classService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Router /classes/{id}/enrollments [post]
func (h *ClassHandler) EnrollStudent(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.EnrollStudentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.classService.Enroll(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// @Router /classes/{id}/enrollments/{student_id} [delete]
func (h *ClassHandler) UnenrollStudent(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	if err := h.classService.Unenroll(c.Request.Context(), actor, id, studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Router /classes/{id}/roster [get]
func (h *ClassHandler) GetRoster(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	roster, err := h.classService.Roster(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": roster})
}

// @Router /classes/{id}/submissions [get]
func (h *ClassHandler) GetClassSubmissions(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	grouped, err := h.reviewService.ClassSubmissions(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": grouped})
}

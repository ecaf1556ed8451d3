package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	reviewService services.ReviewService
}

func NewQuizHandler(quizService services.QuizService, reviewService services.ReviewService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		reviewService: reviewService,
	}
}

// CreateQuiz creates a quiz owned by the calling teacher
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.CreateQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

// ListQuizzes lists a teacher's own quizzes, or for a student the quizzes of
// every class they are enrolled in
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	list := h.quizService.ListForStudent
	if actor.IsTeacher() {
		list = h.quizService.ListForTeacher
	}
	quizzes, err := list(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	quiz, err := h.quizService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// @Router /quizzes/{id} [put]
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.UpdateQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Deleting quiz", "quiz_id", id)
	if err := h.quizService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuizHandler) LockQuiz(c *gin.Context)   { h.setLocked(c, true) }
func (h *QuizHandler) UnlockQuiz(c *gin.Context) { h.setLocked(c, false) }

func (h *QuizHandler) setLocked(c *gin.Context, locked bool) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	quiz, err := h.quizService.SetLocked(c.Request.Context(), actor, id, locked)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// GetQuizSubmissions returns the quiz's submissions grouped per student
// @Router /quizzes/{id}/submissions [get]
func (h *QuizHandler) GetQuizSubmissions(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	results, err := h.reviewService.QuizSubmissions(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ExportQuizResults downloads the quiz results as an xlsx workbook
// @Router /quizzes/{id}/export [get]
func (h *QuizHandler) ExportQuizResults(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	data, filename, err := h.reviewService.ExportQuizResults(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// MigrateLegacyQuizzes moves the teacher's classless quizzes into the
// default class
// @Router /quizzes/migrate [post]
func (h *QuizHandler) MigrateLegacyQuizzes(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	moved, err := h.quizService.MigrateLegacyQuizzes(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"migrated": moved})
}

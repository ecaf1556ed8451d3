package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// GetOverview returns the attempt allowance of every quiz the student can see
// @Router /attempts/overview [get]
func (h *AttemptHandler) GetOverview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	overview, err := h.attemptService.Overview(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": overview})
}

// StartAttempt returns a fresh attempt session: the question order to use
// and any answers carried over from the previous attempt. Every call
// reshuffles and nothing is stored server-side, so clients must cache the
// returned question order for the rest of the attempt.
// @Router /attempts/start/{quiz_id} [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	quizID := ParseStringIDParam(c, "quiz_id")
	if quizID == "" {
		return
	}

	session, err := h.attemptService.Start(c.Request.Context(), actor, quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SubmitAttempt grades and stores an attempt. A grading outage still answers
// 201; the response flags that the attempt awaits teacher review.
// @Router /attempts/submit/{quiz_id} [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	quizID := ParseStringIDParam(c, "quiz_id")
	if quizID == "" {
		return
	}
	var req services.SubmitAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting attempt", "quiz_id", quizID, "answers", len(req.Answers))
	resp, err := h.attemptService.Submit(c.Request.Context(), actor, quizID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Router /attempts/history [get]
func (h *AttemptHandler) GetHistory(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	history, err := h.attemptService.History(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// ReturnAttempt deletes a submission, giving the attempt back
// @Router /attempts/{id} [delete]
func (h *AttemptHandler) ReturnAttempt(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.attemptService.ReturnAttempt(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

// GradingProxy is the grading backend behind POST /api/grade
type GradingProxy interface {
	grading.Service
	Configured() bool
}

// GradingHandler serves the grading endpoint. Its error bodies use the
// {"error": "..."} shape the grading client expects.
type GradingHandler struct {
	BaseHandler
	proxy    GradingProxy
	validate *validator.Validate
}

func NewGradingHandler(proxy GradingProxy, logger utils.Logger) *GradingHandler {
	return &GradingHandler{
		BaseHandler: NewBaseHandler(logger),
		proxy:       proxy,
		validate:    validator.New(),
	}
}

// Grade evaluates a set of answers with the configured language model
// @Router /api/grade [post]
func (h *GradingHandler) Grade(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		c.JSON(http.StatusMethodNotAllowed, grading.ErrorBody{Error: "Method not allowed"})
		return
	}

	var req grading.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, grading.ErrorBody{Error: "Invalid JSON body"})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, grading.ErrorBody{Error: "questions must be a non-empty list of {id, text}"})
		return
	}

	if h.proxy == nil || !h.proxy.Configured() {
		h.LogError(c, grading.ErrNotConfigured, "Grading request rejected")
		c.JSON(http.StatusInternalServerError, grading.ErrorBody{Error: grading.ErrNotConfigured.Error()})
		return
	}

	evaluations, err := h.proxy.Grade(c.Request.Context(), req)
	if err != nil {
		h.LogError(c, err, "Grading failed", "questions", len(req.Questions))
		message := "Grading failed"
		if errors.Is(err, grading.ErrNotConfigured) {
			message = grading.ErrNotConfigured.Error()
		}
		c.JSON(http.StatusInternalServerError, grading.ErrorBody{Error: message})
		return
	}
	c.JSON(http.StatusOK, grading.GradeResponse{Evaluations: evaluations})
}

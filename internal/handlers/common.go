package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	CodeValidation       = "VALIDATION_FAILED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// LogRequest logs an incoming request with the caller's identity
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"user_id", c.GetString(ContextUserID),
	}
	fields = append(fields, additionalFields...)
	h.log(c).Debug(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"user_id", c.GetString(ContextUserID),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.log(c).LogError(err, message, fields...)
}

// actor returns the authenticated caller, answering 401 when there is none
func (h *BaseHandler) actor(c *gin.Context) (services.Actor, bool) {
	actor, ok := ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return services.Actor{}, false
	}
	return actor, true
}

// bindJSON decodes the body into req, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
			Code:    CodeValidation,
		})
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses. Anything it does
// not recognise is a 500 and is logged.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
			Code:    CodeValidation,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.respondPermissionDenied(c, permissionError)
		return
	}

	switch {
	case errors.Is(err, services.ErrTeacherOnly):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Only teachers can do this. Ask an existing teacher to add your email to the teacher list.",
			Code:    CodePermissionDenied,
		})
	case services.IsUnauthorized(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: err.Error(),
			Code:    CodePermissionDenied,
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: capitalize(err.Error()),
			Code:    CodeNotFound,
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: capitalize(err.Error()),
			Code:    CodeConflict,
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Code:    CodeInternal,
		})
	}
}

// respondPermissionDenied answers a refused write. When an access rule
// refused it the message tells the user what to check; otherwise the cause
// is unknown and the generic message is used.
func (h *BaseHandler) respondPermissionDenied(c *gin.Context, pe *services.PermissionError) {
	message := "The request was refused for an unknown reason. Try again or contact your teacher."
	if pe.RulesDenied {
		message = fmt.Sprintf("You are not allowed to %s this %s (%s). Check that you are signed in with the account that owns it.",
			pe.Action, pe.Resource, pe.Reason)
	}
	c.JSON(http.StatusForbidden, ErrorResponse{
		Message: message,
		Details: map[string]interface{}{
			"resource":     pe.Resource,
			"action":       pe.Action,
			"reason":       pe.Reason,
			"rules_denied": pe.RulesDenied,
		},
		Code: CodePermissionDenied,
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// HealthCheck reports that the process is serving
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-service",
	})
}

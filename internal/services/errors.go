package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Quiz specific errors
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizAccessDenied = errors.New("access denied to quiz")
	ErrQuizLocked       = errors.New("quiz is locked")

	// Class specific errors
	ErrClassNotFound             = errors.New("class not found")
	ErrClassAccessDenied         = errors.New("access denied to class")
	ErrClassArchived             = errors.New("class is archived and cannot receive new quizzes")
	ErrDefaultClassNotDeletable  = errors.New("the default class cannot be deleted")
	ErrDefaultClassNotArchivable = errors.New("the default class cannot be archived")

	// Attempt specific errors
	ErrNotEnrolled            = errors.New("student is not enrolled in the quiz's class")
	ErrAttemptLimitExceeded   = errors.New("maximum attempts exceeded")
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrSubmissionAccessDenied = errors.New("access denied to submission")

	// User/Permission errors
	ErrTeacherOnly            = errors.New("only teachers can perform this action")
	ErrTeacherEmailNotFound   = errors.New("teacher email not found")
	ErrCannotRemoveOwnTeacher = errors.New("teachers cannot remove their own email")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// PermissionError is returned when a write is refused. RulesDenied is true
// when an access rule (ownership here, or a database privilege) refused it;
// false means the failure could not be attributed to a rule.
type PermissionError struct {
	UserID      string `json:"user_id"`
	ResourceID  string `json:"resource_id"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Reason      string `json:"reason"`
	RulesDenied bool   `json:"rules_denied"`
	Err         error  `json:"-"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return pe.Err
}

// ===== ERROR HELPERS =====

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// NewPermissionError builds a rule-based denial wrapping sentinel, so callers
// can still match the specific cause with errors.Is.
func NewPermissionError(userID, resourceID, resource, action, reason string, sentinel error) *PermissionError {
	return &PermissionError{
		UserID:      userID,
		ResourceID:  resourceID,
		Resource:    resource,
		Action:      action,
		Reason:      reason,
		RulesDenied: true,
		Err:         sentinel,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrTeacherEmailNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrQuizAccessDenied) ||
		errors.Is(err, ErrClassAccessDenied) ||
		errors.Is(err, ErrSubmissionAccessDenied) ||
		errors.Is(err, ErrNotEnrolled) ||
		errors.Is(err, ErrTeacherOnly)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrQuizLocked) ||
		errors.Is(err, ErrAttemptLimitExceeded) ||
		errors.Is(err, ErrClassArchived) ||
		errors.Is(err, ErrDefaultClassNotDeletable) ||
		errors.Is(err, ErrDefaultClassNotArchivable) ||
		errors.Is(err, ErrCannotRemoveOwnTeacher)
}

// Package server provides the HTTP API for the upskill advisor.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/upskill-advisor/internal/safety"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrCourseNotFound indicates the course id is not in the catalog
type ErrCourseNotFound struct {
	CourseID string
}

func (e *ErrCourseNotFound) Error() string {
	return fmt.Sprintf("course not found: %s", e.CourseID)
}

// ErrRunNotFound indicates no stored advice run has the id
type ErrRunNotFound struct {
	RunID string
}

func (e *ErrRunNotFound) Error() string {
	return fmt.Sprintf("run not found: %s", e.RunID)
}

// ErrRunsDisabled is returned by run history routes when no store is configured.
var ErrRunsDisabled = errors.New("run history is not enabled")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var courseErr *ErrCourseNotFound
	var runErr *ErrRunNotFound

	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &validationErr), errors.Is(err, safety.ErrUnsafeInput):
		return http.StatusBadRequest
	case errors.As(err, &courseErr), errors.As(err, &runErr):
		return http.StatusNotFound
	case errors.Is(err, ErrRunsDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text returned to clients.
func publicMessage(err error) string {
	var courseErr *ErrCourseNotFound
	var runErr *ErrRunNotFound

	switch {
	case errors.Is(err, safety.ErrUnsafeInput):
		return "Potentially unsafe input"
	case errors.As(err, &courseErr):
		return "Course not found"
	case errors.As(err, &runErr):
		return "Run not found"
	case HTTPStatus(err) == http.StatusInternalServerError:
		return "Internal server error"
	default:
		return err.Error()
	}
}

// validationError converts a validator failure into an ErrValidation naming
// the first offending field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("failed on '%s'", fe.Tag())}
	}
	return &ErrValidation{Field: "request", Message: err.Error()}
}

package app

import (
	"fmt"
	"net/http"
)

// DomainError is a service-level error that carries its own HTTP mapping.
// mapError unwraps it at the handler boundary.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func notFound(entity string) *DomainError {
	return &DomainError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: entity + " not found",
	}
}

func validationError(message string, details any) *DomainError {
	return &DomainError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Details: details,
	}
}

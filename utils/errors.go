package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds used across the application.
const (
	KindValidation    = "validation"
	KindInUse         = "in_use"
	KindNotFound      = "not_found"
	KindPermission    = "permission"
	KindConfiguration = "configuration"
)

type AppError struct {
	Kind    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewInUseError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInUse, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewPermissionError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

func NewConfigurationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// HTTPStatus maps an error to the HTTP status it should be reported with.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindInUse:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusForbidden
	case KindConfiguration:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

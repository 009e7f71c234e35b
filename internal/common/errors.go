package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match collaborator failures by code as well as by cause chain.
func (e *AppError) Is(target error) bool {
	return target == ErrCollaborator && e.Code == CodeCollaboratorFailure
}

// CodeCollaboratorFailure marks rasterizer or OCR engine failures.
const CodeCollaboratorFailure = "COLLABORATOR_FAILURE"

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
	ErrCollaborator = errors.New("external collaborator failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CollaboratorError wraps a rasterizer/OCR failure for the named document.
func CollaboratorError(document string, cause error) *AppError {
	return NewAppError(CodeCollaboratorFailure, document, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

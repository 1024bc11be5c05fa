package common

import (
	"errors"
	"fmt"
)

// Business logic errors
var (
	// General errors
	ErrForbidden = errors.New("관리자 권한이 필요합니다")

	// Opinion errors
	ErrOpinionNotFound       = errors.New("의견을 찾을 수 없습니다")
	ErrNoExportableData      = errors.New("다운로드 가능한 데이터가 없습니다")
	ErrModerationUnavailable = errors.New("moderation unavailable")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("비활성화된 계정입니다")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
)

// ValidationError names the request field that violated a rule
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// QueryError the base data fetch failed; callers get no partial result
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError wraps a store error
func NewQueryError(op string, err error) *QueryError {
	return &QueryError{Op: op, Err: err}
}

// NoExportableDataError nothing left to export once blinded rows were dropped
type NoExportableDataError struct {
	ExcludedCount int
}

func (e *NoExportableDataError) Error() string {
	return fmt.Sprintf("%s (제외 %d건)", ErrNoExportableData.Error(), e.ExcludedCount)
}

func (e *NoExportableDataError) Unwrap() error {
	return ErrNoExportableData
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsQuery reports whether err is (or wraps) a QueryError
func IsQuery(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

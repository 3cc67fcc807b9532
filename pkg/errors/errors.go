package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrPaymentNotFound  = errors.New("loan payment not found")
	ErrTruckNotFound    = errors.New("truck not found")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidPaymentID = errors.New("invalid payment id")
	ErrEmptyReport      = errors.New("no payments to export")
	ErrMissingDateRange = errors.New("date range is required")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeReportEmpty         = "REPORT_EMPTY"
	ErrCodeReportRangeRequired = "REPORT_RANGE_REQUIRED"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapMissingField(field string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("%s is required", field),
		ErrMissingField,
	)
}

func WrapInvalidField(field string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("%s is invalid", field),
		err,
	)
}

func WrapInvalidPaymentID(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("Invalid Calculation ID %s", id),
		ErrInvalidPaymentID,
	)
}

func WrapPaymentNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("Calculation with ID %s not found", id),
		ErrPaymentNotFound,
	)
}

func WrapUserLedgerEmpty(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("No loan calculations found for user %s in the given date range", userID),
		ErrPaymentNotFound,
	)
}

func WrapEmptyReport(scope string) *BusinessError {
	return NewBusinessError(
		ErrCodeReportEmpty,
		fmt.Sprintf("No loan calculations found for this %s in the given date range", scope),
		ErrEmptyReport,
	)
}

func WrapMissingDateRange() *BusinessError {
	return NewBusinessError(
		ErrCodeReportRangeRequired,
		"selectedDates is required to label the report",
		ErrMissingDateRange,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}

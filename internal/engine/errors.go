package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/donorql/internal/catalog"
)

// ErrorCode categorizes execution errors.
type ErrorCode string

const (
	// ErrCodeBackingStore indicates a fetch failed. The store's own
	// message is preserved in Err.
	ErrCodeBackingStore ErrorCode = "BACKING_STORE_ERROR"

	// ErrCodeInvalidPlan indicates the plan failed validation. No store
	// access was attempted.
	ErrCodeInvalidPlan ErrorCode = "INVALID_PLAN"

	// ErrCodeMissingOrganization indicates no tenant was given.
	ErrCodeMissingOrganization ErrorCode = "MISSING_ORGANIZATION"
)

// Error is an execution error.
//
// Table and Operation locate a backing-store failure ("fetch",
// "fetch_ids"); they are empty for planning errors.
type Error struct {
	Code      ErrorCode
	Message   string
	Table     catalog.Table
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: %s (table=%s, op=%s)", e.Code, e.Message, e.Table, e.Operation)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsBackingStoreError returns true if the error is a store failure.
// Uses errors.As to handle wrapped errors.
func IsBackingStoreError(err error) bool {
	var ee *Error
	return errors.As(err, &ee) && ee.Code == ErrCodeBackingStore
}

// IsPlanningError returns true if the error was raised before any store
// access.
func IsPlanningError(err error) bool {
	var ee *Error
	return errors.As(err, &ee) && (ee.Code == ErrCodeInvalidPlan || ee.Code == ErrCodeMissingOrganization)
}

func storeError(table catalog.Table, op string, err error) *Error {
	return &Error{
		Code:      ErrCodeBackingStore,
		Message:   err.Error(),
		Table:     table,
		Operation: op,
		Err:       err,
	}
}

func planError(err error) *Error {
	return &Error{
		Code:    ErrCodeInvalidPlan,
		Message: err.Error(),
		Err:     err,
	}
}

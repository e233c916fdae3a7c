package compiler

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes rejection and parse errors.
type ErrorCode string

// Rejection codes (safety pre-filter).
const (
	// ErrCodeForbiddenSyntax indicates ;, --, /* or */ in the statement.
	ErrCodeForbiddenSyntax ErrorCode = "FORBIDDEN_SYNTAX"

	// ErrCodeNotASelect indicates the statement does not start with SELECT.
	ErrCodeNotASelect ErrorCode = "NOT_A_SELECT"

	// ErrCodeForbiddenKeyword indicates a blacklisted verb as a whole word.
	ErrCodeForbiddenKeyword ErrorCode = "FORBIDDEN_KEYWORD"
)

// Parse codes (grammar parser).
const (
	ErrCodeUnsupportedTarget     ErrorCode = "UNSUPPORTED_TARGET"
	ErrCodeUnsupportedJoin       ErrorCode = "UNSUPPORTED_JOIN"
	ErrCodeColumnNotAllowed      ErrorCode = "COLUMN_NOT_ALLOWED"
	ErrCodeColumnForbidden       ErrorCode = "COLUMN_FORBIDDEN"
	ErrCodeMissingRequiredColumn ErrorCode = "MISSING_REQUIRED_COLUMN"
	ErrCodeUnsupportedSelect     ErrorCode = "UNSUPPORTED_SELECT"
	ErrCodeUnsupportedAggregate  ErrorCode = "UNSUPPORTED_AGGREGATE"
	ErrCodeUnsupportedWhere      ErrorCode = "UNSUPPORTED_WHERE"
	ErrCodeMultipleOrGroups      ErrorCode = "MULTIPLE_OR_GROUPS"
	ErrCodeUnsupportedOrderBy    ErrorCode = "UNSUPPORTED_ORDER_BY"
	ErrCodeUnsupportedClause     ErrorCode = "UNSUPPORTED_CLAUSE"
	ErrCodeInvalidLiteral        ErrorCode = "INVALID_LITERAL"
	ErrCodeInvalidLimit          ErrorCode = "INVALID_LIMIT"
)

// Error is a rejection or parse error.
//
// Fragment carries the literal clause or token that failed, so a caller
// (a person or an LLM) can correct the statement and retry. Table and
// Column are set for column errors.
type Error struct {
	Code     ErrorCode
	Message  string
	Fragment string
	Table    string
	Column   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Fragment != "" {
		return fmt.Sprintf("%s: %s (in %q)", e.Code, e.Message, e.Fragment)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsRejection reports whether err came from the safety pre-filter.
// Uses errors.As to handle wrapped errors.
func IsRejection(err error) bool {
	switch CodeOf(err) {
	case ErrCodeForbiddenSyntax, ErrCodeNotASelect, ErrCodeForbiddenKeyword:
		return true
	}
	return false
}

// IsParseError reports whether err came from the grammar parser.
func IsParseError(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && !IsRejection(err)
}

// CodeOf returns the code of a compiler error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func newError(code ErrorCode, fragment, format string, args ...any) *Error {
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Fragment: fragment,
	}
}

func columnError(code ErrorCode, table, column, fragment, format string, args ...any) *Error {
	e := newError(code, fragment, format, args...)
	e.Table = table
	e.Column = column
	return e
}

package report

import (
	"errors"

	"github.com/roach88/donorql/internal/compiler"
	"github.com/roach88/donorql/internal/engine"
)

// Codes for Generate failures that are not compiler or engine errors.
const (
	CodeEmptyReport  = "EMPTY_REPORT"
	CodeMissingTitle = "MISSING_TITLE"
	CodeSaveFailed   = "SAVE_FAILED"
)

// ErrorCode returns the stable code of an error returned by Generate:
// a compiler.ErrorCode, an engine.ErrorCode, or one of the Code
// constants above. Unclassified errors yield "".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if code := compiler.CodeOf(err); code != "" {
		return string(code)
	}
	var ee *engine.Error
	if errors.As(err, &ee) {
		return string(ee.Code)
	}
	switch {
	case errors.Is(err, ErrEmptyReport):
		return CodeEmptyReport
	case errors.Is(err, ErrMissingTitle):
		return CodeMissingTitle
	case errors.Is(err, errSave):
		return CodeSaveFailed
	}
	return ""
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/donorql/internal/compiler"
	"github.com/roach88/donorql/internal/config"
	"github.com/roach88/donorql/internal/engine"
	"github.com/roach88/donorql/internal/report"
	"github.com/roach88/donorql/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Statement rejected, report empty, scenario failed
	ExitCommandError = 2 // Command error (bad config, database unavailable, etc.)
)

// Generic error codes for failures that carry no domain code.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeMissingOrg   = "MISSING_ORGANIZATION"
	ErrCodeNoSuchReport = "REPORT_NOT_FOUND"
)

// ExitError represents an error with a specific exit code.
// Reported is set when the command already wrote the error to its
// output, so main must not print it again.
type ExitError struct {
	Code     int    // Exit code (use ExitFailure or ExitCommandError)
	Message  string // Error message
	Err      error  // Underlying error (optional)
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsReported reports whether err was already written by a command.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // domain code or "E001"...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format. text is
// printed in text mode; data is the JSON payload.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail writes err in the configured format and returns the ExitError the
// command should return. Domain errors keep their own codes.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit, details := classify(err)
	_ = f.Error(code, err.Error(), details)
	return &ExitError{Code: exit, Message: message, Err: err, Reported: true}
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Verbose logs go to ErrWriter so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

// classify maps an error to a response code, an exit code and details.
// Problems with the statement exit with ExitFailure; problems with the
// environment exit with ExitCommandError.
func classify(err error) (string, int, any) {
	var ce *compiler.Error
	if errors.As(err, &ce) {
		return string(ce.Code), ExitFailure, compilerDetails(ce)
	}

	var ee *engine.Error
	if errors.As(err, &ee) {
		switch ee.Code {
		case engine.ErrCodeBackingStore:
			return string(ee.Code), ExitCommandError, map[string]string{
				"table":     string(ee.Table),
				"operation": ee.Operation,
			}
		case engine.ErrCodeMissingOrganization:
			return string(ee.Code), ExitCommandError, nil
		}
		return string(ee.Code), ExitFailure, nil
	}

	switch code := report.ErrorCode(err); code {
	case report.CodeEmptyReport, report.CodeMissingTitle:
		return code, ExitFailure, nil
	case report.CodeSaveFailed:
		return code, ExitCommandError, nil
	}

	switch {
	case errors.Is(err, config.ErrMissingOrganization):
		return ErrCodeMissingOrg, ExitCommandError, nil
	case errors.Is(err, store.ErrReportNotFound):
		return ErrCodeNoSuchReport, ExitFailure, nil
	}
	return ErrCodeGeneric, ExitCommandError, nil
}

func compilerDetails(ce *compiler.Error) map[string]string {
	d := map[string]string{}
	if ce.Fragment != "" {
		d["fragment"] = ce.Fragment
	}
	if ce.Table != "" {
		d["table"] = ce.Table
	}
	if ce.Column != "" {
		d["column"] = ce.Column
	}
	if len(d) == 0 {
		return nil
	}
	return d
}

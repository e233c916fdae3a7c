package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/donorql/internal/compiler"
	"github.com/roach88/donorql/internal/config"
	"github.com/roach88/donorql/internal/engine"
	"github.com/roach88/donorql/internal/report"
	"github.com/roach88/donorql/internal/store"
)

func TestExitError(t *testing.T) {
	base := errors.New("disk full")

	err := WrapExitError(ExitCommandError, "write failed", base)
	assert.Equal(t, "write failed: disk full", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.False(t, IsReported(err))

	wrapped := fmt.Errorf("outer: %w", &ExitError{Code: ExitSuccess, Message: "x", Reported: true})
	assert.Equal(t, ExitSuccess, GetExitCode(wrapped))
	assert.True(t, IsReported(wrapped))

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, "just message", NewExitError(ExitFailure, "just message").Error())
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, f.Success(map[string]int{"n": 1}, "done"))
	require.NoError(t, f.Error("E001", "broken", map[string]string{"k": "v"}))

	assert.Equal(t, "done\nError [E001]: broken\nDetails: map[k:v]\n", buf.String())
}

func TestOutputFormatter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]string{"a": "<b>"}, "ignored"))
	assert.Equal(t, `{"status":"ok","data":{"a":"<b>"}}`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Error("NOT_A_SELECT", "nope", nil))
	resp := decodeResponse(t, buf.String())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_A_SELECT", resp.Error.Code)
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}
	f.VerboseLog("step %d", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "step 3\n", diag.String())

	f.Verbose = false
	f.VerboseLog("hidden")
	assert.Equal(t, "step 3\n", diag.String())
}

func TestOutputFormatter_Fail(t *testing.T) {
	_, rejection := compiler.Compile("SELECT email FROM donors; DROP TABLE donors")
	require.Error(t, rejection)

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"rejection", rejection, "FORBIDDEN_SYNTAX", ExitFailure},
		{"invalid plan", &engine.Error{Code: engine.ErrCodeInvalidPlan, Message: "bad"}, "INVALID_PLAN", ExitFailure},
		{"backing store", &engine.Error{Code: engine.ErrCodeBackingStore, Message: "gone", Table: "donors", Operation: "fetch"}, "BACKING_STORE_ERROR", ExitCommandError},
		{"engine missing org", &engine.Error{Code: engine.ErrCodeMissingOrganization}, "MISSING_ORGANIZATION", ExitCommandError},
		{"empty report", fmt.Errorf("wrap: %w", report.ErrEmptyReport), report.CodeEmptyReport, ExitFailure},
		{"missing title", report.ErrMissingTitle, report.CodeMissingTitle, ExitFailure},
		{"config missing org", config.ErrMissingOrganization, ErrCodeMissingOrg, ExitCommandError},
		{"report not found", fmt.Errorf("get: %w", store.ErrReportNotFound), ErrCodeNoSuchReport, ExitFailure},
		{"unknown", errors.New("boom"), ErrCodeGeneric, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: buf}

			err := f.Fail("failed", tt.err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.True(t, IsReported(err))
			assert.ErrorIs(t, err, tt.err)

			resp := decodeResponse(t, buf.String())
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestOutputFormatter_FailCompilerDetails(t *testing.T) {
	_, err := compiler.Compile("SELECT donors.ssn FROM donors")
	require.Error(t, err)

	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}
	_ = f.Fail("rejected", err)

	resp := decodeResponse(t, buf.String())
	require.NotNil(t, resp.Error)
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok, "details: %v", resp.Error.Details)
	assert.Equal(t, "donors", details["table"])
	assert.Equal(t, "ssn", details["column"])
}

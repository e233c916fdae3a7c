package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

var texasFixture = filepath.Join("..", "harness", "testdata", "fixtures", "texas.yaml")

// execute runs cmd with args and returns everything written to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeResponse parses a JSON CLIResponse.
func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

// seededDB seeds the texas fixture into a fresh database file.
func seededDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "reports.db")
	_, err := execute(t, NewSeedCommand(NewRootOptions()), texasFixture, "--db", db)
	require.NoError(t, err)
	return db
}

func textOpts() *RootOptions {
	return NewRootOptions()
}

func jsonOpts() *RootOptions {
	opts := NewRootOptions()
	opts.Format = "json"
	return opts
}

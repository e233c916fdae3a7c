package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// readStatement returns the statement argument. "-" reads it from stdin.
func readStatement(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read statement from stdin: %w", err)
	}
	stmt := strings.TrimSpace(string(data))
	if stmt == "" {
		return "", fmt.Errorf("empty statement on stdin")
	}
	return stmt, nil
}

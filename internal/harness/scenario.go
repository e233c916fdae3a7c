package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/donorql/internal/ir"
)

// Scenario is one end-to-end report test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Organization is the tenant every step runs for unless the step
	// overrides it.
	Organization string `yaml:"organization"`

	// Fixture is a dataset file, relative to the scenario file.
	Fixture string `yaml:"fixture,omitempty"`

	// Data is an inline dataset, seeded after Fixture.
	Data *ir.Dataset `yaml:"data,omitempty"`

	// RejectEmpty fails steps whose report has no data rows.
	RejectEmpty bool `yaml:"reject_empty,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step generates one report.
type Step struct {
	Title        string  `yaml:"title"`
	Query        string  `yaml:"query"`
	Organization string  `yaml:"organization,omitempty"`
	Expect       *Expect `yaml:"expect,omitempty"`
}

// Expect specifies a step's outcome. Error is a failure code; when it is
// set the other fields must be empty.
type Expect struct {
	Error    string     `yaml:"error,omitempty"`
	Headers  []string   `yaml:"headers,omitempty"`
	Rows     [][]string `yaml:"rows,omitempty"`
	RowCount *int       `yaml:"row_count,omitempty"`
}

// Assertion validates the outcome of the whole scenario.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Step indexes Steps (0-based) for contains_row and column_values.
	Step int `yaml:"step,omitempty"`

	// Row is the expected row (contains_row).
	Row []string `yaml:"row,omitempty"`

	// Column is a header name and Values its expected cells in output
	// order (column_values).
	Column string   `yaml:"column,omitempty"`
	Values []string `yaml:"values,omitempty"`

	// Count is the expected number of saved reports (report_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertReportCount  = "report_count"
	AssertContainsRow  = "contains_row"
	AssertColumnValues = "column_values"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative fixture path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) {
		scenario.Fixture = filepath.Join(filepath.Dir(path), scenario.Fixture)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := decodeStrict(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDataset reads a fixture file of donors and donations.
func LoadDataset(path string) (ir.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Dataset{}, fmt.Errorf("failed to read fixture: %w", err)
	}

	var ds ir.Dataset
	if err := decodeStrict(data, &ds); err != nil {
		return ir.Dataset{}, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return ds, nil
}

// decodeStrict rejects unknown fields, catching typos like "donor:" for
// "donors:".
func decodeStrict(data []byte, v any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Organization == "" {
		return fmt.Errorf("organization is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i, step := range s.Steps {
		if step.Title == "" {
			return fmt.Errorf("steps[%d]: title is required", i)
		}
		if step.Query == "" {
			return fmt.Errorf("steps[%d]: query is required", i)
		}
		if e := step.Expect; e != nil && e.Error != "" {
			if e.Headers != nil || e.Rows != nil || e.RowCount != nil {
				return fmt.Errorf("steps[%d]: expect.error excludes headers, rows and row_count", i)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, i, len(s.Steps)); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(a Assertion, index, steps int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertReportCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for report_count", index)
		}
		return nil
	case AssertContainsRow:
		if len(a.Row) == 0 {
			return fmt.Errorf("assertions[%d]: row is required for contains_row", index)
		}
	case AssertColumnValues:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for column_values", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Step < 0 || a.Step >= steps {
		return fmt.Errorf("assertions[%d]: step %d out of range", index, a.Step)
	}
	return nil
}

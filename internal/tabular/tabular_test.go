package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		rows    [][]string
		want    string
	}{
		{
			name:    "header only",
			headers: []string{"Name", "Email"},
			want:    "Name,Email",
		},
		{
			name:    "plain cells",
			headers: []string{"Name", "Total Donation"},
			rows:    [][]string{{"Ada", "100.25"}, {"Bo", "5.00"}},
			want:    "Name,Total Donation\nAda,100.25\nBo,5.00",
		},
		{
			name:    "escaping",
			headers: []string{"Name", "Billing Address"},
			rows:    [][]string{{`Ada "Countess" L`, "1 Main St, Austin"}, {"multi\nline", ""}},
			want:    "Name,Billing Address\n\"Ada \"\"Countess\"\" L\",\"1 Main St, Austin\"\n\"multi\nline\",",
		},
		{
			name:    "escaped headers",
			headers: []string{"Name, full", "Email"},
			want:    "\"Name, full\",Email",
		},
		{
			name:    "short rows padded",
			headers: []string{"a", "b", "c"},
			rows:    [][]string{{"1"}},
			want:    "a,b,c\n1,,",
		},
		{
			name:    "single empty cell quoted",
			headers: []string{"email"},
			rows:    [][]string{{""}, {"a@x.org"}, {}},
			want:    "email\n\"\"\na@x.org\n\"\"",
		},
		{
			name:    "carriage returns kept",
			headers: []string{"note"},
			rows:    [][]string{{"a\rb"}, {"c\r\nd"}},
			want:    "note\n\"a\rb\"\n\"c\r\nd\"",
		},
		{
			name:    "long rows truncated",
			headers: []string{"a"},
			rows:    [][]string{{"1", "2", "3"}},
			want:    "a\n1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(tt.rows, tt.headers))
		})
	}
}

func TestSerialize_PreservesRowOrder(t *testing.T) {
	rows := [][]string{{"z"}, {"a"}, {"m"}}
	assert.Equal(t, "h\nz\na\nm", Serialize(rows, []string{"h"}))
}

func TestSerialize_CellCountInvariant(t *testing.T) {
	headers := []string{"a", "b", "c"}
	rows := [][]string{{}, {"1"}, {"1", "2"}, {"1", "2", "3"}, {"1", "2", "3", "4"}}

	_, parsed, err := Parse(Serialize(rows, headers))
	require.NoError(t, err)
	require.Len(t, parsed, len(rows))
	for _, row := range parsed {
		assert.Len(t, row, len(headers))
	}
}

func TestRoundTrip(t *testing.T) {
	headers := []string{"Donor Name", "Note, quoted \"x\"", "Total"}
	rows := [][]string{
		{"Ada, Countess", `She said "hi"`, "1.00"},
		{"line\nbreak", "carriage\r\nreturn", ""},
		{" leading space", "trailing space ", "-0.50"},
		{"", "", ""},
		{"Zoë", "日本語", "∑"},
	}

	gotHeaders, gotRows, err := Parse(Serialize(rows, headers))
	require.NoError(t, err)
	assert.Equal(t, headers, gotHeaders)
	assert.Equal(t, rows, gotRows)
}

func TestRoundTrip_SingleColumn(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		rows    [][]string
	}{
		{"empty cells", []string{"email"}, [][]string{{""}, {"a@x.org"}, {""}}},
		{"only empty cells", []string{"email"}, [][]string{{""}, {""}}},
		{"empty header", []string{""}, [][]string{{"x"}}},
		{"crlf cells", []string{"note"}, [][]string{{"line1\r\nline2"}, {"a\rb"}, {"\r\n"}, {"x\r\r\ny"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHeaders, gotRows, err := Parse(Serialize(tt.rows, tt.headers))
			require.NoError(t, err)
			assert.Equal(t, tt.headers, gotHeaders)
			assert.Equal(t, tt.rows, gotRows)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	headers, rows, err := Parse("Name,Email")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Email"}, headers)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestParse_Errors(t *testing.T) {
	_, _, err := Parse("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = Parse("a,b\n1,2,3")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "tabular: parse"))
}

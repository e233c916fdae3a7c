package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"table": "donors",
		"limit": 10,
		"desc":  true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"desc":true,"limit":10,"table":"donors"}`, string(out))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	out, err := MarshalCanonical("<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(out))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "é" as e + combining acute accent vs precomposed.
	decomposed, err := MarshalCanonical("Jose\u0301")
	require.NoError(t, err)
	composed, err := MarshalCanonical("Jos\u00e9")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonical_Nested(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"fields": []any{map[string]any{"column": "email"}, nil},
		"cols":   []string{"a", "b"},
		"value":  1000.5,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"cols":["a","b"],"fields":[{"column":"email"},null],"value":1000.5}`, string(out))
}

func TestMarshalCanonical_Unsupported(t *testing.T) {
	_, err := MarshalCanonical(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

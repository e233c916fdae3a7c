package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		ci      bool
		s       string
		want    bool
	}{
		{"exact", "Austin", false, "Austin", true},
		{"case sensitive", "austin", false, "Austin", false},
		{"prefix", "Aus%", false, "Austin", true},
		{"single char", "A_stin", false, "Austin", true},
		{"anchored", "ustin", false, "Austin", false},
		{"regexp meta literal", "a.c", false, "abc", false},
		{"newline spans percent", "a%b", false, "a\nb", true},
		{"ascii fold", "%TEXAS%", true, "Dallas, Texas", true},
		{"unicode fold", "%ÉCOLE%", true, "rue de l'école", true},
		{"cyrillic fold", "МОСКВА", true, "москва", true},
		{"underscore is one rune", "Zo_", false, "Zoë", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LikeMatch(tt.pattern, tt.ci, tt.s))
		})
	}
}

func TestLikeMatch_InvalidPatternFallsBackToContains(t *testing.T) {
	pattern := "\xff%"
	_, err := compileLike(pattern)
	require.Error(t, err)

	assert.True(t, LikeMatch(pattern, false, "abc\xff%def"))
	assert.False(t, LikeMatch(pattern, false, "abc\xffdef"), "fallback treats % literally")
}

func TestFold(t *testing.T) {
	assert.Equal(t, Fold("ÉCOLE"), Fold("école"))
	assert.Equal(t, "são paulo", Fold("SÃO PAULO"))
}

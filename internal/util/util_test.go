package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Be yourself; everyone else is already taken.", expected: "Be_yourself__everyon"},
		{input: "  leading space", expected: "leading_space"},
		{input: "\"Quoted\"", expected: "Quoted"},
		{input: "Ünïcode wörds", expected: "Ünïcode_wörds"},
		{input: "!!!", expected: ""},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeName(tt.input, 20))
		})
	}
}

func TestHashFields(t *testing.T) {
	a := HashFields("quote", "speaker")
	assert.Equal(t, a, HashFields("quote", "speaker"))
	assert.NotEqual(t, a, HashFields("quote", "other"))
	assert.NotEqual(t, HashFields("ab", "c"), HashFields("a", "bc"))
	assert.Len(t, a, 64)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	require.NoError(t, os.WriteFile(path, []byte("glyphs"), 0o644))

	sum, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, digest([]byte("glyphs")), sum)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing.ttf"))
	assert.Error(t, err)
}

func TestHashValue_Unencodable(t *testing.T) {
	assert.Equal(t, digest(nil), HashValue(make(chan int)))
}

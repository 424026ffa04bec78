package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Friday Class", "Friday_Class"},
		{"Quran: Surah Al-Baqarah (part 2)", "Quran_Surah_Al-Baqarah_part_2"},
		{"émigré café", "émigré_café"},
		{"///???", "recording"},
		{"", "recording"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeFilename(tt.in), "input %q", tt.in)
	}
}

func TestValidateModel(t *testing.T) {
	assert.NoError(t, ValidateModel("gpt-4o"))
	assert.NoError(t, ValidateModel("gpt-4.1-nano"))
	assert.Error(t, ValidateModel("gpt-2"))
}

func TestValidateOpenAIAPIKey(t *testing.T) {
	assert.Error(t, ValidateOpenAIAPIKey(""))
	assert.NoError(t, ValidateOpenAIAPIKey("sk-test"))
}

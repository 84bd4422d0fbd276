package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigits(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"9017.90.0136", "9017900136"},
		{" 4011.10.10.10 ", "4011101010"},
		{"8471", "8471"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Digits(tt.in), tt.in)
	}
}

func TestFormatCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"9017900136", "9017.90.01.36"},
		{"9017.90.0136", "9017.90.01.36"},
		{"40111010", "4011.10.10"},
		{"401110", "4011.10"},
		{"4011", "4011"},
		{"40", "40"},
		{"401110101", "4011.10.10.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCode(tt.in), tt.in)
	}
}

func TestAncestorDigits(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"statistical suffix", "9017900136", []string{"90179001", "901790", "9017", "90"}},
		{"tariff line", "40111010", []string{"401110", "4011", "40"}},
		{"odd length", "4011101", []string{"401110", "4011", "40"}},
		{"heading", "4011", []string{"40"}},
		{"chapter", "40", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AncestorDigits(tt.in))
		})
	}
}

func TestAncestorDigits_StrictlyShrinks(t *testing.T) {
	for _, code := range []string{"9017900136", "401110101099", "84713001", "8"} {
		prev := len(code)
		for _, a := range AncestorDigits(code) {
			assert.Less(t, len(a), prev, code)
			prev = len(a)
		}
		assert.LessOrEqual(t, prev, len(code))
	}
}

func TestChapterHeadingComplete(t *testing.T) {
	assert.Equal(t, "90", Chapter("9017.90.0136"))
	assert.Equal(t, "9017", Heading("9017.90.0136"))
	assert.Empty(t, Heading("90"))
	assert.Empty(t, Chapter("9"))
	assert.True(t, IsComplete("4011.10.10"))
	assert.False(t, IsComplete("4011.10"))
}

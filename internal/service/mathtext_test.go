package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMathText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mixed operators", "X^2 × 3 ÷ 4", "x^2 * 3 / 4"},
		{"uppercase variable", "2X + 3 = 11", "2x + 3 = 11"},
		{"superscripts", "x² - 5x + 6 = 0", "x^2 - 5x + 6 = 0"},
		{"cube", "x³ = 27", "x^3 = 27"},
		{"dashes", "5 — 3 – 1", "5 - 3 - 1"},
		{"surrounding whitespace", "  x + 1  ", "x + 1"},
		{"empty", "", ""},
		{"no math symbols", "안녕하세요", "안녕하세요"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMathText(tt.in))
		})
	}
}

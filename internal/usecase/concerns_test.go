package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeConcerns(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil", input: nil, want: nil},
		{name: "lower-cases and trims", input: []string{" Acne ", "AGING"}, want: []string{"acne", "aging"}},
		{name: "drops blanks", input: []string{"", "  ", "Pores"}, want: []string{"pores"}},
		{name: "drops duplicates keeping first-seen order", input: []string{"Dryness", "acne", "dryness"}, want: []string{"dryness", "acne"}},
		{name: "keeps unknown keywords", input: []string{"Redness"}, want: []string{"redness"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeConcerns(tt.input)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentEncode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "CLINIQUE", want: "CLINIQUE"},
		{input: "Hydra Boost Gel", want: "Hydra%20Boost%20Gel"},
		{input: "Kiehl's", want: "Kiehl%27s"},
		{input: "PURE & CO", want: "PURE%20%26%20CO"},
		{input: "Spot-on_2.0~", want: "Spot-on_2.0~"},
		{input: "Day/Night", want: "Day/Night"},
		{input: "L'Oréal", want: "L%27Or%C3%A9al"},
		{input: "100%+", want: "100%25%2B"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, percentEncode(tt.input))
		})
	}
}

func TestSearchURL(t *testing.T) {
	assert.Equal(t, "https://incidecoder.com/search?query=SK-II", searchURL("SK-II"))
}

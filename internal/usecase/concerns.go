package usecase

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// normalizeConcerns lower-cases and trims concern keywords, dropping blanks and
// duplicates while keeping first-seen order. Keywords outside the vocabulary
// are kept verbatim and matched as plain substrings.
func normalizeConcerns(concerns []string) []string {
	if len(concerns) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(concerns))
	normalized := make([]string, 0, len(concerns))
	for _, c := range concerns {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, key)
	}

	log.Debug().Strs("input", concerns).Strs("normalized", normalized).Msg("concerns normalized")
	return normalized
}

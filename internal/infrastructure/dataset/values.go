package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/dermalens/backend/internal/domain"
)

// parseOptionalFloat returns nil for blank, non-numeric, NaN or infinite cells
func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finiteOrNil(v)
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseFlag treats a cell as a set flag only when it holds the number 1
func parseFlag(s string) bool {
	v := parseOptionalFloat(s)
	return v != nil && *v == 1
}

// fingerprint hashes the parsed rows so identical data yields the same catalog
// version regardless of where it was loaded from
func fingerprint(products []domain.Product) (string, error) {
	data, err := json.Marshal(products)
	if err != nil {
		return "", errors.Wrap(err, "fingerprint catalog")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}

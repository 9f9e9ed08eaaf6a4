package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SkinType identifies one of the five skin types a product can be flagged for
type SkinType int

const (
	SkinCombination SkinType = iota
	SkinDry
	SkinNormal
	SkinOily
	SkinSensitive

	skinTypeCount
)

var skinTypeNames = [skinTypeCount]string{
	SkinCombination: "Combination",
	SkinDry:         "Dry",
	SkinNormal:      "Normal",
	SkinOily:        "Oily",
	SkinSensitive:   "Sensitive",
}

// AllSkinTypes returns the skin types in dataset column order
func AllSkinTypes() []SkinType {
	return []SkinType{SkinCombination, SkinDry, SkinNormal, SkinOily, SkinSensitive}
}

// Valid reports whether s is one of the five known skin types
func (s SkinType) Valid() bool {
	return s >= 0 && s < skinTypeCount
}

func (s SkinType) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SkinType(%d)", int(s))
	}
	return skinTypeNames[s]
}

// MarshalText renders the skin type by its column label
func (s SkinType) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSkinType, int(s))
	}
	return []byte(skinTypeNames[s]), nil
}

// UnmarshalText accepts a skin type label in any letter case
func (s *SkinType) UnmarshalText(text []byte) error {
	parsed, err := ParseSkinType(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSkinType maps a label such as "dry" or "Oily" to its SkinType
func ParseSkinType(label string) (SkinType, error) {
	label = strings.TrimSpace(label)
	for i, name := range skinTypeNames {
		if strings.EqualFold(name, label) {
			return SkinType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSkinType, label)
}

// SkinTypeSet records which skin types a product is suitable for.
// The zero value matches nothing.
type SkinTypeSet [skinTypeCount]bool

// NewSkinTypeSet builds a set containing the given types
func NewSkinTypeSet(types ...SkinType) SkinTypeSet {
	var set SkinTypeSet
	for _, t := range types {
		set = set.With(t)
	}
	return set
}

// Has reports whether the set contains t. Unknown types are never contained.
func (s SkinTypeSet) Has(t SkinType) bool {
	if !t.Valid() {
		return false
	}
	return s[t]
}

// With returns a copy of the set with t added
func (s SkinTypeSet) With(t SkinType) SkinTypeSet {
	if t.Valid() {
		s[t] = true
	}
	return s
}

// Types lists the contained skin types in column order
func (s SkinTypeSet) Types() []SkinType {
	types := make([]SkinType, 0, skinTypeCount)
	for _, t := range AllSkinTypes() {
		if s[t] {
			types = append(types, t)
		}
	}
	return types
}

// MarshalJSON renders the set as a label -> bool object covering all five types
func (s SkinTypeSet) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, t := range AllSkinTypes() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%t", skinTypeNames[t], s[t])
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// UnmarshalJSON reads the label -> bool object written by MarshalJSON
func (s *SkinTypeSet) UnmarshalJSON(data []byte) error {
	var flags map[string]bool
	if err := json.Unmarshal(data, &flags); err != nil {
		return err
	}
	var set SkinTypeSet
	for label, on := range flags {
		t, err := ParseSkinType(label)
		if err != nil {
			return err
		}
		set[t] = on
	}
	*s = set
	return nil
}

// StressLevel is collected with the routine but does not influence any score
type StressLevel string

const (
	StressLow    StressLevel = "Low"
	StressMedium StressLevel = "Medium"
	StressHigh   StressLevel = "High"
)

// ParseStressLevel maps a label in any letter case to a StressLevel.
// An empty label is accepted and stays empty.
func ParseStressLevel(label string) (StressLevel, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", nil
	}
	for _, level := range []StressLevel{StressLow, StressMedium, StressHigh} {
		if strings.EqualFold(string(level), label) {
			return level, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStressLevel, label)
}

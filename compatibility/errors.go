package compatibility

import (
	"fmt"
	"strings"
)

// Reasons reported in a FieldError.
const (
	ReasonMissing    = "missing"
	ReasonOutOfRange = "out_of_range"
	ReasonUnknown    = "unknown_trait"
)

// FieldError describes one invalid trait.
type FieldError struct {
	Profile string `json:"profile,omitempty"` // "adopter" or "pet", empty when scoring is not involved
	Trait   string `json:"trait"`
	Value   int    `json:"value"`
	Reason  string `json:"reason"`
}

func (f FieldError) String() string {
	name := f.Trait
	if f.Profile != "" {
		name = f.Profile + "." + f.Trait
	}
	switch f.Reason {
	case ReasonMissing:
		return name + " is missing"
	case ReasonOutOfRange:
		return fmt.Sprintf("%s=%d is outside [%d,%d]", name, f.Value, MinIntensity, MaxIntensity)
	default:
		return name + " is not a known trait"
	}
}

// ValidationError is returned when a profile is incomplete or holds an
// intensity outside [1,10].
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "invalid personality profile: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(profile, trait string, value int, reason string) {
	e.Fields = append(e.Fields, FieldError{Profile: profile, Trait: trait, Value: value, Reason: reason})
}

// withProfile tags every field with the side of the comparison it came from.
func (e *ValidationError) withProfile(profile string) *ValidationError {
	out := &ValidationError{Fields: make([]FieldError, len(e.Fields))}
	for i, f := range e.Fields {
		f.Profile = profile
		out.Fields[i] = f
	}
	return out
}

// Package compatibility scores how well an adopter's personality fits a pet's.
package compatibility

import (
	"fmt"
	"sort"
)

// Trait names recognised in a personality profile.
const (
	TraitPlayful     = "playful"
	TraitCalm        = "calm"
	TraitEnergetic   = "energetic"
	TraitFriendly    = "friendly"
	TraitIndependent = "independent"
	TraitSocial      = "social"
)

// Bounds of a trait intensity.
const (
	MinIntensity = 1
	MaxIntensity = 10
)

var traits = []string{
	TraitPlayful,
	TraitCalm,
	TraitEnergetic,
	TraitFriendly,
	TraitIndependent,
	TraitSocial,
}

// Traits returns the six trait names in canonical order.
func Traits() []string {
	out := make([]string, len(traits))
	copy(out, traits)
	return out
}

// Profile is a personality vector of six trait intensities in [1,10].
// A zero field means the trait was not supplied.
type Profile struct {
	Playful     int `json:"playful" validate:"required,min=1,max=10"`
	Calm        int `json:"calm" validate:"required,min=1,max=10"`
	Energetic   int `json:"energetic" validate:"required,min=1,max=10"`
	Friendly    int `json:"friendly" validate:"required,min=1,max=10"`
	Independent int `json:"independent" validate:"required,min=1,max=10"`
	Social      int `json:"social" validate:"required,min=1,max=10"`
}

// Value returns the intensity stored for trait. The second result is false
// for names that are not one of the six traits.
func (p Profile) Value(trait string) (int, bool) {
	switch trait {
	case TraitPlayful:
		return p.Playful, true
	case TraitCalm:
		return p.Calm, true
	case TraitEnergetic:
		return p.Energetic, true
	case TraitFriendly:
		return p.Friendly, true
	case TraitIndependent:
		return p.Independent, true
	case TraitSocial:
		return p.Social, true
	}
	return 0, false
}

// Map returns the profile as trait name -> intensity.
func (p Profile) Map() map[string]int {
	m := make(map[string]int, len(traits))
	for _, t := range traits {
		v, _ := p.Value(t)
		m[t] = v
	}
	return m
}

// ProfileFromMap builds a validated profile from a trait map. Every trait
// must be present; unknown keys are rejected.
func ProfileFromMap(m map[string]int) (Profile, error) {
	var p Profile
	verr := &ValidationError{}

	unknown := make([]string, 0)
	for k := range m {
		if _, ok := p.Value(k); !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		verr.add("", k, m[k], ReasonUnknown)
	}

	for _, t := range traits {
		v, ok := m[t]
		if !ok {
			verr.add("", t, 0, ReasonMissing)
			continue
		}
		p.set(t, v)
	}

	if len(verr.Fields) > 0 {
		return Profile{}, verr
	}
	if err := Validate(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p *Profile) set(trait string, v int) {
	switch trait {
	case TraitPlayful:
		p.Playful = v
	case TraitCalm:
		p.Calm = v
	case TraitEnergetic:
		p.Energetic = v
	case TraitFriendly:
		p.Friendly = v
	case TraitIndependent:
		p.Independent = v
	case TraitSocial:
		p.Social = v
	default:
		panic(fmt.Sprintf("compatibility: unknown trait %q", trait))
	}
}

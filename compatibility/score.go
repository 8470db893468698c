package compatibility

import "errors"

// MatchThreshold is the minimum score for a like to become a match.
const MatchThreshold MatchScore = 70

// maxTotalDiff is the largest possible summed difference over all traits.
var maxTotalDiff = (MaxIntensity - MinIntensity) * len(traits)

// MatchScore is a compatibility percentage in [0,100].
type MatchScore int

// Result is the outcome of comparing an adopter with a pet.
type Result struct {
	MatchScore MatchScore `json:"match_score"`
	IsMatch    bool       `json:"is_match"`
}

// Score returns how similar the two profiles are. Each trait contributes
// 1 - |a-b|/9; the mean over the six traits is scaled to a percentage and
// rounded half up. Both profiles must pass Validate.
func Score(adopter, pet Profile) (MatchScore, error) {
	if err := validatePair(adopter, pet); err != nil {
		return 0, err
	}

	total := 0
	for _, t := range traits {
		a, _ := adopter.Value(t)
		b, _ := pet.Value(t)
		total += abs(a - b)
	}

	// round(100*(max-total)/max) with ties up, in integers.
	num := 2 * 100 * (maxTotalDiff - total)
	den := 2 * maxTotalDiff
	return MatchScore((num + maxTotalDiff) / den), nil
}

// Decide reports whether score reaches MatchThreshold.
func Decide(score MatchScore) bool {
	return score >= MatchThreshold
}

// Evaluate scores the pair and applies the match threshold.
func Evaluate(adopter, pet Profile) (Result, error) {
	s, err := Score(adopter, pet)
	if err != nil {
		return Result{}, err
	}
	return Result{MatchScore: s, IsMatch: Decide(s)}, nil
}

func validatePair(adopter, pet Profile) error {
	out := &ValidationError{}
	for _, side := range []struct {
		name string
		p    Profile
	}{{"adopter", adopter}, {"pet", pet}} {
		err := Validate(side.p)
		if err == nil {
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		out.Fields = append(out.Fields, verr.withProfile(side.name).Fields...)
	}
	if len(out.Fields) > 0 {
		return out
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

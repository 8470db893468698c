package main

import (
	"net/http"
	"sort"
	"strconv"

	"gitea.kood.tech/petrkubec/pet-match/compatibility"
	"go.uber.org/zap"
)

const (
	defaultAvailableLimit = 100
	maxAvailableLimit     = 100
)

// availablePet is a pet listing annotated with the caller's compatibility.
// Score fields are absent when either profile cannot be scored.
type availablePet struct {
	*Pet
	MatchScore *compatibility.MatchScore `json:"match_score,omitempty"`
	IsMatch    *bool                     `json:"is_match,omitempty"`
}

// GET /api/pets/available - pets the adopter has not liked or passed yet,
// best matches first
func (s *server) availablePetsHandler() http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())
		if user.UserType != UserTypeAdopter {
			writeError(w, http.StatusForbidden, "adopter_only")
			return
		}

		limit := defaultAvailableLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid_limit")
				return
			}
			limit = min(n, maxAvailableLimit)
		}

		pets, err := s.store.ListAvailablePets(r.Context(), user.ID)
		if err != nil {
			s.internalError(w, r, "listing available pets", err)
			return
		}

		out := make([]availablePet, 0, len(pets))
		for _, pet := range pets {
			item := availablePet{Pet: pet}
			if user.PersonalityTraits != nil {
				res, err := compatibility.Evaluate(*user.PersonalityTraits, pet.PersonalityTraits)
				if err == nil {
					item.MatchScore = &res.MatchScore
					item.IsMatch = &res.IsMatch
				} else {
					s.log.Warn("skipping score for pet", zap.String("pet_id", pet.ID.String()), zap.Error(err))
				}
			}
			out = append(out, item)
		}

		sortByScore(out)
		if len(out) > limit {
			out = out[:limit]
		}
		writeJSON(w, http.StatusOK, out)
	})
}

// sortByScore orders by score descending, unscored last, then by name.
func sortByScore(pets []availablePet) {
	sort.SliceStable(pets, func(i, j int) bool {
		a, b := pets[i].MatchScore, pets[j].MatchScore
		switch {
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		case a != nil && b != nil && *a != *b:
			return *a > *b
		}
		return pets[i].Name < pets[j].Name
	})
}

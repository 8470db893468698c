package main

import (
	"errors"
	"net/http"
	"time"

	"gitea.kood.tech/petrkubec/pet-match/compatibility"
	"gitea.kood.tech/petrkubec/pet-match/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Like actions.
const (
	ActionLike = "like"
	ActionPass = "pass"
)

type likeRequest struct {
	PetID  string `json:"pet_id" validate:"required"`
	Action string `json:"action" validate:"required,oneof=like pass"`
}

// matchView is a match enriched with its pet and adopter.
type matchView struct {
	*Match
	Pet  *Pet  `json:"pet"`
	User *User `json:"user"`
}

// POST /api/matches/like - records a like or pass; a like scoring at least
// the match threshold becomes a pending match.
func (s *server) likeHandler() http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())
		if user.UserType != UserTypeAdopter {
			writeError(w, http.StatusForbidden, "adopter_only")
			return
		}
		if user.PersonalityTraits == nil || compatibility.IsIncomplete(*user.PersonalityTraits) {
			writeError(w, http.StatusBadRequest, "incomplete_profile")
			return
		}

		var req likeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := requestValidator.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		petID, err := uuid.Parse(req.PetID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		pet, err := s.store.GetPet(r.Context(), petID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "pet_not_found")
			return
		}
		if err != nil {
			s.internalError(w, r, "loading pet", err)
			return
		}

		match := &Match{
			ID:        uuid.New(),
			UserID:    user.ID,
			PetID:     pet.ID,
			Status:    MatchStatusRejected,
			CreatedAt: time.Now().UTC(),
		}

		if req.Action == ActionLike {
			res, err := compatibility.Evaluate(*user.PersonalityTraits, pet.PersonalityTraits)
			var verr *compatibility.ValidationError
			if errors.As(err, &verr) {
				writeProfileError(w, verr)
				return
			}
			if err != nil {
				s.internalError(w, r, "scoring like", err)
				return
			}
			match.MatchScore = res.MatchScore
			match.IsMatch = res.IsMatch
			if res.IsMatch {
				match.Status = MatchStatusPending
			}
		}

		if err := s.store.CreateMatch(r.Context(), match); err != nil {
			if errors.Is(err, ErrAlreadyInteracted) {
				writeError(w, http.StatusConflict, "already_interacted")
				return
			}
			s.internalError(w, r, "saving match", err)
			return
		}

		log := logger.With(s.log, logger.IDFields(
			logger.FieldUserID, user.ID.String(),
			logger.FieldPetID, pet.ID.String(),
			logger.FieldMatchID, match.ID.String(),
		)...)
		log.Info("interaction recorded",
			zap.String("action", req.Action),
			zap.Int("match_score", int(match.MatchScore)),
			zap.Bool("is_match", match.IsMatch),
		)

		if match.IsMatch {
			delivered := s.hub.sendToUser(pet.FoundationID, ServerEvent{Type: "match", Data: MatchEvent{
				MatchID:    match.ID,
				PetID:      pet.ID,
				PetName:    pet.Name,
				UserID:     user.ID,
				MatchScore: int(match.MatchScore),
			}})
			log.Debug("match notification sent", zap.Int("connections", delivered))
		}

		writeJSON(w, http.StatusCreated, match)
	})
}

// GET /api/matches - adopters see their own matches, foundations see
// matches on their pets. Each entry carries the pet and the adopter.
func (s *server) matchesHandler() http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		var (
			matches []*Match
			err     error
		)
		if user.UserType == UserTypeAdopter {
			matches, err = s.store.ListMatchesForAdopter(r.Context(), user.ID)
		} else {
			matches, err = s.store.ListMatchesForFoundation(r.Context(), user.ID)
		}
		if err != nil {
			s.internalError(w, r, "listing matches", err)
			return
		}

		pets, adopters, err := loadMatchParties(r.Context(), s.loaders(r), matches)
		if err != nil {
			s.internalError(w, r, "loading match parties", err)
			return
		}

		views := make([]matchView, len(matches))
		for i, m := range matches {
			views[i] = matchView{Match: m, Pet: pets[i], User: adopters[i]}
		}

		writeJSON(w, http.StatusOK, views)
	})
}

// PUT /api/matches/{id}/accept
func (s *server) acceptMatchHandler() http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		id, ok := matchIDFromPath(w, r)
		if !ok {
			return
		}
		match, _, ok := s.matchForParty(w, r, user, id)
		if !ok {
			return
		}
		if !match.IsMatch {
			writeError(w, http.StatusConflict, "not_a_match")
			return
		}

		if err := s.store.UpdateMatchStatus(r.Context(), match.ID, MatchStatusAccepted); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "match_not_found")
				return
			}
			s.internalError(w, r, "accepting match", err)
			return
		}
		match.Status = MatchStatusAccepted

		writeJSON(w, http.StatusOK, match)
	})
}

// matchIDFromPath reads the {id} path value; a malformed id is reported as
// an unknown match.
func matchIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "match_not_found")
		return uuid.Nil, false
	}
	return id, true
}

// matchForParty loads a match and checks that user is one of its two
// parties: the adopter who liked, or the foundation owning the pet. On
// failure the error response has been written.
func (s *server) matchForParty(w http.ResponseWriter, r *http.Request, user *User, id uuid.UUID) (*Match, *Pet, bool) {
	match, err := s.store.GetMatch(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "match_not_found")
		return nil, nil, false
	}
	if err != nil {
		s.internalError(w, r, "loading match", err)
		return nil, nil, false
	}

	pet, err := s.store.GetPet(r.Context(), match.PetID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.internalError(w, r, "loading pet", err)
		return nil, nil, false
	}

	allowed := false
	switch user.UserType {
	case UserTypeAdopter:
		allowed = match.UserID == user.ID
	case UserTypeFoundation:
		allowed = pet != nil && pet.FoundationID == user.ID
	}
	if !allowed {
		writeError(w, http.StatusForbidden, "forbidden")
		return nil, nil, false
	}
	return match, pet, true
}

// counterparty is who should hear about activity user started on a match.
func counterparty(user *User, match *Match, pet *Pet) (uuid.UUID, bool) {
	if user.UserType == UserTypeAdopter {
		if pet == nil {
			return uuid.Nil, false
		}
		return pet.FoundationID, true
	}
	return match.UserID, true
}

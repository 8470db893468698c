package main

import (
	"errors"
	"net/http"

	"gitea.kood.tech/petrkubec/pet-match/compatibility"
)

type compatibilityRequest struct {
	Adopter compatibility.Profile `json:"adopter"`
	Pet     compatibility.Profile `json:"pet"`
}

// POST /api/compatibility - scores two profiles supplied by the caller
func (s *server) compatibilityHandler() http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		var req compatibilityRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := compatibility.Evaluate(req.Adopter, req.Pet)
		var verr *compatibility.ValidationError
		if errors.As(err, &verr) {
			writeProfileError(w, verr)
			return
		}
		if err != nil {
			s.internalError(w, r, "scoring profiles", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}

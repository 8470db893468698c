package main

import (
	"net/http"
	"time"

	"gitea.kood.tech/petrkubec/pet-match/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type appointmentRequest struct {
	MatchID string `json:"match_id" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"required,datetime=15:04"`
}

// appointmentView is an appointment with the pet and adopter of its match.
type appointmentView struct {
	*Appointment
	Pet  *Pet  `json:"pet"`
	User *User `json:"user"`
}

// POST /api/appointments - either party of a match books a visit
func (s *server) createAppointmentHandler() http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		var req appointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := requestValidator.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		matchID, err := uuid.Parse(req.MatchID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		match, pet, ok := s.matchForParty(w, r, user, matchID)
		if !ok {
			return
		}
		if !match.IsMatch {
			writeError(w, http.StatusConflict, "not_a_match")
			return
		}

		appt := &Appointment{
			ID:        uuid.New(),
			MatchID:   match.ID,
			Date:      req.Date,
			Time:      req.Time,
			Status:    AppointmentStatusScheduled,
			CreatedBy: user.ID,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.CreateAppointment(r.Context(), appt); err != nil {
			s.internalError(w, r, "saving appointment", err)
			return
		}

		log := logger.With(s.log, logger.IDFields(
			logger.FieldUserID, user.ID.String(),
			logger.FieldMatchID, match.ID.String(),
		)...)
		log.Info("appointment scheduled", zap.String("date", appt.Date), zap.String("time", appt.Time))

		if to, ok := counterparty(user, match, pet); ok {
			s.hub.sendToUser(to, ServerEvent{Type: "appointment", Data: appt})
		}

		writeJSON(w, http.StatusCreated, appt)
	})
}

// GET /api/appointments - appointments on the caller's matches, soonest first
func (s *server) appointmentsHandler() http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		var (
			appts []*Appointment
			err   error
		)
		if user.UserType == UserTypeAdopter {
			appts, err = s.store.ListAppointmentsForAdopter(r.Context(), user.ID)
		} else {
			appts, err = s.store.ListAppointmentsForFoundation(r.Context(), user.ID)
		}
		if err != nil {
			s.internalError(w, r, "listing appointments", err)
			return
		}

		matches := make([]*Match, len(appts))
		for i, a := range appts {
			matches[i] = a.Match
		}
		pets, adopters, err := loadMatchParties(r.Context(), s.loaders(r), matches)
		if err != nil {
			s.internalError(w, r, "loading appointment parties", err)
			return
		}

		views := make([]appointmentView, len(appts))
		for i, a := range appts {
			views[i] = appointmentView{Appointment: a, Pet: pets[i], User: adopters[i]}
		}
		writeJSON(w, http.StatusOK, views)
	})
}

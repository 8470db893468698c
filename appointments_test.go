package main

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matchFixture is one foundation, one adopter, a match between them and a
// like that stayed below the threshold.
type matchFixture struct {
	org, adopter, otherOrg, otherAdopter *User
	pet                                  *Pet
	match, noMatch                       Match
}

func newMatchFixture(t *testing.T, env *testEnv) matchFixture {
	t.Helper()
	f := matchFixture{
		org:          env.store.addUser(UserTypeFoundation, nil),
		otherOrg:     env.store.addUser(UserTypeFoundation, nil),
		adopter:      env.store.addUser(UserTypeAdopter, traitsPtr(uniformTraits(5))),
		otherAdopter: env.store.addUser(UserTypeAdopter, traitsPtr(uniformTraits(5))),
	}
	f.pet = env.store.addPet(f.org, "Luna", uniformTraits(5))
	far := env.store.addPet(f.org, "Max", uniformTraits(10))

	w := env.do(t, http.MethodPost, "/api/matches/like", tokenFor(t, f.adopter), like(f.pet.ID, ActionLike))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f.match = decodeBody[Match](t, w)
	require.True(t, f.match.IsMatch)

	w = env.do(t, http.MethodPost, "/api/matches/like", tokenFor(t, f.adopter), like(far.ID, ActionLike))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f.noMatch = decodeBody[Match](t, w)
	require.False(t, f.noMatch.IsMatch)
	return f
}

func appointmentBody(matchID uuid.UUID, date, clock string) map[string]string {
	return map[string]string{"match_id": matchID.String(), "date": date, "time": clock}
}

type appointmentViewBody struct {
	Appointment
	Pet  *Pet  `json:"pet"`
	User *User `json:"user"`
}

func TestCreateAppointmentHandler(t *testing.T) {
	env := newTestEnv()
	f := newMatchFixture(t, env)

	t.Run("Adopter books a visit", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/appointments", tokenFor(t, f.adopter), appointmentBody(f.match.ID, "2026-11-02", "10:30"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		a := decodeBody[Appointment](t, w)
		assert.Equal(t, f.match.ID, a.MatchID)
		assert.Equal(t, "2026-11-02", a.Date)
		assert.Equal(t, "10:30", a.Time)
		assert.Equal(t, AppointmentStatusScheduled, a.Status)
		assert.Equal(t, f.adopter.ID, a.CreatedBy)
	})

	t.Run("Foundation books a visit", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/appointments", tokenFor(t, f.org), appointmentBody(f.match.ID, "2026-11-01", "09:00"))
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Outsiders are forbidden", func(t *testing.T) {
		for _, who := range []*User{f.otherAdopter, f.otherOrg} {
			w := env.do(t, http.MethodPost, "/api/appointments", tokenFor(t, who), appointmentBody(f.match.ID, "2026-11-02", "10:30"))
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, "forbidden", decodeBody[map[string]string](t, w)["error"])
		}
	})

	t.Run("Non-match", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/appointments", tokenFor(t, f.adopter), appointmentBody(f.noMatch.ID, "2026-11-02", "10:30"))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "not_a_match", decodeBody[map[string]string](t, w)["error"])
	})

	t.Run("Unknown match", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/appointments", tokenFor(t, f.adopter), appointmentBody(uuid.New(), "2026-11-02", "10:30"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "match_not_found", decodeBody[map[string]string](t, w)["error"])
	})

	t.Run("Invalid date or time", func(t *testing.T) {
		cases := []map[string]string{
			appointmentBody(f.match.ID, "02/11/2026", "10:30"),
			appointmentBody(f.match.ID, "2026-13-01", "10:30"),
			appointmentBody(f.match.ID, "2026-11-02", "25:00"),
			appointmentBody(f.match.ID, "2026-11-02", "10:30:00"),
			{"match_id": "nope", "date": "2026-11-02", "time": "10:30"},
		}
		for _, body := range cases {
			w := env.do(t, http.MethodPost, "/api/appointments", tokenFor(t, f.adopter), body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
			assert.Equal(t, "invalid_request", decodeBody[map[string]string](t, w)["error"])
		}
	})
}

func TestAppointmentsHandler(t *testing.T) {
	env := newTestEnv()
	f := newMatchFixture(t, env)

	for _, slot := range [][2]string{{"2026-11-05", "16:00"}, {"2026-11-03", "11:15"}} {
		w := env.do(t, http.MethodPost, "/api/appointments", tokenFor(t, f.org), appointmentBody(f.match.ID, slot[0], slot[1]))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	for _, who := range []*User{f.adopter, f.org} {
		w := env.do(t, http.MethodGet, "/api/appointments", tokenFor(t, who), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		views := decodeBody[[]appointmentViewBody](t, w)
		require.Len(t, views, 2)
		assert.Equal(t, "2026-11-03", views[0].Date)
		assert.Equal(t, "2026-11-05", views[1].Date)
		for _, v := range views {
			require.NotNil(t, v.Match)
			assert.Equal(t, f.match.ID, v.Match.ID)
			require.NotNil(t, v.Pet)
			assert.Equal(t, f.pet.ID, v.Pet.ID)
			require.NotNil(t, v.User)
			assert.Equal(t, f.adopter.ID, v.User.ID)
		}
	}

	for _, who := range []*User{f.otherAdopter, f.otherOrg} {
		w := env.do(t, http.MethodGet, "/api/appointments", tokenFor(t, who), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeBody[[]appointmentViewBody](t, w))
	}
}

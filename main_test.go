package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"gitea.kood.tech/petrkubec/pet-match/compatibility"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key-for-testing")

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*User
	pets    map[uuid.UUID]*Pet
	matches map[uuid.UUID]*Match
	order   []uuid.UUID

	appointments []*Appointment
	messages     []*ChatMessage

	getPetsCalls  int
	getUsersCalls int
	failWith      error
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uuid.UUID]*User),
		pets:    make(map[uuid.UUID]*Pet),
		matches: make(map[uuid.UUID]*Match),
	}
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUsers(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getUsersCalls++
	out := make(map[uuid.UUID]*User)
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memStore) GetPet(_ context.Context, id uuid.UUID) (*Pet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pets[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetPets(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*Pet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getPetsCalls++
	out := make(map[uuid.UUID]*Pet)
	for _, id := range ids {
		if p, ok := m.pets[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memStore) ListAvailablePets(_ context.Context, adopterID uuid.UUID) ([]*Pet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	for _, mt := range m.matches {
		if mt.UserID == adopterID {
			seen[mt.PetID] = true
		}
	}
	out := make([]*Pet, 0)
	for _, p := range m.pets {
		if p.Status == PetStatusAvailable && !seen[p.ID] {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) CreateMatch(_ context.Context, mt *Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.matches {
		if existing.UserID == mt.UserID && existing.PetID == mt.PetID {
			return ErrAlreadyInteracted
		}
	}
	cp := *mt
	m.matches[mt.ID] = &cp
	m.order = append(m.order, mt.ID)
	return nil
}

func (m *memStore) GetMatch(_ context.Context, id uuid.UUID) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *mt
	return &cp, nil
}

func (m *memStore) ListMatchesForAdopter(_ context.Context, userID uuid.UUID) ([]*Match, error) {
	return m.filterMatches(func(mt *Match) bool { return mt.UserID == userID }), nil
}

func (m *memStore) ListMatchesForFoundation(_ context.Context, foundationID uuid.UUID) ([]*Match, error) {
	return m.filterMatches(func(mt *Match) bool {
		p, ok := m.pets[mt.PetID]
		return ok && p.FoundationID == foundationID
	}), nil
}

func (m *memStore) filterMatches(keep func(*Match) bool) []*Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Match, 0)
	for _, id := range m.order {
		mt := m.matches[id]
		if mt.IsMatch && keep(mt) {
			cp := *mt
			out = append(out, &cp)
		}
	}
	return out
}

func (m *memStore) UpdateMatchStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.matches[id]
	if !ok {
		return ErrNotFound
	}
	mt.Status = status
	return nil
}

func (m *memStore) CreateAppointment(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[a.MatchID]; !ok {
		return ErrNotFound
	}
	cp := *a
	cp.Match = nil
	m.appointments = append(m.appointments, &cp)
	return nil
}

func (m *memStore) ListAppointmentsForAdopter(_ context.Context, userID uuid.UUID) ([]*Appointment, error) {
	return m.filterAppointments(func(mt *Match) bool { return mt.UserID == userID }), nil
}

func (m *memStore) ListAppointmentsForFoundation(_ context.Context, foundationID uuid.UUID) ([]*Appointment, error) {
	return m.filterAppointments(func(mt *Match) bool {
		p, ok := m.pets[mt.PetID]
		return ok && p.FoundationID == foundationID
	}), nil
}

func (m *memStore) filterAppointments(keep func(*Match) bool) []*Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Appointment, 0)
	for _, a := range m.appointments {
		mt := m.matches[a.MatchID]
		if keep(mt) {
			cp := *a
			mcp := *mt
			cp.Match = &mcp
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date+out[i].Time < out[j].Date+out[j].Time
	})
	return out
}

func (m *memStore) CreateChatMessage(_ context.Context, msg *ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.messages = append(m.messages, &cp)
	return nil
}

func (m *memStore) ListChatMessages(_ context.Context, matchID uuid.UUID, before time.Time, limit int) ([]*ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ChatMessage, 0)
	for _, msg := range m.messages {
		if msg.MatchID == matchID && (before.IsZero() || msg.CreatedAt.Before(before)) {
			cp := *msg
			out = append(out, &cp)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *memStore) addUser(userType string, traits *compatibility.Profile) *User {
	u := &User{
		ID:                uuid.New(),
		Email:             uuid.NewString()[:8] + "@petmatch.test",
		Name:              "Test " + userType,
		Age:               30,
		UserType:          userType,
		PersonalityTraits: traits,
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addPet(foundation *User, name string, traits compatibility.Profile) *Pet {
	p := &Pet{
		ID:                uuid.New(),
		FoundationID:      foundation.ID,
		Name:              name,
		Breed:             "Mestizo",
		Age:               3,
		PersonalityTraits: traits,
		Images:            []string{},
		Status:            PetStatusAvailable,
		CreatedAt:         time.Now().Add(-time.Duration(len(m.pets)) * time.Minute),
	}
	m.pets[p.ID] = p
	return p
}

func uniformTraits(v int) compatibility.Profile {
	return compatibility.Profile{Playful: v, Calm: v, Energetic: v, Friendly: v, Independent: v, Social: v}
}

func traitsPtr(p compatibility.Profile) *compatibility.Profile {
	return &p
}

func signToken(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func tokenFor(t *testing.T, u *User) string {
	return signToken(t, u.ID.String(), time.Hour)
}

// testEnv bundles a server backed by memStore with its routed handler.
type testEnv struct {
	store   *memStore
	srv     *server
	handler http.Handler
}

func newTestEnv() *testEnv {
	store := newMemStore()
	srv := newServer(store, testSecret, nil)
	return &testEnv{store: store, srv: srv, handler: srv.routes([]string{"http://localhost:3000"})}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), "body: %s", w.Body.String())
	return v
}

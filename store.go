package main

import (
	"context"
	"errors"
	"time"

	"gitea.kood.tech/petrkubec/pet-match/compatibility"
	"github.com/google/uuid"
)

// User types.
const (
	UserTypeAdopter    = "adopter"
	UserTypeFoundation = "foundation"
)

// Pet statuses.
const (
	PetStatusAvailable = "available"
	PetStatusAdopted   = "adopted"
)

// Match statuses.
const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusRejected = "rejected"
)

// Appointment statuses.
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyInteracted is returned when an adopter likes or passes the same pet twice.
	ErrAlreadyInteracted = errors.New("already interacted with this pet")
)

// User is the public view of a user record.
type User struct {
	ID                uuid.UUID              `json:"id"`
	Email             string                 `json:"email"`
	Name              string                 `json:"name"`
	Age               int                    `json:"age"`
	UserType          string                 `json:"user_type"`
	PersonalityTraits *compatibility.Profile `json:"personality_traits,omitempty"`
}

// Pet is a pet listed by a foundation.
type Pet struct {
	ID                uuid.UUID             `json:"id"`
	FoundationID      uuid.UUID             `json:"foundation_id"`
	Name              string                `json:"name"`
	Breed             string                `json:"breed"`
	Age               int                   `json:"age"`
	PersonalityTraits compatibility.Profile `json:"personality_traits"`
	Images            []string              `json:"images"`
	Status            string                `json:"status"`
	CreatedAt         time.Time             `json:"created_at"`
}

// Match records an adopter's like or pass on a pet.
type Match struct {
	ID         uuid.UUID                `json:"id"`
	UserID     uuid.UUID                `json:"user_id"`
	PetID      uuid.UUID                `json:"pet_id"`
	MatchScore compatibility.MatchScore `json:"match_score"`
	IsMatch    bool                     `json:"is_match"`
	Status     string                   `json:"status"`
	CreatedAt  time.Time                `json:"created_at"`
}

// Appointment is a visit arranged for a match. Date is YYYY-MM-DD and Time
// is HH:MM, both local to the foundation.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	MatchID   uuid.UUID `json:"match_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	// Match is filled in by the list queries.
	Match *Match `json:"match,omitempty"`
}

// ChatMessage is one message exchanged between the two parties of a match.
// SenderType is the sender's user type.
type ChatMessage struct {
	ID         uuid.UUID `json:"id"`
	MatchID    uuid.UUID `json:"match_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderType string    `json:"sender_type"`
	Body       string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is the persistence the HTTP handlers depend on. Users and pets are
// only read; matches are created and their status updated, appointments and
// chat messages hang off matches.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*User, error)
	GetPet(ctx context.Context, id uuid.UUID) (*Pet, error)
	GetPets(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Pet, error)
	// ListAvailablePets returns every available pet the adopter has neither
	// liked nor passed. Ranking and truncation happen after scoring.
	ListAvailablePets(ctx context.Context, adopterID uuid.UUID) ([]*Pet, error)

	CreateMatch(ctx context.Context, m *Match) error
	GetMatch(ctx context.Context, id uuid.UUID) (*Match, error)
	// ListMatchesForAdopter returns the adopter's matches (is_match only).
	ListMatchesForAdopter(ctx context.Context, userID uuid.UUID) ([]*Match, error)
	// ListMatchesForFoundation returns matches on any pet the foundation owns.
	ListMatchesForFoundation(ctx context.Context, foundationID uuid.UUID) ([]*Match, error)
	UpdateMatchStatus(ctx context.Context, id uuid.UUID, status string) error

	CreateAppointment(ctx context.Context, a *Appointment) error
	// ListAppointmentsForAdopter returns appointments on the adopter's matches,
	// soonest first, each with its match.
	ListAppointmentsForAdopter(ctx context.Context, userID uuid.UUID) ([]*Appointment, error)
	// ListAppointmentsForFoundation returns appointments on matches for the
	// foundation's pets, soonest first, each with its match.
	ListAppointmentsForFoundation(ctx context.Context, foundationID uuid.UUID) ([]*Appointment, error)

	CreateChatMessage(ctx context.Context, m *ChatMessage) error
	// ListChatMessages returns up to limit of the newest messages of a match
	// sent before the given time (any time when zero), oldest first.
	ListChatMessages(ctx context.Context, matchID uuid.UUID, before time.Time, limit int) ([]*ChatMessage, error)
}

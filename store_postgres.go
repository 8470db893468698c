package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gitea.kood.tech/petrkubec/pet-match/compatibility"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

type postgresStore struct {
	db *sql.DB
}

func newPostgresStore(db *sql.DB) *postgresStore {
	return &postgresStore{db: db}
}

const userColumns = `id, email, name, age, user_type, personality_traits`

const petColumns = `id, foundation_id, name, breed, age, personality_traits, images, status, created_at`

const matchColumns = `id, user_id, pet_id, match_score, is_match, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var traits []byte
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Age, &u.UserType, &traits); err != nil {
		return nil, err
	}
	if len(traits) > 0 && string(traits) != "null" {
		var p compatibility.Profile
		if err := json.Unmarshal(traits, &p); err != nil {
			return nil, fmt.Errorf("decoding traits of user %s: %w", u.ID, err)
		}
		u.PersonalityTraits = &p
	}
	return &u, nil
}

func scanPet(row rowScanner) (*Pet, error) {
	var p Pet
	var traits, images []byte
	if err := row.Scan(&p.ID, &p.FoundationID, &p.Name, &p.Breed, &p.Age, &traits, &images, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(traits, &p.PersonalityTraits); err != nil {
		return nil, fmt.Errorf("decoding traits of pet %s: %w", p.ID, err)
	}
	p.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("decoding images of pet %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

func scanMatch(row rowScanner) (*Match, error) {
	var m Match
	if err := row.Scan(&m.ID, &m.UserID, &m.PetID, &m.MatchScore, &m.IsMatch, &m.Status, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func uuidStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (s *postgresStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func (s *postgresStore) GetUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*User, error) {
	out := make(map[uuid.UUID]*User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (s *postgresStore) GetPet(ctx context.Context, id uuid.UUID) (*Pet, error) {
	p, err := scanPet(s.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pet %s: %w", id, err)
	}
	return p, nil
}

func (s *postgresStore) GetPets(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Pet, error) {
	out := make(map[uuid.UUID]*Pet, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("get pets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (s *postgresStore) ListAvailablePets(ctx context.Context, adopterID uuid.UUID) ([]*Pet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets p
		WHERE p.status = $1
		  AND NOT EXISTS (SELECT 1 FROM matches m WHERE m.user_id = $2 AND m.pet_id = p.id)
		ORDER BY p.created_at DESC
	`, PetStatusAvailable, adopterID)
	if err != nil {
		return nil, fmt.Errorf("list available pets: %w", err)
	}
	defer rows.Close()

	pets := make([]*Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		pets = append(pets, p)
	}
	return pets, rows.Err()
}

func (s *postgresStore) CreateMatch(ctx context.Context, m *Match) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO matches (id, user_id, pet_id, match_score, is_match, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, m.ID, m.UserID, m.PetID, int(m.MatchScore), m.IsMatch, m.Status).Scan(&m.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrAlreadyInteracted
		}
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

func (s *postgresStore) GetMatch(ctx context.Context, id uuid.UUID) (*Match, error) {
	m, err := scanMatch(s.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get match %s: %w", id, err)
	}
	return m, nil
}

func (s *postgresStore) listMatches(ctx context.Context, query string, arg uuid.UUID) ([]*Match, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *postgresStore) ListMatchesForAdopter(ctx context.Context, userID uuid.UUID) ([]*Match, error) {
	return s.listMatches(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE user_id = $1 AND is_match = TRUE
		ORDER BY created_at DESC
	`, userID)
}

func (s *postgresStore) ListMatchesForFoundation(ctx context.Context, foundationID uuid.UUID) ([]*Match, error) {
	return s.listMatches(ctx, `
		SELECT m.id, m.user_id, m.pet_id, m.match_score, m.is_match, m.status, m.created_at
		FROM matches m
		JOIN pets p ON p.id = m.pet_id
		WHERE p.foundation_id = $1 AND m.is_match = TRUE
		ORDER BY m.created_at DESC
	`, foundationID)
}

func (s *postgresStore) UpdateMatchStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update match %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

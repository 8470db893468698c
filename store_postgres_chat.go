package main

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

const appointmentSelect = `
	SELECT a.id, a.match_id, to_char(a.visit_date, 'YYYY-MM-DD'), to_char(a.visit_date + a.visit_time, 'HH24:MI'),
	       a.status, a.created_by, a.created_at,
	       m.id, m.user_id, m.pet_id, m.match_score, m.is_match, m.status, m.created_at
	FROM appointments a
	JOIN matches m ON m.id = a.match_id`

func scanAppointment(row rowScanner) (*Appointment, error) {
	var a Appointment
	var m Match
	if err := row.Scan(
		&a.ID, &a.MatchID, &a.Date, &a.Time, &a.Status, &a.CreatedBy, &a.CreatedAt,
		&m.ID, &m.UserID, &m.PetID, &m.MatchScore, &m.IsMatch, &m.Status, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.Match = &m
	return &a, nil
}

func (s *postgresStore) CreateAppointment(ctx context.Context, a *Appointment) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO appointments (id, match_id, visit_date, visit_time, status, created_by)
		VALUES ($1, $2, $3::date, $4::time, $5, $6)
		RETURNING created_at
	`, a.ID, a.MatchID, a.Date, a.Time, a.Status, a.CreatedBy).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create appointment for match %s: %w", a.MatchID, err)
	}
	return nil
}

func (s *postgresStore) listAppointments(ctx context.Context, query string, arg uuid.UUID) ([]*Appointment, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	out := make([]*Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *postgresStore) ListAppointmentsForAdopter(ctx context.Context, userID uuid.UUID) ([]*Appointment, error) {
	return s.listAppointments(ctx, appointmentSelect+`
		WHERE m.user_id = $1
		ORDER BY a.visit_date, a.visit_time, a.created_at
	`, userID)
}

func (s *postgresStore) ListAppointmentsForFoundation(ctx context.Context, foundationID uuid.UUID) ([]*Appointment, error) {
	return s.listAppointments(ctx, appointmentSelect+`
		JOIN pets p ON p.id = m.pet_id
		WHERE p.foundation_id = $1
		ORDER BY a.visit_date, a.visit_time, a.created_at
	`, foundationID)
}

func (s *postgresStore) CreateChatMessage(ctx context.Context, m *ChatMessage) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO chat_messages (id, match_id, sender_id, sender_type, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, m.ID, m.MatchID, m.SenderID, m.SenderType, m.Body).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create chat message for match %s: %w", m.MatchID, err)
	}
	return nil
}

func (s *postgresStore) ListChatMessages(ctx context.Context, matchID uuid.UUID, before time.Time, limit int) ([]*ChatMessage, error) {
	var beforeArg sql.NullTime
	if !before.IsZero() {
		beforeArg = sql.NullTime{Time: before, Valid: true}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, match_id, sender_id, sender_type, body, created_at
		FROM chat_messages
		WHERE match_id = $1
		  AND ($2::timestamptz IS NULL OR created_at < $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, matchID, beforeArg, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages of match %s: %w", matchID, err)
	}
	defer rows.Close()

	msgs := make([]*ChatMessage, 0, limit)
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.MatchID, &m.SenderID, &m.SenderType, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest page was fetched first; hand it back in reading order.
	slices.Reverse(msgs)
	return msgs, nil
}

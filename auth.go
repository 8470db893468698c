package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ctxKey is the key type for request-scoped values.
type ctxKey string

const currentUserKey ctxKey = "currentUser"

// Claims are the token claims issued by the account service.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// parseUserID validates an HS256 token and returns the user id it carries.
func parseUserID(secret []byte, tokenStr string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user_id claim: %w", err)
	}
	return id, nil
}

// tokenFromRequest reads the bearer token from the Authorization header,
// falling back to the token query param for websocket clients (browsers
// can't set headers on the upgrade request).
func tokenFromRequest(r *http.Request) (string, bool) {
	if parts := strings.Fields(r.Header.Get("Authorization")); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1], true
	}
	if q := strings.TrimSpace(r.URL.Query().Get("token")); q != "" {
		return q, true
	}
	return "", false
}

// authenticate resolves the caller from the token and puts the user record
// on the request context.
func (s *server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := tokenFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		userID, err := parseUserID(s.jwtSecret, tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "token_expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		user, err := s.store.GetUser(r.Context(), userID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "user_not_found")
			return
		}
		if err != nil {
			s.internalError(w, r, "loading user", err)
			return
		}
		next(w, r.WithContext(withCurrentUser(r.Context(), user)))
	}
}

func withCurrentUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// currentUser returns the user set by authenticate.
func currentUser(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(currentUserKey).(*User)
	return u, ok && u != nil
}

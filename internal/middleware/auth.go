// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dailypuzzlepost/puzzlebank/internal/config"
	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
)

// Authenticator guards mutation endpoints. Two credential forms are
// accepted on the Authorization header:
//
//   - Bearer <JWT>: HS256 token signed with the configured secret
//   - Token <value>: static admin token checked against a bcrypt hash
//
// With auth disabled every request passes, which is the mode for
// single-operator deployments behind a private network.
type Authenticator struct {
	enabled        bool
	jwtSecret      []byte
	adminTokenHash []byte
}

// NewAuthenticator builds an authenticator from security config.
func NewAuthenticator(cfg config.SecurityConfig) *Authenticator {
	return &Authenticator{
		enabled:        cfg.AuthEnabled,
		jwtSecret:      []byte(cfg.JWTSecret),
		adminTokenHash: []byte(cfg.AdminTokenHash),
	}
}

// Require rejects unauthenticated requests with 401.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled {
			next.ServeHTTP(w, r)
			return
		}

		if err := a.authorize(r.Header.Get("Authorization")); err != nil {
			logger := logging.Ctx(r.Context())
			logger.Warn().
				Err(err).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Msg("rejected unauthenticated request")
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) authorize(header string) error {
	scheme, credential, found := strings.Cut(header, " ")
	if !found {
		return fmt.Errorf("missing or malformed Authorization header")
	}

	switch strings.ToLower(scheme) {
	case "bearer":
		return a.verifyJWT(credential)
	case "token":
		return a.verifyStaticToken(credential)
	default:
		return fmt.Errorf("unsupported authorization scheme %q", scheme)
	}
}

func (a *Authenticator) verifyJWT(tokenString string) error {
	if len(a.jwtSecret) == 0 {
		return fmt.Errorf("JWT authentication not configured")
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

func (a *Authenticator) verifyStaticToken(token string) error {
	if len(a.adminTokenHash) == 0 {
		return fmt.Errorf("static token authentication not configured")
	}
	if err := bcrypt.CompareHashAndPassword(a.adminTokenHash, []byte(token)); err != nil {
		return fmt.Errorf("invalid admin token")
	}
	return nil
}

// IssueToken mints a short-lived HS256 token for the given subject.
// Used by operator tooling, not by the serving path.
func (a *Authenticator) IssueToken(subject string, ttl time.Duration) (string, error) {
	if len(a.jwtSecret) == 0 {
		return "", fmt.Errorf("JWT authentication not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "puzzlebank",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="puzzlebank"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "error",
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": "authentication required",
		},
	})
}

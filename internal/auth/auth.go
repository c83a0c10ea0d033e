// Package auth issues and verifies signed session tokens for personas.
// Passwords are stored as bcrypt hashes; sessions are stateless JWTs so the
// store never holds token rows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/westeroschronicles/chronicle/internal/model"
	"github.com/westeroschronicles/chronicle/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Service struct {
	store    store.ProfileStore
	secret   []byte
	tokenTTL time.Duration
}

// Verified identifies the authenticated persona behind a bearer token.
type Verified struct {
	UserID   string
	Username string
}

func NewService(st store.ProfileStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: st, secret: []byte(secret), tokenTTL: tokenTTL}
}

// Signup creates a profile and returns it with a fresh session token.
func (s *Service) Signup(ctx context.Context, username, password, house string) (model.Profile, string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 2 {
		return model.Profile{}, "", errors.New("username must be at least 2 characters")
	}
	if len(password) < 8 {
		return model.Profile{}, "", errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.Profile{}, "", err
	}

	profile := model.Profile{
		ID:           uuid.NewString(),
		Username:     username,
		House:        house,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateProfile(ctx, &profile); err != nil {
		return model.Profile{}, "", err
	}

	token, err := s.issueToken(profile)
	if err != nil {
		return model.Profile{}, "", err
	}
	return profile, token, nil
}

// Login checks the password and returns the profile with a session token.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (model.Profile, string, error) {
	profile, err := s.store.GetProfileByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Profile{}, "", ErrInvalidCredentials
		}
		return model.Profile{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return model.Profile{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(profile)
	if err != nil {
		return model.Profile{}, "", err
	}
	return profile, token, nil
}

// Authenticate resolves a bearer token to the persona it was issued for.
func (s *Service) Authenticate(ctx context.Context, bearer string) (Verified, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Verified{}, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Verified{}, ErrInvalidToken
	}
	username, _ := claims["name"].(string)

	// The profile may have been renamed since issuance; the stable id wins.
	if profile, err := s.store.GetProfile(ctx, sub); err == nil {
		username = profile.Username
	}
	return Verified{UserID: sub, Username: username}, nil
}

func (s *Service) issueToken(profile model.Profile) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  profile.ID,
		"name": profile.Username,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

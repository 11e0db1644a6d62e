// Package auth hashes passwords and issues and verifies the signed bearer tokens of the API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gitlab.com/dirk.krummacker/contacts-book/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Token scopes. A token of one scope is never accepted in place of the other.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
)

// Config defines how tokens are signed.
type Config struct {
	Secret          []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Now             func() time.Time
}

// Service issues and verifies tokens.
type Service struct {
	cfg Config
}

// claims is the payload of both token kinds. The subject is the email address of the user.
type claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// NewService returns a token service. It fails if no secret is configured.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is not configured")
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{cfg: cfg}, nil
}

// HashPassword returns the bcrypt hash of a plain text password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the bcrypt hash.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IssueAccessToken returns a short-lived token for the user with the given email address.
func (s *Service) IssueAccessToken(email string) (string, error) {
	return s.issue(email, ScopeAccess, s.cfg.AccessTokenTTL)
}

// IssueRefreshToken returns a long-lived token that can be exchanged for a new token pair.
func (s *Service) IssueRefreshToken(email string) (string, error) {
	return s.issue(email, ScopeRefresh, s.cfg.RefreshTokenTTL)
}

func (s *Service) issue(email, scope string, ttl time.Duration) (string, error) {
	now := s.cfg.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: scope,
	})
	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", scope, err)
	}
	return signed, nil
}

// ParseAccessToken verifies an access token and returns the email address of its subject.
func (s *Service) ParseAccessToken(token string) (string, error) {
	return s.parse(token, ScopeAccess)
}

// ParseRefreshToken verifies a refresh token and returns the email address of its subject.
func (s *Service) ParseRefreshToken(token string) (string, error) {
	return s.parse(token, ScopeRefresh)
}

// parse fails with an error wrapping model.ErrUnauthorized for every invalid token.
func (s *Service) parse(token, scope string) (string, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.cfg.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s", model.ErrUnauthorized, describe(err))
	}
	if parsed.Scope != scope {
		return "", fmt.Errorf("%w: invalid scope for token", model.ErrUnauthorized)
	}
	if parsed.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", model.ErrUnauthorized)
	}
	return parsed.Subject, nil
}

// describe turns jwt library errors into short messages for the client.
func describe(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature is invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	}
	return "could not validate credentials"
}

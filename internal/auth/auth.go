package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCreds = errors.New("invalid credentials")

// Service issues and validates admin tokens. There is a single admin
// identity whose bcrypt password hash comes from configuration.
type Service struct {
	passwordHash []byte
	jwtSecret    []byte
}

// NewService builds the auth service. When no JWT secret is configured
// an ephemeral one is generated, which invalidates tokens on restart.
func NewService(passwordHash, jwtSecret string, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	secret := []byte(jwtSecret)
	if len(secret) == 0 {
		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate fallback jwt secret: %w", err)
		}
		secret = []byte(base64.RawURLEncoding.EncodeToString(buf))
		log.Warn("jwt secret is not set; using ephemeral in-memory fallback secret")
	}
	return &Service{
		passwordHash: []byte(passwordHash),
		jwtSecret:    secret,
	}, nil
}

// Enabled reports whether an admin password hash is configured. Without
// one the admin endpoints stay locked.
func (s *Service) Enabled() bool {
	return len(s.passwordHash) > 0
}

// Login checks the admin password and returns a signed token valid for
// 24 hours.
func (s *Service) Login(password string) (string, error) {
	if !s.Enabled() {
		return "", ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCreds
	}

	claims := jwt.MapClaims{
		"sub": "admin",
		"jti": uuid.NewString(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// Validate parses the token and confirms it was issued by Login.
func (s *Service) Validate(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidCreds
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidCreds
	}
	sub, err := claims.GetSubject()
	if err != nil || sub != "admin" {
		return ErrInvalidCreds
	}
	return nil
}

// HashPassword produces a bcrypt hash suitable for the config file.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}
	return string(hash), nil
}

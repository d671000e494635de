package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials is returned when the admin password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginDisabled is returned when no admin password hash or secret is configured.
	ErrLoginDisabled = errors.New("password login disabled")
)

// Service issues and checks operator tokens for the status API.
type Service struct {
	jwtConfig    *JWTConfig
	passwordHash string
}

// NewService creates an auth service. An empty passwordHash disables Login.
func NewService(jwtConfig *JWTConfig, passwordHash string) *Service {
	return &Service{
		jwtConfig:    jwtConfig,
		passwordHash: strings.TrimSpace(passwordHash),
	}
}

// Enabled reports whether tokens are required at all.
func (s *Service) Enabled() bool {
	return s != nil && len(s.jwtConfig.Secret) > 0
}

// Login exchanges the admin password for a token.
func (s *Service) Login(subject, password string) (string, error) {
	if !s.Enabled() || s.passwordHash == "" {
		return "", ErrLoginDisabled
	}
	if err := ComparePassword(s.passwordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(subject)
}

// IssueToken signs a token for subject without a password check.
func (s *Service) IssueToken(subject string) (string, error) {
	if subject == "" {
		subject = RoleAdmin
	}
	token, err := GenerateToken(s.jwtConfig, subject)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// ValidateToken checks a bearer token.
func (s *Service) ValidateToken(token string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, token)
}

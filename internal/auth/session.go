// Package auth holds the signed-in user's session. The session is an HMAC
// signed JWT stored in a token file; its subject is the user id that scopes
// every remote query.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yosuakev/learnful/internal/config"
	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/logging"
)

// ErrNoSecret is returned when a token must be signed or verified without a
// configured secret.
var ErrNoSecret = errors.New("session secret is not configured")

// Claims are the JWT claims of a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenSession implements gateway.SessionSource over a token file.
type TokenSession struct {
	cfg              config.SessionConfig
	remoteConfigured bool
	logger           *logging.Logger

	// Now is the clock used to issue and check tokens.
	Now func() time.Time
}

func NewTokenSession(cfg config.SessionConfig, remoteConfigured bool, logger *logging.Logger) *TokenSession {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TokenSession{
		cfg:              cfg,
		remoteConfigured: remoteConfigured,
		logger:           logger.WithComponent("auth"),
		Now:              time.Now,
	}
}

func (s *TokenSession) RemoteConfigured() bool {
	return s.remoteConfigured
}

// CurrentSession returns the session in the token file, or nil when the file
// is missing, expired or not signed with the configured secret.
func (s *TokenSession) CurrentSession(_ context.Context) *domain.UserSession {
	if s.cfg.Secret == "" || s.cfg.TokenFile == "" {
		return nil
	}
	raw, err := os.ReadFile(s.cfg.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		s.logger.WithError(err).Warnw("reading session token failed", "path", s.cfg.TokenFile)
		return nil
	}
	sess, err := s.Verify(strings.TrimSpace(string(raw)))
	if err != nil {
		s.logger.WithError(err).Debugw("session token rejected")
		return nil
	}
	return sess
}

// Issue signs a token for userID valid for the configured TTL.
func (s *TokenSession) Issue(userID string) (string, error) {
	if s.cfg.Secret == "" {
		return "", ErrNoSecret
	}
	if strings.TrimSpace(userID) == "" {
		return "", domain.NewValidationError("session", "user_id", "required")
	}
	now := s.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the session it carries.
func (s *TokenSession) Verify(tokenString string) (*domain.UserSession, error) {
	if s.cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return &domain.UserSession{UserID: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Login issues a token for userID and writes it to the token file.
func (s *TokenSession) Login(userID string) (*domain.UserSession, error) {
	token, err := s.Issue(userID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.TokenFile), 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(s.cfg.TokenFile, []byte(token+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("writing session token: %w", err)
	}
	s.logger.Infow("signed in", "user_id", userID)
	return s.Verify(token)
}

// Logout removes the token file. Logging out twice is not an error.
func (s *TokenSession) Logout() error {
	if err := os.Remove(s.cfg.TokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session token: %w", err)
	}
	return nil
}

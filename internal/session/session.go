package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no token in session")

// Session is the credential shared by every component of the client.
// Synchronizers only read it; the account workflow writes it.
type Session struct {
	mutex  sync.RWMutex
	store  Store
	logger *slog.Logger
	creds  Credentials
}

// Claims is the unverified content of the bearer token.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Open restores the session persisted in store.
func Open(store Store, logger *slog.Logger) (*Session, error) {
	creds, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if creds.Token != "" {
		logger.Debug("Restored session", slog.String("email", creds.Email))
	}

	return &Session{
		store:  store,
		logger: logger,
		creds:  creds,
	}, nil
}

// Token returns the current bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.creds.Token
}

// Email returns the account email remembered at login.
func (s *Session) Email() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.creds.Email
}

// LoggedIn decides between the welcome view and the login prompt.
// It is a convenience flag, not an authorization check.
func (s *Session) LoggedIn() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.creds.Email != "" && s.creds.Token != ""
}

// Set stores a freshly issued token. The in-memory value is updated even if
// persisting fails so the running process stays authenticated.
func (s *Session) Set(token, email string) error {
	s.mutex.Lock()
	s.creds = Credentials{Token: token, Email: email}
	s.mutex.Unlock()

	if err := s.store.Save(Credentials{Token: token, Email: email}); err != nil {
		s.logger.Error("Failed to persist session", slog.Any("err", err))
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear forgets the credential.
func (s *Session) Clear() error {
	s.mutex.Lock()
	s.creds = Credentials{}
	s.mutex.Unlock()

	if err := s.store.Delete(); err != nil {
		s.logger.Error("Failed to clear persisted session", slog.Any("err", err))
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Claims decodes the token without verifying its signature. The client
// never relies on it for authorization.
func (s *Session) Claims() (Claims, error) {
	token := s.Token()
	if token == "" {
		return Claims{}, ErrNoToken
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, fmt.Errorf("decode token: %w", err)
	}

	var claims Claims
	claims.Subject, _ = mapClaims.GetSubject()
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}

// Close releases the underlying store.
func (s *Session) Close() error {
	return s.store.Close()
}

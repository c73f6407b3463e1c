package admin

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log"
	"sync"

	"github.com/dexhavrelock-sketch/oil-management/internal/config"
)

// Level is an admin privilege level. Full admins grant unrestricted cash,
// raise the limited role's quota and control every event including the
// moon run; limited admins only grant cash within their quota.
type Level string

const (
	LevelFull    Level = "full"
	LevelLimited Level = "limited"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialChecker authenticates a username/password pair. Pluggable so
// deployments can swap the static table for something hardened.
type CredentialChecker interface {
	Authenticate(username, password string) (Level, bool)
}

// StaticCredentials checks against the configured credential table. An
// empty table authenticates nobody.
type StaticCredentials struct {
	creds []config.AdminCredential
}

func NewStaticCredentials(cfg config.AdminConfig) *StaticCredentials {
	return &StaticCredentials{creds: cfg.Credentials}
}

func (s *StaticCredentials) Authenticate(username, password string) (Level, bool) {
	for _, c := range s.creds {
		userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
		if !userOK || !passOK {
			continue
		}
		switch Level(c.Level) {
		case LevelFull, LevelLimited:
			return Level(c.Level), true
		}
	}
	return "", false
}

// Service issues and resolves admin session tokens. Authentication failure
// is a boolean, not an error; there is no lockout or throttling.
type Service struct {
	checker CredentialChecker
	logger  *log.Logger

	mu       sync.Mutex
	sessions map[string]Level
}

func NewService(checker CredentialChecker, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		checker:  checker,
		logger:   logger,
		sessions: map[string]Level{},
	}
}

// Login authenticates and returns a session token on success.
func (s *Service) Login(username, password string) (token string, level Level, ok bool) {
	level, ok = s.checker.Authenticate(username, password)
	if !ok {
		return "", "", false
	}
	token = newToken()
	s.mu.Lock()
	s.sessions[token] = level
	s.mu.Unlock()
	s.logger.Printf("[admin] %s logged in (%s)", username, level)
	return token, level, true
}

// LevelForToken resolves a previously issued token.
func (s *Service) LevelForToken(token string) (Level, bool) {
	if token == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	level, ok := s.sessions[token]
	return level, ok
}

func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func newToken() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// Package auth signs staff in and out of the back office.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	appactivity "github.com/tehraja/backend/internal/application/activity"
	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/shared"
	"github.com/tehraja/backend/internal/infrastructure/auth"
	"github.com/tehraja/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Error codes specific to login
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // failed attempts before the username is locked
	LockDuration     time.Duration // how long a locked username stays locked
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

type account struct {
	config.StaffAccount
	role auth.Role
}

type failures struct {
	count       int
	lockedUntil time.Time
}

// AuthService checks staff credentials against the two configured accounts
type AuthService struct {
	accounts   map[string]account
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logs       *appactivity.LogService
	config     AuthServiceConfig
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	failures map[string]*failures
}

// NewAuthService creates a new authentication service. Accounts without a
// username are skipped.
func NewAuthService(
	staff config.StaffConfig,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logs *appactivity.LogService,
	cfg AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	s := &AuthService{
		accounts:   make(map[string]account, 2),
		jwtService: jwtService,
		blacklist:  blacklist,
		logs:       logs,
		config:     cfg,
		logger:     logger,
		now:        time.Now,
		failures:   make(map[string]*failures),
	}
	for _, a := range []account{{staff.Admin, auth.RoleAdmin}, {staff.Cashier, auth.RoleCashier}} {
		if a.Username != "" {
			s.accounts[strings.ToLower(a.Username)] = a
		}
	}
	return s
}

// Login verifies credentials, signs an access token and records LOGIN
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	s.logger.Info("Login attempt", zap.String("username", username))

	if s.locked(username) {
		s.logger.Warn("Login attempt for locked account", zap.String("username", username))
		return nil, shared.NewDomainError(CodeAccountLocked, "Too many failed login attempts. Please try again later")
	}

	a, ok := s.accounts[username]
	if !ok || auth.CheckPassword(req.Password, a.PasswordHash, a.Password) != nil {
		if s.recordFailure(username) {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError(CodeAccountLocked, "Too many failed login attempts. Please try again later")
		}
		s.logger.Warn("Invalid login", zap.String("username", username))
		return nil, shared.NewDomainError(CodeInvalidCredentials, "Invalid username or password")
	}
	s.clearFailures(username)

	display := a.DisplayName
	if display == "" {
		display = a.Username
	}
	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		Username:    a.Username,
		DisplayName: display,
		Role:        a.role,
	})
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	if _, err := s.logs.Append(ctx, activity.ActionLogin, "Signed in as "+string(a.role), display); err != nil {
		return nil, err
	}

	s.logger.Info("Staff logged in", zap.String("username", a.Username), zap.String("role", string(a.role)))
	return &LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		Staff:       StaffInfo{Username: a.Username, DisplayName: display, Role: a.role},
	}, nil
}

// Logout revokes the session token for the rest of its lifetime and records
// LOGOUT
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return shared.ErrUnauthorized
	}
	if s.blacklist != nil && claims.ID != "" {
		if ttl := claims.RemainingTTL(s.now()); ttl > 0 {
			if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
				return shared.NewPersistenceError("revoke session", err)
			}
		}
	}
	actor := claims.DisplayName
	if actor == "" {
		actor = claims.Username
	}
	if _, err := s.logs.Append(ctx, activity.ActionLogout, "Signed out", actor); err != nil {
		return err
	}
	s.logger.Info("Staff logged out", zap.String("username", claims.Username))
	return nil
}

func (s *AuthService) locked(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.failures[username]
	if !ok || f.lockedUntil.IsZero() {
		return false
	}
	if s.now().After(f.lockedUntil) {
		delete(s.failures, username)
		return false
	}
	return true
}

// recordFailure counts a failed attempt and reports whether it locked the
// username
func (s *AuthService) recordFailure(username string) bool {
	if s.config.MaxLoginAttempts <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.failures[username]
	if !ok {
		f = &failures{}
		s.failures[username] = f
	}
	f.count++
	if f.count >= s.config.MaxLoginAttempts {
		f.lockedUntil = s.now().Add(s.config.LockDuration)
		return true
	}
	return false
}

func (s *AuthService) clearFailures(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, username)
}

// Package service implements account registration and password login.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/audit"
	userdomain "github.com/shahwaiz14/event-tracker/internal/user/domain"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// AuthResult holds the outcome of Register (UserID only) or Login (token too).
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	UserID      string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password []byte) (string, error)
	Compare(hash string, password []byte) error
	// Equalize burns the time of a Compare so unknown usernames answer as slowly as known ones.
	Equalize(password []byte)
}

// TokenIssuer issues access tokens.
type TokenIssuer interface {
	IssueAccess(userID, username string) (string, time.Time, error)
}

// AuthService implements register and login.
type AuthService struct {
	users  UserRepo
	hasher PasswordHasher
	tokens TokenIssuer
	audit  audit.AuditLogger
	now    func() time.Time
}

// NewAuthService returns an AuthService. auditLogger may be nil.
func NewAuthService(users UserRepo, hasher PasswordHasher, tokens TokenIssuer, auditLogger audit.AuditLogger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, audit: auditLogger, now: time.Now}
}

// Register creates a user with the given username and password.
// Returns AuthResult with UserID only; the caller must Login to get a token.
func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	verr := &apperr.ValidationError{}
	verr.Merge(userdomain.ValidateUsername(username))
	validatePassword(verr, password)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return nil, apperr.ErrUsernameTaken
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	u := &userdomain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hashed,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	s.logAudit(ctx, u.ID, "register")
	return &AuthResult{UserID: u.ID}, nil
}

// Login checks the password and issues an access token. Unknown users and wrong
// passwords both return apperr.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.ErrInvalidCredentials
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if u == nil || u.PasswordHash == "" {
		s.hasher.Equalize([]byte(password))
		s.logAudit(ctx, "", "login_failed")
		return nil, apperr.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		s.logAudit(ctx, u.ID, "login_failed")
		return nil, apperr.ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.IssueAccess(u.ID, u.Username)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}
	s.logAudit(ctx, u.ID, "login")
	return &AuthResult{AccessToken: token, ExpiresAt: expiresAt, UserID: u.ID}, nil
}

func (s *AuthService) logAudit(ctx context.Context, userID, action string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, userID, action, "user", "")
}

func validatePassword(verr *apperr.ValidationError, password string) {
	switch {
	case password == "":
		verr.Add("password", "This field may not be blank.")
	case utf8.RuneCountInString(password) < MinPasswordLength:
		verr.Add("password", fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	case len(password) > maxPasswordBytes:
		verr.Add("password", fmt.Sprintf("Ensure this field has no more than %d bytes.", maxPasswordBytes))
	}
}

// Package auth implements registration and login over the user
// directory. Passwords are bcrypt-hashed; the active user is remembered
// in the progress store so a restart restores the signed-in session.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medquiz/medquiz/internal/progress"
	"github.com/medquiz/medquiz/internal/state"
)

var (
	// ErrInvalidInput reports a registration payload that failed
	// validation. Nothing is mutated when it is returned.
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrEmailTaken reports a registration with an already-known email.
	ErrEmailTaken = errors.New("auth: email already registered")

	// ErrBadCredentials reports a login with an unknown email or a
	// wrong password.
	ErrBadCredentials = errors.New("auth: invalid credentials")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service handles the authentication flow for one device.
type Service struct {
	store *progress.Store
	state *state.Container
	now   func() time.Time
}

// New creates a Service.
func New(store *progress.Store, st *state.Container) *Service {
	return NewWithClock(store, st, time.Now)
}

// NewWithClock creates a Service with an injected clock, for tests.
func NewWithClock(store *progress.Store, st *state.Container, now func() time.Time) *Service {
	return &Service{store: store, state: st, now: now}
}

// Register creates a new user and signs them in. Validation failures
// and duplicate emails are reported without mutating anything.
func (s *Service) Register(username, email, password string) (progress.DirectoryEntry, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return progress.DirectoryEntry{}, err
	}

	if _, exists, err := s.store.FindUserByEmail(email); err != nil {
		return progress.DirectoryEntry{}, err
	} else if exists {
		return progress.DirectoryEntry{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return progress.DirectoryEntry{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	entry := progress.DirectoryEntry{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		CreatedAt:    now,
		LastLogin:    now,
	}
	if err := s.store.UpsertUser(entry); err != nil {
		return progress.DirectoryEntry{}, err
	}

	return s.Login(email, password)
}

// Login verifies credentials, refreshes last-login, marks the user
// active on this device, and populates the state container.
func (s *Service) Login(email, password string) (progress.DirectoryEntry, error) {
	entry, ok, err := s.store.FindUserByEmail(email)
	if err != nil {
		return progress.DirectoryEntry{}, err
	}
	if !ok {
		return progress.DirectoryEntry{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(entry.PasswordHash), []byte(password)) != nil {
		return progress.DirectoryEntry{}, ErrBadCredentials
	}

	entry.LastLogin = s.now()
	if err := s.store.UpsertUser(entry); err != nil {
		return progress.DirectoryEntry{}, err
	}
	if err := s.store.SetActiveUser(entry.ID); err != nil {
		return progress.DirectoryEntry{}, err
	}
	if err := s.state.Login(state.User{
		ID:       entry.ID,
		Username: entry.Username,
		Email:    entry.Email,
	}); err != nil {
		return progress.DirectoryEntry{}, err
	}
	return entry, nil
}

// Logout clears the active user and the state container.
func (s *Service) Logout() error {
	if err := s.store.ClearActiveUser(); err != nil {
		return err
	}
	return s.state.Logout()
}

// Restore signs the persisted active user back in, if one exists.
func (s *Service) Restore() (progress.DirectoryEntry, bool, error) {
	id, ok, err := s.store.ActiveUser()
	if err != nil || !ok {
		return progress.DirectoryEntry{}, false, err
	}

	users, err := s.store.ListUsers()
	if err != nil {
		return progress.DirectoryEntry{}, false, err
	}
	for _, u := range users {
		if u.ID == id {
			if err := s.state.Login(state.User{
				ID:       u.ID,
				Username: u.Username,
				Email:    u.Email,
			}); err != nil {
				return progress.DirectoryEntry{}, false, err
			}
			return u, true, nil
		}
	}
	return progress.DirectoryEntry{}, false, nil
}

// UpdateProfile changes the signed-in user's username.
func (s *Service) UpdateProfile(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: no changes provided", ErrInvalidInput)
	}

	snap := s.state.Current()
	if !snap.User.Authenticated {
		return fmt.Errorf("%w: not signed in", ErrBadCredentials)
	}

	users, err := s.store.ListUsers()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID == snap.User.ID {
			u.Username = username
			if err := s.store.UpsertUser(u); err != nil {
				return err
			}
			return s.state.Set(state.PathUserUsername, username)
		}
	}
	return fmt.Errorf("%w: unknown user", ErrBadCredentials)
}

func validateRegistration(username, email, password string) error {
	if len(strings.TrimSpace(username)) < 3 {
		return fmt.Errorf("%w: username must be at least 3 characters", ErrInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	return nil
}

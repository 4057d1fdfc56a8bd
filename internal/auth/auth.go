// Package auth is the session gate: it owns the single persisted session
// record and the login/signup/logout transitions.
//
// There is no credential verification and no token. Login accepts any
// email/password pair with a non-empty password; signup additionally
// requires a six-character password matching its confirmation. The gate
// has two states, anonymous and authenticated, and the persisted record
// is the sole source of "who is logged in".
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pftrack/internal/core"
	"pftrack/internal/store"
)

// MinPasswordLength applies to signup only; login predates the rule.
const MinPasswordLength = 6

// ValidationError reports a malformed credential. It is raised
// synchronously and is the only error class this package surfaces.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	ErrEmailRequired    = &ValidationError{Field: "email", Message: "email is required"}
	ErrPasswordRequired = &ValidationError{Field: "password", Message: "password is required"}
	ErrPasswordTooShort = &ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	ErrPasswordMismatch = &ValidationError{Field: "confirm", Message: "passwords do not match"}
)

// IsValidation reports whether err is a credential validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Gate reads and writes the session record through the record store.
type Gate struct {
	store *store.Store
}

func New(s *store.Store) *Gate {
	return &Gate{store: s}
}

// Current returns the persisted session state.
func (g *Gate) Current(ctx context.Context) core.AuthState {
	return g.store.GetAuth(ctx)
}

// IsAuthenticated reports whether a user is logged in.
func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	return g.store.GetAuth(ctx).Authenticated()
}

// Login starts a session for the given email, replacing any prior one.
// The only rejections are an empty email or an empty password.
func (g *Gate) Login(ctx context.Context, email, password string) (core.AuthState, error) {
	if email == "" {
		return core.Anonymous(), ErrEmailRequired
	}
	if len(password) == 0 {
		return core.Anonymous(), ErrPasswordRequired
	}
	return g.start(ctx, email)
}

// Signup validates the new credentials and starts a session. Its effect on
// the session record is identical to Login.
func (g *Gate) Signup(ctx context.Context, email, password, confirm string) (core.AuthState, error) {
	if email == "" {
		return core.Anonymous(), ErrEmailRequired
	}
	if len(password) < MinPasswordLength {
		return core.Anonymous(), ErrPasswordTooShort
	}
	if password != confirm {
		return core.Anonymous(), ErrPasswordMismatch
	}
	return g.start(ctx, email)
}

func (g *Gate) start(ctx context.Context, email string) (core.AuthState, error) {
	profile := core.NewProfile(email)
	next := core.AuthState{User: &profile}
	if err := g.store.SetAuth(ctx, next); err != nil {
		return core.Anonymous(), err
	}
	slog.InfoContext(ctx, "Session started", "user_id", profile.ID)
	return next, nil
}

// Logout clears the session record.
func (g *Gate) Logout(ctx context.Context) error {
	if err := g.store.SetAuth(ctx, core.Anonymous()); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Session cleared")
	return nil
}

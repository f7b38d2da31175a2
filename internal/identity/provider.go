// Package identity abstracts the hosted identity provider: it accepts
// email/password credentials and yields an opaque, stable subject id plus
// the provider-known email and display name. Provider failures on sign-in
// and account creation are surfaced with stable, user-presentable errors;
// nothing in this package degrades silently.
package identity

import "context"

// Subject is the authenticated identity as the provider reports it. These
// fields are known with certainty after a successful sign-in; everything
// else about the user comes from the profile store.
type Subject struct {
	ID          string
	Email       string
	DisplayName string
}

// Provider is the identity provider port.
type Provider interface {
	// SignIn validates credentials and returns the subject. Failures are
	// shared.ErrInvalidCredentials, shared.ErrAccountDisabled, or a
	// wrapped store error when the provider itself is unreachable.
	SignIn(ctx context.Context, email, password string) (Subject, error)
	// CreateAccount provisions a new account. shared.ErrEmailTaken when
	// the email is already registered.
	CreateAccount(ctx context.Context, email, password, displayName string) (Subject, error)
}

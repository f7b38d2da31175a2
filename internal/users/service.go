package users

import (
	"context"
	"fmt"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/identity"
	"github.com/vb-entreprise/rrsa-server/internal/repository"
)

// Service handles user management business logic. Create provisions both
// the identity account and the profile server-side, so an administrator
// adding a user never has their own session touched.
type Service struct {
	provider identity.Provider
	profiles *Repository
}

// NewService builds a Service instance.
func NewService(provider identity.Provider, profiles *Repository) *Service {
	return &Service{provider: provider, profiles: profiles}
}

// List returns all user profiles.
func (s *Service) List(ctx context.Context) []repository.Record[Profile] {
	return s.profiles.List(ctx)
}

// Create provisions a new account with the identity provider and stores
// its profile with the assigned role. Provider and store rejections are
// surfaced verbatim.
func (s *Service) Create(ctx context.Context, email, password, displayName string, role authz.Role) (Profile, error) {
	subject, err := s.provider.CreateAccount(ctx, email, password, displayName)
	if err != nil {
		return Profile{}, err
	}
	profile := Profile{
		SubjectID:   subject.ID,
		Email:       subject.Email,
		DisplayName: subject.DisplayName,
		Role:        string(role),
	}
	if _, err := s.profiles.Create(ctx, profile); err != nil {
		return Profile{}, fmt.Errorf("users: store profile: %w", err)
	}
	return profile, nil
}

// ChangeRole assigns a different role to an existing profile. The new
// permissions take effect on the user's next sign-in, when bootstrap
// re-resolves them.
func (s *Service) ChangeRole(ctx context.Context, subjectID string, role authz.Role) error {
	record, found := s.profiles.BySubject(ctx, subjectID)
	if !found {
		return fmt.Errorf("users: profile for subject %s: not found", subjectID)
	}
	return s.profiles.SetRole(ctx, record.ID, role)
}

package users

import (
	"context"
	"log/slog"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	"github.com/vb-entreprise/rrsa-server/internal/repository"
)

// Repository provides document store backed persistence for profiles.
type Repository struct {
	records *repository.Repository[Profile]
	logger  *slog.Logger
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		records: repository.New[Profile](store, Collection, logger),
		logger:  logger,
	}
}

// List returns all profiles, newest first. Degrades to empty when the
// store is unreachable.
func (r *Repository) List(ctx context.Context) []repository.Record[Profile] {
	return r.records.GetAll(ctx)
}

// BySubject returns the profile for a subject id. Missing and unreachable
// look the same to callers: not found. Session bootstrap depends on that
// equivalence to keep authenticated users moving.
func (r *Repository) BySubject(ctx context.Context, subjectID string) (repository.Record[Profile], bool) {
	matches := r.records.GetByField(ctx, "subjectId", subjectID)
	if len(matches) == 0 {
		return repository.Record[Profile]{}, false
	}
	return matches[0], true
}

// Create stores a new profile.
func (r *Repository) Create(ctx context.Context, profile Profile) (string, error) {
	return r.records.Create(ctx, profile)
}

// SetRole updates the role of an existing profile.
func (r *Repository) SetRole(ctx context.Context, id string, role authz.Role) error {
	return r.records.Update(ctx, id, map[string]any{"role": string(role)})
}

// SaveResolvedPermissions merge-writes a self-healed role and permission
// set onto the subject's profile, creating the profile when none exists
// yet. This is the repair write behind bootstrap's fallback ladder.
func (r *Repository) SaveResolvedPermissions(ctx context.Context, subject Profile) error {
	existing, found := r.BySubject(ctx, subject.SubjectID)
	if !found {
		_, err := r.records.Create(ctx, subject)
		return err
	}
	return r.records.Update(ctx, existing.ID, map[string]any{
		"role":        subject.Role,
		"permissions": subject.Permissions,
	})
}

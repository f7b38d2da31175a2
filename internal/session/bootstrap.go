// Package session turns a bare authenticated subject into a fully
// resolved Principal. Its one promise: a subject the identity provider
// vouched for always gets a usable principal, whatever state the
// supporting data is in.
package session

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/identity"
	"github.com/vb-entreprise/rrsa-server/internal/observability"
	"github.com/vb-entreprise/rrsa-server/internal/repository"
	"github.com/vb-entreprise/rrsa-server/internal/roles"
	"github.com/vb-entreprise/rrsa-server/internal/users"
)

// ProfileSource is the bootstrap-facing view of the user profile store.
// BySubject reports false for both a missing profile and an unreachable
// store; bootstrap treats the two identically.
type ProfileSource interface {
	BySubject(ctx context.Context, subjectID string) (repository.Record[users.Profile], bool)
	SaveResolvedPermissions(ctx context.Context, profile users.Profile) error
}

// RoleSource resolves role definitions by name, case-insensitively.
type RoleSource interface {
	FindByName(ctx context.Context, name string) (roles.RoleDefinition, bool)
}

// RepairQueue hands self-healed permission data to a background worker so
// the write retries outside the sign-in path.
type RepairQueue interface {
	EnqueueRepair(ctx context.Context, profile users.Profile) error
}

// Bootstrapper resolves principals. Safe for concurrent use; every call
// works from the subject it is given and shares nothing with other calls.
type Bootstrapper struct {
	profiles ProfileSource
	catalog  RoleSource
	policy   DefaultRolePolicy
	repairs  RepairQueue
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewBootstrapper constructs a Bootstrapper. repairs and metrics may be
// nil: without a queue the self-heal write happens inline, and metrics
// are simply skipped.
func NewBootstrapper(profiles ProfileSource, catalog RoleSource, policy DefaultRolePolicy, repairs RepairQueue, metrics *observability.Metrics, logger *slog.Logger) *Bootstrapper {
	if policy == nil {
		policy = AdminFirstPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrapper{
		profiles: profiles,
		catalog:  catalog,
		policy:   policy,
		repairs:  repairs,
		metrics:  metrics,
		logger:   logger,
	}
}

// Bootstrap resolves the principal for an authenticated subject. It never
// returns nil: when resolution itself blows up the caller still receives
// the minimal emergency principal so the operator is not locked out by a
// transient backend fault.
func (b *Bootstrapper) Bootstrap(ctx context.Context, subject identity.Subject) (p *authz.Principal) {
	defer func() {
		if recovered := recover(); recovered != nil {
			b.logger.Error("session bootstrap failed, issuing emergency principal",
				slog.String("subject", subject.ID),
				slog.Any("panic", recovered))
			b.metrics.ObserveBootstrap(observability.BootstrapEmergency)
			p = b.emergencyPrincipal(subject)
		}
	}()

	outcome := observability.BootstrapNormal

	// Load the profile. Missing and unreadable collapse into the same
	// branch: the subject proved who they are to the identity provider,
	// so absent supporting data must not keep them out.
	record, found := b.profiles.BySubject(ctx, subject.ID)

	var role authz.Role
	switch {
	case found:
		parsed, ok := authz.ParseRole(record.Data.Role)
		if ok {
			role = parsed
		} else {
			role = b.policy.RoleForNewSubject(subject)
			outcome = observability.BootstrapFallback
			b.logger.Warn("profile carries no usable role, applying default role policy",
				slog.String("subject", subject.ID),
				slog.String("stored_role", record.Data.Role),
				slog.String("default_role", string(role)))
		}
	default:
		role = b.policy.RoleForNewSubject(subject)
		outcome = observability.BootstrapFallback
		b.logger.Warn("profile missing or unreadable, applying default role policy",
			slog.String("subject", subject.ID),
			slog.String("default_role", string(role)))
	}

	// Resolve permissions: profile override, then catalog, then the
	// hard-coded admin set, then deny-everything.
	var (
		set        authz.PermissionSet
		needRepair bool
	)
	switch {
	case found && len(record.Data.Permissions) > 0:
		set = record.Data.Permissions
	default:
		if def, ok := b.catalog.FindByName(ctx, string(role)); ok {
			set = def.Permissions
			needRepair = role == authz.RoleAdmin && found
		} else if role == authz.RoleAdmin {
			set = authz.FullAccess()
			needRepair = true
			outcome = observability.BootstrapFallback
			b.logger.Warn("role catalog unavailable, using built-in admin permissions",
				slog.String("subject", subject.ID))
		} else {
			set = authz.PermissionSet{}
			outcome = observability.BootstrapFallback
			b.logger.Warn("role has no catalog entry, denying by default",
				slog.String("subject", subject.ID),
				slog.String("role", string(role)))
		}
	}

	principal := &authz.Principal{
		ID:          subject.ID,
		DisplayName: b.displayName(subject, record.Data, found),
		Email:       subject.Email,
		Role:        role,
		Permissions: set,
	}

	if needRepair || !found {
		b.scheduleRepair(ctx, users.Profile{
			SubjectID:   subject.ID,
			Email:       subject.Email,
			DisplayName: principal.DisplayName,
			Role:        string(role),
			Permissions: set,
		})
	}

	b.metrics.ObserveBootstrap(outcome)
	return principal
}

// scheduleRepair persists self-healed role and permission data so the
// next bootstrap takes the cheap path. Best-effort on every branch: a
// failed repair is logged, never surfaced.
func (b *Bootstrapper) scheduleRepair(ctx context.Context, profile users.Profile) {
	if b.repairs != nil {
		err := b.repairs.EnqueueRepair(ctx, profile)
		if err == nil {
			b.metrics.ObserveRepair("queued")
			return
		}
		b.logger.Warn("enqueue permission repair, falling back to direct write",
			slog.String("subject", profile.SubjectID),
			slog.Any("error", err))
	}
	if err := b.profiles.SaveResolvedPermissions(ctx, profile); err != nil {
		b.metrics.ObserveRepair("failed")
		b.logger.Warn("persist self-healed permissions",
			slog.String("subject", profile.SubjectID),
			slog.Any("error", err))
		return
	}
	b.metrics.ObserveRepair("direct")
}

func (b *Bootstrapper) emergencyPrincipal(subject identity.Subject) *authz.Principal {
	return &authz.Principal{
		ID:          subject.ID,
		DisplayName: b.displayName(subject, users.Profile{}, false),
		Email:       subject.Email,
		Role:        authz.RoleAdmin,
		Permissions: authz.EmergencyAccess(),
	}
}

// displayName prefers the stored profile name, then the provider-issued
// one, and finally derives a readable name from the email local part.
func (b *Bootstrapper) displayName(subject identity.Subject, profile users.Profile, found bool) string {
	if found && strings.TrimSpace(profile.DisplayName) != "" {
		return strings.TrimSpace(profile.DisplayName)
	}
	if strings.TrimSpace(subject.DisplayName) != "" {
		return strings.TrimSpace(subject.DisplayName)
	}
	local, _, _ := strings.Cut(subject.Email, "@")
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	local = strings.TrimSpace(local)
	if local == "" {
		return subject.Email
	}
	return cases.Title(language.English).String(local)
}

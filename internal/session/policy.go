package session

import (
	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/identity"
)

// DefaultRolePolicy decides the role of a subject whose profile is
// missing or unreadable. The shipped default assumes such a subject is
// the first operator account and grants admin; deployments that would
// rather fail closed inject a different policy.
type DefaultRolePolicy interface {
	RoleForNewSubject(subject identity.Subject) authz.Role
}

// StaticRolePolicy always answers with the same role.
type StaticRolePolicy struct {
	Role authz.Role
}

// RoleForNewSubject returns the configured role.
func (p StaticRolePolicy) RoleForNewSubject(identity.Subject) authz.Role {
	return p.Role
}

// AdminFirstPolicy is the default fail-open policy: a freshly
// authenticated subject with no profile becomes an admin so the first
// operator is never locked out of an empty installation.
func AdminFirstPolicy() DefaultRolePolicy {
	return StaticRolePolicy{Role: authz.RoleAdmin}
}

package users

import "github.com/vb-entreprise/rrsa-server/internal/authz"

// Collection holds user profile documents, keyed to accounts by subject id.
const Collection = "users"

// Profile is the stored application-side view of a user: the subject id
// the identity provider issued, the assigned role, and an optional
// per-user permission override that wins over the role's catalog entry.
type Profile struct {
	SubjectID   string              `json:"subjectId"`
	Email       string              `json:"email"`
	DisplayName string              `json:"displayName"`
	Role        string              `json:"role"`
	Permissions authz.PermissionSet `json:"permissions,omitempty"`
}

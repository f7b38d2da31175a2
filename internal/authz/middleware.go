package authz

import (
	"context"
	"log/slog"
	"net/http"
)

type principalContextKey struct{}

// ContextWithPrincipal attaches the resolved principal to the context.
// The session layer calls this once per request after loading the
// session; handlers and gates read it back through CurrentPrincipal.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the attached principal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// CurrentPrincipal returns the principal attached to the request, or nil.
func CurrentPrincipal(r *http.Request) *Principal {
	return PrincipalFromContext(r.Context())
}

// Middleware wires authorization gates for HTTP handlers. Checks run
// against the principal attached to the request context; an absent
// principal is an unauthenticated request, a failed check is a denial.
type Middleware struct {
	Logger *slog.Logger
}

// RequirePermission ensures the current principal may perform the given
// module/action pair.
func (m Middleware) RequirePermission(module Module, action Action) func(http.Handler) http.Handler {
	return m.require(func(p *Principal) bool {
		return CanPerform(p, module, action)
	})
}

// RequireModule ensures the current principal has at least one enabled
// action in the module. Used for navigational surfaces like the dashboard.
func (m Middleware) RequireModule(module Module) func(http.Handler) http.Handler {
	return m.require(func(p *Principal) bool {
		return CanAccessModule(p, module)
	})
}

func (m Middleware) require(allowed func(*Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if !allowed(p) {
				if m.Logger != nil {
					m.Logger.Warn("authorization denied",
						slog.String("subject", p.ID),
						slog.String("role", string(p.Role)),
						slog.String("path", r.URL.Path))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

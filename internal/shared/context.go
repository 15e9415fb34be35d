package shared

import "context"

type principalContextKey struct{}

// Principal describes the authenticated employee behind a request.
type Principal struct {
	EmployeeID int64
	Role       Role
	TokenID    string
}

// IsManager reports whether the principal holds the manager role.
func (p Principal) IsManager() bool {
	return p.Role.IsManager()
}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// Package auth issues and verifies the API's bearer tokens and carries the
// authenticated user through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/retailtally/backend/internal/model"
)

// Sentinel errors for the API layer's status mapping.
var (
	ErrUnauthenticated  = errors.New("user not authenticated")
	ErrPermissionDenied = errors.New("permission denied")
)

// UserClaims represents the authenticated user information.
type UserClaims struct {
	UID   string
	Email string
	Name  string
	Role  model.Role
}

// IsAdmin reports whether the authenticated user has the admin role.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

type contextKey string

const userClaimsKey contextKey = "user_claims"

// withUserClaims adds user claims to the context.
func withUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// WithUserClaims is the exported version for testing purposes.
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return withUserClaims(ctx, claims)
}

// GetUserClaims extracts user claims from context.
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

// RequireAuth extracts user claims from context or returns an error.
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// RequireAdmin extracts user claims and verifies the admin role.
func RequireAdmin(ctx context.Context) (*UserClaims, error) {
	claims, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", ErrPermissionDenied)
	}
	return claims, nil
}

// RequireSaleAccess verifies the authenticated user may act on a sale owned
// by employeeID. Admins may act on any sale.
func RequireSaleAccess(ctx context.Context, employeeID string) (*UserClaims, error) {
	claims, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() && claims.UID != employeeID {
		return nil, fmt.Errorf("%w: cannot access another employee's sales", ErrPermissionDenied)
	}
	return claims, nil
}

// Package gate provides permission checks over profiles of "resource:action"
// permissions. It has no dependency on domain models; callers choose the
// subject type and supply a resolver that maps subjects to profiles.
package gate

import "context"

// Gate is the central authorization checkpoint.
type Gate[S any] struct {
	resolver ProfileResolver[S]
}

// NewGate creates a Gate backed by the given resolver.
func NewGate[S any](resolver ProfileResolver[S]) *Gate[S] {
	return &Gate[S]{resolver: resolver}
}

// Authorize returns nil when subject's profile grants action on resourceType.
// Returns ErrNoProfile when the subject resolves to nothing and ErrForbidden
// when the profile lacks the permission. Resolver errors are returned as-is.
func (g *Gate[S]) Authorize(ctx context.Context, subject S, action Action, resourceType string) error {
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrNoProfile
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[S]) Can(ctx context.Context, subject S, action Action, resourceType string) bool {
	return g.Authorize(ctx, subject, action, resourceType) == nil
}

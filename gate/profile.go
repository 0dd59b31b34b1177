package gate

import (
	"context"
	"sort"
)

// Profile represents a role with a set of permissions.
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver resolves a subject to its profile.
// S is the subject type (a role name, a user id, token claims).
type ProfileResolver[S any] interface {
	Resolve(ctx context.Context, subject S) (Profile, error)
}

// StaticProfile is an in-memory profile. Denied permissions win over grants,
// which lets a profile take a wildcard and carve out exceptions.
type StaticProfile struct {
	name   string
	grants map[Permission]bool
	denies map[Permission]bool
}

// NewStaticProfile creates a profile with the given permissions.
func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{
		name:   name,
		grants: make(map[Permission]bool),
		denies: make(map[Permission]bool),
	}
	for _, perm := range permissions {
		p.grants[perm] = true
	}
	return p
}

// Deny adds exceptions to the profile and returns it for chaining.
func (p *StaticProfile) Deny(permissions ...Permission) *StaticProfile {
	for _, perm := range permissions {
		p.denies[perm] = true
	}
	return p
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns the granted permissions, sorted.
func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.grants))
	for perm := range p.grants {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// HasPermission checks if the profile has the requested permission.
// Supports wildcard matching on both grants and denies.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	for perm := range p.denies {
		if perm.Matches(requested) {
			return false
		}
	}
	for perm := range p.grants {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// StaticResolver maps subjects to fixed profiles.
type StaticResolver[S comparable] struct {
	profiles map[S]Profile
}

// NewStaticResolver creates a resolver with no mappings.
func NewStaticResolver[S comparable]() *StaticResolver[S] {
	return &StaticResolver[S]{profiles: make(map[S]Profile)}
}

// Set assigns a profile to a subject.
func (r *StaticResolver[S]) Set(subject S, profile Profile) {
	r.profiles[subject] = profile
}

// Resolve returns the profile for the given subject, or nil when unknown.
func (r *StaticResolver[S]) Resolve(_ context.Context, subject S) (Profile, error) {
	if profile, ok := r.profiles[subject]; ok {
		return profile, nil
	}
	return nil, nil
}

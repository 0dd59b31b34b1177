package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	identityCtxKey = ctxKey("identity")

	// Cookies written by the web client.
	roleCookieName  = "role"
	tokenCookieName = "auth_token"

	roleHeader = "x-role"
)

// Identity is the caller as resolved for one request. UserID and Name are
// only set when a valid bearer token was presented.
type Identity struct {
	UserID uint   `json:"userId,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   Role   `json:"role"`
}

// Authenticated reports whether the identity came from a verified token.
func (i Identity) Authenticated() bool { return i.UserID != 0 }

// Resolver derives the caller's role from a request. It never fails: anything
// that cannot be verified degrades to the configured default role.
type Resolver struct {
	Tokens      *TokenSigner
	DefaultRole string
}

// NewResolver builds a Resolver. An empty default role means analyst.
func NewResolver(tokens *TokenSigner, defaultRole string) *Resolver {
	return &Resolver{Tokens: tokens, DefaultRole: defaultRole}
}

// Resolve applies, in order: bearer token (Authorization header, then the
// auth_token cookie), the x-role header, the role cookie, the default role.
func (res *Resolver) Resolve(r *http.Request) Identity {
	if tok := bearerToken(r); tok != "" && res.Tokens != nil {
		if claims, err := res.Tokens.Verify(tok); err == nil {
			return Identity{UserID: claims.UserID, Name: claims.Name, Role: Role(strings.ToLower(claims.Role))}
		}
	}
	if v := strings.TrimSpace(r.Header.Get(roleHeader)); v != "" {
		return Identity{Role: NormalizeRole(v)}
	}
	if c, err := r.Cookie(roleCookieName); err == nil && c.Value != "" {
		return Identity{Role: NormalizeRole(c.Value)}
	}
	return Identity{Role: NormalizeRole(res.DefaultRole)}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	if c, err := r.Cookie(tokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

// WithIdentity stores the resolved identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

// FromContext extracts the identity. Requests that did not pass through the
// middleware are treated as analyst.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityCtxKey).(Identity); ok {
		return id
	}
	return Identity{Role: RoleAnalyst}
}

// UserIDFromContext extracts the authenticated user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id := FromContext(ctx)
	return id.UserID, id.Authenticated()
}

// RoleFromContext is a shorthand for FromContext(ctx).Role.
func RoleFromContext(ctx context.Context) Role { return FromContext(ctx).Role }

// Middleware attaches the resolved identity to the request context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(WithIdentity(r.Context(), res.Resolve(r)))
		next.ServeHTTP(w, r)
	})
}

package policy

import (
	"context"
	"net/http"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/auth"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/gate"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/httpx"
)

// Resource types checked by the dashboard.
const (
	ResourceAmount   = "amount"
	ResourceQueryLog = "query_log"
	ResourceInvoice  = "invoice"
	ResourceVendor   = "vendor"
	ResourceCategory = "category"
	ResourceStats    = "stats"
)

// RoleProfiles returns the static profile of each role. Analysts may list and
// view everything except monetary amounts and the chat history.
func RoleProfiles() *gate.StaticResolver[auth.Role] {
	r := gate.NewStaticResolver[auth.Role]()
	r.Set(auth.RoleAdmin, gate.NewStaticProfile(string(auth.RoleAdmin), gate.PermissionSuperAdmin))
	r.Set(auth.RoleAnalyst, gate.NewStaticProfile(string(auth.RoleAnalyst),
		gate.NewPermission(gate.WildcardAll, gate.ActionList),
		gate.NewPermission(gate.WildcardAll, gate.ActionView),
	).Deny(
		gate.NewPermission(ResourceAmount, gate.ActionView),
		gate.NewPermission(ResourceQueryLog, gate.ActionList),
	))
	return r
}

// RoleGate answers permission questions for the role resolved on the request.
type RoleGate struct {
	Gate *gate.Gate[auth.Role]
}

// NewRoleGate creates a gate over RoleProfiles.
func NewRoleGate() *RoleGate {
	return &RoleGate{Gate: gate.NewGate[auth.Role](RoleProfiles())}
}

// Can checks the caller's role for action on resourceType.
func (g *RoleGate) Can(ctx context.Context, action gate.Action, resourceType string) bool {
	return g.Gate.Can(ctx, auth.RoleFromContext(ctx), action, resourceType)
}

// CanViewAmounts decides whether monetary fields are returned unmasked.
func (g *RoleGate) CanViewAmounts(ctx context.Context) bool {
	return g.Can(ctx, gate.ActionView, ResourceAmount)
}

// RequirePermission returns middleware that answers 403 when the caller's
// role lacks the permission. Nothing is read before the check.
func (g *RoleGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.Can(r.Context(), action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/gate"
)

type failingResolver struct{}

var errBackend = errors.New("backend down")

func (failingResolver) Resolve(context.Context, string) (gate.Profile, error) {
	return nil, errBackend
}

func newTestGate() *gate.Gate[string] {
	r := gate.NewStaticResolver[string]()
	r.Set("admin", gate.NewStaticProfile("admin", gate.PermissionSuperAdmin))
	r.Set("viewer", gate.NewStaticProfile("viewer", "*:list", "*:view").Deny("amount:view"))
	return gate.NewGate[string](r)
}

func TestStaticProfile_DenyWins(t *testing.T) {
	p := gate.NewStaticProfile("viewer", "*:view").Deny("amount:view")
	if !p.HasPermission("invoice:view") {
		t.Error("expected invoice:view to be granted")
	}
	if p.HasPermission("amount:view") {
		t.Error("expected amount:view to be denied")
	}
	if got := p.Permissions(); len(got) != 1 || got[0] != "*:view" {
		t.Errorf("Permissions() = %v", got)
	}
}

func TestGate_Authorize(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	if err := g.Authorize(ctx, "admin", gate.ActionList, "query_log"); err != nil {
		t.Errorf("admin: expected nil, got %v", err)
	}
	if err := g.Authorize(ctx, "viewer", gate.ActionList, "invoice"); err != nil {
		t.Errorf("viewer list: expected nil, got %v", err)
	}
	if err := g.Authorize(ctx, "viewer", gate.ActionView, "amount"); !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("viewer amount: expected ErrForbidden, got %v", err)
	}
	if err := g.Authorize(ctx, "nobody", gate.ActionList, "invoice"); !errors.Is(err, gate.ErrNoProfile) {
		t.Errorf("unknown subject: expected ErrNoProfile, got %v", err)
	}
}

func TestGate_ResolverError(t *testing.T) {
	g := gate.NewGate[string](failingResolver{})
	if err := g.Authorize(context.Background(), "x", gate.ActionList, "invoice"); !errors.Is(err, errBackend) {
		t.Errorf("expected resolver error, got %v", err)
	}
	if g.Can(context.Background(), "x", gate.ActionList, "invoice") {
		t.Error("Can should be false on resolver error")
	}
}

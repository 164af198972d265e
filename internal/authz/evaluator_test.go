package authz

import (
	"errors"
	"testing"
)

func evalFixture() *Set {
	subjects := []Subject{
		{ID: "AcmeWarehouse", Org: "Acme", Role: RoleWarehouse},
		{ID: "AcmeSales1", Org: "Acme", Role: RoleSales},
		{ID: "AcmeSales2", Org: "Acme", Role: RoleSales},
		{ID: "AcmeAdmin", Org: "Acme", Role: RoleAdmin},
		{ID: "ZomboAdmin", Org: "Zombo", Role: RoleAdmin},
	}
	orders := []OrderView{
		{ID: "1", Org: "Acme", SoldBy: "AcmeSales1"},
		{ID: "2", Org: "Zombo", SoldBy: "ZomboSales1"},
	}
	return Derive(subjects, orders)
}

func TestAuthorizeStages(t *testing.T) {
	facts := evalFixture()

	cases := []struct {
		name     string
		subject  Subject
		action   Permission
		resource Ref
		allowed  bool
		reason   string
	}{
		{
			name:    "warehouse cannot create",
			subject: Subject{ID: "AcmeWarehouse", Org: "Acme", Role: RoleWarehouse},
			action:  PermCreateOrder,
			allowed: false,
			reason:  ReasonRoleLacksPermission,
		},
		{
			name:    "unknown role authorizes nothing",
			subject: Subject{ID: "ghost", Org: "Acme", Role: "contractor"},
			action:  PermViewOrders,
			allowed: false,
			reason:  ReasonRoleLacksPermission,
		},
		{
			name:     "cross-org denied regardless of role",
			subject:  Subject{ID: "ZomboAdmin", Org: "Zombo", Role: RoleAdmin},
			action:   PermFulfillOrder,
			resource: OrderRef("1"),
			allowed:  false,
			reason:   ReasonCrossOrg,
		},
		{
			name:     "missing order is a denial, not a pass",
			subject:  Subject{ID: "AcmeAdmin", Org: "Acme", Role: RoleAdmin},
			action:   PermDeleteOrder,
			resource: OrderRef("404"),
			allowed:  false,
			reason:   ReasonNotFound,
		},
		{
			name:     "sales cancel own order",
			subject:  Subject{ID: "AcmeSales1", Org: "Acme", Role: RoleSales},
			action:   PermCancelOrder,
			resource: OrderRef("1"),
			allowed:  true,
		},
		{
			name:     "sales cannot cancel someone else's order",
			subject:  Subject{ID: "AcmeSales2", Org: "Acme", Role: RoleSales},
			action:   PermCancelOrder,
			resource: OrderRef("1"),
			allowed:  false,
			reason:   ReasonNotOwner,
		},
		{
			name:     "admin skips the ownership check",
			subject:  Subject{ID: "AcmeAdmin", Org: "Acme", Role: RoleAdmin},
			action:   PermCancelOrder,
			resource: OrderRef("1"),
			allowed:  true,
		},
		{
			name:     "warehouse fulfills same-org order",
			subject:  Subject{ID: "AcmeWarehouse", Org: "Acme", Role: RoleWarehouse},
			action:   PermFulfillOrder,
			resource: OrderRef("1"),
			allowed:  true,
		},
		{
			name:    "collection action with no resource passes on role alone",
			subject: Subject{ID: "AcmeSales1", Org: "Acme", Role: RoleSales},
			action:  PermCreateOrder,
			allowed: true,
		},
		{
			name:     "organization resource enforces tenancy",
			subject:  Subject{ID: "AcmeSales1", Org: "Acme", Role: RoleSales},
			action:   PermCreateOrder,
			resource: OrganizationRef("Zombo"),
			allowed:  false,
			reason:   ReasonCrossOrg,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.subject, tc.action, tc.resource, facts)
			if d.Allowed != tc.allowed {
				t.Fatalf("Allowed = %v, want %v (reason %q)", d.Allowed, tc.allowed, d.Reason)
			}
			if !tc.allowed && d.Reason != tc.reason {
				t.Fatalf("Reason = %q, want %q", d.Reason, tc.reason)
			}
		})
	}
}

func TestRoleCheckRunsBeforeTenantCheck(t *testing.T) {
	facts := evalFixture()
	// Warehouse lacks cancel_order entirely; the cross-org mismatch must not
	// be the reported reason.
	d := Authorize(Subject{ID: "AcmeWarehouse", Org: "Acme", Role: RoleWarehouse}, PermCancelOrder, OrderRef("2"), facts)
	if d.Allowed || d.Reason != ReasonRoleLacksPermission {
		t.Fatalf("expected role denial first, got %+v", d)
	}
}

func TestVisibleActions(t *testing.T) {
	facts := evalFixture()

	sales1 := Subject{ID: "AcmeSales1", Org: "Acme", Role: RoleSales}
	got := VisibleActions(sales1, "1", facts)
	want := []Permission{PermViewOrders, PermCancelOrder}
	if len(got) != len(want) {
		t.Fatalf("VisibleActions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("VisibleActions = %v, want %v", got, want)
		}
	}

	// Cross-org order yields no actions at all.
	if got := VisibleActions(sales1, "2", facts); len(got) != 0 {
		t.Fatalf("cross-org order should be invisible, got %v", got)
	}

	admin := Subject{ID: "AcmeAdmin", Org: "Acme", Role: RoleAdmin}
	if got := VisibleActions(admin, "1", facts); len(got) != 4 {
		t.Fatalf("admin should have all point actions, got %v", got)
	}

	if !CanView(sales1, "1", facts) || CanView(sales1, "2", facts) {
		t.Fatalf("CanView tenancy filtering is wrong")
	}
}

func TestDecisionErr(t *testing.T) {
	if err := allow().Err(PermViewOrders); err != nil {
		t.Fatalf("allow must produce nil error, got %v", err)
	}

	err := deny(ReasonNotOwner).Err(PermCancelOrder)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("denial must match ErrPermissionDenied")
	}
	if DenialReason(err) != ReasonNotOwner {
		t.Fatalf("DenialReason = %q", DenialReason(err))
	}
	if DenialReason(errors.New("boom")) != "" {
		t.Fatalf("non-denial errors must have empty reason")
	}
}

package authz

import "testing"

func TestPermissionsByRole(t *testing.T) {
	cases := []struct {
		role    Role
		allowed []Permission
		denied  []Permission
	}{
		{
			role:    RoleWarehouse,
			allowed: []Permission{PermViewOrders, PermFulfillOrder},
			denied:  []Permission{PermCreateOrder, PermCancelOrder, PermDeleteOrder},
		},
		{
			role:    RoleSales,
			allowed: []Permission{PermViewOrders, PermCreateOrder, PermCancelOrder},
			denied:  []Permission{PermFulfillOrder, PermDeleteOrder},
		},
		{
			role:    RoleAdmin,
			allowed: []Permission{PermViewOrders, PermCreateOrder, PermCancelOrder, PermDeleteOrder, PermFulfillOrder},
		},
	}
	for _, tc := range cases {
		set := Permissions(tc.role)
		for _, p := range tc.allowed {
			if _, ok := set[p]; !ok {
				t.Errorf("role %s should have %s", tc.role, p)
			}
			if !RoleHasPermission(tc.role, p) {
				t.Errorf("RoleHasPermission(%s, %s) = false", tc.role, p)
			}
		}
		for _, p := range tc.denied {
			if _, ok := set[p]; ok {
				t.Errorf("role %s should not have %s", tc.role, p)
			}
		}
	}
}

func TestUnknownRoleHasNoPermissions(t *testing.T) {
	for _, role := range []Role{"", "intern", "superadmin"} {
		if set := Permissions(role); len(set) != 0 {
			t.Fatalf("role %q should authorize nothing, got %v", role, set)
		}
		if RoleHasPermission(role, PermViewOrders) {
			t.Fatalf("role %q unexpectedly has view_orders", role)
		}
	}
}

func TestPermissionListIsACopy(t *testing.T) {
	list := PermissionList(RoleSales)
	if len(list) != 3 {
		t.Fatalf("unexpected sales permissions: %v", list)
	}
	list[0] = PermDeleteOrder
	if PermissionList(RoleSales)[0] != PermViewOrders {
		t.Fatalf("PermissionList must not alias the table")
	}
}

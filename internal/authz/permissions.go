package authz

// Role identifies a subject's function within its organization.
type Role string

const (
	RoleWarehouse Role = "warehouse"
	RoleSales     Role = "sales"
	RoleAdmin     Role = "admin"
)

// Permission is a fine-grained capability. The set is closed: an action
// outside it is never authorized.
type Permission string

const (
	PermViewOrders   Permission = "view_orders"
	PermCreateOrder  Permission = "create_order"
	PermFulfillOrder Permission = "fulfill_order"
	PermDeleteOrder  Permission = "delete_order"
	PermCancelOrder  Permission = "cancel_order"
)

// Subject is the authenticated caller: resolved upstream and trusted here.
type Subject struct {
	ID   string `json:"id"`
	Org  string `json:"org"`
	Role Role   `json:"role"`
}

var rolePermissions = map[Role][]Permission{
	RoleWarehouse: {PermViewOrders, PermFulfillOrder},
	RoleSales:     {PermViewOrders, PermCreateOrder, PermCancelOrder},
	RoleAdmin:     {PermViewOrders, PermCreateOrder, PermCancelOrder, PermDeleteOrder, PermFulfillOrder},
}

// Permissions returns the static permission set for a role. Unknown or empty
// roles map to the empty set; absence of permission is the failure mode.
func Permissions(role Role) map[Permission]struct{} {
	perms := rolePermissions[role]
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// PermissionList returns the role's permissions in declaration order,
// suitable for API responses.
func PermissionList(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleHasPermission reports whether the role's static table grants the action.
func RoleHasPermission(role Role, action Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == action {
			return true
		}
	}
	return false
}

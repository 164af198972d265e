package authz

// Decision is the outcome of one authorization check. Reason is set only on
// denial and uses the stable strings below, so callers can surface it as-is.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Denial reasons, in the order the stages run.
const (
	ReasonRoleLacksPermission = "role lacks permission"
	ReasonCrossOrg            = "cross-org access"
	ReasonNotFound            = "not found"
	ReasonNotOwner            = "not owner"
)

func allow() Decision        { return Decision{Allowed: true} }
func deny(r string) Decision { return Decision{Allowed: false, Reason: r} }

// Authorize decides whether subject may perform action on resource, given the
// fact set derived from current state. Stages run in a fixed order and
// short-circuit on the first denial:
//
//  1. role check: action must be in the subject role's permission table;
//  2. tenant isolation: an order or organization resource must belong to the
//     subject's organization (a missing order denies with "not found");
//  3. ownership: sales may cancel only orders they sold.
//
// The ownership stage narrows an already-permitted action for one role; it
// never widens scope for warehouse or admin. A zero resource skips stages 2
// and 3 (collection-scoped actions are filtered, not denied).
func Authorize(subject Subject, action Permission, resource Ref, facts *Set) Decision {
	if !RoleHasPermission(subject.Role, action) {
		return deny(ReasonRoleLacksPermission)
	}

	if resource.IsZero() {
		return allow()
	}

	var resourceOrg string
	switch resource.Type {
	case RefOrganization:
		resourceOrg = resource.ID
	case RefOrder:
		org, ok := facts.OrderOrg(resource.ID)
		if !ok {
			return deny(ReasonNotFound)
		}
		resourceOrg = org
	default:
		return deny(ReasonNotFound)
	}
	if resourceOrg != subject.Org {
		return deny(ReasonCrossOrg)
	}

	if action == PermCancelOrder && subject.Role == RoleSales && resource.Type == RefOrder {
		owner, ok := facts.OrderOwner(resource.ID)
		if !ok || owner != subject.ID {
			return deny(ReasonNotOwner)
		}
	}

	return allow()
}

// orderActions are the point actions that make sense against a single order;
// create_order is organization-scoped and excluded.
var orderActions = []Permission{PermViewOrders, PermCancelOrder, PermFulfillOrder, PermDeleteOrder}

// VisibleActions computes the per-order action set for a subject by repeated
// point authorization: one evaluation algorithm for both point and collection
// queries. An empty result means the order is not visible at all.
func VisibleActions(subject Subject, orderID string, facts *Set) []Permission {
	var actions []Permission
	for _, action := range orderActions {
		if d := Authorize(subject, action, OrderRef(orderID), facts); d.Allowed {
			actions = append(actions, action)
		}
	}
	return actions
}

// CanView reports whether the subject may see the order at all. Listing omits
// invisible (cross-org) orders entirely rather than returning them with an
// empty permission set.
func CanView(subject Subject, orderID string, facts *Set) bool {
	return Authorize(subject, PermViewOrders, OrderRef(orderID), facts).Allowed
}

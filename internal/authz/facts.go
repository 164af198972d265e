package authz

// RefType distinguishes the entity kinds facts relate.
type RefType string

const (
	RefUser         RefType = "User"
	RefOrder        RefType = "Order"
	RefOrganization RefType = "Organization"
)

// Ref points at one entity. A zero Ref means "no resource".
type Ref struct {
	Type RefType `json:"type"`
	ID   string  `json:"id"`
}

// IsZero reports whether the reference names no entity.
func (r Ref) IsZero() bool { return r.Type == "" && r.ID == "" }

func UserRef(id string) Ref         { return Ref{Type: RefUser, ID: id} }
func OrderRef(id string) Ref        { return Ref{Type: RefOrder, ID: id} }
func OrganizationRef(id string) Ref { return Ref{Type: RefOrganization, ID: id} }

// Fact predicates.
const (
	PredicateHasRole   = "has_role"
	PredicateBelongsTo = "belongs_to"
	PredicateOwnedBy   = "owned_by"
)

// Fact is a derived relationship triple: subject, predicate, object. For
// has_role facts Value carries the role name and Object the organization.
type Fact struct {
	Predicate string `json:"predicate"`
	Subject   Ref    `json:"subject"`
	Object    Ref    `json:"object"`
	Value     string `json:"value,omitempty"`
}

// OrderView is the slice of order state relationship facts derive from.
// Keeping it local avoids coupling the evaluator to the order model.
type OrderView struct {
	ID     string
	Org    string
	SoldBy string
}

type roleFact struct {
	role Role
	org  string
}

// Set holds facts derived from one snapshot of users and orders, indexed for
// the evaluator's relationship predicates. A Set is immutable once derived.
type Set struct {
	facts      []Fact
	roles      map[string]roleFact
	orderOrg   map[string]string
	orderOwner map[string]string
}

// Derive recomputes the fact set from current state. It is a pure function:
// no caching, no incremental update, so every authorization decision sees the
// state it was asked about.
func Derive(subjects []Subject, orders []OrderView) *Set {
	s := &Set{
		facts:      make([]Fact, 0, len(subjects)+2*len(orders)),
		roles:      make(map[string]roleFact, len(subjects)),
		orderOrg:   make(map[string]string, len(orders)),
		orderOwner: make(map[string]string, len(orders)),
	}
	for _, sub := range subjects {
		s.facts = append(s.facts, Fact{
			Predicate: PredicateHasRole,
			Subject:   UserRef(sub.ID),
			Object:    OrganizationRef(sub.Org),
			Value:     string(sub.Role),
		})
		s.roles[sub.ID] = roleFact{role: sub.Role, org: sub.Org}
	}
	for _, o := range orders {
		s.facts = append(s.facts,
			Fact{
				Predicate: PredicateBelongsTo,
				Subject:   OrderRef(o.ID),
				Object:    OrganizationRef(o.Org),
			},
			Fact{
				Predicate: PredicateOwnedBy,
				Subject:   OrderRef(o.ID),
				Object:    UserRef(o.SoldBy),
			},
		)
		s.orderOrg[o.ID] = o.Org
		s.orderOwner[o.ID] = o.SoldBy
	}
	return s
}

// Facts returns the raw triples in derivation order.
func (s *Set) Facts() []Fact {
	out := make([]Fact, len(s.facts))
	copy(out, s.facts)
	return out
}

// RoleIn answers the has_role predicate for a user.
func (s *Set) RoleIn(userID string) (Role, string, bool) {
	rf, ok := s.roles[userID]
	return rf.role, rf.org, ok
}

// OrderOrg answers the belongs_to predicate for an order.
func (s *Set) OrderOrg(orderID string) (string, bool) {
	org, ok := s.orderOrg[orderID]
	return org, ok
}

// OrderOwner answers the owned_by predicate for an order.
func (s *Set) OrderOwner(orderID string) (string, bool) {
	owner, ok := s.orderOwner[orderID]
	return owner, ok
}

// OrderIDs lists the orders the set has facts about, in no particular order.
func (s *Set) OrderIDs() []string {
	out := make([]string, 0, len(s.orderOrg))
	for id := range s.orderOrg {
		out = append(out, id)
	}
	return out
}

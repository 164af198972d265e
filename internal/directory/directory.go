// Package directory is the read-only identity collaborator: a static table
// mapping user ids to their organization and role. Authentication happens
// upstream; this table only answers "who is this id".
package directory

import "orderdesk.dev/internal/authz"

// Table holds the user directory with a stable iteration order.
type Table struct {
	users map[string]authz.Subject
	order []string
}

// New builds a table from the given subjects. Later duplicates of an id
// overwrite earlier ones.
func New(subjects ...authz.Subject) *Table {
	t := &Table{
		users: make(map[string]authz.Subject, len(subjects)),
		order: make([]string, 0, len(subjects)),
	}
	for _, s := range subjects {
		if _, seen := t.users[s.ID]; !seen {
			t.order = append(t.order, s.ID)
		}
		t.users[s.ID] = s
	}
	return t
}

// Demo returns the hardcoded two-tenant demo directory.
func Demo() *Table {
	return New(
		authz.Subject{ID: "AcmeWarehouse", Org: "Acme", Role: authz.RoleWarehouse},
		authz.Subject{ID: "AcmeSales1", Org: "Acme", Role: authz.RoleSales},
		authz.Subject{ID: "AcmeSales2", Org: "Acme", Role: authz.RoleSales},
		authz.Subject{ID: "AcmeAdmin", Org: "Acme", Role: authz.RoleAdmin},
		authz.Subject{ID: "ZomboWarehouse", Org: "Zombo", Role: authz.RoleWarehouse},
		authz.Subject{ID: "ZomboSales1", Org: "Zombo", Role: authz.RoleSales},
		authz.Subject{ID: "ZomboSales2", Org: "Zombo", Role: authz.RoleSales},
		authz.Subject{ID: "ZomboAdmin", Org: "Zombo", Role: authz.RoleAdmin},
	)
}

// Lookup resolves a user id to its subject.
func (t *Table) Lookup(id string) (authz.Subject, bool) {
	s, ok := t.users[id]
	return s, ok
}

// Subjects returns all known subjects in insertion order.
func (t *Table) Subjects() []authz.Subject {
	out := make([]authz.Subject, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.users[id])
	}
	return out
}

// Organizations returns the distinct org ids across the directory, in first
// appearance order. Organizations are implicit: derived, never persisted.
func (t *Table) Organizations() []string {
	seen := make(map[string]struct{})
	var orgs []string
	for _, id := range t.order {
		org := t.users[id].Org
		if _, ok := seen[org]; ok {
			continue
		}
		seen[org] = struct{}{}
		orgs = append(orgs, org)
	}
	return orgs
}

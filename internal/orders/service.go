package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"orderdesk.dev/internal/authz"
	"orderdesk.dev/internal/directory"
	"orderdesk.dev/internal/obs"
	"orderdesk.dev/internal/stream"
)

// Service applies state-changing operations to the order collection, gating
// every one through the authorization evaluator first. All operations run a
// load-decide-mutate-save sequence under one process-wide lock so concurrent
// requests cannot lose updates; coarse-grained is acceptable at this scale.
type Service struct {
	mu     sync.Mutex
	store  Store
	users  *directory.Table
	stream *stream.Stream
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithStream publishes order lifecycle events to st.
func WithStream(st *stream.Stream) ServiceOption {
	return func(s *Service) { s.stream = st }
}

// NewService constructs the order mutation service.
func NewService(store Store, users *directory.Table, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("order store is required")
	}
	if users == nil {
		return nil, errors.New("user directory is required")
	}
	s := &Service{store: store, users: users}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// factsFor derives the relationship fact set from the current snapshot.
// Facts are recomputed on every check: zero staleness, at recomputation cost
// proportional to the order count, which is small here.
func (s *Service) factsFor(current map[string]Order) *authz.Set {
	views := make([]authz.OrderView, 0, len(current))
	for _, o := range current {
		views = append(views, authz.OrderView{ID: o.ID, Org: o.Org, SoldBy: o.SoldBy})
	}
	return authz.Derive(s.users.Subjects(), views)
}

func decide(subject authz.Subject, action authz.Permission, resource authz.Ref, facts *authz.Set) error {
	d := authz.Authorize(subject, action, resource, facts)
	obs.ObserveAuthzDecision(string(action), d.Allowed, d.Reason)
	return d.Err(action)
}

// asNotFound translates the evaluator's "not found" denial into the typed
// not-found error so the HTTP edge can map 404 vs 403 losslessly. The
// evaluator still runs its role check first, matching the stage order.
func asNotFound(err error, orderID string) error {
	if authz.DenialReason(err) == authz.ReasonNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}
	return err
}

// Create records a new pending order sold by the subject inside its own
// organization. IDs are sequential (max existing + 1), which tests rely on.
func (s *Service) Create(ctx context.Context, subject authz.Subject, customer string, items []string) (Order, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return Order{}, fmt.Errorf("%w: customer is required", ErrInvalidInput)
	}
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	if len(cleaned) == 0 {
		return Order{}, fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Load(ctx)
	if err != nil {
		return Order{}, err
	}
	facts := s.factsFor(current)
	if err := decide(subject, authz.PermCreateOrder, authz.OrganizationRef(subject.Org), facts); err != nil {
		return Order{}, err
	}

	order := Order{
		ID:       nextID(current),
		Org:      subject.Org,
		SoldBy:   subject.ID,
		Customer: customer,
		Items:    cleaned,
		Status:   StatusPending,
	}
	current[order.ID] = order
	if err := s.store.Save(ctx, current); err != nil {
		return Order{}, err
	}
	s.stream.Publish(stream.OrderEvent{Type: "created", OrderID: order.ID, Org: order.Org, Actor: subject.ID, Status: string(order.Status)})
	return order, nil
}

// Get returns one order, view-gated.
func (s *Service) Get(ctx context.Context, subject authz.Subject, orderID string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Load(ctx)
	if err != nil {
		return Order{}, err
	}
	if err := decide(subject, authz.PermViewOrders, authz.OrderRef(orderID), s.factsFor(current)); err != nil {
		return Order{}, asNotFound(err, orderID)
	}
	return current[orderID], nil
}

// List returns the orders visible to the subject, each annotated with the
// actions the subject may take on it. Cross-org orders are omitted entirely
// rather than returned with an empty permission set; listing filters, it
// never denies.
func (s *Service) List(ctx context.Context, subject authz.Subject) ([]OrderWithActions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	facts := s.factsFor(current)

	visible := make([]OrderWithActions, 0, len(current))
	for id, order := range current {
		actions := authz.VisibleActions(subject, id, facts)
		if len(actions) == 0 {
			continue
		}
		perms := make([]string, len(actions))
		for i, a := range actions {
			perms[i] = string(a)
		}
		visible = append(visible, OrderWithActions{Order: order, Permissions: perms})
	}
	sort.Slice(visible, func(i, j int) bool {
		return lessOrderID(visible[i].ID, visible[j].ID)
	})
	return visible, nil
}

// Cancel transitions a pending order to cancelled. Sales subjects may cancel
// only their own orders; the evaluator enforces that.
func (s *Service) Cancel(ctx context.Context, subject authz.Subject, orderID string) (Order, error) {
	return s.transition(ctx, subject, orderID, authz.PermCancelOrder, StatusCancelled, "cancelled")
}

// Fulfill transitions a pending order to fulfilled.
func (s *Service) Fulfill(ctx context.Context, subject authz.Subject, orderID string) (Order, error) {
	return s.transition(ctx, subject, orderID, authz.PermFulfillOrder, StatusFulfilled, "fulfilled")
}

func (s *Service) transition(ctx context.Context, subject authz.Subject, orderID string, action authz.Permission, to Status, event string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Load(ctx)
	if err != nil {
		return Order{}, err
	}
	if err := decide(subject, action, authz.OrderRef(orderID), s.factsFor(current)); err != nil {
		return Order{}, asNotFound(err, orderID)
	}
	order := current[orderID]
	if order.Status != StatusPending {
		return Order{}, fmt.Errorf("%w: status is %s", ErrInvalidStatus, order.Status)
	}

	order.Status = to
	current[orderID] = order
	if err := s.store.Save(ctx, current); err != nil {
		return Order{}, err
	}
	s.stream.Publish(stream.OrderEvent{Type: event, OrderID: order.ID, Org: order.Org, Actor: subject.ID, Status: string(order.Status)})
	return order, nil
}

// Delete removes an order permanently. Its id is never reused: assignment is
// max-based, so deleting the highest id simply re-mints it only if nothing
// was created in between — acceptable for the demo dataset, where deletes
// are admin-only.
func (s *Service) Delete(ctx context.Context, subject authz.Subject, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := decide(subject, authz.PermDeleteOrder, authz.OrderRef(orderID), s.factsFor(current)); err != nil {
		return asNotFound(err, orderID)
	}
	order := current[orderID]

	delete(current, orderID)
	if err := s.store.Save(ctx, current); err != nil {
		return err
	}
	s.stream.Publish(stream.OrderEvent{Type: "deleted", OrderID: order.ID, Org: order.Org, Actor: subject.ID})
	return nil
}

// Reset replaces the collection with the backup snapshot. Not
// authorization-gated: the demo reset button is available to everyone.
func (s *Service) Reset(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup, err := s.store.Backup(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.store.Save(ctx, backup); err != nil {
		return 0, err
	}
	s.stream.Publish(stream.OrderEvent{Type: "reset"})
	return len(backup), nil
}

// nextID assigns max(existing numeric ids)+1, or "1" for an empty
// collection. Non-numeric ids are ignored rather than rejected.
func nextID(current map[string]Order) string {
	max := 0
	for id := range current {
		if n, err := strconv.Atoi(id); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

func lessOrderID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

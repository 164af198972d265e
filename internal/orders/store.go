package orders

import "context"

// Store persists the order collection with whole-collection semantics: Load
// returns the full current state and Save replaces it. There are no partial
// updates; the service serializes load-decide-mutate-save sequences.
type Store interface {
	Load(ctx context.Context) (map[string]Order, error)
	Save(ctx context.Context, orders map[string]Order) error
	Backup(ctx context.Context) (map[string]Order, error)
}

// Memory is an in-process Store used in tests and when no file or database
// is configured. The backup snapshot is fixed at construction time.
type Memory struct {
	current map[string]Order
	backup  map[string]Order
}

// NewMemory creates a store seeded with the given collection; the seed also
// becomes the backup used by Reset.
func NewMemory(seed map[string]Order) *Memory {
	return &Memory{
		current: cloneOrders(seed),
		backup:  cloneOrders(seed),
	}
}

func (m *Memory) Load(ctx context.Context) (map[string]Order, error) {
	return cloneOrders(m.current), nil
}

func (m *Memory) Save(ctx context.Context, orders map[string]Order) error {
	m.current = cloneOrders(orders)
	return nil
}

func (m *Memory) Backup(ctx context.Context) (map[string]Order, error) {
	return cloneOrders(m.backup), nil
}

func cloneOrders(in map[string]Order) map[string]Order {
	out := make(map[string]Order, len(in))
	for id, o := range in {
		items := make([]string, len(o.Items))
		copy(items, o.Items)
		o.Items = items
		out[id] = o
	}
	return out
}

package models

// Entity is anything held by a Collection. All containment checks are by
// the persistence-assigned identifier, never by pointer or value equality.
type Entity interface {
	EntityID() int64
}

// EventKind classifies a collection change.
type EventKind int

const (
	EventAdd EventKind = iota
	EventRemove
	EventUpdate
	EventClear
)

// Event describes a single collection change. EventUpdate names the changed
// attribute in Field; the other kinds leave it empty.
type Event[T Entity] struct {
	Kind  EventKind
	Item  T
	Field string
}

// Collection is an ordered, observable set of entities mirroring persisted
// state. It is mutated only after the corresponding persistence operation
// has committed; every mutation fires exactly one event.
//
// Not safe for concurrent use. The store runs single-threaded.
type Collection[T Entity] struct {
	items []T
	subs  []func(Event[T])
}

// NewCollection returns an empty collection.
func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{}
}

// Subscribe registers an observer. Observers are invoked synchronously, in
// registration order, once per mutation.
func (c *Collection[T]) Subscribe(fn func(Event[T])) {
	c.subs = append(c.subs, fn)
}

func (c *Collection[T]) publish(ev Event[T]) {
	for _, fn := range c.subs {
		fn(ev)
	}
}

// Add appends an entity and fires EventAdd.
func (c *Collection[T]) Add(item T) {
	c.items = append(c.items, item)
	c.publish(Event[T]{Kind: EventAdd, Item: item})
}

// Remove deletes the entity with the given id, firing EventRemove.
// Returns false when the id is not present.
func (c *Collection[T]) Remove(id int64) bool {
	for i, item := range c.items {
		if item.EntityID() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.publish(Event[T]{Kind: EventRemove, Item: item})
			return true
		}
	}
	return false
}

// Get returns the entity with the given id.
func (c *Collection[T]) Get(id int64) (T, bool) {
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Contains reports whether an entity with the given id is present.
func (c *Collection[T]) Contains(id int64) bool {
	_, ok := c.Get(id)
	return ok
}

// Items returns a copy of the backing slice in insertion order.
func (c *Collection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int { return len(c.items) }

// Clear removes all entities, firing a single EventClear.
func (c *Collection[T]) Clear() {
	if len(c.items) == 0 {
		return
	}
	c.items = nil
	c.publish(Event[T]{Kind: EventClear})
}

// Updated fires EventUpdate for a field mutation on a contained entity.
// Called by the store after the corresponding row update has committed.
func (c *Collection[T]) Updated(item T, field string) {
	c.publish(Event[T]{Kind: EventUpdate, Item: item, Field: field})
}

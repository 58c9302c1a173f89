// Package collection provides an insertion-ordered map of records keyed by id,
// serialized as a JSON array.
package collection

import (
	"encoding/json"
	"fmt"
)

// Ordered is not safe for concurrent use; callers serialize access.
type Ordered[T any] struct {
	items map[string]T
	order []string
	key   func(T) string
}

func New[T any](key func(T) string) *Ordered[T] {
	return &Ordered[T]{
		items: make(map[string]T),
		order: make([]string, 0),
		key:   key,
	}
}

// Set stores item. An existing id keeps its position.
func (o *Ordered[T]) Set(item T) {
	id := o.key(item)
	if _, exists := o.items[id]; !exists {
		o.order = append(o.order, id)
	}
	o.items[id] = item
}

func (o *Ordered[T]) Get(id string) (T, bool) {
	item, ok := o.items[id]
	return item, ok
}

func (o *Ordered[T]) Has(id string) bool {
	_, ok := o.items[id]
	return ok
}

func (o *Ordered[T]) Delete(id string) bool {
	if _, exists := o.items[id]; !exists {
		return false
	}
	delete(o.items, id)
	for i, oid := range o.order {
		if oid == id {
			o.order = append(o.order[:i:i], o.order[i+1:]...)
			break
		}
	}
	return true
}

func (o *Ordered[T]) List() []T {
	out := make([]T, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.items[id])
	}
	return out
}

func (o *Ordered[T]) Filter(predicate func(T) bool) []T {
	out := make([]T, 0)
	for _, id := range o.order {
		if predicate(o.items[id]) {
			out = append(out, o.items[id])
		}
	}
	return out
}

func (o *Ordered[T]) Len() int {
	return len(o.order)
}

// Clone copies the index. Items are copied by value, so T must not share
// mutable state that callers modify in place.
func (o *Ordered[T]) Clone() *Ordered[T] {
	c := &Ordered[T]{
		items: make(map[string]T, len(o.items)),
		order: make([]string, len(o.order)),
		key:   o.key,
	}
	copy(c.order, o.order)
	for k, v := range o.items {
		c.items[k] = v
	}
	return c
}

func (o *Ordered[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.List())
}

// UnmarshalJSON replaces the contents with the array in data. The key func
// must already be set.
func (o *Ordered[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	o.items = make(map[string]T, len(items))
	o.order = make([]string, 0, len(items))
	for _, item := range items {
		id := o.key(item)
		if _, dup := o.items[id]; dup {
			return fmt.Errorf("duplicate id %q", id)
		}
		o.Set(item)
	}
	return nil
}

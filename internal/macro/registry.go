package macro

import "sync"

// Registry holds one value of T per binding instance.
// Values are created lazily and never evicted.
type Registry[T any] struct {
	entries sync.Map // InstanceID -> *entry[T]
	init    func() T
}

type entry[T any] struct {
	mu sync.Mutex
	v  T
}

// NewRegistry creates a registry. init builds the value for a new instance;
// nil means the zero value.
func NewRegistry[T any](init func() T) *Registry[T] {
	if init == nil {
		init = func() T {
			var zero T
			return zero
		}
	}
	return &Registry[T]{init: init}
}

// With runs fn with exclusive access to the value for id, creating it first
// if needed.
func (r *Registry[T]) With(id InstanceID, fn func(v *T)) {
	e := r.load(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.v)
}

// Peek runs fn with exclusive access to an existing value for id.
// Returns false without calling fn if id has no value.
func (r *Registry[T]) Peek(id InstanceID, fn func(v *T)) bool {
	v, ok := r.entries.Load(id)
	if !ok {
		return false
	}
	e := v.(*entry[T])
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.v)
	return true
}

// Range runs fn for every instance, one at a time, holding that instance's lock.
func (r *Registry[T]) Range(fn func(id InstanceID, v *T)) {
	r.entries.Range(func(k, v any) bool {
		e := v.(*entry[T])
		e.mu.Lock()
		fn(k.(InstanceID), &e.v)
		e.mu.Unlock()
		return true
	})
}

// Len returns the number of instances.
func (r *Registry[T]) Len() int {
	n := 0
	r.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (r *Registry[T]) load(id InstanceID) *entry[T] {
	if v, ok := r.entries.Load(id); ok {
		return v.(*entry[T])
	}
	v, _ := r.entries.LoadOrStore(id, &entry[T]{v: r.init()})
	return v.(*entry[T])
}

package plan

import (
	"reflect"
	"sync"
)

// trackKey identifies a mapped source object: the same source pointer mapped
// to another target type is a different mapping.
type trackKey struct {
	ptr    uintptr
	source reflect.Type
	target reflect.Type
}

// registry records the targets mapped from source objects during one mapping
// call.
type registry struct {
	entries map[trackKey]reflect.Value
}

var registryPool = sync.Pool{
	New: func() any {
		return &registry{entries: make(map[trackKey]reflect.Value)}
	},
}

func acquireRegistry() *registry {
	return registryPool.Get().(*registry)
}

func (r *registry) release() {
	clear(r.entries)
	registryPool.Put(r)
}

// keyOf returns the tracking key of a source value, false for values that
// are not non-nil pointers.
func keyOf(source reflect.Value, target reflect.Type) (trackKey, bool) {
	if !source.IsValid() || source.Kind() != reflect.Ptr || source.IsNil() {
		return trackKey{}, false
	}

	return trackKey{ptr: source.Pointer(), source: source.Type(), target: target}, true
}

func (r *registry) lookup(k trackKey) (reflect.Value, bool) {
	v, ok := r.entries[k]
	return v, ok
}

func (r *registry) register(k trackKey, target reflect.Value) {
	r.entries[k] = target
}

func (r *registry) forget(k trackKey) {
	delete(r.entries, k)
}

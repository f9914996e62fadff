package config

import (
	"reflect"

	"object-mapper/internal/mapping"
)

// Registry resolves the type and function names a mapping file refers to.
type Registry struct {
	types *mapping.TypeTable
	funcs *mapping.FuncTable
}

// NewRegistry creates a registry knowing the builtin types, time.Time,
// time.Duration and uuid.UUID.
func NewRegistry() *Registry {
	return &Registry{
		types: mapping.NewTypeTable(),
		funcs: mapping.NewFuncTable(),
	}
}

// Register registers the types of the values. Use a typed nil pointer to
// register an interface type: (*Shape)(nil).
func (r *Registry) Register(values ...any) {
	for _, v := range values {
		if v == nil {
			continue
		}

		r.types.Add(reflect.TypeOf(v))
	}
}

// RegisterType registers types.
func (r *Registry) RegisterType(types ...reflect.Type) {
	r.types.Add(types...)
}

// RegisterFunc registers a function under the name mapping files use for it.
func (r *Registry) RegisterFunc(name string, fn any) error {
	return r.funcs.Add(name, fn)
}

// ResolveType resolves a type name such as "store.Order", "[]*Item" or
// "map[string]int".
func (r *Registry) ResolveType(name string) (reflect.Type, bool) {
	return r.types.Resolve(name)
}

// Func returns the function registered under name.
func (r *Registry) Func(name string) (reflect.Value, bool) {
	return r.funcs.Get(name)
}

// TypeNames lists the registered type names.
func (r *Registry) TypeNames() []string {
	return r.types.Names()
}

// FuncNames lists the registered function names.
func (r *Registry) FuncNames() []string {
	return r.funcs.Names()
}

// Tables exposes the underlying tables to the mapping file validator.
func (r *Registry) Tables() (*mapping.TypeTable, *mapping.FuncTable) {
	return r.types, r.funcs
}

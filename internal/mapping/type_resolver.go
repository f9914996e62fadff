package mapping

import (
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TypeTable resolves type identifiers used in mapping files to reflect types.
type TypeTable struct {
	mu    sync.RWMutex
	types map[string]reflect.Type // keyed by "pkgpath.Name"
}

// NewTypeTable creates a table pre-populated with the basic types, time.Time,
// time.Duration and uuid.UUID.
func NewTypeTable() *TypeTable {
	t := &TypeTable{types: make(map[string]reflect.Type)}

	for _, v := range []any{
		false, "", 0, int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0), uintptr(0),
		float32(0), float64(0), complex64(0), complex128(0),
		time.Time{}, time.Duration(0), uuid.UUID{},
	} {
		t.Add(reflect.TypeOf(v))
	}

	return t
}

// Add registers named types. Pointer, slice and array types are registered
// through their element types.
func (t *TypeTable) Add(types ...reflect.Type) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, typ := range types {
		for typ.Name() == "" && (typ.Kind() == reflect.Pointer || typ.Kind() == reflect.Slice || typ.Kind() == reflect.Array) {
			typ = typ.Elem()
		}

		if typ.Name() == "" {
			continue
		}

		t.types[typeKey(typ)] = typ
	}
}

// Names returns the registered type keys in sorted order.
func (t *TypeTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.types))
	for k := range t.types {
		names = append(names, k)
	}

	slices.Sort(names)

	return names
}

// Resolve resolves a type identifier like:
// - "store.Order" (short)
// - "object-mapper/internal/shop/store.Order" (full)
// - "Order" (name only)
// - "*store.Order", "[]store.Order", "map[string]store.Order" (composites).
func (t *TypeTable) Resolve(id string) (reflect.Type, bool) {
	switch {
	case strings.HasPrefix(id, "*"):
		elem, ok := t.Resolve(id[1:])
		if !ok {
			return nil, false
		}

		return reflect.PointerTo(elem), true
	case strings.HasPrefix(id, "[]"):
		elem, ok := t.Resolve(id[2:])
		if !ok {
			return nil, false
		}

		return reflect.SliceOf(elem), true
	case strings.HasPrefix(id, "map["):
		end := strings.IndexByte(id, ']')
		if end < 0 {
			return nil, false
		}

		key, ok := t.Resolve(id[4:end])
		if !ok || !key.Comparable() {
			return nil, false
		}

		elem, ok := t.Resolve(id[end+1:])
		if !ok {
			return nil, false
		}

		return reflect.MapOf(key, elem), true
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.resolveNamed(id)
}

func (t *TypeTable) resolveNamed(id string) (reflect.Type, bool) {
	// Name-only: best-effort match by type name.
	if !strings.Contains(id, ".") {
		if id == "" {
			return nil, false
		}

		if alias, ok := basicAliases[id]; ok {
			id = alias
		}

		if typ, ok := t.types[id]; ok {
			return typ, true
		}

		if id == "any" || id == "interface{}" {
			return reflect.TypeFor[any](), true
		}

		return t.unique(func(typ reflect.Type) bool { return typ.Name() == id })
	}

	lastDot := strings.LastIndex(id, ".")
	pkgStr, name := id[:lastDot], id[lastDot+1:]

	if pkgStr == "" || name == "" {
		return nil, false
	}

	// 1) exact match (for fully qualified import path)
	if typ, ok := t.types[id]; ok {
		return typ, true
	}

	// 2) suffix match (for short forms like "store.Order" vs "object-mapper/internal/shop/store.Order")
	return t.unique(func(typ reflect.Type) bool {
		return typ.Name() == name && (typ.PkgPath() == pkgStr || strings.HasSuffix(typ.PkgPath(), "/"+pkgStr))
	})
}

// unique returns the single registered type satisfying the predicate.
func (t *TypeTable) unique(pred func(reflect.Type) bool) (reflect.Type, bool) {
	var found reflect.Type

	for _, typ := range t.types {
		if !pred(typ) {
			continue
		}

		if found != nil && found != typ {
			return nil, false
		}

		found = typ
	}

	return found, found != nil
}

var basicAliases = map[string]string{
	"byte": "uint8",
	"rune": "int32",
}

func typeKey(typ reflect.Type) string {
	if typ.PkgPath() == "" {
		return typ.Name()
	}

	return typ.PkgPath() + "." + typ.Name()
}

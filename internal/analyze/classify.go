package analyze

import (
	"reflect"

	"object-mapper/primitive"
)

// Classify determines how values of the type are populated.
//
// Pointers classify as their element. Interfaces report CategoryUnknown, the
// concrete type has to be substituted from the runtime value.
func Classify(t reflect.Type) Category {
	if t == nil {
		return CategoryUnknown
	}

	t = Deref(t)

	if primitive.FromReflectType(t) != 0 {
		return CategorySimple
	}

	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return CategorySimple // []byte is a value, not a collection
		}

		return CategoryEnumerable
	case reflect.Array:
		return CategoryEnumerable
	case reflect.Map:
		if IsStringKey(t.Key()) {
			return CategoryDictionary
		}

		return CategoryEnumerable
	case reflect.Struct:
		return CategoryComplex
	default:
		return CategoryUnknown
	}
}


// Deref strips all pointer levels from the type.
func Deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t
}

// PtrDepth returns the pointer depth and the final base type.
func PtrDepth(t reflect.Type) (depth int, base reflect.Type) {
	depth, base = 0, t
	for base.Kind() == reflect.Ptr {
		depth++
		base = base.Elem()
	}

	return
}

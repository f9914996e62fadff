package node

import (
	"reflect"

	"object-mapper/internal/analyze"
)

// Dispatch selects how values of src populate dst. Both types must have their
// pointers removed.
func Dispatch(src, dst reflect.Type) DispatcherEnum {
	if src.Kind() == reflect.Ptr || dst.Kind() == reflect.Ptr {
		panic("dispatcher is not allowing pointer reflect types")
	}

	if src.Kind() == reflect.Interface || dst.Kind() == reflect.Interface {
		return DispatcherRuntime
	}

	srcCat := analyze.Classify(src)

	switch analyze.Classify(dst) {
	case analyze.CategorySimple:
		if srcCat == analyze.CategorySimple {
			return DispatcherSimple
		}

	case analyze.CategoryComplex:
		switch srcCat {
		case analyze.CategoryComplex:
			return DispatcherComplex
		case analyze.CategoryDictionary:
			return DispatcherUnflatten
		}

	case analyze.CategoryEnumerable:
		if dst.Kind() == reflect.Map {
			if src.Kind() == reflect.Map {
				return DispatcherDictionary
			}

			return DispatcherUnknown
		}

		if srcCat == analyze.CategoryDictionary || (srcCat == analyze.CategoryEnumerable && src.Kind() != reflect.Map) {
			return DispatcherEnumerable
		}

	case analyze.CategoryDictionary:
		switch {
		case src.Kind() == reflect.Map:
			return DispatcherDictionary
		case srcCat == analyze.CategoryComplex:
			return DispatcherFlatten
		}
	}

	return DispatcherUnknown
}

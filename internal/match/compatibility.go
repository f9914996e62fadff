package match

import (
	"reflect"

	"object-mapper/internal/analyze"
)

// TypeCompatibility represents the level of compatibility between two types.
type TypeCompatibility int

const (
	// TypeIncompatible means the types cannot be mapped.
	TypeIncompatible TypeCompatibility = iota
	// TypeNeedsMapping means the values need a nested object or collection mapping.
	TypeNeedsMapping
	// TypeConvertible means a value conversion exists.
	TypeConvertible
	// TypeAssignable means the source type can be directly assigned to the target.
	TypeAssignable
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

const (
	VerdictIdentical    = "identical"
	VerdictAssignable   = "assignable"
	VerdictConvertible  = "convertible"
	VerdictNeedsMapping = "needs_mapping"
	VerdictIncompatible = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeAssignable:
		return VerdictAssignable
	case TypeConvertible:
		return VerdictConvertible
	case TypeNeedsMapping:
		return VerdictNeedsMapping
	case TypeIncompatible:
		return VerdictIncompatible
	default:
		return "unknown"
	}
}

// Converter reports whether simple values of one type convert to another.
type Converter interface {
	CanConvert(from, to reflect.Type) bool
}

// TypeCompatibilityResult contains detailed information about type compatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string // Human-readable explanation
	SourceType    string
	TargetType    string
}

// ScoreTypeCompatibility determines how a source member type relates to a
// target member type. Pointers are looked through on both sides.
func ScoreTypeCompatibility(source, target reflect.Type, conv Converter) TypeCompatibilityResult {
	result := TypeCompatibilityResult{
		SourceType: analyze.TypeName(source),
		TargetType: analyze.TypeName(target),
	}

	switch {
	case source == target:
		result.Compatibility, result.Reason = TypeIdentical, "types are identical"
	case source.AssignableTo(target):
		result.Compatibility, result.Reason = TypeAssignable, "source is assignable to target"
	case analyze.Deref(source) == analyze.Deref(target):
		result.Compatibility, result.Reason = TypeAssignable, "types differ by pointer indirection"
	default:
		result.Compatibility, result.Reason = scoreByCategory(source, target, conv)
	}

	return result
}

func scoreByCategory(source, target reflect.Type, conv Converter) (TypeCompatibility, string) {
	sc, tc := analyze.Classify(source), analyze.Classify(target)

	switch {
	case isInterface(source) || isInterface(target):
		return TypeNeedsMapping, "type resolved at mapping time"
	case sc == analyze.CategoryUnknown || tc == analyze.CategoryUnknown:
		return TypeIncompatible, "type cannot be mapped"
	case sc == analyze.CategorySimple && tc == analyze.CategorySimple:
		if conv != nil && conv.CanConvert(analyze.Deref(source), analyze.Deref(target)) {
			return TypeConvertible, "source is convertible to target"
		}

		return TypeIncompatible, "no conversion between the simple types"
	case sc == analyze.CategorySimple || tc == analyze.CategorySimple:
		return TypeIncompatible, "simple and structured types do not map"
	case sc == analyze.CategoryDictionary || tc == analyze.CategoryDictionary:
		return TypeNeedsMapping, "dictionary entries are flattened"
	case sc == tc:
		return TypeNeedsMapping, "values are mapped member by member"
	default:
		return TypeIncompatible, "types are not compatible"
	}
}

// Compatible reports whether a source member of the type can populate the target.
func Compatible(source, target reflect.Type, conv Converter) bool {
	return ScoreTypeCompatibility(source, target, conv).Compatibility > TypeIncompatible
}

func isInterface(t reflect.Type) bool {
	return analyze.Deref(t).Kind() == reflect.Interface
}

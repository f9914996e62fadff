package config

import (
	"reflect"

	"object-mapper/internal/analyze"
)

// TypePair identifies the source and target types a rule applies to. Pointer
// levels are ignored. A nil side matches any type, an interface side matches
// every type implementing it.
type TypePair struct {
	Source reflect.Type
	Target reflect.Type
}

// PairOf returns the pair of the type parameters.
func PairOf[S, T any]() TypePair {
	return TypePair{Source: reflect.TypeFor[S](), Target: reflect.TypeFor[T]()}
}

// Reverse swaps source and target.
func (p TypePair) Reverse() TypePair {
	return TypePair{Source: p.Target, Target: p.Source}
}

// Matches reports whether the pair applies to a mapping from src to tgt.
func (p TypePair) Matches(src, tgt reflect.Type) bool {
	return sideMatches(p.Source, src) && sideMatches(p.Target, tgt)
}

// Equal reports whether both pairs name the same types.
func (p TypePair) Equal(other TypePair) bool {
	return deref(p.Source) == deref(other.Source) && deref(p.Target) == deref(other.Target)
}

// String renders the pair as "store.Order->warehouse.Order".
func (p TypePair) String() string {
	return sideName(p.Source) + "->" + sideName(p.Target)
}

func sideMatches(declared, actual reflect.Type) bool {
	if declared == nil {
		return true
	}

	if actual == nil {
		return false
	}

	declared, actual = deref(declared), deref(actual)
	if declared == actual {
		return true
	}

	return declared.Kind() == reflect.Interface && actual.Kind() != reflect.Interface &&
		(actual.Implements(declared) || reflect.PointerTo(actual).Implements(declared))
}

func sideName(t reflect.Type) string {
	if t == nil {
		return "*"
	}

	return analyze.TypeName(t)
}

func deref(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}

	return analyze.Deref(t)
}

// TargetMember describes the target member a rule is matched against.
type TargetMember struct {
	// Path is the member path below the mapped target, elements written as
	// "[]", e.g. "Lines[].Amount".
	Path string
	// Name is the leaf member name.
	Name string
	// Type is the declared member type.
	Type reflect.Type
	// Declaring is the type declaring the member.
	Declaring reflect.Type
}

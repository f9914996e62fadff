// Package node holds the mapping plan: an immutable tree describing how a
// value of one type populates a value of another. Plans are built once per
// type pair and rule set and interpreted for every mapping of that pair.
package node

import (
	"reflect"

	"object-mapper/config"
	"object-mapper/internal/analyze"
)

// Node is a step of a mapping plan.
type Node interface {
	// Dispatcher names the population the step performs.
	Dispatcher() DispatcherEnum
	// Types returns the source and target types of the step, pointers removed.
	Types() (source, target reflect.Type)
}

// Procedure is the plan of a mapping from Source to Target under a rule set.
type Procedure struct {
	Source  reflect.Type
	Target  reflect.Type
	RuleSet config.RuleSet
	// Path is the target member path the procedure was planned at, empty for
	// top level mappings. Instance creators are matched against it.
	Path string
	Root Node
}

// Leaf converts a simple value.
type Leaf struct {
	Source reflect.Type
	Target reflect.Type
}

func (*Leaf) Dispatcher() DispatcherEnum { return DispatcherSimple }

func (n *Leaf) Types() (reflect.Type, reflect.Type) { return n.Source, n.Target }

// Object populates a complex target member by member.
type Object struct {
	Source reflect.Type
	Target reflect.Type
	Path   string
	// FromDictionary marks objects read from a string keyed dictionary.
	FromDictionary bool
	// Prefix holds the names of enclosing target members the object is
	// unflattened under, e.g. ["Address"] for members read from "AddressLine1".
	Prefix []string

	Construction Construction
	Members      []*Member
	Ignored      []string
	Unmapped     []string
}

func (n *Object) Dispatcher() DispatcherEnum {
	if n.FromDictionary {
		return DispatcherUnflatten
	}

	return DispatcherComplex
}

func (n *Object) Types() (reflect.Type, reflect.Type) { return n.Source, n.Target }

// Fallback decides what happens to a member none of whose sources yields a value.
type Fallback int

const (
	FallbackNone     Fallback = iota // member left as constructed
	FallbackPreserve                 // existing value kept
	FallbackZero                     // member reset to its zero value
)

func (f Fallback) String() string {
	switch f {
	case FallbackPreserve:
		return "preserve"
	case FallbackZero:
		return "zero"
	default:
		return "none"
	}
}

// Member is the population of one target member. Sources are tried in order,
// the first yielding a value wins; Sequential sources then apply on top of it.
type Member struct {
	Info       *analyze.MemberInfo
	Path       string
	Sources    []*Source
	Sequential []*Source
	Fallback   Fallback
	// DependsOn lists target member paths populated before this one.
	DependsOn []string
}

// Origin tells where a source was found.
type Origin int

const (
	OriginConfigured Origin = iota // data source naming the member
	OriginFilter                   // data source selecting the member by filter
	OriginTag                      // struct tag on the target member
	OriginDictionary               // key of a source dictionary
	OriginAuto                     // source member matched by name
	OriginOwner                    // members of the source object itself, unflattened
)

func (o Origin) String() string {
	switch o {
	case OriginConfigured:
		return "configured"
	case OriginFilter:
		return "filter"
	case OriginTag:
		return "tag"
	case OriginDictionary:
		return "dictionary"
	case OriginAuto:
		return "auto"
	case OriginOwner:
		return "owner"
	default:
		return "unknown"
	}
}

// Source yields the value of a target member or constructor parameter.
//
// Up selects the source object the value is read from: 0 for the object being
// mapped, 1 for the object enclosing it, and so on. The value is then the
// Constant, a read along Chain, or a dictionary lookup of KeyPath; Func, when
// set, transforms it. Condition guards the source over the selected object.
type Source struct {
	Origin Origin
	Label  string
	Up     int

	Chain       []*analyze.MemberInfo
	KeyPath     []string
	Constant    reflect.Value
	HasConstant bool
	Func        reflect.Value
	Condition   reflect.Value

	// Type is the type of the value the source yields, nil for a nil constant.
	Type reflect.Type
	// Value populates the target from the yielded value.
	Value Node
	// Nested populates the target from the dictionary entries below KeyPath,
	// for dictionary sources of complex and enumerable members.
	Nested Node

	DataSource *config.DataSource
}

// IsConditional reports whether the source is guarded by a condition.
func (s *Source) IsConditional() bool { return s.Condition.IsValid() }

// Construction tells how a target instance is obtained.
type Construction struct {
	Creator     reflect.Value
	CreatorPath string
	Constructor reflect.Value
	Params      []*Param
}

// IsDefault reports whether the instance is the zero value of its type.
func (c Construction) IsDefault() bool {
	return !c.Creator.IsValid() && !c.Constructor.IsValid()
}

// Param is a constructor parameter and the sources it is bound to.
type Param struct {
	Name    string
	Type    reflect.Type
	Sources []*Source
}

// Collection populates a slice or an array element by element.
type Collection struct {
	Source  reflect.Type
	Target  reflect.Type
	Path    string
	Element Node
	// FromDictionary marks collections read from indexed dictionary keys,
	// e.g. "Items[0].Name".
	FromDictionary bool

	SourceIdentity *Identity
	TargetIdentity *Identity
}

func (*Collection) Dispatcher() DispatcherEnum { return DispatcherEnumerable }

func (n *Collection) Types() (reflect.Type, reflect.Type) { return n.Source, n.Target }

// Identifiable reports whether source and existing target elements can be
// matched by identity.
func (n *Collection) Identifiable() bool {
	return n.SourceIdentity != nil && n.TargetIdentity != nil
}

// Identity reads the identity of collection elements.
type Identity struct {
	Type   reflect.Type
	Member *analyze.MemberInfo
	Func   reflect.Value
}

// String names the identity member or function.
func (i *Identity) String() string {
	if i.Member != nil {
		return i.Member.Name
	}

	return "func"
}

// Dictionary populates a map entry by entry.
type Dictionary struct {
	Source reflect.Type
	Target reflect.Type
	Path   string
	Key    Node
	Value  Node
}

func (*Dictionary) Dispatcher() DispatcherEnum { return DispatcherDictionary }

func (n *Dictionary) Types() (reflect.Type, reflect.Type) { return n.Source, n.Target }

// Flatten writes the members of an object into a string keyed dictionary,
// nested members under dotted keys.
type Flatten struct {
	Source reflect.Type
	Target reflect.Type
	Path   string
}

func (*Flatten) Dispatcher() DispatcherEnum { return DispatcherFlatten }

func (n *Flatten) Types() (reflect.Type, reflect.Type) { return n.Source, n.Target }

// Runtime defers planning to mapping time, when the concrete type of an
// interface value is known.
type Runtime struct {
	Source reflect.Type // declared source type
	Target reflect.Type // declared target type
	Path   string
	// Element marks values that are collection elements.
	Element bool
}

func (*Runtime) Dispatcher() DispatcherEnum { return DispatcherRuntime }

func (n *Runtime) Types() (reflect.Type, reflect.Type) { return n.Source, n.Target }

// Recurse maps a pair already being planned above it, using the procedure of
// that pair planned at Path.
type Recurse struct {
	Source reflect.Type
	Target reflect.Type
	Path   string
}

func (n *Recurse) Dispatcher() DispatcherEnum {
	if n.Source.Kind() == reflect.Map {
		return DispatcherUnflatten
	}

	return DispatcherComplex
}

func (n *Recurse) Types() (reflect.Type, reflect.Type) { return n.Source, n.Target }

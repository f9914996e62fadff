package analyze

import (
	"reflect"
	"strings"
)

// QualifiedMember is a typed member path from a root object, e.g.
// "Address.Line1" or "Values[i].Name". Qualified members are immutable,
// extending one returns a new value sharing the parent chain.
type QualifiedMember struct {
	parent *QualifiedMember
	member *MemberInfo
	typ    reflect.Type
	depth  int
}

// Root creates the qualified member of a root object of the given type.
func Root(t reflect.Type) *QualifiedMember {
	return &QualifiedMember{
		member: &MemberInfo{Kind: MemberRoot, Type: t, Readable: true, Writable: true},
		typ:    t,
	}
}

// Append qualifies a member of the current member's type.
func (q *QualifiedMember) Append(m *MemberInfo) *QualifiedMember {
	return &QualifiedMember{parent: q, member: m, typ: m.Type, depth: q.depth + 1}
}

// Element qualifies the elements of an enumerable member.
func (q *QualifiedMember) Element(elem reflect.Type) *QualifiedMember {
	return &QualifiedMember{
		parent: q,
		member: &MemberInfo{Name: "[i]", Kind: MemberElement, Type: elem, Declaring: q.typ, Readable: true, Writable: true},
		typ:    elem,
		depth:  q.depth + 1,
	}
}

// WithType substitutes the runtime type of the member value.
func (q *QualifiedMember) WithType(t reflect.Type) *QualifiedMember {
	if t == q.typ {
		return q
	}

	clone := *q
	clone.typ = t

	return &clone
}

// Parent returns the containing member, nil for roots.
func (q *QualifiedMember) Parent() *QualifiedMember { return q.parent }

// Leaf returns the accessor of the last path segment.
func (q *QualifiedMember) Leaf() *MemberInfo { return q.member }

// Type returns the member type, the runtime type when one was substituted.
func (q *QualifiedMember) Type() reflect.Type { return q.typ }

// DeclaredType returns the statically declared type of the member.
func (q *QualifiedMember) DeclaredType() reflect.Type { return q.member.Type }

// Name returns the leaf member name.
func (q *QualifiedMember) Name() string { return q.member.Name }

// IsRoot reports whether the member is a root object.
func (q *QualifiedMember) IsRoot() bool { return q.parent == nil }

// Depth returns the number of segments below the root.
func (q *QualifiedMember) Depth() int { return q.depth }

// Readable reports whether the member value can be read.
func (q *QualifiedMember) Readable() bool { return q.member.Readable }

// Writable reports whether the member value can be written.
func (q *QualifiedMember) Writable() bool { return q.member.Writable }

// RuntimeTypeNeeded reports whether the concrete type of the member is only
// known at mapping time.
func (q *QualifiedMember) RuntimeTypeNeeded() bool {
	return q.typ.Kind() == reflect.Interface
}

// Category classifies the member type.
func (q *QualifiedMember) Category() Category {
	return Classify(q.typ)
}

// Path renders the member path below the root, elements are written as "[i]".
func (q *QualifiedMember) Path() string {
	var segments []*MemberInfo
	for m := q; m != nil && m.parent != nil; m = m.parent {
		segments = append(segments, m.member)
	}

	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s.Kind != MemberElement && b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Name)
	}

	return b.String()
}

// Names returns the member names of the path below the root, skipping elements.
func (q *QualifiedMember) Names() []string {
	var names []string
	for m := q; m != nil && m.parent != nil; m = m.parent {
		if m.member.Kind == MemberElement {
			continue
		}
		names = append([]string{m.member.Name}, names...)
	}

	return names
}

// HasAncestorType reports whether a member of the given type already appears
// above this member, which marks a recursive relationship.
func (q *QualifiedMember) HasAncestorType(t reflect.Type) bool {
	t = Deref(t)
	for m := q.parent; m != nil; m = m.parent {
		if Deref(m.typ) == t {
			return true
		}
	}

	return false
}

// String returns the path, or the type name for roots.
func (q *QualifiedMember) String() string {
	if q.IsRoot() {
		return TypeName(q.typ)
	}

	return q.Path()
}

package analyze

import (
	"reflect"
	"strings"

	"object-mapper/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "object-mapper/internal/shop/store"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// IDOf returns the TypeID of a named type, or an ID carrying the type literal
// for unnamed types like []T or map[string]T.
func IDOf(t reflect.Type) TypeID {
	if t == nil {
		return TypeID{Name: "<nil>"}
	}

	if t.Name() == "" {
		return TypeID{Name: t.String()}
	}

	return TypeID{PkgPath: t.PkgPath(), Name: t.Name()}
}

// Category drives which population strategy applies to a type.
type Category int

const (
	CategoryUnknown    Category = iota
	CategorySimple              // convertible leaf value
	CategoryComplex             // object graph with members
	CategoryEnumerable          // slices, arrays and maps with non-string keys
	CategoryDictionary          // maps keyed by strings
)

// String returns a human-readable representation of the Category.
func (c Category) String() string {
	switch c {
	case CategorySimple:
		return "simple"
	case CategoryComplex:
		return "complex"
	case CategoryEnumerable:
		return "enumerable"
	case CategoryDictionary:
		return "dictionary"
	default:
		return common.UnknownStr
	}
}

// MemberKind describes how a member is accessed.
type MemberKind int

const (
	MemberRoot MemberKind = iota
	MemberField
	MemberMethod
	MemberConstructorParameter
	MemberDictionaryEntry
	MemberElement
)

// String returns a human-readable representation of the MemberKind.
func (k MemberKind) String() string {
	switch k {
	case MemberRoot:
		return "root"
	case MemberField:
		return "field"
	case MemberMethod:
		return "method"
	case MemberConstructorParameter:
		return "constructor parameter"
	case MemberDictionaryEntry:
		return "dictionary entry"
	case MemberElement:
		return "element"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a Go type as seen by the mapper.
type TypeInfo struct {
	ID       TypeID
	Type     reflect.Type // The type with pointers removed
	Category Category
	Elem     reflect.Type  // For enumerables and dictionaries, the element (value) type
	Key      reflect.Type  // For maps, the key type
	Members  []*MemberInfo // For complex types, the members in declaration order

	byName map[string]*MemberInfo
}

// Member returns the member with the exact name, or nil.
func (t *TypeInfo) Member(name string) *MemberInfo {
	return t.byName[name]
}

// MemberFold returns the member with the name, compared case-insensitively.
func (t *TypeInfo) MemberFold(name string) *MemberInfo {
	if m, ok := t.byName[name]; ok {
		return m
	}

	for _, m := range t.Members {
		if strings.EqualFold(m.Name, name) {
			return m
		}
	}

	return nil
}

// Readable returns the members whose value can be read.
func (t *TypeInfo) Readable() []*MemberInfo {
	var out []*MemberInfo
	for _, m := range t.Members {
		if m.Readable {
			out = append(out, m)
		}
	}

	return out
}

// Writable returns the members whose value can be written.
func (t *TypeInfo) Writable() []*MemberInfo {
	var out []*MemberInfo
	for _, m := range t.Members {
		if m.Writable {
			out = append(out, m)
		}
	}

	return out
}

// MemberInfo describes a single readable and/or writable member.
type MemberInfo struct {
	Name      string            // Member name, getters drop their "Get" prefix
	Kind      MemberKind        // How the member is accessed
	Type      reflect.Type      // Declared type
	Declaring reflect.Type      // Type declaring the member
	Tag       reflect.StructTag // Raw struct tag, fields only
	Index     []int             // Field index path, promoted fields have more than one entry
	Getter    string            // Getter method name
	Setter    string            // Setter method name
	Readable  bool
	Writable  bool
	Param     int    // Position of a constructor parameter
	Key       string // Dictionary key

	pointerGetter bool
}

// RuntimeTypeNeeded reports whether the concrete type of the member can only
// be known from its runtime value.
func (m *MemberInfo) RuntimeTypeNeeded() bool {
	return m.Type.Kind() == reflect.Interface
}

// JSONName returns the JSON tag name if present, otherwise the member name.
func (m *MemberInfo) JSONName() string {
	if tag := m.Tag.Get("json"); tag != "" && tag != "-" {
		// Parse first part before comma
		for i := range len(tag) {
			if tag[i] == ',' {
				return tag[:i]
			}
		}

		return tag
	}

	return m.Name
}

// HasTag returns true if the member has the specified tag.
func (m *MemberInfo) HasTag(key string) bool {
	return m.Tag.Get(key) != ""
}

// GetTag returns the value of the specified tag.
func (m *MemberInfo) GetTag(key string) string {
	return m.Tag.Get(key)
}

// Get reads the member from its owner. The owner must be the declaring struct
// value (or map for dictionary entries). The second result is false when the
// member cannot be reached, e.g. through a nil embedded pointer or a missing key.
func (m *MemberInfo) Get(owner reflect.Value) (reflect.Value, bool) {
	if !m.Readable || !owner.IsValid() {
		return reflect.Value{}, false
	}

	switch m.Kind {
	case MemberField:
		f, err := owner.FieldByIndexErr(m.Index)
		if err != nil {
			return reflect.Value{}, false
		}

		return f, true

	case MemberMethod:
		recv := owner
		if m.pointerGetter {
			if owner.CanAddr() {
				recv = owner.Addr()
			} else {
				recv = reflect.New(owner.Type())
				recv.Elem().Set(owner)
			}
		}

		return recv.MethodByName(m.Getter).Call(nil)[0], true

	case MemberDictionaryEntry:
		key, ok := KeyOf(m.Key, owner.Type().Key())
		if !ok {
			return reflect.Value{}, false
		}

		v := owner.MapIndex(key)
		if !v.IsValid() {
			return reflect.Value{}, false
		}

		return v, true
	}

	return reflect.Value{}, false
}

// Set writes the member on an addressable owner, allocating nil embedded
// pointers on the way.
func (m *MemberInfo) Set(owner, value reflect.Value) {
	switch m.Kind {
	case MemberField:
		fieldForWrite(owner, m.Index).Set(value)

	case MemberMethod:
		owner.Addr().MethodByName(m.Setter).Call([]reflect.Value{value})

	case MemberDictionaryEntry:
		if key, ok := KeyOf(m.Key, owner.Type().Key()); ok {
			owner.SetMapIndex(key, value)
		}
	}
}

func fieldForWrite(owner reflect.Value, index []int) reflect.Value {
	v := owner
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.Field(x)
	}

	return v
}

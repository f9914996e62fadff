package primitive

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// enumScanLimit bounds the values probed when an integer enum only exposes
// its member names through fmt.Stringer.
const enumScanLimit = 256

// EnumMember is a named value of an enum type.
type EnumMember struct {
	Name  string
	Value any
}

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

// IsEnum reports whether the type is a named integer, boolean or string type.
func IsEnum(t reflect.Type) bool {
	return FromReflectType(t) == KindPrimitiveEnum
}

// Members lists the known members of an enum type: registered members first,
// otherwise the values named by a String method.
func (c *Converter) Members(t reflect.Type) []EnumMember {
	if members := c.catalog.EnumMembers(t); len(members) > 0 {
		return members
	}

	if !t.Implements(stringerType) || !t.ConvertibleTo(reflect.TypeOf(int64(0))) || t.Kind() == reflect.Bool {
		return nil
	}

	var members []EnumMember

	for i := range enumScanLimit {
		value := reflect.ValueOf(i).Convert(t)
		name := value.Interface().(fmt.Stringer).String()

		// stringer renders unknown values as "Type(N)"
		if name == "" || strings.HasSuffix(name, ")") {
			continue
		}

		members = append(members, EnumMember{Name: name, Value: value.Interface()})
	}

	return members
}

// MapsEnumMember reports whether a source member has a counterpart in the
// target enum type, either through a configured pairing or by name.
func (c *Converter) MapsEnumMember(member EnumMember, to reflect.Type) bool {
	from := reflect.TypeOf(member.Value)

	name := member.Name
	if paired, ok := c.catalog.EnumPairing(from, to, name); ok {
		name = paired
	}

	targets := c.Members(to)
	if len(targets) == 0 {
		return to.Kind() == reflect.String
	}

	for _, target := range targets {
		if strings.EqualFold(target.Name, name) {
			return true
		}
	}

	return false
}

// enumName returns the member name of an enum value.
func (c *Converter) enumName(value reflect.Value) (string, bool) {
	for _, member := range c.catalog.EnumMembers(value.Type()) {
		if sameValue(member.Value, value) {
			return member.Name, true
		}
	}

	if s, ok := value.Interface().(fmt.Stringer); ok {
		return s.String(), true
	}

	if value.Kind() == reflect.String {
		return value.String(), true
	}

	return "", false
}

// enumFromName finds the enum member of type to matching the name, case-insensitively.
func (c *Converter) enumFromName(name string, to reflect.Type) (reflect.Value, bool) {
	registered := c.catalog.EnumMembers(to)
	for _, member := range registered {
		if strings.EqualFold(member.Name, name) {
			value := reflect.ValueOf(member.Value)
			if value.Type().ConvertibleTo(to) {
				return value.Convert(to), true
			}
		}
	}

	ptr := reflect.New(to)
	if u, ok := ptr.Interface().(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(name)); err == nil {
			return ptr.Elem(), true
		}
	}

	if len(registered) > 0 {
		return reflect.Value{}, false
	}

	out := ptr.Elem()

	switch to.Kind() {
	case reflect.String:
		out.SetString(name)
		return out, true

	case reflect.Bool:
		b, ok := parseBool(name)
		if !ok {
			return reflect.Value{}, false
		}
		out.SetBool(b)
		return out, true
	}

	for _, member := range c.Members(to) {
		if strings.EqualFold(member.Name, name) {
			return reflect.ValueOf(member.Value), true
		}
	}

	// numeric text, e.g. "2" for the third member
	if n, err := strconv.ParseInt(name, 10, 64); err == nil {
		return convertNumber(reflect.ValueOf(n), to)
	}

	return reflect.Value{}, false
}

// convertEnum converts between an enum and another enum, number or bool.
// Enum pairs are tried by configured pairing, then by member name, then by
// underlying numeric value.
func (c *Converter) convertEnum(value reflect.Value, fromKind KindEnum, to reflect.Type, toKind KindEnum) (reflect.Value, bool) {
	if fromKind == KindPrimitiveEnum && toKind == KindPrimitiveEnum {
		if name, ok := c.enumName(value); ok {
			if paired, ok := c.catalog.EnumPairing(value.Type(), to, name); ok {
				name = paired
			}

			if out, ok := c.enumFromName(name, to); ok {
				return out, true
			}
		}
	}

	switch {
	case value.Kind() == reflect.String:
		return c.parse(value.String(), to, BaseKind(to))

	case to.Kind() == reflect.String:
		return reflect.Value{}, false

	case value.Kind() == reflect.Bool:
		if to.Kind() == reflect.Bool {
			out := reflect.New(to).Elem()
			out.SetBool(value.Bool())
			return out, true
		}

		if value.Bool() {
			return convertNumber(reflect.ValueOf(1), to)
		}

		return reflect.Zero(to), true

	case to.Kind() == reflect.Bool:
		out := reflect.New(to).Elem()
		out.SetBool(!value.IsZero())
		return out, true
	}

	return convertNumber(value, to)
}

func sameValue(registered any, value reflect.Value) bool {
	rv := reflect.ValueOf(registered)
	if !rv.IsValid() || !rv.Type().ConvertibleTo(value.Type()) {
		return false
	}

	return rv.Convert(value.Type()).Interface() == value.Interface()
}

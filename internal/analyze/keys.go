package analyze

import (
	"encoding"
	"fmt"
	"reflect"
)

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// IsStringKey reports whether a map key type can address flattened member
// paths. Strings qualify, and so do value types encoding to and from text.
func IsStringKey(t reflect.Type) bool {
	if t.Kind() == reflect.String {
		return true
	}

	return t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface &&
		t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType)
}

// KeyString renders a dictionary key as the text it is addressed by.
func KeyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}

	if k.CanInterface() {
		if m, ok := k.Interface().(encoding.TextMarshaler); ok {
			if b, err := m.MarshalText(); err == nil {
				return string(b)
			}
		}

		return fmt.Sprint(k.Interface())
	}

	return k.String()
}

// KeyOf builds the key of type t addressed by s. Text keys that fail to
// decode report false.
func KeyOf(s string, t reflect.Type) (reflect.Value, bool) {
	if t.Kind() == reflect.String {
		return reflect.ValueOf(s).Convert(t), true
	}

	p := reflect.New(t)

	u, ok := p.Interface().(encoding.TextUnmarshaler)
	if !ok || u.UnmarshalText([]byte(s)) != nil {
		return reflect.Value{}, false
	}

	return p.Elem(), true
}

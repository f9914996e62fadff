package primitive

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// Catalog supplies the user configured rules a Converter consults.
type Catalog interface {
	// StringFormat returns the format used when values of type t are formatted
	// to, or parsed from, a string.
	StringFormat(t reflect.Type) (string, bool)
	// EnumPairing returns the target member name explicitly paired with a
	// source member name.
	EnumPairing(from, to reflect.Type, name string) (string, bool)
	// EnumMembers returns the registered members of an enum type.
	EnumMembers(t reflect.Type) []EnumMember
	// Caster returns a user supplied conversion function for the pair.
	Caster(from, to reflect.Type) (Caster, bool)
}

type emptyCatalog struct{}

func (emptyCatalog) StringFormat(reflect.Type) (string, bool)               { return "", false }
func (emptyCatalog) EnumPairing(_, _ reflect.Type, _ string) (string, bool) { return "", false }
func (emptyCatalog) EnumMembers(reflect.Type) []EnumMember                  { return nil }
func (emptyCatalog) Caster(_, _ reflect.Type) (Caster, bool)                { return Caster{}, false }

// Converter converts leaf values between primitive kinds. Conversions never
// panic on bad input, a value that cannot be converted yields the zero value
// of the target type together with a false flag.
type Converter struct {
	categories CategoryEnum
	catalog    Catalog
}

// NewConverter creates a converter restricted to the given categories.
func NewConverter(categories CategoryEnum, catalog Catalog) *Converter {
	if catalog == nil {
		catalog = emptyCatalog{}
	}

	return &Converter{categories: categories, catalog: catalog}
}

// CanConvert reports whether values of the declared types may be converted.
// Interface types can only be decided at runtime and report true.
func (c *Converter) CanConvert(from, to reflect.Type) bool {
	from, to = deref(from), deref(to)
	if from == to || from.Kind() == reflect.Interface {
		return true
	}

	if _, ok := c.catalog.Caster(from, to); ok {
		return true
	}

	if to.Kind() == reflect.Interface {
		return from.Implements(to)
	}

	return Allowed(c.categories, FromReflectType(from), FromReflectType(to))
}

// Convert converts the value into the target type. A nil value converts to the
// zero value of the target type. The error is only set when a user supplied
// caster reports one.
func (c *Converter) Convert(value reflect.Value, to reflect.Type) (reflect.Value, bool, error) {
	if caster, ok := c.casterFor(value, to); ok {
		out, ok, err := caster.Call(value)
		if err != nil || !ok {
			return reflect.Zero(to), false, err
		}

		return fitTo(out, to)
	}

	value = indirect(value)
	if !value.IsValid() {
		return reflect.Zero(to), true, nil
	}

	switch to.Kind() {
	case reflect.Ptr:
		converted, ok, err := c.Convert(value, to.Elem())
		if !ok {
			return reflect.Zero(to), false, err
		}

		ptr := reflect.New(to.Elem())
		ptr.Elem().Set(converted)

		return ptr, true, nil

	case reflect.Interface:
		if !value.Type().Implements(to) {
			return reflect.Zero(to), false, nil
		}

		out := reflect.New(to).Elem()
		out.Set(value)

		return out, true, nil
	}

	from := value.Type()
	if from == to {
		return value, true, nil
	}

	fromKind, toKind := FromReflectType(from), FromReflectType(to)
	if !Allowed(c.categories, fromKind, toKind) {
		return reflect.Zero(to), false, nil
	}

	out, ok := c.convert(value, fromKind, to, toKind)
	if !ok {
		return reflect.Zero(to), false, nil
	}

	return out, true, nil
}

func (c *Converter) casterFor(value reflect.Value, to reflect.Type) (Caster, bool) {
	if !value.IsValid() {
		return Caster{}, false
	}

	if caster, ok := c.catalog.Caster(value.Type(), to); ok {
		return caster, true
	}

	if value.Kind() == reflect.Ptr && !value.IsNil() {
		return c.catalog.Caster(value.Type().Elem(), to)
	}

	return Caster{}, false
}

func (c *Converter) convert(value reflect.Value, fromKind KindEnum, to reflect.Type, toKind KindEnum) (reflect.Value, bool) {
	switch {
	case toKind == KindString:
		s, ok := c.format(value, fromKind)
		if !ok {
			return reflect.Value{}, false
		}

		out := reflect.New(to).Elem()
		out.SetString(s)

		return out, true

	case fromKind == KindString:
		return c.parse(value.String(), to, toKind)

	case fromKind == KindPrimitiveEnum || toKind == KindPrimitiveEnum:
		return c.convertEnum(value, fromKind, to, toKind)

	case fromKind.IsNumber() && toKind.IsNumber():
		return convertNumber(value, to)

	case fromKind == KindBool && toKind.IsInteger():
		if value.Bool() {
			return convertNumber(reflect.ValueOf(1), to)
		}

		return reflect.Zero(to), true

	case fromKind.IsInteger() && toKind == KindBool:
		out := reflect.New(to).Elem()
		out.SetBool(!value.IsZero())

		return out, true

	case toKind == KindTime:
		seconds, ok := convertNumber(value, reflect.TypeOf(int64(0)))
		if !ok {
			return reflect.Value{}, false
		}

		return reflect.ValueOf(time.Unix(seconds.Int(), 0).UTC()), true

	case fromKind == KindTime:
		return convertNumber(reflect.ValueOf(value.Interface().(time.Time).Unix()), to)

	case toKind == KindDuration:
		if fromKind.IsFloat() {
			seconds := value.Float() * float64(time.Second)
			if !inRange(math.MinInt64, seconds, math.MaxInt64) {
				return reflect.Value{}, false
			}

			return reflect.ValueOf(time.Duration(seconds)), true
		}

		nanos, ok := convertNumber(value, reflect.TypeOf(int64(0)))
		if !ok {
			return reflect.Value{}, false
		}

		return reflect.ValueOf(time.Duration(nanos.Int())), true

	case fromKind == KindDuration:
		d := time.Duration(value.Int())
		if toKind.IsFloat() {
			return convertNumber(reflect.ValueOf(d.Seconds()), to)
		}

		return convertNumber(reflect.ValueOf(int64(d)), to)
	}

	return reflect.Value{}, false
}

// format renders a leaf value as text. Configured formats win over the
// default representation of the kind.
func (c *Converter) format(value reflect.Value, kind KindEnum) (string, bool) {
	if layout, ok := c.catalog.StringFormat(value.Type()); ok {
		if kind == KindTime {
			return value.Interface().(time.Time).Format(layout), true
		}

		return fmt.Sprintf(layout, value.Interface()), true
	}

	switch kind {
	case KindPrimitiveEnum:
		if name, ok := c.enumName(value); ok {
			return name, true
		}

		return formatNumber(value, BaseKind(value.Type()))
	case KindTime:
		return value.Interface().(time.Time).Format(time.RFC3339Nano), true
	case KindDuration:
		return time.Duration(value.Int()).String(), true
	case KindUUID:
		return value.Interface().(uuid.UUID).String(), true
	case KindText:
		text, err := value.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", false
		}

		return string(text), true
	case KindString:
		return value.String(), true
	}

	return formatNumber(value, kind)
}

// Formattable reports whether a string format can be configured for the
// type: numbers take fmt verbs, times take layouts.
func Formattable(t reflect.Type) bool {
	kind := FromReflectType(deref(t))

	return kind.IsNumber() || kind == KindTime || kind == KindDuration
}

func formatNumber(value reflect.Value, kind KindEnum) (string, bool) {
	switch {
	case kind == KindFloat32:
		return strconv.FormatFloat(value.Float(), 'f', -1, 32), true
	case kind == KindFloat64:
		return strconv.FormatFloat(value.Float(), 'f', -1, 64), true
	case kind.IsSigned():
		return strconv.FormatInt(value.Int(), 10), true
	case kind.IsUnsigned():
		return strconv.FormatUint(value.Uint(), 10), true
	case kind == KindBool:
		return strconv.FormatBool(value.Bool()), true
	}

	s, err := cast.ToStringE(value.Interface())

	return s, err == nil
}

// parse reads a leaf value from text.
func (c *Converter) parse(s string, to reflect.Type, kind KindEnum) (reflect.Value, bool) {
	s = strings.TrimSpace(s)

	switch {
	case kind == KindPrimitiveEnum:
		return c.enumFromName(s, to)

	case kind == KindBool:
		b, ok := parseBool(s)
		if !ok {
			return reflect.Value{}, false
		}

		out := reflect.New(to).Elem()
		out.SetBool(b)

		return out, true

	case kind.IsFloat():
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return reflect.Value{}, false
		}

		return convertNumber(reflect.ValueOf(f), to)

	case kind.IsSigned():
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}

		return convertNumber(reflect.ValueOf(n), to)

	case kind.IsUnsigned():
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}

		return convertNumber(reflect.ValueOf(n), to)

	case kind == KindTime:
		if s == "" {
			return reflect.Value{}, false
		}

		if layout, ok := c.catalog.StringFormat(to); ok {
			t, err := time.Parse(layout, s)
			if err != nil {
				return reflect.Value{}, false
			}

			return reflect.ValueOf(t), true
		}

		t, err := cast.ToTimeE(s)
		if err != nil {
			return reflect.Value{}, false
		}

		return reflect.ValueOf(t), true

	case kind == KindDuration:
		d, err := cast.ToDurationE(s)
		if err != nil {
			return reflect.Value{}, false
		}

		return reflect.ValueOf(d), true

	case kind == KindUUID:
		id, err := uuid.Parse(s)
		if err != nil {
			return reflect.Value{}, false
		}

		return reflect.ValueOf(id), true

	case kind == KindText:
		ptr := reflect.New(to)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, false
		}

		return ptr.Elem(), true
	}

	return reflect.Value{}, false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	}

	b, err := cast.ToBoolE(s)

	return b, err == nil
}

// convertNumber converts between numeric kinds. Values which do not fit into
// the target type are rejected instead of being truncated.
func convertNumber(value reflect.Value, to reflect.Type) (reflect.Value, bool) {
	out := reflect.New(to).Elem()

	switch {
	case value.CanInt():
		n := value.Int()

		switch {
		case out.CanInt():
			if out.OverflowInt(n) {
				return reflect.Value{}, false
			}
			out.SetInt(n)
		case out.CanUint():
			if n < 0 || out.OverflowUint(uint64(n)) {
				return reflect.Value{}, false
			}
			out.SetUint(uint64(n))
		case out.CanFloat():
			out.SetFloat(float64(n))
		default:
			return reflect.Value{}, false
		}

	case value.CanUint():
		n := value.Uint()

		switch {
		case out.CanInt():
			if n > math.MaxInt64 || out.OverflowInt(int64(n)) {
				return reflect.Value{}, false
			}
			out.SetInt(int64(n))
		case out.CanUint():
			if out.OverflowUint(n) {
				return reflect.Value{}, false
			}
			out.SetUint(n)
		case out.CanFloat():
			out.SetFloat(float64(n))
		default:
			return reflect.Value{}, false
		}

	case value.CanFloat():
		f := value.Float()

		switch {
		case out.CanInt():
			// 2^63 is exactly representable, anything at or above it overflows int64
			if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return reflect.Value{}, false
			}

			n := int64(f)
			if out.OverflowInt(n) {
				return reflect.Value{}, false
			}
			out.SetInt(n)
		case out.CanUint():
			if math.IsNaN(f) || f < 0 || f >= math.MaxUint64 {
				return reflect.Value{}, false
			}

			n := uint64(f)
			if out.OverflowUint(n) {
				return reflect.Value{}, false
			}
			out.SetUint(n)
		case out.CanFloat():
			if out.Kind() == reflect.Float32 && !math.IsInf(f, 0) && !math.IsNaN(f) &&
				!inRange(-math.MaxFloat32, f, math.MaxFloat32) {
				return reflect.Value{}, false
			}
			out.SetFloat(f)
		default:
			return reflect.Value{}, false
		}

	default:
		return reflect.Value{}, false
	}

	return out, true
}

// fitTo adapts a caster result to the exact target type.
func fitTo(value reflect.Value, to reflect.Type) (reflect.Value, bool, error) {
	switch {
	case value.Type() == to:
		return value, true, nil
	case to.Kind() == reflect.Ptr && value.Type() == to.Elem():
		ptr := reflect.New(to.Elem())
		ptr.Elem().Set(value)
		return ptr, true, nil
	case value.Kind() == reflect.Ptr && value.Type().Elem() == to:
		if value.IsNil() {
			return reflect.Zero(to), true, nil
		}
		return value.Elem(), true, nil
	case value.Type().AssignableTo(to):
		out := reflect.New(to).Elem()
		out.Set(value)
		return out, true, nil
	}

	return reflect.Zero(to), false, nil
}

func indirect(value reflect.Value) reflect.Value {
	for value.IsValid() && (value.Kind() == reflect.Ptr || value.Kind() == reflect.Interface) {
		if value.IsNil() {
			return reflect.Value{}
		}
		value = value.Elem()
	}

	return value
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t
}

// inRange reports whether min <= value <= max.
func inRange(min, value, max float64) bool {
	return min <= value && value <= max
}

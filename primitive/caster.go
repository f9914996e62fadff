package primitive

import (
	"errors"
	"path"
	"reflect"
	"runtime"
	"strings"

)

var (
	ErrIsNotACaster         = errors.New("provided function is not a recognizable caster")
	ErrCasterIsNotAFunction = errors.New("provided caster is not a function")
	ErrDoublePointer        = errors.New("caster function does not support double pointers")
)

// Caster is a user supplied conversion function between two leaf types.
type Caster struct {
	Src, Dst     reflect.Type
	PackageAlias string
	Name         string
	HasBool      bool
	HasErr       bool

	fn reflect.Value
}

// ParseCaster inspects the provided function and returns a Caster struct if it is a valid caster function.
//
// Supports interfaces:
//   - func(src Type) (dst Type)
//   - func(src Type) (dst Type, bool)
//   - func(src Type) (dst Type, error)
//   - func(src Type) (dst Type, bool, error)
func ParseCaster(fn any) (Caster, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() {
		return Caster{}, ErrCasterIsNotAFunction
	}

	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return Caster{}, ErrCasterIsNotAFunction
	}

	if fnType.NumIn() != 1 || fnType.NumOut() == 0 || fnType.IsVariadic() {
		return Caster{}, ErrIsNotACaster
	}

	src := fnType.In(0)
	if src.Kind() == reflect.Ptr && src.Elem().Kind() == reflect.Ptr {
		return Caster{}, ErrDoublePointer
	}

	dst := fnType.Out(0)
	if dst.Kind() == reflect.Ptr && dst.Elem().Kind() == reflect.Ptr {
		return Caster{}, ErrDoublePointer
	}

	alias, name := FuncName(fnVal)

	caster := Caster{
		Src:          src,
		Dst:          dst,
		Name:         name,
		PackageAlias: alias,
		fn:           fnVal,
	}

	switch fnType.NumOut() {
	default:
		return Caster{}, ErrIsNotACaster

	case 1:
		return caster, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return Caster{}, ErrIsNotACaster
		case last.Kind() == reflect.Bool:
			caster.HasBool = true
		case isError(last):
			caster.HasErr = true
		}
		return caster, nil

	case 3:
		tbool, terr := fnType.Out(1), fnType.Out(2)
		if tbool.Kind() != reflect.Bool || !isError(terr) {
			return Caster{}, ErrIsNotACaster
		}

		caster.HasBool = true
		caster.HasErr = true
		return caster, nil
	}
}

// Call invokes the caster. A false result means the value could not be
// converted, an error is reported by the function itself.
func (c Caster) Call(value reflect.Value) (reflect.Value, bool, error) {
	if !value.IsValid() {
		value = reflect.Zero(c.Src)
	}

	out := c.fn.Call([]reflect.Value{value})

	switch {
	case c.HasBool && c.HasErr:
		if err, _ := out[2].Interface().(error); err != nil {
			return reflect.Value{}, false, err
		}
		return out[0], out[1].Bool(), nil
	case c.HasBool:
		return out[0], out[1].Bool(), nil
	case c.HasErr:
		if err, _ := out[1].Interface().(error); err != nil {
			return reflect.Value{}, false, err
		}
		return out[0], true, nil
	default:
		return out[0], true, nil
	}
}

// String returns the qualified function name, e.g. "strconv.Itoa".
func (c Caster) String() string {
	if c.PackageAlias == "" {
		return c.Name
	}

	return c.PackageAlias + "." + c.Name
}

// FuncName splits the runtime name of a function into its package alias and name.
func FuncName(fn reflect.Value) (alias, name string) {
	fnPC := runtime.FuncForPC(fn.Pointer())
	if fnPC == nil {
		return "", "func"
	}

	_, file := path.Split(fnPC.Name())

	alias, name, _ = strings.Cut(file, ".")

	return alias, name
}

func isError(t reflect.Type) bool {
	if t == nil {
		return false
	}

	terr := reflect.TypeOf((*error)(nil)).Elem()

	return t.Implements(terr)
}

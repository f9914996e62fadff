package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// FuncKind describes the role a registered function plays in a mapping file.
type FuncKind int

const (
	// FuncTransform is a value function: func(S) T, optionally returning a bool and/or an error.
	FuncTransform FuncKind = iota
	// FuncCondition is a guard: func(S) bool.
	FuncCondition
	// FuncConstructor builds a target from named parameters: func(P...) T or func(P...) (T, error).
	FuncConstructor
	// FuncCreator builds an empty target instance: func() T or func(S) T.
	FuncCreator
	// FuncErrorHandler decides the result of a failed mapping: func(error, any) any.
	FuncErrorHandler
)

// String returns a human-readable name for the function kind.
func (k FuncKind) String() string {
	switch k {
	case FuncTransform:
		return "transform"
	case FuncCondition:
		return "condition"
	case FuncConstructor:
		return "constructor"
	case FuncCreator:
		return "creator"
	case FuncErrorHandler:
		return "error handler"
	default:
		return "unknown"
	}
}

var (
	errorType = reflect.TypeFor[error]()
	boolType  = reflect.TypeFor[bool]()
	anyType   = reflect.TypeFor[any]()
)

// FuncTable holds named functions referenced by mapping files.
type FuncTable struct {
	mu    sync.RWMutex
	funcs map[string]reflect.Value
}

// NewFuncTable creates a new empty function table.
func NewFuncTable() *FuncTable {
	return &FuncTable{funcs: make(map[string]reflect.Value)}
}

// Add registers fn under name. fn must be a non-nil function.
func (t *FuncTable) Add(name string, fn any) error {
	if name == "" {
		return errors.New("function name is empty")
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("function %q: expected a func, got %T", name, fn)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.funcs[name] = v

	return nil
}

// Get returns the function registered under name.
func (t *FuncTable) Get(name string) (reflect.Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.funcs[name]

	return v, ok
}

// Has returns true if a function with the given name exists.
func (t *FuncTable) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Names returns all function names in sorted order.
func (t *FuncTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// CheckSignature reports whether fn has the shape required by kind.
func CheckSignature(kind FuncKind, fn reflect.Type) error {
	if fn.Kind() != reflect.Func {
		return fmt.Errorf("%s: expected a func, got %s", kind, fn)
	}

	if fn.IsVariadic() {
		return fmt.Errorf("%s: variadic functions are not supported", kind)
	}

	in, out := fn.NumIn(), fn.NumOut()

	switch kind {
	case FuncTransform:
		if in != 1 || !validResults(fn) {
			return fmt.Errorf("%s: expected func(S) T, func(S) (T, bool) or func(S) (T, error), got %s", kind, fn)
		}
	case FuncCondition:
		if in != 1 || out != 1 || fn.Out(0) != boolType {
			return fmt.Errorf("%s: expected func(S) bool, got %s", kind, fn)
		}
	case FuncConstructor:
		if out == 0 || out > 2 || (out == 2 && fn.Out(1) != errorType) {
			return fmt.Errorf("%s: expected func(P...) T or func(P...) (T, error), got %s", kind, fn)
		}
	case FuncCreator:
		if in > 1 || out != 1 {
			return fmt.Errorf("%s: expected func() T or func(S) T, got %s", kind, fn)
		}
	case FuncErrorHandler:
		if in != 2 || out != 1 || fn.In(0) != errorType || fn.In(1) != anyType || fn.Out(0) != anyType {
			return fmt.Errorf("%s: expected func(error, any) any, got %s", kind, fn)
		}
	default:
		return fmt.Errorf("unknown function kind %d", kind)
	}

	return nil
}

func validResults(fn reflect.Type) bool {
	switch fn.NumOut() {
	case 1:
		return true
	case 2:
		return fn.Out(1) == boolType || fn.Out(1) == errorType
	case 3:
		return fn.Out(1) == boolType && fn.Out(2) == errorType
	default:
		return false
	}
}

// GenerateStub generates a stub function for a function a mapping file
// references but no code registers. This helps users implement missing functions.
func GenerateStub(name string, kind FuncKind, sourceType, targetType string) string {
	if sourceType == "" {
		sourceType = "any"
	}

	if targetType == "" {
		targetType = "any"
	}

	var signature string

	switch kind {
	case FuncCondition:
		signature = fmt.Sprintf("func %s(src %s) bool", name, sourceType)
	case FuncCreator:
		signature = fmt.Sprintf("func %s() %s", name, targetType)
	case FuncErrorHandler:
		signature = fmt.Sprintf("func %s(err error, src any) any", name)
	case FuncConstructor:
		signature = fmt.Sprintf("func %s( /* params */ ) %s", name, targetType)
	default:
		signature = fmt.Sprintf("func %s(src %s) %s", name, sourceType, targetType)
	}

	var sb strings.Builder

	sb.WriteString("// " + name + " is referenced as a " + kind.String() + " by the mapping file.\n")
	sb.WriteString(signature + " {\n")
	sb.WriteString("\tpanic(\"not implemented\")\n")
	sb.WriteString("}")

	return sb.String()
}

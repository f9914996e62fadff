package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"object-mapper/internal/mapping"
)

// DataSource binds a target member, a group of target members picked by a
// filter, or a constructor parameter to the value it is populated from.
//
// The value is read from the Source member path of the mapped source object,
// is the constant Value when HasValue is set, or is the result of Func. Func
// receives the Source member value when Source is set and the source object
// otherwise. Condition, a func(S) bool over the source object, guards the data
// source: when it reports false the next candidate is consulted.
//
// A data source is immutable once added to a Store.
type DataSource struct {
	Pair     TypePair
	RuleSets []RuleSet

	// Target is the target member path, e.g. "Address.Line1".
	Target string
	// Filter selects target members, FilterName describes it in messages.
	Filter     func(TargetMember) bool
	FilterName string
	// Parameter names the constructor parameter the data source binds.
	Parameter string

	Source    string
	Value     any
	HasValue  bool
	Func      any
	Condition any

	// Sequential data sources are applied after the winning data source with
	// merge semantics instead of replacing it.
	Sequential bool
	// Reversible data sources are mirrored for the reverse pair.
	Reversible bool
	// DependsOn lists target members populated before this one.
	DependsOn []string

	fn    reflect.Value
	cond  reflect.Value
	order int
}

// Constant returns the configured constant, invalid for a nil constant.
func (d *DataSource) Constant() reflect.Value {
	return reflect.ValueOf(d.Value)
}

// FuncValue returns the value function, invalid when none is set.
func (d *DataSource) FuncValue() reflect.Value { return d.fn }

// ConditionValue returns the guard function, invalid when none is set.
func (d *DataSource) ConditionValue() reflect.Value { return d.cond }

// IsConditional reports whether the data source is guarded.
func (d *DataSource) IsConditional() bool { return d.cond.IsValid() }

// IsExclusive reports whether the data source suppresses lower precedence
// candidates for its member.
func (d *DataSource) IsExclusive() bool { return !d.Sequential && !d.IsConditional() }

// Order returns the registration order of the data source in its store.
func (d *DataSource) Order() int { return d.order }

// TargetName describes the configured target, e.g. "Address.Line1" or
// `filter "ids"`.
func (d *DataSource) TargetName() string {
	switch {
	case d.Parameter != "":
		return "parameter " + d.Parameter
	case d.Filter != nil:
		name := d.FilterName
		if name == "" {
			name = "anonymous"
		}

		return fmt.Sprintf("filter %q", name)
	default:
		return d.Target
	}
}

// SourceName describes the value origin, e.g. "Name", `"x"` or "Up(Name)".
func (d *DataSource) SourceName() string {
	var origin string

	switch {
	case d.HasValue:
		origin = strings.TrimSpace(spew.Sdump(d.Value))
		if s, ok := d.Value.(string); ok {
			origin = fmt.Sprintf("%q", s)
		}
	case d.fn.IsValid():
		arg := d.Source
		if arg == "" {
			arg = "source"
		}

		origin = fmt.Sprintf("%s(%s)", funcName(d.fn), arg)
	default:
		origin = d.Source
	}

	if d.cond.IsValid() {
		origin += " when " + funcName(d.cond)
	}

	return origin
}

// String renders the data source as "[pair] target <- origin".
func (d *DataSource) String() string {
	return fmt.Sprintf("[%s] %s <- %s", d.Pair, d.TargetName(), d.SourceName())
}

// prepare validates the data source and resolves its functions.
func (d *DataSource) prepare() error {
	if d.Pair.Target == nil {
		return fmt.Errorf("data source for %s has no target type", d.TargetName())
	}

	targets := 0
	for _, set := range []bool{d.Target != "", d.Filter != nil, d.Parameter != ""} {
		if set {
			targets++
		}
	}

	if targets != 1 {
		return fmt.Errorf("data source %s must name exactly one of a target member, a filter or a parameter", d)
	}

	if d.HasValue && (d.Source != "" || d.Func != nil) {
		return fmt.Errorf("data source %s: a constant cannot be combined with a source member or a func", d)
	}

	if !d.HasValue && d.Source == "" && d.Func == nil {
		return fmt.Errorf("data source for %s has no source member, constant or func", d.TargetName())
	}

	if d.Target != "" {
		if _, err := mapping.ParsePath(d.Target); err != nil {
			return fmt.Errorf("data source target: %w", err)
		}

		d.Target = mapping.CanonicalPath(d.Target)
	}

	if d.Source != "" {
		if _, err := mapping.ParsePath(d.Source); err != nil {
			return fmt.Errorf("data source for %s: %w", d.TargetName(), err)
		}
	}

	if d.Func != nil {
		fn, err := checkedFunc(mapping.FuncTransform, d.Func)
		if err != nil {
			return fmt.Errorf("data source for %s: %w", d.TargetName(), err)
		}

		d.fn = fn
	}

	if d.Condition != nil {
		cond, err := checkedFunc(mapping.FuncCondition, d.Condition)
		if err != nil {
			return fmt.Errorf("data source for %s: %w", d.TargetName(), err)
		}

		d.cond = cond
	}

	for i, dep := range d.DependsOn {
		if _, err := mapping.ParsePath(dep); err != nil {
			return fmt.Errorf("data source for %s: depends on: %w", d.TargetName(), err)
		}

		d.DependsOn[i] = mapping.CanonicalPath(dep)
		if d.Target != "" && d.DependsOn[i] == d.Target {
			return fmt.Errorf("data source for %s depends on itself", d.Target)
		}
	}

	return nil
}

func (d *DataSource) clone() *DataSource {
	c := *d
	c.RuleSets = append([]RuleSet(nil), d.RuleSets...)
	c.DependsOn = append([]string(nil), d.DependsOn...)

	return &c
}

func checkedFunc(kind mapping.FuncKind, fn any) (reflect.Value, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("%s: expected a func, got %T", kind, fn)
	}

	if err := mapping.CheckSignature(kind, v.Type()); err != nil {
		return reflect.Value{}, err
	}

	return v, nil
}

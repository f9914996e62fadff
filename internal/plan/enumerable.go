package plan

import (
	"reflect"
	"slices"

	"object-mapper/internal/analyze"
	"object-mapper/internal/mapping"
	"object-mapper/node"
)

// EnumerableStrategy populates a target slice or array from the elements of
// a source collection.
type EnumerableStrategy interface {
	Name() string
	// RemovesAbsent reports whether existing target entries without a
	// source counterpart are dropped.
	RemovesAbsent() bool

	populate(c *call, n *node.Collection, items []frame, existing reflect.Value) ([]reflect.Value, error)
}

var (
	// CreateNewStrategy maps every source element into a new collection.
	CreateNewStrategy EnumerableStrategy = createNewStrategy{}
	// MergeStrategy updates the existing elements matching source elements by
	// identity, keeps the others and appends the rest.
	MergeStrategy EnumerableStrategy = updateStrategy{name: "Merge"}
	// OverwriteStrategy updates the existing elements matching source elements
	// by identity, drops the others and appends the rest.
	OverwriteStrategy EnumerableStrategy = updateStrategy{name: "Overwrite", removeAbsent: true}
)

type createNewStrategy struct{}

func (createNewStrategy) Name() string { return "CreateNew" }

func (createNewStrategy) RemovesAbsent() bool { return false }

func (createNewStrategy) populate(c *call, n *node.Collection, items []frame, _ reflect.Value) ([]reflect.Value, error) {
	elem := n.Target.Elem()
	out := make([]reflect.Value, 0, len(items))

	for _, item := range items {
		v, err := c.mapValue(n.Element, item, reflect.Value{}, elem)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

type updateStrategy struct {
	name         string
	removeAbsent bool
}

func (s updateStrategy) Name() string { return s.name }

func (s updateStrategy) RemovesAbsent() bool { return s.removeAbsent }

func (s updateStrategy) populate(c *call, n *node.Collection, items []frame, existing reflect.Value) ([]reflect.Value, error) {
	if !existing.IsValid() || existing.Len() == 0 {
		return CreateNewStrategy.populate(c, n, items, existing)
	}

	current := make([]reflect.Value, existing.Len())
	for i := range current {
		current[i] = existing.Index(i)
	}

	if !n.Identifiable() {
		fresh, err := CreateNewStrategy.populate(c, n, items, reflect.Value{})
		if err != nil || s.removeAbsent {
			return fresh, err
		}

		if analyze.Classify(n.Target.Elem()) != analyze.CategorySimple {
			return append(current, fresh...), nil
		}

		for _, v := range fresh {
			if !slices.ContainsFunc(current, func(e reflect.Value) bool { return reflect.DeepEqual(e.Interface(), v.Interface()) }) {
				current = append(current, v)
			}
		}

		return current, nil
	}

	sourceIDs := make([]string, len(items))
	for i, item := range items {
		sourceIDs[i] = c.identify(n.SourceIdentity, item.value)
	}

	targetIDs := make([]string, len(current))
	for i, v := range current {
		targetIDs[i] = c.identify(n.TargetIdentity, v)
	}

	data := Collect(sourceIDs, targetIDs)
	elem := n.Target.Elem()

	for _, m := range data.Matched {
		v, err := c.mapValue(n.Element, items[m.Source], current[m.Target], elem)
		if err != nil {
			return nil, err
		}

		current[m.Target] = v
	}

	out := current
	if s.removeAbsent && len(data.Absent) > 0 {
		out = make([]reflect.Value, 0, len(current)-len(data.Absent))
		for i, v := range current {
			if !slices.Contains(data.Absent, i) {
				out = append(out, v)
			}
		}
	}

	for _, i := range data.New {
		v, err := c.mapValue(n.Element, items[i], reflect.Value{}, elem)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

// identify reads the identity of a collection element, "" when it has none.
func (c *call) identify(id *node.Identity, v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return ""
	}

	switch {
	case id.Member != nil:
		value, ok := id.Member.Get(v)
		if !ok {
			return ""
		}

		return identityKey(value)

	case id.Func.IsValid():
		arg, ok := c.adapt(v, id.Func.Type().In(0))
		if !ok {
			return ""
		}

		outs, err := invoke(id.Func, []reflect.Value{arg})
		if err != nil {
			c.logger.Debug("identity func failed", "type", analyze.TypeName(id.Type), "error", err)
			return ""
		}

		return identityKey(outs[0])
	}

	return ""
}

func (c *call) collection(n *node.Collection, in frame, existing reflect.Value, to reflect.Type) (reflect.Value, error) {
	items, ok := c.elements(n, in)
	if !ok {
		return c.absent(existing, to), nil
	}

	var current reflect.Value
	if c.reusing() {
		if v := indirect(existing); v.IsValid() && v.Type() == n.Target {
			current = v
		}
	}

	values, err := c.strategy().populate(c, n, items, current)
	if err != nil {
		return reflect.Value{}, err
	}

	out, dropped := materialize(n.Target, values)
	if dropped > 0 {
		c.logger.Debug("array target full, elements dropped",
			"target", analyze.TypeName(n.Target), "path", n.Path, "dropped", dropped)
	}

	return fit(out, existing, to), nil
}

// elements returns the source elements as frames, false for a nil source.
func (c *call) elements(n *node.Collection, in frame) ([]frame, bool) {
	if n.FromDictionary {
		if in.dict == nil {
			v := indirect(in.value)
			if !v.IsValid() {
				return nil, false
			}

			in.dict = &dictView{value: v}
		}

		keys := in.dict.keys()
		indices := keys.Indices(mapping.JoinKey(in.prefix, mapping.KeySeparator))
		items := make([]frame, 0, len(indices))

		for _, i := range indices {
			prefix := append(slices.Clone(in.prefix), mapping.IndexKey(i))

			switch n.Element.(type) {
			case *node.Object, *node.Recurse:
				items = append(items, frame{value: in.value, dict: in.dict, prefix: prefix})
			default:
				var value reflect.Value
				if key, ok := keys.Lookup(mapping.KeyCandidates(prefix, c.sep)); ok {
					value = in.dict.value.MapIndex(key)
				}

				items = append(items, frame{value: value})
			}
		}

		return items, true
	}

	v := indirect(in.value)
	if !v.IsValid() || (v.Kind() == reflect.Slice && v.IsNil()) {
		return nil, false
	}

	items := make([]frame, v.Len())
	for i := range items {
		items[i] = frame{value: v.Index(i)}
	}

	return items, true
}

// materialize builds a slice or an array. Elements past the length of an
// array fill its zero slots first, the rest are dropped and counted.
func materialize(t reflect.Type, values []reflect.Value) (reflect.Value, int) {
	var (
		out     reflect.Value
		dropped int
	)

	if t.Kind() == reflect.Array {
		out = reflect.New(t).Elem()
		values, dropped = pack(values, t.Len())
	} else {
		out = reflect.MakeSlice(t, len(values), len(values))
	}

	for i, v := range values {
		if v.IsValid() {
			out.Index(i).Set(v)
		}
	}

	return out, dropped
}

// pack fits values into n slots, moving the overflow into zero slots.
func pack(values []reflect.Value, n int) ([]reflect.Value, int) {
	if len(values) <= n {
		return values, 0
	}

	slots := slices.Clone(values[:n])
	extra := values[n:]

	for i, v := range slots {
		if len(extra) == 0 {
			break
		}

		if !v.IsValid() || v.IsZero() {
			slots[i] = extra[0]
			extra = extra[1:]
		}
	}

	return slots, len(extra)
}

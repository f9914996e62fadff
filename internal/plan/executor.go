package plan

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"object-mapper/config"
	"object-mapper/internal/analyze"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/mapping"
	"object-mapper/node"
	"object-mapper/primitive"
)

// dictView is a source dictionary shared by the frames reading its keys.
type dictView struct {
	value reflect.Value
	index *mapping.KeyIndex
}

func (d *dictView) keys() *mapping.KeyIndex {
	if d.index == nil {
		d.index = mapping.NewKeyIndex(d.value)
	}

	return d.index
}

// frame is a source object being mapped. Dictionary frames read the keys
// below prefix.
type frame struct {
	value  reflect.Value
	dict   *dictView
	prefix []string
}

// call is the state of one mapping call.
type call struct {
	ctx      context.Context
	engine   *Engine
	rs       config.RuleSet
	spec     RuleSetSpec
	fp       config.Fingerprint
	logger   glog.Logger
	sep      string
	registry *registry
	keep     bool
	top      *node.Runtime

	frames     []frame
	depth      int
	sequential int
}

func (e *Engine) newCall(ctx context.Context, rs config.RuleSet) *call {
	c := &call{
		ctx:    ctx,
		engine: e,
		rs:     rs,
		spec:   SpecOf(rs),
		fp:     e.cfg.Fingerprint(),
		logger: e.logger.WithContext(ctx),
		sep:    e.cfg.Naming().Separator,
	}

	if !e.cfg.ObjectTrackingDisabled() {
		c.registry = acquireRegistry()
		c.keep = e.cfg.IdentityIntegrity()
	}

	return c
}

func (c *call) release() {
	if c.registry != nil {
		c.registry.release()
		c.registry = nil
	}
}

func (c *call) reusing() bool { return c.spec.ReuseTarget || c.sequential > 0 }

func (c *call) keepingValues() bool { return c.spec.KeepValues || c.sequential > 0 }

func (c *call) strategy() EnumerableStrategy {
	if c.sequential > 0 {
		return MergeStrategy
	}

	return c.spec.Enumerables
}

// mapValue executes a plan step. The result has type to.
func (c *call) mapValue(n node.Node, in frame, existing reflect.Value, to reflect.Type) (reflect.Value, error) {
	switch n := n.(type) {
	case *node.Leaf:
		return c.leaf(in.value, existing, to)
	case *node.Object:
		return c.object(n, in, existing, to)
	case *node.Collection:
		return c.collection(n, in, existing, to)
	case *node.Dictionary:
		return c.dictionary(n, in, existing, to)
	case *node.Flatten:
		return c.flatten(n, in, existing, to)
	case *node.Runtime:
		return c.runtime(n, in, existing, to)
	case *node.Recurse:
		proc, err := c.engine.procedure(Key{Source: n.Source, Target: n.Target, RuleSet: c.rs, Fingerprint: c.fp, Path: n.Path})
		if err != nil {
			return reflect.Value{}, err
		}

		return c.mapValue(proc.Root, in, existing, to)
	}

	return reflect.Zero(to), nil
}

func (c *call) leaf(value, existing reflect.Value, to reflect.Type) (reflect.Value, error) {
	if c.keepingValues() && existing.IsValid() && !existing.IsZero() {
		return existing, nil
	}

	out, ok, err := c.engine.conv.Convert(value, to)
	if err != nil {
		return reflect.Value{}, err
	}

	if !ok {
		return reflect.Zero(to), nil
	}

	return out, nil
}

func (c *call) object(n *node.Object, in frame, existing reflect.Value, to reflect.Type) (out reflect.Value, err error) {
	if err := c.ctx.Err(); err != nil {
		return reflect.Value{}, err
	}

	if c.depth >= c.engine.maxDepth {
		return reflect.Value{}, c.failure(n, n.Path, fmt.Errorf("mapping exceeds the maximum depth of %d", c.engine.maxDepth))
	}

	c.depth++
	defer func() { c.depth-- }()

	source := unwrap(in.value)
	if !source.IsValid() || (source.Kind() == reflect.Ptr && source.IsNil()) {
		return reflect.Zero(to), nil
	}

	var (
		key     trackKey
		tracked bool
	)

	if c.registry != nil && !n.FromDictionary && len(n.Prefix) == 0 {
		if key, tracked = keyOf(source, n.Target); tracked {
			if hit, ok := c.registry.lookup(key); ok {
				return fitPointer(hit, to), nil
			}
		}
	}

	if n.FromDictionary && in.dict == nil {
		in.dict = &dictView{value: reflect.Indirect(source)}
	}

	c.frames = append(c.frames, in)
	defer func() { c.frames = c.frames[:len(c.frames)-1] }()

	defer func() {
		if err != nil {
			out, err = c.handle(n, source, to, err)
		}
	}()

	var ptr reflect.Value

	reused := false
	if c.reusing() {
		if ptr = targetPointer(existing, n.Target); ptr.IsValid() {
			reused = true
		}
	}

	if !reused {
		if ptr, err = c.construct(n); err != nil {
			return reflect.Value{}, err
		}
	}

	if tracked {
		c.registry.register(key, ptr)
		if !c.keep {
			defer c.registry.forget(key)
		}
	}

	target := ptr.Elem()
	for _, m := range n.Members {
		if err := c.member(n, m, target, reused); err != nil {
			if tracked {
				c.registry.forget(key)
			}

			return reflect.Value{}, err
		}
	}

	return fitPointer(ptr, to), nil
}

// handle passes a mapping failure to the error handler configured for the
// pair, whose result replaces the target.
func (c *call) handle(n *node.Object, source reflect.Value, to reflect.Type, err error) (reflect.Value, error) {
	if diagnostic.HasTextCode(err, diagnostic.TextCodeConfiguration) {
		return reflect.Value{}, err
	}

	handler, ok := c.engine.cfg.ErrorHandlerFor(n.Source, n.Target)
	if !ok {
		return reflect.Value{}, err
	}

	c.logger.Warn("mapping error handled", "pair", analyze.PairName(n.Source, n.Target), "path", n.Path, "error", err)

	result := handler(err, source.Interface())
	if result == nil {
		return reflect.Zero(to), nil
	}

	out, ok := c.adapt(reflect.ValueOf(result), to)
	if !ok {
		return reflect.Value{}, c.failure(n, n.Path,
			fmt.Errorf("error handler returned %T, not %s: %w", result, analyze.TypeName(to), err))
	}

	return out, nil
}

func (c *call) construct(n *node.Object) (reflect.Value, error) {
	con := n.Construction

	switch {
	case con.Creator.IsValid():
		var args []reflect.Value
		if con.Creator.Type().NumIn() == 1 {
			arg, ok := c.adapt(c.frameAt(0).value, con.Creator.Type().In(0))
			if !ok {
				arg = reflect.Zero(con.Creator.Type().In(0))
			}

			args = append(args, arg)
		}

		outs, err := invoke(con.Creator, args)
		if err != nil {
			return reflect.Value{}, c.failure(n, n.Path, err)
		}

		return asPointer(outs[0], n.Target), nil

	case con.Constructor.IsValid():
		args := make([]reflect.Value, len(con.Params))

		for i, p := range con.Params {
			v, ok, err := c.first(p.Sources, p.Type, reflect.Value{})
			if err != nil {
				return reflect.Value{}, c.failure(n, joinPath(n.Path, p.Name), err)
			}

			if !ok {
				v = reflect.Zero(p.Type)
			}

			args[i] = v
		}

		outs, err := invoke(con.Constructor, args)
		if err == nil && len(outs) == 2 && !outs[1].IsNil() {
			err = outs[1].Interface().(error)
		}

		if err != nil {
			return reflect.Value{}, c.failure(n, n.Path, err)
		}

		return asPointer(outs[0], n.Target), nil
	}

	return reflect.New(n.Target), nil
}

func (c *call) member(n *node.Object, m *node.Member, target reflect.Value, reused bool) error {
	var current reflect.Value
	if c.reusing() {
		current, _ = m.Info.Get(target)
	}

	value, ok, err := c.first(m.Sources, m.Info.Type, current)
	if err != nil {
		return c.failure(n, m.Path, err)
	}

	switch {
	case ok:
		m.Info.Set(target, value)
	case m.Fallback == node.FallbackZero && reused:
		m.Info.Set(target, reflect.Zero(m.Info.Type))
	}

	if len(m.Sequential) == 0 {
		return nil
	}

	c.sequential++
	defer func() { c.sequential-- }()

	for _, s := range m.Sequential {
		current, _ = m.Info.Get(target)

		value, ok, err := c.apply(s, m.Info.Type, current)
		if err != nil {
			return c.failure(n, m.Path, err)
		}

		if ok {
			m.Info.Set(target, value)
		}
	}

	return nil
}

// first returns the value of the first source yielding one.
func (c *call) first(sources []*node.Source, to reflect.Type, current reflect.Value) (reflect.Value, bool, error) {
	for _, s := range sources {
		v, ok, err := c.apply(s, to, current)
		if err != nil || ok {
			return v, ok, err
		}
	}

	return reflect.Value{}, false, nil
}

func (c *call) apply(s *node.Source, to reflect.Type, current reflect.Value) (reflect.Value, bool, error) {
	f := c.frameAt(s.Up)

	if s.Condition.IsValid() {
		arg, ok := c.adapt(f.value, s.Condition.Type().In(0))
		if !ok {
			return reflect.Value{}, false, nil
		}

		outs, err := invoke(s.Condition, []reflect.Value{arg})
		if err != nil {
			return reflect.Value{}, false, err
		}

		if !outs[0].Bool() {
			return reflect.Value{}, false, nil
		}
	}

	raw, present := c.read(s, f)

	if present && s.Func.IsValid() {
		var err error
		if raw, present, err = c.transform(s.Func, raw); err != nil {
			return reflect.Value{}, false, err
		}
	}

	if !present {
		if s.Nested == nil || f.dict == nil {
			return reflect.Value{}, false, nil
		}

		prefix := slices.Concat(f.prefix, s.KeyPath)

		keys := f.dict.keys()
		if !keys.HasPrefix(mapping.KeyCandidates(prefix, c.sep), c.sep) && len(keys.Indices(mapping.JoinKey(prefix, mapping.KeySeparator))) == 0 {
			return reflect.Value{}, false, nil
		}

		v, err := c.mapValue(s.Nested, frame{value: f.value, dict: f.dict, prefix: prefix}, current, to)

		return v, err == nil, err
	}

	if s.Value == nil {
		return reflect.Zero(to), true, nil
	}

	v, err := c.mapValue(s.Value, frame{value: raw}, current, to)

	return v, err == nil, err
}

// read yields the raw source value. Absent values, nil pointers included,
// let the next source be tried.
func (c *call) read(s *node.Source, f frame) (reflect.Value, bool) {
	switch {
	case s.HasConstant:
		return s.Constant, true

	case len(s.KeyPath) > 0:
		if f.dict == nil {
			return reflect.Value{}, false
		}

		key, ok := f.dict.keys().Lookup(mapping.KeyCandidates(slices.Concat(f.prefix, s.KeyPath), c.sep))
		if !ok {
			return reflect.Value{}, false
		}

		return f.dict.value.MapIndex(key), true

	case len(s.Chain) > 0:
		return walk(f.value, s.Chain)

	default:
		v := unwrap(f.value)
		return v, v.IsValid() && !(v.Kind() == reflect.Ptr && v.IsNil())
	}
}

func walk(v reflect.Value, chain []*analyze.MemberInfo) (reflect.Value, bool) {
	for _, m := range chain {
		v = indirect(v)
		if !v.IsValid() {
			return reflect.Value{}, false
		}

		if m.Kind == analyze.MemberElement {
			if m.Param < 0 || m.Param >= v.Len() {
				return reflect.Value{}, false
			}

			v = v.Index(m.Param)

			continue
		}

		next, ok := m.Get(v)
		if !ok {
			return reflect.Value{}, false
		}

		v = next
	}

	if u := unwrap(v); !u.IsValid() || (u.Kind() == reflect.Ptr && u.IsNil()) {
		return reflect.Value{}, false
	}

	return v, true
}

// transform calls a value func; a false flag reports an absent value.
func (c *call) transform(fn, raw reflect.Value) (reflect.Value, bool, error) {
	arg, ok := c.adapt(raw, fn.Type().In(0))
	if !ok {
		return reflect.Value{}, false, nil
	}

	outs, err := invoke(fn, []reflect.Value{arg})
	if err != nil {
		return reflect.Value{}, false, err
	}

	present := true

	for _, out := range outs[1:] {
		switch {
		case out.Kind() == reflect.Bool:
			present = present && out.Bool()
		case !out.IsNil():
			return reflect.Value{}, false, out.Interface().(error)
		}
	}

	return outs[0], present, nil
}

func (c *call) frameAt(up int) frame {
	i := len(c.frames) - 1 - up
	if i < 0 {
		i = 0
	}

	return c.frames[i]
}

// adapt fits a value to a func parameter or result type.
func (c *call) adapt(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Zero(t), true
	}

	if v.Type().AssignableTo(t) {
		return v, true
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return reflect.Zero(t), true
		}

		if v.Kind() == reflect.Interface || v.Type().Elem().AssignableTo(t) {
			return c.adapt(v.Elem(), t)
		}
	}

	if t.Kind() == reflect.Ptr && v.Type().AssignableTo(t.Elem()) {
		if v.CanAddr() {
			return v.Addr(), true
		}

		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(v)

		return ptr, true
	}

	if analyze.Classify(v.Type()) == analyze.CategorySimple && analyze.Classify(t) == analyze.CategorySimple {
		if out, ok, err := c.engine.conv.Convert(v, t); err == nil && ok {
			return out, true
		}
	}

	return reflect.Value{}, false
}

func (c *call) dictionary(n *node.Dictionary, in frame, existing reflect.Value, to reflect.Type) (reflect.Value, error) {
	src := indirect(in.value)
	if !src.IsValid() || src.IsNil() {
		return c.absent(existing, to), nil
	}

	out, reused := c.targetMap(n.Target, existing, src.Len())
	seen := make(map[any]bool, src.Len())

	iter := src.MapRange()
	for iter.Next() {
		key, err := c.mapValue(n.Key, frame{value: iter.Key()}, reflect.Value{}, n.Target.Key())
		if err != nil {
			return reflect.Value{}, err
		}

		var current reflect.Value
		if reused {
			current = out.MapIndex(key)
		}

		value, err := c.mapValue(n.Value, frame{value: iter.Value()}, current, n.Target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		out.SetMapIndex(key, value)
		seen[key.Interface()] = true
	}

	if reused && c.strategy().RemovesAbsent() {
		for _, key := range out.MapKeys() {
			if !seen[key.Interface()] {
				out.SetMapIndex(key, reflect.Value{})
			}
		}
	}

	return fit(out, existing, to), nil
}

// absent is the result of a nil source collection: the existing value when
// values are kept, nil otherwise.
func (c *call) absent(existing reflect.Value, to reflect.Type) reflect.Value {
	if c.keepingValues() && existing.IsValid() && existing.Type() == to {
		return existing
	}

	return reflect.Zero(to)
}

// targetMap returns the existing map to populate in place, or a new one.
func (c *call) targetMap(t reflect.Type, existing reflect.Value, size int) (reflect.Value, bool) {
	if c.reusing() {
		if current := indirect(existing); current.IsValid() && current.Type() == t && !current.IsNil() {
			return current, true
		}
	}

	return reflect.MakeMapWithSize(t, size), false
}

func (c *call) flatten(n *node.Flatten, in frame, existing reflect.Value, to reflect.Type) (reflect.Value, error) {
	src := indirect(in.value)
	if !src.IsValid() {
		return reflect.Zero(to), nil
	}

	out, _ := c.targetMap(n.Target, existing, 0)

	f := &flattener{
		call: c,
		out:  out,
		elem: n.Target.Elem(),
		keep: c.keepingValues(),
		seen: map[uintptr]bool{},
	}

	if err := f.walk(in.value, nil); err != nil {
		return reflect.Value{}, err
	}

	return fit(out, existing, to), nil
}

// flattener writes leaf values under dotted keys, e.g. "Address.Line1" and
// "Items[0].Name". Complex dictionary value types receive whole members.
type flattener struct {
	call *call
	out  reflect.Value
	elem reflect.Type
	keep bool
	seen map[uintptr]bool
}

func (f *flattener) walk(v reflect.Value, parts []string) error {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return f.put(parts, reflect.Value{})
		}

		v = v.Elem()
	}

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}

		ptr := v.Pointer()
		if f.seen[ptr] {
			return nil
		}

		f.seen[ptr] = true
		defer delete(f.seen, ptr)

		return f.walk(v.Elem(), parts)
	}

	switch analyze.Classify(v.Type()) {
	case analyze.CategorySimple:
		return f.put(parts, v)

	case analyze.CategoryComplex:
		if len(parts) > 0 && analyze.Classify(f.elem) == analyze.CategoryComplex {
			return f.put(parts, v)
		}

		for _, m := range f.call.engine.analyzer.Info(v.Type()).Readable() {
			if m.Kind != analyze.MemberField {
				continue
			}

			mv, ok := m.Get(v)
			if !ok {
				continue
			}

			if err := f.walk(mv, append(slices.Clone(parts), m.Name)); err != nil {
				return err
			}
		}

	case analyze.CategoryEnumerable:
		if v.Kind() == reflect.Map {
			return nil
		}

		for i := range v.Len() {
			if err := f.walk(v.Index(i), append(slices.Clone(parts), mapping.IndexKey(i))); err != nil {
				return err
			}
		}

	case analyze.CategoryDictionary:
		keys := v.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(analyze.KeyString(a), analyze.KeyString(b))
		})

		for _, k := range keys {
			if err := f.walk(v.MapIndex(k), append(slices.Clone(parts), analyze.KeyString(k))); err != nil {
				return err
			}
		}
	}

	return nil
}

func (f *flattener) put(parts []string, v reflect.Value) error {
	if len(parts) == 0 {
		return nil
	}

	key, ok := analyze.KeyOf(mapping.JoinKey(parts, mapping.KeySeparator), f.out.Type().Key())
	if !ok {
		return nil
	}

	if f.keep {
		if current := f.out.MapIndex(key); current.IsValid() && !current.IsZero() {
			return nil
		}
	}

	var value reflect.Value

	switch {
	case !v.IsValid():
		value = reflect.Zero(f.elem)
	case v.Type().AssignableTo(f.elem):
		value = v
	default:
		out, err := f.call.dynamic(v, f.elem)
		if err != nil {
			return err
		}

		if !out.IsValid() {
			return nil
		}

		value = out
	}

	f.out.SetMapIndex(key, value)

	return nil
}

// dynamic maps a value whose type is only known at runtime.
func (c *call) dynamic(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	return c.runtime(&node.Runtime{Source: v.Type(), Target: analyze.Deref(to)}, frame{value: v}, reflect.Value{}, to)
}

// runtime plans and maps the concrete type of an interface value.
func (c *call) runtime(n *node.Runtime, in frame, existing reflect.Value, to reflect.Type) (reflect.Value, error) {
	v := unwrap(in.value)
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return reflect.Zero(to), nil
	}

	types := c.engine.MappingTypes(n.Source, n.Target, v)

	result := to
	if analyze.Deref(to).Kind() == reflect.Interface {
		if types.Target.Kind() == reflect.Interface {
			if out, ok := c.adapt(v, to); ok && v.Type().AssignableTo(analyze.Deref(to)) {
				return out, nil
			}

			return reflect.Zero(to), nil
		}

		result = types.Target
		if v.Kind() == reflect.Ptr || !result.Implements(analyze.Deref(to)) {
			result = reflect.PointerTo(result)
		}

		if current := unwrap(existing); current.IsValid() && current.Type() == result {
			existing = current
		} else {
			existing = reflect.Value{}
		}
	}

	var (
		out reflect.Value
		err error
	)

	dispatch := node.Dispatch(types.Source, types.Target)

	switch {
	case dispatch == node.DispatcherSimple:
		out, err = c.leaf(v, existing, result)
	case dispatch == node.DispatcherUnknown && n != c.top:
		return c.unmappable(types, to), nil
	default:
		var proc *node.Procedure

		proc, err = c.engine.procedure(Key{
			Source:      types.Source,
			Target:      types.Target,
			RuleSet:     c.rs,
			Fingerprint: c.fp,
			Path:        n.Path,
			Element:     n.Element,
		})
		if err != nil {
			if proc != nil && proc.Root == nil && n != c.top {
				return c.unmappable(types, to), nil
			}

			return reflect.Value{}, err
		}

		out, err = c.mapValue(proc.Root, frame{value: v}, existing, result)
	}

	if err != nil || result == to {
		return out, err
	}

	wrapped, _ := c.adapt(out, to)

	return wrapped, nil
}

// unmappable is the value of a runtime pair nothing maps. Only the pair a
// mapping starts from reports the missing mapping.
func (c *call) unmappable(types MappingTypes, to reflect.Type) reflect.Value {
	c.logger.Debug("runtime value not mapped",
		"source", analyze.TypeName(types.Source),
		"target", analyze.TypeName(types.Target),
	)

	return reflect.Zero(to)
}

// invoke calls a user func, reporting a panic as an error.
func invoke(fn reflect.Value, args []reflect.Value) (outs []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			_, name := primitive.FuncName(fn)
			err = fmt.Errorf("%s panicked: %v", name, r)
		}
	}()

	return fn.Call(args), nil
}

func (c *call) failure(n *node.Object, path string, err error) error {
	if diagnostic.HasTextCode(err, diagnostic.TextCodeMapping) || diagnostic.HasTextCode(err, diagnostic.TextCodeConfiguration) {
		return err
	}

	pair := analyze.PairName(n.Source, n.Target)

	return diagnostic.NewMappingError(err, fmt.Sprintf("mapping %s failed at %q: %v", pair, path, err), map[string]any{
		diagnostic.MetaPair:    pair,
		diagnostic.MetaTarget:  path,
		diagnostic.MetaRuleSet: c.rs.String(),
	})
}

// unwrap removes interface wrappers.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

// indirect removes interface wrappers and pointers, invalid for nil.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

// targetPointer returns a pointer to the existing target of type base, the
// existing pointer itself when there is one.
func targetPointer(existing reflect.Value, base reflect.Type) reflect.Value {
	v := existing
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr) {
		if v.IsNil() {
			return reflect.Value{}
		}

		if v.Kind() == reflect.Ptr && v.Type().Elem() == base {
			return v
		}

		v = v.Elem()
	}

	if !v.IsValid() || v.Type() != base {
		return reflect.Value{}
	}

	if v.CanAddr() {
		return v.Addr()
	}

	ptr := reflect.New(base)
	ptr.Elem().Set(v)

	return ptr
}

// asPointer turns a factory result into a pointer to base.
func asPointer(v reflect.Value, base reflect.Type) reflect.Value {
	v = unwrap(v)

	switch {
	case !v.IsValid():
		return reflect.New(base)
	case v.Kind() == reflect.Ptr && v.Type().Elem() == base:
		if v.IsNil() {
			return reflect.New(base)
		}

		return v
	case v.Kind() == reflect.Ptr:
		return asPointer(v.Elem(), base)
	}

	ptr := reflect.New(base)
	ptr.Elem().Set(v)

	return ptr
}

// fitPointer converts a pointer to a base type into the pointer depth of to.
func fitPointer(ptr reflect.Value, to reflect.Type) reflect.Value {
	depth, _ := analyze.PtrDepth(to)
	if depth == 0 {
		return ptr.Elem()
	}

	out := ptr
	for range depth - 1 {
		p := reflect.New(out.Type())
		p.Elem().Set(out)
		out = p
	}

	return out
}

// fit converts a base value into the pointer depth of to, writing through
// an existing pointer when there is one.
func fit(out, existing reflect.Value, to reflect.Type) reflect.Value {
	if to == out.Type() || to.Kind() != reflect.Ptr {
		return out
	}

	if existing.IsValid() && existing.Type() == to && !existing.IsNil() && to.Elem() == out.Type() {
		existing.Elem().Set(out)
		return existing
	}

	ptr := reflect.New(to.Elem())
	ptr.Elem().Set(fit(out, reflect.Value{}, to.Elem()))

	return ptr
}

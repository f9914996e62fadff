package mapping

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"object-mapper/internal/analyze"
	"object-mapper/internal/match"
	"object-mapper/primitive"
)

const suggestionLimit = 3

// resolveType resolves a type identifier, reporting a diagnostic when it is unknown.
func (v *validator) resolveType(role, id, pair string) (reflect.Type, bool) {
	if id == "" {
		v.res.AddError("missing_type", role+" type is empty", pair, "")
		return nil, false
	}

	typ, ok := v.types.Resolve(id)
	if !ok {
		v.res.AddError(
			"type_not_found", fmt.Sprintf("%s type %q not found", role, id), pair, id,
			match.Suggest(bareName(id), v.typeNames(), match.SuggestionThreshold, suggestionLimit)...,
		)
	}

	return typ, ok
}

// typeNames returns the registered type names without their package paths.
func (v *validator) typeNames() []string {
	var names []string
	for _, n := range v.types.Names() {
		names = append(names, bareName(n))
	}

	slices.Sort(names)

	return slices.Compact(names)
}

func bareName(id string) string {
	id = strings.TrimLeft(id, "*[]")
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}

	return id
}

// lookupFunc resolves a registered function and checks its signature.
func (v *validator) lookupFunc(kind FuncKind, name, pair, path string) (reflect.Value, bool) {
	fn, ok := v.funcs.Get(name)
	if !ok {
		v.res.AddError(
			"func_not_found", fmt.Sprintf("%s %q is not registered", kind, name), pair, path,
			match.Suggest(name, v.funcs.Names(), match.SuggestionThreshold, suggestionLimit)...,
		)

		return reflect.Value{}, false
	}

	if err := CheckSignature(kind, fn.Type()); err != nil {
		v.res.AddError("invalid_func_signature", fmt.Sprintf("%q: %v", name, err), pair, path)
		return reflect.Value{}, false
	}

	return fn, true
}

// validateTargets validates the target member references in a field mapping.
func (v *validator) validateTargets(
	pair string,
	dstT reflect.Type,
	fm *FieldMapping,
	ignored, exclusive map[string]bool,
) {
	if fm.Parameter != "" {
		if !fm.Target.IsEmpty() {
			v.res.AddError("ambiguous_target", "field mapping binds a parameter and names a target", pair, fm.Parameter)
		}

		return
	}

	if fm.Target.IsEmpty() {
		v.res.AddError("missing_target_path", "field mapping must specify target or parameter", pair, "")
		return
	}

	for _, t := range fm.Target {
		if err := v.validatePath(t, dstT, true); err != nil {
			v.res.AddError("invalid_target_path", fmt.Sprintf("invalid target path: %v", err), pair, t, v.suggest(t, dstT)...)
		}

		if ignored[t] {
			v.res.AddError("ignored_target", "data source configured for an ignored member", pair, t)
		}

		if fm.Sequential || fm.When != "" {
			continue
		}

		if exclusive[t] {
			v.res.AddError("duplicate_target", fmt.Sprintf("conflicting data sources for %s", t), pair, t)
		}

		exclusive[t] = true
	}
}

// validateSource validates the value origin of a field mapping.
func (v *validator) validateSource(pair string, srcT reflect.Type, fm *FieldMapping) {
	switch fm.ValueKinds() {
	case 0:
		v.res.AddError("missing_source", "field mapping must specify source, transform or default", pair, fm.Target.First())
		return
	case 1:
	default:
		v.res.AddError("ambiguous_source", "default cannot be combined with source or transform", pair, fm.Target.First())
		return
	}

	if fm.Source == "" {
		return
	}

	if err := v.validatePath(fm.Source, srcT, false); err != nil {
		v.res.AddError("invalid_source_path", fmt.Sprintf("invalid source path: %v", err), pair, fm.Source, v.suggest(fm.Source, srcT)...)
	}
}

// validateFuncs validates the transform and condition references of a field mapping.
func (v *validator) validateFuncs(pair string, fm *FieldMapping) {
	if fm.Transform != "" {
		v.lookupFunc(FuncTransform, fm.Transform, pair, fm.Target.First())
	}

	if fm.When != "" {
		v.lookupFunc(FuncCondition, fm.When, pair, fm.Target.First())
	}

	if fm.Reversible && !fm.IsPlainSource() {
		v.res.AddInfo("not_reversible", "only plain source paths can be reversed, the reversal is skipped", pair, fm.Target.First())
	}
}

func (v *validator) validatePath(pathStr string, typ reflect.Type, writable bool) error {
	return CheckPath(v.analyzer, typ, pathStr, writable)
}

// CheckPath walks a member path over a type. Dictionary and interface typed
// members end the walk since their members are only known at runtime. With
// writable set the last member must accept writes, otherwise every member on
// the way must be readable.
func CheckPath(analyzer *analyze.Analyzer, typ reflect.Type, pathStr string, writable bool) error {
	fp, err := ParsePath(pathStr)
	if err != nil {
		return err
	}

	current := typ

	for i, seg := range fp.Segments {
		info := analyzer.Info(current)

		switch info.Category {
		case analyze.CategoryDictionary:
			return nil
		case analyze.CategoryComplex:
		default:
			if info.Type.Kind() == reflect.Interface {
				return nil
			}

			return fmt.Errorf("cannot access member %q on %s", seg.Name, analyze.TypeName(current))
		}

		m := info.Member(seg.Name)
		if m == nil {
			return fmt.Errorf("member %q not found in %s", seg.Name, analyze.TypeName(info.Type))
		}

		last := i == len(fp.Segments)-1
		if last && writable && !m.Writable {
			return fmt.Errorf("member %q is not writable", seg.Name)
		}

		if !writable && !m.Readable {
			return fmt.Errorf("member %q is not readable", seg.Name)
		}

		current = m.Type

		if seg.IsSlice {
			elem := analyzer.Info(current)
			if elem.Category != analyze.CategoryEnumerable {
				return fmt.Errorf("segment %q uses [] but the member is %s", seg.Name, elem.Category)
			}

			current = elem.Elem
		}
	}

	return nil
}

// suggest returns member names of the type close to the last path segment.
func (v *validator) suggest(pathStr string, typ reflect.Type) []string {
	fp, err := ParsePath(pathStr)
	if err != nil || len(fp.Segments) != 1 {
		return nil
	}

	info := v.analyzer.Info(typ)
	if info.Category != analyze.CategoryComplex {
		return nil
	}

	names := make([]string, 0, len(info.Members))
	for _, m := range info.Members {
		names = append(names, m.Name)
	}

	return match.Suggest(fp.Root(), names, match.SuggestionThreshold, suggestionLimit)
}

// validateDerived checks that derived types relate to the declared pair.
func (v *validator) validateDerived(pair string, srcT, dstT, derivedSrc, derivedDst reflect.Type) {
	if !relates(derivedSrc, srcT) {
		v.res.AddError("invalid_derived_source",
			fmt.Sprintf("%s is not derived from %s", analyze.TypeName(derivedSrc), analyze.TypeName(srcT)), pair, "")
	}

	if !relates(derivedDst, dstT) {
		v.res.AddError("invalid_derived_target",
			fmt.Sprintf("%s is not derived from %s", analyze.TypeName(derivedDst), analyze.TypeName(dstT)), pair, "")
	}
}

// relates reports whether derived can stand in for base: equal types, or
// types implementing base when base is an interface.
func relates(derived, base reflect.Type) bool {
	if derived == base || analyze.Deref(derived) == analyze.Deref(base) {
		return true
	}

	if base.Kind() != reflect.Interface {
		return false
	}

	return derived.Implements(base) || reflect.PointerTo(derived).Implements(base)
}

// returnsType reports whether a factory's first result produces typ or *typ.
func returnsType(fn, typ reflect.Type) bool {
	if fn.NumOut() == 0 {
		return false
	}

	out := fn.Out(0)

	return out == typ || analyze.Deref(out) == analyze.Deref(typ) || out.AssignableTo(typ)
}

// IsFormattable reports whether a string format can be configured for the type.
func IsFormattable(typ reflect.Type) bool {
	return primitive.Formattable(typ)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

package mapping

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"object-mapper/internal/analyze"
	"object-mapper/internal/diagnostic"
)

// Validate validates a mapping definition against the registered types and
// functions. This is a structural validation step only; it doesn't try to
// prove value convertibility beyond what the type information shows.
func Validate(mf *MappingFile, types *TypeTable, funcs *FuncTable, analyzer *analyze.Analyzer) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_is_nil", "mapping file is nil", "", "")
		return res
	}

	if types == nil {
		types = NewTypeTable()
	}

	if funcs == nil {
		funcs = NewFuncTable()
	}

	if analyzer == nil {
		analyzer = analyze.NewAnalyzer()
	}

	v := &validator{res: res, types: types, funcs: funcs, analyzer: analyzer}

	v.validateNaming(mf.Naming)
	v.validateSettings(mf.Settings)
	v.validateIdentifiers(mf.Identifiers)
	v.validateFormats(mf.Formats)
	v.validateEnums(mf.Enums)
	v.validateCreators(mf.Creators)

	for i := range mf.TypeMappings {
		v.validateTypeMapping(&mf.TypeMappings[i])
	}

	return res
}

type validator struct {
	res      *diagnostic.Diagnostics
	types    *TypeTable
	funcs    *FuncTable
	analyzer *analyze.Analyzer
}

func (v *validator) validateNaming(n *NamingDef) {
	if n == nil {
		return
	}

	if strings.ContainsAny(n.Separator, "[]") {
		v.res.AddError("invalid_separator", fmt.Sprintf("separator %q must not contain brackets", n.Separator), "", "naming")
	}

	for _, affix := range slices.Concat(n.Prefixes, n.Suffixes) {
		if affix == "" {
			v.res.AddError("empty_affix", "naming prefixes and suffixes must not be empty", "", "naming")
		}
	}
}

func (v *validator) validateSettings(s SettingsDef) {
	if s.IdentityIntegrity != nil && *s.IdentityIntegrity &&
		s.DisableObjectTracking != nil && *s.DisableObjectTracking {
		v.res.AddError("exclusive_settings",
			"identity_integrity requires object tracking, disable_object_tracking cannot be set with it", "", "settings")
	}
}

func (v *validator) validateIdentifiers(ids map[string]string) {
	for _, typeID := range sortedKeys(ids) {
		typ, ok := v.resolveType("identifier", typeID, "")
		if !ok {
			continue
		}

		if err := v.validatePath(ids[typeID], typ, false); err != nil {
			v.res.AddError("invalid_identifier", fmt.Sprintf("invalid identifier: %v", err), typeID, ids[typeID],
				v.suggest(ids[typeID], typ)...)
		}
	}
}

func (v *validator) validateFormats(formats []FormatDef) {
	for _, f := range formats {
		typ, ok := v.resolveType("format", f.Type, "")
		if !ok {
			continue
		}

		if f.Format == "" {
			v.res.AddError("empty_format", "format string is empty", f.Type, "")
		}

		if !IsFormattable(typ) {
			v.res.AddError("unformattable_type", fmt.Sprintf("type %s cannot be formatted", analyze.TypeName(typ)), f.Type, "")
		}
	}
}

func (v *validator) validateEnums(enums []EnumDef) {
	for _, e := range enums {
		pair := e.Source + "->" + e.Target

		src, okSrc := v.resolveType("enum source", e.Source, pair)
		dst, okDst := v.resolveType("enum target", e.Target, pair)

		if !okSrc || !okDst {
			continue
		}

		if analyze.Classify(src) != analyze.CategorySimple || analyze.Classify(dst) != analyze.CategorySimple {
			v.res.AddError("invalid_enum_pair", "enum pairings need simple types on both sides", pair, "")
		}

		if len(e.Pairs) == 0 {
			v.res.AddWarning("empty_enum_pairs", "enum pairing lists no pairs", pair, "")
		}
	}
}

func (v *validator) validateCreators(creators []CreatorDef) {
	for _, c := range creators {
		typ, ok := v.resolveType("creator", c.Type, "")
		if !ok {
			continue
		}

		if c.Path != "" {
			if _, err := ParsePath(c.Path); err != nil {
				v.res.AddError("invalid_creator_path", err.Error(), c.Type, c.Path)
			}
		}

		fn, ok := v.lookupFunc(FuncCreator, c.Func, c.Type, c.Path)
		if !ok {
			continue
		}

		if !returnsType(fn.Type(), typ) {
			v.res.AddError("creator_type_mismatch",
				fmt.Sprintf("creator %q returns %s, not %s", c.Func, fn.Type().Out(0), analyze.TypeName(typ)), c.Type, c.Path)
		}
	}
}

func (v *validator) validateTypeMapping(tm *TypeMapping) {
	pair := fmt.Sprintf("%s->%s", tm.Source, tm.Target)

	srcT, okSrc := v.resolveType("source", tm.Source, pair)
	dstT, okDst := v.resolveType("target", tm.Target, pair)

	for _, rs := range tm.RuleSets {
		if !slices.Contains(RuleSetNames, rs) {
			v.res.AddError("invalid_rule_set",
				fmt.Sprintf("unknown rule set %q, expected one of %s", rs, strings.Join(RuleSetNames, ", ")), pair, "")
		}
	}

	if !okSrc || !okDst {
		return
	}

	ignored := map[string]bool{}

	for _, ig := range tm.Ignore {
		ignored[ig] = true

		if err := v.validatePath(ig, dstT, false); err != nil {
			v.res.AddError("invalid_ignore_path", fmt.Sprintf("invalid ignore path: %v", err), pair, ig, v.suggest(ig, dstT)...)
		}
	}

	exclusive := map[string]bool{}

	// 121 shorthand
	for _, sp := range sortedKeys(tm.OneToOne) {
		tp := tm.OneToOne[sp]

		if err := v.validatePath(sp, srcT, false); err != nil {
			v.res.AddError("invalid_source_path", fmt.Sprintf("invalid source path in 121: %v", err), pair, sp, v.suggest(sp, srcT)...)
		}

		if err := v.validatePath(tp, dstT, true); err != nil {
			v.res.AddError("invalid_target_path", fmt.Sprintf("invalid target path in 121: %v", err), pair, tp, v.suggest(tp, dstT)...)
		}

		if ignored[tp] {
			v.res.AddError("ignored_target", "data source configured for an ignored member", pair, tp)
		}

		if exclusive[tp] {
			v.res.AddError("duplicate_target", fmt.Sprintf("conflicting data sources for %s", tp), pair, tp)
		}

		exclusive[tp] = true
	}

	for i := range tm.Fields {
		v.validateFieldMapping(pair, srcT, dstT, &tm.Fields[i], ignored, exclusive)
	}

	for _, d := range tm.Derived {
		ds, okS := v.resolveType("derived source", d.Source, pair)
		dt, okT := v.resolveType("derived target", d.Target, pair)

		if okS && okT {
			v.validateDerived(pair, srcT, dstT, ds, dt)
		}
	}

	if tm.Constructor != nil {
		v.validateConstructor(pair, dstT, tm.Constructor)
	}

	if tm.OnError != "" {
		v.lookupFunc(FuncErrorHandler, tm.OnError, pair, "")
	}
}

// validateFieldMapping validates a single field mapping within a type mapping.
func (v *validator) validateFieldMapping(
	pair string,
	srcT, dstT reflect.Type,
	fm *FieldMapping,
	ignored, exclusive map[string]bool,
) {
	v.validateTargets(pair, dstT, fm, ignored, exclusive)
	v.validateSource(pair, srcT, fm)
	v.validateFuncs(pair, fm)

	for _, dep := range fm.DependsOn {
		if err := v.validatePath(dep, dstT, false); err != nil {
			v.res.AddError("invalid_dependency", fmt.Sprintf("invalid depends_on path: %v", err), pair, dep)
		}

		if slices.Contains(fm.Target, dep) {
			v.res.AddError("self_dependency", "member depends on itself", pair, dep)
		}
	}
}

func (v *validator) validateConstructor(pair string, dstT reflect.Type, c *ConstructorDef) {
	fn, ok := v.lookupFunc(FuncConstructor, c.Func, pair, "")
	if !ok {
		return
	}

	if fn.Type().NumIn() != len(c.Params) {
		v.res.AddError("constructor_params_mismatch",
			fmt.Sprintf("constructor %q takes %d parameters, %d names given", c.Func, fn.Type().NumIn(), len(c.Params)), pair, "")
	}

	if !returnsType(fn.Type(), dstT) {
		v.res.AddError("constructor_type_mismatch",
			fmt.Sprintf("constructor %q returns %s, not %s", c.Func, fn.Type().Out(0), analyze.TypeName(dstT)), pair, "")
	}
}

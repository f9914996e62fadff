package config

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"object-mapper/internal/diagnostic"
	"object-mapper/internal/mapping"
)

// ApplyFile loads a YAML mapping file and applies its rules.
func (s *Store) ApplyFile(path string, reg *Registry) error {
	mf, err := mapping.LoadFile(path)
	if err != nil {
		return wrapConfigError(err, fmt.Sprintf("load mapping file %s", path))
	}

	return s.Apply(mf, reg)
}

// ApplyYAML parses a YAML mapping document and applies its rules.
func (s *Store) ApplyYAML(data []byte, reg *Registry) error {
	mf, err := mapping.Parse(data)
	if err != nil {
		return wrapConfigError(err, "parse mapping document")
	}

	return s.Apply(mf, reg)
}

// Apply validates a mapping file against the registry and adds its rules to
// the store. The file is normalized in place. Rules are added in file order
// and a failing rule stops the application, leaving the rules before it in
// place.
func (s *Store) Apply(mf *mapping.MappingFile, reg *Registry) error {
	if reg == nil {
		reg = NewRegistry()
	}

	types, funcs := reg.Tables()

	result := mapping.Validate(mf, types, funcs, s.analyzer)
	if !result.IsValid() {
		messages := make([]string, 0, len(result.Errors))
		for _, d := range result.Errors {
			messages = append(messages, d.String())
		}

		return diagnostic.NewConfigurationError(
			fmt.Sprintf("mapping file is invalid: %s", messages[0]),
			map[string]any{"diagnostics": messages},
		)
	}

	mapping.NormalizeMappingFile(mf)

	a := applier{store: s, reg: reg}

	return a.apply(mf)
}

type applier struct {
	store *Store
	reg   *Registry
}

func (a applier) apply(mf *mapping.MappingFile) error {
	if mf.Naming != nil {
		err := a.store.SetNaming(Naming{
			Prefixes:  mf.Naming.Prefixes,
			Suffixes:  mf.Naming.Suffixes,
			Separator: mf.Naming.Separator,
		})
		if err != nil {
			return err
		}
	}

	if err := a.settings(mf.Settings); err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(mf.Identifiers)) {
		if err := a.store.Identify(a.typeOf(name), mf.Identifiers[name]); err != nil {
			return err
		}
	}

	for _, f := range mf.Formats {
		if err := a.store.FormatStrings(a.typeOf(f.Type), f.Format); err != nil {
			return err
		}
	}

	for _, e := range mf.Enums {
		pairs := make(map[string]string, len(e.Pairs))
		for _, p := range e.Pairs {
			pairs[p[0]] = p[1]
		}

		if err := a.store.PairEnums(a.typeOf(e.Source), a.typeOf(e.Target), pairs); err != nil {
			return err
		}
	}

	for _, c := range mf.Creators {
		if err := a.store.CreateInstancesOf(a.typeOf(c.Type), c.Path, a.funcOf(c.Func)); err != nil {
			return err
		}
	}

	for i := range mf.TypeMappings {
		if err := a.typeMapping(&mf.TypeMappings[i]); err != nil {
			return err
		}
	}

	return nil
}

func (a applier) settings(s mapping.SettingsDef) error {
	if s.IdentityIntegrity != nil && *s.IdentityIntegrity {
		if err := a.store.EnableIdentityIntegrity(); err != nil {
			return err
		}
	}

	if s.DisableObjectTracking != nil && *s.DisableObjectTracking {
		return a.store.DisableObjectTracking()
	}

	return nil
}

func (a applier) typeMapping(tm *mapping.TypeMapping) error {
	pair := TypePair{Source: a.typeOf(tm.Source), Target: a.typeOf(tm.Target)}

	ruleSets := make([]RuleSet, 0, len(tm.RuleSets))
	for _, name := range tm.RuleSets {
		rs, _ := ParseRuleSet(name)
		ruleSets = append(ruleSets, rs)
	}

	if len(tm.Ignore) > 0 {
		err := a.store.AddIgnore(IgnoreRule{Pair: pair, RuleSets: ruleSets, Paths: tm.Ignore})
		if err != nil {
			return err
		}
	}

	for _, fm := range tm.Fields {
		for _, ds := range a.dataSources(pair, ruleSets, fm) {
			if err := a.store.Add(ds); err != nil {
				return err
			}
		}
	}

	for _, d := range tm.Derived {
		if err := a.store.AddDerivedPair(pair, a.typeOf(d.Source), a.typeOf(d.Target)); err != nil {
			return err
		}
	}

	if tm.Constructor != nil {
		err := a.store.UseConstructor(pair.Target, a.funcOf(tm.Constructor.Func), tm.Constructor.Params...)
		if err != nil {
			return err
		}
	}

	if tm.OnError != "" {
		handler, _ := a.funcOf(tm.OnError).(func(error, any) any)
		if err := a.store.OnError(pair, handler); err != nil {
			return err
		}
	}

	return nil
}

// dataSources turns a field mapping into one data source per target.
func (a applier) dataSources(pair TypePair, ruleSets []RuleSet, fm mapping.FieldMapping) []DataSource {
	base := DataSource{
		Pair:       pair,
		RuleSets:   ruleSets,
		Source:     fm.Source,
		Sequential: fm.Sequential,
		Reversible: fm.Reversible,
		DependsOn:  fm.DependsOn,
	}

	if fm.Default != nil {
		base.Value, base.HasValue = *fm.Default, true
	}

	if fm.Transform != "" {
		base.Func = a.funcOf(fm.Transform)
	}

	if fm.When != "" {
		base.Condition = a.funcOf(fm.When)
	}

	if fm.Parameter != "" {
		base.Parameter = fm.Parameter
		return []DataSource{base}
	}

	out := make([]DataSource, 0, len(fm.Target))
	for _, target := range fm.Target {
		ds := base
		ds.Target = target
		out = append(out, ds)
	}

	return out
}

// typeOf resolves a type name the validator already checked.
func (a applier) typeOf(name string) reflect.Type {
	t, _ := a.reg.ResolveType(name)
	return t
}

// funcOf returns a function the validator already checked.
func (a applier) funcOf(name string) any {
	fn, ok := a.reg.Func(name)
	if !ok {
		return nil
	}

	return fn.Interface()
}

func wrapConfigError(err error, message string) error {
	wrapped := diagnostic.NewConfigurationError(message, nil)
	wrapped.Source = err

	return wrapped
}

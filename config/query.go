package config

import (
	"cmp"
	"reflect"
	"slices"
	"strings"

	"object-mapper/internal/analyze"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/mapping"
	"object-mapper/primitive"
)

// DataSourcesFor returns the data sources configured for a target member of a
// mapping from src to tgt under rs. Data sources naming the member come
// before filters matching it, sequential data sources come last; each group
// keeps registration order.
func (s *Store) DataSourcesFor(src, tgt reflect.Type, rs RuleSet, member TargetMember) []*DataSource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exact, filtered, sequential []*DataSource

	for _, ds := range s.sources {
		if ds.Parameter != "" || !ds.Pair.Matches(src, tgt) || !appliesTo(ds.RuleSets, rs) {
			continue
		}

		switch {
		case ds.Target != "" && ds.Target == member.Path:
			if ds.Sequential {
				sequential = append(sequential, ds)
			} else {
				exact = append(exact, ds)
			}
		case ds.Filter != nil && ds.Filter(member):
			if ds.Sequential {
				sequential = append(sequential, ds)
			} else {
				filtered = append(filtered, ds)
			}
		}
	}

	return slices.Concat(exact, filtered, sequential)
}

// ParameterSourcesFor returns the data sources bound to a constructor
// parameter, compared case-insensitively.
func (s *Store) ParameterSourcesFor(src, tgt reflect.Type, rs RuleSet, param string) []*DataSource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*DataSource

	for _, ds := range s.sources {
		if ds.Parameter != "" && strings.EqualFold(ds.Parameter, param) &&
			ds.Pair.Matches(src, tgt) && appliesTo(ds.RuleSets, rs) {
			out = append(out, ds)
		}
	}

	return out
}

// IsIgnored reports whether the target member is excluded from population.
// Ignoring a member ignores everything below it.
func (s *Store) IsIgnored(src, tgt reflect.Type, rs RuleSet, member TargetMember) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.ignores {
		if !rule.Pair.Matches(src, tgt) || !appliesTo(rule.RuleSets, rs) {
			continue
		}

		if rule.Filter != nil && rule.Filter(member) {
			return true
		}

		for _, p := range rule.Paths {
			if mapping.HasPathPrefix(member.Path, p) {
				return true
			}
		}
	}

	return false
}

// DerivedTypePairs returns the derived pairs configured for a mapping from
// src to tgt, most derived first: concrete source types before interfaces,
// interfaces with more methods before smaller ones, then registration order.
func (s *Store) DerivedTypePairs(src, tgt reflect.Type) []TypePair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []derivedPair

	for _, d := range s.derived {
		if d.base.Matches(src, tgt) {
			found = append(found, d)
		}
	}

	slices.SortStableFunc(found, func(a, b derivedPair) int {
		return cmp.Or(
			cmp.Compare(specificity(b.derived.Source), specificity(a.derived.Source)),
			cmp.Compare(a.order, b.order),
		)
	})

	out := make([]TypePair, len(found))
	for i, d := range found {
		out[i] = d.derived
	}

	return out
}

// specificity ranks how narrowly a type selects source values.
func specificity(t reflect.Type) int {
	t = analyze.Deref(t)
	if t.Kind() != reflect.Interface {
		return 1 << 16
	}

	return t.NumMethod()
}

// Naming returns the member naming conventions.
func (s *Store) Naming() Naming {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.naming
}

// IdentifierFor returns the identifier configured for elements of type t.
func (s *Store) IdentifierFor(t reflect.Type) (Identifier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.identifiers[analyze.Deref(t)]

	return id, ok
}

// ConstructorFor returns the constructor configured for type t.
func (s *Store) ConstructorFor(t reflect.Type) (Constructor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.constructors[analyze.Deref(t)]

	return c, ok
}

// InstanceCreatorFor returns the creator of type t applying at the target
// member path: the creator with the longest path the member lies at or below.
func (s *Store) InstanceCreatorFor(t reflect.Type, path string) (Creator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t = analyze.Deref(t)

	var (
		best  Creator
		found bool
	)

	for _, c := range s.creators {
		if c.Type != t || !mapping.HasPathPrefix(path, c.Path) {
			continue
		}

		if !found || len(c.Path) > len(best.Path) {
			best, found = c, true
		}
	}

	return best, found
}

// StringFormat returns the format configured for type t.
func (s *Store) StringFormat(t reflect.Type) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.formats[analyze.Deref(t)]

	return f, ok
}

// EnumPairing returns the target member name paired with a source member name.
func (s *Store) EnumPairing(from, to reflect.Type, name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs := s.enumPairs[enumKey{analyze.Deref(from), analyze.Deref(to)}]
	if paired, ok := pairs[name]; ok {
		return paired, true
	}

	for src, dst := range pairs {
		if strings.EqualFold(src, name) {
			return dst, true
		}
	}

	return "", false
}

// EnumMembers returns the registered members of an enum type.
func (s *Store) EnumMembers(t reflect.Type) []primitive.EnumMember {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.enumMembers[t]
}

// Caster returns the conversion function registered for the pair.
func (s *Store) Caster(from, to reflect.Type) (primitive.Caster, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.casters[casterKey{from, to}]

	return c, ok
}

// IdentityIntegrity reports whether repeated source references map to one target.
func (s *Store) IdentityIntegrity() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.identityIntegrity
}

// ObjectTrackingDisabled reports whether mapped source objects go unrecorded.
func (s *Store) ObjectTrackingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.trackingDisabled
}

// ErrorHandlerFor returns the error handler of a mapping from src to tgt,
// preferring a handler registered for the exact pair.
func (s *Store) ErrorHandlerFor(src, tgt reflect.Type) (ErrorHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fallback ErrorHandler

	for _, h := range s.handlers {
		if !h.pair.Matches(src, tgt) {
			continue
		}

		if h.pair.Source != nil && h.pair.Target != nil {
			return h.handler, true
		}

		if fallback == nil {
			fallback = h.handler
		}
	}

	return fallback, fallback != nil
}

// Fingerprint identifies the current configuration state.
func (s *Store) Fingerprint() Fingerprint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Fingerprint{ID: s.id, Version: s.version}
}

// Diagnostics returns the notes collected while rules were added, e.g.
// skipped reversals.
func (s *Store) Diagnostics() diagnostic.Diagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return diagnostic.Diagnostics{
		Errors:   slices.Clone(s.diagnostics.Errors),
		Warnings: slices.Clone(s.diagnostics.Warnings),
		Infos:    slices.Clone(s.diagnostics.Infos),
	}
}

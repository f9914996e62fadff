package match

import (
	"reflect"
	"slices"

	"object-mapper/internal/analyze"
)

// flattenDepth bounds how deep nested source members are searched when a
// target name matches a flattened source path, e.g. "AddressLine1".
const flattenDepth = 3

// Matcher finds source members for target members by name. It is safe for
// concurrent use.
type Matcher struct {
	analyzer *analyze.Analyzer
	naming   Naming
	conv     Converter
}

// NewMatcher creates a Matcher using the naming conventions.
func NewMatcher(analyzer *analyze.Analyzer, naming Naming, conv Converter) *Matcher {
	return &Matcher{analyzer: analyzer, naming: naming, conv: conv}
}

// Naming returns the conventions the matcher applies.
func (m *Matcher) Naming() Naming {
	return m.naming
}

// Find returns the chain of source members populating the target member, or
// nil. The prefix holds the names of enclosing target members that had no
// source counterpart of their own, so "Line1" under prefix ["Address"] finds
// a source member "AddressLine1".
//
// Lookup order: exact name, normalized name with prefixes and suffixes
// stripped, then flattened source paths ("Address.Line1" for "AddressLine1").
func (m *Matcher) Find(source reflect.Type, prefix []string, target *analyze.MemberInfo) []*analyze.MemberInfo {
	info := m.analyzer.Info(source)
	if info.Category != analyze.CategoryComplex {
		return nil
	}

	if len(prefix) == 0 {
		if exact := info.Member(target.Name); exact != nil && exact.Readable && m.compatible(exact, target) {
			return []*analyze.MemberInfo{exact}
		}
	}

	keys := m.targetKeys(prefix, target.Name)

	for _, member := range info.Readable() {
		if m.matchesAny(member.Name, keys) && m.compatible(member, target) {
			return []*analyze.MemberInfo{member}
		}
	}

	paths := m.analyzer.FieldPaths(source, flattenDepth)

	names := make([]string, 0, len(paths))
	for path, chain := range paths {
		if len(chain) > 1 {
			names = append(names, path)
		}
	}

	slices.Sort(names)

	for _, path := range names {
		chain := paths[path]

		parts := make([]string, len(chain))
		for i, c := range chain {
			parts[i] = StripAffixes(c.Name, m.naming)
		}

		if slices.Contains(keys, JoinPath(parts...)) && m.compatible(chain[len(chain)-1], target) {
			return chain
		}
	}

	return nil
}

// HasPrefixedMembers reports whether any readable source member name starts
// with the normalized prefix, i.e. an unflattening candidate exists.
func (m *Matcher) HasPrefixedMembers(source reflect.Type, prefix []string) bool {
	info := m.analyzer.Info(source)
	if info.Category != analyze.CategoryComplex || len(prefix) == 0 {
		return false
	}

	key := JoinPath(prefix...)

	for _, member := range info.Readable() {
		normalized := NormalizeIdent(member.Name)
		if len(normalized) > len(key) && normalized[:len(key)] == key {
			return true
		}
	}

	return false
}

// FindParameter returns the source member feeding a constructor parameter:
// by name first, then the only readable member of the parameter type.
func (m *Matcher) FindParameter(source reflect.Type, name string, typ reflect.Type) []*analyze.MemberInfo {
	param := &analyze.MemberInfo{Name: name, Kind: analyze.MemberConstructorParameter, Type: typ, Writable: true}
	if chain := m.Find(source, nil, param); chain != nil {
		return chain
	}

	info := m.analyzer.Info(source)

	var found *analyze.MemberInfo

	for _, member := range info.Readable() {
		if analyze.Deref(member.Type) != analyze.Deref(typ) {
			continue
		}

		if found != nil {
			return nil
		}

		found = member
	}

	if found == nil {
		return nil
	}

	return []*analyze.MemberInfo{found}
}

// Suggestions returns the names of the readable source members closest to the
// target member, for reporting unmapped members.
func (m *Matcher) Suggestions(source reflect.Type, target *analyze.MemberInfo, limit int) []string {
	info := m.analyzer.Info(source)
	if info.Category != analyze.CategoryComplex {
		return nil
	}

	return RankCandidates(target, info.Members, m.naming, m.conv).
		AboveThreshold(SuggestionThreshold).
		Top(limit).
		Names()
}

func (m *Matcher) targetKeys(prefix []string, name string) []string {
	head := JoinPath(prefix...)

	keys := NameKeys(name, m.naming)
	for i, k := range keys {
		keys[i] = head + k
	}

	return keys
}

func (m *Matcher) matchesAny(name string, keys []string) bool {
	for _, k := range NameKeys(name, m.naming) {
		if slices.Contains(keys, k) {
			return true
		}
	}

	return false
}

func (m *Matcher) compatible(source, target *analyze.MemberInfo) bool {
	return Compatible(source.Type, target.Type, m.conv)
}

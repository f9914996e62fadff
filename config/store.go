package config

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	glog "github.com/goliatone/go-logger/glog"

	"object-mapper/internal/analyze"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/mapping"
	"object-mapper/internal/match"
	"object-mapper/primitive"
)

// Naming carries the member naming conventions: prefixes and suffixes
// stripped before names are compared, and the alternate separator accepted in
// flattened dictionary keys.
type Naming = match.Naming

// ErrorHandler decides the result of a mapping that failed: it receives the
// failure and the source value and returns the value to use instead, nil for
// the target zero value.
type ErrorHandler func(err error, source any) any

// Fingerprint identifies a configuration state. It changes with every rule
// added to the store.
type Fingerprint struct {
	ID      uuid.UUID
	Version uint64
}

// String renders the fingerprint as "<id>@<version>".
func (f Fingerprint) String() string {
	return fmt.Sprintf("%s@%d", f.ID, f.Version)
}

// Identifier yields the identity of elements of a type, used to match source
// and existing target elements of a collection.
type Identifier struct {
	Type   reflect.Type
	Member string
	Func   reflect.Value
}

// Constructor is a factory building a target from named parameters.
type Constructor struct {
	Type   reflect.Type
	Func   reflect.Value
	Params []string
}

// Creator builds target instances of a type in place of the default
// construction, for every occurrence of the type below Path.
type Creator struct {
	Type reflect.Type
	Path string
	Func reflect.Value
}

// IgnoreRule excludes target members from population.
type IgnoreRule struct {
	Pair       TypePair
	RuleSets   []RuleSet
	Paths      []string
	Filter     func(TargetMember) bool
	FilterName string
}

type enumKey struct{ from, to reflect.Type }

type casterKey struct{ from, to reflect.Type }

type derivedPair struct {
	base    TypePair
	derived TypePair
	order   int
}

type errorHandler struct {
	pair    TypePair
	handler ErrorHandler
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger the store reports skipped reversals to.
func WithLogger(logger glog.Logger) Option {
	return func(s *Store) {
		s.logger = glog.Ensure(logger)
	}
}

// Store holds mapping rules. It is safe for concurrent use, queries never
// change its state.
type Store struct {
	mu       sync.RWMutex
	id       uuid.UUID
	version  uint64
	logger   glog.Logger
	analyzer *analyze.Analyzer

	sources      []*DataSource
	ignores      []*IgnoreRule
	naming       Naming
	identifiers  map[reflect.Type]Identifier
	constructors map[reflect.Type]Constructor
	creators     []Creator
	enumPairs    map[enumKey]map[string]string
	enumMembers  map[reflect.Type][]primitive.EnumMember
	formats      map[reflect.Type]string
	casters      map[casterKey]primitive.Caster
	derived      []derivedPair
	handlers     []errorHandler

	identityIntegrity bool
	trackingDisabled  bool

	diagnostics diagnostic.Diagnostics
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		id:           uuid.New(),
		logger:       glog.Nop(),
		analyzer:     analyze.NewAnalyzer(),
		identifiers:  map[reflect.Type]Identifier{},
		constructors: map[reflect.Type]Constructor{},
		enumPairs:    map[enumKey]map[string]string{},
		enumMembers:  map[reflect.Type][]primitive.EnumMember{},
		formats:      map[reflect.Type]string{},
		casters:      map[casterKey]primitive.Caster{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Add registers data sources. Every data source is validated against the
// rules already present; the first conflict is returned as a configuration
// error and the remaining data sources are not added.
func (s *Store) Add(sources ...DataSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range sources {
		if err := s.add(sources[i].clone()); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) add(ds *DataSource) error {
	if err := ds.prepare(); err != nil {
		return configError(ds.Pair, ds.Target, err.Error())
	}

	if err := s.checkPaths(ds); err != nil {
		return err
	}

	if ds.Target != "" {
		if rule := s.ignoring(ds.Pair, ds.RuleSets, s.targetMember(ds.Pair, ds.Target)); rule != nil {
			return configError(ds.Pair, ds.Target,
				fmt.Sprintf("data source %s configured for ignored member %q", ds, ds.Target))
		}
	}

	if ds.IsExclusive() {
		for _, other := range s.sources {
			if conflicts(ds, other) {
				return configError(ds.Pair, ds.TargetName(),
					fmt.Sprintf("conflicting data sources for %s member %q: %s and %s",
						ds.Pair, ds.TargetName(), other, ds))
			}
		}
	}

	ds.order = len(s.sources)
	s.sources = append(s.sources, ds)
	s.touch()

	if ds.Reversible {
		s.reverse(ds)
	}

	return nil
}

// checkPaths walks the configured member paths over concrete pair types.
func (s *Store) checkPaths(ds *DataSource) error {
	if ds.Target != "" && concrete(ds.Pair.Target) {
		if err := mapping.CheckPath(s.analyzer, ds.Pair.Target, ds.Target, true); err != nil {
			return configError(ds.Pair, ds.Target, fmt.Sprintf("invalid target member: %v", err))
		}
	}

	if ds.Source != "" && concrete(ds.Pair.Source) {
		if err := mapping.CheckPath(s.analyzer, ds.Pair.Source, ds.Source, false); err != nil {
			return configError(ds.Pair, ds.TargetName(), fmt.Sprintf("invalid source member: %v", err))
		}
	}

	return nil
}

// conflicts reports whether two exclusive data sources compete for the same
// target member in the same pair and rule set.
func conflicts(a, b *DataSource) bool {
	if !b.IsExclusive() || !a.Pair.Equal(b.Pair) || !overlaps(a.RuleSets, b.RuleSets) {
		return false
	}

	switch {
	case a.Target != "":
		return a.Target == b.Target
	case a.Parameter != "":
		return strings.EqualFold(a.Parameter, b.Parameter)
	default:
		return false
	}
}

// AddIgnore excludes target members. Ignoring a member that already has a
// data source is a configuration error.
func (s *Store) AddIgnore(rule IgnoreRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rule.Pair.Target == nil {
		return configError(rule.Pair, "", "ignore rule has no target type")
	}

	if len(rule.Paths) == 0 && rule.Filter == nil {
		return configError(rule.Pair, "", "ignore rule names no member and no filter")
	}

	r := rule
	r.Paths = make([]string, 0, len(rule.Paths))

	for _, p := range rule.Paths {
		if concrete(rule.Pair.Target) {
			if err := mapping.CheckPath(s.analyzer, rule.Pair.Target, p, true); err != nil {
				return configError(rule.Pair, p, fmt.Sprintf("invalid ignored member: %v", err))
			}
		} else if _, err := mapping.ParsePath(p); err != nil {
			return configError(rule.Pair, p, fmt.Sprintf("invalid ignored member: %v", err))
		}

		canonical := mapping.CanonicalPath(p)
		for _, ds := range s.sources {
			if ds.Target != "" && ds.Pair.Equal(rule.Pair) && overlaps(ds.RuleSets, rule.RuleSets) &&
				mapping.HasPathPrefix(ds.Target, canonical) {
				return configError(rule.Pair, p,
					fmt.Sprintf("member %q cannot be ignored, data source %s is configured for it", p, ds))
			}
		}

		r.Paths = append(r.Paths, canonical)
	}

	if r.Filter != nil {
		for _, ds := range s.sources {
			if ds.Target == "" || !ds.Pair.Equal(rule.Pair) || !overlaps(ds.RuleSets, rule.RuleSets) {
				continue
			}

			if r.Filter(s.targetMember(ds.Pair, ds.Target)) {
				return configError(rule.Pair, ds.Target,
					fmt.Sprintf("filter %q ignores member %q, data source %s is configured for it", r.FilterName, ds.Target, ds))
			}
		}
	}

	s.ignores = append(s.ignores, &r)
	s.touch()

	return nil
}

// Ignore excludes the target members from population in every rule set.
func (s *Store) Ignore(pair TypePair, paths ...string) error {
	return s.AddIgnore(IgnoreRule{Pair: pair, Paths: paths})
}

// IgnoreWhere excludes the target members matching the filter.
func (s *Store) IgnoreWhere(pair TypePair, name string, filter func(TargetMember) bool) error {
	return s.AddIgnore(IgnoreRule{Pair: pair, Filter: filter, FilterName: name})
}

// ignoring returns the rule ignoring the member, or nil.
func (s *Store) ignoring(pair TypePair, ruleSets []RuleSet, member TargetMember) *IgnoreRule {
	for _, rule := range s.ignores {
		if !rule.Pair.Equal(pair) || !overlaps(rule.RuleSets, ruleSets) {
			continue
		}

		if rule.Filter != nil && rule.Filter(member) {
			return rule
		}

		for _, p := range rule.Paths {
			if mapping.HasPathPrefix(member.Path, p) {
				return rule
			}
		}
	}

	return nil
}

// targetMember describes the member at path below the pair's target. Type
// and Declaring stay nil unless the whole path resolves.
func (s *Store) targetMember(pair TypePair, path string) TargetMember {
	member := TargetMember{Path: mapping.CanonicalPath(path)}

	fp, err := mapping.ParsePath(path)
	if err != nil || len(fp.Segments) == 0 {
		return member
	}

	member.Name = fp.Segments[len(fp.Segments)-1].Name
	if !concrete(pair.Target) {
		return member
	}

	var (
		current = pair.Target
		last    *analyze.MemberInfo
	)

	for _, seg := range fp.Segments {
		info := s.analyzer.Info(current)
		if info.Category != analyze.CategoryComplex {
			return member
		}

		if last = info.Member(seg.Name); last == nil {
			return member
		}

		current = last.Type
		if seg.IsSlice {
			current = s.analyzer.Info(current).Elem
		}
	}

	member.Type, member.Declaring = last.Type, last.Declaring

	return member
}

// SetNaming sets the member naming conventions.
func (s *Store) SetNaming(n Naming) error {
	if strings.ContainsAny(n.Separator, "[]") {
		return configError(TypePair{}, "", fmt.Sprintf("separator %q must not contain brackets", n.Separator))
	}

	for _, affix := range append(append([]string{}, n.Prefixes...), n.Suffixes...) {
		if affix == "" {
			return configError(TypePair{}, "", "naming prefixes and suffixes must not be empty")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.naming = n
	s.touch()

	return nil
}

// Identify configures the member holding the identity of elements of type t.
func (s *Store) Identify(t reflect.Type, member string) error {
	t = analyze.Deref(t)

	m := s.analyzer.Info(t).Member(member)
	if m == nil || !m.Readable {
		return configError(TypePair{Source: t}, member,
			fmt.Sprintf("identifier member %q is not a readable member of %s", member, analyze.TypeName(t)))
	}

	return s.setIdentifier(Identifier{Type: t, Member: member})
}

// IdentifyFunc configures a func(T) K yielding the identity of elements of type t.
func (s *Store) IdentifyFunc(t reflect.Type, fn any) error {
	t = analyze.Deref(t)

	v, err := checkedFunc(mapping.FuncTransform, fn)
	if err != nil {
		return configError(TypePair{Source: t}, "", fmt.Sprintf("identifier of %s: %v", analyze.TypeName(t), err))
	}

	if in := v.Type().In(0); analyze.Deref(in) != t && !(in.Kind() == reflect.Interface && t.Implements(in)) {
		return configError(TypePair{Source: t}, "",
			fmt.Sprintf("identifier of %s takes %s", analyze.TypeName(t), analyze.TypeName(in)))
	}

	return s.setIdentifier(Identifier{Type: t, Func: v})
}

func (s *Store) setIdentifier(id Identifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identifiers[id.Type]; ok {
		return configError(TypePair{Source: id.Type}, id.Member,
			fmt.Sprintf("identifier of %s is already configured", analyze.TypeName(id.Type)))
	}

	s.identifiers[id.Type] = id
	s.touch()

	return nil
}

// UseConstructor builds targets of type t with fn, binding its parameters by
// the given names. fn returns t, *t, or either with an error.
func (s *Store) UseConstructor(t reflect.Type, fn any, params ...string) error {
	t = analyze.Deref(t)
	pair := TypePair{Target: t}

	v, err := checkedFunc(mapping.FuncConstructor, fn)
	if err != nil {
		return configError(pair, "", fmt.Sprintf("constructor of %s: %v", analyze.TypeName(t), err))
	}

	if v.Type().NumIn() != len(params) {
		return configError(pair, "", fmt.Sprintf("constructor of %s takes %d parameters, %d names given",
			analyze.TypeName(t), v.Type().NumIn(), len(params)))
	}

	if !returns(v.Type(), t) {
		return configError(pair, "", fmt.Sprintf("constructor of %s returns %s",
			analyze.TypeName(t), analyze.TypeName(v.Type().Out(0))))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.constructors[t]; ok {
		return configError(pair, "", fmt.Sprintf("constructor of %s is already configured", analyze.TypeName(t)))
	}

	s.constructors[t] = Constructor{Type: t, Func: v, Params: append([]string(nil), params...)}
	s.touch()

	return nil
}

// CreateInstancesOf replaces default construction of type t with fn for every
// occurrence of the type at or below path; an empty path applies everywhere.
// fn takes no argument or the source value and returns t or *t.
func (s *Store) CreateInstancesOf(t reflect.Type, path string, fn any) error {
	t = analyze.Deref(t)
	pair := TypePair{Target: t}

	v, err := checkedFunc(mapping.FuncCreator, fn)
	if err != nil {
		return configError(pair, path, fmt.Sprintf("creator of %s: %v", analyze.TypeName(t), err))
	}

	if !returns(v.Type(), t) {
		return configError(pair, path, fmt.Sprintf("creator of %s returns %s",
			analyze.TypeName(t), analyze.TypeName(v.Type().Out(0))))
	}

	if path != "" {
		if _, err := mapping.ParsePath(path); err != nil {
			return configError(pair, path, fmt.Sprintf("creator of %s: %v", analyze.TypeName(t), err))
		}

		path = mapping.CanonicalPath(path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.creators {
		if c.Type == t && c.Path == path {
			return configError(pair, path, fmt.Sprintf("creator of %s is already configured", analyze.TypeName(t)))
		}
	}

	s.creators = append(s.creators, Creator{Type: t, Path: path, Func: v})
	s.touch()

	return nil
}

// PairEnums pairs members of two enum types by name, source name to target name.
func (s *Store) PairEnums(from, to reflect.Type, pairs map[string]string) error {
	pair := TypePair{Source: from, Target: to}
	if analyze.Classify(from) != analyze.CategorySimple || analyze.Classify(to) != analyze.CategorySimple {
		return configError(pair, "", "enum pairings need simple types on both sides")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := enumKey{analyze.Deref(from), analyze.Deref(to)}

	for _, src := range slices.Sorted(maps.Keys(pairs)) {
		if existing, ok := s.enumPairs[key][src]; ok && existing != pairs[src] {
			return configError(pair, src, fmt.Sprintf("enum member %q is already paired with %q", src, existing))
		}
	}

	if s.enumPairs[key] == nil {
		s.enumPairs[key] = map[string]string{}
	}

	maps.Copy(s.enumPairs[key], pairs)

	s.touch()

	return nil
}

// RegisterEnum lists the members of an enum type, for types without a String
// method or to restrict the members considered.
func (s *Store) RegisterEnum(t reflect.Type, members ...primitive.EnumMember) error {
	if !primitive.IsEnum(t) {
		return configError(TypePair{Target: t}, "", fmt.Sprintf("%s is not an enum type", analyze.TypeName(t)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enumMembers[t] = append(s.enumMembers[t], members...)
	s.touch()

	return nil
}

// FormatStrings sets the format used when values of type t are converted to
// strings, a fmt verb for numbers or a layout for times.
func (s *Store) FormatStrings(t reflect.Type, format string) error {
	pair := TypePair{Source: t, Target: reflect.TypeFor[string]()}
	if !primitive.Formattable(t) {
		return configError(pair, "", fmt.Sprintf("type %s cannot be formatted", analyze.TypeName(t)))
	}

	if format == "" {
		return configError(pair, "", fmt.Sprintf("format of %s is empty", analyze.TypeName(t)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.formats[analyze.Deref(t)] = format
	s.touch()

	return nil
}

// AddCaster registers a conversion function between two simple types, see
// primitive.ParseCaster for the accepted signatures.
func (s *Store) AddCaster(fn any) error {
	caster, err := primitive.ParseCaster(fn)
	if err != nil {
		return configError(TypePair{}, "", fmt.Sprintf("caster: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.casters[casterKey{caster.Src, caster.Dst}] = caster
	s.touch()

	return nil
}

// AddDerivedPair maps sources of the derived source type to the derived
// target type whenever pair is mapped, e.g. a concrete implementation of an
// interface typed member.
func (s *Store) AddDerivedPair(pair TypePair, source, target reflect.Type) error {
	if !relates(source, pair.Source) {
		return configError(pair, "", fmt.Sprintf("%s is not derived from %s", analyze.TypeName(source), sideName(pair.Source)))
	}

	if !relates(target, pair.Target) {
		return configError(pair, "", fmt.Sprintf("%s is not derived from %s", analyze.TypeName(target), sideName(pair.Target)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	derived := TypePair{Source: source, Target: target}
	for _, d := range s.derived {
		if d.base.Equal(pair) && d.derived.Equal(derived) {
			return configError(pair, "", fmt.Sprintf("derived pair %s is already configured", derived))
		}
	}

	s.derived = append(s.derived, derivedPair{base: pair, derived: derived, order: len(s.derived)})
	s.touch()

	return nil
}

// EnableIdentityIntegrity maps every reference to the same source object to
// the same target object within one mapping call.
func (s *Store) EnableIdentityIntegrity() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.identityIntegrity:
		return configError(TypePair{}, "", "identity integrity is already enabled")
	case s.trackingDisabled:
		return configError(TypePair{}, "", "identity integrity requires object tracking, which is disabled")
	}

	s.identityIntegrity = true
	s.touch()

	return nil
}

// DisableObjectTracking stops the mapper from recording mapped source objects.
// Cyclic source graphs then fail with a mapping error.
func (s *Store) DisableObjectTracking() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.trackingDisabled:
		return configError(TypePair{}, "", "object tracking is already disabled")
	case s.identityIntegrity:
		return configError(TypePair{}, "", "object tracking cannot be disabled, identity integrity is enabled")
	}

	s.trackingDisabled = true
	s.touch()

	return nil
}

// OnError registers the handler deciding the result of failed mappings of the
// pair. A pair with nil sides applies to every mapping without its own handler.
func (s *Store) OnError(pair TypePair, handler ErrorHandler) error {
	if handler == nil {
		return configError(pair, "", "error handler is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.handlers {
		if h.pair.Equal(pair) {
			return configError(pair, "", fmt.Sprintf("error handler for %s is already configured", pair))
		}
	}

	s.handlers = append(s.handlers, errorHandler{pair: pair, handler: handler})
	s.touch()

	return nil
}

// touch bumps the version. Callers hold the write lock.
func (s *Store) touch() {
	s.version++
}

func concrete(t reflect.Type) bool {
	return t != nil && analyze.Deref(t).Kind() != reflect.Interface
}

// relates reports whether derived can stand in for base.
func relates(derived, base reflect.Type) bool {
	if derived == nil {
		return false
	}

	if base == nil || analyze.Deref(derived) == analyze.Deref(base) {
		return true
	}

	base = analyze.Deref(base)
	if base.Kind() != reflect.Interface {
		return false
	}

	return derived.Implements(base) || reflect.PointerTo(analyze.Deref(derived)).Implements(base)
}

// returns reports whether a factory's first result produces t or *t.
func returns(fn, t reflect.Type) bool {
	if fn.NumOut() == 0 {
		return false
	}

	out := fn.Out(0)

	return analyze.Deref(out) == analyze.Deref(t) || out.AssignableTo(t)
}

func configError(pair TypePair, target, message string) error {
	meta := map[string]any{}
	if pair.Source != nil || pair.Target != nil {
		meta[diagnostic.MetaPair] = pair.String()
	}

	if target != "" {
		meta[diagnostic.MetaTarget] = target
	}

	return diagnostic.NewConfigurationError(message, meta)
}

func funcName(fn reflect.Value) string {
	_, name := primitive.FuncName(fn)
	return name
}

package plan

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"object-mapper/config"
	"object-mapper/internal/analyze"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/mapping"
	"object-mapper/internal/match"
	"object-mapper/node"
)

// scope is an object being planned. Configuration is looked up at every
// enclosing scope with the member path relative to it.
type scope struct {
	src      reflect.Type
	tgt      reflect.Type
	base     string
	elements int
	dict     bool
	prefix   []string
}

func (s *scope) isElement() bool {
	return strings.HasSuffix(s.base, "[]")
}

type planner struct {
	engine  *Engine
	cfg     Configuration
	rs      config.RuleSet
	spec    RuleSetSpec
	matcher *match.Matcher
	scopes  []*scope
}

func newPlanner(e *Engine, rs config.RuleSet) *planner {
	return &planner{
		engine:  e,
		cfg:     e.cfg,
		rs:      rs,
		spec:    SpecOf(rs),
		matcher: match.NewMatcher(e.analyzer, e.cfg.Naming(), e.conv),
	}
}

// value plans the population of tgt from src, nil when none is possible.
func (p *planner) value(src, tgt reflect.Type, path string) (node.Node, error) {
	sb, tb := analyze.Deref(src), analyze.Deref(tgt)

	switch node.Dispatch(sb, tb) {
	case node.DispatcherSimple:
		if !p.engine.conv.CanConvert(sb, tb) {
			return nil, nil
		}

		return &node.Leaf{Source: sb, Target: tb}, nil

	case node.DispatcherRuntime:
		return &node.Runtime{Source: sb, Target: tb, Path: path, Element: strings.HasSuffix(path, "[]")}, nil

	case node.DispatcherComplex, node.DispatcherUnflatten:
		return p.object(sb, tb, path, nil)

	case node.DispatcherEnumerable:
		return p.collection(sb, tb, path)

	case node.DispatcherDictionary:
		return p.dictionary(sb, tb, path)

	case node.DispatcherFlatten:
		return &node.Flatten{Source: sb, Target: tb, Path: path}, nil
	}

	return nil, nil
}

func (p *planner) object(src, tgt reflect.Type, path string, prefix []string) (node.Node, error) {
	if len(prefix) == 0 {
		for _, s := range p.scopes {
			if s.src == src && s.tgt == tgt && len(s.prefix) == 0 {
				return &node.Recurse{Source: src, Target: tgt, Path: s.base}, nil
			}
		}
	}

	if len(p.scopes) >= p.engine.maxDepth {
		return nil, p.fail(p.current(), path, fmt.Sprintf("mapping plan exceeds the maximum depth of %d at %q", p.engine.maxDepth, path))
	}

	s := &scope{
		src:      src,
		tgt:      tgt,
		base:     path,
		elements: strings.Count(path, "[]"),
		dict:     analyze.Classify(src) == analyze.CategoryDictionary,
		prefix:   prefix,
	}

	p.scopes = append(p.scopes, s)
	defer func() { p.scopes = p.scopes[:len(p.scopes)-1] }()

	obj := &node.Object{Source: src, Target: tgt, Path: path, FromDictionary: s.dict, Prefix: prefix}

	covered, err := p.construction(obj, s)
	if err != nil {
		return nil, err
	}

	for _, m := range p.engine.analyzer.Info(tgt).Members {
		if !m.Writable {
			continue
		}

		member, err := p.member(obj, s, m, covered)
		if err != nil {
			return nil, err
		}

		if member != nil {
			obj.Members = append(obj.Members, member)
		}
	}

	if err := p.order(obj, s); err != nil {
		return nil, err
	}

	return obj, nil
}

func (p *planner) member(obj *node.Object, s *scope, m *analyze.MemberInfo, covered map[string]bool) (*node.Member, error) {
	path := joinPath(s.base, m.Name)

	if p.ignored(m, path) {
		if ds := p.targeting(m, path); ds != nil {
			return nil, p.fail(s, path, fmt.Sprintf("data source %s configured for ignored member %q", ds, path))
		}

		obj.Ignored = append(obj.Ignored, path)

		return nil, nil
	}

	sources, sequential, deps, exclusive, err := p.configured(m, path)
	if err != nil {
		return nil, err
	}

	constructed := covered[strings.ToLower(m.Name)]

	if !exclusive && !constructed {
		auto, err := p.automatic(s, m, path)
		if err != nil {
			return nil, err
		}

		if auto != nil {
			sources = append(sources, auto)
		}
	}

	if len(sources) == 0 && len(sequential) == 0 {
		if constructed {
			return nil, nil
		}

		obj.Unmapped = append(obj.Unmapped, path)

		if p.spec.Fallback != node.FallbackZero {
			return nil, nil
		}
	}

	return &node.Member{
		Info:       m,
		Path:       path,
		Sources:    sources,
		Sequential: sequential,
		Fallback:   p.spec.Fallback,
		DependsOn:  deps,
	}, nil
}

func (p *planner) targetMember(m *analyze.MemberInfo, path string, s *scope) config.TargetMember {
	return config.TargetMember{
		Path:      relativePath(path, s.base),
		Name:      m.Name,
		Type:      m.Type,
		Declaring: m.Declaring,
	}
}

func (p *planner) ignored(m *analyze.MemberInfo, path string) bool {
	for _, s := range p.scopes {
		if p.cfg.IsIgnored(s.src, s.tgt, p.rs, p.targetMember(m, path, s)) {
			return true
		}
	}

	return false
}

// targeting returns a data source naming the member as its target in any
// scope. Filter sources give way to ignore rules.
func (p *planner) targeting(m *analyze.MemberInfo, path string) *config.DataSource {
	for _, s := range p.scopes {
		for _, ds := range p.cfg.DataSourcesFor(s.src, s.tgt, p.rs, p.targetMember(m, path, s)) {
			if ds.Target != "" {
				return ds
			}
		}
	}

	return nil
}

// configured collects the configured sources of a member. Primary sources
// come from the outermost scope configuring any, conditional ones first;
// sequential sources are collected from every scope.
func (p *planner) configured(m *analyze.MemberInfo, path string) (
	sources, sequential []*node.Source, deps []string, exclusive bool, err error,
) {
	for i, s := range p.scopes {
		var guarded, plain []*node.Source

		for _, ds := range p.cfg.DataSourcesFor(s.src, s.tgt, p.rs, p.targetMember(m, path, s)) {
			if !ds.Sequential && len(sources) > 0 {
				continue
			}

			src, err := p.dataSource(ds, i, m.Type, path)
			if err != nil {
				return nil, nil, nil, false, err
			}

			for _, dep := range ds.DependsOn {
				deps = append(deps, joinPath(s.base, dep))
			}

			switch {
			case ds.Sequential:
				sequential = append(sequential, src)
			case ds.IsConditional():
				guarded = append(guarded, src)
			default:
				plain = append(plain, src)
				exclusive = true
			}
		}

		// exact data sources come before filters, conditional ones first in each group
		slices.SortStableFunc(guarded, byOrigin)
		slices.SortStableFunc(plain, byOrigin)

		for len(guarded) > 0 || len(plain) > 0 {
			origin := node.OriginFilter
			if (len(guarded) > 0 && guarded[0].Origin == node.OriginConfigured) ||
				(len(plain) > 0 && plain[0].Origin == node.OriginConfigured) {
				origin = node.OriginConfigured
			}

			for len(guarded) > 0 && guarded[0].Origin == origin {
				sources, guarded = append(sources, guarded[0]), guarded[1:]
			}

			for len(plain) > 0 && plain[0].Origin == origin {
				sources, plain = append(sources, plain[0]), plain[1:]
			}
		}
	}

	return sources, sequential, deps, exclusive, nil
}

func byOrigin(a, b *node.Source) int {
	return int(a.Origin) - int(b.Origin)
}

// dataSource plans a configured data source bound at the scope index.
func (p *planner) dataSource(ds *config.DataSource, at int, tgt reflect.Type, path string) (*node.Source, error) {
	s := p.scopes[at]

	src := &node.Source{
		Origin:     node.OriginConfigured,
		Label:      ds.SourceName(),
		Up:         len(p.scopes) - 1 - at,
		Condition:  ds.ConditionValue(),
		DataSource: ds,
	}

	if ds.Filter != nil {
		src.Origin = node.OriginFilter
	}

	var typ reflect.Type

	switch {
	case ds.HasValue:
		src.HasConstant = true
		src.Constant = ds.Constant()

		if src.Constant.IsValid() {
			typ = src.Constant.Type()
		}

	case ds.Source != "":
		up, chain, keys, t, err := p.sourcePath(at, ds.Source)
		if err != nil {
			return nil, p.fail(s, path, fmt.Sprintf("data source %s: %v", ds, err))
		}

		src.Up, src.Chain, src.KeyPath, typ = up, chain, keys, t

	default:
		typ = s.src
	}

	if cond := src.Condition; cond.IsValid() && !p.accepts(cond.Type().In(0), p.scopes[len(p.scopes)-1-src.Up].src) {
		return nil, p.fail(s, path, fmt.Sprintf("data source %s: condition takes %s, not %s",
			ds, cond.Type().In(0), analyze.TypeName(p.scopes[len(p.scopes)-1-src.Up].src)))
	}

	if fn := ds.FuncValue(); fn.IsValid() {
		if typ != nil && !p.accepts(fn.Type().In(0), typ) {
			return nil, p.fail(s, path, fmt.Sprintf("data source %s: func takes %s, not %s", ds, fn.Type().In(0), analyze.TypeName(typ)))
		}

		src.Func = fn
		typ = fn.Type().Out(0)
	}

	src.Type = typ
	if typ == nil {
		return src, nil
	}

	if src.Func.IsValid() || len(src.KeyPath) == 0 {
		value, err := p.value(typ, tgt, path)
		if err != nil {
			return nil, err
		}

		if value == nil {
			return nil, p.fail(s, path, fmt.Sprintf("data source %s cannot populate %q: no conversion from %s to %s",
				ds, path, analyze.TypeName(typ), analyze.TypeName(tgt)))
		}

		src.Value = value

		return src, nil
	}

	if err := p.keyed(src, p.scopes[len(p.scopes)-1-src.Up].src, tgt, path); err != nil {
		return nil, err
	}

	if src.Value == nil && src.Nested == nil {
		return nil, p.fail(s, path, fmt.Sprintf("data source %s cannot populate %q from dictionary entries of %s",
			ds, path, analyze.TypeName(typ)))
	}

	return src, nil
}

// keyed plans a source reading dictionary keys: the entry itself, and for
// complex and enumerable targets the entries nested below it.
func (p *planner) keyed(src *node.Source, dict, tgt reflect.Type, path string) error {
	value, err := p.value(dict.Elem(), tgt, path)
	if err != nil {
		return err
	}

	src.Value = value

	tb := analyze.Deref(tgt)
	if cat := analyze.Classify(tb); cat == analyze.CategoryComplex || (cat == analyze.CategoryEnumerable && tb.Kind() != reflect.Map) {
		nested, err := p.value(dict, tb, path)
		if err != nil {
			return err
		}

		src.Nested = nested
	}

	return nil
}

// sourcePath resolves a source member path bound at the scope index. Paths
// addressing every element, e.g. "Items[].Name", read the remainder after the
// last element segment from the element scope at the same element depth.
func (p *planner) sourcePath(at int, path string) (up int, chain []*analyze.MemberInfo, keys []string, typ reflect.Type, err error) {
	fp, err := mapping.ParsePath(path)
	if err != nil {
		return 0, nil, nil, nil, err
	}

	segments := fp.Segments

	last, count := -1, 0
	for i, seg := range segments {
		if seg.IsSlice && seg.Index == mapping.AnyIndex {
			last, count = i, count+1
		}
	}

	if count > 0 {
		bound := -1
		for i := len(p.scopes) - 1; i >= 0; i-- {
			if s := p.scopes[i]; s.isElement() && s.elements == count {
				bound = i
				break
			}
		}

		if bound < 0 {
			return 0, nil, nil, nil, fmt.Errorf("source path %q addresses elements outside of a collection mapping", path)
		}

		at, segments = bound, segments[last+1:]
	}

	s := p.scopes[at]
	up = len(p.scopes) - 1 - at

	if s.dict {
		if len(segments) == 0 {
			return 0, nil, nil, nil, fmt.Errorf("source path %q does not name a dictionary key", path)
		}

		for _, seg := range segments {
			keys = append(keys, seg.Name)
			if seg.IsSlice && seg.Index >= 0 {
				keys = append(keys, mapping.IndexKey(seg.Index))
			}
		}

		return up, nil, keys, s.src.Elem(), nil
	}

	typ = s.src

	for _, seg := range segments {
		base := analyze.Deref(typ)

		var member *analyze.MemberInfo

		switch analyze.Classify(base) {
		case analyze.CategoryDictionary:
			member = p.engine.analyzer.DictionaryEntry(base, seg.Name, nil)
		case analyze.CategoryComplex:
			info := p.engine.analyzer.Info(base)
			if member = info.Member(seg.Name); member == nil {
				member = info.MemberFold(seg.Name)
			}
		}

		if member == nil || !member.Readable {
			return 0, nil, nil, nil, fmt.Errorf("source member %q not found on %s", seg.Name, analyze.TypeName(base))
		}

		chain = append(chain, member)
		typ = member.Type

		if seg.IsSlice {
			elem := analyze.Deref(typ)
			if elem.Kind() != reflect.Slice && elem.Kind() != reflect.Array {
				return 0, nil, nil, nil, fmt.Errorf("source member %q of %s is not a slice or an array", seg.Name, analyze.TypeName(base))
			}

			chain = append(chain, &analyze.MemberInfo{
				Name:      mapping.IndexKey(seg.Index),
				Kind:      analyze.MemberElement,
				Type:      elem.Elem(),
				Declaring: elem,
				Param:     seg.Index,
				Readable:  true,
			})
			typ = elem.Elem()
		}
	}

	return up, chain, nil, typ, nil
}

// automatic finds the source of a member without configured sources: the
// struct tag, the dictionary key, the source member matched by name, or the
// members of the source object unflattened under the member name.
func (p *planner) automatic(s *scope, m *analyze.MemberInfo, path string) (*node.Source, error) {
	if tag := m.Tag.Get(analyze.TagName); tag != "" && tag != "-" {
		up, chain, keys, typ, err := p.sourcePath(len(p.scopes)-1, tag)
		if err != nil {
			return nil, p.fail(s, path, fmt.Sprintf("%s tag of %q: %v", analyze.TagName, path, err))
		}

		src := &node.Source{Origin: node.OriginTag, Label: tag, Up: up, Chain: chain, KeyPath: keys, Type: typ}
		if len(keys) > 0 {
			err = p.keyed(src, s.src, m.Type, path)
		} else {
			src.Value, err = p.value(typ, m.Type, path)
		}

		if err != nil {
			return nil, err
		}

		if src.Value == nil && src.Nested == nil {
			return nil, p.fail(s, path, fmt.Sprintf("%s tag of %q: no conversion from %s to %s",
				analyze.TagName, path, analyze.TypeName(typ), analyze.TypeName(m.Type)))
		}

		return src, nil
	}

	if s.dict {
		src := &node.Source{Origin: node.OriginDictionary, KeyPath: []string{m.Name}, Type: s.src.Elem()}
		if err := p.keyed(src, s.src, m.Type, path); err != nil {
			return nil, err
		}

		if src.Value == nil && src.Nested == nil {
			return nil, nil
		}

		return src, nil
	}

	if chain := p.matcher.Find(s.src, s.prefix, m); chain != nil {
		typ := chain[len(chain)-1].Type

		value, err := p.value(typ, m.Type, path)
		if err != nil {
			return nil, err
		}

		if value != nil {
			return &node.Source{Origin: node.OriginAuto, Chain: chain, Type: typ, Value: value}, nil
		}
	}

	if analyze.Classify(m.Type) != analyze.CategoryComplex || m.RuntimeTypeNeeded() {
		return nil, nil
	}

	prefix := append(slices.Clone(s.prefix), m.Name)
	if !p.matcher.HasPrefixedMembers(s.src, prefix) {
		return nil, nil
	}

	value, err := p.object(s.src, analyze.Deref(m.Type), path, prefix)
	if err != nil {
		return nil, err
	}

	if obj, ok := value.(*node.Object); !ok || !populates(obj) {
		return nil, nil
	}

	return &node.Source{Origin: node.OriginOwner, Type: s.src, Value: value}, nil
}

func populates(obj *node.Object) bool {
	if len(obj.Construction.Params) > 0 {
		return true
	}

	for _, m := range obj.Members {
		if len(m.Sources) > 0 || len(m.Sequential) > 0 {
			return true
		}
	}

	return false
}

// construction decides how the target instance is obtained and returns the
// lower cased names of the constructor parameters.
func (p *planner) construction(obj *node.Object, s *scope) (map[string]bool, error) {
	if creator, ok := p.cfg.InstanceCreatorFor(obj.Target, obj.Path); ok {
		obj.Construction.Creator = creator.Func
		obj.Construction.CreatorPath = creator.Path

		return nil, nil
	}

	ctor, ok := p.cfg.ConstructorFor(obj.Target)
	if !ok {
		return nil, nil
	}

	covered := make(map[string]bool, len(ctor.Params))
	fn := ctor.Func.Type()

	for i, name := range ctor.Params {
		typ := fn.In(i)

		sources, err := p.parameter(s, name, typ, joinPath(obj.Path, name))
		if err != nil {
			return nil, err
		}

		if len(sources) == 0 {
			return nil, p.fail(s, obj.Path, fmt.Sprintf("constructor of %s: no source member or data source matches parameter %q of type %s",
				analyze.TypeName(obj.Target), name, analyze.TypeName(typ)))
		}

		obj.Construction.Params = append(obj.Construction.Params, &node.Param{Name: name, Type: typ, Sources: sources})
		covered[strings.ToLower(name)] = true
	}

	obj.Construction.Constructor = ctor.Func

	return covered, nil
}

func (p *planner) parameter(s *scope, name string, typ reflect.Type, path string) ([]*node.Source, error) {
	var guarded, plain []*node.Source

	for _, ds := range p.cfg.ParameterSourcesFor(s.src, s.tgt, p.rs, name) {
		src, err := p.dataSource(ds, len(p.scopes)-1, typ, path)
		if err != nil {
			return nil, err
		}

		if ds.IsConditional() {
			guarded = append(guarded, src)
		} else {
			plain = append(plain, src)
		}
	}

	sources := append(guarded, plain...)
	if len(plain) > 0 {
		return sources, nil
	}

	if s.dict {
		src := &node.Source{Origin: node.OriginDictionary, KeyPath: []string{name}, Type: s.src.Elem()}
		if err := p.keyed(src, s.src, typ, path); err != nil {
			return nil, err
		}

		if src.Value != nil || src.Nested != nil {
			sources = append(sources, src)
		}

		return sources, nil
	}

	if chain := p.matcher.FindParameter(s.src, name, typ); chain != nil {
		last := chain[len(chain)-1].Type

		value, err := p.value(last, typ, path)
		if err != nil {
			return nil, err
		}

		if value != nil {
			sources = append(sources, &node.Source{Origin: node.OriginAuto, Chain: chain, Type: last, Value: value})
		}
	}

	return sources, nil
}

// order sorts the members so each comes after the members it depends on.
func (p *planner) order(obj *node.Object, s *scope) error {
	members := obj.Members

	depends := false
	for _, m := range members {
		depends = depends || len(m.DependsOn) > 0
	}

	if !depends {
		return nil
	}

	order, err := topoSortAssignments(len(members), func(i int) []int {
		var deps []int

		for _, dep := range members[i].DependsOn {
			for j, other := range members {
				if j != i && (mapping.HasPathPrefix(dep, other.Path) || mapping.HasPathPrefix(other.Path, dep)) {
					deps = append(deps, j)
				}
			}
		}

		return deps
	})
	if err != nil {
		return p.fail(s, obj.Path, fmt.Sprintf("member dependencies of %s: %v", analyze.TypeName(obj.Target), err))
	}

	sorted := make([]*node.Member, len(order))
	for i, j := range order {
		sorted[i] = members[j]
	}

	obj.Members = sorted

	return nil
}

func (p *planner) collection(src, tgt reflect.Type, path string) (node.Node, error) {
	elemPath := path + "[]"
	tElem := tgt.Elem()

	col := &node.Collection{Source: src, Target: tgt, Path: path}

	var (
		elem node.Node
		err  error
	)

	if analyze.Classify(src) == analyze.CategoryDictionary {
		col.FromDictionary = true

		if analyze.Classify(tElem) == analyze.CategoryComplex {
			elem, err = p.value(src, tElem, elemPath)
		} else {
			elem, err = p.value(src.Elem(), tElem, elemPath)
		}
	} else {
		sElem := src.Elem()

		elem, err = p.value(sElem, tElem, elemPath)
		if analyze.Classify(sElem) == analyze.CategoryComplex && analyze.Classify(tElem) == analyze.CategoryComplex {
			col.SourceIdentity = p.identity(sElem)
			col.TargetIdentity = p.identity(tElem)
		}
	}

	if err != nil || elem == nil {
		return nil, err
	}

	col.Element = elem

	return col, nil
}

// identityNames are the member names tried, in order, when no identifier is
// configured for an element type. "%s" stands for the type name.
var identityNames = []string{"ID", "Id", "%sID", "%sId"}

func (p *planner) identity(t reflect.Type) *node.Identity {
	t = analyze.Deref(t)
	info := p.engine.analyzer.Info(t)

	if id, ok := p.cfg.IdentifierFor(t); ok {
		if id.Func.IsValid() {
			return &node.Identity{Type: t, Func: id.Func}
		}

		if m := info.Member(id.Member); m != nil && m.Readable {
			return &node.Identity{Type: t, Member: m}
		}
	}

	for _, name := range identityNames {
		if strings.Contains(name, "%s") {
			name = fmt.Sprintf(name, t.Name())
		}

		if m := info.Member(name); m != nil && m.Readable && analyze.Classify(m.Type) == analyze.CategorySimple {
			return &node.Identity{Type: t, Member: m}
		}
	}

	return nil
}

func (p *planner) dictionary(src, tgt reflect.Type, path string) (node.Node, error) {
	if !p.engine.conv.CanConvert(src.Key(), tgt.Key()) {
		return nil, nil
	}

	value, err := p.value(src.Elem(), tgt.Elem(), path+"[]")
	if err != nil || value == nil {
		return nil, err
	}

	return &node.Dictionary{
		Source: src,
		Target: tgt,
		Path:   path,
		Key:    &node.Leaf{Source: src.Key(), Target: tgt.Key()},
		Value:  value,
	}, nil
}

// accepts reports whether values of arg can be passed for a func parameter.
func (p *planner) accepts(param, arg reflect.Type) bool {
	switch {
	case arg == nil, arg.Kind() == reflect.Interface, arg.AssignableTo(param), analyze.Deref(arg) == analyze.Deref(param):
		return true
	case param.Kind() == reflect.Interface:
		return arg.Implements(param) || reflect.PointerTo(arg).Implements(param)
	case analyze.Classify(arg) == analyze.CategorySimple && analyze.Classify(param) == analyze.CategorySimple:
		return p.engine.conv.CanConvert(arg, param)
	default:
		return false
	}
}

func (p *planner) current() *scope {
	if len(p.scopes) == 0 {
		return &scope{}
	}

	return p.scopes[len(p.scopes)-1]
}

func (p *planner) fail(s *scope, path, message string) error {
	meta := map[string]any{diagnostic.MetaRuleSet: p.rs.String()}
	if s.src != nil {
		meta[diagnostic.MetaPair] = analyze.PairName(s.src, s.tgt)
	}

	if path != "" {
		meta[diagnostic.MetaTarget] = path
	}

	return diagnostic.NewConfigurationError(message, meta)
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}

	return base + "." + name
}

func relativePath(path, base string) string {
	if base == "" {
		return path
	}

	return strings.TrimPrefix(strings.TrimPrefix(path, base), ".")
}

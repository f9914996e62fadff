package plan

import (
	"fmt"
	"reflect"
	"strings"

	"object-mapper/config"
	"object-mapper/internal/analyze"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/match"
	"object-mapper/node"
	"object-mapper/primitive"
)

// Validate plans the mapping from src to tgt and the derived pairs it may
// dispatch to, reporting target members no source populates and enum
// members with no counterpart.
func (e *Engine) Validate(src, tgt reflect.Type, rs config.RuleSet) *diagnostic.Diagnostics {
	d := &diagnostic.Diagnostics{}

	v := &validator{
		engine:  e,
		rs:      rs,
		diags:   d,
		matcher: match.NewMatcher(e.analyzer, e.cfg.Naming(), e.conv),
	}

	v.dealer.Needs(analyze.Deref(src), analyze.Deref(tgt))

	for {
		s, t, ok := v.dealer.NextNeeds()
		if !ok {
			break
		}

		proc, err := e.Procedure(s, t, rs)
		if err != nil {
			d.AddError("invalid_configuration", err.Error(), analyze.PairName(s, t), "")
			continue
		}

		v.walk(proc.Root)
	}

	return d
}

type validator struct {
	engine  *Engine
	rs      config.RuleSet
	diags   *diagnostic.Diagnostics
	matcher *match.Matcher
	dealer  node.Dealer
}

func (v *validator) walk(n node.Node) {
	switch n := n.(type) {
	case *node.Leaf:
		v.enum(n)

	case *node.Object:
		pair := analyze.PairName(n.Source, n.Target)
		info := v.engine.analyzer.Info(n.Target)

		for _, path := range n.Unmapped {
			name := path[strings.LastIndex(path, ".")+1:]

			var suggestions []string
			if m := info.Member(name); m != nil && !n.FromDictionary {
				suggestions = v.matcher.Suggestions(n.Source, m, 3)
			}

			v.diags.AddError("unmapped_member",
				fmt.Sprintf("no source populates %s.%s", analyze.TypeName(n.Target), name), pair, path, suggestions...)
		}

		for _, p := range n.Construction.Params {
			v.sources(p.Sources)
		}

		for _, m := range n.Members {
			v.sources(m.Sources)
			v.sources(m.Sequential)
		}

	case *node.Collection:
		v.walk(n.Element)

	case *node.Dictionary:
		v.walk(n.Key)
		v.walk(n.Value)

	case *node.Runtime:
		for _, d := range v.engine.cfg.DerivedTypePairs(n.Source, n.Target) {
			s, t := analyze.Deref(d.Source), analyze.Deref(d.Target)
			if s != nil && t != nil && s.Kind() != reflect.Interface && t.Kind() != reflect.Interface {
				v.dealer.Needs(s, t)
			}
		}
	}
}

func (v *validator) sources(sources []*node.Source) {
	for _, s := range sources {
		if s.Value != nil {
			v.walk(s.Value)
		}

		if s.Nested != nil {
			v.walk(s.Nested)
		}
	}
}

// enum reports members of a source enum the target enum cannot represent.
func (v *validator) enum(n *node.Leaf) {
	if !primitive.IsEnum(n.Source) || !primitive.IsEnum(n.Target) || n.Source == n.Target {
		return
	}

	conv := v.engine.conv
	if len(conv.Members(n.Target)) == 0 {
		return
	}

	for _, m := range conv.Members(n.Source) {
		if !conv.MapsEnumMember(m, n.Target) {
			v.diags.AddError("enum_not_covered",
				fmt.Sprintf("%s.%s has no %s counterpart", analyze.TypeName(n.Source), m.Name, analyze.TypeName(n.Target)),
				analyze.PairName(n.Source, n.Target), m.Name)
		}
	}
}

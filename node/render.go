package node

import (
	"fmt"
	"reflect"
	"strings"

	"object-mapper/internal/analyze"
	"object-mapper/primitive"
)

type recursionKey struct {
	src, dst reflect.Type
	path     string
}

// Render describes the procedure as indented text, one step per line.
// Objects entered again through recursion are labeled "#obj1", "#obj2", ...
func Render(p *Procedure) string {
	r := &renderer{stem: NewStem("#obj", nil), targets: map[recursionKey]bool{}}
	r.collect(p.Root)

	lines := []string{fmt.Sprintf("%s %s -> %s", p.RuleSet, analyze.TypeName(p.Source), analyze.TypeName(p.Target))}
	lines = append(lines, indentAll(r.node(p.Root), 1)...)

	return strings.Join(lines, "\n") + "\n"
}

type renderer struct {
	stem    *Stem
	targets map[recursionKey]bool
}

func (r *renderer) collect(n Node) {
	switch n := n.(type) {
	case *Recurse:
		r.targets[recursionKey{n.Source, n.Target, n.Path}] = true
	case *Object:
		for _, p := range n.Construction.Params {
			r.collectSources(p.Sources)
		}

		for _, m := range n.Members {
			r.collectSources(m.Sources)
			r.collectSources(m.Sequential)
		}
	case *Collection:
		r.collect(n.Element)
	case *Dictionary:
		r.collect(n.Value)
	}
}

func (r *renderer) collectSources(sources []*Source) {
	for _, s := range sources {
		if s.Value != nil {
			r.collect(s.Value)
		}

		if s.Nested != nil {
			r.collect(s.Nested)
		}
	}
}

func (r *renderer) node(n Node) []string {
	switch n := n.(type) {
	case *Leaf:
		return []string{fmt.Sprintf("convert %s -> %s", analyze.TypeName(n.Source), analyze.TypeName(n.Target))}
	case *Object:
		return r.object(n)
	case *Collection:
		head := fmt.Sprintf("collection %s -> %s", analyze.TypeName(n.Source), analyze.TypeName(n.Target))
		if n.FromDictionary {
			head += " from indexed keys"
		}

		if n.Identifiable() {
			head += fmt.Sprintf(" by identity %s/%s", n.SourceIdentity, n.TargetIdentity)
		}

		return append([]string{head}, indentAll(r.node(n.Element), 1)...)
	case *Dictionary:
		head := fmt.Sprintf("dictionary %s -> %s", analyze.TypeName(n.Source), analyze.TypeName(n.Target))
		return append([]string{head}, indentAll(r.node(n.Value), 1)...)
	case *Flatten:
		return []string{fmt.Sprintf("flatten %s -> %s", analyze.TypeName(n.Source), analyze.TypeName(n.Target))}
	case *Runtime:
		return []string{fmt.Sprintf("runtime %s -> %s", analyze.TypeName(n.Source), analyze.TypeName(n.Target))}
	case *Recurse:
		key := recursionKey{n.Source, n.Target, n.Path}
		return []string{fmt.Sprintf("recurse %s -> %s %s", analyze.TypeName(n.Source), analyze.TypeName(n.Target), r.stem.Label(key))}
	case nil:
		return []string{"assign zero"}
	default:
		return []string{fmt.Sprintf("%T", n)}
	}
}

func (r *renderer) object(n *Object) []string {
	head := fmt.Sprintf("object %s -> %s", analyze.TypeName(n.Source), analyze.TypeName(n.Target))
	if n.FromDictionary {
		head = fmt.Sprintf("unflatten %s -> %s", analyze.TypeName(n.Source), analyze.TypeName(n.Target))
	}

	if key := (recursionKey{n.Source, n.Target, n.Path}); r.targets[key] {
		head += " " + r.stem.Label(key)
	}

	var body []string

	c := n.Construction
	switch {
	case c.Creator.IsValid():
		body = append(body, "create via "+funcLabel(c.Creator))
	case c.Constructor.IsValid():
		params := make([]string, 0, len(c.Params))
		for _, p := range c.Params {
			params = append(params, p.Name+" <- "+sourcesLabel(p.Sources))
		}

		body = append(body, fmt.Sprintf("construct via %s(%s)", funcLabel(c.Constructor), strings.Join(params, ", ")))
	}

	for _, m := range n.Members {
		name := m.Info.Name

		if len(m.Sources) == 0 && len(m.Sequential) == 0 {
			body = append(body, fmt.Sprintf("%s: %s", name, m.Fallback))
			continue
		}

		line := name + " <- " + sourcesLabel(m.Sources)
		for _, s := range m.Sequential {
			line += " + " + sourceLabel(s)
		}

		if len(m.DependsOn) > 0 {
			line += " after " + strings.Join(m.DependsOn, ", ")
		}

		body = append(body, line)

		for _, s := range m.Sources {
			if nested := s.Nested; nested != nil {
				body = append(body, indentAll(r.node(nested), 1)...)
			} else if s.Value != nil && s.Value.Dispatcher() != DispatcherSimple {
				body = append(body, indentAll(r.node(s.Value), 1)...)
			}
		}
	}

	for _, path := range n.Ignored {
		body = append(body, path+": ignored")
	}

	for _, path := range n.Unmapped {
		body = append(body, path+": unmapped")
	}

	return append([]string{head}, indentAll(body, 1)...)
}

func sourcesLabel(sources []*Source) string {
	if len(sources) == 0 {
		return "?"
	}

	labels := make([]string, len(sources))
	for i, s := range sources {
		labels[i] = sourceLabel(s)
	}

	return strings.Join(labels, " | ")
}

func sourceLabel(s *Source) string {
	label := s.Label

	if label == "" {
		switch {
		case s.HasConstant && s.Constant.IsValid():
			label = strings.TrimSpace(dumper.Sdump(s.Constant.Interface()))
		case s.HasConstant:
			label = "nil"
		case len(s.KeyPath) > 0:
			label = fmt.Sprintf("key %q", strings.Join(s.KeyPath, "."))
		case len(s.Chain) > 0:
			names := make([]string, len(s.Chain))
			for i, m := range s.Chain {
				names[i] = m.Name
			}

			label = strings.Join(names, ".")
		default:
			label = "source"
		}
	}

	if s.Up > 0 {
		label = fmt.Sprintf("up%d.%s", s.Up, label)
	}

	if s.Origin != OriginConfigured && s.Origin != OriginAuto {
		label += " (" + s.Origin.String() + ")"
	}

	return label
}

func funcLabel(fn reflect.Value) string {
	_, name := primitive.FuncName(fn)
	return name
}

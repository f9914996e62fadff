package analyze

import (
	"reflect"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// TagName is the struct tag consulted for member names, `mapper:"-"` hides a field.
const TagName = "mapper"

type entryKey struct {
	owner   reflect.Type
	key     string
	runtime reflect.Type
}

// Analyzer introspects types once and memoizes the result. It is safe for
// concurrent use.
type Analyzer struct {
	types   *xsync.MapOf[reflect.Type, *TypeInfo]
	entries *xsync.MapOf[entryKey, *MemberInfo]
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		types:   xsync.NewMapOf[reflect.Type, *TypeInfo](),
		entries: xsync.NewMapOf[entryKey, *MemberInfo](),
	}
}

// Info returns the memoized description of the type. Pointers are stripped.
func (a *Analyzer) Info(t reflect.Type) *TypeInfo {
	t = Deref(t)

	info, _ := a.types.LoadOrCompute(t, func() *TypeInfo {
		return describe(t)
	})

	return info
}

// DictionaryEntry returns the member describing one key of a dictionary type.
// Entries are cached per runtime value type since the declared value type of
// a dictionary is often an interface.
func (a *Analyzer) DictionaryEntry(dict reflect.Type, key string, runtime reflect.Type) *MemberInfo {
	dict = Deref(dict)
	if runtime == nil {
		runtime = dict.Elem()
	}

	member, _ := a.entries.LoadOrCompute(entryKey{owner: dict, key: key, runtime: runtime}, func() *MemberInfo {
		return &MemberInfo{
			Name:      key,
			Kind:      MemberDictionaryEntry,
			Type:      runtime,
			Declaring: dict,
			Key:       key,
			Readable:  true,
			Writable:  true,
		}
	})

	return member
}

// FieldPaths returns the readable member paths reachable from the type, keyed
// by their dotted path, e.g. "Address.Line1". Enumerables are not entered.
func (a *Analyzer) FieldPaths(t reflect.Type, maxDepth int) map[string][]*MemberInfo {
	result := make(map[string][]*MemberInfo)
	a.fieldPaths(a.Info(t), NewTypePath(""), nil, result, 0, maxDepth, map[reflect.Type]bool{})

	return result
}

func (a *Analyzer) fieldPaths(
	info *TypeInfo,
	path *TypePath,
	chain []*MemberInfo,
	result map[string][]*MemberInfo,
	depth, maxDepth int,
	visiting map[reflect.Type]bool,
) {
	if depth > maxDepth || info.Category != CategoryComplex || visiting[info.Type] {
		return
	}

	visiting[info.Type] = true
	defer delete(visiting, info.Type)

	for _, m := range info.Members {
		if !m.Readable {
			continue
		}

		memberPath := path.Field(m.Name)
		memberChain := append(append([]*MemberInfo{}, chain...), m)
		result[memberPath.String()] = memberChain

		if Classify(m.Type) == CategoryComplex {
			a.fieldPaths(a.Info(m.Type), memberPath, memberChain, result, depth+1, maxDepth, visiting)
		}
	}
}

func describe(t reflect.Type) *TypeInfo {
	info := &TypeInfo{
		ID:       IDOf(t),
		Type:     t,
		Category: Classify(t),
		byName:   map[string]*MemberInfo{},
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		info.Elem = t.Elem()
	case reflect.Map:
		info.Key = t.Key()
		info.Elem = t.Elem()
	}

	if info.Category == CategoryComplex {
		info.Members = structMembers(t)
		for _, m := range info.Members {
			info.byName[m.Name] = m
		}
	}

	return info
}

// structMembers lists exported fields (including promoted ones) followed by
// getter and setter methods for names not already covered by a field.
func structMembers(t reflect.Type) []*MemberInfo {
	var members []*MemberInfo

	byName := map[string]*MemberInfo{}

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Tag.Get(TagName) == "-" {
			continue
		}

		// embedded structs are transparent, their fields are promoted
		if f.Anonymous && Deref(f.Type).Kind() == reflect.Struct && Classify(f.Type) == CategoryComplex {
			continue
		}

		if _, taken := byName[f.Name]; taken {
			continue
		}

		m := &MemberInfo{
			Name:      f.Name,
			Kind:      MemberField,
			Type:      f.Type,
			Declaring: t,
			Tag:       f.Tag,
			Index:     f.Index,
			Readable:  true,
			Writable:  reachable(t, f.Index),
		}

		members = append(members, m)
		byName[m.Name] = m
	}

	ptr := reflect.PointerTo(t)
	for i := range ptr.NumMethod() {
		method := ptr.Method(i)
		mt := method.Type

		switch {
		case mt.NumIn() == 1 && mt.NumOut() == 1 && !isError(mt.Out(0)):
			name := strings.TrimPrefix(method.Name, "Get")
			if name == "" || !isExportedName(name) {
				continue
			}

			if existing, ok := byName[name]; ok {
				if existing.Kind == MemberMethod && !existing.Readable {
					existing.Getter = method.Name
					existing.Readable = true
					existing.pointerGetter = !hasValueMethod(t, method.Name)
				}

				continue
			}

			m := &MemberInfo{
				Name:          name,
				Kind:          MemberMethod,
				Type:          mt.Out(0),
				Declaring:     t,
				Getter:        method.Name,
				Readable:      true,
				pointerGetter: !hasValueMethod(t, method.Name),
			}

			members = append(members, m)
			byName[name] = m

		case mt.NumIn() == 2 && mt.NumOut() == 0 && strings.HasPrefix(method.Name, "Set") && len(method.Name) > 3:
			name := method.Name[3:]
			if !isExportedName(name) {
				continue
			}

			if existing, ok := byName[name]; ok {
				if existing.Kind == MemberMethod && existing.Type == mt.In(1) {
					existing.Setter = method.Name
					existing.Writable = true
				}

				continue
			}

			m := &MemberInfo{
				Name:      name,
				Kind:      MemberMethod,
				Type:      mt.In(1),
				Declaring: t,
				Setter:    method.Name,
				Writable:  true,
			}

			members = append(members, m)
			byName[name] = m
		}
	}

	return members
}

// reachable reports whether a promoted field is reached through exported
// embedded fields only, reflect refuses to set it otherwise.
func reachable(t reflect.Type, index []int) bool {
	current := t
	for i, x := range index {
		f := Deref(current).Field(x)
		if i < len(index)-1 && !f.IsExported() {
			return false
		}

		current = f.Type
	}

	return true
}

func hasValueMethod(t reflect.Type, name string) bool {
	_, ok := t.MethodByName(name)
	return ok
}

func isExportedName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

func isError(t reflect.Type) bool {
	return t.Implements(reflect.TypeOf((*error)(nil)).Elem())
}

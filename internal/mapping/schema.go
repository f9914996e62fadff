package mapping

import (
	"strings"
)

// Rule set names accepted in mapping files.
const (
	RuleSetCreateNew = "create_new"
	RuleSetMerge     = "merge"
	RuleSetOverwrite = "overwrite"
)

// RuleSetNames lists the rule set names in declaration order.
var RuleSetNames = []string{RuleSetCreateNew, RuleSetMerge, RuleSetOverwrite}

// MappingFile represents the root of a YAML mapping definition file.
type MappingFile struct {
	// Version of the mapping schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Naming configures the prefixes and suffixes ignored while matching
	// member names and the alternate dictionary key separator.
	Naming *NamingDef `yaml:"naming,omitempty"`

	// Settings holds mapper-wide toggles.
	Settings SettingsDef `yaml:"settings,omitempty"`

	// Identifiers maps a type to the member identifying its elements in
	// merged and overwritten collections.
	// Example: { "store.Product": "SKU" }
	Identifiers map[string]string `yaml:"identifiers,omitempty"`

	// Formats lists the string formats used when converting values of a type to strings.
	Formats []FormatDef `yaml:"formats,omitempty"`

	// Enums lists explicit enum member pairings.
	Enums []EnumDef `yaml:"enums,omitempty"`

	// Creators lists instance factories replacing default construction.
	Creators []CreatorDef `yaml:"creators,omitempty"`

	// TypeMappings is a list of type pair mappings.
	TypeMappings []TypeMapping `yaml:"mappings"`
}

// NamingDef configures member name matching.
type NamingDef struct {
	Prefixes  StringOrArray `yaml:"prefixes,omitempty"`
	Suffixes  StringOrArray `yaml:"suffixes,omitempty"`
	Separator string        `yaml:"separator,omitempty"`
}

// SettingsDef holds mapper-wide toggles. Unset values keep the mapper defaults.
type SettingsDef struct {
	IdentityIntegrity     *bool `yaml:"identity_integrity,omitempty"`
	DisableObjectTracking *bool `yaml:"disable_object_tracking,omitempty"`
}

// FormatDef binds a format string to a simple type.
type FormatDef struct {
	Type   string `yaml:"type"`
	Format string `yaml:"format"`
}

// EnumDef pairs the members of two enum types by member name.
type EnumDef struct {
	Source string       `yaml:"source"`
	Target string       `yaml:"target"`
	Pairs  EnumPairsDef `yaml:"pairs"`
}

// CreatorDef binds a registered factory function to a target type,
// optionally restricted to a target member path.
type CreatorDef struct {
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
	Func string `yaml:"func"`
}

// TypeMapping defines how to map one source type to one target type.
type TypeMapping struct {
	// Source type identifier (e.g., "store.Order" or full path).
	Source string `yaml:"source"`

	// Target type identifier (e.g., "warehouse.Order" or full path).
	Target string `yaml:"target"`

	// RuleSets restricts the rules of this mapping to the named rule sets.
	// Empty means every rule set.
	RuleSets StringOrArray `yaml:"rule_sets,omitempty"`

	// OneToOne is a simplified mapping syntax where keys are source members
	// and values are target members.
	// Example: { "OrderID": "ID", "CustomerName": "Customer" }
	OneToOne map[string]string `yaml:"121,omitempty"`

	// Fields defines explicit data sources with full control.
	Fields []FieldMapping `yaml:"fields,omitempty"`

	// Ignore lists target members that should not be mapped.
	Ignore StringOrArray `yaml:"ignore,omitempty"`

	// Derived pairs runtime source types with the target types they map to
	// when this mapping's source or target is an interface.
	Derived []DerivedDef `yaml:"derived,omitempty"`

	// Constructor names a registered factory used to create the target.
	Constructor *ConstructorDef `yaml:"constructor,omitempty"`

	// OnError names a registered error handler deciding the result of a
	// failed mapping of this pair.
	OnError string `yaml:"on_error,omitempty"`
}

// DerivedDef pairs a derived source type with a derived target type.
type DerivedDef struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// ConstructorDef names a registered factory function and its parameter names.
type ConstructorDef struct {
	Func   string        `yaml:"func"`
	Params StringOrArray `yaml:"params,omitempty"`
}

// FieldMapping defines a configured data source for one or more target members.
type FieldMapping struct {
	// Target member path(s). Multiple targets receive the same value.
	Target StringOrArray `yaml:"target"`

	// Source member path. With Transform set, the transform receives the
	// source member value; without Source it receives the source object.
	Source string `yaml:"source,omitempty"`

	// Default is a constant converted to the target member type.
	Default *string `yaml:"default,omitempty"`

	// Transform names a registered value function.
	Transform string `yaml:"transform,omitempty"`

	// When names a registered condition over the source object.
	When string `yaml:"when,omitempty"`

	// Parameter binds the value to the named constructor parameter.
	Parameter string `yaml:"parameter,omitempty"`

	// Sequential sources are applied after the winning source.
	Sequential bool `yaml:"sequential,omitempty"`

	// Reversible sources are mirrored for the reverse type pair.
	Reversible bool `yaml:"reversible,omitempty"`

	// DependsOn lists target members assigned before this one.
	DependsOn StringOrArray `yaml:"depends_on,omitempty"`
}

// Cardinality represents the relationship between source and target members.
type Cardinality int

const (
	CardinalityOneToOne Cardinality = iota
	CardinalityOneToMany
)

// String returns a human-readable representation of the cardinality.
func (c Cardinality) String() string {
	switch c {
	case CardinalityOneToOne:
		return "1:1"
	case CardinalityOneToMany:
		return "1:N"
	default:
		return "unknown"
	}
}

// GetCardinality determines the cardinality of a field mapping.
func (fm *FieldMapping) GetCardinality() Cardinality {
	if fm.Target.IsMultiple() {
		return CardinalityOneToMany
	}

	return CardinalityOneToOne
}

// ValueKinds counts the value origins set on the field: a Default constant,
// and a Source path or Transform. Valid field mappings set exactly one.
func (fm *FieldMapping) ValueKinds() int {
	n := 0
	if fm.Default != nil {
		n++
	}

	if fm.Source != "" || fm.Transform != "" {
		n++
	}

	return n
}

// IsPlainSource reports whether the field maps a source path with no
// transform, condition or parameter binding.
func (fm *FieldMapping) IsPlainSource() bool {
	return fm.Source != "" && fm.Transform == "" && fm.When == "" && fm.Parameter == "" && fm.Default == nil
}

// String returns a short description used in diagnostics.
func (fm *FieldMapping) String() string {
	var b strings.Builder

	b.WriteString(strings.Join(fm.Target, ","))
	b.WriteString(" <- ")

	switch {
	case fm.Default != nil:
		b.WriteString("\"" + *fm.Default + "\"")
	case fm.Transform != "" && fm.Source != "":
		b.WriteString(fm.Transform + "(" + fm.Source + ")")
	case fm.Transform != "":
		b.WriteString(fm.Transform + "(source)")
	default:
		b.WriteString(fm.Source)
	}

	if fm.When != "" {
		b.WriteString(" when " + fm.When)
	}

	return b.String()
}

// StringOrArray is a YAML value that can be a single string or a list of strings.
type StringOrArray []string

// PathSegment represents a parsed segment of a member path.
type PathSegment struct {
	// Name is the member name.
	Name string

	// IsSlice indicates this segment accesses elements (e.g., "Items[]").
	IsSlice bool

	// Index is the element index, or AnyIndex.
	Index int
}

// FieldPath represents a parsed member path like "Items[].ProductID".
type FieldPath struct {
	Segments []PathSegment
}

// String returns the path as a string.
func (p FieldPath) String() string {
	var sb strings.Builder

	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteString(".")
		}

		sb.WriteString(seg.Name)

		if seg.IsSlice {
			if seg.Index == AnyIndex {
				sb.WriteString("[]")
			} else {
				sb.WriteString(IndexKey(seg.Index))
			}
		}
	}

	return sb.String()
}

// IsSimple returns true if this is a single-member path (no nesting, no elements).
func (p FieldPath) IsSimple() bool {
	return len(p.Segments) == 1 && !p.Segments[0].IsSlice
}

// HasElements reports whether any segment addresses elements.
func (p FieldPath) HasElements() bool {
	for _, seg := range p.Segments {
		if seg.IsSlice {
			return true
		}
	}

	return false
}

// Root returns the first segment's member name.
func (p FieldPath) Root() string {
	if len(p.Segments) == 0 {
		return ""
	}

	return p.Segments[0].Name
}

// Names returns the member names of all segments.
func (p FieldPath) Names() []string {
	names := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		names[i] = seg.Name
	}

	return names
}

// IsEmpty returns true if the path has no segments.
func (p FieldPath) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Equals returns true if two paths are equal.
func (p FieldPath) Equals(other FieldPath) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}

	for i, seg := range p.Segments {
		if seg != other.Segments[i] {
			return false
		}
	}

	return true
}

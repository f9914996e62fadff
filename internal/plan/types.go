package plan

import (
	"fmt"
	"reflect"

	"object-mapper/config"
	"object-mapper/internal/analyze"
	"object-mapper/primitive"
)

// Configuration is the read side of the rule store plans are built from.
// *config.Store implements it.
type Configuration interface {
	primitive.Catalog

	DataSourcesFor(src, tgt reflect.Type, rs config.RuleSet, member config.TargetMember) []*config.DataSource
	ParameterSourcesFor(src, tgt reflect.Type, rs config.RuleSet, param string) []*config.DataSource
	IsIgnored(src, tgt reflect.Type, rs config.RuleSet, member config.TargetMember) bool
	DerivedTypePairs(src, tgt reflect.Type) []config.TypePair
	Naming() config.Naming
	IdentifierFor(t reflect.Type) (config.Identifier, bool)
	ConstructorFor(t reflect.Type) (config.Constructor, bool)
	InstanceCreatorFor(t reflect.Type, path string) (config.Creator, bool)
	IdentityIntegrity() bool
	ObjectTrackingDisabled() bool
	ErrorHandlerFor(src, tgt reflect.Type) (config.ErrorHandler, bool)
	Fingerprint() config.Fingerprint
}

// Key identifies a cached procedure.
type Key struct {
	Source      reflect.Type
	Target      reflect.Type
	RuleSet     config.RuleSet
	Fingerprint config.Fingerprint
	// Path is the target member path the procedure is planned at. Instance
	// creators and recursion depend on it, so the same pair may be planned
	// more than once.
	Path string
	// Element marks procedures of collection elements.
	Element bool
}

// String renders the key as "Merge store.Order->warehouse.Order at Lines[]".
func (k Key) String() string {
	s := fmt.Sprintf("%s %s", k.RuleSet, analyze.PairName(k.Source, k.Target))
	if k.Path != "" {
		s += " at " + k.Path
	}

	return s
}

// MappingTypes are the types a mapping is planned for.
type MappingTypes struct {
	Source reflect.Type
	Target reflect.Type
	// RuntimeTypesAreTheSame is set when the declared types are concrete, so
	// every mapping of the declared pair uses the same plan.
	RuntimeTypesAreTheSame bool
}

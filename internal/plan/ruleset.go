package plan

import (
	"object-mapper/config"
	"object-mapper/node"
)

// RuleSetSpec describes how a rule set treats an existing target.
type RuleSetSpec struct {
	RuleSet config.RuleSet
	// Enumerables populates slices and arrays.
	Enumerables EnumerableStrategy
	// ReuseTarget populates an existing target in place instead of replacing it.
	ReuseTarget bool
	// KeepValues leaves simple members that already have a non-zero value.
	KeepValues bool
	// Fallback applies to members none of whose sources yields a value.
	Fallback node.Fallback
}

var ruleSetSpecs = [...]RuleSetSpec{
	config.CreateNew: {
		RuleSet:     config.CreateNew,
		Enumerables: CreateNewStrategy,
		Fallback:    node.FallbackNone,
	},
	config.Merge: {
		RuleSet:     config.Merge,
		Enumerables: MergeStrategy,
		ReuseTarget: true,
		KeepValues:  true,
		Fallback:    node.FallbackPreserve,
	},
	config.Overwrite: {
		RuleSet:     config.Overwrite,
		Enumerables: OverwriteStrategy,
		ReuseTarget: true,
		Fallback:    node.FallbackZero,
	},
}

// SpecOf returns the behavior of a rule set. Unknown rule sets behave like
// CreateNew.
func SpecOf(rs config.RuleSet) RuleSetSpec {
	if rs < 0 || int(rs) >= len(ruleSetSpecs) {
		return ruleSetSpecs[config.CreateNew]
	}

	return ruleSetSpecs[rs]
}

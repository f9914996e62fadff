package config

import (
	"slices"
	"strconv"

	"object-mapper/internal/mapping"
)

// RuleSet selects how a mapping treats existing target values.
type RuleSet int

const (
	// CreateNew maps onto a new target instance.
	CreateNew RuleSet = iota
	// Merge fills the members of an existing target that have no value yet.
	Merge
	// Overwrite replaces the member values of an existing target.
	Overwrite
)

// RuleSets lists every rule set.
var RuleSets = []RuleSet{CreateNew, Merge, Overwrite}

// String returns the rule set name.
func (r RuleSet) String() string {
	switch r {
	case CreateNew:
		return "CreateNew"
	case Merge:
		return "Merge"
	case Overwrite:
		return "Overwrite"
	default:
		return "RuleSet(" + strconv.Itoa(int(r)) + ")"
	}
}

// FileName returns the name used for the rule set in mapping files.
func (r RuleSet) FileName() string {
	switch r {
	case Merge:
		return mapping.RuleSetMerge
	case Overwrite:
		return mapping.RuleSetOverwrite
	default:
		return mapping.RuleSetCreateNew
	}
}

// ParseRuleSet parses a mapping file rule set name.
func ParseRuleSet(name string) (RuleSet, bool) {
	switch name {
	case mapping.RuleSetCreateNew:
		return CreateNew, true
	case mapping.RuleSetMerge:
		return Merge, true
	case mapping.RuleSetOverwrite:
		return Overwrite, true
	default:
		return 0, false
	}
}

// appliesTo reports whether a rule restricted to the listed rule sets applies
// to rs. An empty list applies to every rule set.
func appliesTo(list []RuleSet, rs RuleSet) bool {
	return len(list) == 0 || slices.Contains(list, rs)
}

// overlaps reports whether two rule set restrictions share a rule set.
func overlaps(a, b []RuleSet) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}

	for _, r := range a {
		if appliesTo(b, r) {
			return true
		}
	}

	return false
}

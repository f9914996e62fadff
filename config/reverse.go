package config

import (
	"fmt"

	"object-mapper/internal/mapping"
)

// reverse mirrors a reversible data source for the reverse pair. A data
// source that cannot be mirrored is skipped with an info diagnostic. Callers
// hold the write lock.
func (s *Store) reverse(ds *DataSource) {
	reason := s.cannotReverse(ds)

	if reason == "" {
		mirror := &DataSource{
			Pair:     ds.Pair.Reverse(),
			RuleSets: append([]RuleSet(nil), ds.RuleSets...),
			Target:   ds.Source,
			Source:   ds.Target,
		}

		if err := s.add(mirror); err != nil {
			reason = err.Error()
		}
	}

	if reason == "" {
		return
	}

	s.diagnostics.AddInfo("reversal_skipped", reason, ds.Pair.String(), ds.Target)
	s.logger.Warn("data source reversal skipped",
		"pair", ds.Pair.String(),
		"target", ds.TargetName(),
		"reason", reason,
	)
}

// cannotReverse returns why a data source has no mirror, or "".
func (s *Store) cannotReverse(ds *DataSource) string {
	switch {
	case ds.Target == "":
		return fmt.Sprintf("%s does not name a target member", ds.TargetName())
	case ds.IsConditional():
		return "conditional data sources cannot be reversed"
	case ds.HasValue || ds.fn.IsValid() || ds.Source == "":
		return "only plain source members can be reversed"
	case ds.Pair.Source == nil || ds.Pair.Target == nil:
		return "data sources for any type cannot be reversed"
	}

	for _, p := range []string{ds.Source, ds.Target} {
		if fp, err := mapping.ParsePath(p); err != nil || fp.HasElements() {
			return fmt.Sprintf("element path %q cannot be reversed", p)
		}
	}

	if concrete(ds.Pair.Target) {
		if err := mapping.CheckPath(s.analyzer, ds.Pair.Target, ds.Target, false); err != nil {
			return fmt.Sprintf("target member is not readable: %v", err)
		}
	}

	if concrete(ds.Pair.Source) {
		if err := mapping.CheckPath(s.analyzer, ds.Pair.Source, ds.Source, true); err != nil {
			return fmt.Sprintf("source member is not writable: %v", err)
		}
	}

	return ""
}

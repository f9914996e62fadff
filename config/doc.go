// Package config holds the user declared rules the mapper consults while
// planning: explicit data sources, ignored members, naming conventions,
// identifiers, constructors and instance creators, enum pairings, string
// formats and error handlers.
//
// Rules are validated when they are added. Conflicting or contradictory rules
// are reported eagerly as configuration errors, the store never holds a
// configuration the planner cannot honor. Every change bumps the store
// fingerprint so plans built for an older configuration are never reused.
//
// Rules can be declared in code or loaded from a YAML mapping file:
//
//	registry := config.NewRegistry()
//	registry.Register(store.Order{}, warehouse.Order{})
//	_ = registry.RegisterFunc("CentsToAmount", CentsToAmount)
//
//	s := config.NewStore()
//	err := s.ApplyFile("mapping.yaml", registry)
package config

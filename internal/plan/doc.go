// Package plan builds and executes mapping plans.
//
// Planning resolves, for every target member of a type pair, the ordered data
// sources that may populate it:
//  1. Data sources configured for the member, conditional ones first
//  2. Data sources selecting the member by filter
//  3. The `mapper:"Source"` struct tag
//  4. The matching key of a source dictionary
//  5. A source member matched by name, flattened paths included
//  6. The rule set fallback: keep the existing value or reset it
//
// Plans are cached per (source, target, rule set, configuration fingerprint)
// and interpreted by the executor, which tracks mapped objects so cycles in
// the source graph map to cycles in the target graph.
package plan

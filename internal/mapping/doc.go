// Package mapping provides the YAML schema, parsing and validation of mapping
// files, the dictionary key syntax, and the type and function tables that
// resolve the names a mapping file refers to.
//
// A mapping file is the declarative counterpart of the programmatic
// configuration store: every rule it holds is applied to a store, which the
// planner then consults.
//
// # Key capabilities
//
//   - Pin explicit data sources for target members (1:1 and 1:many)
//   - Simplified "121" shorthand for 1:1 member mappings
//   - Ignore target members
//   - Set constant defaults, converted to the member type
//   - Apply named transforms and conditions registered in a FuncTable
//   - Declare identifiers, enum pairings, string formats and instance creators
//   - Restrict rules to rule sets (create_new, merge, overwrite)
//
// # Schema Overview
//
//	version: "1"
//	naming:
//	  prefixes: [m, _]
//	  separator: _
//	settings:
//	  identity_integrity: true
//	identifiers:
//	  store.Product: SKU
//	enums:
//	  - source: store.Status
//	    target: warehouse.State
//	    pairs: [{Pending: Open}]
//	mappings:
//	  - source: store.Order
//	    target: warehouse.Order
//	    rule_sets: [merge, overwrite]
//	    121:
//	      OrderID: ID
//	    fields:
//	      - target: Status
//	        default: "pending"
//	      - target: [DisplayName, FullName]
//	        source: Name
//	        reversible: true
//	      - target: Amount
//	        source: Price
//	        transform: CentsToAmount
//	        when: HasPrice
//	    ignore:
//	      - InternalField
//	    constructor:
//	      func: NewOrder
//	      params: [id]
//
// # Path Syntax
//
// Member paths support:
//   - Simple members: "Name"
//   - Nested members: "Address.Street"
//   - Elements: "Items[]" or "Items[i]"
//   - Indexed elements: "Items[0].ProductID"
//
// # Dictionary Keys
//
// Flattened dictionary keys descend with "." and index with "[i]", e.g.
// "Value[0].Address.Line1". Keys match case-insensitively; the configured
// alternate separator ("Address_Line1") and the concatenated form
// ("AddressLine1") are accepted as well, in that order.
package mapping

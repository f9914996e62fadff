// Package analyze provides runtime type introspection for the mapper.
//
// It uses reflect to build a canonical, memoized model of the types taking
// part in a mapping and of the members the mapper can read or write.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes the category (simple/complex/enumerable/dictionary) and members of a type
//   - MemberInfo: describes a field, getter/setter method or dictionary entry
//   - QualifiedMember: a typed member path from a root object, e.g. "Address.Line1" or "Values[i].Name"
package analyze

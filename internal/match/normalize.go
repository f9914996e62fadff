package match

import (
	"strings"
	"unicode"
)

// Naming carries the member naming conventions applied while matching.
type Naming struct {
	// Prefixes are stripped from member names before comparison, e.g. "Get" or "m".
	Prefixes []string
	// Suffixes are stripped from member names before comparison, e.g. "Value".
	Suffixes []string
	// Separator is an alternative to "." in flattened dictionary keys, e.g. "_".
	Separator string
}

// IsZero reports whether no convention is configured.
func (n Naming) IsZero() bool {
	return len(n.Prefixes) == 0 && len(n.Suffixes) == 0 && n.Separator == ""
}

// NormalizeIdent normalizes an identifier for matching: CamelCase tokens are
// joined, case-folded to lower and stripped of separators.
//
//	"OrderID", "order_id", "orderId" -> "orderid"
func NormalizeIdent(s string) string {
	return strings.ToLower(strings.Join(tokenizeCamelCase(s), ""))
}

// StripAffixes removes the first configured prefix and suffix found on the
// name. The name is returned unchanged when stripping would empty it.
func StripAffixes(name string, naming Naming) string {
	for _, p := range naming.Prefixes {
		if len(name) > len(p) && strings.HasPrefix(name, p) {
			name = name[len(p):]
			break
		}
	}

	for _, s := range naming.Suffixes {
		if len(name) > len(s) && strings.HasSuffix(name, s) {
			name = name[:len(name)-len(s)]
			break
		}
	}

	return name
}

// NameKeys returns the normalized keys a member name is known by under the
// naming conventions, the plain normalized name first.
func NameKeys(name string, naming Naming) []string {
	keys := []string{NormalizeIdent(name)}

	if stripped := NormalizeIdent(StripAffixes(name, naming)); stripped != keys[0] {
		keys = append(keys, stripped)
	}

	return keys
}

// JoinPath normalizes a member path so "Address.Line1", "Address_Line1" and
// "AddressLine1" compare equal.
func JoinPath(names ...string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteString(NormalizeIdent(n))
	}

	return b.String()
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "customerName" -> ["customer", "Name"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "address_line1" -> ["address", "line1"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator returns true if the rune separates words in an identifier or key.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prev := runes[i-1]

	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	// "orderID" splits before 'I'
	if !unicode.IsUpper(prev) {
		return true
	}

	// "XMLParser" splits before 'P'
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// TokenizeIdent splits an identifier into lowercase tokens.
func TokenizeIdent(s string) []string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

package mapping

import (
	"reflect"
	"slices"
	"strconv"
	"strings"

	"object-mapper/internal/analyze"
)

// KeySeparator descends into nested members in flattened dictionary keys.
const KeySeparator = "."

// IndexKey renders an element index segment, e.g. "[0]".
func IndexKey(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// IsIndexKey reports whether the part is an element index segment.
func IsIndexKey(part string) bool {
	return len(part) > 2 && part[0] == '[' && part[len(part)-1] == ']'
}

// JoinKey joins member names and index segments into a flattened key:
// ["Value", "[0]", "Address", "Line1"] becomes "Value[0].Address.Line1".
func JoinKey(parts []string, separator string) string {
	var sb strings.Builder

	for i, part := range parts {
		if i > 0 && !IsIndexKey(part) {
			sb.WriteString(separator)
		}

		sb.WriteString(part)
	}

	return sb.String()
}

// KeyCandidates returns the keys under which a member path may appear in a
// dictionary, highest priority first: the dotted form, the form using the
// alternate separator, then the concatenated form.
func KeyCandidates(parts []string, separator string) []string {
	if len(parts) == 0 {
		return nil
	}

	candidates := []string{JoinKey(parts, KeySeparator)}

	if separator != "" && separator != KeySeparator {
		candidates = append(candidates, JoinKey(parts, separator))
	}

	if len(parts) > 1 {
		candidates = append(candidates, JoinKey(parts, ""))
	}

	return slices.Compact(candidates)
}

// KeyIndex is a case-insensitive view over the keys of a string-keyed map.
type KeyIndex struct {
	exact map[string]reflect.Value
	fold  map[string]reflect.Value
	lower []string
}

// NewKeyIndex indexes the keys of dict, which must be a map with a string
// key kind. Keys differing only by case resolve to the lowest key in byte order.
func NewKeyIndex(dict reflect.Value) *KeyIndex {
	idx := &KeyIndex{
		exact: make(map[string]reflect.Value, dict.Len()),
		fold:  make(map[string]reflect.Value, dict.Len()),
	}

	keys := dict.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(analyze.KeyString(a), analyze.KeyString(b))
	})

	for _, k := range keys {
		s := analyze.KeyString(k)
		idx.exact[s] = k

		lower := strings.ToLower(s)
		if _, ok := idx.fold[lower]; !ok {
			idx.fold[lower] = k
			idx.lower = append(idx.lower, lower)
		}
	}

	slices.Sort(idx.lower)

	return idx
}

// Lookup returns the map key of the first candidate present, matching each
// candidate exactly before matching it case-insensitively.
func (k *KeyIndex) Lookup(candidates []string) (reflect.Value, bool) {
	for _, c := range candidates {
		if key, ok := k.exact[c]; ok {
			return key, true
		}

		if key, ok := k.fold[strings.ToLower(c)]; ok {
			return key, true
		}
	}

	return reflect.Value{}, false
}

// HasPrefix reports whether any key extends one of the candidates with a
// nested member or element segment. Concatenated candidates match any longer key.
func (k *KeyIndex) HasPrefix(candidates []string, separator string) bool {
	for _, c := range candidates {
		prefix := strings.ToLower(c)

		i, _ := slices.BinarySearch(k.lower, prefix)
		for ; i < len(k.lower) && strings.HasPrefix(k.lower[i], prefix); i++ {
			rest := k.lower[i][len(prefix):]
			if rest == "" {
				continue
			}

			if strings.HasPrefix(rest, KeySeparator) || strings.HasPrefix(rest, "[") ||
				(separator != "" && strings.HasPrefix(rest, separator)) || !strings.ContainsAny(c, KeySeparator+"[") {
				return true
			}
		}
	}

	return false
}

// Len returns the number of distinct case-insensitive keys.
func (k *KeyIndex) Len() int {
	return len(k.lower)
}

// Indices returns the element indices present under the prefix, sorted and
// de-duplicated. A key "Items[2].Name" yields 2 for the prefix "Items".
func (k *KeyIndex) Indices(prefix string) []int {
	p := strings.ToLower(prefix) + "["

	var out []int

	i, _ := slices.BinarySearch(k.lower, p)
	for ; i < len(k.lower) && strings.HasPrefix(k.lower[i], p); i++ {
		rest := k.lower[i][len(p):]

		end := strings.IndexByte(rest, ']')
		if end <= 0 {
			continue
		}

		n, err := strconv.Atoi(rest[:end])
		if err != nil || n < 0 {
			continue
		}

		out = append(out, n)
	}

	slices.Sort(out)

	return slices.Compact(out)
}

package mapping

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

)

// --- StringOrArray YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
// Accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		// Single string value
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		// Array of strings
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for StringOrArray.
// Outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if len(s) == 0 {
		return ""
	}

	return s[0]
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return len(s) == 0
}

// IsSingle returns true if the array has exactly one element.
func (s StringOrArray) IsSingle() bool {
	return len(s) == 1
}

// IsMultiple returns true if the array has more than one element.
func (s StringOrArray) IsMultiple() bool {
	return len(s) > 1
}

// Contains returns true if the array contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}


// EnumPairsDef is a YAML list of "SOURCE: TARGET" pairs or a mapping.
// Both decode into an ordered list.
type EnumPairsDef [][2]string

// UnmarshalYAML accepts either a mapping node or a sequence of single-key mappings.
func (p *EnumPairsDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		pairs := make(EnumPairsDef, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			pairs = append(pairs, [2]string{node.Content[i].Value, node.Content[i+1].Value})
		}

		*p = pairs

		return nil

	case yaml.SequenceNode:
		pairs := make(EnumPairsDef, 0, len(node.Content))

		for _, item := range node.Content {
			if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
				return fmt.Errorf("line %d: expected a single 'source: target' pair", item.Line)
			}

			pairs = append(pairs, [2]string{item.Content[0].Value, item.Content[1].Value})
		}

		*p = pairs

		return nil

	default:
		return fmt.Errorf("expected mapping or sequence of pairs, got %v", node.Kind)
	}
}

// MarshalYAML writes the pairs as a sequence of single-key mappings, keeping order.
func (p EnumPairsDef) MarshalYAML() (any, error) {
	out := make([]map[string]string, len(p))
	for i, pair := range p {
		out[i] = map[string]string{pair[0]: pair[1]}
	}

	return out, nil
}

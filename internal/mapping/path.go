package mapping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// AnyIndex marks a path segment addressing every element, written "[]" or "[i]".
const AnyIndex = -1

// ParsePath parses a member path string into a FieldPath.
// Supports: "Field", "Nested.Field", "Items[]", "Items[i].ProductID", "Items[0].Name".
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []PathSegment

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		seg, err := parseSegment(part)
		if err != nil {
			return FieldPath{}, fmt.Errorf("invalid path %q: %w", path, err)
		}

		segments = append(segments, seg)
	}

	return FieldPath{Segments: segments}, nil
}

func parseSegment(part string) (PathSegment, error) {
	seg := PathSegment{Name: part, Index: AnyIndex}

	open := strings.IndexByte(part, '[')
	if open >= 0 {
		if !strings.HasSuffix(part, "]") {
			return PathSegment{}, fmt.Errorf("unterminated index in %q", part)
		}

		seg.Name = part[:open]
		seg.IsSlice = true

		switch idx := part[open+1 : len(part)-1]; idx {
		case "", "i":
		default:
			n, err := strconv.Atoi(idx)
			if err != nil || n < 0 {
				return PathSegment{}, fmt.Errorf("invalid index %q", idx)
			}

			seg.Index = n
		}

		if seg.Name == "" {
			return PathSegment{}, errors.New("index without member name")
		}
	}

	if !isValidIdent(seg.Name) {
		return PathSegment{}, fmt.Errorf("invalid identifier %q", seg.Name)
	}

	return seg, nil
}

// ParsePaths parses multiple member paths.
func ParsePaths(paths StringOrArray) ([]FieldPath, error) {
	result := make([]FieldPath, 0, len(paths))

	for _, p := range paths {
		fp, err := ParsePath(p)
		if err != nil {
			return nil, err
		}

		result = append(result, fp)
	}

	return result, nil
}

// isValidIdent checks if a string is a valid Go identifier.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return false
			}
		} else if !isLetter(r) && !isDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// CanonicalPath renders a member path in its canonical form, elements written
// as "[]". Paths that do not parse are returned unchanged.
func CanonicalPath(path string) string {
	fp, err := ParsePath(path)
	if err != nil {
		return path
	}

	return fp.String()
}

// HasPathPrefix reports whether path equals prefix or descends from it. Both
// paths are expected in canonical form.
func HasPathPrefix(path, prefix string) bool {
	if prefix == "" || path == prefix {
		return true
	}

	if !strings.HasPrefix(path, prefix) {
		return false
	}

	switch path[len(prefix)] {
	case '.', '[':
		return true
	default:
		return false
	}
}

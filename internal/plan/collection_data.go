package plan

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

// Match pairs a source element with the existing target element sharing its
// identity.
type Match struct {
	Source int
	Target int
}

// CollectionData classifies the elements of a source and an existing target
// collection by identity.
type CollectionData struct {
	// Absent are target indices no source element matches.
	Absent []int
	// Matched pairs are in source order.
	Matched []Match
	// New are source indices no target element matches.
	New []int
}

// Collect matches source and target identities. An empty identity never
// matches, and each target element matches at most one source element, the
// first one sharing its identity.
func Collect(sourceIDs, targetIDs []string) CollectionData {
	var data CollectionData

	byID := make(map[string][]int, len(targetIDs))
	for i, id := range targetIDs {
		if id != "" {
			byID[id] = append(byID[id], i)
		}
	}

	matched := make([]bool, len(targetIDs))

	for s, id := range sourceIDs {
		targets := byID[id]
		if id == "" || len(targets) == 0 {
			data.New = append(data.New, s)
			continue
		}

		data.Matched = append(data.Matched, Match{Source: s, Target: targets[0]})
		matched[targets[0]] = true
		byID[id] = targets[1:]
	}

	for t, ok := range matched {
		if !ok {
			data.Absent = append(data.Absent, t)
		}
	}

	return data
}

// identityKey renders an identity value as a string, so identities of
// different numeric types compare equal. Zero identities render as "".
func identityKey(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() || v.IsZero() {
		return ""
	}

	if s, err := cast.ToStringE(v.Interface()); err == nil {
		return s
	}

	return fmt.Sprint(v.Interface())
}

package plan

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		targets []string
		want    CollectionData
	}{
		{
			name:    "all matched",
			sources: []string{"1", "2"},
			targets: []string{"2", "1"},
			want:    CollectionData{Matched: []Match{{Source: 0, Target: 1}, {Source: 1, Target: 0}}},
		},
		{
			name:    "absent and new",
			sources: []string{"2", "3"},
			targets: []string{"1", "2"},
			want: CollectionData{
				Absent:  []int{0},
				Matched: []Match{{Source: 0, Target: 1}},
				New:     []int{1},
			},
		},
		{
			name:    "empty identities never match",
			sources: []string{"", "1"},
			targets: []string{"", "1"},
			want: CollectionData{
				Absent:  []int{0},
				Matched: []Match{{Source: 1, Target: 1}},
				New:     []int{0},
			},
		},
		{
			name:    "duplicate source identities",
			sources: []string{"1", "1"},
			targets: []string{"1"},
			want: CollectionData{
				Matched: []Match{{Source: 0, Target: 0}},
				New:     []int{1},
			},
		},
		{
			name:    "empty target",
			sources: []string{"1"},
			want:    CollectionData{New: []int{0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Collect(tt.sources, tt.targets))
		})
	}
}

func TestIdentityKey(t *testing.T) {
	var nilPtr *int

	seven := 7

	assert.Equal(t, "7", identityKey(reflect.ValueOf(7)))
	assert.Equal(t, "7", identityKey(reflect.ValueOf(int64(7))))
	assert.Equal(t, "7", identityKey(reflect.ValueOf("7")))
	assert.Equal(t, "7", identityKey(reflect.ValueOf(&seven)))
	assert.Equal(t, "", identityKey(reflect.ValueOf(0)), "zero identities never match")
	assert.Equal(t, "", identityKey(reflect.ValueOf(nilPtr)))
	assert.Equal(t, "", identityKey(reflect.Value{}))
}

package plan

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/config"
	"object-mapper/node"
)

func TestCache_BuildsOncePerKey(t *testing.T) {
	c := NewCache()
	key := Key{Source: reflect.TypeOf(0), Target: reflect.TypeOf(""), RuleSet: config.CreateNew}

	var builds atomic.Int32

	build := func(k Key) (*node.Procedure, error) {
		builds.Add(1)
		return &node.Procedure{Source: k.Source, Target: k.Target}, nil
	}

	var wg sync.WaitGroup

	procs := make([]*node.Procedure, 16)
	for i := range procs {
		wg.Add(1)

		go func() {
			defer wg.Done()

			procs[i], _ = c.GetOrBuild(key, build)
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, p := range procs {
		assert.Same(t, procs[0], p)
	}

	assert.Equal(t, 1, c.Len())
}

func TestCache_KeysDifferByRuleSetAndPath(t *testing.T) {
	c := NewCache()
	base := Key{Source: reflect.TypeOf(0), Target: reflect.TypeOf("")}

	build := func(k Key) (*node.Procedure, error) { return &node.Procedure{Path: k.Path}, nil }

	merge := base
	merge.RuleSet = config.Merge

	nested := base
	nested.Path = "Items[]"

	for _, k := range []Key{base, merge, nested, base} {
		_, err := c.GetOrBuild(k, build)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 3, c.Reset())
	assert.Equal(t, 0, c.Len())
}

func TestCache_CachesFailures(t *testing.T) {
	c := NewCache()
	key := Key{Source: reflect.TypeOf(0), Target: reflect.TypeOf("")}
	boom := errors.New("boom")

	calls := 0
	build := func(Key) (*node.Procedure, error) {
		calls++
		return nil, boom
	}

	_, err := c.GetOrBuild(key, build)
	require.ErrorIs(t, err, boom)

	_, err = c.GetOrBuild(key, build)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestKey_String(t *testing.T) {
	k := Key{Source: reflect.TypeOf(0), Target: reflect.TypeOf(""), RuleSet: config.Merge, Path: "Lines[]"}
	assert.Equal(t, "Merge int->string at Lines[]", k.String())
}

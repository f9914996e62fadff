package plan

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/config"
	"object-mapper/internal/diagnostic"
	"object-mapper/node"
)

type line struct {
	ID  int
	Qty int
}

type lineDTO struct {
	ID  int
	Qty int
}

type customer struct {
	Name     string
	Discount float64
	Address  address
}

type address struct {
	Line1 string
}

type customerDTO struct {
	Name     string
	Discount string
	Address  *addressDTO
}

type addressDTO struct {
	Line1 string
}

type order struct {
	Number   string
	Customer *customer
	Lines    []line
	Totals   map[string]int
}

type orderDTO struct {
	Number   string
	Customer *customerDTO
	Lines    []lineDTO
	Totals   map[string]int64
}

type chainLink struct {
	Name string
	Next *chainLink
}

type chainLinkDTO struct {
	Name string
	Next *chainLinkDTO
}

func execute[T any](t *testing.T, e *Engine, rs config.RuleSet, source any, existing *T) (*T, error) {
	t.Helper()

	var current reflect.Value
	if existing != nil {
		current = reflect.ValueOf(existing)
	}

	out, err := e.Execute(context.Background(), rs, source, reflect.TypeFor[*T](), current)
	if err != nil {
		return nil, err
	}

	return out.Interface().(*T), nil
}

func sampleOrder() *order {
	return &order{
		Number:   "A-1",
		Customer: &customer{Name: "Bob", Discount: 0.5, Address: address{Line1: "Bob's House"}},
		Lines:    []line{{ID: 1, Qty: 10}, {ID: 2, Qty: 20}},
		Totals:   map[string]int{"net": 30},
	}
}

func TestEngine_CreateNew(t *testing.T) {
	e := NewEngine(config.NewStore())

	dto, err := execute[orderDTO](t, e, config.CreateNew, sampleOrder(), nil)
	require.NoError(t, err)

	assert.Equal(t, "A-1", dto.Number)
	require.NotNil(t, dto.Customer)
	assert.Equal(t, "Bob", dto.Customer.Name)
	require.NotNil(t, dto.Customer.Address)
	assert.Equal(t, "Bob's House", dto.Customer.Address.Line1)
	assert.Equal(t, []lineDTO{{ID: 1, Qty: 10}, {ID: 2, Qty: 20}}, dto.Lines)
	assert.Equal(t, map[string]int64{"net": 30}, dto.Totals)
}

func TestEngine_NilSource(t *testing.T) {
	e := NewEngine(config.NewStore())

	out, err := e.Execute(context.Background(), config.CreateNew, (*order)(nil), reflect.TypeFor[*orderDTO](), reflect.Value{})
	require.NoError(t, err)
	assert.True(t, out.IsNil())

	existing := &orderDTO{Number: "kept"}
	dto, err := execute(t, e, config.Overwrite, (*order)(nil), existing)
	require.NoError(t, err)
	assert.Same(t, existing, dto)
}

func TestEngine_NilMembers(t *testing.T) {
	e := NewEngine(config.NewStore())

	dto, err := execute[orderDTO](t, e, config.CreateNew, &order{Number: "A-2"}, nil)
	require.NoError(t, err)

	assert.Nil(t, dto.Customer)
	assert.Empty(t, dto.Lines)
	assert.Nil(t, dto.Totals)
}

func TestEngine_Merge(t *testing.T) {
	e := NewEngine(config.NewStore())

	existing := &orderDTO{
		Number: "kept",
		Lines:  []lineDTO{{ID: 1, Qty: 0}, {ID: 7, Qty: 70}},
	}

	dto, err := execute(t, e, config.Merge, sampleOrder(), existing)
	require.NoError(t, err)

	assert.Same(t, existing, dto)
	assert.Equal(t, "kept", dto.Number)
	require.NotNil(t, dto.Customer)
	assert.Equal(t, "Bob", dto.Customer.Name)
	assert.Equal(t, []lineDTO{{ID: 1, Qty: 10}, {ID: 7, Qty: 70}, {ID: 2, Qty: 20}}, dto.Lines)
}

func TestEngine_Overwrite(t *testing.T) {
	e := NewEngine(config.NewStore())

	existing := &orderDTO{
		Number: "replaced",
		Lines:  []lineDTO{{ID: 1, Qty: 1}, {ID: 7, Qty: 70}},
		Totals: map[string]int64{"gross": 40, "net": 1},
	}

	dto, err := execute(t, e, config.Overwrite, sampleOrder(), existing)
	require.NoError(t, err)

	assert.Equal(t, "A-1", dto.Number)
	assert.Equal(t, []lineDTO{{ID: 1, Qty: 10}, {ID: 2, Qty: 20}}, dto.Lines)
	assert.Equal(t, map[string]int64{"net": 30}, dto.Totals)
}

func TestEngine_OverwriteResetsUnmappedMembers(t *testing.T) {
	type source struct{ Name string }
	type target struct {
		Name  string
		Notes string
	}

	e := NewEngine(config.NewStore())

	dto, err := execute(t, e, config.Overwrite, &source{Name: "Bob"}, &target{Name: "x", Notes: "old"})
	require.NoError(t, err)
	assert.Equal(t, target{Name: "Bob"}, *dto)

	dto, err = execute(t, e, config.Merge, &source{Name: "Bob"}, &target{Notes: "old"})
	require.NoError(t, err)
	assert.Equal(t, target{Name: "Bob", Notes: "old"}, *dto)
}

func TestEngine_Cycles(t *testing.T) {
	e := NewEngine(config.NewStore())

	a := &chainLink{Name: "a"}
	b := &chainLink{Name: "b", Next: a}
	a.Next = b

	dto, err := execute[chainLinkDTO](t, e, config.CreateNew, a, nil)
	require.NoError(t, err)

	require.NotNil(t, dto.Next)
	assert.Equal(t, "b", dto.Next.Name)
	assert.Same(t, dto, dto.Next.Next)
}

func TestEngine_IdentityIntegrity(t *testing.T) {
	type holder struct{ Links []*chainLink }
	type holderDTO struct{ Links []*chainLinkDTO }

	shared := &chainLink{Name: "shared"}

	plain := NewEngine(config.NewStore())
	dto, err := execute[holderDTO](t, plain, config.CreateNew, &holder{Links: []*chainLink{shared, shared}}, nil)
	require.NoError(t, err)
	require.Len(t, dto.Links, 2)
	assert.NotSame(t, dto.Links[0], dto.Links[1])

	store := config.NewStore()
	require.NoError(t, store.EnableIdentityIntegrity())

	tracked := NewEngine(store)
	dto, err = execute[holderDTO](t, tracked, config.CreateNew, &holder{Links: []*chainLink{shared, shared}}, nil)
	require.NoError(t, err)
	require.Len(t, dto.Links, 2)
	assert.Same(t, dto.Links[0], dto.Links[1])
}

func TestEngine_Unflatten(t *testing.T) {
	e := NewEngine(config.NewStore())

	source := map[string]any{
		"Name":          "Bob",
		"Discount":      "0.1",
		"Address.Line1": "Bob's House",
	}

	dto, err := execute[customer](t, e, config.CreateNew, source, nil)
	require.NoError(t, err)

	assert.Equal(t, customer{Name: "Bob", Discount: 0.1, Address: address{Line1: "Bob's House"}}, *dto)
}

func TestEngine_UnflattenElements(t *testing.T) {
	type basket struct{ Lines []line }

	e := NewEngine(config.NewStore())

	source := map[string]any{
		"Lines[0].ID":  1,
		"Lines[0].Qty": "5",
		"Lines[1].ID":  2,
	}

	dto, err := execute[basket](t, e, config.CreateNew, source, nil)
	require.NoError(t, err)
	assert.Equal(t, []line{{ID: 1, Qty: 5}, {ID: 2}}, dto.Lines)
}

func TestEngine_Flatten(t *testing.T) {
	e := NewEngine(config.NewStore())

	out, err := e.Execute(context.Background(), config.CreateNew,
		&customer{Name: "Bob", Discount: 0.5, Address: address{Line1: "Bob's House"}},
		reflect.TypeFor[map[string]any](), reflect.Value{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"Name":          "Bob",
		"Discount":      0.5,
		"Address.Line1": "Bob's House",
	}, out.Interface())
}

func TestEngine_ConfiguredSources(t *testing.T) {
	pair := config.PairOf[order, orderDTO]()

	store := config.NewStore()
	require.NoError(t, store.Add(
		config.DataSource{Pair: pair, Target: "Number", Func: func(o order) string { return "#" + o.Number }},
		config.DataSource{Pair: pair, Target: "Lines[].Qty", Source: "Lines[].ID"},
	))

	e := NewEngine(store)

	dto, err := execute[orderDTO](t, e, config.CreateNew, sampleOrder(), nil)
	require.NoError(t, err)

	assert.Equal(t, "#A-1", dto.Number)
	assert.Equal(t, []lineDTO{{ID: 1, Qty: 1}, {ID: 2, Qty: 2}}, dto.Lines)
}

func TestEngine_Constructor(t *testing.T) {
	type source struct{ Name string }
	type greeting struct {
		Text string
		Name string
	}

	store := config.NewStore()
	require.NoError(t, store.UseConstructor(reflect.TypeFor[greeting](), func(msg string) greeting {
		return greeting{Text: msg}
	}, "msg"))
	require.NoError(t, store.Add(config.DataSource{
		Pair:      config.PairOf[source, greeting](),
		Parameter: "msg",
		Value:     "Hello there!",
		HasValue:  true,
	}))

	e := NewEngine(store)

	out, err := execute[greeting](t, e, config.CreateNew, &source{Name: "Bob"}, nil)
	require.NoError(t, err)
	assert.Equal(t, greeting{Text: "Hello there!", Name: "Bob"}, *out)
}

func TestEngine_MappingErrors(t *testing.T) {
	type source struct{ Name string }
	type target struct{ Name string }

	pair := config.PairOf[source, target]()
	failing := config.DataSource{
		Pair:   pair,
		Target: "Name",
		Source: "Name",
		Func:   func(string) (string, error) { return "", errors.New("boom") },
	}

	store := config.NewStore()
	require.NoError(t, store.Add(failing))

	_, err := execute[target](t, NewEngine(store), config.CreateNew, &source{Name: "Bob"}, nil)
	require.Error(t, err)
	assert.True(t, diagnostic.HasTextCode(err, diagnostic.TextCodeMapping))
	assert.Contains(t, err.Error(), `"Name"`)

	handled := config.NewStore()
	require.NoError(t, handled.Add(failing))
	require.NoError(t, handled.OnError(pair, func(err error, src any) any {
		return &target{Name: "fallback for " + src.(*source).Name}
	}))

	out, err := execute[target](t, NewEngine(handled), config.CreateNew, &source{Name: "Bob"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback for Bob", out.Name)
}

func TestEngine_Procedure(t *testing.T) {
	e := NewEngine(config.NewStore())

	proc, err := e.Procedure(reflect.TypeFor[*order](), reflect.TypeFor[orderDTO](), config.Merge)
	require.NoError(t, err)

	obj, ok := proc.Root.(*node.Object)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[order](), obj.Source)
	assert.Len(t, obj.Members, 4)

	again, err := e.Procedure(reflect.TypeFor[order](), reflect.TypeFor[orderDTO](), config.Merge)
	require.NoError(t, err)
	assert.Same(t, proc, again)

	e.Reset()
	assert.Equal(t, 0, e.Cache().Len())
}

func TestEngine_NoMapping(t *testing.T) {
	e := NewEngine(config.NewStore())

	_, err := e.Procedure(reflect.TypeFor[order](), reflect.TypeFor[int](), config.CreateNew)
	require.Error(t, err)
	assert.True(t, diagnostic.HasTextCode(err, diagnostic.TextCodeConfiguration))
}

func TestEngine_Validate(t *testing.T) {
	type source struct{ Name string }
	type target struct {
		Name  string
		Nmae2 string
	}

	e := NewEngine(config.NewStore())

	d := e.Validate(reflect.TypeFor[source](), reflect.TypeFor[target](), config.CreateNew)
	require.False(t, d.IsValid())
	require.Len(t, d.Errors, 1)
	assert.Equal(t, "unmapped_member", d.Errors[0].Code)
	assert.Equal(t, "Nmae2", d.Errors[0].FieldPath)

	assert.True(t, e.Validate(reflect.TypeFor[order](), reflect.TypeFor[orderDTO](), config.CreateNew).IsValid())
}

type note struct{ Text string }

type noteDTO struct {
	Text   string
	Origin string
}

type envelope struct {
	Note  note
	Notes []note
}

type envelopeDTO struct {
	Note  *noteDTO
	Notes []noteDTO
}

type shape interface{ Area() int }

type square struct{ Side int }

func (s *square) Area() int { return s.Side * s.Side }

type squareDTO struct{ Side int }

type drawing struct{ Shapes []shape }

type drawingDTO struct{ Shapes []any }

func TestEngine_ConfiguredFeatures(t *testing.T) {
	type profile struct {
		Name      string
		AdminNote string
		Tags      []string
		Extra     []string
	}

	type profileDTO struct {
		Name      string
		AdminNote string
		UserNote  string
		Tags      []string
	}

	tests := []struct {
		name      string
		configure func(t *testing.T, s *config.Store)
		run       func(t *testing.T, e *Engine)
	}{
		{
			name: "sequential sources merge after the winner",
			configure: func(t *testing.T, s *config.Store) {
				require.NoError(t, s.Add(config.DataSource{
					Pair:       config.PairOf[profile, profileDTO](),
					Target:     "Tags",
					Source:     "Extra",
					Sequential: true,
				}))
			},
			run: func(t *testing.T, e *Engine) {
				dto, err := execute[profileDTO](t, e, config.CreateNew, &profile{Tags: []string{"a"}, Extra: []string{"b", "a"}}, nil)
				require.NoError(t, err)
				assert.Equal(t, []string{"a", "b"}, dto.Tags)
			},
		},
		{
			name: "filter sources replace automatic matches",
			configure: func(t *testing.T, s *config.Store) {
				require.NoError(t, s.Add(config.DataSource{
					Pair:       config.PairOf[profile, profileDTO](),
					FilterName: "notes",
					Filter:     func(m config.TargetMember) bool { return strings.HasSuffix(m.Name, "Note") },
					Value:      "n/a",
					HasValue:   true,
				}))
			},
			run: func(t *testing.T, e *Engine) {
				dto, err := execute[profileDTO](t, e, config.CreateNew, &profile{Name: "Bob", AdminNote: "secret"}, nil)
				require.NoError(t, err)
				assert.Equal(t, profileDTO{Name: "Bob", AdminNote: "n/a", UserNote: "n/a"}, *dto)
			},
		},
		{
			name: "false condition falls through to the automatic match",
			configure: func(t *testing.T, s *config.Store) {
				require.NoError(t, s.Add(config.DataSource{
					Pair:      config.PairOf[order, orderDTO](),
					Target:    "Number",
					Value:     "VIP",
					HasValue:  true,
					Condition: func(o order) bool { return o.Customer != nil && o.Customer.Discount >= 0.5 },
				}))
			},
			run: func(t *testing.T, e *Engine) {
				dto, err := execute[orderDTO](t, e, config.CreateNew, sampleOrder(), nil)
				require.NoError(t, err)
				assert.Equal(t, "VIP", dto.Number)

				plain := sampleOrder()
				plain.Customer.Discount = 0.1

				dto, err = execute[orderDTO](t, e, config.CreateNew, plain, nil)
				require.NoError(t, err)
				assert.Equal(t, "A-1", dto.Number)
			},
		},
		{
			name: "instance creators apply below their path",
			configure: func(t *testing.T, s *config.Store) {
				require.NoError(t, s.CreateInstancesOf(reflect.TypeFor[noteDTO](), "", func() noteDTO {
					return noteDTO{Origin: "default"}
				}))
				require.NoError(t, s.CreateInstancesOf(reflect.TypeFor[noteDTO](), "Notes", func(n note) noteDTO {
					return noteDTO{Origin: "listed " + n.Text}
				}))
			},
			run: func(t *testing.T, e *Engine) {
				dto, err := execute[envelopeDTO](t, e, config.CreateNew, &envelope{
					Note:  note{Text: "a"},
					Notes: []note{{Text: "b"}, {Text: "c"}},
				}, nil)
				require.NoError(t, err)

				require.NotNil(t, dto.Note)
				assert.Equal(t, noteDTO{Text: "a", Origin: "default"}, *dto.Note)
				assert.Equal(t, []noteDTO{
					{Text: "b", Origin: "listed b"},
					{Text: "c", Origin: "listed c"},
				}, dto.Notes)
			},
		},
		{
			name: "derived pairs pick the element target at runtime",
			configure: func(t *testing.T, s *config.Store) {
				require.NoError(t, s.AddDerivedPair(
					config.TypePair{Source: reflect.TypeFor[shape](), Target: reflect.TypeFor[any]()},
					reflect.TypeFor[*square](), reflect.TypeFor[squareDTO](),
				))
			},
			run: func(t *testing.T, e *Engine) {
				dto, err := execute[drawingDTO](t, e, config.CreateNew, &drawing{Shapes: []shape{&square{Side: 2}}}, nil)
				require.NoError(t, err)
				require.Len(t, dto.Shapes, 1)
				assert.Equal(t, &squareDTO{Side: 2}, dto.Shapes[0])
			},
		},
		{
			name:      "dictionary targets keep or drop absent keys by rule set",
			configure: func(*testing.T, *config.Store) {},
			run: func(t *testing.T, e *Engine) {
				merged, err := execute(t, e, config.Merge, sampleOrder(), &orderDTO{Totals: map[string]int64{"gross": 40}})
				require.NoError(t, err)
				assert.Equal(t, map[string]int64{"gross": 40, "net": 30}, merged.Totals)

				overwritten, err := execute(t, e, config.Overwrite, sampleOrder(), &orderDTO{Totals: map[string]int64{"gross": 40}})
				require.NoError(t, err)
				assert.Equal(t, map[string]int64{"net": 30}, overwritten.Totals)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := config.NewStore()
			tt.configure(t, store)

			tt.run(t, NewEngine(store))
		})
	}
}

func TestEngine_IgnoredMemberWithDataSource(t *testing.T) {
	store := config.NewStore()
	require.NoError(t, store.Ignore(config.PairOf[order, orderDTO](), "Customer.Name"))
	require.NoError(t, store.Add(config.DataSource{
		Pair:     config.PairOf[customer, customerDTO](),
		Target:   "Name",
		Value:    "configured",
		HasValue: true,
	}))

	_, err := execute[orderDTO](t, NewEngine(store), config.CreateNew, sampleOrder(), nil)
	require.Error(t, err)
	assert.True(t, diagnostic.HasTextCode(err, diagnostic.TextCodeConfiguration))
	assert.Contains(t, err.Error(), "ignored member")

	dto, err := execute[customerDTO](t, NewEngine(store), config.CreateNew, sampleOrder().Customer, nil)
	require.NoError(t, err)
	assert.Equal(t, "configured", dto.Name)
}

func TestEngine_UnmappableRuntimeValue(t *testing.T) {
	type boxed struct{ V any }
	type unboxed struct{ V int }
	type point struct{ X int }

	e := NewEngine(config.NewStore())

	out, err := execute[unboxed](t, e, config.CreateNew, &boxed{V: point{X: 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, unboxed{}, *out)

	out, err = execute[unboxed](t, e, config.CreateNew, &boxed{V: "12"}, nil)
	require.NoError(t, err)
	assert.Equal(t, unboxed{V: 12}, *out)

	type bag struct{ Items []any }
	type pointBag struct{ Items []point }

	items, err := execute[pointBag](t, e, config.CreateNew, &bag{Items: []any{7, point{X: 3}}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []point{{}, {X: 3}}, items.Items)

	_, err = e.Execute(context.Background(), config.CreateNew, point{X: 1}, reflect.TypeFor[int](), reflect.Value{})
	require.Error(t, err, "the pair a mapping starts from still reports a missing mapping")
	assert.True(t, diagnostic.HasTextCode(err, diagnostic.TextCodeConfiguration))
}

func TestEngine_DerivedPairAddedBetweenMappings(t *testing.T) {
	store := config.NewStore()
	e := NewEngine(store)
	source := &drawing{Shapes: []shape{&square{Side: 2}}}

	before, err := execute[drawingDTO](t, e, config.CreateNew, source, nil)
	require.NoError(t, err)
	require.Len(t, before.Shapes, 1)
	assert.IsType(t, &square{}, before.Shapes[0])

	require.NoError(t, store.AddDerivedPair(
		config.TypePair{Source: reflect.TypeFor[shape](), Target: reflect.TypeFor[any]()},
		reflect.TypeFor[*square](), reflect.TypeFor[squareDTO](),
	))

	after, err := execute[drawingDTO](t, e, config.CreateNew, source, nil)
	require.NoError(t, err)
	require.Len(t, after.Shapes, 1)
	assert.Equal(t, &squareDTO{Side: 2}, after.Shapes[0])
}

// fieldKey is a dictionary key addressed by its text encoding.
type fieldKey struct{ path string }

func (k fieldKey) MarshalText() ([]byte, error) { return []byte(k.path), nil }

func (k *fieldKey) UnmarshalText(b []byte) error {
	k.path = string(b)
	return nil
}

func TestEngine_TextKeyedDictionaries(t *testing.T) {
	e := NewEngine(config.NewStore())

	source := map[fieldKey]any{
		{path: "Name"}:          "Bob",
		{path: "Address.Line1"}: "Bob's House",
	}

	dto, err := execute[customer](t, e, config.CreateNew, source, nil)
	require.NoError(t, err)
	assert.Equal(t, customer{Name: "Bob", Address: address{Line1: "Bob's House"}}, *dto)

	out, err := e.Execute(context.Background(), config.CreateNew,
		&customer{Name: "Bob", Discount: 0.5, Address: address{Line1: "Bob's House"}},
		reflect.TypeFor[map[fieldKey]any](), reflect.Value{})
	require.NoError(t, err)

	assert.Equal(t, map[fieldKey]any{
		{path: "Name"}:          "Bob",
		{path: "Discount"}:      0.5,
		{path: "Address.Line1"}: "Bob's House",
	}, out.Interface())
}

func TestEngine_MergeIntoFixedArray(t *testing.T) {
	type tagged struct{ Tags []string }
	type slots struct{ Tags [2]string }

	e := NewEngine(config.NewStore())

	dto, err := execute(t, e, config.Merge, &tagged{Tags: []string{"y"}}, &slots{Tags: [2]string{"x", ""}})
	require.NoError(t, err)
	assert.Equal(t, [2]string{"x", "y"}, dto.Tags)

	dto, err = execute(t, e, config.Merge, &tagged{Tags: []string{"y", "z"}}, &slots{Tags: [2]string{"x", ""}})
	require.NoError(t, err)
	assert.Equal(t, [2]string{"x", "y"}, dto.Tags, "elements past the array length are dropped")
}

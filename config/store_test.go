package config

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/internal/diagnostic"
	"object-mapper/primitive"
)

type address struct {
	Line1 string
	Line2 string
}

type customer struct {
	ID       int
	Name     string
	Discount float64
	Address  address
	Tags     []string
}

type addressDTO struct {
	Line1 string
	Line2 string
}

type customerDTO struct {
	ID          int
	Name        string
	DisplayName string
	Discount    string
	Address     *addressDTO
	Code        string
}

func (c customerDTO) Summary() string { return c.Name }

type shape interface{ Area() float64 }

type square struct{ Side float64 }

func (s square) Area() float64 { return s.Side * s.Side }

type namedShape interface {
	shape
	Name() string
}

type circle struct{ R float64 }

func (c circle) Area() float64 { return 3 * c.R * c.R }
func (c circle) Name() string  { return "circle" }

type shapeDTO struct{ Area float64 }

var pair = PairOf[customer, customerDTO]()

func isConfigError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, diagnostic.HasTextCode(err, diagnostic.TextCodeConfiguration), "unexpected error: %v", err)
}

func TestStore_AddConflictingDataSources(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(DataSource{Pair: pair, Target: "DisplayName", Source: "Name"}))

	err := s.Add(DataSource{Pair: pair, Target: "DisplayName", HasValue: true, Value: "x"})
	isConfigError(t, err)
	assert.Contains(t, err.Error(), `"DisplayName"`)
}

func TestStore_AddDataSourcesInSeparateRuleSets(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(
		DataSource{Pair: pair, RuleSets: []RuleSet{Merge}, Target: "DisplayName", Source: "Name"},
		DataSource{Pair: pair, RuleSets: []RuleSet{Overwrite, CreateNew}, Target: "DisplayName", HasValue: true, Value: "x"},
	))

	isConfigError(t, s.Add(DataSource{Pair: pair, Target: "DisplayName", Source: "Name"}))
}

func TestStore_AddNonExclusiveDataSources(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(
		DataSource{Pair: pair, Target: "DisplayName", Source: "Name"},
		DataSource{Pair: pair, Target: "DisplayName", HasValue: true, Value: "vip", Condition: func(c customer) bool { return c.Discount > 0.5 }},
		DataSource{Pair: pair, Target: "DisplayName", HasValue: true, Value: "!", Sequential: true},
	))
}

func TestStore_AddInvalidDataSources(t *testing.T) {
	tests := []struct {
		name string
		ds   DataSource
	}{
		{"no target type", DataSource{Pair: TypePair{Source: pair.Source}, Target: "Name", Source: "Name"}},
		{"no target", DataSource{Pair: pair, Source: "Name"}},
		{"target and parameter", DataSource{Pair: pair, Target: "Name", Parameter: "name", Source: "Name"}},
		{"no value", DataSource{Pair: pair, Target: "Name"}},
		{"constant and source", DataSource{Pair: pair, Target: "Name", Source: "Name", HasValue: true}},
		{"unknown target", DataSource{Pair: pair, Target: "Nme", Source: "Name"}},
		{"read-only target", DataSource{Pair: pair, Target: "Summary", Source: "Name"}},
		{"unknown source", DataSource{Pair: pair, Target: "Name", Source: "Address.Line9"}},
		{"bad path", DataSource{Pair: pair, Target: "Name.", Source: "Name"}},
		{"bad func", DataSource{Pair: pair, Target: "Name", Func: func(a, b string) string { return a }}},
		{"bad condition", DataSource{Pair: pair, Target: "Name", Source: "Name", Condition: func(c customer) string { return "" }}},
		{"self dependency", DataSource{Pair: pair, Target: "Name", Source: "Name", DependsOn: []string{"Name"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isConfigError(t, NewStore().Add(tt.ds))
		})
	}
}

func TestStore_IgnoredMembers(t *testing.T) {
	t.Run("data source after ignore", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.Ignore(pair, "Address"))

		err := s.Add(DataSource{Pair: pair, Target: "Address.Line1", Source: "Name"})
		isConfigError(t, err)
		assert.Contains(t, err.Error(), "ignored member")
	})

	t.Run("ignore after data source", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.Add(DataSource{Pair: pair, Target: "Code", Source: "Name"}))
		isConfigError(t, s.Ignore(pair, "Code"))
	})

	t.Run("unknown member", func(t *testing.T) {
		isConfigError(t, NewStore().Ignore(pair, "Missing"))
	})

	t.Run("data source after filter", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.IgnoreWhere(pair, "names", func(m TargetMember) bool { return m.Name == "Name" }))

		err := s.Add(DataSource{Pair: pair, Target: "Name", HasValue: true, Value: "configured"})
		isConfigError(t, err)
		assert.Contains(t, err.Error(), "ignored member")

		require.NoError(t, s.Add(DataSource{Pair: pair, Target: "DisplayName", Source: "Name"}))
	})

	t.Run("filter after data source", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.Add(DataSource{Pair: pair, Target: "Address.Line1", Source: "Name"}))

		err := s.IgnoreWhere(pair, "address lines", func(m TargetMember) bool {
			return m.Declaring == reflect.TypeFor[addressDTO]() && m.Type.Kind() == reflect.String
		})
		isConfigError(t, err)
		assert.Contains(t, err.Error(), `"address lines"`)

		require.NoError(t, s.IgnoreWhere(pair, "codes", func(m TargetMember) bool { return m.Name == "Code" }))
	})

	t.Run("queries", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.Ignore(pair, "Address"))
		require.NoError(t, s.IgnoreWhere(pair, "codes", func(m TargetMember) bool { return m.Name == "Code" }))

		src, tgt := reflect.TypeFor[customer](), reflect.TypeFor[*customerDTO]()
		assert.True(t, s.IsIgnored(src, tgt, CreateNew, TargetMember{Path: "Address.Line1", Name: "Line1"}))
		assert.True(t, s.IsIgnored(src, tgt, Merge, TargetMember{Path: "Code", Name: "Code"}))
		assert.False(t, s.IsIgnored(src, tgt, Merge, TargetMember{Path: "Name", Name: "Name"}))
		assert.False(t, s.IsIgnored(reflect.TypeFor[address](), tgt, Merge, TargetMember{Path: "Code", Name: "Code"}))
	})
}

func TestStore_DataSourcesFor(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(
		DataSource{Pair: pair, Target: "DisplayName", HasValue: true, Value: "!", Sequential: true},
		DataSource{Pair: pair, FilterName: "names", Filter: func(m TargetMember) bool { return m.Type.Kind() == reflect.String }, Source: "Name"},
		DataSource{Pair: pair, Target: "DisplayName", Source: "Name"},
		DataSource{Pair: pair, RuleSets: []RuleSet{Merge}, Target: "Code", Source: "Name"},
		DataSource{Pair: pair, Parameter: "name", Source: "Name"},
	))

	member := TargetMember{Path: "DisplayName", Name: "DisplayName", Type: reflect.TypeFor[string]()}
	found := s.DataSourcesFor(pair.Source, pair.Target, CreateNew, member)
	require.Len(t, found, 3)
	assert.Equal(t, "DisplayName", found[0].Target)
	assert.True(t, found[0].IsExclusive())
	assert.Equal(t, "names", found[1].FilterName)
	assert.True(t, found[2].Sequential)

	code := TargetMember{Path: "Code", Name: "Code", Type: reflect.TypeFor[string]()}
	assert.Len(t, s.DataSourcesFor(pair.Source, pair.Target, CreateNew, code), 1, "only the filter applies outside Merge")
	assert.Len(t, s.DataSourcesFor(pair.Source, pair.Target, Merge, code), 2)

	assert.Len(t, s.ParameterSourcesFor(pair.Source, pair.Target, Overwrite, "Name"), 1)
	assert.Empty(t, s.ParameterSourcesFor(pair.Source, pair.Target, Overwrite, "id"))
}

func TestStore_Toggles(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.DisableObjectTracking())
	isConfigError(t, s.DisableObjectTracking())
	isConfigError(t, s.EnableIdentityIntegrity())
	assert.True(t, s.ObjectTrackingDisabled())
	assert.False(t, s.IdentityIntegrity())

	s = NewStore()
	require.NoError(t, s.EnableIdentityIntegrity())
	isConfigError(t, s.EnableIdentityIntegrity())
	isConfigError(t, s.DisableObjectTracking())
	assert.True(t, s.IdentityIntegrity())
}

func TestStore_Fingerprint(t *testing.T) {
	s := NewStore()
	first := s.Fingerprint()
	assert.Equal(t, first, s.Fingerprint())

	require.NoError(t, s.Ignore(pair, "Code"))
	second := s.Fingerprint()
	assert.NotEqual(t, first, second)
	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, NewStore().Fingerprint().ID)

	assert.Error(t, s.Ignore(pair, "Missing"))
	assert.Equal(t, second, s.Fingerprint(), "a rejected rule leaves the fingerprint unchanged")
}

func TestStore_Identifiers(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Identify(reflect.TypeFor[customer](), "ID"))
	isConfigError(t, s.Identify(reflect.TypeFor[customer](), "Name"))
	isConfigError(t, s.Identify(reflect.TypeFor[address](), "Missing"))
	require.NoError(t, s.IdentifyFunc(reflect.TypeFor[*address](), func(a address) string { return a.Line1 }))
	isConfigError(t, s.IdentifyFunc(reflect.TypeFor[customerDTO](), func(a address) string { return a.Line1 }))

	id, ok := s.IdentifierFor(reflect.TypeFor[*customer]())
	require.True(t, ok)
	assert.Equal(t, "ID", id.Member)

	id, ok = s.IdentifierFor(reflect.TypeFor[address]())
	require.True(t, ok)
	assert.True(t, id.Func.IsValid())

	_, ok = s.IdentifierFor(reflect.TypeFor[customerDTO]())
	assert.False(t, ok)
}

func TestStore_Constructors(t *testing.T) {
	s := NewStore()
	target := reflect.TypeFor[customerDTO]()

	isConfigError(t, s.UseConstructor(target, func(name string) customerDTO { return customerDTO{} }))
	isConfigError(t, s.UseConstructor(target, func(name string) address { return address{} }, "name"))
	isConfigError(t, s.UseConstructor(target, "not a func", "name"))

	require.NoError(t, s.UseConstructor(target, func(name string) (*customerDTO, error) {
		return &customerDTO{Name: name}, nil
	}, "name"))
	isConfigError(t, s.UseConstructor(target, func() customerDTO { return customerDTO{} }))

	c, ok := s.ConstructorFor(reflect.TypeFor[*customerDTO]())
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, c.Params)
}

func TestStore_InstanceCreators(t *testing.T) {
	s := NewStore()
	typ := reflect.TypeFor[addressDTO]()

	require.NoError(t, s.CreateInstancesOf(typ, "", func() *addressDTO { return &addressDTO{Line2: "any"} }))
	require.NoError(t, s.CreateInstancesOf(typ, "Billing", func(a address) addressDTO { return addressDTO{Line2: "billing"} }))
	require.NoError(t, s.CreateInstancesOf(typ, "Billing.Previous", func() addressDTO { return addressDTO{Line2: "previous"} }))
	isConfigError(t, s.CreateInstancesOf(typ, "Billing", func() addressDTO { return addressDTO{} }))
	isConfigError(t, s.CreateInstancesOf(typ, "", func() customerDTO { return customerDTO{} }))

	tests := map[string]string{
		"":                       "",
		"Shipping":               "",
		"Billing":                "Billing",
		"Billing.Previous":       "Billing.Previous",
		"Billing.Previous.Other": "Billing.Previous",
		"Billing.Other":          "Billing",
		"BillingAddress":         "",
	}

	for path, expected := range tests {
		c, ok := s.InstanceCreatorFor(reflect.TypeFor[*addressDTO](), path)
		require.True(t, ok, path)
		assert.Equal(t, expected, c.Path, path)
	}

	_, ok := s.InstanceCreatorFor(reflect.TypeFor[customerDTO](), "")
	assert.False(t, ok)
}

func TestStore_DerivedTypePairs(t *testing.T) {
	s := NewStore()
	base := PairOf[shape, shapeDTO]()

	require.NoError(t, s.AddDerivedPair(base, reflect.TypeFor[namedShape](), reflect.TypeFor[shapeDTO]()))
	require.NoError(t, s.AddDerivedPair(base, reflect.TypeFor[square](), reflect.TypeFor[shapeDTO]()))
	require.NoError(t, s.AddDerivedPair(base, reflect.TypeFor[circle](), reflect.TypeFor[shapeDTO]()))
	isConfigError(t, s.AddDerivedPair(base, reflect.TypeFor[square](), reflect.TypeFor[shapeDTO]()))
	isConfigError(t, s.AddDerivedPair(base, reflect.TypeFor[address](), reflect.TypeFor[shapeDTO]()))

	derived := s.DerivedTypePairs(reflect.TypeFor[shape](), reflect.TypeFor[shapeDTO]())
	require.Len(t, derived, 3)
	assert.Equal(t, reflect.TypeFor[square](), derived[0].Source)
	assert.Equal(t, reflect.TypeFor[circle](), derived[1].Source)
	assert.Equal(t, reflect.TypeFor[namedShape](), derived[2].Source)

	assert.Empty(t, s.DerivedTypePairs(reflect.TypeFor[customer](), reflect.TypeFor[shapeDTO]()))
}

type level int

const (
	levelLow level = iota
	levelHigh
)

func TestStore_ConversionCatalog(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.FormatStrings(reflect.TypeFor[float64](), "%.2f"))
	isConfigError(t, s.FormatStrings(reflect.TypeFor[address](), "%v"))
	isConfigError(t, s.FormatStrings(reflect.TypeFor[string](), "%s"))
	isConfigError(t, s.FormatStrings(reflect.TypeFor[time.Time](), ""))

	format, ok := s.StringFormat(reflect.TypeFor[*float64]())
	require.True(t, ok)
	assert.Equal(t, "%.2f", format)

	require.NoError(t, s.RegisterEnum(reflect.TypeFor[level](),
		primitive.EnumMember{Name: "Low", Value: levelLow},
		primitive.EnumMember{Name: "High", Value: levelHigh},
	))
	isConfigError(t, s.RegisterEnum(reflect.TypeFor[address]()))
	assert.Len(t, s.EnumMembers(reflect.TypeFor[level]()), 2)

	require.NoError(t, s.PairEnums(reflect.TypeFor[level](), reflect.TypeFor[string](), map[string]string{"High": "urgent"}))
	isConfigError(t, s.PairEnums(reflect.TypeFor[level](), reflect.TypeFor[string](), map[string]string{"High": "later"}))
	isConfigError(t, s.PairEnums(reflect.TypeFor[address](), reflect.TypeFor[string](), nil))

	before := s.Fingerprint()
	isConfigError(t, s.PairEnums(reflect.TypeFor[level](), reflect.TypeFor[string](), map[string]string{
		"Low":  "calm",
		"High": "later",
	}))
	assert.Equal(t, before, s.Fingerprint())

	_, ok = s.EnumPairing(reflect.TypeFor[level](), reflect.TypeFor[string](), "Low")
	assert.False(t, ok, "a rejected pairing writes none of its members")

	paired, ok := s.EnumPairing(reflect.TypeFor[level](), reflect.TypeFor[string](), "high")
	require.True(t, ok)
	assert.Equal(t, "urgent", paired)

	require.NoError(t, s.AddCaster(func(l level) string { return "L" }))
	isConfigError(t, s.AddCaster(func() string { return "" }))

	_, ok = s.Caster(reflect.TypeFor[level](), reflect.TypeFor[string]())
	assert.True(t, ok)
}

func TestStore_Naming(t *testing.T) {
	s := NewStore()
	isConfigError(t, s.SetNaming(Naming{Separator: "["}))
	isConfigError(t, s.SetNaming(Naming{Prefixes: []string{""}}))
	require.NoError(t, s.SetNaming(Naming{Prefixes: []string{"m"}, Separator: "_"}))
	assert.Equal(t, "_", s.Naming().Separator)
}

func TestStore_ErrorHandlers(t *testing.T) {
	s := NewStore()
	global := func(error, any) any { return "global" }
	exact := func(error, any) any { return "exact" }

	require.NoError(t, s.OnError(TypePair{}, global))
	require.NoError(t, s.OnError(pair, exact))
	isConfigError(t, s.OnError(pair, exact))
	isConfigError(t, s.OnError(pair, nil))

	h, ok := s.ErrorHandlerFor(pair.Source, pair.Target)
	require.True(t, ok)
	assert.Equal(t, "exact", h(nil, nil))

	h, ok = s.ErrorHandlerFor(reflect.TypeFor[address](), reflect.TypeFor[addressDTO]())
	require.True(t, ok)
	assert.Equal(t, "global", h(nil, nil))
}

func TestStore_ConcurrentQueries(t *testing.T) {
	s := NewStore()
	member := TargetMember{Path: "Name", Name: "Name"}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if i%2 == 0 {
				_ = s.Add(DataSource{Pair: pair, Target: "Name", Source: "Name", Sequential: true})
				return
			}

			_ = s.DataSourcesFor(pair.Source, pair.Target, CreateNew, member)
			_ = s.Fingerprint()
		}()
	}

	wg.Wait()
	assert.Len(t, s.DataSourcesFor(pair.Source, pair.Target, CreateNew, member), 4)
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type capturingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

var _ glog.Logger = (*capturingLogger)(nil)

func (l *capturingLogger) log(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *capturingLogger) Trace(msg string, args ...any)               { l.log("trace", msg, args...) }
func (l *capturingLogger) Debug(msg string, args ...any)               { l.log("debug", msg, args...) }
func (l *capturingLogger) Info(msg string, args ...any)                { l.log("info", msg, args...) }
func (l *capturingLogger) Warn(msg string, args ...any)                { l.log("warn", msg, args...) }
func (l *capturingLogger) Error(msg string, args ...any)               { l.log("error", msg, args...) }
func (l *capturingLogger) Fatal(msg string, args ...any)               { l.log("fatal", msg, args...) }
func (l *capturingLogger) WithContext(context.Context) glog.Logger { return l }

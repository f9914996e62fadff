package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customerMapping = `
naming:
  separator: _
settings:
  identity_integrity: true
identifiers:
  customer: ID
mappings:
  - source: customer
    target: customerDTO
    121:
      Name: DisplayName
    fields:
      - target: Code
        default: C-1
      - target: Discount
        source: Discount
        transform: Percent
      - parameter: name
        source: Name
    ignore: [Address]
    constructor:
      func: NewCustomerDTO
      params: [name]
    on_error: Keep
`

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := NewRegistry()
	reg.Register(customer{}, customerDTO{}, address{}, addressDTO{})
	require.NoError(t, reg.RegisterFunc("Percent", func(d float64) string { return "" }))
	require.NoError(t, reg.RegisterFunc("NewCustomerDTO", func(name string) *customerDTO { return &customerDTO{Name: name} }))
	require.NoError(t, reg.RegisterFunc("Keep", func(err error, src any) any { return nil }))

	return reg
}

func TestStore_ApplyYAML(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.ApplyYAML([]byte(customerMapping), newTestRegistry(t)))

	src, tgt := reflect.TypeFor[customer](), reflect.TypeFor[customerDTO]()

	found := s.DataSourcesFor(src, tgt, CreateNew, TargetMember{Path: "DisplayName", Name: "DisplayName"})
	require.Len(t, found, 1)
	assert.Equal(t, "Name", found[0].Source)

	found = s.DataSourcesFor(src, tgt, Overwrite, TargetMember{Path: "Code", Name: "Code"})
	require.Len(t, found, 1)
	assert.Equal(t, "C-1", found[0].Value)

	found = s.DataSourcesFor(src, tgt, Merge, TargetMember{Path: "Discount", Name: "Discount"})
	require.Len(t, found, 1)
	assert.True(t, found[0].FuncValue().IsValid())

	assert.Len(t, s.ParameterSourcesFor(src, tgt, CreateNew, "name"), 1)
	assert.True(t, s.IsIgnored(src, tgt, CreateNew, TargetMember{Path: "Address.Line1", Name: "Line1"}))
	assert.True(t, s.IdentityIntegrity())
	assert.Equal(t, "_", s.Naming().Separator)

	id, ok := s.IdentifierFor(src)
	require.True(t, ok)
	assert.Equal(t, "ID", id.Member)

	c, ok := s.ConstructorFor(tgt)
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, c.Params)

	_, ok = s.ErrorHandlerFor(src, tgt)
	assert.True(t, ok)
}

func TestStore_ApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customerMapping), 0o600))

	s := NewStore()
	require.NoError(t, s.ApplyFile(path, newTestRegistry(t)))
	assert.True(t, s.IdentityIntegrity())

	isConfigError(t, NewStore().ApplyFile(filepath.Join(t.TempDir(), "missing.yaml"), newTestRegistry(t)))
}

func TestStore_ApplyInvalid(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		s := NewStore()
		before := s.Fingerprint()

		err := s.ApplyYAML([]byte(strings.Replace(customerMapping, "target: customerDTO", "target: customerDTOs", 1)), newTestRegistry(t))
		isConfigError(t, err)
		assert.Contains(t, err.Error(), "mapping file is invalid")
		assert.Equal(t, before, s.Fingerprint(), "an invalid file adds no rule")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		isConfigError(t, NewStore().ApplyYAML([]byte("mappings: ["), newTestRegistry(t)))
	})

	t.Run("conflict with a programmatic rule", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.Add(DataSource{Pair: pair, Target: "DisplayName", Source: "Code"}))

		err := s.ApplyYAML([]byte(customerMapping), newTestRegistry(t))
		isConfigError(t, err)
		assert.Contains(t, err.Error(), "DisplayName")
	})
}

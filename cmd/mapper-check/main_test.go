package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/internal/mapping"
)

const orders = `
identifiers:
  store.OrderItem: SKU
enums:
  - source: store.OrderStatus
    target: warehouse.Status
    pairs:
      REFUNDED: Returned
mappings:
  - source: store.Order
    target: warehouse.Order
    rule_sets: merge
    121:
      Items: Lines
    fields:
      - target: Total
        transform: OrderTotal
    ignore: Notes
`

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestCheck(t *testing.T) {
	t.Cleanup(func() { strict = false })

	diags, err := check(writeFile(t, orders))
	require.NoError(t, err)
	assert.True(t, diags.IsValid())

	strict = true

	diags, err = check(writeFile(t, orders))
	require.NoError(t, err)
	assert.False(t, diags.IsValid())

	strict = false

	diags, err = check(writeFile(t, "settings:\n  identity_integrity: true\n  disable_object_tracking: true\n"))
	require.NoError(t, err)
	require.Len(t, diags.Errors, 1)
	assert.Equal(t, "exclusive_settings", diags.Errors[0].Code)

	_, err = check(writeFile(t, "mappings: ["))
	require.Error(t, err)
}

func TestExplain(t *testing.T) {
	mf, err := mapping.Parse([]byte(orders))
	require.NoError(t, err)

	mapping.NormalizeMappingFile(mf)

	var out bytes.Buffer
	explain(&out, mf)

	assert.Equal(t, `identify store.OrderItem by SKU
enum store.OrderStatus.REFUNDED -> warehouse.Status.Returned

store.Order -> warehouse.Order [merge]
  Lines <- Items
  Total <- OrderTotal(source)
  Notes ignored
`, out.String())
}

func TestRootCommand(t *testing.T) {
	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check", writeFile(t, orders)})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "1 mapping files ok")
}

package analyze

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypePath(t *testing.T) {
	// Simple path
	p1 := NewTypePath("Order")
	assert.Equal(t, "Order", p1.String())

	// Field path
	p2 := p1.Field("Items")
	assert.Equal(t, "Order.Items", p2.String())

	// Slice path
	p3 := p2.Slice()
	assert.Equal(t, "Order.Items[]", p3.String())

	// Field in slice element
	p4 := p2.Index(2).Field("ProductID")
	assert.Equal(t, "Order.Items[2].ProductID", p4.String())

	// Pointer
	p5 := NewTypePath("Customer").Field("Address").Pointer()
	assert.Equal(t, "Customer.*Address", p5.String())

	// Relative path
	p6 := NewTypePath("").Field("Address").Field("Line1")
	assert.Equal(t, "Address.Line1", p6.String())
}

func TestTypeName(t *testing.T) {
	type local struct{}

	tests := []struct {
		typ    reflect.Type
		expect string
	}{
		{reflect.TypeOf(0), "int"},
		{reflect.TypeOf(time.Time{}), "time.Time"},
		{reflect.TypeOf([]*time.Time{}), "[]*time.Time"},
		{reflect.TypeOf(map[string]any{}), "map[string]interface {}"},
		{reflect.TypeOf([2]int{}), "[2]int"},
		{reflect.TypeOf(local{}), "analyze.local"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, TypeName(tt.typ))
		})
	}

	assert.Equal(t, "int->string", PairName(reflect.TypeOf(0), reflect.TypeOf("")))
}

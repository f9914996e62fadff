package match

import (
	"reflect"
	"testing"
	"time"

	"object-mapper/primitive"
)

type compatAddress struct {
	Line1 string
}

type compatOtherAddress struct {
	Line1 string
}

func TestTypeCompatibility_String(t *testing.T) {
	tests := []struct {
		compat   TypeCompatibility
		expected string
	}{
		{TypeIdentical, "identical"},
		{TypeAssignable, "assignable"},
		{TypeConvertible, "convertible"},
		{TypeNeedsMapping, "needs_mapping"},
		{TypeIncompatible, "incompatible"},
		{TypeCompatibility(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.compat.String(); got != tt.expected {
				t.Errorf("TypeCompatibility.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestScoreTypeCompatibility(t *testing.T) {
	conv := primitive.NewConverter(primitive.CategoryAll, nil)

	var (
		intType     = reflect.TypeOf(0)
		int64Type   = reflect.TypeOf(int64(0))
		stringType  = reflect.TypeOf("")
		timeType    = reflect.TypeOf(time.Time{})
		boolPtr     = reflect.TypeOf(new(bool))
		anyType     = reflect.TypeOf((*any)(nil)).Elem()
		addressType = reflect.TypeOf(compatAddress{})
		otherType   = reflect.TypeOf(&compatOtherAddress{})
		sliceType   = reflect.TypeOf([]compatAddress{})
		mapType     = reflect.TypeOf(map[string]any{})
		funcType    = reflect.TypeOf(func() {})
	)

	tests := []struct {
		name     string
		source   reflect.Type
		target   reflect.Type
		expected TypeCompatibility
	}{
		{"identical int", intType, intType, TypeIdentical},
		{"int to any", intType, anyType, TypeAssignable},
		{"pointer indirection", reflect.TypeOf(new(int)), intType, TypeAssignable},
		{"int to int64", intType, int64Type, TypeConvertible},
		{"string to int", stringType, intType, TypeConvertible},
		{"string to time", stringType, timeType, TypeConvertible},
		{"string to bool pointer", stringType, boolPtr, TypeConvertible},
		{"time to bool", timeType, reflect.TypeOf(false), TypeIncompatible},
		{"struct to struct", addressType, otherType, TypeNeedsMapping},
		{"dictionary to struct", mapType, addressType, TypeNeedsMapping},
		{"interface source", anyType, addressType, TypeNeedsMapping},
		{"slice to struct", sliceType, addressType, TypeIncompatible},
		{"struct to string", addressType, stringType, TypeIncompatible},
		{"func to struct", funcType, addressType, TypeIncompatible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScoreTypeCompatibility(tt.source, tt.target, conv)
			if result.Compatibility != tt.expected {
				t.Errorf("ScoreTypeCompatibility(%s, %s) = %v (%s), want %v",
					tt.source, tt.target, result.Compatibility, result.Reason, tt.expected)
			}
		})
	}
}

func TestCompatible_NoConverter(t *testing.T) {
	if Compatible(reflect.TypeOf(""), reflect.TypeOf(0), nil) {
		t.Error("string to int must not be compatible without a converter")
	}

	if !Compatible(reflect.TypeOf(""), reflect.TypeOf(""), nil) {
		t.Error("identical types are always compatible")
	}
}

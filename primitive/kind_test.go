package primitive_test

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"object-mapper/primitive"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Money float64
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Money(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(uuid.UUID{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindPrimitiveEnum
	// KindPrimitiveEnum
	// KindFloat64
	// KindDuration
	// KindTime
	// KindUUID
	// KindEnum(0)
}

func ExampleBaseKind() {
	type Status int8

	fmt.Println(primitive.BaseKind(reflect.TypeOf(Status(0))))
	fmt.Println(primitive.BaseKind(reflect.TypeOf(uint16(0))))
	// Output:
	// KindInt8
	// KindUint16
}

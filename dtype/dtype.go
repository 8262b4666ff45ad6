// Package dtype defines the element types a dataset variable can carry.
//
// Engines report the element type of every variable as a DType, and all
// materialized blocks carry one. The set mirrors the classic scientific
// file formats: fixed-width integers, IEEE floats, strings and booleans.
package dtype

import (
	"fmt"
	"reflect"
)

// DType identifies the element type of a variable or block.
type DType uint8

const (
	// Invalid is the zero DType. It never describes real data.
	Invalid DType = iota

	Int8
	Int16
	Int32
	Int64

	Uint8
	Uint16
	Uint32
	Uint64

	Float32
	Float64

	String
	Bool
)

// Size returns the width of one element in bytes.
// String and Invalid have no fixed width and report 0.
func (dt DType) Size() int {
	switch dt {
	case Int8, Uint8, Bool:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// IsNumeric reports whether dt is an integer or floating point type.
func (dt DType) IsNumeric() bool {
	return dt >= Int8 && dt <= Float64
}

// String returns the CDL-flavored name of the type.
func (dt DType) String() string {
	switch dt {
	case Int8:
		return "byte"
	case Int16:
		return "short"
	case Int32:
		return "int"
	case Int64:
		return "int64"
	case Uint8:
		return "ubyte"
	case Uint16:
		return "ushort"
	case Uint32:
		return "uint"
	case Uint64:
		return "uint64"
	case Float32:
		return "float"
	case Float64:
		return "double"
	case String:
		return "string"
	case Bool:
		return "bool"
	default:
		return "invalid"
	}
}

// Of returns the DType of a Go value. Slices report their element type,
// so Of([]float64{...}) and Of(float64(0)) both return Float64.
// Unknown kinds return Invalid.
func Of(v any) DType {
	if v == nil {
		return Invalid
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}

	return fromKind(t.Kind())
}

func fromKind(k reflect.Kind) DType {
	switch k {
	case reflect.Int8:
		return Int8
	case reflect.Int16:
		return Int16
	case reflect.Int32:
		return Int32
	case reflect.Int64, reflect.Int:
		return Int64
	case reflect.Uint8:
		return Uint8
	case reflect.Uint16:
		return Uint16
	case reflect.Uint32:
		return Uint32
	case reflect.Uint64, reflect.Uint:
		return Uint64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	case reflect.String:
		return String
	case reflect.Bool:
		return Bool
	default:
		return Invalid
	}
}

// FromGoName maps a Go type name ("float32", "int16", ...) to its DType.
// Engines whose libraries report Go type names use this for translation.
func FromGoName(name string) (DType, bool) {
	switch name {
	case "int8":
		return Int8, true
	case "int16":
		return Int16, true
	case "int32":
		return Int32, true
	case "int64", "int":
		return Int64, true
	case "uint8", "byte":
		return Uint8, true
	case "uint16":
		return Uint16, true
	case "uint32":
		return Uint32, true
	case "uint64", "uint":
		return Uint64, true
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	case "string":
		return String, true
	case "bool":
		return Bool, true
	default:
		return Invalid, false
	}
}

// MakeSlice returns a flat []T of length n for the element type dt,
// e.g. MakeSlice(Float64, 4) returns a []float64 of length 4.
func (dt DType) MakeSlice(n int) (any, error) {
	switch dt {
	case Int8:
		return make([]int8, n), nil
	case Int16:
		return make([]int16, n), nil
	case Int32:
		return make([]int32, n), nil
	case Int64:
		return make([]int64, n), nil
	case Uint8:
		return make([]uint8, n), nil
	case Uint16:
		return make([]uint16, n), nil
	case Uint32:
		return make([]uint32, n), nil
	case Uint64:
		return make([]uint64, n), nil
	case Float32:
		return make([]float32, n), nil
	case Float64:
		return make([]float64, n), nil
	case String:
		return make([]string, n), nil
	case Bool:
		return make([]bool, n), nil
	default:
		return nil, fmt.Errorf("dtype: cannot allocate slice of %s", dt)
	}
}

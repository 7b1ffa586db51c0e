package xprt

import (
	"fmt"
	"math"
	"strconv"
)

// ValueType is the type tag of a metric value.
type ValueType uint32

const (
	TypeNone ValueType = iota
	TypeU8
	TypeS8
	TypeU16
	TypeS16
	TypeU32
	TypeS32
	TypeU64
	TypeS64
	TypeF
	TypeD
)

var typeNames = [...]string{
	TypeNone: "none",
	TypeU8:   "u8",
	TypeS8:   "s8",
	TypeU16:  "u16",
	TypeS16:  "s16",
	TypeU32:  "u32",
	TypeS32:  "s32",
	TypeU64:  "u64",
	TypeS64:  "s64",
	TypeF:    "f",
	TypeD:    "d",
}

func (t ValueType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// ParseValueType is the inverse of ValueType.String.
func ParseValueType(s string) (ValueType, error) {
	for i, name := range typeNames {
		if name == s && ValueType(i) != TypeNone {
			return ValueType(i), nil
		}
	}
	return TypeNone, fmt.Errorf("unknown metric type %q", s)
}

// Value holds the raw 64-bit pattern of a metric value. Signed values are
// sign-extended, floats are stored as IEEE-754 bits.
type Value uint64

func FromUint(v uint64) Value { return Value(v) }
func FromInt(v int64) Value { return Value(uint64(v)) }
func FromFloat(v float64) Value { return Value(math.Float64bits(v)) }

func (v Value) Uint() uint64 { return uint64(v) }
func (v Value) Int() int64 { return int64(v) }
func (v Value) Float() float64 { return math.Float64frombits(uint64(v)) }

// Format renders v as the given type.
func (v Value) Format(t ValueType) string {
	switch t {
	case TypeU8:
		return strconv.FormatUint(uint64(uint8(v)), 10)
	case TypeS8:
		return strconv.FormatInt(int64(int8(v)), 10)
	case TypeU16:
		return strconv.FormatUint(uint64(uint16(v)), 10)
	case TypeS16:
		return strconv.FormatInt(int64(int16(v)), 10)
	case TypeU32:
		return fmt.Sprintf("%8d", uint32(v))
	case TypeS32:
		return strconv.FormatInt(int64(int32(v)), 10)
	case TypeU64:
		return strconv.FormatUint(uint64(v), 10)
	case TypeS64:
		return strconv.FormatInt(int64(v), 10)
	case TypeF, TypeD:
		return fmt.Sprintf("%f", v.Float())
	default:
		return fmt.Sprintf("%#x", uint64(v))
	}
}

// MetricDesc names one metric and its type.
type MetricDesc struct {
	Name string
	Type ValueType
}

// Metric pairs a descriptor with its current value.
type Metric struct {
	Desc  MetricDesc
	Value Value
}

// Region describes one storage region of a set.
type Region struct {
	Size  uint32
	Inuse uint32
	GN    uint64
}

// Detail is the structural layout of a set: its metadata and data regions.
type Detail struct {
	Meta        Region
	Data        Region
	MetricCount uint32
}

package metricsv1

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// wireMessage is implemented by every message carried by the MetricSets service.
type wireMessage interface {
	appendWire(b []byte) []byte
	consumeWire(b []byte) error
}

// DirRequest asks for the set directory. It carries no fields yet.
type DirRequest struct{}

// DirPage is one page of the set directory.
type DirPage struct {
	Names []string
	More  bool
}

// LookupRequest names the set to look up.
type LookupRequest struct {
	Name string
}

// MetricDesc describes one metric of a set schema.
type MetricDesc struct {
	Name string
	Type uint32
}

// LookupReply carries the metadata half of a set.
type LookupReply struct {
	Name      string
	MetaSize  uint32
	MetaInuse uint32
	MetaGN    uint64
	DataSize  uint32
	Metrics   []*MetricDesc
}

// UpdateRequest names the set whose data should be fetched.
type UpdateRequest struct {
	Name string
}

// UpdateReply carries the data half of a set. Values are raw 64-bit
// patterns in schema order.
type UpdateReply struct {
	MetaGN    uint64
	DataGN    uint64
	DataInuse uint32
	Values    []uint64
}

// PingRequest is the liveness probe.
type PingRequest struct{}

// PingReply answers a liveness probe.
type PingReply struct {
	Ok string
}

func (m *DirPage) GetNames() []string {
	if m == nil {
		return nil
	}
	return m.Names
}

func (m *DirPage) GetMore() bool { return m != nil && m.More }

func (m *LookupReply) GetMetrics() []*MetricDesc {
	if m == nil {
		return nil
	}
	return m.Metrics
}

func (m *UpdateReply) GetValues() []uint64 {
	if m == nil {
		return nil
	}
	return m.Values
}

func (m *PingReply) GetOk() string {
	if m == nil {
		return ""
	}
	return m.Ok
}

// --- encoding ---

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func (m *DirRequest) appendWire(b []byte) []byte { return b }

func (m *DirRequest) consumeWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		return protowire.ConsumeFieldValue(num, typ, b)
	})
}

func (m *DirPage) appendWire(b []byte) []byte {
	for _, name := range m.Names {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, name)
	}
	if m.More {
		b = appendVarint(b, 2, protowire.EncodeBool(true))
	}
	return b
}

func (m *DirPage) consumeWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n >= 0 {
				m.Names = append(m.Names, v)
			}
			return n
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.More = protowire.DecodeBool(v)
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
}

func (m *LookupRequest) appendWire(b []byte) []byte { return appendString(b, 1, m.Name) }

func (m *LookupRequest) consumeWire(b []byte) error {
	return consumeName(b, &m.Name)
}

func (m *MetricDesc) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	return appendVarint(b, 2, uint64(m.Type))
}

func (m *MetricDesc) consumeWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			m.Name = v
			return n
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Type = uint32(v)
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
}

func (m *LookupReply) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	b = appendVarint(b, 2, uint64(m.MetaSize))
	b = appendVarint(b, 3, uint64(m.MetaInuse))
	b = appendVarint(b, 4, m.MetaGN)
	b = appendVarint(b, 5, uint64(m.DataSize))
	for _, md := range m.Metrics {
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendBytes(b, md.appendWire(nil))
	}
	return b
}

func (m *LookupReply) consumeWire(b []byte) error {
	var nested error
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			m.Name = v
			return n
		}
		if num == 6 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n
			}
			md := &MetricDesc{}
			if err := md.consumeWire(v); err != nil {
				nested = err
				return -1
			}
			m.Metrics = append(m.Metrics, md)
			return n
		}
		if typ != protowire.VarintType {
			return protowire.ConsumeFieldValue(num, typ, b)
		}
		v, n := protowire.ConsumeVarint(b)
		switch num {
		case 2:
			m.MetaSize = uint32(v)
		case 3:
			m.MetaInuse = uint32(v)
		case 4:
			m.MetaGN = v
		case 5:
			m.DataSize = uint32(v)
		}
		return n
	})
	if nested != nil {
		return fmt.Errorf("metric descriptor: %w", nested)
	}
	return err
}

func (m *UpdateRequest) appendWire(b []byte) []byte { return appendString(b, 1, m.Name) }

func (m *UpdateRequest) consumeWire(b []byte) error {
	return consumeName(b, &m.Name)
}

func (m *UpdateReply) appendWire(b []byte) []byte {
	b = appendVarint(b, 1, m.MetaGN)
	b = appendVarint(b, 2, m.DataGN)
	b = appendVarint(b, 3, uint64(m.DataInuse))
	if len(m.Values) > 0 {
		var packed []byte
		for _, v := range m.Values {
			packed = protowire.AppendVarint(packed, v)
		}
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	return b
}

func (m *UpdateReply) consumeWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 4 && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n
			}
			for len(packed) > 0 {
				v, k := protowire.ConsumeVarint(packed)
				if k < 0 {
					return k
				}
				m.Values = append(m.Values, v)
				packed = packed[k:]
			}
			return n
		case num == 4 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Values = append(m.Values, v)
			return n
		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			switch num {
			case 1:
				m.MetaGN = v
			case 2:
				m.DataGN = v
			case 3:
				m.DataInuse = uint32(v)
			}
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
}

func (m *PingRequest) appendWire(b []byte) []byte { return b }

func (m *PingRequest) consumeWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		return protowire.ConsumeFieldValue(num, typ, b)
	})
}

func (m *PingReply) appendWire(b []byte) []byte { return appendString(b, 1, m.Ok) }

func (m *PingReply) consumeWire(b []byte) error {
	return consumeName(b, &m.Ok)
}

// consumeName decodes a message whose only known field is string field 1.
func consumeName(b []byte, dst *string) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			*dst = v
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
}

// consumeFields walks b tag by tag. fn consumes the value that follows the
// tag and returns the number of bytes used, or a negative protowire error.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m := fn(num, typ, b)
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

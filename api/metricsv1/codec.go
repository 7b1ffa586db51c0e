package metricsv1

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype under which the MetricSets
// messages are exchanged.
const CodecName = "metricwire"

func init() {
	encoding.RegisterCodec(codec{})
}

// codec encodes MetricSets messages in protobuf wire format.
type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, fmt.Errorf("metricwire: cannot marshal %T", v)
	}
	return m.appendWire(nil), nil
}

func (codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(wireMessage)
	if !ok {
		return fmt.Errorf("metricwire: cannot unmarshal into %T", v)
	}
	return m.consumeWire(data)
}

func (codec) Name() string { return CodecName }

package metricsv1

import (
	"testing"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCodecRegistered(t *testing.T) {
	if c := encoding.GetCodec(CodecName); c == nil {
		t.Fatalf("codec %q not registered", CodecName)
	}
}

func TestLookupReplyNestedDescriptors(t *testing.T) {
	in := &LookupReply{
		Name:      "node1/meminfo",
		MetaSize:  512,
		MetaInuse: 344,
		MetaGN:    3,
		DataSize:  48,
		Metrics: []*MetricDesc{
			{Name: "MemTotal", Type: 7},
			{Name: "MemFree", Type: 7},
		},
	}
	data, err := codec{}.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := &LookupReply{}
	if err := (codec{}).Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Name != in.Name || out.MetaSize != 512 || out.MetaInuse != 344 || out.MetaGN != 3 || out.DataSize != 48 {
		t.Fatalf("unexpected header %+v", out)
	}
	if len(out.Metrics) != 2 || out.Metrics[1].Name != "MemFree" || out.Metrics[1].Type != 7 {
		t.Fatalf("unexpected metrics %+v", out.GetMetrics())
	}
}

func TestUpdateReplyAcceptsUnpackedValuesAndSkipsUnknown(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 9)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, 11)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, 12)
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "future field")

	out := &UpdateReply{}
	if err := out.consumeWire(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.DataGN != 9 || len(out.Values) != 2 || out.Values[0] != 11 || out.Values[1] != 12 {
		t.Fatalf("unexpected reply %+v", out)
	}
}

func TestDirPageEmptyLastPage(t *testing.T) {
	data, err := codec{}.Marshal(&DirPage{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty encoding, got %x", data)
	}
	page := &DirPage{}
	if err := (codec{}).Unmarshal(data, page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if page.GetMore() || len(page.GetNames()) != 0 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestCodecRejectsForeignTypes(t *testing.T) {
	if _, err := (codec{}).Marshal("nope"); err == nil {
		t.Fatal("expected marshal error")
	}
	if err := (codec{}).Unmarshal([]byte{0xff}, &DirPage{}); err == nil {
		t.Fatal("expected parse error on truncated tag")
	}
}

package registry

const (
	metaHeader = 64
	dataHeader = 32
	metaAlign  = 256
	dataAlign  = 64
)

// Layout mirrors the metadata and data regions of a set as exposed on the
// wire. Inuse counts the bytes the schema occupies; Size rounds it up to the
// region allocation unit.
type Layout struct {
	MetaSize  uint32
	MetaInuse uint32
	DataSize  uint32
	DataInuse uint32
}

func layoutOf(schema []MetricSchema) Layout {
	meta := metaHeader
	for _, m := range schema {
		// name + NUL padded to 8, then type and offset words
		meta += roundUp(len(m.Name)+1, 8) + 16
	}
	data := dataHeader + 8*len(schema)
	return Layout{
		MetaSize:  uint32(roundUp(meta, metaAlign)),
		MetaInuse: uint32(meta),
		DataSize:  uint32(roundUp(data, dataAlign)),
		DataInuse: uint32(data),
	}
}

func roundUp(n, unit int) int {
	return (n + unit - 1) / unit * unit
}

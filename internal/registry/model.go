package registry

import "time"

// MetricSchema describes one metric of a set.
type MetricSchema struct {
	Name string `json:"name"`
	Type string `json:"type"` // u8 s8 u16 s16 u32 s32 u64 s64 f d
}

// Set holds a published metric set. It is immutable outside registry methods.
type Set struct {
	Name   string         `json:"name"`
	Schema []MetricSchema `json:"schema"`
	// Values holds raw 64-bit patterns, one per schema entry.
	Values    []uint64  `json:"values"`
	Tags      []string  `json:"tags,omitempty"`
	MetaGN    uint64    `json:"meta_gn"`
	DataGN    uint64    `json:"data_gn"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Layout returns the region sizes a reader sees for the set.
func (s Set) Layout() Layout {
	return layoutOf(s.Schema)
}

// ListFilter allows narrowing the registry query.
type ListFilter struct {
	Prefix     string   // include names starting with Prefix
	TagsAny    []string // include if has ANY of these tags
	TextSearch string   // naive substring search over metric names
}

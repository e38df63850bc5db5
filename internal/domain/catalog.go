package domain

import (
	"encoding/json"
)

type SyncMode string

const (
	SyncModeFullRefresh SyncMode = "full_refresh"
	SyncModeIncremental SyncMode = "incremental"
)

type DestinationSyncMode string

const (
	DestinationSyncModeAppend      DestinationSyncMode = "append"
	DestinationSyncModeOverwrite   DestinationSyncMode = "overwrite"
	DestinationSyncModeAppendDedup DestinationSyncMode = "append_dedup"
)

type StreamDescriptor struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

type Stream struct {
	Name                    string          `json:"name"`
	Namespace               string          `json:"namespace,omitempty"`
	JSONSchema              json.RawMessage `json:"json_schema,omitempty"`
	SupportedSyncModes      []SyncMode      `json:"supported_sync_modes,omitempty"`
	SourceDefinedCursor     bool            `json:"source_defined_cursor,omitempty"`
	DefaultCursorField      []string        `json:"default_cursor_field,omitempty"`
	SourceDefinedPrimaryKey [][]string      `json:"source_defined_primary_key,omitempty"`
}

type ConfiguredStream struct {
	Stream              Stream              `json:"stream"`
	SyncMode            SyncMode            `json:"sync_mode"`
	CursorField         []string            `json:"cursor_field,omitempty"`
	DestinationSyncMode DestinationSyncMode `json:"destination_sync_mode"`
	PrimaryKey          [][]string          `json:"primary_key,omitempty"`
}

func (s ConfiguredStream) Descriptor() StreamDescriptor {
	return StreamDescriptor{Name: s.Stream.Name, Namespace: s.Stream.Namespace}
}

type ConfiguredCatalog struct {
	Streams []ConfiguredStream `json:"streams"`
}

// Clone returns a deep copy sharing no slices with c.
func (c ConfiguredCatalog) Clone() ConfiguredCatalog {
	if c.Streams == nil {
		return ConfiguredCatalog{}
	}
	streams := make([]ConfiguredStream, len(c.Streams))
	for i, s := range c.Streams {
		streams[i] = s.clone()
	}
	return ConfiguredCatalog{Streams: streams}
}

func (c ConfiguredCatalog) Descriptors() []StreamDescriptor {
	out := make([]StreamDescriptor, 0, len(c.Streams))
	for _, s := range c.Streams {
		out = append(out, s.Descriptor())
	}
	return out
}

func (s ConfiguredStream) clone() ConfiguredStream {
	out := s
	out.Stream.JSONSchema = CloneRaw(s.Stream.JSONSchema)
	out.Stream.SupportedSyncModes = cloneSlice(s.Stream.SupportedSyncModes)
	out.Stream.DefaultCursorField = cloneSlice(s.Stream.DefaultCursorField)
	out.Stream.SourceDefinedPrimaryKey = cloneKeys(s.Stream.SourceDefinedPrimaryKey)
	out.CursorField = cloneSlice(s.CursorField)
	out.PrimaryKey = cloneKeys(s.PrimaryKey)
	return out
}

// CloneRaw copies an opaque JSON payload byte for byte.
func CloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneKeys(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, k := range in {
		out[i] = cloneSlice(k)
	}
	return out
}

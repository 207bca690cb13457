package service

import "encoding/json"

// jsonCodec marshals plain Go message structs. It takes the place of Connect's default
// "json" codec, which only handles generated protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

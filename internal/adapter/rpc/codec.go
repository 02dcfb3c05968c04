// Package rpc holds the wire contracts of the stock and purchase gRPC services.
// Messages are plain structs carried by a JSON codec registered under the
// "json" content subtype.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

// CallOption selects the JSON codec on client calls.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}

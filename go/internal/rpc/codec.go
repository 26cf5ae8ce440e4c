// Package rpc mounts workflow operations as connect unary procedures. Every
// procedure answers with the apperr.Result envelope.
package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec marshals plain Go structs as JSON. It is registered under connect's
// "json" name so application/json requests reach our handlers unchanged.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

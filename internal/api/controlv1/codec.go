package controlv1

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// CodecName is registered with connect for both unary and streaming calls.
const CodecName = "json"

// Codec encodes control messages as JSON.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %T", msg)
	}
	return data, nil
}

func (Codec) Unmarshal(data []byte, msg any) error {
	// connect sends an empty body for messages without fields
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return errors.Wrapf(err, "unmarshal %T", msg)
	}
	return nil
}

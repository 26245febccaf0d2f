package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// NormalizeEncoding maps an empty encoding to JSON and rejects unknown ones.
func NormalizeEncoding(enc string) (string, error) {
	switch enc {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingMsgpack:
		return EncodingMsgpack, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", enc)
}

// Marshal encodes v; msgpack frames reuse the json field names.
func Marshal(enc string, v any) ([]byte, error) {
	switch enc {
	case "", EncodingJSON:
		return json.Marshal(v)
	case EncodingMsgpack:
		var buf bytes.Buffer
		e := msgpack.NewEncoder(&buf)
		e.SetCustomStructTag("json")
		e.SetOmitEmpty(true)
		if err := e.Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", enc)
}

func Unmarshal(enc string, b []byte, v any) error {
	switch enc {
	case "", EncodingJSON:
		return json.Unmarshal(b, v)
	case EncodingMsgpack:
		d := msgpack.NewDecoder(bytes.NewReader(b))
		d.SetCustomStructTag("json")
		return d.Decode(v)
	}
	return fmt.Errorf("unsupported encoding %q", enc)
}

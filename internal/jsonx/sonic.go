// Package jsonx provides JSON serialization for the search engine's emitted
// artifacts (subgraph rows, occurrence maps, expansion records) using Sonic
// in place of encoding/json, matching the rest of the pack's performance
// budget for hot per-iteration marshalling.
package jsonx

import (
	"bytes"
	"io"

	"github.com/bytedance/sonic"
)

// Marshal returns the JSON encoding of v.
func Marshal(v interface{}) ([]byte, error) {
	return sonic.Marshal(v)
}

// Unmarshal parses JSON-encoded data into v.
func Unmarshal(data []byte, v interface{}) error {
	return sonic.Unmarshal(data, v)
}

// MarshalToString is like Marshal but returns a string, avoiding the
// []byte-to-string copy on the hot path of per-iteration event emission.
func MarshalToString(v interface{}) (string, error) {
	return sonic.MarshalString(v)
}

// Encoder streams newline-delimited JSON artifacts to a writer, used by
// cmd/search to print one expansion record per iteration and by the search
// loop's NATS publisher to frame a single iteration's event.
type Encoder struct {
	writer interface{ Write([]byte) (int, error) }
	buf    bytes.Buffer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w interface{ Write([]byte) (int, error) }) *Encoder {
	return &Encoder{writer: w}
}

// Encode writes the JSON encoding of v followed by a newline.
func (e *Encoder) Encode(v interface{}) error {
	e.buf.Reset()
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	e.buf.Write(data)
	e.buf.WriteByte('\n')
	_, err = e.writer.Write(e.buf.Bytes())
	return err
}

// Decoder reads a single JSON value from a reader, used by cmd/searchd's
// admin handlers to parse a run-config request body.
type Decoder struct {
	reader io.Reader
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: r}
}

// Decode reads everything available from the underlying reader and parses
// it into v. Unlike encoding/json.Decoder it does not support a stream of
// multiple values, matching the single-body-per-request shape of the admin
// API's handlers.
func (d *Decoder) Decode(v interface{}) error {
	data, err := io.ReadAll(d.reader)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, v)
}

// Valid reports whether data is a well-formed JSON encoding.
func Valid(data []byte) bool {
	return sonic.Valid(data)
}

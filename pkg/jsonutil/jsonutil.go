// Package jsonutil wraps github.com/go-json-experiment/json behind the
// standard-library API shape so callers don't depend on the experimental
// package directly.
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses JSON-encoded data into v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent returns the indented JSON encoding of v.
func MarshalIndent(v any, indent string) ([]byte, error) {
	return json.Marshal(v, jsontext.WithIndent(indent))
}

// MarshalWrite streams the JSON encoding of v to w.
func MarshalWrite(w io.Writer, v any) error {
	return json.MarshalWrite(w, v)
}

// UnmarshalRead parses a JSON value from r into v.
func UnmarshalRead(r io.Reader, v any) error {
	return json.UnmarshalRead(r, v)
}

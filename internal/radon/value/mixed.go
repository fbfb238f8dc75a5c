package value

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Mixed carries an uninterpreted CBOR value through the engine until a
// typed Mixed.as* cast (internal/radon/ops) converts it. It is the seed
// kind for HTTP-GET/HTTP-POST retrieve sources (spec §4.E): the raw
// response body is decoded once into generic CBOR and handed to the
// source script as Mixed, never re-decoded per operator.
type Mixed struct {
	// Raw holds the canonical CBOR encoding of the underlying value.
	Raw cbor.RawMessage
}

// NewMixed wraps already-encoded CBOR bytes as a Mixed value.
func NewMixed(raw []byte) Mixed {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Mixed{Raw: cp}
}

// NewMixedFromAny encodes an arbitrary Go value (as produced by decoding a
// JSON/CBOR retrieve-source body) into a Mixed.
func NewMixedFromAny(v interface{}) (Mixed, error) {
	raw, err := cbor.Marshal(v)
	if err != nil {
		return Mixed{}, fmt.Errorf("encode mixed: %w", err)
	}
	return Mixed{Raw: raw}, nil
}

func (Mixed) Kind() Kind { return KindMixed }

func (m Mixed) String() string {
	var v interface{}
	if err := cbor.Unmarshal(m.Raw, &v); err != nil {
		return "Mixed(undecodable)"
	}
	return fmt.Sprintf("Mixed(%v)", v)
}

// NewMixedFromJSON decodes JSON text (as produced by a retrieve source with
// a JSON content-type hint) and re-encodes it as a Mixed.
func NewMixedFromJSON(data []byte) (Mixed, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return Mixed{}, fmt.Errorf("decode json: %w", err)
	}
	return NewMixedFromAny(v)
}

// Decode unmarshals the underlying CBOR into a generic Go value: one of
// nil, bool, int64, uint64, float64, string, []byte, []interface{}, or
// map[interface{}]interface{} (cbor's native decode-to-interface shapes).
func (m Mixed) Decode() (interface{}, error) {
	var v interface{}
	if err := cbor.Unmarshal(m.Raw, &v); err != nil {
		return nil, fmt.Errorf("decode mixed: %w", err)
	}
	return v, nil
}

package value

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// radonErrorTag is a private-use CBOR tag (RFC 8949 §9.2 range) wrapping an
// encoded Error so DecodeAny can tell an Error apart from an ordinary Map.
const radonErrorTag = 39000

var canonicalEncMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("value: build canonical cbor encoder: %v", err))
	}
	return mode
}()

var decMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("value: build cbor decoder: %v", err))
	}
	return mode
}()

// errorWire is the on-wire shape of an Error, tagged with radonErrorTag.
type errorWire struct {
	_         struct{} `cbor:",toarray"`
	ErrorKind uint8
	Stage     uint8
	CallIndex uint32
	Message   string
	Fields    map[string]string
}

// Encode produces the canonical CBOR encoding of v (spec §6). Two engines
// holding structurally equal Values always produce byte-identical output:
// canonical mode sorts Map keys and uses shortest-form integers.
func Encode(v Value) ([]byte, error) {
	native, err := toNative(v)
	if err != nil {
		return nil, err
	}
	return canonicalEncMode.Marshal(native)
}

// DecodeAny parses data into the Value it was encoded from by Encode. It is
// used by round-trip tests and by the subscript-AST decode path.
func DecodeAny(data []byte) (Value, error) {
	var tag cbor.Tag
	if err := decMode.Unmarshal(data, &tag); err == nil && tag.Number == radonErrorTag {
		raw, err := cbor.Marshal(tag.Content)
		if err != nil {
			return nil, fmt.Errorf("decode error value: %w", err)
		}
		var wire errorWire
		if err := decMode.Unmarshal(raw, &wire); err != nil {
			return nil, fmt.Errorf("decode error value: %w", err)
		}
		return &Error{
			ErrorKind: ErrorKind(wire.ErrorKind),
			Stage:     Stage(wire.Stage),
			CallIndex: wire.CallIndex,
			Message:   wire.Message,
			Fields:    wire.Fields,
		}, nil
	}

	var native interface{}
	if err := decMode.Unmarshal(data, &native); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return fromNative(native)
}

func toNative(v Value) (interface{}, error) {
	switch t := v.(type) {
	case Boolean:
		return bool(t), nil
	case Integer:
		if t.V == nil {
			return big.NewInt(0), nil
		}
		return t.V, nil
	case Float:
		return float64(t), nil
	case String:
		return string(t), nil
	case Bytes:
		return []byte(t), nil
	case Array:
		out := make([]interface{}, len(t))
		for i, elem := range t {
			n, err := toNative(elem)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case *Map:
		out := make(map[string]interface{}, t.Len())
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			n, err := toNative(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case Mixed:
		return t.Raw, nil
	case *Error:
		wire := errorWire{
			ErrorKind: uint8(t.ErrorKind),
			Stage:     uint8(t.Stage),
			CallIndex: t.CallIndex,
			Message:   t.Message,
			Fields:    t.Fields,
		}
		return cbor.Tag{Number: radonErrorTag, Content: wire}, nil
	default:
		return nil, fmt.Errorf("value: unknown kind %T", v)
	}
}

func fromNative(n interface{}) (Value, error) {
	switch t := n.(type) {
	case nil:
		return Bytes(nil), nil
	case bool:
		return Boolean(t), nil
	case int64:
		return Integer{V: big.NewInt(t)}, nil
	case uint64:
		return Integer{V: new(big.Int).SetUint64(t)}, nil
	case big.Int:
		return Integer{V: &t}, nil
	case *big.Int:
		return Integer{V: t}, nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case []byte:
		return Bytes(t), nil
	case []interface{}:
		out := make(Array, len(t))
		for i, elem := range t {
			v, err := fromNative(elem)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case map[string]interface{}:
		// Keys are inserted in ascending order so the same bytes always
		// decode to a Map with the same Keys() order.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			v, err := fromNative(t[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil
	case map[interface{}]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("value: non-string map key %v", k)
			}
			keys = append(keys, ks)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			v, err := fromNative(t[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("value: undecodable native type %T", n)
	}
}

package value

import (
	"math"
	"math/big"
	"strconv"
)

// maxSafeInteger bounds lossless Integer<->Float round-tripping. Magnitudes
// beyond it are representable as a Float but no longer uniquely recoverable
// as the original Integer, so the conversion is refused rather than silently
// truncated (determinism forbids a "best effort" float cast here).
const maxSafeInteger = 1 << 53

// i128 bounds the Integer kind to a signed 128-bit range (spec §4.A:
// "i128-equivalent"), mirrored here from ops' checkRange since this package
// cannot import ops (ops already imports value).
var (
	i128Max = func() *big.Int {
		max := new(big.Int).Lsh(big.NewInt(1), 127)
		return max.Sub(max, big.NewInt(1))
	}()
	i128Min = func() *big.Int {
		min := new(big.Int).Lsh(big.NewInt(1), 127)
		return min.Neg(min)
	}()
)

func convErr(reason, from, to string) *Error {
	return NewError(UnsupportedOperator, StageAggregate, 0, "cannot convert "+from+" to "+to).
		WithField("reason", reason).
		WithField("from", from).
		WithField("to", to)
}

// AsInteger converts v to an Integer, or returns an Error describing why it
// cannot be converted losslessly.
func AsInteger(v Value) (Integer, *Error) {
	switch t := v.(type) {
	case Integer:
		return t, nil
	case Boolean:
		if t {
			return NewInteger(1), nil
		}
		return NewInteger(0), nil
	case Float:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Integer{}, NewError(MathDomain, StageAggregate, 0, "float is not finite").
				WithField("from", "Float").WithField("to", "Integer")
		}
		// Truncate toward zero per the conversion matrix; a fractional
		// part is simply dropped, it is not a conversion failure.
		bi, _ := big.NewFloat(math.Trunc(f)).Int(nil)
		if bi.Cmp(i128Max) > 0 || bi.Cmp(i128Min) < 0 {
			return Integer{}, NewError(Overflow, StageAggregate, 0, "truncated float exceeds i128 range").
				WithField("from", "Float").WithField("to", "Integer")
		}
		return Integer{V: bi}, nil
	case String:
		bi, ok := new(big.Int).SetString(string(t), 10)
		if !ok {
			return Integer{}, convErr("invalid_integer_literal", "String", "Integer")
		}
		return Integer{V: bi}, nil
	default:
		return Integer{}, convErr("unsupported_kind", t.Kind().String(), "Integer")
	}
}

// AsFloat converts v to a Float.
func AsFloat(v Value) (Float, *Error) {
	switch t := v.(type) {
	case Float:
		return t, nil
	case Integer:
		if t.V == nil {
			return Float(0), nil
		}
		if !t.V.IsInt64() || t.V.CmpAbs(big.NewInt(maxSafeInteger)) > 0 {
			return Float(0), convErr("lossy_conversion", "Integer", "Float")
		}
		return Float(float64(t.V.Int64())), nil
	case Boolean:
		if t {
			return Float(1), nil
		}
		return Float(0), nil
	case String:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return Float(0), convErr("invalid_float_literal", "String", "Float")
		}
		return Float(f), nil
	default:
		return Float(0), convErr("unsupported_kind", t.Kind().String(), "Float")
	}
}

// AsBoolean converts v to a Boolean. Only Integer 0/1 and literal "true"/
// "false" Strings are accepted: there is no implicit truthiness in RADON.
func AsBoolean(v Value) (Boolean, *Error) {
	switch t := v.(type) {
	case Boolean:
		return t, nil
	case Integer:
		if t.V == nil || t.V.Sign() == 0 {
			return Boolean(false), nil
		}
		if t.V.Cmp(big.NewInt(1)) == 0 {
			return Boolean(true), nil
		}
		return Boolean(false), convErr("not_boolean_like", "Integer", "Boolean")
	case String:
		switch t {
		case "true":
			return Boolean(true), nil
		case "false":
			return Boolean(false), nil
		default:
			return Boolean(false), convErr("not_boolean_like", "String", "Boolean")
		}
	default:
		return Boolean(false), convErr("unsupported_kind", t.Kind().String(), "Boolean")
	}
}

// AsString renders v as a String value. Unlike String(), this is a typed
// conversion operator (ToString, spec §4.B) and is defined for every
// primitive kind.
func AsString(v Value) (String, *Error) {
	switch t := v.(type) {
	case String:
		return t, nil
	case Boolean, Integer, Float:
		return String(t.String()), nil
	case Bytes:
		return String(t.String()), nil
	default:
		return String(""), convErr("unsupported_kind", t.Kind().String(), "String")
	}
}

// AsBytes converts v to Bytes. Only String (UTF-8 encoding) and Bytes
// itself are supported; everything else has no canonical byte form.
func AsBytes(v Value) (Bytes, *Error) {
	switch t := v.(type) {
	case Bytes:
		return t, nil
	case String:
		return Bytes([]byte(t)), nil
	default:
		return nil, convErr("unsupported_kind", t.Kind().String(), "Bytes")
	}
}

package ops

import (
	"errors"
	"math/big"

	"radon-engine/internal/radon/value"
)

func init() {
	Register(value.KindMixed, Identity, mixedIdentity)
	Register(value.KindMixed, MixedAsArray, mixedAsArray)
	Register(value.KindMixed, MixedAsBoolean, mixedAsBoolean)
	Register(value.KindMixed, MixedAsFloat, mixedAsFloat)
	Register(value.KindMixed, MixedAsInteger, mixedAsInteger)
	Register(value.KindMixed, MixedAsMap, mixedAsMap)
	Register(value.KindMixed, MixedAsString, mixedAsString)
}

func mixedIdentity(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	return receiver, nil
}

func errNotOfKind(kind string) error {
	return errors.New("decoded value is not of kind " + kind)
}

func castErr(reason string, err error) *value.Error {
	return value.NewError(value.WrongMixedCast, value.StageAggregate, 0, "cannot cast Mixed: "+err.Error()).
		WithField("reason", reason)
}

func mixedAsArray(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	m := receiver.(value.Mixed)
	native, err := m.Decode()
	if err != nil {
		return nil, castErr("as_array", err)
	}
	items, ok := native.([]interface{})
	if !ok {
		return nil, castErr("as_array", errNotOfKind("array"))
	}
	out := make(value.Array, len(items))
	for i, item := range items {
		inner, err := value.NewMixedFromAny(item)
		if err != nil {
			return nil, castErr("as_array", err)
		}
		out[i] = inner
	}
	return out, nil
}

func mixedAsBoolean(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	m := receiver.(value.Mixed)
	native, err := m.Decode()
	if err != nil {
		return nil, castErr("as_boolean", err)
	}
	b, ok := native.(bool)
	if !ok {
		return nil, castErr("as_boolean", errNotOfKind("boolean"))
	}
	return value.Boolean(b), nil
}

func mixedAsFloat(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	m := receiver.(value.Mixed)
	native, err := m.Decode()
	if err != nil {
		return nil, castErr("as_float", err)
	}
	switch n := native.(type) {
	case float64:
		return value.Float(n), nil
	case int64:
		return value.Float(float64(n)), nil
	case uint64:
		return value.Float(float64(n)), nil
	default:
		return nil, castErr("as_float", errNotOfKind("float"))
	}
}

func mixedAsInteger(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	m := receiver.(value.Mixed)
	native, err := m.Decode()
	if err != nil {
		return nil, castErr("as_integer", err)
	}
	switch n := native.(type) {
	case int64:
		return value.NewInteger(n), nil
	case uint64:
		return value.Integer{V: new(big.Int).SetUint64(n)}, nil
	default:
		return nil, castErr("as_integer", errNotOfKind("integer"))
	}
}

func mixedAsMap(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	m := receiver.(value.Mixed)
	native, err := m.Decode()
	if err != nil {
		return nil, castErr("as_map", err)
	}
	raw, ok := native.(map[interface{}]interface{})
	if !ok {
		return nil, castErr("as_map", errNotOfKind("map"))
	}
	out := value.NewMap()
	for k, v := range raw {
		ks, ok := k.(string)
		if !ok {
			return nil, castErr("as_map", errNotOfKind("map with String keys"))
		}
		inner, err := value.NewMixedFromAny(v)
		if err != nil {
			return nil, castErr("as_map", err)
		}
		out.Set(ks, inner)
	}
	return out, nil
}

func mixedAsString(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	m := receiver.(value.Mixed)
	native, err := m.Decode()
	if err != nil {
		return nil, castErr("as_string", err)
	}
	s, ok := native.(string)
	if !ok {
		return nil, castErr("as_string", errNotOfKind("string"))
	}
	return value.String(s), nil
}

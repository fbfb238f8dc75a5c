package ops

import "radon-engine/internal/radon/value"

func init() {
	Register(value.KindMap, Identity, mapIdentity)
	Register(value.KindMap, MapKeys, mapKeys)
	Register(value.KindMap, MapGet, mapGet)
	Register(value.KindMap, MapValues, mapValues)
	Register(value.KindMap, Get, mapGet)
}

func mapIdentity(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	return receiver, nil
}

func mapKeys(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	m := receiver.(*value.Map)
	keys := m.Keys()
	out := make(value.Array, len(keys))
	for i, k := range keys {
		out[i] = value.String(k)
	}
	return out, nil
}

func mapValues(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	m := receiver.(*value.Map)
	return value.Array(m.Values()), nil
}

func mapGet(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	m := receiver.(*value.Map)
	if len(args) == 0 {
		return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0, "MapGet requires a key argument")
	}
	key, ok := args[0].(value.String)
	if !ok {
		return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0, "MapGet key must be a String")
	}
	v, ok := m.Get(string(key))
	if !ok {
		return nil, value.NewError(value.MapKeyNotFound, value.StageAggregate, 0, "key not found").
			WithField("key", string(key))
	}
	return v, nil
}

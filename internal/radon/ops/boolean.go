package ops

import "radon-engine/internal/radon/value"

func init() {
	Register(value.KindBoolean, Identity, booleanIdentity)
	Register(value.KindBoolean, BooleanNegate, booleanNegate)
	Register(value.KindBoolean, BooleanAsString, booleanAsString)
}

func booleanIdentity(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	return receiver, nil
}

func booleanNegate(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	b := receiver.(value.Boolean)
	return !b, nil
}

func booleanAsString(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	s, errv := value.AsString(receiver)
	if errv != nil {
		return nil, errv
	}
	return s, nil
}

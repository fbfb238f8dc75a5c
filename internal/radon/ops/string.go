package ops

import (
	"strings"

	"radon-engine/internal/radon/value"
)

func init() {
	Register(value.KindString, Identity, stringIdentity)
	Register(value.KindString, StringAsBoolean, stringAsBoolean)
	Register(value.KindString, StringAsFloat, stringAsFloat)
	Register(value.KindString, StringAsInteger, stringAsInteger)
	Register(value.KindString, StringLength, stringLength)
	Register(value.KindString, StringMatch, stringMatch)
	Register(value.KindString, StringToLowerCase, stringToLowerCase)
	Register(value.KindString, StringToUpperCase, stringToUpperCase)
	Register(value.KindString, StringAsMixed, stringAsMixed)
	Register(value.KindString, StringParseJSON, stringParseJSON)
}

func stringIdentity(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	return receiver, nil
}

func stringAsBoolean(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	b, errv := value.AsBoolean(receiver)
	if errv != nil {
		return nil, errv
	}
	return b, nil
}

func stringAsFloat(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f, errv := value.AsFloat(receiver)
	if errv != nil {
		return nil, errv
	}
	return f, nil
}

func stringAsInteger(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	i, errv := value.AsInteger(receiver)
	if errv != nil {
		return nil, errv
	}
	return i, nil
}

func stringLength(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	s := receiver.(value.String)
	return value.NewInteger(int64(len([]rune(string(s))))), nil
}

// stringMatch implements String.match(cases: Map, default: Value): the
// receiver is looked up as a key in cases, returning the matching Value,
// or default when no case's key equals the receiver.
func stringMatch(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	s := receiver.(value.String)
	if len(args) < 2 {
		return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0,
			"StringMatch requires a cases Map and a default Value argument")
	}
	cases, ok := args[0].(*value.Map)
	if !ok {
		return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0, "StringMatch cases must be a Map")
	}
	if v, ok := cases.Get(string(s)); ok {
		return v, nil
	}
	return args[1], nil
}

func stringToLowerCase(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	s := receiver.(value.String)
	return value.String(strings.ToLower(string(s))), nil
}

func stringToUpperCase(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	s := receiver.(value.String)
	return value.String(strings.ToUpper(string(s))), nil
}

func stringAsMixed(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	data, err := value.Encode(receiver)
	if err != nil {
		return nil, value.NewError(value.WrongMixedCast, value.StageAggregate, 0, err.Error())
	}
	return value.NewMixed(data), nil
}

// stringParseJSON decodes the receiver as JSON and re-expresses the result
// as the corresponding Mixed value, the seed type retrieve scripts continue
// from with typed casts.
func stringParseJSON(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	s := receiver.(value.String)
	m, err := value.NewMixedFromJSON([]byte(s))
	if err != nil {
		return nil, value.NewError(value.SourceScriptNotCBOR, value.StageRetrieve, 0, "invalid JSON: "+err.Error())
	}
	return m, nil
}

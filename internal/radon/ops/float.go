package ops

import (
	"math"

	"radon-engine/internal/radon/value"
)

func init() {
	Register(value.KindFloat, Identity, floatIdentity)
	Register(value.KindFloat, FloatAbsolute, floatAbsolute)
	Register(value.KindFloat, FloatAsString, floatAsString)
	Register(value.KindFloat, FloatCeiling, floatCeiling)
	Register(value.KindFloat, FloatGreaterThan, floatGreaterThan)
	Register(value.KindFloat, FloatFloor, floatFloor)
	Register(value.KindFloat, FloatLessThan, floatLessThan)
	Register(value.KindFloat, FloatModulo, floatModulo)
	Register(value.KindFloat, FloatMultiply, floatMultiply)
	Register(value.KindFloat, FloatNegate, floatNegate)
	Register(value.KindFloat, FloatPower, floatPower)
	Register(value.KindFloat, FloatRound, floatRound)
	Register(value.KindFloat, FloatTruncate, floatTruncate)
	Register(value.KindFloat, FloatAsMixed, floatAsMixed)
}

func floatIdentity(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	return receiver, nil
}

func checkFinite(f float64) *value.Error {
	if math.IsNaN(f) {
		return value.NewError(value.MathDomain, value.StageAggregate, 0, "result is NaN")
	}
	if math.IsInf(f, 0) {
		return value.NewError(value.MathDomain, value.StageAggregate, 0, "result is not finite")
	}
	return nil
}

func firstFloatArg(args []value.Value) (value.Float, *value.Error) {
	if len(args) == 0 {
		return 0, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0,
			"missing required float argument")
	}
	return value.AsFloat(args[0])
}

func floatAbsolute(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	return value.Float(math.Abs(float64(f))), nil
}

func floatAsString(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	s, errv := value.AsString(receiver)
	if errv != nil {
		return nil, errv
	}
	return s, nil
}

func floatCeiling(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	return value.Integer{V: bigFromFloat(math.Ceil(float64(f)))}, nil
}

func floatFloor(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	return value.Integer{V: bigFromFloat(math.Floor(float64(f)))}, nil
}

func floatRound(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	return value.Integer{V: bigFromFloat(math.RoundToEven(float64(f)))}, nil
}

func floatTruncate(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	return value.Integer{V: bigFromFloat(math.Trunc(float64(f)))}, nil
}

func floatGreaterThan(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	other, errv := firstFloatArg(args)
	if errv != nil {
		return nil, errv
	}
	return value.Boolean(f > other), nil
}

func floatLessThan(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	other, errv := firstFloatArg(args)
	if errv != nil {
		return nil, errv
	}
	return value.Boolean(f < other), nil
}

func floatModulo(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	other, errv := firstFloatArg(args)
	if errv != nil {
		return nil, errv
	}
	if other == 0 {
		return nil, value.NewError(value.DivisionByZero, value.StageAggregate, 0, "modulo by zero")
	}
	result := math.Mod(float64(f), float64(other))
	if errv := checkFinite(result); errv != nil {
		return nil, errv
	}
	return value.Float(result), nil
}

func floatMultiply(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	other, errv := firstFloatArg(args)
	if errv != nil {
		return nil, errv
	}
	result := float64(f) * float64(other)
	if errv := checkFinite(result); errv != nil {
		return nil, errv
	}
	return value.Float(result), nil
}

func floatNegate(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	return value.Float(-f), nil
}

func floatPower(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f := receiver.(value.Float)
	exp, errv := firstFloatArg(args)
	if errv != nil {
		return nil, errv
	}
	result := math.Pow(float64(f), float64(exp))
	if errv := checkFinite(result); errv != nil {
		return nil, errv
	}
	return value.Float(result), nil
}

func floatAsMixed(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	data, err := value.Encode(receiver)
	if err != nil {
		return nil, value.NewError(value.WrongMixedCast, value.StageAggregate, 0, err.Error())
	}
	return value.NewMixed(data), nil
}
